package service

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Baaaki/campus-market/internal/apperrors"
	"github.com/Baaaki/campus-market/internal/models"
	"github.com/Baaaki/campus-market/internal/policy"
	"github.com/Baaaki/campus-market/internal/repository"
	"github.com/Baaaki/campus-market/pkg/logger"
	"go.uber.org/zap"
)

const MaxMessageLength = 5000

// ConversationStore is the persistence the conversation service needs.
// Implemented by repository.ConversationRepository.
type ConversationStore interface {
	FindOrCreate(ctx context.Context, conv *models.Conversation) (*models.Conversation, bool, error)
	FindByPair(ctx context.Context, userA, userB, productID uint) (*models.Conversation, error)
	GetByID(ctx context.Context, id uint) (*models.Conversation, error)
	ListForUser(ctx context.Context, userID uint) ([]models.Conversation, error)
}

// ConversationThread is a conversation with its messages, oldest first.
type ConversationThread struct {
	*models.Conversation
	Messages []models.Message `json:"messages"`
}

// SentMessage is what a client needs to append a new message to an open thread.
type SentMessage struct {
	Message        *models.Message `json:"message"`
	ConversationID uint            `json:"conversation_id"`
	ParticipantIDs []uint          `json:"participant_ids"`
}

// ConversationSummary is one row of the inbox.
type ConversationSummary struct {
	ID             uint            `json:"id"`
	Product        *models.Product `json:"product"`
	OtherUser      *models.User    `json:"other_user"`
	LastMessage    *models.Message `json:"last_message"`
	LastActivityAt time.Time       `json:"last_activity_at"`
}

type ConversationService struct {
	conversations ConversationStore
	messages      *repository.MessageRepository
	products      *repository.ProductRepository
}

func NewConversationService(conversations ConversationStore, messages *repository.MessageRepository, products *repository.ProductRepository) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		messages:      messages,
		products:      products,
	}
}

// Start opens (or reopens) the actor's conversation with the owner of a
// product. The bool reports whether a new conversation was created.
func (s *ConversationService) Start(ctx context.Context, actor policy.Actor, productID uint) (*models.Conversation, bool, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, false, err
	}
	if product == nil {
		return nil, false, apperrors.NotFound("product")
	}

	if policy.IsSelfConversation(actor.ID, product.UserID) {
		logger.Log.Debug("Rejected self conversation",
			zap.Uint("user_id", actor.ID),
			zap.Uint("product_id", productID),
		)
		return nil, false, apperrors.ErrSelfConversation
	}

	conv, created, err := s.conversations.FindOrCreate(ctx, &models.Conversation{
		User1ID:   actor.ID,
		User2ID:   product.UserID,
		ProductID: product.ID,
	})
	if errors.Is(err, apperrors.ErrConflict) {
		// A concurrent request created it first; read the winner's row
		logger.Log.Info("Conversation created concurrently, retrying as lookup",
			zap.Uint("user_id", actor.ID),
			zap.Uint("product_id", productID),
		)
		conv, created = nil, false
		winner, lookupErr := s.conversations.FindByPair(ctx, actor.ID, product.UserID, product.ID)
		if lookupErr != nil {
			return nil, false, lookupErr
		}
		if winner == nil {
			return nil, false, err
		}
		conv, err = winner, nil
	}
	if err != nil {
		logger.Log.Error("Failed to start conversation",
			zap.Uint("user_id", actor.ID),
			zap.Uint("product_id", productID),
			zap.Error(err),
		)
		return nil, false, err
	}

	if created {
		logger.Log.Info("Conversation started",
			zap.Uint("conversation_id", conv.ID),
			zap.Uint("user_id", actor.ID),
			zap.Uint("owner_id", product.UserID),
			zap.Uint("product_id", product.ID),
		)
	}

	full, err := s.conversations.GetByID(ctx, conv.ID)
	if err != nil {
		return nil, false, err
	}
	if full == nil {
		return nil, false, apperrors.NotFound("conversation")
	}
	return full, created, nil
}

// Get returns a participant's view of one conversation.
func (s *ConversationService) Get(ctx context.Context, actor policy.Actor, id uint) (*ConversationThread, error) {
	conv, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	messages, err := s.messages.ListByConversation(ctx, conv.ID)
	if err != nil {
		logger.Log.Error("Failed to load messages",
			zap.Uint("conversation_id", conv.ID),
			zap.Error(err),
		)
		return nil, err
	}
	if messages == nil {
		messages = []models.Message{}
	}

	return &ConversationThread{Conversation: conv, Messages: messages}, nil
}

// SendMessage appends a message from actor to the conversation.
func (s *ConversationService) SendMessage(ctx context.Context, actor policy.Actor, conversationID uint, text string) (*SentMessage, error) {
	conv, err := s.load(ctx, actor, conversationID)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("message", "message is required")
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return nil, apperrors.NewValidationError("message", "message must be at most 5000 characters")
	}

	message := &models.Message{
		ConversationID: conv.ID,
		UserID:         actor.ID,
		Content:        text,
	}
	if err := s.messages.CreateMessage(ctx, message); err != nil {
		logger.Log.Error("Failed to save message",
			zap.Uint("conversation_id", conv.ID),
			zap.Uint("user_id", actor.ID),
			zap.Error(err),
		)
		return nil, err
	}

	if conv.User1ID == actor.ID {
		message.User = conv.User1
	} else {
		message.User = conv.User2
	}

	logger.Log.Debug("Message sent",
		zap.Uint("message_id", message.ID),
		zap.Uint("conversation_id", conv.ID),
		zap.Uint("user_id", actor.ID),
	)

	return &SentMessage{
		Message:        message,
		ConversationID: conv.ID,
		ParticipantIDs: []uint{conv.User1ID, conv.User2ID},
	}, nil
}

// ListForUser returns the user's inbox, most recent activity first.
func (s *ConversationService) ListForUser(ctx context.Context, userID uint) ([]ConversationSummary, error) {
	conversations, err := s.conversations.ListForUser(ctx, userID)
	if err != nil {
		logger.Log.Error("Failed to list conversations", zap.Uint("user_id", userID), zap.Error(err))
		return nil, err
	}

	ids := make([]uint, 0, len(conversations))
	for _, c := range conversations {
		ids = append(ids, c.ID)
	}

	latest, err := s.messages.LatestByConversation(ctx, ids)
	if err != nil {
		logger.Log.Error("Failed to load latest messages", zap.Uint("user_id", userID), zap.Error(err))
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(conversations))
	for i := range conversations {
		c := &conversations[i]

		summary := ConversationSummary{
			ID:             c.ID,
			Product:        c.Product,
			OtherUser:      c.User1,
			LastActivityAt: c.UpdatedAt,
		}
		if c.User1ID == userID {
			summary.OtherUser = c.User2
		}
		if m, ok := latest[c.ID]; ok {
			summary.LastMessage = &m
			summary.LastActivityAt = m.CreatedAt
		}
		summaries = append(summaries, summary)
	}

	slices.SortStableFunc(summaries, func(a, b ConversationSummary) int {
		if c := b.LastActivityAt.Compare(a.LastActivityAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	return summaries, nil
}

func (s *ConversationService) load(ctx context.Context, actor policy.Actor, id uint) (*models.Conversation, error) {
	conv, err := s.conversations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, apperrors.NotFound("conversation")
	}
	if err := policy.RequireParticipant(actor, conv); err != nil {
		logger.Log.Warn("Conversation access denied",
			zap.Uint("conversation_id", id),
			zap.Uint("actor_id", actor.ID),
		)
		return nil, err
	}
	return conv, nil
}
