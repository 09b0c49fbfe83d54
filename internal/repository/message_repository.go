package repository

import (
	"context"
	"time"

	"github.com/Baaaki/campus-market/internal/models"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// CreateMessage stores the message and bumps the conversation's updated_at
// in the same transaction.
func (r *MessageRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}

		// UpdateColumn skips hooks so the canonical pair is left alone
		return tx.Model(&models.Conversation{}).
			Where("id = ?", message.ConversationID).
			UpdateColumn("updated_at", time.Now()).Error
	})
}

// ListByConversation returns the thread oldest first, with authors.
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error

	return messages, err
}

// LatestByConversation returns the newest message of each given conversation,
// keyed by conversation id. Conversations without messages are absent.
func (r *MessageRepository) LatestByConversation(ctx context.Context, conversationIDs []uint) (map[uint]models.Message, error) {
	out := make(map[uint]models.Message, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return out, nil
	}

	latestIDs := r.db.Model(&models.Message{}).
		Select("MAX(id)").
		Where("conversation_id IN ?", conversationIDs).
		Group("conversation_id")

	var messages []models.Message
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("id IN (?)", latestIDs).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	for _, m := range messages {
		out[m.ConversationID] = m
	}
	return out, nil
}
