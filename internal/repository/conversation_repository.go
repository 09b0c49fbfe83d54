package repository

import (
	"context"
	"errors"

	"github.com/Baaaki/campus-market/internal/models"
	"gorm.io/gorm"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// FindByPair looks a conversation up by its unordered participant pair and
// product. Returns nil, nil when none exists.
func (r *ConversationRepository) FindByPair(ctx context.Context, userA, userB, productID uint) (*models.Conversation, error) {
	return findByPair(r.db.WithContext(ctx), userA, userB, productID)
}

// FindOrCreate returns the existing conversation for conv's pair and product
// or inserts conv. The bool is true when a row was inserted. A unique index
// violation from a concurrent insert comes back as apperrors.ErrConflict.
func (r *ConversationRepository) FindOrCreate(ctx context.Context, conv *models.Conversation) (*models.Conversation, bool, error) {
	var (
		result  *models.Conversation
		created bool
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findByPair(tx, conv.User1ID, conv.User2ID, conv.ProductID)
		if err != nil {
			return err
		}
		if existing != nil {
			result = existing
			return nil
		}

		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		result, created = conv, true
		return nil
	})
	if err != nil {
		return nil, false, translateError(err)
	}

	return result, created, nil
}

// Create inserts without looking first.
func (r *ConversationRepository) Create(ctx context.Context, conv *models.Conversation) error {
	return translateError(r.db.WithContext(ctx).Create(conv).Error)
}

// GetByID loads a conversation with both participants and the product.
func (r *ConversationRepository) GetByID(ctx context.Context, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.WithContext(ctx).
		Preload("User1").
		Preload("User2").
		Preload("Product").
		First(&conv, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &conv, nil
}

// ListForUser returns every conversation the user takes part in.
func (r *ConversationRepository) ListForUser(ctx context.Context, userID uint) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.db.WithContext(ctx).
		Preload("User1").
		Preload("User2").
		Preload("Product").
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&conversations).Error

	return conversations, err
}

func findByPair(db *gorm.DB, userA, userB, productID uint) (*models.Conversation, error) {
	low, high := models.CanonicalPair(userA, userB)

	var conv models.Conversation
	err := db.
		Where("user_low_id = ? AND user_high_id = ? AND product_id = ?", low, high, productID).
		First(&conv).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &conv, nil
}
