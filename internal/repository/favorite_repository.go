package repository

import (
	"context"
	"errors"

	"github.com/Baaaki/campus-market/internal/models"
	"gorm.io/gorm"
)

type FavoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Toggle flips the favorite in one transaction and reports the new state.
// A concurrent insert of the same pair counts as favorited.
func (r *FavoriteRepository) Toggle(ctx context.Context, userID, productID uint) (bool, error) {
	favorited := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.Favorite{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		favorited = true
		return tx.Create(&models.Favorite{UserID: userID, ProductID: productID}).Error
	})

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return favorited, nil
}

func (r *FavoriteRepository) Exists(ctx context.Context, userID, productID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	return count > 0, err
}

// FavoritedIDs reports which of productIDs the user has favorited.
func (r *FavoriteRepository) FavoritedIDs(ctx context.Context, userID uint, productIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND product_id IN ?", userID, productIDs).
		Pluck("product_id", &ids).Error
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// ListProducts returns the user's favorited products, most recently favorited first.
func (r *FavoriteRepository) ListProducts(ctx context.Context, userID uint, page, size int) ([]models.Product, int64, error) {
	page, size = NormalizePage(page, size)

	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Product{}).
			Joins("JOIN favorites ON favorites.product_id = products.id").
			Where("favorites.user_id = ?", userID)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	err := base().
		Preload("User", ownerColumns).
		Order("favorites.created_at DESC").
		Order("products.id DESC").
		Offset(Offset(page, size)).
		Limit(size).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}
