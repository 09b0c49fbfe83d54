package repository

import (
	"context"
	"errors"

	"github.com/Baaaki/campus-market/internal/models"
	"gorm.io/gorm"
)

// editableProductColumns are the columns an update may touch. Listing them
// lets Updates write zero values such as an emptied description.
var editableProductColumns = []string{
	"name", "description", "price", "category", "condition", "faculty", "images",
}

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	return translateError(r.db.WithContext(ctx).Create(product).Error)
}

func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).
		Model(product).
		Select(editableProductColumns).
		Updates(product).Error
}

// ownerColumns limits a product's preloaded owner to its public columns.
func ownerColumns(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name")
}

// GetByID loads a product with its owner. Returns nil, nil when missing.
func (r *ProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Preload("User", ownerColumns).First(&product, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &product, nil
}

func (r *ProductRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Delete removes the product and everything hanging off it in one
// transaction: messages, conversations, favorites, then the row itself.
func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conversationIDs := tx.Model(&models.Conversation{}).Select("id").Where("product_id = ?", id)

		if err := tx.Where("conversation_id IN (?)", conversationIDs).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Conversation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, id).Error
	})
}

// List runs a catalog query and returns the page plus the total match count.
func (r *ProductRepository) List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	filter = filter.Normalize()

	var total int64
	countQuery := filter.Apply(r.db.WithContext(ctx).Model(&models.Product{}))
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	query := filter.Order(filter.Apply(r.db.WithContext(ctx).Model(&models.Product{})))
	err := query.
		Preload("User", ownerColumns).
		Offset(Offset(filter.Page, filter.PageSize)).
		Limit(filter.PageSize).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// Facets returns the distinct categories and faculties across all products.
func (r *ProductRepository) Facets(ctx context.Context) (categories, faculties []string, err error) {
	err = r.db.WithContext(ctx).Model(&models.Product{}).
		Distinct().
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, nil, err
	}

	err = r.db.WithContext(ctx).Model(&models.Product{}).
		Distinct().
		Order("faculty").
		Pluck("faculty", &faculties).Error
	if err != nil {
		return nil, nil, err
	}

	return categories, faculties, nil
}
