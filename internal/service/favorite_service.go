package service

import (
	"context"

	"github.com/Baaaki/campus-market/internal/apperrors"
	"github.com/Baaaki/campus-market/internal/repository"
	"github.com/Baaaki/campus-market/pkg/logger"
	"go.uber.org/zap"
)

type FavoriteService struct {
	favorites *repository.FavoriteRepository
	products  *repository.ProductRepository
	pageSize  int
}

func NewFavoriteService(favorites *repository.FavoriteRepository, products *repository.ProductRepository, pageSize int) *FavoriteService {
	return &FavoriteService{favorites: favorites, products: products, pageSize: pageSize}
}

// Toggle flips the user's favorite on a product and returns the new state.
func (s *FavoriteService) Toggle(ctx context.Context, userID, productID uint) (bool, error) {
	exists, err := s.products.Exists(ctx, productID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, apperrors.NotFound("product")
	}

	favorited, err := s.favorites.Toggle(ctx, userID, productID)
	if err != nil {
		logger.Log.Error("Failed to toggle favorite",
			zap.Uint("user_id", userID),
			zap.Uint("product_id", productID),
			zap.Error(err),
		)
		return false, err
	}

	logger.Log.Debug("Favorite toggled",
		zap.Uint("user_id", userID),
		zap.Uint("product_id", productID),
		zap.Bool("favorited", favorited),
	)
	return favorited, nil
}

// List returns the user's favorites, most recently added first.
func (s *FavoriteService) List(ctx context.Context, userID uint, page int) (*FavoritePage, error) {
	page, size := repository.NormalizePage(page, s.pageSize)

	products, total, err := s.favorites.ListProducts(ctx, userID, page, size)
	if err != nil {
		logger.Log.Error("Failed to list favorites", zap.Uint("user_id", userID), zap.Error(err))
		return nil, err
	}

	favorited := make(map[uint]bool, len(products))
	for _, p := range products {
		favorited[p.ID] = true
	}

	return &FavoritePage{
		Data:       newProductViews(products, favorited),
		Pagination: repository.NewPagination(total, page, size),
	}, nil
}
