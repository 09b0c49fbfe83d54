package service

import (
	"context"

	"github.com/Baaaki/campus-market/internal/activity"
	"github.com/Baaaki/campus-market/internal/models"
	"github.com/Baaaki/campus-market/internal/repository"
)

// ActivityRecorder receives fire-and-forget audit entries.
type ActivityRecorder interface {
	Record(ctx context.Context, entry activity.Entry)
}

// ProductView is a product as seen by one user.
type ProductView struct {
	models.Product
	IsFavorited bool `json:"is_favorited"`
}

// ProductPage is one page of a catalog listing. Categories and Faculties are
// the filter options of the whole catalog, not just this page.
type ProductPage struct {
	Data       []ProductView         `json:"data"`
	Pagination repository.Pagination `json:"pagination"`
	Categories []string              `json:"categories"`
	Faculties  []string              `json:"faculties"`
}

// FavoritePage is one page of a user's favorites.
type FavoritePage struct {
	Data       []ProductView         `json:"data"`
	Pagination repository.Pagination `json:"pagination"`
}

func newProductViews(products []models.Product, favorited map[uint]bool) []ProductView {
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, ProductView{Product: p, IsFavorited: favorited[p.ID]})
	}
	return views
}
