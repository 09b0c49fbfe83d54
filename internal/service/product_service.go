package service

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/Baaaki/campus-market/internal/activity"
	"github.com/Baaaki/campus-market/internal/apperrors"
	"github.com/Baaaki/campus-market/internal/cache"
	"github.com/Baaaki/campus-market/internal/models"
	"github.com/Baaaki/campus-market/internal/policy"
	"github.com/Baaaki/campus-market/internal/repository"
	"github.com/Baaaki/campus-market/internal/storage"
	"github.com/Baaaki/campus-market/internal/validation"
	"github.com/Baaaki/campus-market/pkg/logger"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const productSubject = "product"

// ProductInput holds the editable fields of a listing. Price is in the
// smallest currency unit.
type ProductInput struct {
	Name        string `json:"name" validate:"notblank,max=255"`
	Description string `json:"description" validate:"max=5000"`
	Price       uint64 `json:"price"`
	Category    string `json:"category" validate:"notblank,max=100"`
	Condition   string `json:"condition" validate:"notblank,max=100"`
	Faculty     string `json:"faculty" validate:"notblank,max=100"`

	// Invalid holds field errors found while decoding the request, such as an
	// unparsable price. They are reported together with the rule violations.
	Invalid *apperrors.ValidationError `json:"-" validate:"-"`
}

func (in ProductInput) trimmed() ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Condition = strings.TrimSpace(in.Condition)
	in.Faculty = strings.TrimSpace(in.Faculty)
	return in
}

// CatalogQuery is what a client may filter a listing by.
type CatalogQuery struct {
	Search   string
	Category string
	Faculty  string
	Page     int
}

type ProductService struct {
	products  *repository.ProductRepository
	favorites *repository.FavoriteRepository
	store     storage.ObjectStore
	facets    cache.FacetCache
	activity  ActivityRecorder
	validate  *validator.Validate
	pageSize  int
}

func NewProductService(
	products *repository.ProductRepository,
	favorites *repository.FavoriteRepository,
	store storage.ObjectStore,
	facets cache.FacetCache,
	recorder ActivityRecorder,
	validate *validator.Validate,
	pageSize int,
) *ProductService {
	if facets == nil {
		facets = cache.NoopFacetCache{}
	}
	return &ProductService{
		products:  products,
		favorites: favorites,
		store:     store,
		facets:    facets,
		activity:  recorder,
		validate:  validate,
		pageSize:  pageSize,
	}
}

// Catalog lists products for actor in the given scope. ScopeAll is admin only.
func (s *ProductService) Catalog(ctx context.Context, actor policy.Actor, scope repository.Scope, q CatalogQuery) (*ProductPage, error) {
	if scope == repository.ScopeAll && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("admin access required")
	}

	filter := repository.ProductFilter{
		ActorID:  actor.ID,
		Scope:    scope,
		Search:   q.Search,
		Category: q.Category,
		Faculty:  q.Faculty,
		Page:     q.Page,
		PageSize: s.pageSize,
	}.Normalize()

	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		logger.Log.Error("Failed to list products",
			zap.Uint("actor_id", actor.ID),
			zap.Int("scope", int(scope)),
			zap.Error(err),
		)
		return nil, err
	}

	views, err := s.annotate(ctx, actor.ID, products)
	if err != nil {
		return nil, err
	}

	facets, err := s.Facets(ctx)
	if err != nil {
		return nil, err
	}

	return &ProductPage{
		Data:       views,
		Pagination: repository.NewPagination(total, filter.Page, filter.PageSize),
		Categories: facets.Categories,
		Faculties:  facets.Faculties,
	}, nil
}

// Facets returns the catalog's distinct categories and faculties, from the
// cache when possible. Cache errors fall back to the database.
func (s *ProductService) Facets(ctx context.Context) (*cache.Facets, error) {
	cached, err := s.facets.GetFacets(ctx)
	if err != nil {
		logger.Log.Warn("Failed to read facet cache", zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	categories, faculties, err := s.products.Facets(ctx)
	if err != nil {
		logger.Log.Error("Failed to load facets", zap.Error(err))
		return nil, err
	}

	facets := &cache.Facets{Categories: categories, Faculties: faculties}
	if facets.Categories == nil {
		facets.Categories = []string{}
	}
	if facets.Faculties == nil {
		facets.Faculties = []string{}
	}

	if err := s.facets.SetFacets(ctx, facets); err != nil {
		logger.Log.Warn("Failed to write facet cache", zap.Error(err))
	}
	return facets, nil
}

// Get returns one product with its owner and the actor's favorite flag.
func (s *ProductService) Get(ctx context.Context, actor policy.Actor, id uint) (*ProductView, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperrors.NotFound("product")
	}

	favorited, err := s.favorites.Exists(ctx, actor.ID, product.ID)
	if err != nil {
		return nil, err
	}
	return &ProductView{Product: *product, IsFavorited: favorited}, nil
}

// Create validates and stores the images, then inserts the product owned by actor.
func (s *ProductService) Create(ctx context.Context, actor policy.Actor, input ProductInput, images []storage.File) (*models.Product, error) {
	input = input.trimmed()

	prepared, err := s.validateInput(input, images, true)
	if err != nil {
		logger.Log.Warn("Product validation failed",
			zap.Uint("actor_id", actor.ID),
			zap.Error(err),
		)
		return nil, err
	}

	refs, err := s.storeImages(ctx, prepared)
	if err != nil {
		return nil, err
	}

	product := &models.Product{UserID: actor.ID, Images: refs}
	applyInput(product, input)

	if err := s.products.Create(ctx, product); err != nil {
		logger.Log.Error("Failed to create product",
			zap.Uint("actor_id", actor.ID),
			zap.Error(err),
		)
		s.discardImages(ctx, refs)
		return nil, err
	}

	s.invalidateFacets(ctx)
	s.activity.Record(ctx, activity.Entry{
		CauserID:    actor.ID,
		Action:      models.ActionCreated,
		SubjectType: productSubject,
		SubjectID:   product.ID,
		Description: "created",
		Properties:  map[string]any{"attributes": productAttributes(product)},
	})

	logger.Log.Info("Product created",
		zap.Uint("product_id", product.ID),
		zap.Uint("user_id", actor.ID),
		zap.Int("images", len(refs)),
	)

	return s.reload(ctx, product)
}

// Update changes a product's fields. When images are given they replace the
// old set, whose objects are removed once the new row is saved.
func (s *ProductService) Update(ctx context.Context, actor policy.Actor, id uint, input ProductInput, images []storage.File) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperrors.NotFound("product")
	}
	if err := policy.RequireModifyProduct(actor, product); err != nil {
		logger.Log.Warn("Product update denied",
			zap.Uint("product_id", id),
			zap.Uint("actor_id", actor.ID),
		)
		return nil, err
	}

	input = input.trimmed()
	prepared, err := s.validateInput(input, images, false)
	if err != nil {
		return nil, err
	}

	var newRefs []string
	if len(prepared) > 0 {
		if newRefs, err = s.storeImages(ctx, prepared); err != nil {
			return nil, err
		}
	}

	before := productAttributes(product)
	oldImages := product.Images

	applyInput(product, input)
	if newRefs != nil {
		product.Images = newRefs
	}

	if err := s.products.Update(ctx, product); err != nil {
		logger.Log.Error("Failed to update product",
			zap.Uint("product_id", id),
			zap.Error(err),
		)
		s.discardImages(ctx, newRefs)
		return nil, err
	}
	if newRefs != nil {
		s.discardImages(ctx, oldImages)
	}

	s.invalidateFacets(ctx)
	if old, changed := diffAttributes(before, productAttributes(product)); len(changed) > 0 {
		s.activity.Record(ctx, activity.Entry{
			CauserID:    actor.ID,
			Action:      models.ActionUpdated,
			SubjectType: productSubject,
			SubjectID:   product.ID,
			Description: "updated",
			Properties:  map[string]any{"old": old, "attributes": changed},
		})
	}

	logger.Log.Info("Product updated",
		zap.Uint("product_id", product.ID),
		zap.Uint("actor_id", actor.ID),
	)

	return s.reload(ctx, product)
}

// Delete removes the product with its conversations, messages and favorites,
// then its stored images.
func (s *ProductService) Delete(ctx context.Context, actor policy.Actor, id uint) error {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return apperrors.NotFound("product")
	}
	if err := policy.RequireModifyProduct(actor, product); err != nil {
		logger.Log.Warn("Product deletion denied",
			zap.Uint("product_id", id),
			zap.Uint("actor_id", actor.ID),
		)
		return err
	}

	if err := s.products.Delete(ctx, id); err != nil {
		logger.Log.Error("Failed to delete product",
			zap.Uint("product_id", id),
			zap.Error(err),
		)
		return err
	}

	s.discardImages(ctx, product.Images)
	s.invalidateFacets(ctx)
	s.activity.Record(ctx, activity.Entry{
		CauserID:    actor.ID,
		Action:      models.ActionDeleted,
		SubjectType: productSubject,
		SubjectID:   product.ID,
		Description: "deleted",
		Properties:  map[string]any{"attributes": productAttributes(product)},
	})

	logger.Log.Info("Product deleted",
		zap.Uint("product_id", id),
		zap.Uint("actor_id", actor.ID),
		zap.Bool("by_admin", actor.ID != product.UserID),
	)
	return nil
}

func (s *ProductService) validateInput(input ProductInput, images []storage.File, requireImages bool) ([]storage.File, error) {
	verr := &apperrors.ValidationError{}
	if input.Invalid != nil {
		for field, msg := range input.Invalid.Fields {
			verr.Add(field, msg)
		}
	}

	if err := validation.Fields(s.validate.Struct(input)); err != nil {
		var fields *apperrors.ValidationError
		if !errors.As(err, &fields) {
			return nil, err
		}
		for field, msg := range fields.Fields {
			verr.Add(field, msg)
		}
	}

	prepared, err := prepareImages(images, requireImages, verr)
	if err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return prepared, nil
}

func (s *ProductService) annotate(ctx context.Context, userID uint, products []models.Product) ([]ProductView, error) {
	ids := make([]uint, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	favorited, err := s.favorites.FavoritedIDs(ctx, userID, ids)
	if err != nil {
		logger.Log.Error("Failed to load favorites", zap.Uint("user_id", userID), zap.Error(err))
		return nil, err
	}
	return newProductViews(products, favorited), nil
}

func (s *ProductService) invalidateFacets(ctx context.Context) {
	if err := s.facets.Invalidate(ctx); err != nil {
		logger.Log.Warn("Failed to invalidate facet cache", zap.Error(err))
	}
}

// reload fetches the saved product with its owner, falling back to the
// in-memory copy if the read fails.
func (s *ProductService) reload(ctx context.Context, product *models.Product) (*models.Product, error) {
	fresh, err := s.products.GetByID(ctx, product.ID)
	if err != nil || fresh == nil {
		return product, nil
	}
	return fresh, nil
}

func applyInput(p *models.Product, in ProductInput) {
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.Category = in.Category
	p.Condition = in.Condition
	p.Faculty = in.Faculty
}

func productAttributes(p *models.Product) map[string]any {
	return map[string]any{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"category":    p.Category,
		"condition":   p.Condition,
		"faculty":     p.Faculty,
		"images":      p.Images,
		"user_id":     p.UserID,
	}
}

// diffAttributes returns the old and new values of every key that changed.
func diffAttributes(before, after map[string]any) (old, changed map[string]any) {
	old = map[string]any{}
	changed = map[string]any{}
	for key, value := range after {
		if !reflect.DeepEqual(before[key], value) {
			old[key] = before[key]
			changed[key] = value
		}
	}
	return old, changed
}
