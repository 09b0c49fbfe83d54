package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/Baaaki/campus-market/internal/apperrors"
	"github.com/Baaaki/campus-market/internal/repository"
	"github.com/Baaaki/campus-market/internal/service"
	"github.com/Baaaki/campus-market/internal/storage"
	"github.com/Baaaki/campus-market/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxUploadBytes bounds a whole product form: every image at full size plus
// room for the text fields.
const maxUploadBytes = service.MaxImages*service.MaxImageSize + 1<<20

type ProductHandler struct {
	products      *service.ProductService
	favorites     *service.FavoriteService
	conversations *service.ConversationService
}

func NewProductHandler(products *service.ProductService, favorites *service.FavoriteService, conversations *service.ConversationService) *ProductHandler {
	return &ProductHandler{
		products:      products,
		favorites:     favorites,
		conversations: conversations,
	}
}

// Feed lists other users' products.
// GET /api/products?page=&search=&category=&faculty=
func (h *ProductHandler) Feed(c *gin.Context) {
	h.catalog(c, repository.ScopeFeed)
}

// Mine lists the actor's own products.
// GET /api/products/mine
func (h *ProductHandler) Mine(c *gin.Context) {
	h.catalog(c, repository.ScopeOwn)
}

func (h *ProductHandler) catalog(c *gin.Context, scope repository.Scope) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	page, err := h.products.Catalog(c.Request.Context(), actor, scope, catalogQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Show returns one product.
// GET /api/products/:id
func (h *ProductHandler) Show(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	product, err := h.products.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// Create publishes a product from a multipart form with one or more images.
// POST /api/products
func (h *ProductHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	input, images, cleanup, err := bindProductForm(c)
	if err != nil {
		respondFormError(c, err)
		return
	}
	defer cleanup()

	product, err := h.products.Create(c.Request.Context(), actor, input, images)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"product": product,
	})
}

// Update replaces a product's fields and, when files are sent, its images.
// PUT /api/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	input, images, cleanup, err := bindProductForm(c)
	if err != nil {
		respondFormError(c, err)
		return
	}
	defer cleanup()

	product, err := h.products.Update(c.Request.Context(), actor, id, input, images)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"product": product,
	})
}

// Delete removes a product.
// DELETE /api/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// ToggleFavorite flips the actor's favorite on a product.
// POST /api/products/:id/favorite
func (h *ProductHandler) ToggleFavorite(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	favorited, err := h.favorites.Toggle(c.Request.Context(), actor.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorited": favorited})
}

// StartConversation opens the actor's conversation with the product owner.
// POST /api/products/:id/conversations
func (h *ProductHandler) StartConversation(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	conv, created, err := h.conversations.Start(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"conversation": conv,
		"created":      created,
	})
}

func catalogQuery(c *gin.Context) service.CatalogQuery {
	return service.CatalogQuery{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Faculty:  c.Query("faculty"),
		Page:     queryPage(c),
	}
}

var errUploadTooLarge = errors.New("request body too large")

// bindProductForm reads the product fields and image files of a form. The
// returned cleanup closes the opened files.
func bindProductForm(c *gin.Context) (service.ProductInput, []storage.File, func(), error) {
	noop := func() {}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	form, err := c.MultipartForm()
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return service.ProductInput{}, nil, noop, errUploadTooLarge
		}
		return service.ProductInput{}, nil, noop, err
	}

	input := service.ProductInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		Condition:   c.PostForm("condition"),
		Faculty:     c.PostForm("faculty"),
	}

	// A bad price is passed on so the service reports it with the other fields
	rawPrice := strings.TrimSpace(c.PostForm("price"))
	if rawPrice == "" {
		input.Invalid = apperrors.NewValidationError("price", "price is required")
	} else if price, err := strconv.ParseUint(rawPrice, 10, 64); err != nil {
		input.Invalid = apperrors.NewValidationError("price", "price must be a non-negative whole number")
	} else {
		input.Price = price
	}

	if form == nil {
		return input, nil, noop, nil
	}

	var headers []*multipart.FileHeader
	headers = append(headers, form.File["images"]...)
	headers = append(headers, form.File["images[]"]...)

	files := make([]storage.File, 0, len(headers))
	closers := make([]io.Closer, 0, len(headers))
	cleanup := func() {
		for _, cl := range closers {
			_ = cl.Close()
		}
	}

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			cleanup()
			return input, nil, noop, err
		}
		closers = append(closers, f)
		files = append(files, storage.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		})
	}

	return input, files, cleanup, nil
}

func respondFormError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errUploadTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
	default:
		logger.Log.Warn("Product form parsing failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
	}
}
