package handler

import (
	"net/http"

	"github.com/Baaaki/campus-market/internal/repository"
	"github.com/Baaaki/campus-market/internal/service"
	"github.com/Baaaki/campus-market/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler serves the moderation pages. Product edits and deletes go
// through ProductHandler, whose policy already admits admins.
type AdminHandler struct {
	authService *service.AuthService
	products    *service.ProductService
	activities  *service.ActivityService
	pageSize    int
}

func NewAdminHandler(authService *service.AuthService, products *service.ProductService, activities *service.ActivityService, pageSize int) *AdminHandler {
	return &AdminHandler{
		authService: authService,
		products:    products,
		activities:  activities,
		pageSize:    pageSize,
	}
}

// Products lists every product with the catalog filters.
// GET /api/admin/products
func (h *AdminHandler) Products(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	page, err := h.products.Catalog(c.Request.Context(), actor, repository.ScopeAll, catalogQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Activities returns the audit log, newest first.
// GET /api/admin/activities
func (h *AdminHandler) Activities(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	logger.Log.Info("Admin fetching activity log",
		zap.Uint("admin_id", actor.ID),
	)

	page, err := h.activities.List(c.Request.Context(), queryPage(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Users returns all users, newest first.
// GET /api/admin/users
func (h *AdminHandler) Users(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	logger.Log.Info("Admin fetching all users",
		zap.Uint("admin_id", actor.ID),
	)

	page, err := h.authService.ListUsers(c.Request.Context(), queryPage(c), h.pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}
