package handler

import (
	"net/http"

	"github.com/Baaaki/campus-market/internal/service"
	"github.com/gin-gonic/gin"
)

type FavoriteHandler struct {
	favorites *service.FavoriteService
}

func NewFavoriteHandler(favorites *service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites}
}

// List returns the actor's favorite products, most recently added first.
// GET /api/favorites?page=
func (h *FavoriteHandler) List(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	page, err := h.favorites.List(c.Request.Context(), actor.ID, queryPage(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}
