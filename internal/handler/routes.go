package handler

import (
	"time"

	"github.com/Baaaki/campus-market/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouteConfig wires the handlers and middleware onto a gin engine.
type RouteConfig struct {
	JWTSecret    string
	IsProduction bool
	CORSOrigins  []string
	// AuthLimiter throttles register and login. Nil disables it.
	AuthLimiter *middleware.RateLimiter
	// StoragePath is served under /storage when set (local image driver).
	StoragePath string

	Auth          *AuthHandler
	Products      *ProductHandler
	Favorites     *FavoriteHandler
	Conversations *ConversationHandler
	Admin         *AdminHandler
}

// NewRouter builds the engine with the global middleware and every route.
func (rc *RouteConfig) NewRouter() *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = 8 << 20

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.HSTSMiddleware(rc.IsProduction))
	if len(rc.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     rc.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	if rc.StoragePath != "" {
		router.Static("/storage", rc.StoragePath)
	}

	rc.setupPublicRoutes(router)
	rc.setupProtectedRoutes(router)
	return router
}

func (rc *RouteConfig) setupPublicRoutes(router *gin.Engine) {
	auth := router.Group("/api/auth")
	if rc.AuthLimiter != nil {
		auth.Use(rc.AuthLimiter.Middleware())
	}
	auth.POST("/register", rc.Auth.Register)
	auth.POST("/login", rc.Auth.Login)
	auth.POST("/logout", rc.Auth.Logout)
}

func (rc *RouteConfig) setupProtectedRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(rc.JWTSecret))
	{
		api.GET("/auth/me", rc.Auth.Me)

		api.GET("/products", rc.Products.Feed)
		api.GET("/products/mine", rc.Products.Mine)
		api.POST("/products", rc.Products.Create)
		api.GET("/products/:id", rc.Products.Show)
		api.PUT("/products/:id", rc.Products.Update)
		api.DELETE("/products/:id", rc.Products.Delete)
		api.POST("/products/:id/favorite", rc.Products.ToggleFavorite)
		api.POST("/products/:id/conversations", rc.Products.StartConversation)

		api.GET("/favorites", rc.Favorites.List)

		api.GET("/conversations", rc.Conversations.List)
		api.GET("/conversations/:id", rc.Conversations.Show)
		api.POST("/conversations/:id/messages", rc.Conversations.SendMessage)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("/products", rc.Admin.Products)
		admin.PUT("/products/:id", rc.Products.Update)
		admin.DELETE("/products/:id", rc.Products.Delete)
		admin.GET("/activities", rc.Admin.Activities)
		admin.GET("/users", rc.Admin.Users)
	}
}
