package middleware

import (
	"net/http"
	"strings"

	"github.com/Baaaki/campus-market/internal/models"
	"github.com/Baaaki/campus-market/internal/policy"
	"github.com/Baaaki/campus-market/internal/utils"
	"github.com/gin-gonic/gin"
)

// AuthCookieName is the HttpOnly cookie the login handlers set
const AuthCookieName = "token"

const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextUserRole  = "user_role"
	ContextClaims    = "claims"
)

// AuthMiddleware accepts a Bearer token or the auth cookie and puts the
// claims on the context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Extract token (header first, then cookie)
		tokenString, ok := extractToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			return
		}

		// 2. Validate token
		claims, err := utils.ValidateToken(tokenString, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		// 3. Add claims to context
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextClaims, claims)

		c.Next()
	}
}

func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
			})
			return
		}

		if !actor.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
			})
			return
		}

		c.Next()
	}
}

// CurrentActor returns the authenticated user set by AuthMiddleware.
func CurrentActor(c *gin.Context) (policy.Actor, bool) {
	id, ok := c.Get(ContextUserID)
	if !ok {
		return policy.Actor{}, false
	}
	userID, ok := id.(uint)
	if !ok || userID == 0 {
		return policy.Actor{}, false
	}

	role, _ := c.Get(ContextUserRole)
	userRole, _ := role.(models.Role)

	return policy.Actor{ID: userID, Role: userRole}, true
}

func extractToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		token, found := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		return token, found && token != ""
	}

	token, err := c.Cookie(AuthCookieName)
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}
