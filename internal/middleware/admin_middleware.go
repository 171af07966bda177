package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/storefront-golang/internal/auth"
)

// AdminChecker looks up the is_admin flag for a user id.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

// AdminMiddleware must run after AuthMiddleware. Non-admins are told to sign
// in with an admin account.
func AdminMiddleware(checker AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get identity from AuthMiddleware
		id, ok := auth.IdentityFromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in context (AuthMiddleware must run first)", "redirect": "/login"})
			return
		}

		// 2. Query the admin flag
		isAdmin, err := checker.IsAdmin(c.Request.Context(), id.ID)
		if err != nil {
			log.Printf("admin check failed for user %d: %v", id.ID, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Database error checking role"})
			return
		}

		// 3. Check permission
		if !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: Admin role required", "redirect": "/login"})
			return
		}

		c.Set("isAdmin", true)
		c.Next()
	}
}
