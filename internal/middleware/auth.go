package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/workplane-dev/workplane/internal/auth"
	"github.com/workplane-dev/workplane/internal/store"
	"github.com/workplane-dev/workplane/internal/types"
)

// Auth verifies the caller's token and loads the user it was issued for
// into the request context. The token is read from the Authorization
// header, falling back to the cookie set by login.
func Auth(mgr *auth.Manager, st store.Store) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var tokenString string

		authHeader := ctx.GetHeader("Authorization")

		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)

			if len(parts) != 2 || parts[0] != "Bearer" {
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
				return
			}

			tokenString = parts[1]
		} else {
			cookie, err := ctx.Cookie("token")

			if err != nil || cookie == "" {
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token is required"})
				return
			}

			tokenString = cookie
		}

		userID, err := mgr.Verify(tokenString)

		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		user, err := st.GetUser(ctx.Request.Context(), userID)

		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		ctx.Set(types.ContextUserKey, user)
		ctx.Next()
	}
}
