package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workplane-dev/workplane/internal/models"
	"github.com/workplane-dev/workplane/internal/store"
	"github.com/workplane-dev/workplane/internal/types"
)

// WorkplaceScope resolves the caller's membership in the workplace
// addressed by :workplace_id and stores it in the request context. A
// caller without a membership cannot see the workplace at all, so a
// missing workplace and a missing membership both read as not found.
func WorkplaceScope(st store.Store) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		workplaceID, err := models.ParseWorkplaceID(ctx.Param("workplace_id"))

		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid workplace ID"})
			return
		}

		raw, exists := ctx.Get(types.ContextUserKey)
		user, ok := raw.(*models.User)

		if !exists || !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		membership, err := st.GetMembershipByUser(ctx.Request.Context(), workplaceID, user.ID)

		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Workplace not found"})
			return
		}

		ctx.Set(types.ContextMembershipKey, membership)
		ctx.Next()
	}
}
