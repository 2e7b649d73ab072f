package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/workplane-dev/workplane/internal/models"
	"github.com/workplane-dev/workplane/internal/types"
)

func CurrentUser(ctx *gin.Context) (*models.User, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return nil, fmt.Errorf("User not authenticated")
	}

	authenticatedUser, ok := user.(*models.User)

	if !ok {
		return nil, fmt.Errorf("Invalid user type in context")
	}

	return authenticatedUser, nil
}

func CurrentMembership(ctx *gin.Context) (*models.Membership, error) {
	membership, exists := ctx.Get(types.ContextMembershipKey)

	if !exists {
		return nil, fmt.Errorf("Workplace membership not resolved")
	}

	resolved, ok := membership.(*models.Membership)

	if !ok {
		return nil, fmt.Errorf("Invalid membership type in context")
	}

	return resolved, nil
}
