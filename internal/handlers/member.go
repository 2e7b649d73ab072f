package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workplane-dev/workplane/internal/models"
	"github.com/workplane-dev/workplane/internal/types"
	"github.com/workplane-dev/workplane/internal/utils"
)

type InviteMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type MemberResponse struct {
	ID   models.MembershipID `json:"id"`
	Role models.Role         `json:"role"`
	User types.UserResponse  `json:"user"`
}

func memberResponse(member *models.Member) MemberResponse {
	return MemberResponse{
		ID:   member.ID,
		Role: member.Role,
		User: types.UserResponse{
			ID:    member.User.ID,
			Name:  member.User.Name,
			Email: member.User.Email,
		},
	}
}

func (h *Handlers) ListMembers(ctx *gin.Context) {
	workplaceID, err := utils.WorkplaceID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	members, err := h.service.ListMembers(ctx.Request.Context(), workplaceID, ctx.Query("prefix_email"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	response := make([]MemberResponse, 0, len(members))
	for _, member := range members {
		response = append(response, memberResponse(member))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handlers) InviteMember(ctx *gin.Context) {
	workplaceID, err := utils.WorkplaceID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership, err := utils.CurrentMembership(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req InviteMemberRequest
	if err := ctx.BindJSON(&req); err != nil {
		h.log.Warn().Err(err).Msg("failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.service.InviteMember(ctx.Request.Context(), membership, workplaceID, req.Email); err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Invitation sent"})
}

func (h *Handlers) ChangeMemberRole(ctx *gin.Context) {
	workplaceID, err := utils.WorkplaceID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membershipID, err := utils.MembershipID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership, err := utils.CurrentMembership(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req ChangeRoleRequest
	if err := ctx.BindJSON(&req); err != nil {
		h.log.Warn().Err(err).Msg("failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	updated, err := h.service.ChangeMemberRole(ctx.Request.Context(), membership, workplaceID, membershipID, models.Role(req.Role))
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *Handlers) RemoveMember(ctx *gin.Context) {
	workplaceID, err := utils.WorkplaceID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membershipID, err := utils.MembershipID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership, err := utils.CurrentMembership(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.RemoveMember(ctx.Request.Context(), membership, workplaceID, membershipID); err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
