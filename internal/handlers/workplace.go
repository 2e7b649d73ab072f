package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workplane-dev/workplane/internal/models"
	"github.com/workplane-dev/workplane/internal/service"
	"github.com/workplane-dev/workplane/internal/utils"
)

type CreateWorkplaceRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateWorkplaceRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	States      *[]string `json:"states"`
}

type WorkplaceResponse struct {
	ID          models.WorkplaceID `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	States      []string           `json:"states"`
}

func workplaceResponse(workplace *models.Workplace) WorkplaceResponse {
	return WorkplaceResponse{
		ID:          workplace.ID,
		Name:        workplace.Name,
		Description: workplace.Description,
		States:      workplace.States,
	}
}

func (h *Handlers) CreateWorkplace(ctx *gin.Context) {
	currentUser, err := utils.CurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateWorkplaceRequest
	if err := ctx.BindJSON(&req); err != nil {
		h.log.Warn().Err(err).Msg("failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	workplace, err := h.service.CreateWorkplace(ctx.Request.Context(), currentUser, service.WorkplaceFields{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, workplaceResponse(workplace))
}

func (h *Handlers) ListWorkplaces(ctx *gin.Context) {
	currentUser, err := utils.CurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	workplaces, err := h.service.ListWorkplaces(ctx.Request.Context(), currentUser.ID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	response := make([]WorkplaceResponse, 0, len(workplaces))
	for _, workplace := range workplaces {
		response = append(response, workplaceResponse(workplace))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handlers) GetWorkplace(ctx *gin.Context) {
	workplaceID, err := utils.WorkplaceID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	workplace, err := h.service.GetWorkplace(ctx.Request.Context(), workplaceID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, workplaceResponse(workplace))
}

func (h *Handlers) UpdateWorkplace(ctx *gin.Context) {
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

	var req UpdateWorkplaceRequest
	if err := ctx.BindJSON(&req); err != nil {
		h.log.Warn().Err(err).Msg("failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	workplace, err := h.service.UpdateWorkplace(ctx.Request.Context(), membership, workplaceID, models.WorkplacePatch{
		Name:        req.Name,
		Description: req.Description,
		States:      req.States,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, workplaceResponse(workplace))
}

func (h *Handlers) DeleteWorkplace(ctx *gin.Context) {
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

	if err := h.service.DeleteWorkplace(ctx.Request.Context(), membership, workplaceID); err != nil {
		h.respondError(ctx, err)
		return
	}

	if err := h.blob.RemoveAll(workplaceID); err != nil {
		h.log.Warn().Err(err).Str("workplace", workplaceID.String()).Msg("failed to remove workplace files")
	}

	ctx.Status(http.StatusNoContent)
}

func (h *Handlers) AcceptInvitation(ctx *gin.Context) {
	currentUser, err := utils.CurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	workplaceID, err := utils.WorkplaceID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership, err := h.service.AcceptInvitation(ctx.Request.Context(), currentUser.ID, workplaceID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":    "Invitation accepted",
		"membership": membership,
	})
}
