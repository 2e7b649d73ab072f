package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/workplane-dev/workplane/internal/models"
	"github.com/workplane-dev/workplane/internal/service"
	"github.com/workplane-dev/workplane/internal/utils"
)

type CreateSprintRequest struct {
	Name      string    `json:"name" binding:"required"`
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
}

type UpdateSprintRequest struct {
	Name      *string    `json:"name"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

type SprintResponse struct {
	ID        models.SprintID `json:"id"`
	Name      string          `json:"name"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
}

func sprintResponse(sprint *models.Sprint) SprintResponse {
	return SprintResponse{
		ID:        sprint.ID,
		Name:      sprint.Name,
		StartDate: sprint.StartDate,
		EndDate:   sprint.EndDate,
	}
}

func (h *Handlers) CreateSprint(ctx *gin.Context) {
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

	var req CreateSprintRequest
	if err := ctx.BindJSON(&req); err != nil {
		h.log.Warn().Err(err).Msg("failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	sprint, err := h.service.CreateSprint(ctx.Request.Context(), membership, workplaceID, service.SprintFields{
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, sprintResponse(sprint))
}

func (h *Handlers) ListSprints(ctx *gin.Context) {
	workplaceID, err := utils.WorkplaceID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sprints, err := h.service.ListSprints(ctx.Request.Context(), workplaceID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	response := make([]SprintResponse, 0, len(sprints))
	for _, sprint := range sprints {
		response = append(response, sprintResponse(sprint))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handlers) GetSprint(ctx *gin.Context) {
	workplaceID, err := utils.WorkplaceID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sprintID, err := utils.SprintID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sprint, err := h.service.GetSprint(ctx.Request.Context(), workplaceID, sprintID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, sprintResponse(sprint))
}

func (h *Handlers) UpdateSprint(ctx *gin.Context) {
	workplaceID, err := utils.WorkplaceID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sprintID, err := utils.SprintID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership, err := utils.CurrentMembership(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req UpdateSprintRequest
	if err := ctx.BindJSON(&req); err != nil {
		h.log.Warn().Err(err).Msg("failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	sprint, err := h.service.UpdateSprint(ctx.Request.Context(), membership, workplaceID, sprintID, service.SprintUpdate{
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, sprintResponse(sprint))
}

func (h *Handlers) DeleteSprint(ctx *gin.Context) {
	workplaceID, err := utils.WorkplaceID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sprintID, err := utils.SprintID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership, err := utils.CurrentMembership(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.DeleteSprint(ctx.Request.Context(), membership, workplaceID, sprintID); err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
