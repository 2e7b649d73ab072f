package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/workplane-dev/workplane/internal/models"
	"github.com/workplane-dev/workplane/internal/service"
	"github.com/workplane-dev/workplane/internal/utils"
)

type CreateIssueRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	State       string  `json:"state"`
	SprintID    *string `json:"sprint_id"`
}

// UpdateIssueRequest distinguishes an absent sprint_id (no move) from an
// empty one (move to backlog).
type UpdateIssueRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	State       *string `json:"state"`
	SprintID    *string `json:"sprint_id"`
}

type IssueResponse struct {
	ID           models.IssueID        `json:"id"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	State        string                `json:"state"`
	CreatedAt    time.Time             `json:"creation_date"`
	Author       *models.MembershipID  `json:"author"`
	Implementers []models.MembershipID `json:"implementers"`
}

func issueResponse(issue *models.Issue) IssueResponse {
	return IssueResponse{
		ID:           issue.ID,
		Title:        issue.Title,
		Description:  issue.Description,
		State:        issue.State,
		CreatedAt:    issue.CreatedAt,
		Author:       issue.AuthorID,
		Implementers: issue.Implementers,
	}
}

func parseSprintRef(raw string) (*models.SprintID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := models.ParseSprintID(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (h *Handlers) CreateIssue(ctx *gin.Context) {
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

	var req CreateIssueRequest
	if err := ctx.BindJSON(&req); err != nil {
		h.log.Warn().Err(err).Msg("failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	fields := service.IssueFields{
		Title:       req.Title,
		Description: req.Description,
		State:       req.State,
	}
	if req.SprintID != nil {
		sprintID, err := parseSprintRef(*req.SprintID)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sprint ID"})
			return
		}
		fields.SprintID = sprintID
	}

	issue, err := h.service.CreateIssue(ctx.Request.Context(), membership, workplaceID, fields)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, issueResponse(issue))
}

func (h *Handlers) ListIssues(ctx *gin.Context) {
	workplaceID, err := utils.WorkplaceID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sprintID, err := parseSprintRef(ctx.Query("sprint_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sprint ID"})
		return
	}

	issues, err := h.service.ListIssues(ctx.Request.Context(), workplaceID, sprintID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	response := make([]IssueResponse, 0, len(issues))
	for _, issue := range issues {
		response = append(response, issueResponse(issue))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handlers) GetIssue(ctx *gin.Context) {
	workplaceID, err := utils.WorkplaceID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issueID, err := utils.IssueID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issue, err := h.service.GetIssue(ctx.Request.Context(), workplaceID, issueID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, issueResponse(issue))
}

func (h *Handlers) UpdateIssue(ctx *gin.Context) {
	workplaceID, err := utils.WorkplaceID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issueID, err := utils.IssueID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership, err := utils.CurrentMembership(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req UpdateIssueRequest
	if err := ctx.BindJSON(&req); err != nil {
		h.log.Warn().Err(err).Msg("failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	update := service.IssueUpdate{
		Title:       req.Title,
		Description: req.Description,
		State:       req.State,
	}
	if req.SprintID != nil {
		sprintID, err := parseSprintRef(*req.SprintID)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sprint ID"})
			return
		}
		update.MoveSprint = true
		update.SprintID = sprintID
	}

	issue, err := h.service.UpdateIssue(ctx.Request.Context(), membership, workplaceID, issueID, update)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, issueResponse(issue))
}

func (h *Handlers) DeleteIssue(ctx *gin.Context) {
	workplaceID, err := utils.WorkplaceID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issueID, err := utils.IssueID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership, err := utils.CurrentMembership(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.DeleteIssue(ctx.Request.Context(), membership, workplaceID, issueID); err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *Handlers) AssignImplementer(ctx *gin.Context) {
	workplaceID, err := utils.WorkplaceID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issueID, err := utils.IssueID(ctx)
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

	issue, err := h.service.AssignImplementer(ctx.Request.Context(), membership, workplaceID, issueID, membershipID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, issueResponse(issue))
}

func (h *Handlers) UnassignImplementer(ctx *gin.Context) {
	workplaceID, err := utils.WorkplaceID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issueID, err := utils.IssueID(ctx)
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

	issue, err := h.service.UnassignImplementer(ctx.Request.Context(), membership, workplaceID, issueID, membershipID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, issueResponse(issue))
}
