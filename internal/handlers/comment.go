package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/workplane-dev/workplane/internal/models"
	"github.com/workplane-dev/workplane/internal/utils"
)

type CreateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type UpdateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type CommentResponse struct {
	ID        models.CommentID     `json:"id"`
	Text      string               `json:"text"`
	CreatedAt time.Time            `json:"creation_date"`
	Author    *models.MembershipID `json:"author"`
}

func commentResponse(comment *models.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
		Author:    comment.AuthorID,
	}
}

func (h *Handlers) CreateComment(ctx *gin.Context) {
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

	var req CreateCommentRequest
	if err := ctx.BindJSON(&req); err != nil {
		h.log.Warn().Err(err).Msg("failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	comment, err := h.service.CreateComment(ctx.Request.Context(), membership, workplaceID, issueID, req.Text)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, commentResponse(comment))
}

func (h *Handlers) ListComments(ctx *gin.Context) {
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

	comments, err := h.service.ListComments(ctx.Request.Context(), workplaceID, issueID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	response := make([]CommentResponse, 0, len(comments))
	for _, comment := range comments {
		response = append(response, commentResponse(comment))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handlers) UpdateComment(ctx *gin.Context) {
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

	commentID, err := utils.CommentID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership, err := utils.CurrentMembership(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req UpdateCommentRequest
	if err := ctx.BindJSON(&req); err != nil {
		h.log.Warn().Err(err).Msg("failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	comment, err := h.service.UpdateComment(ctx.Request.Context(), membership, workplaceID, issueID, commentID, req.Text)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, commentResponse(comment))
}

func (h *Handlers) DeleteComment(ctx *gin.Context) {
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

	commentID, err := utils.CommentID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership, err := utils.CurrentMembership(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.DeleteComment(ctx.Request.Context(), membership, workplaceID, issueID, commentID); err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
