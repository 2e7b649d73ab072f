package utils

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/workplane-dev/workplane/internal/models"
)

func WorkplaceID(ctx *gin.Context) (models.WorkplaceID, error) {
	id, err := models.ParseWorkplaceID(ctx.Param("workplace_id"))

	if err != nil {
		return models.WorkplaceID{}, errors.New("Invalid workplace ID")
	}

	return id, nil
}

func MembershipID(ctx *gin.Context) (models.MembershipID, error) {
	id, err := models.ParseMembershipID(ctx.Param("membership_id"))

	if err != nil {
		return models.MembershipID{}, errors.New("Invalid membership ID")
	}

	return id, nil
}

func SprintID(ctx *gin.Context) (models.SprintID, error) {
	id, err := models.ParseSprintID(ctx.Param("sprint_id"))

	if err != nil {
		return models.SprintID{}, errors.New("Invalid sprint ID")
	}

	return id, nil
}

func IssueID(ctx *gin.Context) (models.IssueID, error) {
	id, err := models.ParseIssueID(ctx.Param("issue_id"))

	if err != nil {
		return models.IssueID{}, errors.New("Invalid issue ID")
	}

	return id, nil
}

func CommentID(ctx *gin.Context) (models.CommentID, error) {
	id, err := models.ParseCommentID(ctx.Param("comment_id"))

	if err != nil {
		return models.CommentID{}, errors.New("Invalid comment ID")
	}

	return id, nil
}
