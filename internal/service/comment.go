package service

import (
	"context"
	"fmt"
	"time"

	"github.com/workplane-dev/workplane/internal/models"
	"github.com/workplane-dev/workplane/internal/store"
)

// CreateComment adds a comment to the issue, authored by the acting
// membership.
func (s *Service) CreateComment(ctx context.Context, actor *models.Membership, workplaceID models.WorkplaceID, issueID models.IssueID, text string) (*models.Comment, error) {
	if err := requireRole(actor, models.RoleMember); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, validation("comment text is required")
	}
	if _, err := s.issueInWorkplace(ctx, workplaceID, issueID); err != nil {
		return nil, err
	}

	author := actor.ID
	comment := &models.Comment{
		ID:        models.NewCommentID(),
		Text:      text,
		CreatedAt: time.Now().UTC(),
		AuthorID:  &author,
	}
	if err := s.store.CreateComment(ctx, issueID, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

func (s *Service) ListComments(ctx context.Context, workplaceID models.WorkplaceID, issueID models.IssueID) ([]*models.Comment, error) {
	if _, err := s.issueInWorkplace(ctx, workplaceID, issueID); err != nil {
		return nil, err
	}
	return s.store.ListComments(ctx, issueID)
}

func (s *Service) UpdateComment(ctx context.Context, actor *models.Membership, workplaceID models.WorkplaceID, issueID models.IssueID, id models.CommentID, text string) (*models.Comment, error) {
	if err := requireRole(actor, models.RoleMember); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, validation("comment text is required")
	}
	if _, err := s.commentInIssue(ctx, workplaceID, issueID, id); err != nil {
		return nil, err
	}

	patch := models.CommentPatch{Text: &text}
	if err := s.store.MergeComment(ctx, id, patch); err != nil {
		return nil, err
	}
	return s.store.GetComment(ctx, id)
}

// DeleteComment unlinks the comment from its issue, then removes the
// record.
func (s *Service) DeleteComment(ctx context.Context, actor *models.Membership, workplaceID models.WorkplaceID, issueID models.IssueID, id models.CommentID) error {
	if err := requireRole(actor, models.RoleMember); err != nil {
		return err
	}
	if _, err := s.commentInIssue(ctx, workplaceID, issueID, id); err != nil {
		return err
	}

	if err := s.store.RemoveIssueComment(ctx, issueID, id); err != nil {
		return fmt.Errorf("failed to unlink comment from issue: %w", err)
	}
	return s.store.DeleteComment(ctx, id)
}

// commentInIssue loads the comment and verifies the issue actually lists
// it, after scoping the issue to the workplace.
func (s *Service) commentInIssue(ctx context.Context, workplaceID models.WorkplaceID, issueID models.IssueID, id models.CommentID) (*models.Comment, error) {
	if _, err := s.issueInWorkplace(ctx, workplaceID, issueID); err != nil {
		return nil, err
	}
	comment, err := s.store.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	owner, err := s.store.IssueOfComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if owner.ID != issueID {
		return nil, fmt.Errorf("comment %s in issue %s: %w", id, issueID, store.ErrNotFound)
	}
	return comment, nil
}
