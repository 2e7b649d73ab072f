package service

import (
	"context"
	"fmt"
	"time"

	"github.com/workplane-dev/workplane/internal/models"
	"github.com/workplane-dev/workplane/internal/store"
)

type IssueFields struct {
	Title       string
	Description string
	// State defaults to the workplace's first configured state.
	State    string
	SprintID *models.SprintID
}

type IssueUpdate struct {
	Title       *string
	Description *string
	State       *string
	// MoveSprint moves the issue when set: to SprintID, or to the backlog
	// when SprintID is nil.
	MoveSprint bool
	SprintID   *models.SprintID
}

// CreateIssue creates the issue in the workplace, authored by the acting
// membership, optionally scheduled into a sprint.
func (s *Service) CreateIssue(ctx context.Context, actor *models.Membership, workplaceID models.WorkplaceID, fields IssueFields) (*models.Issue, error) {
	if err := requireRole(actor, models.RoleMember); err != nil {
		return nil, err
	}
	if fields.Title == "" {
		return nil, validation("issue title is required")
	}

	workplace, err := s.store.GetWorkplace(ctx, workplaceID)
	if err != nil {
		return nil, err
	}
	state := fields.State
	if state == "" {
		if len(workplace.States) == 0 {
			return nil, validation("workplace has no states configured")
		}
		state = workplace.States[0]
	} else if !workplace.HasState(state) {
		return nil, validation(fmt.Sprintf("state %q is not defined on this workplace", state))
	}
	if fields.SprintID != nil {
		if _, err := s.sprintInWorkplace(ctx, workplaceID, *fields.SprintID); err != nil {
			return nil, err
		}
	}

	author := actor.ID
	issue := &models.Issue{
		ID:           models.NewIssueID(),
		Title:        fields.Title,
		Description:  fields.Description,
		State:        state,
		CreatedAt:    time.Now().UTC(),
		AuthorID:     &author,
		Implementers: []models.MembershipID{},
		Comments:     []models.CommentID{},
	}
	if err := s.store.CreateIssue(ctx, workplaceID, fields.SprintID, issue); err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}
	return issue, nil
}

func (s *Service) GetIssue(ctx context.Context, workplaceID models.WorkplaceID, id models.IssueID) (*models.Issue, error) {
	return s.issueInWorkplace(ctx, workplaceID, id)
}

// ListIssues returns the workplace's issues, or only a sprint's issues
// when sprintID is set.
func (s *Service) ListIssues(ctx context.Context, workplaceID models.WorkplaceID, sprintID *models.SprintID) ([]*models.Issue, error) {
	if sprintID != nil {
		if _, err := s.sprintInWorkplace(ctx, workplaceID, *sprintID); err != nil {
			return nil, err
		}
		return s.store.ListSprintIssues(ctx, *sprintID)
	}
	return s.store.ListIssues(ctx, workplaceID)
}

// UpdateIssue merges the patch and, when requested, moves the issue
// between sprints. The old sprint link is persisted away before the new
// one is added.
func (s *Service) UpdateIssue(ctx context.Context, actor *models.Membership, workplaceID models.WorkplaceID, id models.IssueID, update IssueUpdate) (*models.Issue, error) {
	if err := requireRole(actor, models.RoleMember); err != nil {
		return nil, err
	}
	if _, err := s.issueInWorkplace(ctx, workplaceID, id); err != nil {
		return nil, err
	}
	if update.Title != nil && *update.Title == "" {
		return nil, validation("issue title is required")
	}

	if update.State != nil {
		workplace, err := s.store.GetWorkplace(ctx, workplaceID)
		if err != nil {
			return nil, err
		}
		if !workplace.HasState(*update.State) {
			return nil, validation(fmt.Sprintf("state %q is not defined on this workplace", *update.State))
		}
	}
	if update.MoveSprint && update.SprintID != nil {
		if _, err := s.sprintInWorkplace(ctx, workplaceID, *update.SprintID); err != nil {
			return nil, err
		}
	}

	if update.Title != nil || update.Description != nil || update.State != nil {
		patch := models.IssuePatch{
			Title:       update.Title,
			Description: update.Description,
			State:       update.State,
		}
		if err := s.store.MergeIssue(ctx, id, patch); err != nil {
			return nil, err
		}
	}

	if update.MoveSprint {
		if err := s.moveIssue(ctx, id, update.SprintID); err != nil {
			return nil, err
		}
	}

	return s.store.GetIssue(ctx, id)
}

func (s *Service) moveIssue(ctx context.Context, id models.IssueID, target *models.SprintID) error {
	current, err := s.store.SprintOfIssue(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to resolve issue sprint: %w", err)
	}
	if current != nil && target != nil && current.ID == *target {
		return nil
	}

	if current != nil {
		if err := s.store.RemoveSprintIssue(ctx, current.ID, id); err != nil {
			return fmt.Errorf("failed to unlink issue from sprint: %w", err)
		}
	}
	if target != nil {
		if err := s.store.AppendSprintIssue(ctx, *target, id); err != nil {
			return fmt.Errorf("failed to link issue to sprint: %w", err)
		}
	}
	return nil
}

// AssignImplementer adds a workplace member to the issue's implementer
// list. Assigning an already assigned membership is a no-op.
func (s *Service) AssignImplementer(ctx context.Context, actor *models.Membership, workplaceID models.WorkplaceID, issueID models.IssueID, membershipID models.MembershipID) (*models.Issue, error) {
	if err := requireRole(actor, models.RoleMember); err != nil {
		return nil, err
	}
	issue, err := s.issueInWorkplace(ctx, workplaceID, issueID)
	if err != nil {
		return nil, err
	}
	if _, err := s.membershipInWorkplace(ctx, workplaceID, membershipID); err != nil {
		return nil, err
	}
	if issue.HasImplementer(membershipID) {
		return issue, nil
	}

	implementers := append(issue.Implementers, membershipID)
	patch := models.IssuePatch{Implementers: &implementers}
	if err := s.store.MergeIssue(ctx, issueID, patch); err != nil {
		return nil, err
	}
	return s.store.GetIssue(ctx, issueID)
}

// UnassignImplementer removes a membership from the issue's implementer
// list. Removing one that is not assigned is a no-op.
func (s *Service) UnassignImplementer(ctx context.Context, actor *models.Membership, workplaceID models.WorkplaceID, issueID models.IssueID, membershipID models.MembershipID) (*models.Issue, error) {
	if err := requireRole(actor, models.RoleMember); err != nil {
		return nil, err
	}
	issue, err := s.issueInWorkplace(ctx, workplaceID, issueID)
	if err != nil {
		return nil, err
	}
	if !issue.HasImplementer(membershipID) {
		return issue, nil
	}

	implementers := make([]models.MembershipID, 0, len(issue.Implementers)-1)
	for _, m := range issue.Implementers {
		if m != membershipID {
			implementers = append(implementers, m)
		}
	}
	patch := models.IssuePatch{Implementers: &implementers}
	if err := s.store.MergeIssue(ctx, issueID, patch); err != nil {
		return nil, err
	}
	return s.store.GetIssue(ctx, issueID)
}

// DeleteIssue removes the issue after persisting every reference away:
// the workplace link, the sprint link when scheduled, and the comments,
// which are cascade-deleted.
func (s *Service) DeleteIssue(ctx context.Context, actor *models.Membership, workplaceID models.WorkplaceID, id models.IssueID) error {
	if err := requireRole(actor, models.RoleMember); err != nil {
		return err
	}
	issue, err := s.issueInWorkplace(ctx, workplaceID, id)
	if err != nil {
		return err
	}
	return s.deleteIssue(ctx, workplaceID, issue)
}

func (s *Service) deleteIssue(ctx context.Context, workplaceID models.WorkplaceID, issue *models.Issue) error {
	if err := s.store.RemoveWorkplaceIssue(ctx, workplaceID, issue.ID); err != nil {
		return fmt.Errorf("failed to unlink issue from workplace: %w", err)
	}

	sprint, err := s.store.SprintOfIssue(ctx, issue.ID)
	if err != nil {
		return fmt.Errorf("failed to resolve issue sprint: %w", err)
	}
	if sprint != nil {
		if err := s.store.RemoveSprintIssue(ctx, sprint.ID, issue.ID); err != nil {
			return fmt.Errorf("failed to unlink issue from sprint: %w", err)
		}
	}

	for _, commentID := range issue.Comments {
		if err := s.store.RemoveIssueComment(ctx, issue.ID, commentID); err != nil {
			return fmt.Errorf("failed to unlink comment %s: %w", commentID, err)
		}
		if err := s.store.DeleteComment(ctx, commentID); err != nil {
			return fmt.Errorf("failed to cascade comment %s: %w", commentID, err)
		}
	}

	return s.store.DeleteIssue(ctx, issue.ID)
}

// issueInWorkplace loads the issue and verifies the workplace actually
// lists it; an issue of some other workplace reads as not found.
func (s *Service) issueInWorkplace(ctx context.Context, workplaceID models.WorkplaceID, id models.IssueID) (*models.Issue, error) {
	issue, err := s.store.GetIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	owner, err := s.store.WorkplaceOfIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	if owner.ID != workplaceID {
		return nil, fmt.Errorf("issue %s in workplace %s: %w", id, workplaceID, store.ErrNotFound)
	}
	return issue, nil
}
