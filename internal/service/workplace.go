package service

import (
	"context"
	"fmt"

	"github.com/workplane-dev/workplane/internal/models"
)

type WorkplaceFields struct {
	Name        string
	Description string
}

// CreateWorkplace creates the workplace with the default state set and an
// ADMIN membership for the creator, persisted as one atomic step.
func (s *Service) CreateWorkplace(ctx context.Context, user *models.User, fields WorkplaceFields) (*models.Workplace, error) {
	if fields.Name == "" {
		return nil, validation("workplace name is required")
	}

	workplace := &models.Workplace{
		ID:          models.NewWorkplaceID(),
		Name:        fields.Name,
		Description: fields.Description,
		States:      models.DefaultStates(),
	}
	membership := &models.Membership{
		ID:     models.NewMembershipID(),
		UserID: user.ID,
		Role:   models.RoleAdmin,
	}
	if err := s.store.CreateWorkplace(ctx, workplace, membership); err != nil {
		return nil, fmt.Errorf("failed to create workplace: %w", err)
	}

	workplace.Memberships = append(workplace.Memberships, membership.ID)
	return workplace, nil
}

func (s *Service) GetWorkplace(ctx context.Context, id models.WorkplaceID) (*models.Workplace, error) {
	return s.store.GetWorkplace(ctx, id)
}

// ListWorkplaces returns every workplace the user holds a membership in.
func (s *Service) ListWorkplaces(ctx context.Context, userID models.UserID) ([]*models.Workplace, error) {
	return s.store.ListWorkplacesByUser(ctx, userID)
}

func (s *Service) UpdateWorkplace(ctx context.Context, actor *models.Membership, id models.WorkplaceID, patch models.WorkplacePatch) (*models.Workplace, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	if patch.Name != nil && *patch.Name == "" {
		return nil, validation("workplace name is required")
	}
	if patch.States != nil && len(*patch.States) == 0 {
		return nil, validation("workplace needs at least one state")
	}

	if err := s.store.MergeWorkplace(ctx, id, patch); err != nil {
		return nil, err
	}
	return s.store.GetWorkplace(ctx, id)
}

// DeleteWorkplace tears down the whole graph under the workplace:
// memberships are detached and removed, every issue cascades with its
// comments, sprints are unlinked and removed, and the workplace record
// goes last.
func (s *Service) DeleteWorkplace(ctx context.Context, actor *models.Membership, id models.WorkplaceID) error {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return err
	}

	workplace, err := s.store.GetWorkplace(ctx, id)
	if err != nil {
		return err
	}

	for _, membershipID := range workplace.Memberships {
		if err := s.removeMembership(ctx, id, membershipID); err != nil {
			return fmt.Errorf("failed to cascade membership %s: %w", membershipID, err)
		}
	}

	for _, issueID := range workplace.Issues {
		issue, err := s.store.GetIssue(ctx, issueID)
		if err != nil {
			return fmt.Errorf("failed to cascade issue %s: %w", issueID, err)
		}
		if err := s.deleteIssue(ctx, id, issue); err != nil {
			return fmt.Errorf("failed to cascade issue %s: %w", issueID, err)
		}
	}

	for _, sprintID := range workplace.Sprints {
		if err := s.store.RemoveWorkplaceSprint(ctx, id, sprintID); err != nil {
			return fmt.Errorf("failed to unlink sprint %s: %w", sprintID, err)
		}
		if err := s.store.DeleteSprint(ctx, sprintID); err != nil {
			return fmt.Errorf("failed to cascade sprint %s: %w", sprintID, err)
		}
	}

	if err := s.store.DeleteWorkplace(ctx, id); err != nil {
		return err
	}

	s.log.Debug().
		Str("workplace", id.String()).
		Int("memberships", len(workplace.Memberships)).
		Int("issues", len(workplace.Issues)).
		Int("sprints", len(workplace.Sprints)).
		Msg("workplace cascade complete")
	return nil
}
