package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/workplane-dev/workplane/internal/models"
	"github.com/workplane-dev/workplane/internal/store"
)

type SprintFields struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
}

type SprintUpdate struct {
	Name      *string
	StartDate *time.Time
	EndDate   *time.Time
}

// CreateSprint schedules a sprint in the workplace. The overlap check and
// the insert happen atomically in the store; a conflicting range comes
// back as a ValidationError.
func (s *Service) CreateSprint(ctx context.Context, actor *models.Membership, workplaceID models.WorkplaceID, fields SprintFields) (*models.Sprint, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	if fields.Name == "" {
		return nil, validation("sprint name is required")
	}
	interval := models.Interval{Start: fields.StartDate, End: fields.EndDate}
	if !interval.Valid() {
		return nil, validation("sprint end date must be after its start date")
	}

	sprint := &models.Sprint{
		ID:        models.NewSprintID(),
		Name:      fields.Name,
		StartDate: fields.StartDate,
		EndDate:   fields.EndDate,
	}
	if err := s.store.CreateSprint(ctx, workplaceID, sprint); err != nil {
		if errors.Is(err, store.ErrSprintOverlap) {
			return nil, &ValidationError{Reason: "sprint dates overlap an existing sprint", err: err}
		}
		return nil, fmt.Errorf("failed to create sprint: %w", err)
	}
	return sprint, nil
}

func (s *Service) GetSprint(ctx context.Context, workplaceID models.WorkplaceID, id models.SprintID) (*models.Sprint, error) {
	return s.sprintInWorkplace(ctx, workplaceID, id)
}

func (s *Service) ListSprints(ctx context.Context, workplaceID models.WorkplaceID) ([]*models.Sprint, error) {
	return s.store.ListSprints(ctx, workplaceID)
}

// UpdateSprint merges the patch. A date change is re-validated against
// every sibling sprint except this one, atomically with the write.
func (s *Service) UpdateSprint(ctx context.Context, actor *models.Membership, workplaceID models.WorkplaceID, id models.SprintID, update SprintUpdate) (*models.Sprint, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	sprint, err := s.sprintInWorkplace(ctx, workplaceID, id)
	if err != nil {
		return nil, err
	}
	if update.Name != nil && *update.Name == "" {
		return nil, validation("sprint name is required")
	}

	if update.StartDate != nil || update.EndDate != nil {
		interval := sprint.Interval()
		if update.StartDate != nil {
			interval.Start = *update.StartDate
		}
		if update.EndDate != nil {
			interval.End = *update.EndDate
		}
		if !interval.Valid() {
			return nil, validation("sprint end date must be after its start date")
		}
		if err := s.store.RescheduleSprint(ctx, workplaceID, id, interval); err != nil {
			if errors.Is(err, store.ErrSprintOverlap) {
				return nil, &ValidationError{Reason: "sprint dates overlap an existing sprint", err: err}
			}
			return nil, fmt.Errorf("failed to reschedule sprint: %w", err)
		}
	}

	if update.Name != nil {
		patch := models.SprintPatch{Name: update.Name}
		if err := s.store.MergeSprint(ctx, id, patch); err != nil {
			return nil, err
		}
	}

	return s.store.GetSprint(ctx, id)
}

// DeleteSprint unlinks the sprint from its workplace and removes the
// record. Contained issues are not deleted; they fall back to the backlog.
func (s *Service) DeleteSprint(ctx context.Context, actor *models.Membership, workplaceID models.WorkplaceID, id models.SprintID) error {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return err
	}
	if _, err := s.sprintInWorkplace(ctx, workplaceID, id); err != nil {
		return err
	}

	if err := s.store.RemoveWorkplaceSprint(ctx, workplaceID, id); err != nil {
		return fmt.Errorf("failed to unlink sprint from workplace: %w", err)
	}
	return s.store.DeleteSprint(ctx, id)
}

// sprintInWorkplace loads the sprint and verifies the workplace actually
// lists it; a sprint of some other workplace reads as not found.
func (s *Service) sprintInWorkplace(ctx context.Context, workplaceID models.WorkplaceID, id models.SprintID) (*models.Sprint, error) {
	sprint, err := s.store.GetSprint(ctx, id)
	if err != nil {
		return nil, err
	}
	owner, err := s.store.WorkplaceOfSprint(ctx, id)
	if err != nil {
		return nil, err
	}
	if owner.ID != workplaceID {
		return nil, fmt.Errorf("sprint %s in workplace %s: %w", id, workplaceID, store.ErrNotFound)
	}
	return sprint, nil
}
