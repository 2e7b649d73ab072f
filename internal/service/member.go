package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/workplane-dev/workplane/internal/models"
	"github.com/workplane-dev/workplane/internal/store"
)

const mailTimeout = 30 * time.Second

// ListMembers returns the workplace's memberships joined with their user
// documents, optionally filtered by an email prefix.
func (s *Service) ListMembers(ctx context.Context, workplaceID models.WorkplaceID, emailPrefix string) ([]*models.Member, error) {
	return s.store.ListMembers(ctx, workplaceID, emailPrefix)
}

// InviteMember emails an invitation link for the workplace. Delivery runs
// detached from the request; a failed send is logged, never surfaced.
func (s *Service) InviteMember(ctx context.Context, actor *models.Membership, workplaceID models.WorkplaceID, email string) error {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return err
	}
	if email == "" {
		return validation("email is required")
	}

	workplace, err := s.store.GetWorkplace(ctx, workplaceID)
	if err != nil {
		return err
	}

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()

		if err := s.mail.SendInvitation(sendCtx, email, workplace.ID, workplace.Name); err != nil {
			s.log.Error().Err(err).
				Str("to", email).
				Str("workplace", workplace.ID.String()).
				Msg("failed to send invitation")
		}
	}()
	return nil
}

// AcceptInvitation joins the user to the workplace as MEMBER. A user who
// already holds a membership gets that membership back unchanged.
func (s *Service) AcceptInvitation(ctx context.Context, userID models.UserID, workplaceID models.WorkplaceID) (*models.Membership, error) {
	existing, err := s.store.GetMembershipByUser(ctx, workplaceID, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	membership := &models.Membership{
		ID:     models.NewMembershipID(),
		UserID: userID,
		Role:   models.RoleMember,
	}
	if err := s.store.CreateMembership(ctx, workplaceID, membership); err != nil {
		return nil, fmt.Errorf("failed to join workplace: %w", err)
	}
	return membership, nil
}

func (s *Service) ChangeMemberRole(ctx context.Context, actor *models.Membership, workplaceID models.WorkplaceID, membershipID models.MembershipID, role models.Role) (*models.Membership, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, validation("unknown role")
	}
	if _, err := s.membershipInWorkplace(ctx, workplaceID, membershipID); err != nil {
		return nil, err
	}

	patch := models.MembershipPatch{Role: &role}
	if err := s.store.MergeMembership(ctx, membershipID, patch); err != nil {
		return nil, err
	}
	return s.store.GetMembership(ctx, membershipID)
}

// RemoveMember detaches every author and implementer reference to the
// membership, then unlinks it from the workplace and deletes it.
func (s *Service) RemoveMember(ctx context.Context, actor *models.Membership, workplaceID models.WorkplaceID, membershipID models.MembershipID) error {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return err
	}
	if _, err := s.membershipInWorkplace(ctx, workplaceID, membershipID); err != nil {
		return err
	}
	return s.removeMembership(ctx, workplaceID, membershipID)
}

// DeleteAccount removes the user together with their membership in every
// workplace, detaching author and implementer references the way a member
// removal does.
func (s *Service) DeleteAccount(ctx context.Context, userID models.UserID) error {
	workplaces, err := s.store.ListWorkplacesByUser(ctx, userID)
	if err != nil {
		return err
	}

	for _, w := range workplaces {
		membership, err := s.store.GetMembershipByUser(ctx, w.ID, userID)
		if err != nil {
			return fmt.Errorf("failed to resolve membership in workplace %s: %w", w.ID, err)
		}
		if err := s.removeMembership(ctx, w.ID, membership.ID); err != nil {
			return fmt.Errorf("failed to leave workplace %s: %w", w.ID, err)
		}
	}

	return s.store.DeleteUser(ctx, userID)
}

func (s *Service) removeMembership(ctx context.Context, workplaceID models.WorkplaceID, id models.MembershipID) error {
	if err := s.store.DetachMembership(ctx, id); err != nil {
		return fmt.Errorf("failed to detach membership: %w", err)
	}
	if err := s.store.DeleteMembership(ctx, workplaceID, id); err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	return nil
}

// membershipInWorkplace loads the membership and verifies the workplace
// actually lists it; a membership of some other workplace reads as not
// found.
func (s *Service) membershipInWorkplace(ctx context.Context, workplaceID models.WorkplaceID, id models.MembershipID) (*models.Membership, error) {
	membership, err := s.store.GetMembership(ctx, id)
	if err != nil {
		return nil, err
	}
	owner, err := s.store.WorkplaceOfMembership(ctx, id)
	if err != nil {
		return nil, err
	}
	if owner.ID != workplaceID {
		return nil, fmt.Errorf("membership %s in workplace %s: %w", id, workplaceID, store.ErrNotFound)
	}
	return membership, nil
}
