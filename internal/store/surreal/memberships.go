package surreal

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/workplane-dev/workplane/internal/models"
	"github.com/workplane-dev/workplane/internal/store"
)

func (s *Store) CreateMembership(ctx context.Context, workplaceID models.WorkplaceID, membership *models.Membership) error {
	query := `
BEGIN TRANSACTION;
LET $links = (SELECT VALUE memberships FROM ONLY $workplace);
IF $links IS NONE { THROW "workplace record missing" };
CREATE $membership_id CONTENT $membership;
UPDATE $workplace SET memberships += $membership_id;
COMMIT TRANSACTION;`
	params := map[string]any{
		"workplace":     workplaceID.RecordID(),
		"membership_id": membership.ID.RecordID(),
		"membership":    membership,
	}
	if _, err := surrealdb.Query[any](ctx, s.db, query, params); err != nil {
		return translate("create membership", err)
	}
	return nil
}

func (s *Store) GetMembership(ctx context.Context, id models.MembershipID) (*models.Membership, error) {
	return getRecord[models.Membership](ctx, s, id.RecordID(), "get membership")
}

func (s *Store) GetMembershipByUser(ctx context.Context, workplaceID models.WorkplaceID, userID models.UserID) (*models.Membership, error) {
	query := `
SELECT * FROM membership
WHERE user = $user AND id IN (SELECT VALUE memberships FROM ONLY $workplace)
LIMIT 1`
	params := map[string]any{
		"workplace": workplaceID.RecordID(),
		"user":      userID.RecordID(),
	}
	result, err := surrealdb.Query[[]models.Membership](ctx, s.db, query, params)
	if err != nil {
		return nil, translate("get membership by user", err)
	}
	rows := lastResult(result)
	if len(rows) == 0 {
		return nil, fmt.Errorf("get membership by user: %w", store.ErrNotFound)
	}
	return &rows[0], nil
}

func (s *Store) ListMembers(ctx context.Context, workplaceID models.WorkplaceID, emailPrefix string) ([]*models.Member, error) {
	query := `
BEGIN TRANSACTION;
LET $links = (SELECT VALUE memberships FROM ONLY $workplace);
IF $links IS NONE { THROW "workplace record missing" };
SELECT * FROM membership
WHERE id IN $links AND ($prefix = "" OR string::starts_with(user.email, $prefix))
ORDER BY id ASC;
COMMIT TRANSACTION;`
	params := map[string]any{
		"workplace": workplaceID.RecordID(),
		"prefix":    emailPrefix,
	}
	result, err := surrealdb.Query[[]models.Membership](ctx, s.db, query, params)
	if err != nil {
		return nil, translate("list members", err)
	}
	memberships := lastResult(result)

	if len(memberships) == 0 {
		return []*models.Member{}, nil
	}

	userIDs := make([]models.UserID, 0, len(memberships))
	for _, m := range memberships {
		userIDs = append(userIDs, m.UserID)
	}
	usersResult, err := surrealdb.Query[[]models.User](ctx, s.db, "SELECT * FROM user WHERE id IN $ids", map[string]any{
		"ids": userIDs,
	})
	if err != nil {
		return nil, translate("list members", err)
	}
	usersByID := make(map[models.UserID]models.User)
	for _, u := range lastResult(usersResult) {
		usersByID[u.ID] = u
	}

	out := make([]*models.Member, 0, len(memberships))
	for _, m := range memberships {
		user, ok := usersByID[m.UserID]
		if !ok {
			continue
		}
		out = append(out, &models.Member{Membership: m, User: user})
	}
	return out, nil
}

func (s *Store) MergeMembership(ctx context.Context, id models.MembershipID, patch models.MembershipPatch) error {
	fields := make(map[string]any)
	if patch.Role != nil {
		fields["role"] = *patch.Role
	}
	return mergeRecord[models.Membership](ctx, s, id.RecordID(), fields, "merge membership")
}

func (s *Store) DeleteMembership(ctx context.Context, workplaceID models.WorkplaceID, id models.MembershipID) error {
	query := `
BEGIN TRANSACTION;
LET $doc = (SELECT VALUE id FROM ONLY $membership);
IF $doc IS NONE { THROW "membership record missing" };
UPDATE $workplace SET memberships -= $membership;
DELETE $membership;
COMMIT TRANSACTION;`
	params := map[string]any{
		"workplace":  workplaceID.RecordID(),
		"membership": id.RecordID(),
	}
	if _, err := surrealdb.Query[any](ctx, s.db, query, params); err != nil {
		return translate("delete membership", err)
	}
	return nil
}

func (s *Store) DetachMembership(ctx context.Context, id models.MembershipID) error {
	query := `
BEGIN TRANSACTION;
UPDATE issue SET author = NONE WHERE author = $membership;
UPDATE issue SET implementers -= $membership WHERE $membership IN implementers;
UPDATE comment SET author = NONE WHERE author = $membership;
COMMIT TRANSACTION;`
	params := map[string]any{
		"membership": id.RecordID(),
	}
	if _, err := surrealdb.Query[any](ctx, s.db, query, params); err != nil {
		return translate("detach membership", err)
	}
	return nil
}

func (s *Store) WorkplaceOfMembership(ctx context.Context, id models.MembershipID) (*models.Workplace, error) {
	query := "SELECT * FROM workplace WHERE $membership IN memberships LIMIT 1"
	params := map[string]any{
		"membership": id.RecordID(),
	}
	result, err := surrealdb.Query[[]models.Workplace](ctx, s.db, query, params)
	if err != nil {
		return nil, translate("workplace of membership", err)
	}
	rows := lastResult(result)
	if len(rows) == 0 {
		return nil, fmt.Errorf("workplace of membership: %w", store.ErrNotFound)
	}
	return &rows[0], nil
}
