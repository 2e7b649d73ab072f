package surreal

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/workplane-dev/workplane/internal/models"
	"github.com/workplane-dev/workplane/internal/store"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if _, err := surrealdb.Create[models.User](ctx, s.db, "user", user); err != nil {
		return translate("create user", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id models.UserID) (*models.User, error) {
	return getRecord[models.User](ctx, s, id.RecordID(), "get user")
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := "SELECT * FROM user WHERE email = $email LIMIT 1"
	params := map[string]any{
		"email": email,
	}
	result, err := surrealdb.Query[[]models.User](ctx, s.db, query, params)
	if err != nil {
		return nil, translate("get user by email", err)
	}
	rows := lastResult(result)
	if len(rows) == 0 {
		return nil, fmt.Errorf("get user by email: %w", store.ErrNotFound)
	}
	return &rows[0], nil
}

func (s *Store) MergeUser(ctx context.Context, id models.UserID, patch models.UserPatch) error {
	fields := make(map[string]any)
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Email != nil {
		fields["email"] = *patch.Email
	}
	if patch.PasswordHash != nil {
		fields["password_hash"] = *patch.PasswordHash
	}
	return mergeRecord[models.User](ctx, s, id.RecordID(), fields, "merge user")
}

func (s *Store) DeleteUser(ctx context.Context, id models.UserID) error {
	return deleteRecord[models.User](ctx, s, id.RecordID(), "delete user")
}
