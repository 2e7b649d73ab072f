package surreal

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/workplane-dev/workplane/internal/models"
	"github.com/workplane-dev/workplane/internal/store"
)

func (s *Store) CreateComment(ctx context.Context, issueID models.IssueID, comment *models.Comment) error {
	query := `
BEGIN TRANSACTION;
LET $links = (SELECT VALUE comments FROM ONLY $issue);
IF $links IS NONE { THROW "issue record missing" };
CREATE $comment_id CONTENT $comment;
UPDATE $issue SET comments += $comment_id;
COMMIT TRANSACTION;`
	params := map[string]any{
		"issue":      issueID.RecordID(),
		"comment_id": comment.ID.RecordID(),
		"comment":    comment,
	}
	if _, err := surrealdb.Query[any](ctx, s.db, query, params); err != nil {
		return translate("create comment", err)
	}
	return nil
}

func (s *Store) GetComment(ctx context.Context, id models.CommentID) (*models.Comment, error) {
	return getRecord[models.Comment](ctx, s, id.RecordID(), "get comment")
}

func (s *Store) ListComments(ctx context.Context, issueID models.IssueID) ([]*models.Comment, error) {
	query := `
BEGIN TRANSACTION;
LET $links = (SELECT VALUE comments FROM ONLY $issue);
IF $links IS NONE { THROW "issue record missing" };
SELECT * FROM comment WHERE id IN $links ORDER BY creation_date ASC;
COMMIT TRANSACTION;`
	params := map[string]any{
		"issue": issueID.RecordID(),
	}
	result, err := surrealdb.Query[[]*models.Comment](ctx, s.db, query, params)
	if err != nil {
		return nil, translate("list comments", err)
	}
	return lastResult(result), nil
}

func (s *Store) MergeComment(ctx context.Context, id models.CommentID, patch models.CommentPatch) error {
	fields := make(map[string]any)
	if patch.Text != nil {
		fields["text"] = *patch.Text
	}
	return mergeRecord[models.Comment](ctx, s, id.RecordID(), fields, "merge comment")
}

func (s *Store) DeleteComment(ctx context.Context, id models.CommentID) error {
	return deleteRecord[models.Comment](ctx, s, id.RecordID(), "delete comment")
}

func (s *Store) IssueOfComment(ctx context.Context, id models.CommentID) (*models.Issue, error) {
	query := "SELECT * FROM issue WHERE $comment IN comments LIMIT 1"
	params := map[string]any{
		"comment": id.RecordID(),
	}
	result, err := surrealdb.Query[[]models.Issue](ctx, s.db, query, params)
	if err != nil {
		return nil, translate("issue of comment", err)
	}
	rows := lastResult(result)
	if len(rows) == 0 {
		return nil, fmt.Errorf("issue of comment: %w", store.ErrNotFound)
	}
	return &rows[0], nil
}
