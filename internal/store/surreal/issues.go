package surreal

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/workplane-dev/workplane/internal/models"
	"github.com/workplane-dev/workplane/internal/store"
)

func (s *Store) CreateIssue(ctx context.Context, workplaceID models.WorkplaceID, sprintID *models.SprintID, issue *models.Issue) error {
	doc := *issue
	if doc.Implementers == nil {
		doc.Implementers = []models.MembershipID{}
	}
	if doc.Comments == nil {
		doc.Comments = []models.CommentID{}
	}

	query := `
BEGIN TRANSACTION;
LET $links = (SELECT VALUE issues FROM ONLY $workplace);
IF $links IS NONE { THROW "workplace record missing" };
CREATE $issue_id CONTENT $issue;
UPDATE $workplace SET issues += $issue_id;
COMMIT TRANSACTION;`
	params := map[string]any{
		"workplace": workplaceID.RecordID(),
		"issue_id":  doc.ID.RecordID(),
		"issue":     doc,
	}
	if sprintID != nil {
		query = `
BEGIN TRANSACTION;
LET $links = (SELECT VALUE issues FROM ONLY $workplace);
IF $links IS NONE { THROW "workplace record missing" };
LET $sp = (SELECT VALUE id FROM ONLY $sprint);
IF $sp IS NONE { THROW "sprint record missing" };
CREATE $issue_id CONTENT $issue;
UPDATE $workplace SET issues += $issue_id;
UPDATE $sprint SET issues += $issue_id;
COMMIT TRANSACTION;`
		params["sprint"] = sprintID.RecordID()
	}

	if _, err := surrealdb.Query[any](ctx, s.db, query, params); err != nil {
		return translate("create issue", err)
	}
	return nil
}

func (s *Store) GetIssue(ctx context.Context, id models.IssueID) (*models.Issue, error) {
	return getRecord[models.Issue](ctx, s, id.RecordID(), "get issue")
}

func (s *Store) ListIssues(ctx context.Context, workplaceID models.WorkplaceID) ([]*models.Issue, error) {
	query := `
BEGIN TRANSACTION;
LET $links = (SELECT VALUE issues FROM ONLY $workplace);
IF $links IS NONE { THROW "workplace record missing" };
SELECT * FROM issue WHERE id IN $links ORDER BY creation_date ASC;
COMMIT TRANSACTION;`
	params := map[string]any{
		"workplace": workplaceID.RecordID(),
	}
	result, err := surrealdb.Query[[]*models.Issue](ctx, s.db, query, params)
	if err != nil {
		return nil, translate("list issues", err)
	}
	return lastResult(result), nil
}

func (s *Store) ListSprintIssues(ctx context.Context, sprintID models.SprintID) ([]*models.Issue, error) {
	query := `
BEGIN TRANSACTION;
LET $links = (SELECT VALUE issues FROM ONLY $sprint);
IF $links IS NONE { THROW "sprint record missing" };
SELECT * FROM issue WHERE id IN $links ORDER BY creation_date ASC;
COMMIT TRANSACTION;`
	params := map[string]any{
		"sprint": sprintID.RecordID(),
	}
	result, err := surrealdb.Query[[]*models.Issue](ctx, s.db, query, params)
	if err != nil {
		return nil, translate("list sprint issues", err)
	}
	return lastResult(result), nil
}

func (s *Store) MergeIssue(ctx context.Context, id models.IssueID, patch models.IssuePatch) error {
	fields := make(map[string]any)
	if patch.Title != nil {
		fields["title"] = *patch.Title
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.State != nil {
		fields["state"] = *patch.State
	}
	if patch.Implementers != nil {
		fields["implementers"] = *patch.Implementers
	}
	return mergeRecord[models.Issue](ctx, s, id.RecordID(), fields, "merge issue")
}

func (s *Store) DeleteIssue(ctx context.Context, id models.IssueID) error {
	return deleteRecord[models.Issue](ctx, s, id.RecordID(), "delete issue")
}

func (s *Store) RemoveIssueComment(ctx context.Context, issueID models.IssueID, commentID models.CommentID) error {
	return updateLinks[models.Issue](ctx, s,
		"UPDATE $issue SET comments -= $comment",
		map[string]any{
			"issue":   issueID.RecordID(),
			"comment": commentID.RecordID(),
		},
		"unlink issue comment")
}

func (s *Store) WorkplaceOfIssue(ctx context.Context, id models.IssueID) (*models.Workplace, error) {
	query := "SELECT * FROM workplace WHERE $issue IN issues LIMIT 1"
	params := map[string]any{
		"issue": id.RecordID(),
	}
	result, err := surrealdb.Query[[]models.Workplace](ctx, s.db, query, params)
	if err != nil {
		return nil, translate("workplace of issue", err)
	}
	rows := lastResult(result)
	if len(rows) == 0 {
		return nil, fmt.Errorf("workplace of issue: %w", store.ErrNotFound)
	}
	return &rows[0], nil
}

// SprintOfIssue returns (nil, nil) for backlog issues; not being scheduled
// is a normal state, not an error.
func (s *Store) SprintOfIssue(ctx context.Context, id models.IssueID) (*models.Sprint, error) {
	query := "SELECT * FROM sprint WHERE $issue IN issues LIMIT 1"
	params := map[string]any{
		"issue": id.RecordID(),
	}
	result, err := surrealdb.Query[[]models.Sprint](ctx, s.db, query, params)
	if err != nil {
		return nil, translate("sprint of issue", err)
	}
	rows := lastResult(result)
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
