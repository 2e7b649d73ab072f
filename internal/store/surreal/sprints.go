package surreal

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/workplane-dev/workplane/internal/models"
	"github.com/workplane-dev/workplane/internal/store"
)

// overlapCondition matches any sibling sprint whose half-open range collides
// with [$start, $end): the sibling starts inside it, ends inside it, or
// covers it entirely.
const overlapCondition = `(
	(start_date >= $start AND start_date < $end) OR
	(end_date > $start AND end_date <= $end) OR
	(start_date <= $start AND end_date >= $end)
)`

func (s *Store) CreateSprint(ctx context.Context, workplaceID models.WorkplaceID, sprint *models.Sprint) error {
	doc := *sprint
	if doc.Issues == nil {
		doc.Issues = []models.IssueID{}
	}

	// The conflict check and the insert run in one transaction so two
	// concurrent creates cannot both pass validation.
	query := `
BEGIN TRANSACTION;
LET $links = (SELECT VALUE sprints FROM ONLY $workplace);
IF $links IS NONE { THROW "workplace record missing" };
LET $conflicts = (SELECT VALUE id FROM sprint WHERE id IN $links AND ` + overlapCondition + `);
IF array::len($conflicts) > 0 { THROW "sprint dates overlap" };
CREATE $sprint_id CONTENT $sprint;
UPDATE $workplace SET sprints += $sprint_id;
COMMIT TRANSACTION;`
	params := map[string]any{
		"workplace": workplaceID.RecordID(),
		"sprint_id": doc.ID.RecordID(),
		"sprint":    doc,
		"start":     doc.StartDate,
		"end":       doc.EndDate,
	}
	if _, err := surrealdb.Query[any](ctx, s.db, query, params); err != nil {
		return translate("create sprint", err)
	}
	return nil
}

func (s *Store) GetSprint(ctx context.Context, id models.SprintID) (*models.Sprint, error) {
	return getRecord[models.Sprint](ctx, s, id.RecordID(), "get sprint")
}

func (s *Store) ListSprints(ctx context.Context, workplaceID models.WorkplaceID) ([]*models.Sprint, error) {
	query := `
BEGIN TRANSACTION;
LET $links = (SELECT VALUE sprints FROM ONLY $workplace);
IF $links IS NONE { THROW "workplace record missing" };
SELECT * FROM sprint WHERE id IN $links ORDER BY start_date ASC;
COMMIT TRANSACTION;`
	params := map[string]any{
		"workplace": workplaceID.RecordID(),
	}
	result, err := surrealdb.Query[[]*models.Sprint](ctx, s.db, query, params)
	if err != nil {
		return nil, translate("list sprints", err)
	}
	return lastResult(result), nil
}

func (s *Store) MergeSprint(ctx context.Context, id models.SprintID, patch models.SprintPatch) error {
	fields := make(map[string]any)
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	return mergeRecord[models.Sprint](ctx, s, id.RecordID(), fields, "merge sprint")
}

func (s *Store) RescheduleSprint(ctx context.Context, workplaceID models.WorkplaceID, id models.SprintID, interval models.Interval) error {
	// Same shape as CreateSprint's check, with the sprint itself excluded
	// so shrinking or shifting inside its own range passes.
	query := `
BEGIN TRANSACTION;
LET $links = (SELECT VALUE sprints FROM ONLY $workplace);
IF $links IS NONE { THROW "workplace record missing" };
LET $doc = (SELECT VALUE id FROM ONLY $sprint);
IF $doc IS NONE { THROW "sprint record missing" };
LET $conflicts = (SELECT VALUE id FROM sprint WHERE id IN $links AND id != $sprint AND ` + overlapCondition + `);
IF array::len($conflicts) > 0 { THROW "sprint dates overlap" };
UPDATE $sprint SET start_date = $start, end_date = $end;
COMMIT TRANSACTION;`
	params := map[string]any{
		"workplace": workplaceID.RecordID(),
		"sprint":    id.RecordID(),
		"start":     interval.Start,
		"end":       interval.End,
	}
	if _, err := surrealdb.Query[any](ctx, s.db, query, params); err != nil {
		return translate("reschedule sprint", err)
	}
	return nil
}

func (s *Store) DeleteSprint(ctx context.Context, id models.SprintID) error {
	return deleteRecord[models.Sprint](ctx, s, id.RecordID(), "delete sprint")
}

func (s *Store) AppendSprintIssue(ctx context.Context, sprintID models.SprintID, issueID models.IssueID) error {
	return updateLinks[models.Sprint](ctx, s,
		"UPDATE $sprint SET issues = array::union(issues, [$issue])",
		map[string]any{
			"sprint": sprintID.RecordID(),
			"issue":  issueID.RecordID(),
		},
		"link sprint issue")
}

func (s *Store) RemoveSprintIssue(ctx context.Context, sprintID models.SprintID, issueID models.IssueID) error {
	return updateLinks[models.Sprint](ctx, s,
		"UPDATE $sprint SET issues -= $issue",
		map[string]any{
			"sprint": sprintID.RecordID(),
			"issue":  issueID.RecordID(),
		},
		"unlink sprint issue")
}

func (s *Store) WorkplaceOfSprint(ctx context.Context, id models.SprintID) (*models.Workplace, error) {
	query := "SELECT * FROM workplace WHERE $sprint IN sprints LIMIT 1"
	params := map[string]any{
		"sprint": id.RecordID(),
	}
	result, err := surrealdb.Query[[]models.Workplace](ctx, s.db, query, params)
	if err != nil {
		return nil, translate("workplace of sprint", err)
	}
	rows := lastResult(result)
	if len(rows) == 0 {
		return nil, fmt.Errorf("workplace of sprint: %w", store.ErrNotFound)
	}
	return &rows[0], nil
}
