package surreal

import (
	"context"

	"github.com/surrealdb/surrealdb.go"

	"github.com/workplane-dev/workplane/internal/models"
)

// normalizeWorkplace replaces nil link slices with empty arrays so the
// stored document carries arrays instead of NONE. Array operators in later
// link mutations rely on the fields being present.
func normalizeWorkplace(w *models.Workplace) models.Workplace {
	out := *w
	if out.States == nil {
		out.States = []string{}
	}
	if out.Memberships == nil {
		out.Memberships = []models.MembershipID{}
	}
	if out.Sprints == nil {
		out.Sprints = []models.SprintID{}
	}
	if out.Issues == nil {
		out.Issues = []models.IssueID{}
	}
	return out
}

func (s *Store) CreateWorkplace(ctx context.Context, workplace *models.Workplace, creator *models.Membership) error {
	doc := normalizeWorkplace(workplace)
	doc.Memberships = append(doc.Memberships, creator.ID)

	query := `
BEGIN TRANSACTION;
CREATE $membership_id CONTENT $membership;
CREATE $workplace_id CONTENT $workplace;
COMMIT TRANSACTION;`
	params := map[string]any{
		"membership_id": creator.ID.RecordID(),
		"membership":    creator,
		"workplace_id":  doc.ID.RecordID(),
		"workplace":     doc,
	}
	if _, err := surrealdb.Query[any](ctx, s.db, query, params); err != nil {
		return translate("create workplace", err)
	}
	return nil
}

func (s *Store) GetWorkplace(ctx context.Context, id models.WorkplaceID) (*models.Workplace, error) {
	return getRecord[models.Workplace](ctx, s, id.RecordID(), "get workplace")
}

func (s *Store) ListWorkplacesByUser(ctx context.Context, userID models.UserID) ([]*models.Workplace, error) {
	query := "SELECT * FROM workplace WHERE $user IN memberships.user ORDER BY id ASC"
	params := map[string]any{
		"user": userID.RecordID(),
	}
	result, err := surrealdb.Query[[]*models.Workplace](ctx, s.db, query, params)
	if err != nil {
		return nil, translate("list workplaces", err)
	}
	return lastResult(result), nil
}

func (s *Store) MergeWorkplace(ctx context.Context, id models.WorkplaceID, patch models.WorkplacePatch) error {
	fields := make(map[string]any)
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.States != nil {
		fields["states"] = *patch.States
	}
	return mergeRecord[models.Workplace](ctx, s, id.RecordID(), fields, "merge workplace")
}

func (s *Store) DeleteWorkplace(ctx context.Context, id models.WorkplaceID) error {
	return deleteRecord[models.Workplace](ctx, s, id.RecordID(), "delete workplace")
}

func (s *Store) RemoveWorkplaceSprint(ctx context.Context, workplaceID models.WorkplaceID, sprintID models.SprintID) error {
	return updateLinks[models.Workplace](ctx, s,
		"UPDATE $workplace SET sprints -= $sprint",
		map[string]any{
			"workplace": workplaceID.RecordID(),
			"sprint":    sprintID.RecordID(),
		},
		"unlink workplace sprint")
}

func (s *Store) RemoveWorkplaceIssue(ctx context.Context, workplaceID models.WorkplaceID, issueID models.IssueID) error {
	return updateLinks[models.Workplace](ctx, s,
		"UPDATE $workplace SET issues -= $issue",
		map[string]any{
			"workplace": workplaceID.RecordID(),
			"issue":     issueID.RecordID(),
		},
		"unlink workplace issue")
}
