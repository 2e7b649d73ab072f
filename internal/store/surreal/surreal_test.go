package surreal

// Integration tests against a live SurrealDB instance. They are skipped
// unless SURREALDB_URL is set, e.g.:
//
//	SURREALDB_URL=ws://localhost:8000/rpc go test ./internal/store/surreal/...

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workplane-dev/workplane/internal/models"
	"github.com/workplane-dev/workplane/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	url := os.Getenv("SURREALDB_URL")
	if url == "" {
		t.Skip("SURREALDB_URL not set; skipping SurrealDB integration tests")
	}

	user := os.Getenv("SURREALDB_USER")
	if user == "" {
		user = "root"
	}
	pass := os.Getenv("SURREALDB_PASS")
	if pass == "" {
		pass = "root"
	}

	ctx := context.Background()
	s, err := New(ctx, Config{
		URL:       url,
		Namespace: "workplane_test",
		// A fresh database per run keeps tests independent.
		Database: fmt.Sprintf("test_%d", time.Now().UnixNano()),
		Username: user,
		Password: pass,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close(context.Background())
	})
	return s
}

func seedSurrealWorkplace(t *testing.T, s *Store) (*models.Workplace, *models.Membership) {
	t.Helper()
	ctx := context.Background()

	user := &models.User{ID: models.NewUserID(), Name: "Ada", Email: "ada@example.com", PasswordHash: "x"}
	require.NoError(t, s.CreateUser(ctx, user))

	w := &models.Workplace{
		ID:     models.NewWorkplaceID(),
		Name:   "Platform",
		States: models.DefaultStates(),
	}
	admin := &models.Membership{ID: models.NewMembershipID(), UserID: user.ID, Role: models.RoleAdmin}
	require.NoError(t, s.CreateWorkplace(ctx, w, admin))
	return w, admin
}

func TestIntegrationWorkplaceRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	w, admin := seedSurrealWorkplace(t, s)

	got, err := s.GetWorkplace(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.ID, got.ID)
	assert.Equal(t, "Platform", got.Name)
	assert.Equal(t, models.DefaultStates(), got.States)
	assert.Equal(t, []models.MembershipID{admin.ID}, got.Memberships)

	m, err := s.GetMembershipByUser(ctx, w.ID, admin.UserID)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, m.ID)
	assert.Equal(t, models.RoleAdmin, m.Role)

	back, err := s.WorkplaceOfMembership(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, w.ID, back.ID)

	mine, err := s.ListWorkplacesByUser(ctx, admin.UserID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, w.ID, mine[0].ID)
}

func TestIntegrationSprintOverlapRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	w, _ := seedSurrealWorkplace(t, s)

	mkDate := func(day int) time.Time {
		return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
	}

	first := &models.Sprint{ID: models.NewSprintID(), Name: "Sprint 1", StartDate: mkDate(1), EndDate: mkDate(10)}
	require.NoError(t, s.CreateSprint(ctx, w.ID, first))

	overlapping := &models.Sprint{ID: models.NewSprintID(), Name: "Sprint 2", StartDate: mkDate(5), EndDate: mkDate(15)}
	err := s.CreateSprint(ctx, w.ID, overlapping)
	assert.ErrorIs(t, err, store.ErrSprintOverlap)

	// The aborted transaction must leave no partial state behind.
	_, err = s.GetSprint(ctx, overlapping.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	got, err := s.GetWorkplace(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.SprintID{first.ID}, got.Sprints)

	adjacent := &models.Sprint{ID: models.NewSprintID(), Name: "Sprint 3", StartDate: mkDate(10), EndDate: mkDate(20)}
	assert.NoError(t, s.CreateSprint(ctx, w.ID, adjacent))

	// Rescheduling within the sprint's own range must not self-conflict.
	err = s.RescheduleSprint(ctx, w.ID, first.ID, models.Interval{Start: mkDate(2), End: mkDate(8)})
	assert.NoError(t, err)
}

func TestIntegrationIssueLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	w, admin := seedSurrealWorkplace(t, s)

	author := admin.ID
	issue := &models.Issue{
		ID:        models.NewIssueID(),
		Title:     "Fix login",
		State:     "Backlog",
		CreatedAt: time.Now().UTC(),
		AuthorID:  &author,
	}
	require.NoError(t, s.CreateIssue(ctx, w.ID, nil, issue))

	got, err := s.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fix login", got.Title)
	require.NotNil(t, got.AuthorID)
	assert.Equal(t, admin.ID, *got.AuthorID)

	comment := &models.Comment{ID: models.NewCommentID(), Text: "on it", CreatedAt: time.Now().UTC(), AuthorID: &author}
	require.NoError(t, s.CreateComment(ctx, issue.ID, comment))

	comments, err := s.ListComments(ctx, issue.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "on it", comments[0].Text)

	require.NoError(t, s.DetachMembership(ctx, admin.ID))
	got, err = s.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AuthorID)

	require.NoError(t, s.RemoveIssueComment(ctx, issue.ID, comment.ID))
	require.NoError(t, s.DeleteComment(ctx, comment.ID))
	assert.ErrorIs(t, s.DeleteComment(ctx, comment.ID), store.ErrNotFound)
}
