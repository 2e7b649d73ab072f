// Package memory implements the store contract with plain maps behind a
// single mutex. It backs unit tests and local development runs; the
// SurrealDB store is the production implementation.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/workplane-dev/workplane/internal/models"
	"github.com/workplane-dev/workplane/internal/store"
)

type Store struct {
	mu          sync.RWMutex
	users       map[models.UserID]*models.User
	workplaces  map[models.WorkplaceID]*models.Workplace
	memberships map[models.MembershipID]*models.Membership
	sprints     map[models.SprintID]*models.Sprint
	issues      map[models.IssueID]*models.Issue
	comments    map[models.CommentID]*models.Comment
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:       make(map[models.UserID]*models.User),
		workplaces:  make(map[models.WorkplaceID]*models.Workplace),
		memberships: make(map[models.MembershipID]*models.Membership),
		sprints:     make(map[models.SprintID]*models.Sprint),
		issues:      make(map[models.IssueID]*models.Issue),
		comments:    make(map[models.CommentID]*models.Comment),
	}
}

func (s *Store) Close(ctx context.Context) error { return nil }

// Users

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *Store) GetUser(ctx context.Context, id models.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, store.ErrNotFound)
	}
	return cloneUser(user), nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, store.ErrNotFound)
}

func (s *Store) MergeUser(ctx context.Context, id models.UserID, patch models.UserPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, store.ErrNotFound)
	}
	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.PasswordHash != nil {
		user.PasswordHash = *patch.PasswordHash
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id models.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return fmt.Errorf("user %s: %w", id, store.ErrNotFound)
	}
	delete(s.users, id)
	return nil
}

// Workplaces

func (s *Store) CreateWorkplace(ctx context.Context, workplace *models.Workplace, creator *models.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := cloneWorkplace(workplace)
	w.Memberships = append(w.Memberships, creator.ID)
	s.workplaces[w.ID] = w
	s.memberships[creator.ID] = cloneMembership(creator)
	return nil
}

func (s *Store) GetWorkplace(ctx context.Context, id models.WorkplaceID) (*models.Workplace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getWorkplace(id)
}

func (s *Store) getWorkplace(id models.WorkplaceID) (*models.Workplace, error) {
	w, ok := s.workplaces[id]
	if !ok {
		return nil, fmt.Errorf("workplace %s: %w", id, store.ErrNotFound)
	}
	return cloneWorkplace(w), nil
}

func (s *Store) ListWorkplacesByUser(ctx context.Context, userID models.UserID) ([]*models.Workplace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Workplace
	for _, w := range s.workplaces {
		for _, mID := range w.Memberships {
			if m, ok := s.memberships[mID]; ok && m.UserID == userID {
				out = append(out, cloneWorkplace(w))
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (s *Store) MergeWorkplace(ctx context.Context, id models.WorkplaceID, patch models.WorkplacePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.workplaces[id]
	if !ok {
		return fmt.Errorf("workplace %s: %w", id, store.ErrNotFound)
	}
	if patch.Name != nil {
		w.Name = *patch.Name
	}
	if patch.Description != nil {
		w.Description = *patch.Description
	}
	if patch.States != nil {
		w.States = cloneSlice(*patch.States)
	}
	return nil
}

func (s *Store) DeleteWorkplace(ctx context.Context, id models.WorkplaceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workplaces[id]; !ok {
		return fmt.Errorf("workplace %s: %w", id, store.ErrNotFound)
	}
	delete(s.workplaces, id)
	return nil
}

func (s *Store) RemoveWorkplaceSprint(ctx context.Context, workplaceID models.WorkplaceID, sprintID models.SprintID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.workplaces[workplaceID]
	if !ok {
		return fmt.Errorf("workplace %s: %w", workplaceID, store.ErrNotFound)
	}
	w.Sprints = removeValue(w.Sprints, sprintID)
	return nil
}

func (s *Store) RemoveWorkplaceIssue(ctx context.Context, workplaceID models.WorkplaceID, issueID models.IssueID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.workplaces[workplaceID]
	if !ok {
		return fmt.Errorf("workplace %s: %w", workplaceID, store.ErrNotFound)
	}
	w.Issues = removeValue(w.Issues, issueID)
	return nil
}

// Memberships

func (s *Store) CreateMembership(ctx context.Context, workplaceID models.WorkplaceID, membership *models.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.workplaces[workplaceID]
	if !ok {
		return fmt.Errorf("workplace %s: %w", workplaceID, store.ErrNotFound)
	}
	s.memberships[membership.ID] = cloneMembership(membership)
	w.Memberships = append(w.Memberships, membership.ID)
	return nil
}

func (s *Store) GetMembership(ctx context.Context, id models.MembershipID) (*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.memberships[id]
	if !ok {
		return nil, fmt.Errorf("membership %s: %w", id, store.ErrNotFound)
	}
	return cloneMembership(m), nil
}

func (s *Store) GetMembershipByUser(ctx context.Context, workplaceID models.WorkplaceID, userID models.UserID) (*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.workplaces[workplaceID]
	if !ok {
		return nil, fmt.Errorf("workplace %s: %w", workplaceID, store.ErrNotFound)
	}
	for _, mID := range w.Memberships {
		if m, ok := s.memberships[mID]; ok && m.UserID == userID {
			return cloneMembership(m), nil
		}
	}
	return nil, fmt.Errorf("membership of user %s in workplace %s: %w", userID, workplaceID, store.ErrNotFound)
}

func (s *Store) ListMembers(ctx context.Context, workplaceID models.WorkplaceID, emailPrefix string) ([]*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.workplaces[workplaceID]
	if !ok {
		return nil, fmt.Errorf("workplace %s: %w", workplaceID, store.ErrNotFound)
	}
	var out []*models.Member
	for _, mID := range w.Memberships {
		m, ok := s.memberships[mID]
		if !ok {
			continue
		}
		user, ok := s.users[m.UserID]
		if !ok {
			continue
		}
		if emailPrefix != "" && !strings.HasPrefix(user.Email, emailPrefix) {
			continue
		}
		out = append(out, &models.Member{Membership: *cloneMembership(m), User: *cloneUser(user)})
	}
	return out, nil
}

func (s *Store) MergeMembership(ctx context.Context, id models.MembershipID, patch models.MembershipPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.memberships[id]
	if !ok {
		return fmt.Errorf("membership %s: %w", id, store.ErrNotFound)
	}
	if patch.Role != nil {
		m.Role = *patch.Role
	}
	return nil
}

func (s *Store) DeleteMembership(ctx context.Context, workplaceID models.WorkplaceID, id models.MembershipID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.workplaces[workplaceID]
	if !ok {
		return fmt.Errorf("workplace %s: %w", workplaceID, store.ErrNotFound)
	}
	if _, ok := s.memberships[id]; !ok {
		return fmt.Errorf("membership %s: %w", id, store.ErrNotFound)
	}
	w.Memberships = removeValue(w.Memberships, id)
	delete(s.memberships, id)
	return nil
}

func (s *Store) DetachMembership(ctx context.Context, id models.MembershipID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, issue := range s.issues {
		if issue.AuthorID != nil && *issue.AuthorID == id {
			issue.AuthorID = nil
		}
		issue.Implementers = removeValue(issue.Implementers, id)
	}
	for _, comment := range s.comments {
		if comment.AuthorID != nil && *comment.AuthorID == id {
			comment.AuthorID = nil
		}
	}
	return nil
}

func (s *Store) WorkplaceOfMembership(ctx context.Context, id models.MembershipID) (*models.Workplace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, w := range s.workplaces {
		if containsValue(w.Memberships, id) {
			return cloneWorkplace(w), nil
		}
	}
	return nil, fmt.Errorf("workplace of membership %s: %w", id, store.ErrNotFound)
}

// Sprints

func (s *Store) CreateSprint(ctx context.Context, workplaceID models.WorkplaceID, sprint *models.Sprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.workplaces[workplaceID]
	if !ok {
		return fmt.Errorf("workplace %s: %w", workplaceID, store.ErrNotFound)
	}
	if err := s.checkOverlap(w, sprint.Interval(), nil); err != nil {
		return err
	}
	s.sprints[sprint.ID] = cloneSprint(sprint)
	w.Sprints = append(w.Sprints, sprint.ID)
	return nil
}

// checkOverlap compares the candidate interval against every sprint of the
// workplace, skipping exclude when rescheduling. Callers hold the lock.
func (s *Store) checkOverlap(w *models.Workplace, candidate models.Interval, exclude *models.SprintID) error {
	for _, sID := range w.Sprints {
		if exclude != nil && sID == *exclude {
			continue
		}
		sibling, ok := s.sprints[sID]
		if !ok {
			continue
		}
		if candidate.Overlaps(sibling.Interval()) {
			return fmt.Errorf("sprint %s: %w", sID, store.ErrSprintOverlap)
		}
	}
	return nil
}

func (s *Store) GetSprint(ctx context.Context, id models.SprintID) (*models.Sprint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sp, ok := s.sprints[id]
	if !ok {
		return nil, fmt.Errorf("sprint %s: %w", id, store.ErrNotFound)
	}
	return cloneSprint(sp), nil
}

func (s *Store) ListSprints(ctx context.Context, workplaceID models.WorkplaceID) ([]*models.Sprint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.workplaces[workplaceID]
	if !ok {
		return nil, fmt.Errorf("workplace %s: %w", workplaceID, store.ErrNotFound)
	}
	var out []*models.Sprint
	for _, sID := range w.Sprints {
		if sp, ok := s.sprints[sID]; ok {
			out = append(out, cloneSprint(sp))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (s *Store) MergeSprint(ctx context.Context, id models.SprintID, patch models.SprintPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok := s.sprints[id]
	if !ok {
		return fmt.Errorf("sprint %s: %w", id, store.ErrNotFound)
	}
	if patch.Name != nil {
		sp.Name = *patch.Name
	}
	return nil
}

func (s *Store) RescheduleSprint(ctx context.Context, workplaceID models.WorkplaceID, id models.SprintID, interval models.Interval) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.workplaces[workplaceID]
	if !ok {
		return fmt.Errorf("workplace %s: %w", workplaceID, store.ErrNotFound)
	}
	sp, ok := s.sprints[id]
	if !ok {
		return fmt.Errorf("sprint %s: %w", id, store.ErrNotFound)
	}
	if err := s.checkOverlap(w, interval, &id); err != nil {
		return err
	}
	sp.StartDate = interval.Start
	sp.EndDate = interval.End
	return nil
}

func (s *Store) DeleteSprint(ctx context.Context, id models.SprintID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sprints[id]; !ok {
		return fmt.Errorf("sprint %s: %w", id, store.ErrNotFound)
	}
	delete(s.sprints, id)
	return nil
}

func (s *Store) AppendSprintIssue(ctx context.Context, sprintID models.SprintID, issueID models.IssueID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok := s.sprints[sprintID]
	if !ok {
		return fmt.Errorf("sprint %s: %w", sprintID, store.ErrNotFound)
	}
	if !containsValue(sp.Issues, issueID) {
		sp.Issues = append(sp.Issues, issueID)
	}
	return nil
}

func (s *Store) RemoveSprintIssue(ctx context.Context, sprintID models.SprintID, issueID models.IssueID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok := s.sprints[sprintID]
	if !ok {
		return fmt.Errorf("sprint %s: %w", sprintID, store.ErrNotFound)
	}
	sp.Issues = removeValue(sp.Issues, issueID)
	return nil
}

func (s *Store) WorkplaceOfSprint(ctx context.Context, id models.SprintID) (*models.Workplace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, w := range s.workplaces {
		if containsValue(w.Sprints, id) {
			return cloneWorkplace(w), nil
		}
	}
	return nil, fmt.Errorf("workplace of sprint %s: %w", id, store.ErrNotFound)
}

// Issues

func (s *Store) CreateIssue(ctx context.Context, workplaceID models.WorkplaceID, sprintID *models.SprintID, issue *models.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.workplaces[workplaceID]
	if !ok {
		return fmt.Errorf("workplace %s: %w", workplaceID, store.ErrNotFound)
	}
	var sp *models.Sprint
	if sprintID != nil {
		sp, ok = s.sprints[*sprintID]
		if !ok {
			return fmt.Errorf("sprint %s: %w", *sprintID, store.ErrNotFound)
		}
	}
	s.issues[issue.ID] = cloneIssue(issue)
	w.Issues = append(w.Issues, issue.ID)
	if sp != nil {
		sp.Issues = append(sp.Issues, issue.ID)
	}
	return nil
}

func (s *Store) GetIssue(ctx context.Context, id models.IssueID) (*models.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	issue, ok := s.issues[id]
	if !ok {
		return nil, fmt.Errorf("issue %s: %w", id, store.ErrNotFound)
	}
	return cloneIssue(issue), nil
}

func (s *Store) ListIssues(ctx context.Context, workplaceID models.WorkplaceID) ([]*models.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.workplaces[workplaceID]
	if !ok {
		return nil, fmt.Errorf("workplace %s: %w", workplaceID, store.ErrNotFound)
	}
	return s.collectIssues(w.Issues), nil
}

func (s *Store) ListSprintIssues(ctx context.Context, sprintID models.SprintID) ([]*models.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sp, ok := s.sprints[sprintID]
	if !ok {
		return nil, fmt.Errorf("sprint %s: %w", sprintID, store.ErrNotFound)
	}
	return s.collectIssues(sp.Issues), nil
}

func (s *Store) collectIssues(ids []models.IssueID) []*models.Issue {
	var out []*models.Issue
	for _, id := range ids {
		if issue, ok := s.issues[id]; ok {
			out = append(out, cloneIssue(issue))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *Store) MergeIssue(ctx context.Context, id models.IssueID, patch models.IssuePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.issues[id]
	if !ok {
		return fmt.Errorf("issue %s: %w", id, store.ErrNotFound)
	}
	if patch.Title != nil {
		issue.Title = *patch.Title
	}
	if patch.Description != nil {
		issue.Description = *patch.Description
	}
	if patch.State != nil {
		issue.State = *patch.State
	}
	if patch.Implementers != nil {
		issue.Implementers = cloneSlice(*patch.Implementers)
	}
	return nil
}

func (s *Store) DeleteIssue(ctx context.Context, id models.IssueID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.issues[id]; !ok {
		return fmt.Errorf("issue %s: %w", id, store.ErrNotFound)
	}
	delete(s.issues, id)
	return nil
}

func (s *Store) RemoveIssueComment(ctx context.Context, issueID models.IssueID, commentID models.CommentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.issues[issueID]
	if !ok {
		return fmt.Errorf("issue %s: %w", issueID, store.ErrNotFound)
	}
	issue.Comments = removeValue(issue.Comments, commentID)
	return nil
}

func (s *Store) WorkplaceOfIssue(ctx context.Context, id models.IssueID) (*models.Workplace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, w := range s.workplaces {
		if containsValue(w.Issues, id) {
			return cloneWorkplace(w), nil
		}
	}
	return nil, fmt.Errorf("workplace of issue %s: %w", id, store.ErrNotFound)
}

func (s *Store) SprintOfIssue(ctx context.Context, id models.IssueID) (*models.Sprint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sp := range s.sprints {
		if containsValue(sp.Issues, id) {
			return cloneSprint(sp), nil
		}
	}
	return nil, nil
}

// Comments

func (s *Store) CreateComment(ctx context.Context, issueID models.IssueID, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.issues[issueID]
	if !ok {
		return fmt.Errorf("issue %s: %w", issueID, store.ErrNotFound)
	}
	s.comments[comment.ID] = cloneComment(comment)
	issue.Comments = append(issue.Comments, comment.ID)
	return nil
}

func (s *Store) GetComment(ctx context.Context, id models.CommentID) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, fmt.Errorf("comment %s: %w", id, store.ErrNotFound)
	}
	return cloneComment(c), nil
}

func (s *Store) ListComments(ctx context.Context, issueID models.IssueID) ([]*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	issue, ok := s.issues[issueID]
	if !ok {
		return nil, fmt.Errorf("issue %s: %w", issueID, store.ErrNotFound)
	}
	var out []*models.Comment
	for _, cID := range issue.Comments {
		if c, ok := s.comments[cID]; ok {
			out = append(out, cloneComment(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) MergeComment(ctx context.Context, id models.CommentID, patch models.CommentPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return fmt.Errorf("comment %s: %w", id, store.ErrNotFound)
	}
	if patch.Text != nil {
		c.Text = *patch.Text
	}
	return nil
}

func (s *Store) DeleteComment(ctx context.Context, id models.CommentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return fmt.Errorf("comment %s: %w", id, store.ErrNotFound)
	}
	delete(s.comments, id)
	return nil
}

func (s *Store) IssueOfComment(ctx context.Context, id models.CommentID) (*models.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, issue := range s.issues {
		if containsValue(issue.Comments, id) {
			return cloneIssue(issue), nil
		}
	}
	return nil, fmt.Errorf("issue of comment %s: %w", id, store.ErrNotFound)
}

// Copy helpers. Documents cross the store boundary by value so callers
// can never alias internal state.

func cloneUser(u *models.User) *models.User {
	out := *u
	return &out
}

func cloneWorkplace(w *models.Workplace) *models.Workplace {
	out := *w
	out.States = cloneSlice(w.States)
	out.Memberships = cloneSlice(w.Memberships)
	out.Sprints = cloneSlice(w.Sprints)
	out.Issues = cloneSlice(w.Issues)
	return &out
}

func cloneMembership(m *models.Membership) *models.Membership {
	out := *m
	return &out
}

func cloneSprint(s *models.Sprint) *models.Sprint {
	out := *s
	out.Issues = cloneSlice(s.Issues)
	return &out
}

func cloneIssue(i *models.Issue) *models.Issue {
	out := *i
	if i.AuthorID != nil {
		author := *i.AuthorID
		out.AuthorID = &author
	}
	out.Implementers = cloneSlice(i.Implementers)
	out.Comments = cloneSlice(i.Comments)
	return &out
}

func cloneComment(c *models.Comment) *models.Comment {
	out := *c
	if c.AuthorID != nil {
		author := *c.AuthorID
		out.AuthorID = &author
	}
	return &out
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func removeValue[T comparable](list []T, v T) []T {
	out := list[:0]
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

func containsValue[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
