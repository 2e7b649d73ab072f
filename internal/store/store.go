// Package store defines the persistence contract for the workplace
// document graph. Entities reference each other through typed IDs only;
// reverse links are derived by the store, never written by callers.
package store

import (
	"context"
	"errors"

	"github.com/workplane-dev/workplane/internal/models"
)

var (
	// ErrNotFound is returned when a referenced document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSprintOverlap is returned when a sprint create or reschedule
	// would collide with another sprint of the same workplace.
	ErrSprintOverlap = errors.New("sprint dates overlap")
)

// Store is the full persistence surface. Link-array mutations are exposed
// as dedicated operations so cascade steps persist one collection at a time.
type Store interface {
	Users
	Workplaces
	Memberships
	Sprints
	Issues
	Comments

	Close(ctx context.Context) error
}

type Users interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id models.UserID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	MergeUser(ctx context.Context, id models.UserID, patch models.UserPatch) error
	// DeleteUser removes the user document only. Detaching the user's
	// memberships is the caller's responsibility.
	DeleteUser(ctx context.Context, id models.UserID) error
}

type Workplaces interface {
	// CreateWorkplace persists the workplace together with its creator's
	// membership as one atomic step.
	CreateWorkplace(ctx context.Context, workplace *models.Workplace, creator *models.Membership) error
	GetWorkplace(ctx context.Context, id models.WorkplaceID) (*models.Workplace, error)
	ListWorkplacesByUser(ctx context.Context, userID models.UserID) ([]*models.Workplace, error)
	MergeWorkplace(ctx context.Context, id models.WorkplaceID, patch models.WorkplacePatch) error
	// DeleteWorkplace removes the workplace document only. Cascading over
	// its linked collections is the caller's responsibility.
	DeleteWorkplace(ctx context.Context, id models.WorkplaceID) error

	RemoveWorkplaceSprint(ctx context.Context, workplaceID models.WorkplaceID, sprintID models.SprintID) error
	RemoveWorkplaceIssue(ctx context.Context, workplaceID models.WorkplaceID, issueID models.IssueID) error
}

type Memberships interface {
	// CreateMembership persists the membership and links it to the
	// workplace atomically.
	CreateMembership(ctx context.Context, workplaceID models.WorkplaceID, membership *models.Membership) error
	GetMembership(ctx context.Context, id models.MembershipID) (*models.Membership, error)
	// GetMembershipByUser resolves the membership a user holds in a
	// workplace, if any.
	GetMembershipByUser(ctx context.Context, workplaceID models.WorkplaceID, userID models.UserID) (*models.Membership, error)
	// ListMembers returns memberships joined with their user documents,
	// optionally filtered by an email prefix.
	ListMembers(ctx context.Context, workplaceID models.WorkplaceID, emailPrefix string) ([]*models.Member, error)
	MergeMembership(ctx context.Context, id models.MembershipID, patch models.MembershipPatch) error
	// DeleteMembership unlinks the membership from the workplace and
	// removes its document.
	DeleteMembership(ctx context.Context, workplaceID models.WorkplaceID, id models.MembershipID) error
	// DetachMembership clears every author and implementer reference
	// pointing at the membership.
	DetachMembership(ctx context.Context, id models.MembershipID) error

	// WorkplaceOfMembership derives the owning workplace from the
	// workplace's membership links.
	WorkplaceOfMembership(ctx context.Context, id models.MembershipID) (*models.Workplace, error)
}

type Sprints interface {
	// CreateSprint persists the sprint and links it to the workplace.
	// It fails with ErrSprintOverlap when the sprint's range collides
	// with a sibling; the conflict check and the insert are atomic.
	CreateSprint(ctx context.Context, workplaceID models.WorkplaceID, sprint *models.Sprint) error
	GetSprint(ctx context.Context, id models.SprintID) (*models.Sprint, error)
	ListSprints(ctx context.Context, workplaceID models.WorkplaceID) ([]*models.Sprint, error)
	MergeSprint(ctx context.Context, id models.SprintID, patch models.SprintPatch) error
	// RescheduleSprint atomically re-validates the new range against all
	// siblings except the sprint itself, then applies it.
	RescheduleSprint(ctx context.Context, workplaceID models.WorkplaceID, id models.SprintID, interval models.Interval) error
	// DeleteSprint removes the sprint document only.
	DeleteSprint(ctx context.Context, id models.SprintID) error

	AppendSprintIssue(ctx context.Context, sprintID models.SprintID, issueID models.IssueID) error
	RemoveSprintIssue(ctx context.Context, sprintID models.SprintID, issueID models.IssueID) error

	WorkplaceOfSprint(ctx context.Context, id models.SprintID) (*models.Workplace, error)
}

type Issues interface {
	// CreateIssue persists the issue and links it to the workplace, and
	// to a sprint when sprintID is non-nil.
	CreateIssue(ctx context.Context, workplaceID models.WorkplaceID, sprintID *models.SprintID, issue *models.Issue) error
	GetIssue(ctx context.Context, id models.IssueID) (*models.Issue, error)
	ListIssues(ctx context.Context, workplaceID models.WorkplaceID) ([]*models.Issue, error)
	ListSprintIssues(ctx context.Context, sprintID models.SprintID) ([]*models.Issue, error)
	MergeIssue(ctx context.Context, id models.IssueID, patch models.IssuePatch) error
	// DeleteIssue removes the issue document only.
	DeleteIssue(ctx context.Context, id models.IssueID) error

	RemoveIssueComment(ctx context.Context, issueID models.IssueID, commentID models.CommentID) error

	WorkplaceOfIssue(ctx context.Context, id models.IssueID) (*models.Workplace, error)
	// SprintOfIssue derives the sprint holding the issue; it returns
	// (nil, nil) for backlog issues that belong to no sprint.
	SprintOfIssue(ctx context.Context, id models.IssueID) (*models.Sprint, error)
}

type Comments interface {
	// CreateComment persists the comment and links it to the issue.
	CreateComment(ctx context.Context, issueID models.IssueID, comment *models.Comment) error
	GetComment(ctx context.Context, id models.CommentID) (*models.Comment, error)
	ListComments(ctx context.Context, issueID models.IssueID) ([]*models.Comment, error)
	MergeComment(ctx context.Context, id models.CommentID, patch models.CommentPatch) error
	// DeleteComment removes the comment document only.
	DeleteComment(ctx context.Context, id models.CommentID) error

	IssueOfComment(ctx context.Context, id models.CommentID) (*models.Issue, error)
}
