package models

import "time"

type Issue struct {
	ID          IssueID   `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	State       string    `json:"state"`
	CreatedAt   time.Time `json:"creation_date"`

	// Links
	AuthorID     *MembershipID  `json:"author"`
	Implementers []MembershipID `json:"implementers"`
	Comments     []CommentID    `json:"comments"`
}

// HasImplementer reports whether the membership is already assigned.
func (i *Issue) HasImplementer(id MembershipID) bool {
	for _, m := range i.Implementers {
		if m == id {
			return true
		}
	}
	return false
}

type IssuePatch struct {
	Title        *string         `json:"title,omitempty"`
	Description  *string         `json:"description,omitempty"`
	State        *string         `json:"state,omitempty"`
	Implementers *[]MembershipID `json:"implementers,omitempty"`
}
