package models

import "time"

type Comment struct {
	ID        CommentID `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"creation_date"`

	// Links
	AuthorID *MembershipID `json:"author"`
}

type CommentPatch struct {
	Text *string `json:"text,omitempty"`
}
