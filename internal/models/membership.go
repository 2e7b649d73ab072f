package models

type Membership struct {
	ID     MembershipID `json:"id"`
	UserID UserID       `json:"user"`
	Role   Role         `json:"role"`
}

type MembershipPatch struct {
	Role *Role `json:"role,omitempty"`
}

// Member is a membership joined with its user document, produced for
// member listings. It is never stored.
type Member struct {
	Membership
	User User `json:"user"`
}
