package models

type Workplace struct {
	ID          WorkplaceID `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	States      []string    `json:"states"`

	// Links
	Memberships []MembershipID `json:"memberships"`
	Sprints     []SprintID     `json:"sprints"`
	Issues      []IssueID      `json:"issues"`
}

// DefaultStates returns the issue states a new workplace starts with.
// A fresh slice is returned so callers can mutate it freely.
func DefaultStates() []string {
	return []string{"Backlog", "In Progress", "Done"}
}

// HasState reports whether state is one of the workplace's configured states.
func (w *Workplace) HasState(state string) bool {
	for _, s := range w.States {
		if s == state {
			return true
		}
	}
	return false
}

type WorkplacePatch struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	States      *[]string `json:"states,omitempty"`
}
