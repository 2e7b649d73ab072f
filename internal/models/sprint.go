package models

import "time"

type Sprint struct {
	ID        SprintID  `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	// Links
	Issues []IssueID `json:"issues"`
}

// Interval returns the sprint's scheduled range as a half-open interval.
func (s *Sprint) Interval() Interval {
	return Interval{Start: s.StartDate, End: s.EndDate}
}

type SprintPatch struct {
	Name *string `json:"name,omitempty"`
}
