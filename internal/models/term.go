package models

import (
	"time"

	"github.com/noah-isme/study-planner-api/pkg/daterange"
)

// Term bounds (inclusive) on how long an academic term may run.
const (
	TermMinDays = 7
	TermMaxDays = 730
)

// Term is a top-level academic period owned by one user. Terms of the same
// owner must never overlap in time.
type Term struct {
	AuditFields
	OwnerID     string    `db:"owner_id" json:"owner_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	StartDate   time.Time `db:"start_date" json:"start_date"`
	EndDate     time.Time `db:"end_date" json:"end_date"`
}

// Range returns the term's date interval.
func (t Term) Range() daterange.Range {
	return daterange.New(t.StartDate, t.EndDate)
}

// TermFilter defines filters supported by term list endpoints.
type TermFilter struct {
	OwnerID   string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
