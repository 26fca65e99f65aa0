package models

import (
	"math"
	"time"

	"github.com/noah-isme/study-planner-api/pkg/daterange"
)

// CourseStatus tracks where a course sits in its lifecycle.
type CourseStatus string

const (
	CourseStatusNotStarted CourseStatus = "NOT_STARTED"
	CourseStatusInProgress CourseStatus = "IN_PROGRESS"
	CourseStatusCompleted  CourseStatus = "COMPLETED"
	CourseStatusDropped    CourseStatus = "DROPPED"
)

// CourseMinDays is the shortest allowed course duration.
const CourseMinDays = 7

// Course is an academic unit nested within exactly one Term. Its date
// interval must lie inside the parent term's interval, and its number is
// unique (case-insensitively) among siblings.
type Course struct {
	AuditFields
	TermID       string       `db:"term_id" json:"term_id"`
	CourseNumber string       `db:"course_number" json:"course_number"`
	Title        string       `db:"title" json:"title"`
	Description  string       `db:"description" json:"description"`
	CreditHours  int          `db:"credit_hours" json:"credit_hours"`
	StartDate    time.Time    `db:"start_date" json:"start_date"`
	EndDate      time.Time    `db:"end_date" json:"end_date"`
	Status       CourseStatus `db:"status" json:"status"`
}

// Range returns the course's date interval.
func (c Course) Range() daterange.Range {
	return daterange.New(c.StartDate, c.EndDate)
}

// CompletionPercent computes the share of the given assessments that are
// completed, as a percentage rounded to one decimal place (half away from
// zero). A course with no assessments is 0, never NaN.
func (c Course) CompletionPercent(assessments []Assessment) float64 {
	if len(assessments) == 0 {
		return 0
	}
	completed := 0
	for _, a := range assessments {
		if a.Status == AssessmentStatusCompleted {
			completed++
		}
	}
	return math.Round(float64(completed)/float64(len(assessments))*1000) / 10
}

// CourseFilter defines filters supported by course list endpoints.
type CourseFilter struct {
	TermID    string
	Status    CourseStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
