package models

import "time"

// AssessmentType classifies gradable items.
type AssessmentType string

const (
	AssessmentTypeObjective   AssessmentType = "OBJECTIVE"
	AssessmentTypePerformance AssessmentType = "PERFORMANCE"
	AssessmentTypeProject     AssessmentType = "PROJECT"
	AssessmentTypeExam        AssessmentType = "EXAM"
	AssessmentTypeQuiz        AssessmentType = "QUIZ"
	AssessmentTypeAssignment  AssessmentType = "ASSIGNMENT"
)

// AssessmentStatus tracks where an assessment sits in its lifecycle.
type AssessmentStatus string

const (
	AssessmentStatusNotStarted AssessmentStatus = "NOT_STARTED"
	AssessmentStatusInProgress AssessmentStatus = "IN_PROGRESS"
	AssessmentStatusCompleted  AssessmentStatus = "COMPLETED"
	AssessmentStatusSubmitted  AssessmentStatus = "SUBMITTED"
	AssessmentStatusGraded     AssessmentStatus = "GRADED"
)

// Max points bounds and default for an assessment.
const (
	MaxPointsCeiling = 1000
	MaxPointsDefault = 100
)

// DueDateGraceDays is the grace window after course end in which a due date
// is still considered in range.
const DueDateGraceDays = 7

// Assessment is a gradable item nested within exactly one Course. Its name
// is unique (case-insensitively) among siblings; a score may only be set
// once the assessment is completed or graded.
type Assessment struct {
	AuditFields
	CourseID    string           `db:"course_id" json:"course_id"`
	Name        string           `db:"name" json:"name"`
	Description string           `db:"description" json:"description"`
	Type        AssessmentType   `db:"type" json:"type"`
	DueDate     time.Time        `db:"due_date" json:"due_date"`
	Status      AssessmentStatus `db:"status" json:"status"`
	Score       *float64         `db:"score" json:"score,omitempty"`
	MaxPoints   int              `db:"max_points" json:"max_points"`
}

// IsOverdue reports whether the assessment's due date has passed without
// completion, evaluated against the given instant.
func (a Assessment) IsOverdue(now time.Time) bool {
	return now.After(a.DueDate) && a.Status != AssessmentStatusCompleted
}

// DaysUntilDue returns the signed number of whole days between now's date
// and the due date's date. Negative when overdue.
func (a Assessment) DaysUntilDue(now time.Time) int {
	due := truncateToDay(a.DueDate)
	today := truncateToDay(now)
	return int(due.Sub(today).Hours() / 24)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AssessmentFilter defines filters supported by assessment list endpoints.
type AssessmentFilter struct {
	CourseID  string
	Type      AssessmentType
	Status    AssessmentStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
