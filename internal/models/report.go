package models

// Snapshot is an eagerly loaded subtree of one owner's planner hierarchy.
// The aggregation and rendering code operates on snapshots only and never
// reaches back into a store.
type Snapshot struct {
	Terms               []Term
	CoursesByTerm       map[string][]Course
	AssessmentsByCourse map[string][]Assessment
}

// Courses returns every course across the snapshot.
func (s Snapshot) Courses() []Course {
	var out []Course
	for _, term := range s.Terms {
		out = append(out, s.CoursesByTerm[term.ID]...)
	}
	return out
}

// Assessments returns every assessment across the snapshot.
func (s Snapshot) Assessments() []Assessment {
	var out []Assessment
	for _, course := range s.Courses() {
		out = append(out, s.AssessmentsByCourse[course.ID]...)
	}
	return out
}

// AssessmentTypeGroup summarises assessments sharing a type.
type AssessmentTypeGroup struct {
	Type      AssessmentType `json:"type"`
	Count     int            `json:"count"`
	Completed int            `json:"completed"`
}

// AssessmentStatusGroup summarises assessments sharing a status.
type AssessmentStatusGroup struct {
	Status AssessmentStatus `json:"status"`
	Count  int              `json:"count"`
}

// ProgressStats aggregates assessment progress across a snapshot.
type ProgressStats struct {
	TotalTerms           int                     `json:"total_terms"`
	TotalCourses         int                     `json:"total_courses"`
	TotalAssessments     int                     `json:"total_assessments"`
	CompletedAssessments int                     `json:"completed_assessments"`
	OverdueAssessments   int                     `json:"overdue_assessments"`
	UpcomingAssessments  int                     `json:"upcoming_assessments"`
	CompletionRate       float64                 `json:"completion_rate"`
	AverageScore         float64                 `json:"average_score"`
	ByType               []AssessmentTypeGroup   `json:"by_type"`
	ByStatus             []AssessmentStatusGroup `json:"by_status"`
}

// CourseProgress pairs a course with its derived completion figures.
type CourseProgress struct {
	Course            Course  `json:"course"`
	TotalAssessments  int     `json:"total_assessments"`
	CompletedCount    int     `json:"completed_count"`
	CompletionPercent float64 `json:"completion_percent"`
}
