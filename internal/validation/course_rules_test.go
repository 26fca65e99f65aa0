package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/study-planner-api/internal/models"
)

func makeCourse(id, number string, start, end time.Time) models.Course {
	course := models.Course{
		TermID:       "term-a",
		CourseNumber: number,
		Title:        "Intro to Testing",
		CreditHours:  3,
		StartDate:    start,
		EndDate:      end,
		Status:       models.CourseStatusNotStarted,
	}
	course.ID = id
	return course
}

func termA() *models.Term {
	term := makeTerm("term-a", "Term A", date(2025, 9, 1), date(2025, 12, 15))
	return &term
}

func TestValidateCoursePasses(t *testing.T) {
	candidate := makeCourse("", "CS101", date(2025, 9, 1), date(2025, 12, 15))
	result := ValidateCourse(candidate, termA(), nil)
	require.True(t, result.OK())
}

func TestValidateCourseParentNotFoundShortCircuits(t *testing.T) {
	candidate := makeCourse("", "CS101", date(2025, 9, 1), date(2025, 1, 1))
	candidate.CreditHours = 99

	result := ValidateCourse(candidate, nil, nil)
	require.True(t, result.NotFound)
	require.Len(t, result.Errors, 1)
	require.Equal(t, "term_id", result.Errors[0].Field)
}

func TestValidateCourseContainmentCitesTermBounds(t *testing.T) {
	candidate := makeCourse("", "CS101", date(2025, 8, 25), date(2025, 12, 1))

	result := ValidateCourse(candidate, termA(), nil)
	require.Len(t, result.Errors, 1)
	require.Equal(t, "start_date", result.Errors[0].Field)
	require.Contains(t, result.Errors[0].Message, "2025-09-01")
	require.Contains(t, result.Errors[0].Message, "2025-12-15")
}

func TestValidateCourseNumberUniqueCaseInsensitive(t *testing.T) {
	existing := makeCourse("course-1", "CS101", date(2025, 9, 1), date(2025, 12, 15))
	candidate := makeCourse("", "cs101", date(2025, 9, 1), date(2025, 12, 15))

	result := ValidateCourse(candidate, termA(), []models.Course{existing})
	require.Len(t, result.Errors, 1)
	require.Equal(t, "course_number", result.Errors[0].Field)
}

func TestValidateCourseNumberExcludesSelfOnUpdate(t *testing.T) {
	existing := makeCourse("course-1", "CS101", date(2025, 9, 1), date(2025, 12, 15))

	result := ValidateCourse(existing, termA(), []models.Course{existing})
	require.True(t, result.OK())
}

func TestValidateCourseCreditHours(t *testing.T) {
	for _, hours := range []int{0, 7} {
		candidate := makeCourse("", "CS101", date(2025, 9, 1), date(2025, 12, 15))
		candidate.CreditHours = hours

		result := ValidateCourse(candidate, termA(), nil)
		require.Len(t, result.Errors, 1)
		require.Equal(t, "credit_hours", result.Errors[0].Field)
	}
}

func TestValidateCourseTooShort(t *testing.T) {
	candidate := makeCourse("", "CS101", date(2025, 9, 1), date(2025, 9, 5))

	result := ValidateCourse(candidate, termA(), nil)
	require.Len(t, result.Errors, 1)
	require.Equal(t, "end_date", result.Errors[0].Field)
	require.Contains(t, result.Errors[0].Message, "at least 7 days")
}

func TestValidateCourseInvalidIntervalKeepsIndependentRules(t *testing.T) {
	existing := makeCourse("course-1", "CS101", date(2025, 9, 1), date(2025, 12, 15))
	candidate := makeCourse("", "cs101", date(2025, 10, 1), date(2025, 9, 1))

	// Interval-dependent rules are skipped, but uniqueness still runs.
	result := ValidateCourse(candidate, termA(), []models.Course{existing})
	require.Len(t, result.Errors, 2)
	fields := make([]string, 0, len(result.Errors))
	for _, fe := range result.Errors {
		fields = append(fields, fe.Field)
	}
	require.Contains(t, fields, "end_date")
	require.Contains(t, fields, "course_number")
}

func TestValidateCourseAccumulatesViolations(t *testing.T) {
	existing := makeCourse("course-1", "CS101", date(2025, 9, 1), date(2025, 12, 15))
	candidate := makeCourse("", "CS101", date(2025, 8, 1), date(2025, 8, 10))
	candidate.CreditHours = 0

	result := ValidateCourse(candidate, termA(), []models.Course{existing})
	fields := make([]string, 0, len(result.Errors))
	for _, fe := range result.Errors {
		fields = append(fields, fe.Field)
	}
	require.Contains(t, fields, "start_date")
	require.Contains(t, fields, "course_number")
	require.Contains(t, fields, "credit_hours")
}
