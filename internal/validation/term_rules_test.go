package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/study-planner-api/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func makeTerm(id, name string, start, end time.Time) models.Term {
	term := models.Term{
		OwnerID:   "owner-1",
		Name:      name,
		StartDate: start,
		EndDate:   end,
	}
	term.ID = id
	return term
}

func TestValidateTermPasses(t *testing.T) {
	candidate := makeTerm("", "Fall 2025", date(2025, 9, 1), date(2025, 12, 15))
	siblings := []models.Term{
		makeTerm("term-spring", "Spring 2025", date(2025, 1, 6), date(2025, 5, 2)),
	}

	result := ValidateTerm(candidate, siblings)
	require.True(t, result.OK())
}

func TestValidateTermEndBeforeStart(t *testing.T) {
	candidate := makeTerm("", "Backwards", date(2025, 12, 15), date(2025, 9, 1))

	result := ValidateTerm(candidate, nil)
	require.Len(t, result.Errors, 1)
	require.Equal(t, "end_date", result.Errors[0].Field)
}

func TestValidateTermInvalidIntervalSkipsDependentRules(t *testing.T) {
	sibling := makeTerm("term-a", "Term A", date(2025, 9, 1), date(2025, 12, 15))
	candidate := makeTerm("", "Backwards", date(2025, 10, 1), date(2025, 9, 1))

	// A malformed interval reports only the end_date error; length and
	// overlap checks are meaningless without a valid range.
	result := ValidateTerm(candidate, []models.Term{sibling})
	require.Len(t, result.Errors, 1)
	require.Equal(t, "end_date", result.Errors[0].Field)
}

func TestValidateTermMinimumLength(t *testing.T) {
	// Exactly 7 days passes, 6 days fails.
	ok := makeTerm("", "Short", date(2025, 1, 1), date(2025, 1, 8))
	require.True(t, ValidateTerm(ok, nil).OK())

	tooShort := makeTerm("", "Too short", date(2025, 1, 1), date(2025, 1, 7))
	result := ValidateTerm(tooShort, nil)
	require.Len(t, result.Errors, 1)
	require.Equal(t, "end_date", result.Errors[0].Field)
	require.Contains(t, result.Errors[0].Message, "at least 7 days")
}

func TestValidateTermMaximumLength(t *testing.T) {
	tooLong := makeTerm("", "Too long", date(2020, 1, 1), date(2023, 1, 1))
	result := ValidateTerm(tooLong, nil)
	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0].Message, "730")
}

func TestValidateTermTouchingEndpointsOverlap(t *testing.T) {
	termA := makeTerm("term-a", "Term A", date(2025, 9, 1), date(2025, 12, 15))
	candidate := makeTerm("", "Term B", date(2025, 12, 15), date(2026, 1, 10))

	result := ValidateTerm(candidate, []models.Term{termA})
	require.Len(t, result.Errors, 1)
	require.Equal(t, "start_date", result.Errors[0].Field)
	require.Contains(t, result.Errors[0].Message, "Term A")
	require.Contains(t, result.Errors[0].Message, "2025-09-01")
	require.Contains(t, result.Errors[0].Message, "2025-12-15")
}

func TestValidateTermExcludesSelfOnUpdate(t *testing.T) {
	existing := makeTerm("term-a", "Term A", date(2025, 9, 1), date(2025, 12, 15))

	// Updating the same term against a sibling list still containing it must
	// not report a self-overlap.
	result := ValidateTerm(existing, []models.Term{existing})
	require.True(t, result.OK())
}

func TestValidateTermFirstOverlapReported(t *testing.T) {
	first := makeTerm("term-1", "First", date(2025, 9, 1), date(2025, 10, 1))
	second := makeTerm("term-2", "Second", date(2025, 10, 2), date(2025, 11, 1))
	candidate := makeTerm("", "Sprawl", date(2025, 9, 15), date(2025, 10, 20))

	result := ValidateTerm(candidate, []models.Term{first, second})
	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0].Message, "First")
}
