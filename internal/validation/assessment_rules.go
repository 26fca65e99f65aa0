package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/study-planner-api/internal/models"
)

// ValidateAssessment checks a candidate assessment against its parent course
// and its siblings within that course. parent is nil when the referenced
// course does not exist or belongs to another owner; that case
// short-circuits every other rule. now is the single evaluation instant for
// the create-time past-due check, which only applies when isCreate is set.
func ValidateAssessment(candidate models.Assessment, parent *models.Course, siblings []models.Assessment, now time.Time, isCreate bool) Result {
	var result Result

	if parent == nil {
		result.add("course_id", "course not found")
		result.NotFound = true
		return result
	}

	// Due dates get a grace window past the course end.
	latest := parent.EndDate.AddDate(0, 0, models.DueDateGraceDays)
	if candidate.DueDate.Before(parent.StartDate) || candidate.DueDate.After(latest) {
		result.add("due_date", fmt.Sprintf("due date must fall within %s - %s",
			fmtDate(parent.StartDate), fmtDate(latest)))
	}

	if candidate.Score != nil {
		if *candidate.Score < 0 || *candidate.Score > float64(candidate.MaxPoints) {
			result.add("score", fmt.Sprintf("score must be between 0 and %d", candidate.MaxPoints))
		}
		if candidate.Status != models.AssessmentStatusCompleted && candidate.Status != models.AssessmentStatusGraded {
			result.add("status", "status must be COMPLETED or GRADED when a score is set")
		}
	}

	for _, other := range siblings {
		if other.ID == candidate.ID {
			continue
		}
		if strings.EqualFold(other.Name, candidate.Name) {
			result.add("name", fmt.Sprintf("assessment name %q is already used in this course", candidate.Name))
			break
		}
	}

	if candidate.MaxPoints < 1 || candidate.MaxPoints > models.MaxPointsCeiling {
		result.add("max_points", fmt.Sprintf("max points must be between 1 and %d", models.MaxPointsCeiling))
	}

	// Kept as a blocking error with a warning-worded message; the web form
	// surfaces it next to the due date field.
	if isCreate && candidate.DueDate.Before(truncateToDay(now)) {
		result.add("due_date", "Warning: due date is in the past")
	}

	return result
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
