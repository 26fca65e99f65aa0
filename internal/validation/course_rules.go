package validation

import (
	"fmt"
	"strings"

	"github.com/noah-isme/study-planner-api/internal/models"
)

// ValidateCourse checks a candidate course against its parent term and its
// siblings within that term. parent is nil when the referenced term does not
// exist or belongs to another owner; that case short-circuits every other
// rule. siblings must be the other courses of the parent term; the caller
// excludes the course being updated.
func ValidateCourse(candidate models.Course, parent *models.Term, siblings []models.Course) Result {
	var result Result

	if parent == nil {
		result.add("term_id", "term not found")
		result.NotFound = true
		return result
	}

	r := candidate.Range()
	rangeValid := r.Valid()
	if !rangeValid {
		result.add("end_date", "end date must be after start date")
	}

	termRange := parent.Range()
	if rangeValid && !termRange.Contains(r) {
		result.add("start_date", fmt.Sprintf("course must fall within term %q (%s - %s)",
			parent.Name, fmtDate(parent.StartDate), fmtDate(parent.EndDate)))
	}

	for _, other := range siblings {
		if other.ID == candidate.ID {
			continue
		}
		if strings.EqualFold(other.CourseNumber, candidate.CourseNumber) {
			result.add("course_number", fmt.Sprintf("course number %q is already used in this term", candidate.CourseNumber))
			break
		}
	}

	if candidate.CreditHours < 1 || candidate.CreditHours > 6 {
		result.add("credit_hours", "credit hours must be between 1 and 6")
	}

	if rangeValid {
		days := r.DurationDays()
		if days < models.CourseMinDays {
			result.add("end_date", fmt.Sprintf("course must be at least %d days long", models.CourseMinDays))
		} else if days > termRange.DurationDays() {
			result.add("end_date", "course cannot be longer than its term")
		}
	}

	return result
}
