package validation

import (
	"fmt"

	"github.com/noah-isme/study-planner-api/internal/models"
)

// ValidateTerm checks a candidate term against its owner's other terms.
// siblings must be every other term of the same owner; the caller excludes
// the term being updated. Rules run in a fixed order so error lists are
// deterministic for identical input.
func ValidateTerm(candidate models.Term, siblings []models.Term) Result {
	var result Result

	r := candidate.Range()
	rangeValid := r.Valid()
	if !rangeValid {
		result.add("end_date", "end date must be after start date")
	}

	if rangeValid {
		days := r.DurationDays()
		if days < models.TermMinDays {
			result.add("end_date", fmt.Sprintf("term must be at least %d days long", models.TermMinDays))
		} else if days > models.TermMaxDays {
			result.add("end_date", fmt.Sprintf("term cannot be longer than %d days", models.TermMaxDays))
		}

		for _, other := range siblings {
			if other.ID == candidate.ID {
				continue
			}
			if r.Overlaps(other.Range()) {
				result.add("start_date", fmt.Sprintf("term dates overlap with %q (%s - %s)",
					other.Name, fmtDate(other.StartDate), fmtDate(other.EndDate)))
				break
			}
		}
	}

	return result
}
