// Package validation implements the cross-entity consistency rules for the
// planner hierarchy. Rules are pure functions over eagerly loaded snapshots:
// the caller resolves the parent and siblings up front, the rules only look
// at what they are handed. Every violation is accumulated into a field-scoped
// error list so a single submission can report all of its problems at once.
package validation

import (
	"time"

	apperrors "github.com/noah-isme/study-planner-api/pkg/errors"
)

// Result collects the outcome of one validation pass.
type Result struct {
	Errors []apperrors.FieldError
	// NotFound marks a missing or foreign parent reference. When set, rule
	// evaluation stopped at the reference check and Errors holds exactly the
	// foreign-key field error.
	NotFound bool
}

// OK reports whether the candidate may be persisted.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

func (r *Result) add(field, message string) {
	r.Errors = append(r.Errors, apperrors.FieldError{Field: field, Message: message})
}

const dateLayout = "2006-01-02"

func fmtDate(t time.Time) string {
	return t.Format(dateLayout)
}
