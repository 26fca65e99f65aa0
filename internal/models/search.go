package models

import "time"

// SearchKind tags which entity a search result came from.
type SearchKind string

const (
	SearchKindTerm       SearchKind = "TERM"
	SearchKindCourse     SearchKind = "COURSE"
	SearchKindAssessment SearchKind = "ASSESSMENT"
)

// SearchResult is a uniform match record across the three entity kinds. Date
// is the entity's representative date: term start, course start, or
// assessment due date.
type SearchResult struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Kind        SearchKind `json:"kind"`
	EntityID    string     `json:"entity_id"`
	Date        time.Time  `json:"date"`
}

// Search sort orders accepted by the search endpoint.
const (
	SearchSortDate  = "date"
	SearchSortTitle = "title"
	SearchSortKind  = "kind"
)
