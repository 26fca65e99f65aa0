package service

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/study-planner-api/internal/models"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
)

type searchTermLister interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.Term, error)
}

type searchCourseLister interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.Course, error)
}

type searchAssessmentLister interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.Assessment, error)
}

// SearchService performs case-insensitive substring search across an
// owner's terms, courses, and assessments.
type SearchService struct {
	terms       searchTermLister
	courses     searchCourseLister
	assessments searchAssessmentLister
	logger      *zap.Logger
}

// NewSearchService creates a new search service instance.
func NewSearchService(terms searchTermLister, courses searchCourseLister, assessments searchAssessmentLister, logger *zap.Logger) *SearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{terms: terms, courses: courses, assessments: assessments, logger: logger}
}

// Search returns matches for the query across all entity kinds. A blank or
// whitespace-only query yields an empty result list, not an error and not
// every entity. sortBy accepts date (default), title, or kind.
func (s *SearchService) Search(ctx context.Context, ownerID, query, sortBy string) ([]models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.SearchResult{}, nil
	}
	needle := strings.ToLower(query)

	terms, err := s.terms.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load terms")
	}
	courses, err := s.courses.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	assessments, err := s.assessments.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessments")
	}

	results := MatchSnapshot(terms, courses, assessments, needle)
	SortResults(results, sortBy)
	return results, nil
}

// MatchSnapshot applies the substring predicate over already-loaded
// entities. needle must be lower-cased by the caller.
func MatchSnapshot(terms []models.Term, courses []models.Course, assessments []models.Assessment, needle string) []models.SearchResult {
	results := []models.SearchResult{}

	for _, term := range terms {
		if containsFold(needle, term.Name, term.Description) {
			results = append(results, models.SearchResult{
				Title:       term.Name,
				Description: term.Description,
				Kind:        models.SearchKindTerm,
				EntityID:    term.ID,
				Date:        term.StartDate,
			})
		}
	}
	for _, course := range courses {
		if containsFold(needle, course.Title, course.Description, course.CourseNumber) {
			results = append(results, models.SearchResult{
				Title:       course.Title,
				Description: course.Description,
				Kind:        models.SearchKindCourse,
				EntityID:    course.ID,
				Date:        course.StartDate,
			})
		}
	}
	for _, assessment := range assessments {
		if containsFold(needle, assessment.Name, assessment.Description) {
			results = append(results, models.SearchResult{
				Title:       assessment.Name,
				Description: assessment.Description,
				Kind:        models.SearchKindAssessment,
				EntityID:    assessment.ID,
				Date:        assessment.DueDate,
			})
		}
	}
	return results
}

// SortResults orders results by the requested key, defaulting to ascending
// representative date.
func SortResults(results []models.SearchResult, sortBy string) {
	switch sortBy {
	case models.SearchSortTitle:
		sort.SliceStable(results, func(i, j int) bool {
			return strings.ToLower(results[i].Title) < strings.ToLower(results[j].Title)
		})
	case models.SearchSortKind:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Kind < results[j].Kind
		})
	default:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Date.Before(results[j].Date)
		})
	}
}

func containsFold(needle string, fields ...string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
