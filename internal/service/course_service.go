package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/study-planner-api/internal/models"
	"github.com/noah-isme/study-planner-api/internal/validation"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
)

type courseRepository interface {
	ListByTerm(ctx context.Context, termID string) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

type courseTermResolver interface {
	FindByID(ctx context.Context, id string) (*models.Term, error)
}

// CreateCourseRequest describes payload for creating courses.
type CreateCourseRequest struct {
	TermID       string              `json:"term_id" validate:"required"`
	CourseNumber string              `json:"course_number" validate:"required,max=10"`
	Title        string              `json:"title" validate:"required,max=200"`
	Description  string              `json:"description" validate:"max=1000"`
	CreditHours  int                 `json:"credit_hours"`
	StartDate    time.Time           `json:"start_date" validate:"required"`
	EndDate      time.Time           `json:"end_date" validate:"required"`
	Status       models.CourseStatus `json:"status" validate:"required,oneof=NOT_STARTED IN_PROGRESS COMPLETED DROPPED"`
}

// UpdateCourseRequest updates mutable fields on a course.
type UpdateCourseRequest struct {
	CourseNumber string              `json:"course_number" validate:"required,max=10"`
	Title        string              `json:"title" validate:"required,max=200"`
	Description  string              `json:"description" validate:"max=1000"`
	CreditHours  int                 `json:"credit_hours"`
	StartDate    time.Time           `json:"start_date" validate:"required"`
	EndDate      time.Time           `json:"end_date" validate:"required"`
	Status       models.CourseStatus `json:"status" validate:"required,oneof=NOT_STARTED IN_PROGRESS COMPLETED DROPPED"`
}

// CourseService orchestrates course workflows. Writes resolve the parent
// term and sibling courses eagerly, then run the pure consistency rules.
type CourseService struct {
	repo      courseRepository
	terms     courseTermResolver
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService creates a new course service instance.
func NewCourseService(repo courseRepository, terms courseTermResolver, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, terms: terms, validator: validate, logger: logger}
}

// WithCache attaches a cache whose progress entries are invalidated on writes.
func (s *CourseService) WithCache(cache *CacheService) *CourseService {
	s.cache = cache
	return s
}

// ListByTerm returns the courses of an owner's term.
func (s *CourseService) ListByTerm(ctx context.Context, ownerID, termID string) ([]models.Course, error) {
	if _, err := s.resolveTerm(ctx, ownerID, termID); err != nil {
		return nil, err
	}
	courses, err := s.repo.ListByTerm(ctx, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// Get returns a course by ID scoped to its owner.
func (s *CourseService) Get(ctx context.Context, ownerID, id string) (*models.Course, error) {
	return s.loadOwned(ctx, ownerID, id)
}

// Create validates and persists a new course.
func (s *CourseService) Create(ctx context.Context, ownerID string, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course := &models.Course{
		TermID:       req.TermID,
		CourseNumber: req.CourseNumber,
		Title:        req.Title,
		Description:  req.Description,
		CreditHours:  req.CreditHours,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Status:       req.Status,
	}

	if err := s.runRules(ctx, ownerID, *course); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	s.invalidateProgress(ctx, ownerID)
	return course, nil
}

// Update validates and persists changes to a course.
func (s *CourseService) Update(ctx context.Context, ownerID, id string, req UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	course.CourseNumber = req.CourseNumber
	course.Title = req.Title
	course.Description = req.Description
	course.CreditHours = req.CreditHours
	course.StartDate = req.StartDate
	course.EndDate = req.EndDate
	course.Status = req.Status

	if err := s.runRules(ctx, ownerID, *course); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	s.invalidateProgress(ctx, ownerID)
	return course, nil
}

// Delete removes a course with its assessments.
func (s *CourseService) Delete(ctx context.Context, ownerID, id string) error {
	course, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, course.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	s.logger.Info("course deleted", zap.String("course_id", course.ID), zap.String("owner_id", ownerID))
	s.invalidateProgress(ctx, ownerID)
	return nil
}

func (s *CourseService) invalidateProgress(ctx context.Context, ownerID string) {
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("progress:%s", ownerID)); err != nil {
		s.logger.Warn("progress cache invalidation failed", zap.String("owner_id", ownerID), zap.Error(err))
	}
}

func (s *CourseService) runRules(ctx context.Context, ownerID string, candidate models.Course) error {
	parent, err := s.resolveTermForRules(ctx, ownerID, candidate.TermID)
	if err != nil {
		return err
	}

	var siblings []models.Course
	if parent != nil {
		siblings, err = s.repo.ListByTerm(ctx, parent.ID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sibling courses")
		}
	}

	result := validation.ValidateCourse(candidate, parent, siblings)
	if !result.OK() {
		failure := appErrors.ErrValidation
		if result.NotFound {
			failure = appErrors.ErrNotFound
		}
		return appErrors.WithFields(appErrors.Clone(failure, "course validation failed"), result.Errors)
	}
	return nil
}

// resolveTermForRules maps missing or foreign terms to nil so the validation
// rules produce the foreign-key field error themselves.
func (s *CourseService) resolveTermForRules(ctx context.Context, ownerID, termID string) (*models.Term, error) {
	term, err := s.terms.FindByID(ctx, termID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}
	if term.OwnerID != ownerID {
		return nil, nil
	}
	return term, nil
}

func (s *CourseService) resolveTerm(ctx context.Context, ownerID, termID string) (*models.Term, error) {
	term, err := s.resolveTermForRules(ctx, ownerID, termID)
	if err != nil {
		return nil, err
	}
	if term == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
	}
	return term, nil
}

// loadOwned resolves a course and enforces ownership through its term.
func (s *CourseService) loadOwned(ctx context.Context, ownerID, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if _, err := s.resolveTerm(ctx, ownerID, course.TermID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	return course, nil
}
