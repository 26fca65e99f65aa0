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

type assessmentRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Assessment, error)
	FindByID(ctx context.Context, id string) (*models.Assessment, error)
	Create(ctx context.Context, assessment *models.Assessment) error
	Update(ctx context.Context, assessment *models.Assessment) error
	Delete(ctx context.Context, id string) error
}

type assessmentCourseResolver interface {
	Get(ctx context.Context, ownerID, id string) (*models.Course, error)
}

// CreateAssessmentRequest describes payload for creating assessments.
type CreateAssessmentRequest struct {
	CourseID    string                  `json:"course_id" validate:"required"`
	Name        string                  `json:"name" validate:"required,max=200"`
	Description string                  `json:"description" validate:"max=1000"`
	Type        models.AssessmentType   `json:"type" validate:"required,oneof=OBJECTIVE PERFORMANCE PROJECT EXAM QUIZ ASSIGNMENT"`
	DueDate     time.Time               `json:"due_date" validate:"required"`
	Status      models.AssessmentStatus `json:"status" validate:"required,oneof=NOT_STARTED IN_PROGRESS COMPLETED SUBMITTED GRADED"`
	Score       *float64                `json:"score"`
	MaxPoints   int                     `json:"max_points"`
}

// UpdateAssessmentRequest updates mutable fields on an assessment.
type UpdateAssessmentRequest struct {
	Name        string                  `json:"name" validate:"required,max=200"`
	Description string                  `json:"description" validate:"max=1000"`
	Type        models.AssessmentType   `json:"type" validate:"required,oneof=OBJECTIVE PERFORMANCE PROJECT EXAM QUIZ ASSIGNMENT"`
	DueDate     time.Time               `json:"due_date" validate:"required"`
	Status      models.AssessmentStatus `json:"status" validate:"required,oneof=NOT_STARTED IN_PROGRESS COMPLETED SUBMITTED GRADED"`
	Score       *float64                `json:"score"`
	MaxPoints   int                     `json:"max_points"`
}

// AssessmentService orchestrates assessment workflows. Overdue and past-due
// checks are evaluated against a single injected clock instant per call.
type AssessmentService struct {
	repo      assessmentRepository
	courses   assessmentCourseResolver
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAssessmentService creates a new assessment service instance.
func NewAssessmentService(repo assessmentRepository, courses assessmentCourseResolver, validate *validator.Validate, logger *zap.Logger) *AssessmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssessmentService{repo: repo, courses: courses, validator: validate, logger: logger, now: time.Now}
}

// WithCache attaches a cache whose progress entries are invalidated on writes.
func (s *AssessmentService) WithCache(cache *CacheService) *AssessmentService {
	s.cache = cache
	return s
}

// ListByCourse returns the assessments of an owner's course.
func (s *AssessmentService) ListByCourse(ctx context.Context, ownerID, courseID string) ([]models.Assessment, error) {
	if _, err := s.courses.Get(ctx, ownerID, courseID); err != nil {
		return nil, err
	}
	assessments, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assessments")
	}
	return assessments, nil
}

// Get returns an assessment by ID scoped to its owner.
func (s *AssessmentService) Get(ctx context.Context, ownerID, id string) (*models.Assessment, error) {
	return s.loadOwned(ctx, ownerID, id)
}

// Create validates and persists a new assessment.
func (s *AssessmentService) Create(ctx context.Context, ownerID string, req CreateAssessmentRequest) (*models.Assessment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assessment payload")
	}

	assessment := &models.Assessment{
		CourseID:    req.CourseID,
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		DueDate:     req.DueDate,
		Status:      req.Status,
		Score:       req.Score,
		MaxPoints:   req.MaxPoints,
	}
	if assessment.MaxPoints == 0 {
		assessment.MaxPoints = models.MaxPointsDefault
	}

	if err := s.runRules(ctx, ownerID, *assessment, true); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, assessment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assessment")
	}
	s.invalidateProgress(ctx, ownerID)
	return assessment, nil
}

// Update validates and persists changes to an assessment.
func (s *AssessmentService) Update(ctx context.Context, ownerID, id string, req UpdateAssessmentRequest) (*models.Assessment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assessment payload")
	}

	assessment, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	assessment.Name = req.Name
	assessment.Description = req.Description
	assessment.Type = req.Type
	assessment.DueDate = req.DueDate
	assessment.Status = req.Status
	assessment.Score = req.Score
	if req.MaxPoints != 0 {
		assessment.MaxPoints = req.MaxPoints
	}

	if err := s.runRules(ctx, ownerID, *assessment, false); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, assessment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assessment")
	}
	s.invalidateProgress(ctx, ownerID)
	return assessment, nil
}

// Delete removes an assessment.
func (s *AssessmentService) Delete(ctx context.Context, ownerID, id string) error {
	assessment, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, assessment.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assessment")
	}
	s.invalidateProgress(ctx, ownerID)
	return nil
}

func (s *AssessmentService) invalidateProgress(ctx context.Context, ownerID string) {
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("progress:%s", ownerID)); err != nil {
		s.logger.Warn("progress cache invalidation failed", zap.String("owner_id", ownerID), zap.Error(err))
	}
}

func (s *AssessmentService) runRules(ctx context.Context, ownerID string, candidate models.Assessment, isCreate bool) error {
	parent, err := s.resolveCourseForRules(ctx, ownerID, candidate.CourseID)
	if err != nil {
		return err
	}

	var siblings []models.Assessment
	if parent != nil {
		siblings, err = s.repo.ListByCourse(ctx, parent.ID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sibling assessments")
		}
	}

	result := validation.ValidateAssessment(candidate, parent, siblings, s.now().UTC(), isCreate)
	if !result.OK() {
		failure := appErrors.ErrValidation
		if result.NotFound {
			failure = appErrors.ErrNotFound
		}
		return appErrors.WithFields(appErrors.Clone(failure, "assessment validation failed"), result.Errors)
	}
	return nil
}

func (s *AssessmentService) resolveCourseForRules(ctx context.Context, ownerID, courseID string) (*models.Course, error) {
	course, err := s.courses.Get(ctx, ownerID, courseID)
	if err != nil {
		appErr := appErrors.FromError(err)
		if appErr.Code == appErrors.ErrNotFound.Code {
			return nil, nil
		}
		return nil, err
	}
	return course, nil
}

func (s *AssessmentService) loadOwned(ctx context.Context, ownerID, id string) (*models.Assessment, error) {
	assessment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assessment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessment")
	}
	if _, err := s.courses.Get(ctx, ownerID, assessment.CourseID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "assessment not found")
	}
	return assessment, nil
}
