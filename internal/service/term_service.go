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

type termRepository interface {
	List(ctx context.Context, filter models.TermFilter) ([]models.Term, int, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Term, error)
	FindByID(ctx context.Context, id string) (*models.Term, error)
	Create(ctx context.Context, term *models.Term) error
	Update(ctx context.Context, term *models.Term) error
	Delete(ctx context.Context, id string) error
}

// CreateTermRequest describes payload for creating terms.
type CreateTermRequest struct {
	Name        string    `json:"name" validate:"required,max=100"`
	Description string    `json:"description" validate:"max=500"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required"`
}

// UpdateTermRequest updates mutable fields on a term.
type UpdateTermRequest struct {
	Name        string    `json:"name" validate:"required,max=100"`
	Description string    `json:"description" validate:"max=500"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required"`
}

// TermService orchestrates term workflows. All writes run the consistency
// rules over the owner's eagerly loaded sibling terms first.
type TermService struct {
	repo      termRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTermService creates a new term service instance.
func NewTermService(repo termRepository, validate *validator.Validate, logger *zap.Logger) *TermService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TermService{repo: repo, validator: validate, logger: logger}
}

// WithCache attaches a cache whose progress entries are invalidated on writes.
func (s *TermService) WithCache(cache *CacheService) *TermService {
	s.cache = cache
	return s
}

// List returns an owner's terms with pagination.
func (s *TermService) List(ctx context.Context, filter models.TermFilter) ([]models.Term, *models.Pagination, error) {
	terms, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list terms")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}

	pagination := &models.Pagination{
		Page:       page,
		PageSize:   size,
		TotalCount: total,
	}
	return terms, pagination, nil
}

// Get returns a term by ID scoped to its owner.
func (s *TermService) Get(ctx context.Context, ownerID, id string) (*models.Term, error) {
	term, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return term, nil
}

// Create validates and persists a new term.
func (s *TermService) Create(ctx context.Context, ownerID string, req CreateTermRequest) (*models.Term, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid term payload")
	}

	term := &models.Term{
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}

	if err := s.runRules(ctx, ownerID, *term); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, term); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create term")
	}
	s.invalidateProgress(ctx, ownerID)
	return term, nil
}

// Update validates and persists changes to a term.
func (s *TermService) Update(ctx context.Context, ownerID, id string, req UpdateTermRequest) (*models.Term, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid term payload")
	}

	term, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	term.Name = req.Name
	term.Description = req.Description
	term.StartDate = req.StartDate
	term.EndDate = req.EndDate

	if err := s.runRules(ctx, ownerID, *term); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, term); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update term")
	}
	s.invalidateProgress(ctx, ownerID)
	return term, nil
}

// Delete removes a term with its courses and assessments.
func (s *TermService) Delete(ctx context.Context, ownerID, id string) error {
	term, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, term.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete term")
	}
	s.logger.Info("term deleted", zap.String("term_id", term.ID), zap.String("owner_id", ownerID))
	s.invalidateProgress(ctx, ownerID)
	return nil
}

func (s *TermService) invalidateProgress(ctx context.Context, ownerID string) {
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("progress:%s", ownerID)); err != nil {
		s.logger.Warn("progress cache invalidation failed", zap.String("owner_id", ownerID), zap.Error(err))
	}
}

func (s *TermService) runRules(ctx context.Context, ownerID string, candidate models.Term) error {
	siblings, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sibling terms")
	}

	result := validation.ValidateTerm(candidate, siblings)
	if !result.OK() {
		return appErrors.WithFields(appErrors.Clone(appErrors.ErrValidation, "term validation failed"), result.Errors)
	}
	return nil
}

// loadOwned resolves a term and enforces ownership; a foreign term is
// indistinguishable from a missing one.
func (s *TermService) loadOwned(ctx context.Context, ownerID, id string) (*models.Term, error) {
	term, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}
	if term.OwnerID != ownerID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
	}
	return term, nil
}
