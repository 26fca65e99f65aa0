package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/study-planner-api/internal/models"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
)

type reportTermLister interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.Term, error)
	FindByID(ctx context.Context, id string) (*models.Term, error)
}

type reportCourseLister interface {
	ListByTerm(ctx context.Context, termID string) ([]models.Course, error)
}

type reportAssessmentLister interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Assessment, error)
}

// ReportServiceConfig tunes aggregation behaviour.
type ReportServiceConfig struct {
	// UpcomingHorizon is the window used for the "due soon" count.
	UpcomingHorizon time.Duration
	CacheTTL        time.Duration
}

// ReportService walks an owner's planner hierarchy to compute progress
// statistics and render flat text reports. Aggregation and rendering are
// pure functions over an eagerly loaded snapshot; the service only does the
// loading and caching around them.
type ReportService struct {
	terms       reportTermLister
	courses     reportCourseLister
	assessments reportAssessmentLister
	cache       *CacheService
	logger      *zap.Logger
	now         func() time.Time
	cfg         ReportServiceConfig
}

// NewReportService constructs a ReportService with sane defaults.
func NewReportService(terms reportTermLister, courses reportCourseLister, assessments reportAssessmentLister, cache *CacheService, cfg ReportServiceConfig, logger *zap.Logger) *ReportService {
	if cfg.UpcomingHorizon <= 0 {
		cfg.UpcomingHorizon = 7 * 24 * time.Hour
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		terms:       terms,
		courses:     courses,
		assessments: assessments,
		cache:       cache,
		logger:      logger,
		now:         time.Now,
		cfg:         cfg,
	}
}

// OwnerProgress computes progress statistics across everything the owner
// has, with a short-lived cache in front. The second return reports cache
// utilisation.
func (s *ReportService) OwnerProgress(ctx context.Context, ownerID string) (*models.ProgressStats, bool, error) {
	cacheKey := fmt.Sprintf("progress:%s", ownerID)
	if s.cache != nil {
		var cached models.ProgressStats
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			s.logger.Warn("progress cache read failed", zap.String("key", cacheKey), zap.Error(err))
		} else if hit {
			return &cached, true, nil
		}
	}

	snapshot, err := s.BuildOwnerSnapshot(ctx, ownerID)
	if err != nil {
		return nil, false, err
	}
	stats := ComputeProgress(snapshot, s.now().UTC(), s.cfg.UpcomingHorizon)

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, stats, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("progress cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return &stats, false, nil
}

// TermProgress computes progress statistics for a single term subtree.
func (s *ReportService) TermProgress(ctx context.Context, ownerID, termID string) (*models.ProgressStats, error) {
	snapshot, err := s.BuildTermSnapshot(ctx, ownerID, termID)
	if err != nil {
		return nil, err
	}
	stats := ComputeProgress(snapshot, s.now().UTC(), s.cfg.UpcomingHorizon)
	return &stats, nil
}

// TermReport renders the flat text report for one term.
func (s *ReportService) TermReport(ctx context.Context, ownerID, termID string) ([]string, error) {
	snapshot, err := s.BuildTermSnapshot(ctx, ownerID, termID)
	if err != nil {
		return nil, err
	}
	return RenderTermReport(snapshot.Terms[0], snapshot, s.now().UTC()), nil
}

// ProgressReport renders the owner's overall progress document.
func (s *ReportService) ProgressReport(ctx context.Context, ownerID string) ([]string, error) {
	snapshot, err := s.BuildOwnerSnapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return RenderProgressReport(snapshot, s.now().UTC(), s.cfg.UpcomingHorizon), nil
}

// AssessmentsReport renders the full assessment listing for an owner.
func (s *ReportService) AssessmentsReport(ctx context.Context, ownerID string) ([]string, error) {
	snapshot, err := s.BuildOwnerSnapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return RenderAssessmentsReport(snapshot, s.now().UTC(), s.cfg.UpcomingHorizon), nil
}

// BuildOwnerSnapshot eagerly loads the owner's full hierarchy.
func (s *ReportService) BuildOwnerSnapshot(ctx context.Context, ownerID string) (models.Snapshot, error) {
	terms, err := s.terms.ListByOwner(ctx, ownerID)
	if err != nil {
		return models.Snapshot{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load terms")
	}
	return s.fill(ctx, terms)
}

// BuildTermSnapshot eagerly loads one term's subtree, enforcing ownership.
func (s *ReportService) BuildTermSnapshot(ctx context.Context, ownerID, termID string) (models.Snapshot, error) {
	term, err := s.terms.FindByID(ctx, termID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Snapshot{}, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return models.Snapshot{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}
	if term.OwnerID != ownerID {
		return models.Snapshot{}, appErrors.Clone(appErrors.ErrNotFound, "term not found")
	}
	return s.fill(ctx, []models.Term{*term})
}

func (s *ReportService) fill(ctx context.Context, terms []models.Term) (models.Snapshot, error) {
	snapshot := models.Snapshot{
		Terms:               terms,
		CoursesByTerm:       make(map[string][]models.Course),
		AssessmentsByCourse: make(map[string][]models.Assessment),
	}
	for _, term := range terms {
		courses, err := s.courses.ListByTerm(ctx, term.ID)
		if err != nil {
			return models.Snapshot{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
		}
		snapshot.CoursesByTerm[term.ID] = courses
		for _, course := range courses {
			assessments, err := s.assessments.ListByCourse(ctx, course.ID)
			if err != nil {
				return models.Snapshot{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessments")
			}
			snapshot.AssessmentsByCourse[course.ID] = assessments
		}
	}
	return snapshot, nil
}

// ComputeProgress aggregates assessment progress over a snapshot at one
// evaluation instant. An empty snapshot yields zero values, never NaN.
func ComputeProgress(snapshot models.Snapshot, now time.Time, horizon time.Duration) models.ProgressStats {
	stats := models.ProgressStats{
		TotalTerms:   len(snapshot.Terms),
		TotalCourses: len(snapshot.Courses()),
	}

	typeGroups := make(map[models.AssessmentType]*models.AssessmentTypeGroup)
	statusGroups := make(map[models.AssessmentStatus]int)
	horizonDays := int(horizon.Hours() / 24)
	var scoreTotal float64
	var scoreCount int

	for _, a := range snapshot.Assessments() {
		stats.TotalAssessments++
		if a.Status == models.AssessmentStatusCompleted {
			stats.CompletedAssessments++
		}
		if a.IsOverdue(now) {
			stats.OverdueAssessments++
		}
		if d := a.DaysUntilDue(now); d >= 0 && d <= horizonDays {
			stats.UpcomingAssessments++
		}
		if a.Score != nil {
			scoreTotal += *a.Score
			scoreCount++
		}

		group, ok := typeGroups[a.Type]
		if !ok {
			group = &models.AssessmentTypeGroup{Type: a.Type}
			typeGroups[a.Type] = group
		}
		group.Count++
		if a.Status == models.AssessmentStatusCompleted {
			group.Completed++
		}
		statusGroups[a.Status]++
	}

	if stats.TotalAssessments > 0 {
		stats.CompletionRate = roundRate(float64(stats.CompletedAssessments) / float64(stats.TotalAssessments) * 100)
	}
	if scoreCount > 0 {
		stats.AverageScore = scoreTotal / float64(scoreCount)
	}

	for _, group := range typeGroups {
		stats.ByType = append(stats.ByType, *group)
	}
	sort.Slice(stats.ByType, func(i, j int) bool { return stats.ByType[i].Type < stats.ByType[j].Type })

	for status, count := range statusGroups {
		stats.ByStatus = append(stats.ByStatus, models.AssessmentStatusGroup{Status: status, Count: count})
	}
	sort.Slice(stats.ByStatus, func(i, j int) bool { return stats.ByStatus[i].Status < stats.ByStatus[j].Status })

	return stats
}

// CourseProgressRows derives per-course completion figures from a snapshot,
// ordered by term start then course start.
func CourseProgressRows(snapshot models.Snapshot) []models.CourseProgress {
	var rows []models.CourseProgress
	for _, course := range snapshot.Courses() {
		assessments := snapshot.AssessmentsByCourse[course.ID]
		completed := 0
		for _, a := range assessments {
			if a.Status == models.AssessmentStatusCompleted {
				completed++
			}
		}
		rows = append(rows, models.CourseProgress{
			Course:            course,
			TotalAssessments:  len(assessments),
			CompletedCount:    completed,
			CompletionPercent: course.CompletionPercent(assessments),
		})
	}
	return rows
}

// roundRate rounds to one decimal place, half away from zero.
func roundRate(v float64) float64 {
	return math.Round(v*10) / 10
}
