package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/study-planner-api/internal/models"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
)

func ptr(v float64) *float64 { return &v }

func sampleSnapshot() models.Snapshot {
	term := models.Term{
		AuditFields: models.AuditFields{ID: "term-1"},
		OwnerID:     "owner-1",
		Name:        "Fall 2025",
		StartDate:   day(2025, 9, 1),
		EndDate:     day(2025, 12, 15),
	}
	course := models.Course{
		AuditFields:  models.AuditFields{ID: "course-1"},
		TermID:       "term-1",
		CourseNumber: "CS101",
		Title:        "Intro to Computer Science",
		CreditHours:  3,
		StartDate:    day(2025, 9, 1),
		EndDate:      day(2025, 12, 15),
		Status:       models.CourseStatusInProgress,
	}
	return models.Snapshot{
		Terms:         []models.Term{term},
		CoursesByTerm: map[string][]models.Course{"term-1": {course}},
		AssessmentsByCourse: map[string][]models.Assessment{
			"course-1": {
				{
					AuditFields: models.AuditFields{ID: "a-1"},
					CourseID:    "course-1",
					Name:        "Quiz 1",
					Type:        models.AssessmentTypeQuiz,
					DueDate:     day(2025, 9, 5),
					Status:      models.AssessmentStatusCompleted,
					Score:       ptr(90),
					MaxPoints:   100,
				},
				{
					AuditFields: models.AuditFields{ID: "a-2"},
					CourseID:    "course-1",
					Name:        "Midterm Exam",
					Type:        models.AssessmentTypeExam,
					DueDate:     day(2025, 10, 15),
					Status:      models.AssessmentStatusNotStarted,
					MaxPoints:   100,
				},
				{
					AuditFields: models.AuditFields{ID: "a-3"},
					CourseID:    "course-1",
					Name:        "Essay",
					Type:        models.AssessmentTypeAssignment,
					DueDate:     day(2025, 9, 8),
					Status:      models.AssessmentStatusNotStarted,
					MaxPoints:   100,
				},
			},
		},
	}
}

func TestComputeProgress(t *testing.T) {
	now := day(2025, 10, 10)
	stats := ComputeProgress(sampleSnapshot(), now, 7*24*time.Hour)

	require.Equal(t, 1, stats.TotalTerms)
	require.Equal(t, 1, stats.TotalCourses)
	require.Equal(t, 3, stats.TotalAssessments)
	require.Equal(t, 1, stats.CompletedAssessments)
	require.Equal(t, 1, stats.OverdueAssessments)
	require.Equal(t, 1, stats.UpcomingAssessments)
	require.InDelta(t, 33.3, stats.CompletionRate, 0.001)
	require.InDelta(t, 90.0, stats.AverageScore, 0.001)
}

func TestComputeProgressEmptySnapshot(t *testing.T) {
	stats := ComputeProgress(models.Snapshot{}, day(2025, 10, 10), 7*24*time.Hour)

	require.Zero(t, stats.TotalAssessments)
	require.Zero(t, stats.CompletionRate)
	require.Zero(t, stats.AverageScore)
	require.Empty(t, stats.ByType)
	require.Empty(t, stats.ByStatus)
}

func TestComputeProgressIdempotent(t *testing.T) {
	snapshot := sampleSnapshot()
	now := day(2025, 10, 10)

	first := ComputeProgress(snapshot, now, 7*24*time.Hour)
	second := ComputeProgress(snapshot, now, 7*24*time.Hour)
	require.Equal(t, first, second)
}

func TestComputeProgressGroupsSorted(t *testing.T) {
	stats := ComputeProgress(sampleSnapshot(), day(2025, 10, 10), 7*24*time.Hour)

	require.Len(t, stats.ByType, 3)
	for i := 1; i < len(stats.ByType); i++ {
		require.Less(t, string(stats.ByType[i-1].Type), string(stats.ByType[i].Type))
	}
	require.Len(t, stats.ByStatus, 2)
}

func TestComputeProgressUpcomingUsesWholeDays(t *testing.T) {
	snapshot := sampleSnapshot()
	snapshot.AssessmentsByCourse["course-1"] = append(snapshot.AssessmentsByCourse["course-1"], models.Assessment{
		AuditFields: models.AuditFields{ID: "a-4"},
		CourseID:    "course-1",
		Name:        "Lab Checkoff",
		Type:        models.AssessmentTypeAssignment,
		DueDate:     day(2025, 10, 10).Add(6 * time.Hour),
		Status:      models.AssessmentStatusNotStarted,
		MaxPoints:   100,
	})

	// Due earlier today by clock time: zero whole days out, still upcoming.
	stats := ComputeProgress(snapshot, day(2025, 10, 10).Add(12*time.Hour), 7*24*time.Hour)
	require.Equal(t, 2, stats.UpcomingAssessments)
}

func TestRoundRateHalfAwayFromZero(t *testing.T) {
	require.Equal(t, 66.7, roundRate(2.0/3.0*100))
	require.Equal(t, 33.3, roundRate(1.0/3.0*100))
	require.Equal(t, 62.5, roundRate(5.0/8.0*100))
	require.Equal(t, 0.0, roundRate(0))
	require.Equal(t, 100.0, roundRate(100))
}

func TestRenderTermReport(t *testing.T) {
	snapshot := sampleSnapshot()
	lines := RenderTermReport(snapshot.Terms[0], snapshot, day(2025, 10, 10))

	require.Equal(t, "TERM REPORT", lines[0])
	require.Contains(t, lines, "Term:\tFall 2025")
	require.Contains(t, lines, "Dates:\t2025-09-01 - 2025-12-15")
	require.Contains(t, lines, "Number\tTitle\tStatus\tStart\tEnd\tCredits\tCompletion")
	require.Contains(t, lines, "CS101\tIntro to Computer Science\tIN_PROGRESS\t2025-09-01\t2025-12-15\t3\t33.3%")
	require.Contains(t, lines, "Course\tName\tType\tStatus\tDue\tScore")
	require.Contains(t, lines, "CS101\tQuiz 1\tQUIZ\tCOMPLETED\t2025-09-05\t90/100")
	require.Contains(t, lines, "CS101\tMidterm Exam\tEXAM\tNOT_STARTED\t2025-10-15\t-")
}

func TestRenderTermReportEmptyTerm(t *testing.T) {
	term := models.Term{
		AuditFields: models.AuditFields{ID: "term-2"},
		OwnerID:     "owner-1",
		Name:        "Spring 2026",
		StartDate:   day(2026, 1, 5),
		EndDate:     day(2026, 5, 1),
	}
	snapshot := models.Snapshot{
		Terms:               []models.Term{term},
		CoursesByTerm:       map[string][]models.Course{},
		AssessmentsByCourse: map[string][]models.Assessment{},
	}

	lines := RenderTermReport(term, snapshot, day(2025, 12, 1))
	joined := strings.Join(lines, "\n")
	require.Contains(t, joined, "COURSES\nNumber\tTitle\tStatus\tStart\tEnd\tCredits\tCompletion\n")
	require.Equal(t, "Course\tName\tType\tStatus\tDue\tScore", lines[len(lines)-1])
}

func TestRenderTermReportSortsAssessmentsByDueDate(t *testing.T) {
	snapshot := sampleSnapshot()
	lines := RenderTermReport(snapshot.Terms[0], snapshot, day(2025, 10, 10))
	joined := strings.Join(lines, "\n")

	quiz := strings.Index(joined, "Quiz 1")
	essay := strings.Index(joined, "Essay")
	midterm := strings.Index(joined, "Midterm Exam")
	require.Less(t, quiz, essay)
	require.Less(t, essay, midterm)
}

func TestRenderProgressReport(t *testing.T) {
	lines := RenderProgressReport(sampleSnapshot(), day(2025, 10, 10), 7*24*time.Hour)

	require.Equal(t, "PROGRESS REPORT", lines[0])
	require.Contains(t, lines, "Completion rate:\t33.3%")
	require.Contains(t, lines, "Upcoming (7 days):\t1")
	require.Contains(t, lines, "Term\tDates\tCourses\tAssessments\tCompleted\tCompletion")
	require.Contains(t, lines, "Fall 2025\t2025-09-01 - 2025-12-15\t1\t3\t1\t33.3%")
}

func TestRenderAssessmentsReport(t *testing.T) {
	lines := RenderAssessmentsReport(sampleSnapshot(), day(2025, 10, 10), 7*24*time.Hour)

	require.Equal(t, "ASSESSMENTS REPORT", lines[0])
	require.Contains(t, lines, "Type\tCount\tCompleted")
	require.Contains(t, lines, "QUIZ\t1\t1")
	require.Contains(t, lines, "Status\tCount")
	require.Contains(t, lines, "NOT_STARTED\t2")
}

type fakeReportTerms struct {
	terms   []models.Term
	findErr error
}

func (f *fakeReportTerms) ListByOwner(_ context.Context, ownerID string) ([]models.Term, error) {
	var out []models.Term
	for _, t := range f.terms {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeReportTerms) FindByID(_ context.Context, id string) (*models.Term, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for i := range f.terms {
		if f.terms[i].ID == id {
			clone := f.terms[i]
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

type fakeReportCourses struct {
	byTerm map[string][]models.Course
}

func (f *fakeReportCourses) ListByTerm(_ context.Context, termID string) ([]models.Course, error) {
	return f.byTerm[termID], nil
}

type fakeReportAssessments struct {
	byCourse map[string][]models.Assessment
}

func (f *fakeReportAssessments) ListByCourse(_ context.Context, courseID string) ([]models.Assessment, error) {
	return f.byCourse[courseID], nil
}

func newReportFixture() *ReportService {
	snapshot := sampleSnapshot()
	svc := NewReportService(
		&fakeReportTerms{terms: snapshot.Terms},
		&fakeReportCourses{byTerm: snapshot.CoursesByTerm},
		&fakeReportAssessments{byCourse: snapshot.AssessmentsByCourse},
		nil,
		ReportServiceConfig{},
		nil,
	)
	svc.now = func() time.Time { return day(2025, 10, 10) }
	return svc
}

func TestReportServiceOwnerProgress(t *testing.T) {
	svc := newReportFixture()

	stats, fromCache, err := svc.OwnerProgress(context.Background(), "owner-1")
	require.NoError(t, err)
	require.False(t, fromCache)
	require.Equal(t, 3, stats.TotalAssessments)
	require.InDelta(t, 33.3, stats.CompletionRate, 0.001)
}

func TestReportServiceBuildTermSnapshotForeignOwner(t *testing.T) {
	svc := newReportFixture()

	_, err := svc.BuildTermSnapshot(context.Background(), "owner-2", "term-1")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestReportServiceBuildTermSnapshotMissingTerm(t *testing.T) {
	svc := newReportFixture()

	_, err := svc.BuildTermSnapshot(context.Background(), "owner-1", "term-missing")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestReportServiceBuildTermSnapshotRepoFailure(t *testing.T) {
	snapshot := sampleSnapshot()
	svc := NewReportService(
		&fakeReportTerms{terms: snapshot.Terms, findErr: errors.New("connection reset")},
		&fakeReportCourses{byTerm: snapshot.CoursesByTerm},
		&fakeReportAssessments{byCourse: snapshot.AssessmentsByCourse},
		nil,
		ReportServiceConfig{},
		nil,
	)

	_, err := svc.BuildTermSnapshot(context.Background(), "owner-1", "term-1")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestReportServiceTermReport(t *testing.T) {
	svc := newReportFixture()

	lines, err := svc.TermReport(context.Background(), "owner-1", "term-1")
	require.NoError(t, err)
	require.Equal(t, "TERM REPORT", lines[0])
}

func TestCourseProgressRows(t *testing.T) {
	rows := CourseProgressRows(sampleSnapshot())

	require.Len(t, rows, 1)
	require.Equal(t, "CS101", rows[0].Course.CourseNumber)
	require.Equal(t, 3, rows[0].TotalAssessments)
	require.Equal(t, 1, rows[0].CompletedCount)
	require.InDelta(t, 33.3, rows[0].CompletionPercent, 0.001)
}
