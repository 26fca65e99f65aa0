package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/study-planner-api/internal/models"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
)

type fakeCourseRepo struct {
	courses map[string]*models.Course
	created *models.Course
	updated *models.Course
	deleted []string
}

func newFakeCourseRepo(courses ...models.Course) *fakeCourseRepo {
	repo := &fakeCourseRepo{courses: make(map[string]*models.Course)}
	for i := range courses {
		c := courses[i]
		repo.courses[c.ID] = &c
	}
	return repo
}

func (r *fakeCourseRepo) ListByTerm(_ context.Context, termID string) ([]models.Course, error) {
	var out []models.Course
	for _, c := range r.courses {
		if c.TermID == termID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) FindByID(_ context.Context, id string) (*models.Course, error) {
	c, ok := r.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *c
	return &clone, nil
}

func (r *fakeCourseRepo) Create(_ context.Context, course *models.Course) error {
	course.ID = "course-created"
	r.created = course
	return nil
}

func (r *fakeCourseRepo) Update(_ context.Context, course *models.Course) error {
	r.updated = course
	return nil
}

func (r *fakeCourseRepo) Delete(_ context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	return nil
}

func fallTerm() models.Term {
	return models.Term{
		AuditFields: models.AuditFields{ID: "term-1"},
		OwnerID:     "owner-1",
		Name:        "Fall 2025",
		StartDate:   day(2025, 9, 1),
		EndDate:     day(2025, 12, 15),
	}
}

func validCourseRequest() CreateCourseRequest {
	return CreateCourseRequest{
		TermID:       "term-1",
		CourseNumber: "CS101",
		Title:        "Intro to Computer Science",
		CreditHours:  3,
		StartDate:    day(2025, 9, 1),
		EndDate:      day(2025, 12, 15),
		Status:       models.CourseStatusInProgress,
	}
}

func TestCourseServiceCreate(t *testing.T) {
	terms := newFakeTermRepo(fallTerm())
	repo := newFakeCourseRepo()
	svc := NewCourseService(repo, terms, nil, nil)

	course, err := svc.Create(context.Background(), "owner-1", validCourseRequest())
	require.NoError(t, err)
	require.NotNil(t, repo.created)
	require.Equal(t, "term-1", course.TermID)
}

func TestCourseServiceCreateMissingTerm(t *testing.T) {
	terms := newFakeTermRepo()
	repo := newFakeCourseRepo()
	svc := NewCourseService(repo, terms, nil, nil)

	_, err := svc.Create(context.Background(), "owner-1", validCourseRequest())
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	require.Len(t, appErr.Fields, 1)
	require.Equal(t, "term_id", appErr.Fields[0].Field)
	require.Nil(t, repo.created)
}

func TestCourseServiceCreateForeignTermLooksMissing(t *testing.T) {
	foreign := fallTerm()
	foreign.OwnerID = "owner-2"
	terms := newFakeTermRepo(foreign)
	repo := newFakeCourseRepo()
	svc := NewCourseService(repo, terms, nil, nil)

	_, err := svc.Create(context.Background(), "owner-1", validCourseRequest())
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceCreateOutsideTermWindow(t *testing.T) {
	terms := newFakeTermRepo(fallTerm())
	repo := newFakeCourseRepo()
	svc := NewCourseService(repo, terms, nil, nil)

	req := validCourseRequest()
	req.StartDate = day(2025, 8, 15)
	req.EndDate = day(2025, 11, 15)

	_, err := svc.Create(context.Background(), "owner-1", req)
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	require.Len(t, appErr.Fields, 1)
	require.Equal(t, "start_date", appErr.Fields[0].Field)
	require.Contains(t, appErr.Fields[0].Message, "Fall 2025")
}

func TestCourseServiceCreateDuplicateNumber(t *testing.T) {
	existing := models.Course{
		AuditFields:  models.AuditFields{ID: "course-1"},
		TermID:       "term-1",
		CourseNumber: "cs101",
		Title:        "Existing",
		CreditHours:  3,
		StartDate:    day(2025, 9, 1),
		EndDate:      day(2025, 12, 15),
		Status:       models.CourseStatusInProgress,
	}
	terms := newFakeTermRepo(fallTerm())
	repo := newFakeCourseRepo(existing)
	svc := NewCourseService(repo, terms, nil, nil)

	_, err := svc.Create(context.Background(), "owner-1", validCourseRequest())
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	require.Len(t, appErr.Fields, 1)
	require.Equal(t, "course_number", appErr.Fields[0].Field)
}

func TestCourseServiceUpdateKeepsOwnNumber(t *testing.T) {
	existing := models.Course{
		AuditFields:  models.AuditFields{ID: "course-1"},
		TermID:       "term-1",
		CourseNumber: "CS101",
		Title:        "Intro to Computer Science",
		CreditHours:  3,
		StartDate:    day(2025, 9, 1),
		EndDate:      day(2025, 12, 15),
		Status:       models.CourseStatusInProgress,
	}
	terms := newFakeTermRepo(fallTerm())
	repo := newFakeCourseRepo(existing)
	svc := NewCourseService(repo, terms, nil, nil)

	updated, err := svc.Update(context.Background(), "owner-1", "course-1", UpdateCourseRequest{
		CourseNumber: "CS101",
		Title:        "Intro to CS",
		CreditHours:  4,
		StartDate:    day(2025, 9, 1),
		EndDate:      day(2025, 12, 15),
		Status:       models.CourseStatusCompleted,
	})
	require.NoError(t, err)
	require.Equal(t, models.CourseStatusCompleted, updated.Status)
	require.NotNil(t, repo.updated)
}

func TestCourseServiceDeleteCascades(t *testing.T) {
	existing := models.Course{
		AuditFields: models.AuditFields{ID: "course-1"},
		TermID:      "term-1",
	}
	terms := newFakeTermRepo(fallTerm())
	repo := newFakeCourseRepo(existing)
	svc := NewCourseService(repo, terms, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "owner-1", "course-1"))
	require.Equal(t, []string{"course-1"}, repo.deleted)
}

func TestCourseServiceListByTermMissingTerm(t *testing.T) {
	terms := newFakeTermRepo()
	repo := newFakeCourseRepo()
	svc := NewCourseService(repo, terms, nil, nil)

	_, err := svc.ListByTerm(context.Background(), "owner-1", "term-1")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
