package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/study-planner-api/internal/models"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
)

type fakeTermRepo struct {
	terms   map[string]*models.Term
	created *models.Term
	updated *models.Term
	deleted []string
	listErr error
}

func newFakeTermRepo(terms ...models.Term) *fakeTermRepo {
	repo := &fakeTermRepo{terms: make(map[string]*models.Term)}
	for i := range terms {
		t := terms[i]
		repo.terms[t.ID] = &t
	}
	return repo
}

func (r *fakeTermRepo) List(ctx context.Context, filter models.TermFilter) ([]models.Term, int, error) {
	terms, err := r.ListByOwner(ctx, filter.OwnerID)
	return terms, len(terms), err
}

func (r *fakeTermRepo) ListByOwner(_ context.Context, ownerID string) ([]models.Term, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []models.Term
	for _, t := range r.terms {
		if t.OwnerID == ownerID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTermRepo) FindByID(_ context.Context, id string) (*models.Term, error) {
	t, ok := r.terms[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *t
	return &clone, nil
}

func (r *fakeTermRepo) Create(_ context.Context, term *models.Term) error {
	term.ID = "term-created"
	r.created = term
	return nil
}

func (r *fakeTermRepo) Update(_ context.Context, term *models.Term) error {
	r.updated = term
	return nil
}

func (r *fakeTermRepo) Delete(_ context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	return nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTermServiceCreate(t *testing.T) {
	repo := newFakeTermRepo()
	svc := NewTermService(repo, nil, nil)

	term, err := svc.Create(context.Background(), "owner-1", CreateTermRequest{
		Name:      "Fall 2025",
		StartDate: day(2025, 9, 1),
		EndDate:   day(2025, 12, 15),
	})
	require.NoError(t, err)
	require.NotNil(t, repo.created)
	require.Equal(t, "owner-1", term.OwnerID)
	require.Equal(t, "Fall 2025", term.Name)
}

func TestTermServiceCreateRejectsOverlap(t *testing.T) {
	existing := models.Term{
		AuditFields: models.AuditFields{ID: "term-1"},
		OwnerID:     "owner-1",
		Name:        "Fall 2025",
		StartDate:   day(2025, 9, 1),
		EndDate:     day(2025, 12, 15),
	}
	repo := newFakeTermRepo(existing)
	svc := NewTermService(repo, nil, nil)

	_, err := svc.Create(context.Background(), "owner-1", CreateTermRequest{
		Name:      "Winter 2025",
		StartDate: day(2025, 12, 15),
		EndDate:   day(2026, 3, 15),
	})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	require.Len(t, appErr.Fields, 1)
	require.Equal(t, "start_date", appErr.Fields[0].Field)
	require.Contains(t, appErr.Fields[0].Message, "Fall 2025")
	require.Nil(t, repo.created)
}

func TestTermServiceCreateIgnoresOtherOwners(t *testing.T) {
	foreign := models.Term{
		AuditFields: models.AuditFields{ID: "term-9"},
		OwnerID:     "owner-2",
		Name:        "Fall 2025",
		StartDate:   day(2025, 9, 1),
		EndDate:     day(2025, 12, 15),
	}
	repo := newFakeTermRepo(foreign)
	svc := NewTermService(repo, nil, nil)

	_, err := svc.Create(context.Background(), "owner-1", CreateTermRequest{
		Name:      "Fall 2025",
		StartDate: day(2025, 9, 1),
		EndDate:   day(2025, 12, 15),
	})
	require.NoError(t, err)
}

func TestTermServiceUpdateSkipsSelfOverlap(t *testing.T) {
	existing := models.Term{
		AuditFields: models.AuditFields{ID: "term-1"},
		OwnerID:     "owner-1",
		Name:        "Fall 2025",
		StartDate:   day(2025, 9, 1),
		EndDate:     day(2025, 12, 15),
	}
	repo := newFakeTermRepo(existing)
	svc := NewTermService(repo, nil, nil)

	updated, err := svc.Update(context.Background(), "owner-1", "term-1", UpdateTermRequest{
		Name:      "Fall 2025 (revised)",
		StartDate: day(2025, 9, 1),
		EndDate:   day(2025, 12, 20),
	})
	require.NoError(t, err)
	require.Equal(t, "Fall 2025 (revised)", updated.Name)
	require.NotNil(t, repo.updated)
}

func TestTermServiceUpdateForeignTermIsNotFound(t *testing.T) {
	foreign := models.Term{
		AuditFields: models.AuditFields{ID: "term-1"},
		OwnerID:     "owner-2",
		Name:        "Fall 2025",
		StartDate:   day(2025, 9, 1),
		EndDate:     day(2025, 12, 15),
	}
	repo := newFakeTermRepo(foreign)
	svc := NewTermService(repo, nil, nil)

	_, err := svc.Update(context.Background(), "owner-1", "term-1", UpdateTermRequest{
		Name:      "Hijack",
		StartDate: day(2025, 9, 1),
		EndDate:   day(2025, 12, 15),
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	require.Nil(t, repo.updated)
}

func TestTermServiceDelete(t *testing.T) {
	existing := models.Term{
		AuditFields: models.AuditFields{ID: "term-1"},
		OwnerID:     "owner-1",
		Name:        "Fall 2025",
		StartDate:   day(2025, 9, 1),
		EndDate:     day(2025, 12, 15),
	}
	repo := newFakeTermRepo(existing)
	svc := NewTermService(repo, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "owner-1", "term-1"))
	require.Equal(t, []string{"term-1"}, repo.deleted)
}

func TestTermServiceGetMissing(t *testing.T) {
	repo := newFakeTermRepo()
	svc := NewTermService(repo, nil, nil)

	_, err := svc.Get(context.Background(), "owner-1", "nope")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
