package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/study-planner-api/internal/models"
)

const assessmentColumns = "id, course_id, name, description, type, due_date, status, score, max_points, created_at, updated_at"

// AssessmentRepository handles persistence for assessments.
type AssessmentRepository struct {
	db *sqlx.DB
}

// NewAssessmentRepository instantiates an assessment repository.
func NewAssessmentRepository(db *sqlx.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// ListByCourse returns the assessments of a course ordered by due date.
func (r *AssessmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Assessment, error) {
	query := fmt.Sprintf("SELECT %s FROM assessments WHERE course_id = $1 ORDER BY due_date ASC", assessmentColumns)
	var assessments []models.Assessment
	if err := r.db.SelectContext(ctx, &assessments, query, courseID); err != nil {
		return nil, fmt.Errorf("list assessments by course: %w", err)
	}
	return assessments, nil
}

// ListByOwner returns every assessment under an owner's courses ordered by
// due date.
func (r *AssessmentRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Assessment, error) {
	const query = `SELECT a.id, a.course_id, a.name, a.description, a.type, a.due_date, a.status, a.score, a.max_points, a.created_at, a.updated_at FROM assessments a JOIN courses c ON c.id = a.course_id JOIN terms t ON t.id = c.term_id WHERE t.owner_id = $1 ORDER BY a.due_date ASC`
	var assessments []models.Assessment
	if err := r.db.SelectContext(ctx, &assessments, query, ownerID); err != nil {
		return nil, fmt.Errorf("list assessments by owner: %w", err)
	}
	return assessments, nil
}

// FindByID loads an assessment by identifier.
func (r *AssessmentRepository) FindByID(ctx context.Context, id string) (*models.Assessment, error) {
	query := fmt.Sprintf("SELECT %s FROM assessments WHERE id = $1", assessmentColumns)
	var assessment models.Assessment
	if err := r.db.GetContext(ctx, &assessment, query, id); err != nil {
		return nil, err
	}
	return &assessment, nil
}

// Create inserts a new assessment record.
func (r *AssessmentRepository) Create(ctx context.Context, assessment *models.Assessment) error {
	if assessment.ID == "" {
		assessment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if assessment.CreatedAt.IsZero() {
		assessment.CreatedAt = now
	}
	assessment.UpdatedAt = now

	const query = `INSERT INTO assessments (id, course_id, name, description, type, due_date, status, score, max_points, created_at, updated_at) VALUES (:id, :course_id, :name, :description, :type, :due_date, :status, :score, :max_points, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assessment); err != nil {
		return fmt.Errorf("create assessment: %w", err)
	}
	return nil
}

// Update modifies an existing assessment.
func (r *AssessmentRepository) Update(ctx context.Context, assessment *models.Assessment) error {
	assessment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE assessments SET name = :name, description = :description, type = :type, due_date = :due_date, status = :status, score = :score, max_points = :max_points, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, assessment); err != nil {
		return fmt.Errorf("update assessment: %w", err)
	}
	return nil
}

// Delete removes an assessment permanently.
func (r *AssessmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM assessments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete assessment: %w", err)
	}
	return nil
}
