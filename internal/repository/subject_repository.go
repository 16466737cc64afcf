package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classtrack/classtrack-api/internal/models"
)

// SubjectRepository manages persistence for subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs a SubjectRepository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns all subjects ordered by name.
func (r *SubjectRepository) List(ctx context.Context) ([]models.Subject, error) {
	const query = `SELECT id, name, description, created_at FROM subjects ORDER BY name ASC`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// Exists checks presence of a subject id.
func (r *SubjectRepository) Exists(ctx context.Context, id string) (bool, error) {
	const query = `SELECT 1 FROM subjects WHERE id = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check subject: %w", err)
	}
	return true, nil
}

// Create inserts a new subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO subjects (id, name, description, created_at)
        VALUES (:id, :name, :description, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Delete removes a subject and cascades transitively through teachers,
// their sections and the enrollments/attendance of those sections, all in
// one transaction.
func (r *SubjectRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete subject: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	const sectionsOfSubject = `SELECT s.id FROM sections s JOIN teachers t ON t.id = s.teacher_id WHERE t.subject_id = $1`

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM attendance WHERE section_id IN (%s)`, sectionsOfSubject), id); err != nil {
		return fmt.Errorf("delete subject attendance: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM enrollments WHERE section_id IN (%s)`, sectionsOfSubject), id); err != nil {
		return fmt.Errorf("delete subject enrollments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sections WHERE teacher_id IN (SELECT id FROM teachers WHERE subject_id = $1)`, id); err != nil {
		return fmt.Errorf("delete subject sections: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM teachers WHERE subject_id = $1`, id); err != nil {
		return fmt.Errorf("delete subject teachers: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete subject result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete subject: %w", err)
	}
	committed = true
	return nil
}
