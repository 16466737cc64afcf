package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classtrack/classtrack-api/internal/models"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

// TeacherRepository manages persistence for teacher records.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns all teachers with their subject names.
func (r *TeacherRepository) List(ctx context.Context) ([]models.TeacherDetail, error) {
	const query = `SELECT t.id, t.first_name, t.last_name, t.subject_id, t.created_at, s.name AS subject_name
        FROM teachers t
        JOIN subjects s ON s.id = t.subject_id
        ORDER BY t.last_name ASC, t.first_name ASC`
	var teachers []models.TeacherDetail
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// FindByID returns a teacher by identifier.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	const query = `SELECT id, first_name, last_name, subject_id, created_at FROM teachers WHERE id = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// Exists checks presence of a teacher id.
func (r *TeacherRepository) Exists(ctx context.Context, id string) (bool, error) {
	const query = `SELECT 1 FROM teachers WHERE id = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check teacher: %w", err)
	}
	return true, nil
}

// Create inserts a new teacher. The subject reference is validated by the
// service first; the FK constraint remains the backstop.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	if teacher.CreatedAt.IsZero() {
		teacher.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO teachers (id, first_name, last_name, subject_id, created_at)
        VALUES (:id, :first_name, :last_name, :subject_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		if isForeignKeyViolation(err) {
			return appErrors.ErrForeignKey
		}
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

// Delete removes a teacher and cascades through its sections and their
// enrollments/attendance inside one transaction.
func (r *TeacherRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete teacher: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM attendance WHERE section_id IN (SELECT id FROM sections WHERE teacher_id = $1)`, id); err != nil {
		return fmt.Errorf("delete teacher attendance: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM enrollments WHERE section_id IN (SELECT id FROM sections WHERE teacher_id = $1)`, id); err != nil {
		return fmt.Errorf("delete teacher enrollments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sections WHERE teacher_id = $1`, id); err != nil {
		return fmt.Errorf("delete teacher sections: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM teachers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete teacher: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete teacher result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete teacher: %w", err)
	}
	committed = true
	return nil
}
