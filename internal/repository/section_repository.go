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

// SectionRepository manages persistence for scheduled sections.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs a SectionRepository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// List returns all sections with teacher and subject context.
func (r *SectionRepository) List(ctx context.Context) ([]models.SectionDetail, error) {
	const query = `SELECT c.id, c.teacher_id, c.group_label, c.timeslot, c.created_at,
        t.first_name || ' ' || t.last_name AS teacher_name, s.name AS subject_name
        FROM sections c
        JOIN teachers t ON t.id = c.teacher_id
        JOIN subjects s ON s.id = t.subject_id
        ORDER BY c.timeslot ASC, c.group_label ASC`
	var sections []models.SectionDetail
	if err := r.db.SelectContext(ctx, &sections, query); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

// FindByID returns a section by identifier.
func (r *SectionRepository) FindByID(ctx context.Context, id string) (*models.Section, error) {
	const query = `SELECT id, teacher_id, group_label, timeslot, created_at FROM sections WHERE id = $1`
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	return &section, nil
}

// Exists checks presence of a section id.
func (r *SectionRepository) Exists(ctx context.Context, id string) (bool, error) {
	const query = `SELECT 1 FROM sections WHERE id = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check section: %w", err)
	}
	return true, nil
}

// HasConflict is the advisory scheduling pre-check for the
// (teacher, group, timeslot) triple.
func (r *SectionRepository) HasConflict(ctx context.Context, teacherID, groupLabel, timeslot string) (bool, error) {
	const query = `SELECT 1 FROM sections WHERE teacher_id = $1 AND group_label = $2 AND timeslot = $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, teacherID, groupLabel, timeslot); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check section conflict: %w", err)
	}
	return true, nil
}

// Create inserts a new section. A concurrent insert of the same triple is
// rejected by the unique index and surfaces as ErrScheduleConflict.
func (r *SectionRepository) Create(ctx context.Context, section *models.Section) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	if section.CreatedAt.IsZero() {
		section.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO sections (id, teacher_id, group_label, timeslot, created_at)
        VALUES (:id, :teacher_id, :group_label, :timeslot, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, section); err != nil {
		if isUniqueViolation(err, constraintSectionsTriple) {
			return appErrors.ErrScheduleConflict
		}
		if isForeignKeyViolation(err) {
			return appErrors.ErrForeignKey
		}
		return fmt.Errorf("create section: %w", err)
	}
	return nil
}

// Delete removes a section together with its enrollments and attendance in
// one transaction.
func (r *SectionRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete section: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM attendance WHERE section_id = $1`, id); err != nil {
		return fmt.Errorf("delete section attendance: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM enrollments WHERE section_id = $1`, id); err != nil {
		return fmt.Errorf("delete section enrollments: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete section: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete section result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete section: %w", err)
	}
	committed = true
	return nil
}
