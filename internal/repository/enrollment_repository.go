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

// EnrollmentRepository handles persistence of student-to-section links.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Exists is the advisory duplicate pre-check for a (student, section) pair.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, sectionID string) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE student_id = $1 AND section_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, sectionID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// Create persists a new enrollment. The pair unique index turns concurrent
// duplicates into ErrAlreadyEnrolled.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO enrollments (id, student_id, section_id, created_at)
        VALUES (:id, :student_id, :section_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		if isUniqueViolation(err, constraintEnrollmentsPair) {
			return appErrors.ErrAlreadyEnrolled
		}
		if isForeignKeyViolation(err) {
			return appErrors.ErrForeignKey
		}
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Roster returns the students enrolled in a section.
func (r *EnrollmentRepository) Roster(ctx context.Context, sectionID string) ([]models.RosterEntry, error) {
	const query = `SELECT s.id AS student_id, s.first_name, s.last_name
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        WHERE e.section_id = $1
        ORDER BY s.last_name ASC, s.first_name ASC`
	var roster []models.RosterEntry
	if err := r.db.SelectContext(ctx, &roster, query, sectionID); err != nil {
		return nil, fmt.Errorf("section roster: %w", err)
	}
	return roster, nil
}

// SectionsForStudent returns the sections a student is enrolled in. The
// student id must come from the authenticated session, never from client
// input.
func (r *EnrollmentRepository) SectionsForStudent(ctx context.Context, studentID string) ([]models.StudentSection, error) {
	const query = `SELECT c.id AS section_id, sub.name AS subject_name, c.group_label, c.timeslot,
        t.first_name || ' ' || t.last_name AS teacher_name
        FROM enrollments e
        JOIN sections c ON c.id = e.section_id
        JOIN teachers t ON t.id = c.teacher_id
        JOIN subjects sub ON sub.id = t.subject_id
        WHERE e.student_id = $1
        ORDER BY c.timeslot ASC`
	var sections []models.StudentSection
	if err := r.db.SelectContext(ctx, &sections, query, studentID); err != nil {
		return nil, fmt.Errorf("student sections: %w", err)
	}
	return sections, nil
}
