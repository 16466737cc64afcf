package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classtrack/classtrack-api/internal/models"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

// AttendanceRepository persists per-date attendance marks.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Create inserts one attendance mark. There is deliberately no uniqueness
// on (student, section, date); re-marks accumulate as history.
func (r *AttendanceRepository) Create(ctx context.Context, record *models.Attendance) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO attendance (id, student_id, section_id, date, status, created_at)
        VALUES (:id, :student_id, :section_id, :date, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		if isForeignKeyViolation(err) {
			return appErrors.ErrForeignKey
		}
		return fmt.Errorf("create attendance: %w", err)
	}
	return nil
}

// List returns attendance rows with display context, filtered by section,
// student and date.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, int, error) {
	base := `FROM attendance a
JOIN students st ON st.id = a.student_id
JOIN sections c ON c.id = a.section_id
JOIN teachers t ON t.id = c.teacher_id
JOIN subjects sub ON sub.id = t.subject_id`
	where := []string{"1=1"}
	var args []interface{}

	if filter.SectionID != "" {
		where = append(where, fmt.Sprintf("a.section_id = $%d", len(args)+1))
		args = append(args, filter.SectionID)
	}
	if filter.StudentID != "" {
		where = append(where, fmt.Sprintf("a.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Date != nil {
		where = append(where, fmt.Sprintf("a.date = $%d", len(args)+1))
		args = append(args, *filter.Date)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT a.id, a.student_id, a.section_id, a.date, a.status, a.created_at,
        st.first_name || ' ' || st.last_name AS student_name, sub.name AS subject_name, c.group_label
        %s WHERE %s ORDER BY a.date DESC, a.created_at DESC LIMIT $%d OFFSET $%d`, base, whereClause, len(args)+1, len(args)+2)
	listArgs := append(append([]interface{}{}, args...), size, offset)
	var rows []models.AttendanceDetail
	if err := r.db.SelectContext(ctx, &rows, query, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}
	return rows, total, nil
}

// ListForSection returns the complete attendance history of one section
// without pagination. Report exports use it so long histories are never
// cut off at a page boundary.
func (r *AttendanceRepository) ListForSection(ctx context.Context, sectionID string) ([]models.AttendanceDetail, error) {
	const query = `SELECT a.id, a.student_id, a.section_id, a.date, a.status, a.created_at,
        st.first_name || ' ' || st.last_name AS student_name, sub.name AS subject_name, c.group_label
        FROM attendance a
        JOIN students st ON st.id = a.student_id
        JOIN sections c ON c.id = a.section_id
        JOIN teachers t ON t.id = c.teacher_id
        JOIN subjects sub ON sub.id = t.subject_id
        WHERE a.section_id = $1
        ORDER BY a.date DESC, a.created_at DESC`
	var rows []models.AttendanceDetail
	if err := r.db.SelectContext(ctx, &rows, query, sectionID); err != nil {
		return nil, fmt.Errorf("section attendance: %w", err)
	}
	return rows, nil
}

// ListForStudent returns the attendance history that belongs to one
// student. The id must come from the authenticated session.
func (r *AttendanceRepository) ListForStudent(ctx context.Context, studentID string) ([]models.StudentAttendance, error) {
	const query = `SELECT sub.name AS subject_name, c.group_label, a.date, a.status
        FROM attendance a
        JOIN sections c ON c.id = a.section_id
        JOIN teachers t ON t.id = c.teacher_id
        JOIN subjects sub ON sub.id = t.subject_id
        WHERE a.student_id = $1
        ORDER BY a.date DESC`
	var rows []models.StudentAttendance
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("student attendance: %w", err)
	}
	return rows, nil
}
