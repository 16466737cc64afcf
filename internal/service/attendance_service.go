package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classtrack/classtrack-api/internal/models"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

type attendanceRepository interface {
	Create(ctx context.Context, record *models.Attendance) error
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, int, error)
	ListForStudent(ctx context.Context, studentID string) ([]models.StudentAttendance, error)
}

type attendanceStudentRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type attendanceSectionRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// MarkAttendanceRequest records one per-date mark.
type MarkAttendanceRequest struct {
	StudentID string                  `json:"student_id" validate:"required"`
	SectionID string                  `json:"section_id" validate:"required"`
	Date      string                  `json:"date" validate:"required"`
	Status    models.AttendanceStatus `json:"status" validate:"required"`
}

// AttendanceService handles attendance marking and queries.
type AttendanceService struct {
	repo      attendanceRepository
	students  attendanceStudentRepository
	sections  attendanceSectionRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService creates an instance of AttendanceService.
func NewAttendanceService(repo attendanceRepository, students attendanceStudentRepository, sections attendanceSectionRepository, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AttendanceService{repo: repo, students: students, sections: sections, validator: validate, logger: logger}
}

// Mark records an attendance entry after validating the referenced student
// and section. Multiple marks per day are kept as history.
func (s *AttendanceService) Mark(ctx context.Context, req MarkAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown attendance status")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be formatted YYYY-MM-DD")
	}

	studentExists, err := s.students.Exists(ctx, req.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student")
	}
	if !studentExists {
		return nil, appErrors.Clone(appErrors.ErrForeignKey, "student does not exist")
	}

	sectionExists, err := s.sections.Exists(ctx, req.SectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check section")
	}
	if !sectionExists {
		return nil, appErrors.Clone(appErrors.ErrForeignKey, "section does not exist")
	}

	record := &models.Attendance{
		StudentID: req.StudentID,
		SectionID: req.SectionID,
		Date:      date,
		Status:    req.Status,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	return record, nil
}

// List returns attendance rows for teacher-side review.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, *models.Pagination, error) {
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	return rows, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// ListForStudent returns the caller's own attendance history. The student
// id comes from the authenticated session.
func (s *AttendanceService) ListForStudent(ctx context.Context, studentID string) ([]models.StudentAttendance, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "account is not linked to a student")
	}
	rows, err := s.repo.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	return rows, nil
}
