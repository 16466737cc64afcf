package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classtrack/classtrack-api/internal/models"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

type enrollmentRepository interface {
	Exists(ctx context.Context, studentID, sectionID string) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Roster(ctx context.Context, sectionID string) ([]models.RosterEntry, error)
	SectionsForStudent(ctx context.Context, studentID string) ([]models.StudentSection, error)
}

type enrollmentStudentRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type enrollmentSectionRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// EnrollRequest links a student to a section.
type EnrollRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	SectionID string `json:"section_id" validate:"required"`
}

// EnrollmentService handles section membership workflows, including the
// cached section roster projection.
type EnrollmentService struct {
	repo      enrollmentRepository
	students  enrollmentStudentRepository
	sections  enrollmentSectionRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService creates an instance of EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, students enrollmentStudentRepository, sections enrollmentSectionRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EnrollmentService{repo: repo, students: students, sections: sections, cache: cache, validator: validate, logger: logger}
}

// Enroll adds a student to a section. The duplicate pre-check yields the
// friendly message; the pair unique index is the authoritative guard.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
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

	enrolled, err := s.repo.Exists(ctx, req.StudentID, req.SectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if enrolled {
		return nil, appErrors.ErrAlreadyEnrolled
	}

	enrollment := &models.Enrollment{StudentID: req.StudentID, SectionID: req.SectionID}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, "roster:"+req.SectionID)
	}
	return enrollment, nil
}

// Roster returns the students enrolled in a section, served from cache
// when possible.
func (s *EnrollmentService) Roster(ctx context.Context, sectionID string) ([]models.RosterEntry, error) {
	cacheKey := "roster:" + sectionID
	var cached []models.RosterEntry
	if s.cache != nil && s.cache.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	exists, err := s.sections.Exists(ctx, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check section")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
	}

	roster, err := s.repo.Roster(ctx, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	if s.cache != nil {
		s.cache.Set(ctx, cacheKey, roster)
	}
	return roster, nil
}

// SectionsForStudent returns the caller's own sections. The student id is
// taken from the authenticated session by the handler, never from client
// input.
func (s *EnrollmentService) SectionsForStudent(ctx context.Context, studentID string) ([]models.StudentSection, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "account is not linked to a student")
	}
	sections, err := s.repo.SectionsForStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sections")
	}
	return sections, nil
}
