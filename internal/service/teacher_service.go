package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classtrack/classtrack-api/internal/models"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

type teacherRepository interface {
	List(ctx context.Context) ([]models.TeacherDetail, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Delete(ctx context.Context, id string) error
}

type teacherSubjectRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// CreateTeacherRequest is the payload for adding a teacher.
type CreateTeacherRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	SubjectID string `json:"subject_id" validate:"required"`
}

// TeacherService handles teacher roster workflows.
type TeacherService struct {
	repo      teacherRepository
	subjects  teacherSubjectRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService creates an instance of TeacherService.
func NewTeacherService(repo teacherRepository, subjects teacherSubjectRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TeacherService{repo: repo, subjects: subjects, cache: cache, validator: validate, logger: logger}
}

// List returns all teachers with subject context.
func (s *TeacherService) List(ctx context.Context) ([]models.TeacherDetail, error) {
	teachers, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, nil
}

// Create adds a teacher after confirming the referenced subject exists.
func (s *TeacherService) Create(ctx context.Context, req CreateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}

	exists, err := s.subjects.Exists(ctx, req.SubjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrForeignKey, "subject does not exist")
	}

	teacher := &models.Teacher{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		SubjectID: req.SubjectID,
	}
	if err := s.repo.Create(ctx, teacher); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}
	return teacher, nil
}

// Delete removes a teacher cascading through its sections and their
// enrollments and attendance.
func (s *TeacherService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete teacher")
	}
	if s.cache != nil {
		s.cache.InvalidatePattern(ctx, "roster:*")
	}
	s.logger.Info("teacher deleted", zap.String("teacher_id", id))
	return nil
}
