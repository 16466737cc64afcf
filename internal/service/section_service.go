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

type sectionRepository interface {
	List(ctx context.Context) ([]models.SectionDetail, error)
	FindByID(ctx context.Context, id string) (*models.Section, error)
	Exists(ctx context.Context, id string) (bool, error)
	HasConflict(ctx context.Context, teacherID, groupLabel, timeslot string) (bool, error)
	Create(ctx context.Context, section *models.Section) error
	Delete(ctx context.Context, id string) error
}

type sectionTeacherRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// CreateSectionRequest is the payload for scheduling a section.
type CreateSectionRequest struct {
	TeacherID  string `json:"teacher_id" validate:"required"`
	GroupLabel string `json:"group_label" validate:"required"`
	Timeslot   string `json:"timeslot" validate:"required"`
}

// SectionService handles section scheduling workflows.
type SectionService struct {
	repo      sectionRepository
	teachers  sectionTeacherRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSectionService creates an instance of SectionService.
func NewSectionService(repo sectionRepository, teachers sectionTeacherRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SectionService{repo: repo, teachers: teachers, cache: cache, validator: validate, logger: logger}
}

// List returns all sections with teacher and subject context.
func (s *SectionService) List(ctx context.Context) ([]models.SectionDetail, error) {
	sections, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}
	return sections, nil
}

// Create schedules a section. The conflict pre-check produces the friendly
// rejection; the unique index behind the repository remains authoritative
// when two identical requests race.
func (s *SectionService) Create(ctx context.Context, req CreateSectionRequest) (*models.Section, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}
	if !models.ValidGroupLabel(req.GroupLabel) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown group label")
	}
	if !models.ValidTimeslot(req.Timeslot) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown timeslot")
	}

	exists, err := s.teachers.Exists(ctx, req.TeacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrForeignKey, "teacher does not exist")
	}

	conflict, err := s.repo.HasConflict(ctx, req.TeacherID, req.GroupLabel, req.Timeslot)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check schedule conflict")
	}
	if conflict {
		return nil, appErrors.ErrScheduleConflict
	}

	section := &models.Section{
		TeacherID:  req.TeacherID,
		GroupLabel: req.GroupLabel,
		Timeslot:   req.Timeslot,
	}
	if err := s.repo.Create(ctx, section); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create section")
	}
	return section, nil
}

// Delete removes a section and its dependent rows atomically.
func (s *SectionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete section")
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, "roster:"+id)
	}
	s.logger.Info("section deleted", zap.String("section_id", id))
	return nil
}
