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

type subjectRepository interface {
	List(ctx context.Context) ([]models.Subject, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id string) error
}

// CreateSubjectRequest is the payload for adding a subject.
type CreateSubjectRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// SubjectService handles subject catalogue workflows.
type SubjectService struct {
	repo      subjectRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService creates an instance of SubjectService.
func NewSubjectService(repo subjectRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SubjectService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns all subjects.
func (s *SubjectService) List(ctx context.Context) ([]models.Subject, error) {
	subjects, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, nil
}

// Create adds a new subject.
func (s *SubjectService) Create(ctx context.Context, req CreateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	subject := &models.Subject{Name: req.Name, Description: req.Description}
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}
	return subject, nil
}

// Delete removes a subject cascading transitively through its teachers,
// their sections and everything those sections reference.
func (s *SubjectService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject")
	}
	if s.cache != nil {
		s.cache.InvalidatePattern(ctx, "roster:*")
	}
	s.logger.Info("subject deleted", zap.String("subject_id", id))
	return nil
}
