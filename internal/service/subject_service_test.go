package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/classtrack/classtrack-api/internal/models"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

type mockSubjectRepo struct {
	subjects  []models.Subject
	exists    bool
	created   *models.Subject
	deleteErr error
	deletedID string
}

func (m *mockSubjectRepo) List(ctx context.Context) ([]models.Subject, error) {
	return m.subjects, nil
}

func (m *mockSubjectRepo) Exists(ctx context.Context, id string) (bool, error) {
	return m.exists, nil
}

func (m *mockSubjectRepo) Create(ctx context.Context, subject *models.Subject) error {
	subject.ID = "sub1"
	m.created = subject
	return nil
}

func (m *mockSubjectRepo) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedID = id
	return nil
}

func TestSubjectCreate(t *testing.T) {
	repo := &mockSubjectRepo{}
	svc := NewSubjectService(repo, nil, validator.New(), zap.NewNop())

	subject, err := svc.Create(context.Background(), CreateSubjectRequest{Name: "Mathematics"})
	require.NoError(t, err)
	assert.Equal(t, "sub1", subject.ID)
	assert.Equal(t, "Mathematics", repo.created.Name)
}

func TestSubjectCreateRequiresName(t *testing.T) {
	svc := NewSubjectService(&mockSubjectRepo{}, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateSubjectRequest{})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestSubjectDeleteInvalidatesRosters(t *testing.T) {
	repo := &mockSubjectRepo{}
	memory := newMemoryCacheRepo()
	cache := NewCacheService(memory, nil, time.Minute, zap.NewNop(), true)
	require.NoError(t, memory.Set(context.Background(), "roster:c1", []models.RosterEntry{}, time.Minute))
	svc := NewSubjectService(repo, cache, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "sub1")
	require.NoError(t, err)
	assert.Equal(t, "sub1", repo.deletedID)
	assert.Empty(t, memory.entries)
}

func TestSubjectDeleteNotFound(t *testing.T) {
	svc := NewSubjectService(&mockSubjectRepo{deleteErr: sql.ErrNoRows}, nil, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "missing")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
