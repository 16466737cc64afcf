package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/classtrack/classtrack-api/internal/models"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

type mockTeacherRepo struct {
	teachers  []models.TeacherDetail
	exists    bool
	created   *models.Teacher
	deleteErr error
	deletedID string
}

func (m *mockTeacherRepo) List(ctx context.Context) ([]models.TeacherDetail, error) {
	return m.teachers, nil
}

func (m *mockTeacherRepo) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if !m.exists {
		return nil, sql.ErrNoRows
	}
	return &models.Teacher{ID: id}, nil
}

func (m *mockTeacherRepo) Exists(ctx context.Context, id string) (bool, error) {
	return m.exists, nil
}

func (m *mockTeacherRepo) Create(ctx context.Context, teacher *models.Teacher) error {
	teacher.ID = "t1"
	m.created = teacher
	return nil
}

func (m *mockTeacherRepo) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedID = id
	return nil
}

func TestTeacherCreate(t *testing.T) {
	repo := &mockTeacherRepo{}
	svc := NewTeacherService(repo, &mockExistsRepo{exists: true}, nil, validator.New(), zap.NewNop())

	teacher, err := svc.Create(context.Background(), CreateTeacherRequest{FirstName: "Maria", LastName: "Garcia", SubjectID: "sub1"})
	require.NoError(t, err)
	assert.Equal(t, "t1", teacher.ID)
	assert.Equal(t, "sub1", repo.created.SubjectID)
}

func TestTeacherCreateUnknownSubject(t *testing.T) {
	repo := &mockTeacherRepo{}
	svc := NewTeacherService(repo, &mockExistsRepo{exists: false}, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateTeacherRequest{FirstName: "Maria", LastName: "Garcia", SubjectID: "ghost"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForeignKey.Code, appErr.Code)
	assert.Nil(t, repo.created)
}

func TestTeacherDeleteNotFound(t *testing.T) {
	svc := NewTeacherService(&mockTeacherRepo{deleteErr: sql.ErrNoRows}, &mockExistsRepo{}, nil, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "missing")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestTeacherDelete(t *testing.T) {
	repo := &mockTeacherRepo{}
	svc := NewTeacherService(repo, &mockExistsRepo{}, nil, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", repo.deletedID)
}
