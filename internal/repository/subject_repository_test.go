package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classtrack/classtrack-api/internal/models"
)

func TestListSubjects(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "description", "created_at"}).
		AddRow("sub1", "Mathematics", "", now).
		AddRow("sub2", "Physics", "Mechanics and waves", now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, description, created_at FROM subjects ORDER BY name ASC")).
		WillReturnRows(rows)

	subjects, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, "Physics", subjects[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSubject(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectExec("INSERT INTO subjects").WillReturnResult(sqlmock.NewResult(0, 1))

	subject := &models.Subject{Name: "Chemistry"}
	err := repo.Create(context.Background(), subject)
	require.NoError(t, err)
	assert.NotEmpty(t, subject.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSubjectTransitiveCascade(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM attendance WHERE section_id IN").
		WithArgs("sub1").WillReturnResult(sqlmock.NewResult(0, 8))
	mock.ExpectExec("DELETE FROM enrollments WHERE section_id IN").
		WithArgs("sub1").WillReturnResult(sqlmock.NewResult(0, 6))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sections WHERE teacher_id IN (SELECT id FROM teachers WHERE subject_id = $1)")).
		WithArgs("sub1").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM teachers WHERE subject_id = $1")).
		WithArgs("sub1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM subjects WHERE id = $1")).
		WithArgs("sub1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), "sub1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSubjectMissingRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM attendance WHERE section_id IN").
		WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM enrollments WHERE section_id IN").
		WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM sections WHERE teacher_id IN").
		WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM teachers WHERE subject_id = $1")).
		WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM subjects WHERE id = $1")).
		WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
