package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classtrack/classtrack-api/internal/models"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

func TestListSections(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "teacher_id", "group_label", "timeslot", "created_at", "teacher_name", "subject_name"}).
		AddRow("c1", "t1", "A", "07:00-07:50", now, "Maria Garcia", "Mathematics").
		AddRow("c2", "t1", "B", "07:50-08:40", now, "Maria Garcia", "Mathematics")
	mock.ExpectQuery("SELECT c.id, c.teacher_id, c.group_label").WillReturnRows(rows)

	sections, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "Maria Garcia", sections[0].TeacherName)
	assert.Equal(t, "Mathematics", sections[1].SubjectName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasConflict(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM sections WHERE teacher_id = $1 AND group_label = $2 AND timeslot = $3 LIMIT 1")).
		WithArgs("t1", "A", "07:00-07:50").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	conflict, err := repo.HasConflict(context.Background(), "t1", "A", "07:00-07:50")
	require.NoError(t, err)
	assert.True(t, conflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasConflictNone(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM sections WHERE teacher_id = $1 AND group_label = $2 AND timeslot = $3 LIMIT 1")).
		WithArgs("t1", "B", "07:50-08:40").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	conflict, err := repo.HasConflict(context.Background(), "t1", "B", "07:50-08:40")
	require.NoError(t, err)
	assert.False(t, conflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSectionConcurrentConflict(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectExec("INSERT INTO sections").
		WillReturnError(&pq.Error{Code: "23505", Constraint: constraintSectionsTriple})

	err := repo.Create(context.Background(), &models.Section{TeacherID: "t1", GroupLabel: "A", Timeslot: "07:00-07:50"})
	assert.ErrorIs(t, err, appErrors.ErrScheduleConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSectionCascade(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM attendance WHERE section_id = $1")).
		WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM enrollments WHERE section_id = $1")).
		WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sections WHERE id = $1")).
		WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), "c1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSectionMissingRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM attendance WHERE section_id = $1")).
		WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM enrollments WHERE section_id = $1")).
		WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sections WHERE id = $1")).
		WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
