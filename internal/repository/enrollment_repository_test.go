package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classtrack/classtrack-api/internal/models"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

func TestEnrollmentExists(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM enrollments WHERE student_id = $1 AND section_id = $2 LIMIT 1")).
		WithArgs("S-001", "c1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.Exists(context.Background(), "S-001", "c1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEnrollmentConcurrentDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("INSERT INTO enrollments").
		WillReturnError(&pq.Error{Code: "23505", Constraint: constraintEnrollmentsPair})

	err := repo.Create(context.Background(), &models.Enrollment{StudentID: "S-001", SectionID: "c1"})
	assert.ErrorIs(t, err, appErrors.ErrAlreadyEnrolled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEnrollmentDanglingReference(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("INSERT INTO enrollments").
		WillReturnError(&pq.Error{Code: "23503", Constraint: "enrollments_section_id_fkey"})

	err := repo.Create(context.Background(), &models.Enrollment{StudentID: "S-001", SectionID: "deleted"})
	assert.ErrorIs(t, err, appErrors.ErrForeignKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoster(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"student_id", "first_name", "last_name"}).
		AddRow("S-002", "Ana", "Lopez").
		AddRow("S-001", "Juan", "Perez")
	mock.ExpectQuery("SELECT s.id AS student_id, s.first_name, s.last_name").
		WithArgs("c1").
		WillReturnRows(rows)

	roster, err := repo.Roster(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "S-002", roster[0].StudentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionsForStudent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"section_id", "subject_name", "group_label", "timeslot", "teacher_name"}).
		AddRow("c1", "Mathematics", "A", "07:00-07:50", "Maria Garcia")
	mock.ExpectQuery("SELECT c.id AS section_id, sub.name AS subject_name").
		WithArgs("S-001").
		WillReturnRows(rows)

	sections, err := repo.SectionsForStudent(context.Background(), "S-001")
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "Mathematics", sections[0].SubjectName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
