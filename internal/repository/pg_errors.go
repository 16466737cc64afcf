package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Constraint names from scripts/schema.sql. The unique indexes are the
// authoritative guard behind the application-level pre-checks.
const (
	constraintUsersUsername   = "users_username_key"
	constraintSectionsTriple  = "sections_teacher_group_timeslot_key"
	constraintEnrollmentsPair = "enrollments_student_section_key"

	pqCodeUniqueViolation     = "23505"
	pqCodeForeignKeyViolation = "23503"
)

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if string(pqErr.Code) != pqCodeUniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == pqCodeForeignKeyViolation
}
