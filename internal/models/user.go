package models

import "time"

// UserRole represents the two access roles in the system.
type UserRole string

const (
	RoleTeacher UserRole = "TEACHER"
	RoleStudent UserRole = "STUDENT"
)

// Valid reports whether the role is one of the known values.
func (r UserRole) Valid() bool {
	return r == RoleTeacher || r == RoleStudent
}

// User represents an application account stored in the users table.
// Exactly one of StudentID/TeacherID is set, selected by Role.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	StudentID    *string   `db:"student_id" json:"student_id,omitempty"`
	TeacherID    *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
