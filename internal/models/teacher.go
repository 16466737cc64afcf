package models

import "time"

// Teacher represents an instructor bound to a single subject.
type Teacher struct {
	ID        string    `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TeacherDetail enriches Teacher with the subject name.
type TeacherDetail struct {
	Teacher
	SubjectName string `db:"subject_name" json:"subject_name"`
}
