package models

import "time"

// Enrollment links a student to a section. The pair is unique.
type Enrollment struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	SectionID string    `db:"section_id" json:"section_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RosterEntry is one student row in a section roster.
type RosterEntry struct {
	StudentID string `db:"student_id" json:"student_id"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
}

// StudentSection is a section as seen from an enrolled student.
type StudentSection struct {
	SectionID   string `db:"section_id" json:"section_id"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	GroupLabel  string `db:"group_label" json:"group_label"`
	Timeslot    string `db:"timeslot" json:"timeslot"`
	TeacherName string `db:"teacher_name" json:"teacher_name"`
}
