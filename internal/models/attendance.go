package models

import "time"

// AttendanceStatus is the per-date mark for a student in a section.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceLate    AttendanceStatus = "LATE"
)

// Valid reports whether the status is one of the known marks.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate:
		return true
	}
	return false
}

// Attendance records one mark. Several marks per (student, section, date)
// are allowed; re-marking is kept as history.
type Attendance struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id"`
	SectionID string           `db:"section_id" json:"section_id"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// AttendanceDetail enriches Attendance with display context.
type AttendanceDetail struct {
	Attendance
	StudentName string `db:"student_name" json:"student_name"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	GroupLabel  string `db:"group_label" json:"group_label"`
}

// StudentAttendance is an attendance row as seen by the student who owns it.
type StudentAttendance struct {
	SubjectName string           `db:"subject_name" json:"subject_name"`
	GroupLabel  string           `db:"group_label" json:"group_label"`
	Date        time.Time        `db:"date" json:"date"`
	Status      AttendanceStatus `db:"status" json:"status"`
}

// AttendanceFilter narrows teacher-side attendance listings.
type AttendanceFilter struct {
	SectionID string
	StudentID string
	Date      *time.Time
	Page      int
	PageSize  int
}
