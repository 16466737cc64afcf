package models

import "time"

// Section is one teacher teaching one group at one timeslot. No two
// sections may share the same (teacher, group, timeslot) triple.
type Section struct {
	ID         string    `db:"id" json:"id"`
	TeacherID  string    `db:"teacher_id" json:"teacher_id"`
	GroupLabel string    `db:"group_label" json:"group_label"`
	Timeslot   string    `db:"timeslot" json:"timeslot"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// SectionDetail enriches Section with teacher and subject names for display.
type SectionDetail struct {
	Section
	TeacherName string `db:"teacher_name" json:"teacher_name"`
	SubjectName string `db:"subject_name" json:"subject_name"`
}

// GroupLabels is the fixed set of class groups.
var GroupLabels = []string{"A", "B", "C", "D", "F"}

// Timeslots is the fixed set of daily teaching bands.
var Timeslots = []string{
	"07:00-07:50", "07:50-08:40", "08:40-09:10", "09:10-10:00",
	"10:00-10:50", "10:50-11:40", "11:40-12:30", "12:30-13:20",
	"13:20-14:10", "14:10-15:00", "15:00-15:50",
}

// ValidGroupLabel reports whether the label is one of the fixed groups.
func ValidGroupLabel(label string) bool {
	for _, g := range GroupLabels {
		if g == label {
			return true
		}
	}
	return false
}

// ValidTimeslot reports whether the band is one of the fixed timeslots.
func ValidTimeslot(slot string) bool {
	for _, t := range Timeslots {
		if t == slot {
			return true
		}
	}
	return false
}
