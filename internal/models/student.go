package models

import "time"

// Student represents a learner. The id is the externally assigned
// enrollment number, not a generated surrogate.
type Student struct {
	ID        string    `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates search parameters for listing students.
type StudentFilter struct {
	Search   string
	Page     int
	PageSize int
}
