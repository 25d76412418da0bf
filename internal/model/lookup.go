package model

import (
	"time"
)

const (
	LookupContactPerson = "contact_person"
	LookupOperator      = "operator"
)

// LookupEntry is a contact person or operator name owned by one user.
type LookupEntry struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DropdownOptions feeds the contact person and operator pickers.
type DropdownOptions struct {
	ContactPersons []string `json:"contactPersons"`
	Operators      []string `json:"operators"`
}
