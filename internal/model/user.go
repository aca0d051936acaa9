package model

import "github.com/google/uuid"

// User is an authenticated identity.
type User struct {
	ID      uuid.UUID `json:"id" db:"id"`
	Name    string    `json:"name" db:"name"`
	Email   string    `json:"email" db:"email"`
	IsAdmin bool      `json:"isAdmin" db:"is_admin"`
}

// UserSummary holds the display fields of a user joined into order views.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
}
