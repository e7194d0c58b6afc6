package models

import "time"

// User is the internal record behind a proxy-asserted identity. The email is
// the natural key: the first request carrying an unseen X-Forwarded-Email
// provisions the row, every later request resolves to the same one.
type User struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"` // globally unique, case-sensitive as received
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
