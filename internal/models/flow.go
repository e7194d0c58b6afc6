package models

import "time"

// Flow is a stored orchestration flow owned by a user. The definition is kept
// as an opaque JSON document; the backend only cares about ownership and
// metadata, the editor owns the schema.
type Flow struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	Name       string    `json:"name" db:"name"`
	Definition string    `json:"definition" db:"definition"` // JSON document
	Deployed   bool      `json:"deployed" db:"deployed"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// FlowTemplate is a published marketplace template. Templates are public and
// served from the whitelisted marketplace routes without authentication.
type FlowTemplate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}
