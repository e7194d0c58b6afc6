package models

import "time"

// APIKey is a directly-supplied bearer credential. It is the weaker alternative
// to the forwarded-identity header: consulted only when no X-Forwarded-Email is
// present on a protected path.
type APIKey struct {
	ID        string     `json:"id" db:"id"`
	ScopeID   string     `json:"scope_id" db:"scope_id"` // opaque scope attached on successful validation
	KeyHash   string     `json:"-" db:"key_hash"`        // bcrypt; never expose hash in JSON
	Name      string     `json:"name" db:"name"`
	LastUsed  *time.Time `json:"last_used,omitempty" db:"last_used"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// IsExpired returns true if the API key has expired.
func (k *APIKey) IsExpired() bool {
	if k.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*k.ExpiresAt)
}
