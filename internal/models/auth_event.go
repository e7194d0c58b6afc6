package models

import "time"

// Gate outcomes recorded as auth events.
const (
	AuthEventAllowed       = "allowed"
	AuthEventProvisioned   = "provisioned"
	AuthEventDenied        = "denied"
	AuthEventResolveFailed = "resolve_failed"
)

// AuthEvent is one audit record per gate decision worth keeping: denies,
// first-time provisions and store failures. Best-effort; never blocks the
// decision path.
type AuthEvent struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email,omitempty" db:"email"`
	EventType string    `json:"event_type" db:"event_type"`
	Path      string    `json:"path" db:"path"`
	Reason    string    `json:"reason,omitempty" db:"reason"`
	IPAddress string    `json:"ip_address,omitempty" db:"ip_address"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}
