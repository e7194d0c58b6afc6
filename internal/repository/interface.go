package repository

import (
	"context"
	"errors"

	"github.com/flowgrid/flowgrid-backend/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// UserStore owns the user table. ResolveOrProvision is the sole mutator: all
// user creation funnels through it, and it is idempotent under concurrent
// first-time resolutions of the same email.
type UserStore interface {
	ResolveOrProvision(ctx context.Context, email string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// APIKeyStore defines API key data access methods.
type APIKeyStore interface {
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id string) error
}

// AuditStore defines auth event data access methods.
type AuditStore interface {
	RecordAuthEvent(ctx context.Context, event *models.AuthEvent) error
	ListAuthEvents(ctx context.Context, email string, limit int) ([]*models.AuthEvent, error)
}

// FlowStore defines flow data access methods.
type FlowStore interface {
	CreateFlow(ctx context.Context, flow *models.Flow) error
	GetFlow(ctx context.Context, id string) (*models.Flow, error)
	ListFlowsByUser(ctx context.Context, userID string) ([]*models.Flow, error)
	UpdateFlow(ctx context.Context, flow *models.Flow) error
	DeleteFlow(ctx context.Context, id string) error
}

// Store aggregates all repositories behind one backend.
type Store interface {
	UserStore
	APIKeyStore
	AuditStore
	FlowStore
	RunMigrations(migrationSQL string) error
	Close() error
}
