package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/flowgrid/flowgrid-backend/internal/models"
)

// SQLiteRepository implements Store using the embedded SQLite database.
type SQLiteRepository struct {
	db *sqlx.DB
}

// NewSQLiteRepository creates a new SQLite repository.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sqlx.Connect("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
	}

	// In-memory databases are per-connection; a single connection keeps all
	// queries on the same database. File databases get a busy timeout so
	// concurrent writers wait instead of failing.
	if strings.Contains(dbPath, ":memory:") {
		db.SetMaxOpenConns(1)
	} else {
		if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
			return nil, fmt.Errorf("failed to set busy timeout: %w", err)
		}
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close closes the database connection.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// RunMigrations runs database migrations.
func (r *SQLiteRepository) RunMigrations(migrationSQL string) error {
	_, err := r.db.Exec(migrationSQL)
	return err
}

// UserStore implementation

// ResolveOrProvision returns the user for the given email, creating one on
// first sight. The insert carries ON CONFLICT DO NOTHING so a concurrent
// duplicate is absorbed by the unique constraint on email; the loser of the
// race re-reads and returns the row the winner created. Either a record is
// durably created or none is; there is no partial state to clean up.
func (r *SQLiteRepository) ResolveOrProvision(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	user, err := r.GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	now := time.Now().UTC()
	candidate := &models.User{
		ID:        uuid.New().String(),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `
		INSERT INTO users (id, email, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (email) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, candidate.ID, candidate.Email, candidate.CreatedAt, candidate.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to provision user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 1 {
		r.recordProvisioned(ctx, email)
		return candidate, nil
	}

	// Lost the race: the constraint rejected our insert, so the row exists now.
	user, err = r.GetUserByEmail(ctx, email)
	if err == ErrNotFound {
		return nil, fmt.Errorf("user vanished after conflicting provision: %s", email)
	}
	return user, err
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = ?`, email)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *SQLiteRepository) recordProvisioned(ctx context.Context, email string) {
	_ = r.RecordAuthEvent(ctx, &models.AuthEvent{
		Email:     email,
		EventType: models.AuthEventProvisioned,
		Path:      "",
		Timestamp: time.Now().UTC(),
	})
}

// APIKeyStore implementation

func (r *SQLiteRepository) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	if key.ID == "" {
		key.ID = uuid.New().String()
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO api_keys (id, scope_id, key_hash, name, last_used, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		key.ID,
		key.ScopeID,
		key.KeyHash,
		key.Name,
		key.LastUsed,
		key.ExpiresAt,
		key.CreatedAt,
	)
	return err
}

func (r *SQLiteRepository) ListAPIKeys(ctx context.Context) ([]*models.APIKey, error) {
	var keys []*models.APIKey
	err := r.db.SelectContext(ctx, &keys, `SELECT * FROM api_keys ORDER BY created_at DESC`)
	return keys, err
}

func (r *SQLiteRepository) UpdateAPIKeyLastUsed(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE api_keys SET last_used = ? WHERE id = ?`, time.Now().UTC(), id)
	return err
}

// AuditStore implementation

func (r *SQLiteRepository) RecordAuthEvent(ctx context.Context, event *models.AuthEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO auth_events (id, email, event_type, path, reason, ip_address, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.Email,
		event.EventType,
		event.Path,
		event.Reason,
		event.IPAddress,
		event.Timestamp,
	)
	return err
}

func (r *SQLiteRepository) ListAuthEvents(ctx context.Context, email string, limit int) ([]*models.AuthEvent, error) {
	var events []*models.AuthEvent
	query := `SELECT * FROM auth_events WHERE 1=1`
	args := []interface{}{}

	if email != "" {
		query += " AND email = ?"
		args = append(args, email)
	}
	query += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, limit)

	err := r.db.SelectContext(ctx, &events, query, args...)
	return events, err
}

// FlowStore implementation

func (r *SQLiteRepository) CreateFlow(ctx context.Context, flow *models.Flow) error {
	if flow.ID == "" {
		flow.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	query := `
		INSERT INTO flows (id, user_id, name, definition, deployed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		flow.ID,
		flow.UserID,
		flow.Name,
		flow.Definition,
		flow.Deployed,
		now,
		now,
	)
	return err
}

func (r *SQLiteRepository) GetFlow(ctx context.Context, id string) (*models.Flow, error) {
	var flow models.Flow
	err := r.db.GetContext(ctx, &flow, `SELECT * FROM flows WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &flow, nil
}

func (r *SQLiteRepository) ListFlowsByUser(ctx context.Context, userID string) ([]*models.Flow, error) {
	var flows []*models.Flow
	err := r.db.SelectContext(ctx, &flows, `SELECT * FROM flows WHERE user_id = ? ORDER BY updated_at DESC`, userID)
	return flows, err
}

func (r *SQLiteRepository) UpdateFlow(ctx context.Context, flow *models.Flow) error {
	query := `
		UPDATE flows
		SET name = ?, definition = ?, deployed = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, query,
		flow.Name,
		flow.Definition,
		flow.Deployed,
		time.Now().UTC(),
		flow.ID,
	)
	return err
}

func (r *SQLiteRepository) DeleteFlow(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM flows WHERE id = ?`, id)
	return err
}
