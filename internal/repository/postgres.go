package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/flowgrid/flowgrid-backend/internal/models"
)

// PostgresRepository implements Store using PostgreSQL.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository.
func NewPostgresRepository(connectionString string) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection.
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// RunMigrations runs database migrations.
func (r *PostgresRepository) RunMigrations(migrationSQL string) error {
	_, err := r.db.Exec(migrationSQL)
	return err
}

// UserStore implementation

// ResolveOrProvision returns the user for the given email, creating one on
// first sight. Uniqueness is enforced by the constraint on users.email, not
// an in-process lock: multiple server processes may race the same insert, the
// constraint rejects all but one, and the losers re-read the winner's row.
func (r *PostgresRepository) ResolveOrProvision(ctx context.Context, email string) (*models.User, error) {
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
		VALUES ($1, $2, $3, $4)
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

	user, err = r.GetUserByEmail(ctx, email)
	if err == ErrNotFound {
		return nil, fmt.Errorf("user vanished after conflicting provision: %s", email)
	}
	return user, err
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = $1`, email)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresRepository) recordProvisioned(ctx context.Context, email string) {
	_ = r.RecordAuthEvent(ctx, &models.AuthEvent{
		Email:     email,
		EventType: models.AuthEventProvisioned,
		Path:      "",
		Timestamp: time.Now().UTC(),
	})
}

// APIKeyStore implementation

func (r *PostgresRepository) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	if key.ID == "" {
		key.ID = uuid.New().String()
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO api_keys (id, scope_id, key_hash, name, last_used, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
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

func (r *PostgresRepository) ListAPIKeys(ctx context.Context) ([]*models.APIKey, error) {
	var keys []*models.APIKey
	err := r.db.SelectContext(ctx, &keys, `SELECT * FROM api_keys ORDER BY created_at DESC`)
	return keys, err
}

func (r *PostgresRepository) UpdateAPIKeyLastUsed(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE api_keys SET last_used = $1 WHERE id = $2`, time.Now().UTC(), id)
	return err
}

// AuditStore implementation

func (r *PostgresRepository) RecordAuthEvent(ctx context.Context, event *models.AuthEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO auth_events (id, email, event_type, path, reason, ip_address, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
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

func (r *PostgresRepository) ListAuthEvents(ctx context.Context, email string, limit int) ([]*models.AuthEvent, error) {
	var events []*models.AuthEvent
	query := `SELECT * FROM auth_events WHERE 1=1`
	args := []interface{}{}
	paramCount := 1

	if email != "" {
		query += fmt.Sprintf(" AND email = $%d", paramCount)
		args = append(args, email)
		paramCount++
	}
	query += fmt.Sprintf(" ORDER BY timestamp DESC LIMIT $%d", paramCount)
	args = append(args, limit)

	err := r.db.SelectContext(ctx, &events, query, args...)
	return events, err
}

// FlowStore implementation

func (r *PostgresRepository) CreateFlow(ctx context.Context, flow *models.Flow) error {
	if flow.ID == "" {
		flow.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	query := `
		INSERT INTO flows (id, user_id, name, definition, deployed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
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

func (r *PostgresRepository) GetFlow(ctx context.Context, id string) (*models.Flow, error) {
	var flow models.Flow
	err := r.db.GetContext(ctx, &flow, `SELECT * FROM flows WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &flow, nil
}

func (r *PostgresRepository) ListFlowsByUser(ctx context.Context, userID string) ([]*models.Flow, error) {
	var flows []*models.Flow
	err := r.db.SelectContext(ctx, &flows, `SELECT * FROM flows WHERE user_id = $1 ORDER BY updated_at DESC`, userID)
	return flows, err
}

func (r *PostgresRepository) UpdateFlow(ctx context.Context, flow *models.Flow) error {
	query := `
		UPDATE flows
		SET name = $1, definition = $2, deployed = $3, updated_at = $4
		WHERE id = $5
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

func (r *PostgresRepository) DeleteFlow(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM flows WHERE id = $1`, id)
	return err
}
