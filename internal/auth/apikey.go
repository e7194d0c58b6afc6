package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/flowgrid/flowgrid-backend/internal/models"
	"github.com/flowgrid/flowgrid-backend/internal/pkg/metrics"
)

const bcryptCost = 12

// KeyValidator validates a directly-supplied bearer credential. It is an
// optional capability: the gate consults it only on protected paths where no
// forwarded-identity header is present.
type KeyValidator interface {
	// Validate returns the scope bound to the token and true, or "" and false
	// when the token is unknown, expired or malformed.
	Validate(ctx context.Context, token string) (scopeID string, ok bool)
}

// APIKeyStore is the slice of the persistence layer the validator needs.
type APIKeyStore interface {
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id string) error
}

// APIKeyValidator checks bearer tokens against bcrypt-hashed keys in storage.
// Successful matches are cached (keyed by a digest of the plaintext, never the
// plaintext itself) so the bcrypt cost is paid once per key, not per request.
type APIKeyValidator struct {
	store APIKeyStore
	cache *lru.Cache[string, string] // sha256(token) -> scope ID
}

// NewAPIKeyValidator returns a validator backed by the given store.
func NewAPIKeyValidator(store APIKeyStore) (*APIKeyValidator, error) {
	cache, err := lru.New[string, string](1024)
	if err != nil {
		return nil, fmt.Errorf("failed to create key cache: %w", err)
	}
	return &APIKeyValidator{store: store, cache: cache}, nil
}

func (v *APIKeyValidator) Validate(ctx context.Context, token string) (string, bool) {
	digest := tokenDigest(token)
	if scope, ok := v.cache.Get(digest); ok {
		metrics.APIKeyValidationsTotal.WithLabelValues("success").Inc()
		return scope, true
	}

	keys, err := v.store.ListAPIKeys(ctx)
	if err != nil {
		metrics.APIKeyValidationsTotal.WithLabelValues("error").Inc()
		return "", false
	}
	for _, k := range keys {
		if k.IsExpired() {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(k.KeyHash), []byte(token)) == nil {
			v.cache.Add(digest, k.ScopeID)
			_ = v.store.UpdateAPIKeyLastUsed(ctx, k.ID)
			metrics.APIKeyValidationsTotal.WithLabelValues("success").Inc()
			return k.ScopeID, true
		}
	}
	metrics.APIKeyValidationsTotal.WithLabelValues("failure").Inc()
	return "", false
}

// GenerateAPIKey generates a secure random API key. Returns the plaintext key
// (to be shown once) and its bcrypt hash for storage.
func GenerateAPIKey() (plaintext string, hash string, err error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	plaintext = "fgd_" + base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(bytes)

	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash API key: %w", err)
	}
	return plaintext, string(b), nil
}

func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawStdEncoding.EncodeToString(sum[:])
}
