package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/flowgrid/flowgrid-backend/internal/models"
)

type memKeyStore struct {
	keys      []*models.APIKey
	listCalls int
	err       error
}

func (s *memKeyStore) ListAPIKeys(_ context.Context) ([]*models.APIKey, error) {
	s.listCalls++
	return s.keys, s.err
}

func (s *memKeyStore) UpdateAPIKeyLastUsed(_ context.Context, _ string) error { return nil }

// MinCost keeps test hashing fast; the validator compares against whatever
// cost the stored hash carries.
func testKey(t *testing.T, plaintext, scope string) *models.APIKey {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.APIKey{ID: "k-" + scope, ScopeID: scope, KeyHash: string(hash), Name: scope}
}

func TestAPIKeyValidator_Validate(t *testing.T) {
	store := &memKeyStore{keys: []*models.APIKey{testKey(t, "fgd_secret", "scope-1")}}
	v, err := NewAPIKeyValidator(store)
	require.NoError(t, err)

	scope, ok := v.Validate(context.Background(), "fgd_secret")
	assert.True(t, ok)
	assert.Equal(t, "scope-1", scope)

	_, ok = v.Validate(context.Background(), "fgd_wrong")
	assert.False(t, ok)
}

func TestAPIKeyValidator_CachesSuccessfulMatch(t *testing.T) {
	store := &memKeyStore{keys: []*models.APIKey{testKey(t, "fgd_cached", "scope-2")}}
	v, err := NewAPIKeyValidator(store)
	require.NoError(t, err)

	_, ok := v.Validate(context.Background(), "fgd_cached")
	require.True(t, ok)
	scope, ok := v.Validate(context.Background(), "fgd_cached")
	require.True(t, ok)
	assert.Equal(t, "scope-2", scope)
	assert.Equal(t, 1, store.listCalls)
}

func TestAPIKeyValidator_ExpiredKeyRejected(t *testing.T) {
	key := testKey(t, "fgd_old", "scope-3")
	past := time.Now().Add(-time.Hour)
	key.ExpiresAt = &past
	store := &memKeyStore{keys: []*models.APIKey{key}}
	v, err := NewAPIKeyValidator(store)
	require.NoError(t, err)

	_, ok := v.Validate(context.Background(), "fgd_old")
	assert.False(t, ok)
}

func TestAPIKeyValidator_StoreErrorFailsClosed(t *testing.T) {
	store := &memKeyStore{err: errors.New("db down")}
	v, err := NewAPIKeyValidator(store)
	require.NoError(t, err)

	_, ok := v.Validate(context.Background(), "anything")
	assert.False(t, ok)
}

func TestGenerateAPIKey(t *testing.T) {
	plaintext, hash, err := GenerateAPIKey()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(plaintext, "fgd_"))
	assert.NotEqual(t, plaintext, hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)))

	other, _, err := GenerateAPIKey()
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, other)
}
