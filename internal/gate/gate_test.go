package gate

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgrid/flowgrid-backend/internal/auth"
	"github.com/flowgrid/flowgrid-backend/internal/models"
)

// fakeIdentityStore is an in-memory resolve-or-provision with call counting.
type fakeIdentityStore struct {
	mu    sync.Mutex
	calls int
	users map[string]*models.User
	err   error
}

func newFakeStore() *fakeIdentityStore {
	return &fakeIdentityStore{users: map[string]*models.User{}}
}

func (s *fakeIdentityStore) ResolveOrProvision(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if u, ok := s.users[email]; ok {
		return u, nil
	}
	u := &models.User{ID: uuid.New().String(), Email: email}
	s.users[email] = u
	return u, nil
}

// fakeKeyValidator counts invocations so precedence can be asserted.
type fakeKeyValidator struct {
	calls int
	scope string
	ok    bool
}

func (v *fakeKeyValidator) Validate(_ context.Context, _ string) (string, bool) {
	v.calls++
	return v.scope, v.ok
}

type fakeLicense struct {
	platform auth.Platform
	valid    bool
}

func (l *fakeLicense) Platform() auth.Platform               { return l.platform }
func (l *fakeLicense) IsLicenseValid(_ context.Context) bool { return l.valid }

var testWhitelist = []string{"/api/v1/version", "/api/v1/marketplaces/"}

func headerWith(kv ...string) http.Header {
	h := http.Header{}
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}

func TestAuthorize_OutOfScopeAllowsWithoutStore(t *testing.T) {
	store := newFakeStore()
	g := New(store, testWhitelist, Options{})

	d := g.Authorize(context.Background(), "/assets/logo.png", http.Header{})
	assert.True(t, d.Allow)
	assert.Nil(t, d.Identity)
	assert.Equal(t, OutcomeAllowAnonymous, d.Outcome)
	assert.Equal(t, 0, store.calls)
}

func TestAuthorize_WhitelistedAllowsWithoutStore(t *testing.T) {
	store := newFakeStore()
	g := New(store, testWhitelist, Options{})

	d := g.Authorize(context.Background(), "/api/v1/marketplaces/templates", http.Header{})
	assert.True(t, d.Allow)
	assert.Nil(t, d.Identity)
	assert.Equal(t, 0, store.calls)
}

func TestAuthorize_CaseMismatchDenied(t *testing.T) {
	store := newFakeStore()
	g := New(store, testWhitelist, Options{})

	d := g.Authorize(context.Background(), "/API/v1/flows", headerWith(ForwardedEmailHeader, "a@example.com"))
	assert.False(t, d.Allow)
	assert.Equal(t, http.StatusUnauthorized, d.Status)
	assert.Equal(t, "Unauthorized Access - Invalid Path Structure", d.Message)
	assert.Equal(t, 0, store.calls)
}

func TestAuthorize_ForwardedEmailProvisions(t *testing.T) {
	store := newFakeStore()
	g := New(store, testWhitelist, Options{})

	d := g.Authorize(context.Background(), "/api/v1/flows", headerWith(ForwardedEmailHeader, "new.user@example.com"))
	require.True(t, d.Allow)
	require.NotNil(t, d.Identity)
	assert.Equal(t, "new.user@example.com", d.Identity.Email)
	assert.NotEmpty(t, d.Identity.UserID)
	assert.Equal(t, auth.SourceForwardedHeader, d.Identity.Source)
	assert.True(t, d.Identity.HeaderAsserted)
	assert.Equal(t, 1, store.calls)

	// Default authorization fields stay empty: the gate resolves identity,
	// not permissions.
	assert.Empty(t, d.Identity.OrganizationID)
	assert.Empty(t, d.Identity.Role)
	assert.Empty(t, d.Identity.Permissions)
}

func TestAuthorize_RepeatResolvesSameIdentity(t *testing.T) {
	store := newFakeStore()
	g := New(store, testWhitelist, Options{})
	h := headerWith(ForwardedEmailHeader, "repeat@example.com")

	first := g.Authorize(context.Background(), "/api/v1/flows", h)
	second := g.Authorize(context.Background(), "/api/v1/flows", h)
	require.True(t, first.Allow)
	require.True(t, second.Allow)
	assert.Equal(t, first.Identity.UserID, second.Identity.UserID)
	assert.Len(t, store.users, 1)
}

func TestAuthorize_MissingCredentialDenied(t *testing.T) {
	g := New(newFakeStore(), testWhitelist, Options{})

	d := g.Authorize(context.Background(), "/api/v1/flows", http.Header{})
	assert.False(t, d.Allow)
	assert.Equal(t, http.StatusUnauthorized, d.Status)
	assert.Equal(t, "Unauthorized: X-Forwarded-Email header is required", d.Message)
	assert.Nil(t, d.Identity)
}

func TestAuthorize_ForwardedEmailBeatsBearerToken(t *testing.T) {
	store := newFakeStore()
	keys := &fakeKeyValidator{scope: "scope-1", ok: true}
	g := New(store, testWhitelist, Options{KeyValidator: keys})

	h := headerWith(
		ForwardedEmailHeader, "both@example.com",
		"Authorization", "Bearer some-token",
	)
	d := g.Authorize(context.Background(), "/api/v1/flows", h)
	require.True(t, d.Allow)
	assert.Equal(t, "both@example.com", d.Identity.Email)
	assert.Equal(t, 0, keys.calls)
}

func TestAuthorize_StoreFailureIsInternalError(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("connection refused")
	g := New(store, testWhitelist, Options{})

	d := g.Authorize(context.Background(), "/api/v1/flows", headerWith(ForwardedEmailHeader, "x@example.com"))
	assert.False(t, d.Allow)
	assert.Equal(t, http.StatusInternalServerError, d.Status)
	assert.Equal(t, "Internal Server Error during authentication", d.Message)
	assert.Equal(t, OutcomeDenyStore, d.Outcome)
	assert.Nil(t, d.Identity)
	assert.Equal(t, 1, store.calls)
}

func TestAuthorize_BearerTokenValidated(t *testing.T) {
	keys := &fakeKeyValidator{scope: "scope-7", ok: true}
	g := New(newFakeStore(), testWhitelist, Options{KeyValidator: keys})

	d := g.Authorize(context.Background(), "/api/v1/flows", headerWith("Authorization", "Bearer tok"))
	require.True(t, d.Allow)
	assert.Equal(t, auth.SourceAPIKey, d.Identity.Source)
	assert.Equal(t, "scope-7", d.Identity.ScopeID)
	assert.False(t, d.Identity.HeaderAsserted)
	assert.Equal(t, 1, keys.calls)
}

func TestAuthorize_InvalidBearerTokenDenied(t *testing.T) {
	keys := &fakeKeyValidator{ok: false}
	g := New(newFakeStore(), testWhitelist, Options{KeyValidator: keys})

	d := g.Authorize(context.Background(), "/api/v1/flows", headerWith("Authorization", "Bearer bad"))
	assert.False(t, d.Allow)
	assert.Equal(t, http.StatusUnauthorized, d.Status)
	assert.Equal(t, "Invalid or expired API key", d.Message)
}

func TestAuthorize_BearerWithoutValidatorFallsThrough(t *testing.T) {
	g := New(newFakeStore(), testWhitelist, Options{})

	d := g.Authorize(context.Background(), "/api/v1/flows", headerWith("Authorization", "Bearer tok"))
	assert.False(t, d.Allow)
	assert.Equal(t, "Unauthorized: X-Forwarded-Email header is required", d.Message)
}

func TestAuthorize_InvalidLicensePreemptsBearer(t *testing.T) {
	keys := &fakeKeyValidator{scope: "scope-1", ok: true}
	lic := &fakeLicense{platform: auth.PlatformEnterprise, valid: false}
	g := New(newFakeStore(), testWhitelist, Options{KeyValidator: keys, License: lic})

	d := g.Authorize(context.Background(), "/api/v1/flows", headerWith("Authorization", "Bearer tok"))
	assert.False(t, d.Allow)
	assert.Equal(t, http.StatusUnauthorized, d.Status)
	assert.Equal(t, "Invalid License", d.Message)
	assert.Equal(t, 0, keys.calls)
}

func TestAuthorize_LicenseSkippedForForwardedEmail(t *testing.T) {
	lic := &fakeLicense{platform: auth.PlatformEnterprise, valid: false}
	g := New(newFakeStore(), testWhitelist, Options{License: lic})

	d := g.Authorize(context.Background(), "/api/v1/flows", headerWith(ForwardedEmailHeader, "u@example.com"))
	assert.True(t, d.Allow)
}

func TestAuthorize_OpenSourcePlatformSkipsLicense(t *testing.T) {
	keys := &fakeKeyValidator{scope: "s", ok: true}
	lic := &fakeLicense{platform: auth.PlatformOpenSource, valid: false}
	g := New(newFakeStore(), testWhitelist, Options{KeyValidator: keys, License: lic})

	d := g.Authorize(context.Background(), "/api/v1/flows", headerWith("Authorization", "Bearer tok"))
	assert.True(t, d.Allow)
	assert.Equal(t, 1, keys.calls)
}

func TestAuthorize_ValidLicenseProceedsToBearer(t *testing.T) {
	keys := &fakeKeyValidator{scope: "s", ok: true}
	lic := &fakeLicense{platform: auth.PlatformCloud, valid: true}
	g := New(newFakeStore(), testWhitelist, Options{KeyValidator: keys, License: lic})

	d := g.Authorize(context.Background(), "/api/v1/flows", headerWith("Authorization", "Bearer tok"))
	assert.True(t, d.Allow)
	assert.Equal(t, 1, keys.calls)
}
