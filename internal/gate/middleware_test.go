package gate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgrid/flowgrid-backend/internal/auth"
	"github.com/flowgrid/flowgrid-backend/internal/models"
)

type fakeAudit struct {
	events chan *models.AuthEvent
}

func newFakeAudit() *fakeAudit {
	return &fakeAudit{events: make(chan *models.AuthEvent, 8)}
}

func (a *fakeAudit) RecordAuthEvent(_ context.Context, event *models.AuthEvent) error {
	a.events <- event
	return nil
}

func (a *fakeAudit) wait(t *testing.T) *models.AuthEvent {
	t.Helper()
	select {
	case e := <-a.events:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("no auth event recorded")
		return nil
	}
}

func TestMiddleware_DenyWritesJSONError(t *testing.T) {
	g := New(newFakeStore(), testWhitelist, Options{})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run on deny")
	})
	h := g.Middleware(nil, nil)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/flows", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Unauthorized: X-Forwarded-Email header is required", body["error"])
}

func TestMiddleware_AllowAttachesIdentity(t *testing.T) {
	g := New(newFakeStore(), testWhitelist, Options{})

	var got *auth.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = auth.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	h := g.Middleware(nil, nil)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/flows", nil)
	req.Header.Set(ForwardedEmailHeader, "mw@example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "mw@example.com", got.Email)
}

func TestMiddleware_AnonymousAllowHasNoIdentity(t *testing.T) {
	g := New(newFakeStore(), testWhitelist, Options{})

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Nil(t, auth.IdentityFromContext(r.Context()))
	})
	h := g.Middleware(nil, nil)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/marketplaces/templates", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, called)
}

func TestMiddleware_DenyRecordsAuthEvent(t *testing.T) {
	g := New(newFakeStore(), testWhitelist, Options{})
	audit := newFakeAudit()
	h := g.Middleware(nil, audit)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/flows", nil)
	req.RemoteAddr = "203.0.113.9:4411"
	h.ServeHTTP(httptest.NewRecorder(), req)

	event := audit.wait(t)
	assert.Equal(t, models.AuthEventDenied, event.EventType)
	assert.Equal(t, "/api/v1/flows", event.Path)
	assert.Equal(t, "Unauthorized: X-Forwarded-Email header is required", event.Reason)
	assert.Equal(t, "203.0.113.9", event.IPAddress)
}
