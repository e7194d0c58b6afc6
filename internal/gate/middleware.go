package gate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/flowgrid/flowgrid-backend/internal/auth"
	"github.com/flowgrid/flowgrid-backend/internal/models"
	"github.com/flowgrid/flowgrid-backend/internal/pkg/metrics"
)

// AuditRecorder persists auth events. Writes are best-effort: a failed audit
// insert never changes a decision.
type AuditRecorder interface {
	RecordAuthEvent(ctx context.Context, event *models.AuthEvent) error
}

// Middleware runs the pipeline in front of downstream routing. On allow the
// request proceeds with the identity (if any) attached to its context; on
// deny it is terminated with the decision's status and a JSON error body.
func (g *Gate) Middleware(log *slog.Logger, audit AuditRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := g.Authorize(r.Context(), r.URL.Path, r.Header)
			metrics.GateDecisionsTotal.WithLabelValues(d.Outcome).Inc()

			if !d.Allow {
				if log != nil {
					log.Warn("request denied",
						"outcome", d.Outcome,
						"status", d.Status,
						"path", r.URL.Path,
					)
				}
				if audit != nil {
					recordDeny(audit, r, d)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(d.Status)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": d.Message})
				return
			}

			if d.Identity != nil {
				ctx := auth.WithIdentity(r.Context(), d.Identity)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func recordDeny(audit AuditRecorder, r *http.Request, d Decision) {
	email, _ := ExtractForwardedEmail(r.Header)
	event := &models.AuthEvent{
		Email:     email,
		EventType: models.AuthEventDenied,
		Path:      r.URL.Path,
		Reason:    d.Message,
		IPAddress: clientIP(r),
		Timestamp: time.Now().UTC(),
	}
	if d.Outcome == OutcomeDenyStore {
		event.EventType = models.AuthEventResolveFailed
	}

	// Detached context: the audit write must survive the (likely cancelled)
	// request context and must not delay the response.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = audit.RecordAuthEvent(ctx, event)
	}()
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
