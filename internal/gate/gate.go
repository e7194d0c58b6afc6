package gate

import (
	"context"
	"net/http"

	"github.com/flowgrid/flowgrid-backend/internal/auth"
	"github.com/flowgrid/flowgrid-backend/internal/models"
)

// IdentityStore resolves a forwarded email to a user record, provisioning one
// on first sight. The implementation must guarantee at most one record per
// email under concurrent first-time resolutions.
type IdentityStore interface {
	ResolveOrProvision(ctx context.Context, email string) (*models.User, error)
}

// Options carries the optional capabilities of the gate. A nil KeyValidator
// disables the bearer-token branch; a nil (or open-source) LicenseChecker
// disables the license branch.
type Options struct {
	KeyValidator auth.KeyValidator
	License      auth.LicenseChecker
}

// Gate is the authorization decision pipeline. It is stateless across
// requests; all dependencies are injected at construction so tests can
// substitute fakes without process-wide mutation.
type Gate struct {
	classifier *Classifier
	store      IdentityStore
	keys       auth.KeyValidator
	license    auth.LicenseChecker
}

// New builds a gate over the given store and whitelist prefixes.
func New(store IdentityStore, whitelist []string, opts Options) *Gate {
	return &Gate{
		classifier: NewClassifier(whitelist),
		store:      store,
		keys:       opts.KeyValidator,
		license:    opts.License,
	}
}

// Authorize classifies the path, applies credential precedence and produces a
// terminal decision. Inputs are the request path and header set; no other
// request state is consulted.
//
// The forwarded-identity header takes absolute precedence: when it is present
// on a protected path, the key validator is never invoked. The header is
// injected by a trusted upstream, so its presence is authoritative over
// weaker, directly-supplied credentials.
func (g *Gate) Authorize(ctx context.Context, path string, header http.Header) Decision {
	switch g.classifier.Classify(path) {
	case NotInScope, Whitelisted:
		return allowAnonymous()
	case CaseMismatch:
		return deny(http.StatusUnauthorized, MsgInvalidPath, OutcomeDenyPath)
	}

	if email, ok := ExtractForwardedEmail(header); ok {
		user, err := g.store.ResolveOrProvision(ctx, email)
		if err != nil {
			// Surfaced immediately, never retried inline: the store's own
			// idempotency guarantee makes a whole-request retry safe.
			return deny(http.StatusInternalServerError, MsgAuthInternal, OutcomeDenyStore)
		}
		return allowWithIdentity(&auth.Identity{
			UserID:         user.ID,
			Email:          user.Email,
			Source:         auth.SourceForwardedHeader,
			HeaderAsserted: true,
		}, OutcomeAllowIdentity)
	}

	// License check pre-empts bearer validation on non-open platforms.
	if g.license != nil && g.license.Platform() != auth.PlatformOpenSource {
		if !g.license.IsLicenseValid(ctx) {
			return deny(http.StatusUnauthorized, MsgInvalidLicense, OutcomeDenyLicense)
		}
	}

	if g.keys != nil {
		if token, ok := ExtractBearer(header); ok {
			if scopeID, valid := g.keys.Validate(ctx, token); valid {
				return allowWithIdentity(&auth.Identity{
					Source:  auth.SourceAPIKey,
					ScopeID: scopeID,
				}, OutcomeAllowKey)
			}
			return deny(http.StatusUnauthorized, MsgInvalidKey, OutcomeDenyKey)
		}
	}

	return deny(http.StatusUnauthorized, MsgMissingEmail, OutcomeDenyCredential)
}
