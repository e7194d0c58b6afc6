// Package auth holds the request-scoped identity and the credential
// capabilities the gate may consult: bearer-key validation and the
// platform license check.
package auth

import "context"

// Identity source kinds.
const (
	SourceForwardedHeader = "forwarded-header"
	SourceAPIKey          = "api-key"
)

// Identity is the ephemeral authorization context attached to a request after
// an allow decision. The organization/workspace/role fields are synthesized
// empty: the gate resolves who the caller is, not what they may touch.
type Identity struct {
	UserID         string   `json:"user_id,omitempty"`
	Email          string   `json:"email,omitempty"`
	Source         string   `json:"source"`
	HeaderAsserted bool     `json:"header_asserted"`
	ScopeID        string   `json:"scope_id,omitempty"` // set for api-key identities only
	OrganizationID string   `json:"organization_id,omitempty"`
	WorkspaceID    string   `json:"workspace_id,omitempty"`
	Role           string   `json:"role,omitempty"`
	Permissions    []string `json:"permissions,omitempty"`
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a context carrying the given identity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity from the context, or nil. A nil
// identity means the request passed the gate anonymously (out-of-scope or
// whitelisted path).
func IdentityFromContext(ctx context.Context) *Identity {
	v := ctx.Value(identityKey)
	if v == nil {
		return nil
	}
	id, _ := v.(*Identity)
	return id
}
