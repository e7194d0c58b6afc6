package gate

import (
	"net/http"
	"strings"
)

// ForwardedEmailHeader is set by a trusted upstream proxy (e.g. a reverse
// proxy enforcing SSO) asserting the authenticated end-user's email. Its
// presence on a protected path is authoritative.
const ForwardedEmailHeader = "X-Forwarded-Email"

// ExtractForwardedEmail reads the forwarded-identity header. No format or
// domain validation happens here; whether the value is a usable email is the
// identity store's problem, via its uniqueness semantics.
func ExtractForwardedEmail(h http.Header) (string, bool) {
	v := h.Get(ForwardedEmailHeader)
	if v == "" {
		return "", false
	}
	return v, true
}

// ExtractBearer reads a bearer token from the Authorization header. Returns
// the raw, unvalidated token or nothing.
func ExtractBearer(h http.Header) (string, bool) {
	s := h.Get("Authorization")
	const prefix = "Bearer "
	if len(s) > len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return strings.TrimSpace(s[len(prefix):]), true
	}
	return "", false
}
