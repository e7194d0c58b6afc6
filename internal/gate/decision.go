package gate

import "github.com/flowgrid/flowgrid-backend/internal/auth"

// Deny messages are machine-stable contract strings: integration tests and
// clients match on the exact text, not just the status code.
const (
	MsgInvalidPath    = "Unauthorized Access - Invalid Path Structure"
	MsgMissingEmail   = "Unauthorized: X-Forwarded-Email header is required"
	MsgInvalidLicense = "Invalid License"
	MsgInvalidKey     = "Invalid or expired API key"
	MsgAuthInternal   = "Internal Server Error during authentication"
)

// Outcome labels for metrics and logs. Each terminal transition of the
// pipeline has its own label so logically different failures stay
// distinguishable even when they share a status code.
const (
	OutcomeAllowAnonymous = "allow_anonymous"
	OutcomeAllowIdentity  = "allow_identity"
	OutcomeAllowKey       = "allow_key"
	OutcomeDenyPath       = "deny_path"
	OutcomeDenyLicense    = "deny_license"
	OutcomeDenyKey        = "deny_key"
	OutcomeDenyCredential = "deny_credential"
	OutcomeDenyStore      = "deny_store"
)

// Decision is the terminal output of the pipeline: allow (with or without an
// identity) or deny with a stable reason and status.
type Decision struct {
	Allow    bool
	Identity *auth.Identity // nil on anonymous allow; never set on deny
	Status   int            // deny only
	Message  string         // deny only
	Outcome  string
}

func allowAnonymous() Decision {
	return Decision{Allow: true, Outcome: OutcomeAllowAnonymous}
}

func allowWithIdentity(id *auth.Identity, outcome string) Decision {
	return Decision{Allow: true, Identity: id, Outcome: outcome}
}

func deny(status int, message, outcome string) Decision {
	return Decision{Status: status, Message: message, Outcome: outcome}
}
