// Package gate implements the request-authorization gate guarding the
// versioned API surface. Every request is classified, has its credentials
// extracted and resolved, and receives a terminal decision before any
// handler runs.
package gate

import "strings"

// PathClass is the classification of a request path relative to the
// versioned API surface.
type PathClass int

const (
	// NotInScope paths are outside the API prefix; the gate defers entirely
	// to downstream routing (static assets, health checks, admin UIs).
	NotInScope PathClass = iota
	// CaseMismatch paths match the API prefix only case-insensitively, e.g.
	// /API/v1/...; treated as spoof attempts and denied outright.
	CaseMismatch
	// Whitelisted paths are in scope but exempt from credential checks.
	Whitelisted
	// Protected paths require a credential.
	Protected
)

func (c PathClass) String() string {
	switch c {
	case NotInScope:
		return "not-in-scope"
	case CaseMismatch:
		return "case-mismatch"
	case Whitelisted:
		return "whitelisted"
	default:
		return "protected"
	}
}

const apiPrefix = "/api/v1/"

// Classifier classifies request paths against the API prefix and a static
// whitelist of path prefixes loaded at process start.
type Classifier struct {
	whitelist []string
}

// NewClassifier returns a classifier over the given whitelist prefixes.
func NewClassifier(whitelist []string) *Classifier {
	return &Classifier{whitelist: whitelist}
}

// Classify is a pure function from path to PathClass. The prefix match is
// strict-case: a path that only matches when case is folded is classified
// CaseMismatch so the pipeline denies it instead of letting a mangled prefix
// slip past downstream routing.
func (c *Classifier) Classify(path string) PathClass {
	if !matchesPrefixFold(path) {
		return NotInScope
	}
	if !matchesPrefix(path) {
		return CaseMismatch
	}
	for _, p := range c.whitelist {
		if strings.HasPrefix(path, p) {
			return Whitelisted
		}
	}
	return Protected
}

func matchesPrefix(path string) bool {
	return strings.HasPrefix(path, apiPrefix) || path == apiPrefix[:len(apiPrefix)-1]
}

func matchesPrefixFold(path string) bool {
	if len(path) >= len(apiPrefix) {
		return strings.EqualFold(path[:len(apiPrefix)], apiPrefix)
	}
	return strings.EqualFold(path, apiPrefix[:len(apiPrefix)-1])
}
