// Package validate provides input validation for API body parameters.
package validate

import "strings"

// FlowNameMaxLen is the maximum allowed length for a flow name.
const FlowNameMaxLen = 128

// DefinitionMaxBytes is the maximum accepted flow definition size (512KB).
const DefinitionMaxBytes = 512 * 1024

// FlowName validates a user-supplied flow name: printable, no control
// characters, 1–FlowNameMaxLen runes.
func FlowName(name string) bool {
	if name == "" || len(name) > FlowNameMaxLen {
		return false
	}
	if strings.TrimSpace(name) == "" {
		return false
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}

// Definition validates a flow definition document: non-empty, size-capped,
// and shaped like a JSON object or array. Full schema validation belongs to
// the editor, not the backend.
func Definition(def string) bool {
	if def == "" || len(def) > DefinitionMaxBytes {
		return false
	}
	trimmed := strings.TrimSpace(def)
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}
