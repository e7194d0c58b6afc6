// Package migrations embeds all SQL migration files so the binary is
// self-contained and can be dropped behind any reverse proxy without a
// working directory layout to care about.
package migrations

import "embed"

// FS contains all *.sql migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
