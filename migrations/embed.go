// Package migrations holds the embedded SQL migration files applied by the
// server's -migrate command.
package migrations

import "embed"

// FS contains every versioned migration, embedded so the server binary can
// apply them without a checkout of the repository.
//
//go:embed *.sql
var FS embed.FS
