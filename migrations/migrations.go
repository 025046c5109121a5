// Package migrations embeds the SQL schema for both storage backends.
// internal/storage/sqlite and internal/storage/postgres each take a
// sub-filesystem rooted at their own directory and hand it to
// internal/migration.Runner.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
