// Package migrations embeds the SQL migrations for the chat_groups and images tables.
package migrations

import "embed"

// FS holds the embedded SQL migration files.
//
//go:embed *.sql
var FS embed.FS
