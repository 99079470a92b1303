// Package migrations embeds the SQL migration files so the migrate binary
// can run them without shipping loose files alongside the container image.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
