// Package migrations embeds the SQL schema of the reference API.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
