// Package migrations embeds the goose SQL migrations for the OCR and translation caches.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
