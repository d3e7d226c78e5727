// Package migrations holds the journal schema, compiled into the binary.
package migrations

import (
	"embed"

	"github.com/nerrad567/earpanel-core/internal/infrastructure/database"
)

//go:embed *.sql
var files embed.FS

// Source returns the embedded journal migrations.
func Source() database.Source {
	return database.Source{FS: files}
}
