package db

import (
	"embed"
	"io/fs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrations returns the embedded SQL migrations rooted at the migrations directory.
func Migrations() (fs.FS, error) {
	return fs.Sub(migrationsFS, "migrations")
}
