package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
)

// Initialize prepares the store at path: it creates the parent directory,
// applies migrations and opens the database. It is idempotent and is meant
// to be called once at process start; failures should abort startup.
func Initialize(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	if err := RunMigrations(path); err != nil {
		return nil, err
	}
	db, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return db, nil
}
