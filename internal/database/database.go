package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/ndlano/taxonomy-typegen/pkg/model"
)

// Common database errors
var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrDatabase      = errors.New("database error")
)

// Database stores the history of generation runs
type Database interface {
	// Record stores a finished run
	Record(ctx context.Context, run *model.Run) error
	// Latest returns the most recent run, or ErrNotFound
	Latest(ctx context.Context) (*model.Run, error)
	// List returns runs newest first. cursor is the ID of the last run of
	// the previous page; the returned cursor is empty on the last page.
	List(ctx context.Context, cursor string, limit int) ([]*model.Run, string, error)
	// GetByID retrieves a single run by its ID
	GetByID(ctx context.Context, id string) (*model.Run, error)
	// Close closes the database connection
	Close() error
}

// ConnectionType represents the type of database connection
type ConnectionType string

const (
	// ConnectionTypeMemory represents an in-memory database connection
	ConnectionTypeMemory ConnectionType = "memory"
	// ConnectionTypeSQLite represents a SQLite file opened through gorm
	ConnectionTypeSQLite ConnectionType = "sqlite"
	// ConnectionTypePostgreSQL represents a PostgreSQL database connection
	ConnectionTypePostgreSQL ConnectionType = "postgresql"
)

// Open connects to the backend named by typ. url is a file path for SQLite
// and a connection URI for PostgreSQL; it is ignored for memory.
func Open(ctx context.Context, typ ConnectionType, url string) (Database, error) {
	switch typ {
	case ConnectionTypeMemory:
		return NewMemoryDB(), nil
	case ConnectionTypeSQLite:
		return NewSQLite(url)
	case ConnectionTypePostgreSQL:
		return NewPostgreSQL(ctx, url)
	default:
		return nil, fmt.Errorf("%w: unsupported database type %q", ErrInvalidInput, typ)
	}
}

func validateRun(run *model.Run) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("%w: run ID is required", ErrInvalidInput)
	}
	return nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	return limit
}
