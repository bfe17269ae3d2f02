package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"github.com/ndlano/taxonomy-typegen/pkg/model"
)

// runRow is the SQLite table layout. Timestamps are stored as Unix
// nanoseconds.
type runRow struct {
	ID             string         `gorm:"primaryKey;size:36"`
	Source         string         `gorm:"not null"`
	InputDigest    string         `gorm:"size:64;not null"`
	APITitle       string         `gorm:"column:api_title"`
	APIVersion     string         `gorm:"column:api_version"`
	OpenAPIVersion string         `gorm:"column:openapi_version"`
	SchemaNames    []string       `gorm:"serializer:json"`
	TypesDigest    string         `gorm:"size:64;not null"`
	ReexportDigest string         `gorm:"size:64;not null"`
	Edits          map[string]int `gorm:"serializer:json"`
	Changed        bool
	StartedAt      int64 `gorm:"not null"`
	FinishedAt     int64 `gorm:"not null;index"`
}

func (runRow) TableName() string { return "runs" }

func toRow(run *model.Run) runRow {
	return runRow{
		ID:             run.ID,
		Source:         run.Source,
		InputDigest:    run.InputDigest,
		APITitle:       run.APITitle,
		APIVersion:     run.APIVersion,
		OpenAPIVersion: run.OpenAPIVersion,
		SchemaNames:    run.SchemaNames,
		TypesDigest:    run.TypesDigest,
		ReexportDigest: run.ReexportDigest,
		Edits:          run.Edits,
		Changed:        run.Changed,
		StartedAt:      run.StartedAt.UnixNano(),
		FinishedAt:     run.FinishedAt.UnixNano(),
	}
}

func (r runRow) toRun() *model.Run {
	return &model.Run{
		ID:             r.ID,
		Source:         r.Source,
		InputDigest:    r.InputDigest,
		APITitle:       r.APITitle,
		APIVersion:     r.APIVersion,
		OpenAPIVersion: r.OpenAPIVersion,
		SchemaNames:    r.SchemaNames,
		TypesDigest:    r.TypesDigest,
		ReexportDigest: r.ReexportDigest,
		Edits:          r.Edits,
		Changed:        r.Changed,
		StartedAt:      time.Unix(0, r.StartedAt).UTC(),
		FinishedAt:     time.Unix(0, r.FinishedAt).UTC(),
	}
}

// SQLite is an implementation of the Database interface backed by a local
// SQLite file
type SQLite struct {
	db *gorm.DB
}

// NewSQLite opens (creating if needed) the SQLite file at path and migrates
// the runs table
func NewSQLite(path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	gdb, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path,
	}, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if err := gdb.Exec(`PRAGMA busy_timeout=5000;`).Error; err != nil {
		return nil, fmt.Errorf("failed to configure SQLite: %w", err)
	}
	if err := gdb.AutoMigrate(&runRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate SQLite database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	return &SQLite{db: gdb}, nil
}

// Record stores a finished run
func (s *SQLite) Record(ctx context.Context, run *model.Run) error {
	if err := validateRun(run); err != nil {
		return err
	}
	row := toRow(run)
	err := s.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyExists
	}
	if err != nil {
		if _, getErr := s.GetByID(ctx, run.ID); getErr == nil {
			return ErrAlreadyExists
		}
		return fmt.Errorf("%w: failed to insert run: %w", ErrDatabase, err)
	}
	return nil
}

// Latest returns the most recent run
func (s *SQLite) Latest(ctx context.Context) (*model.Run, error) {
	runs, _, err := s.List(ctx, "", 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrNotFound
	}
	return runs[0], nil
}

// List returns runs newest first
func (s *SQLite) List(ctx context.Context, cursor string, limit int) ([]*model.Run, string, error) {
	limit = normalizeLimit(limit)

	query := s.db.WithContext(ctx).Order("id DESC").Limit(limit + 1)
	if cursor != "" {
		query = query.Where("id < ?", cursor)
	}
	var rows []runRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, "", fmt.Errorf("%w: failed to list runs: %w", ErrDatabase, err)
	}

	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		nextCursor = rows[limit-1].ID
	}
	runs := make([]*model.Run, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, row.toRun())
	}
	return runs, nextCursor, nil
}

// GetByID retrieves a single run by its ID
func (s *SQLite) GetByID(ctx context.Context, id string) (*model.Run, error) {
	var row runRow
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get run: %w", ErrDatabase, err)
	}
	return row.toRun(), nil
}

// Close closes the database connection
func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
