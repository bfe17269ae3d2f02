package database

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ndlano/taxonomy-typegen/pkg/model"
)

const uniqueViolation = "23505"

const runColumns = `id, source, input_digest, api_title, api_version, openapi_version,
	schema_names, types_digest, reexport_digest, edits, changed, started_at, finished_at`

// PostgreSQL is an implementation of the Database interface using PostgreSQL.
// It is safe for concurrent use.
type PostgreSQL struct {
	pool *pgxpool.Pool
}

// NewPostgreSQL creates a new instance of the PostgreSQL database
func NewPostgreSQL(ctx context.Context, connectionURI string) (*PostgreSQL, error) {
	pool, err := pgxpool.New(ctx, connectionURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// Test the connection
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	// Run migrations on a single connection
	conn, err := pool.Acquire(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	err = NewMigrator(conn.Conn()).Migrate(ctx)
	conn.Release()
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	return &PostgreSQL{
		pool: pool,
	}, nil
}

// Record stores a finished run
func (db *PostgreSQL) Record(ctx context.Context, run *model.Run) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := validateRun(run); err != nil {
		return err
	}

	names, err := json.Marshal(nonNilNames(run.SchemaNames))
	if err != nil {
		return fmt.Errorf("failed to marshal schema names: %w", err)
	}
	edits, err := json.Marshal(nonNilEdits(run.Edits))
	if err != nil {
		return fmt.Errorf("failed to marshal edits: %w", err)
	}

	query := `INSERT INTO runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err = db.pool.Exec(ctx, query,
		run.ID, run.Source, run.InputDigest, run.APITitle, run.APIVersion, run.OpenAPIVersion,
		names, run.TypesDigest, run.ReexportDigest, edits, run.Changed, run.StartedAt, run.FinishedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// Latest returns the most recent run
func (db *PostgreSQL) Latest(ctx context.Context) (*model.Run, error) {
	runs, _, err := db.List(ctx, "", 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrNotFound
	}
	return runs[0], nil
}

// List returns runs newest first
func (db *PostgreSQL) List(ctx context.Context, cursor string, limit int) ([]*model.Run, string, error) {
	if ctx.Err() != nil {
		return nil, "", ctx.Err()
	}
	limit = normalizeLimit(limit)

	query := `SELECT ` + runColumns + ` FROM runs ORDER BY id DESC LIMIT $1`
	args := []any{limit + 1}
	if cursor != "" {
		query = `SELECT ` + runColumns + ` FROM runs WHERE id < $2 ORDER BY id DESC LIMIT $1`
		args = append(args, cursor)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var results []*model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, "", err
		}
		results = append(results, run)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("error iterating rows: %w", err)
	}

	nextCursor := ""
	if len(results) > limit {
		results = results[:limit]
		nextCursor = results[limit-1].ID
	}
	return results, nextCursor, nil
}

// GetByID retrieves a single run by its ID
func (db *PostgreSQL) GetByID(ctx context.Context, id string) (*model.Run, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	row := db.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM runs WHERE id = $1`, id)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return run, err
}

// Close closes every pooled connection
func (db *PostgreSQL) Close() error {
	db.pool.Close()
	return nil
}

func scanRun(row pgx.Row) (*model.Run, error) {
	var (
		run          model.Run
		names, edits []byte
	)
	err := row.Scan(&run.ID, &run.Source, &run.InputDigest, &run.APITitle, &run.APIVersion, &run.OpenAPIVersion,
		&names, &run.TypesDigest, &run.ReexportDigest, &edits, &run.Changed, &run.StartedAt, &run.FinishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run row: %w", err)
	}
	if err := json.Unmarshal(names, &run.SchemaNames); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema names: %w", err)
	}
	if err := json.Unmarshal(edits, &run.Edits); err != nil {
		return nil, fmt.Errorf("failed to unmarshal edits: %w", err)
	}
	if len(run.Edits) == 0 {
		run.Edits = nil
	}
	run.StartedAt = run.StartedAt.UTC()
	run.FinishedAt = run.FinishedAt.UTC()
	return &run, nil
}

func nonNilNames(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}

func nonNilEdits(edits map[string]int) map[string]int {
	if edits == nil {
		return map[string]int{}
	}
	return edits
}
