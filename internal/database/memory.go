package database

import (
	"context"
	"slices"
	"sync"

	"github.com/ndlano/taxonomy-typegen/pkg/model"
)

// MemoryDB is an in-memory implementation of the Database interface
type MemoryDB struct {
	runs map[string]*model.Run
	mu   sync.RWMutex
}

// NewMemoryDB creates a new instance of the in-memory database
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		runs: make(map[string]*model.Run),
	}
}

// Record stores a copy of run
func (db *MemoryDB) Record(ctx context.Context, run *model.Run) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := validateRun(run); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.runs[run.ID]; exists {
		return ErrAlreadyExists
	}
	db.runs[run.ID] = copyRun(run)
	return nil
}

// Latest returns the run with the greatest ID
func (db *MemoryDB) Latest(ctx context.Context) (*model.Run, error) {
	runs, _, err := db.List(ctx, "", 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrNotFound
	}
	return runs[0], nil
}

// List returns runs ordered by ID, newest first
func (db *MemoryDB) List(ctx context.Context, cursor string, limit int) ([]*model.Run, string, error) {
	if ctx.Err() != nil {
		return nil, "", ctx.Err()
	}
	limit = normalizeLimit(limit)

	db.mu.RLock()
	defer db.mu.RUnlock()

	ids := make([]string, 0, len(db.runs))
	for id := range db.runs {
		if cursor == "" || id < cursor {
			ids = append(ids, id)
		}
	}
	// Run IDs are UUIDv7, so descending ID order is newest first
	slices.Sort(ids)
	slices.Reverse(ids)

	nextCursor := ""
	if len(ids) > limit {
		ids = ids[:limit]
		nextCursor = ids[limit-1]
	}

	result := make([]*model.Run, 0, len(ids))
	for _, id := range ids {
		result = append(result, copyRun(db.runs[id]))
	}
	return result, nextCursor, nil
}

// GetByID retrieves a single run by its ID
func (db *MemoryDB) GetByID(ctx context.Context, id string) (*model.Run, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	if run, exists := db.runs[id]; exists {
		return copyRun(run), nil
	}
	return nil, ErrNotFound
}

// Close closes the database connection
// For an in-memory database, this is a no-op
func (db *MemoryDB) Close() error {
	return nil
}

func copyRun(run *model.Run) *model.Run {
	c := *run
	c.SchemaNames = slices.Clone(run.SchemaNames)
	if run.Edits != nil {
		c.Edits = make(map[string]int, len(run.Edits))
		for k, v := range run.Edits {
			c.Edits[k] = v
		}
	}
	return &c
}
