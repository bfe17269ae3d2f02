package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ndlano/taxonomy-typegen/internal/config"
	"github.com/ndlano/taxonomy-typegen/internal/database"
	"github.com/ndlano/taxonomy-typegen/internal/openapi"
	"github.com/ndlano/taxonomy-typegen/internal/telemetry"
	"github.com/ndlano/taxonomy-typegen/internal/transform"
	"github.com/ndlano/taxonomy-typegen/internal/tsgen"
	"github.com/ndlano/taxonomy-typegen/pkg/model"
)

type artifacts struct {
	types    []byte
	reexport []byte
	doc      *openapi.Document
}

// generatorServiceImpl implements the GeneratorService interface
type generatorServiceImpl struct {
	cfg     *config.Config
	rules   []transform.Rule
	db      database.Database
	metrics *telemetry.Metrics

	// mu serialises runs
	mu   sync.Mutex
	last *artifacts
}

// NewGeneratorService creates a generator service. db and metrics may be nil
// to disable run history and telemetry.
//
//nolint:ireturn // Factory function intentionally returns interface for dependency injection
func NewGeneratorService(cfg *config.Config, db database.Database, metrics *telemetry.Metrics) (GeneratorService, error) {
	rules, err := transform.NewRules(cfg.Rules, cfg.NullableProperties)
	if err != nil {
		return nil, err
	}
	return &generatorServiceImpl{
		cfg:     cfg,
		rules:   rules,
		db:      db,
		metrics: metrics,
	}, nil
}

// Generate runs read, transform, emit and write, then records the run
func (s *generatorServiceImpl) Generate(ctx context.Context) (result *model.RunResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := time.Now().UTC()
	schemaCount := 0
	defer func() {
		status := telemetry.StatusSuccess
		if err != nil {
			status = telemetry.StatusFailure
		}
		s.metrics.RecordRun(ctx, status, time.Since(started).Seconds(), schemaCount)
	}()

	log.Printf("Reading %s", s.cfg.Input)
	doc, err := openapi.Load(ctx, s.cfg.Input)
	if err != nil {
		return nil, err
	}
	if s.cfg.Validate {
		if _, err := openapi.ValidateSchemas(doc); err != nil {
			return nil, err
		}
	}

	visitor := transform.NewVisitor(s.rules, s.cfg.Verbose)
	types, err := tsgen.Generate(doc, tsgen.Options{
		ExportType:         s.cfg.ExportType,
		DefaultNonNullable: s.cfg.DefaultNonNullable,
		PathParamsAsTypes:  s.cfg.PathParamsAsTypes,
		Transform:          visitor.Visit,
	})
	if err != nil {
		return nil, err
	}
	names := doc.SchemaNames()
	schemaCount = len(names)
	reexport := tsgen.Reexport(names, s.cfg.TypesImport)

	if err := writeOutput(ctx, s.cfg.TypesOutput, types); err != nil {
		return nil, err
	}
	if err := writeOutput(ctx, s.cfg.ReexportOutput, reexport); err != nil {
		return nil, err
	}
	s.last = &artifacts{types: types, reexport: reexport, doc: doc}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate run ID: %w", err)
	}
	info := doc.Info()
	run := &model.Run{
		ID:             id.String(),
		Source:         doc.Source,
		InputDigest:    doc.Digest,
		APITitle:       info.Title,
		APIVersion:     info.Version,
		OpenAPIVersion: doc.OpenAPIVersion(),
		SchemaNames:    names,
		TypesDigest:    digest(types),
		ReexportDigest: digest(reexport),
		Edits:          visitor.Edits(),
		Changed:        true,
		StartedAt:      started,
		FinishedAt:     time.Now().UTC(),
	}
	if len(run.Edits) == 0 {
		run.Edits = nil
	}

	result = &model.RunResult{Run: run}
	s.compareWithPrevious(ctx, result)
	s.record(ctx, result)
	return result, nil
}

// compareWithPrevious fills Changed, Diff and Warnings from the latest
// recorded run. Store failures are logged, never returned.
func (s *generatorServiceImpl) compareWithPrevious(ctx context.Context, result *model.RunResult) {
	if s.db == nil {
		return
	}
	run := result.Run
	previous, err := s.db.Latest(ctx)
	if errors.Is(err, database.ErrNotFound) {
		return
	}
	if err != nil {
		log.Printf("Failed to read previous run: %v", err)
		return
	}

	run.Changed = previous.InputDigest != run.InputDigest ||
		previous.TypesDigest != run.TypesDigest ||
		previous.ReexportDigest != run.ReexportDigest
	result.Diff = model.DiffSchemas(previous.SchemaNames, run.SchemaNames)
	if len(result.Diff.Added) > 0 {
		log.Printf("Added schemas: %s", strings.Join(result.Diff.Added, ", "))
	}
	if len(result.Diff.Removed) > 0 {
		log.Printf("Removed schemas: %s", strings.Join(result.Diff.Removed, ", "))
	}
	if CompareAPIVersions(previous.APIVersion, run.APIVersion) > 0 {
		warning := fmt.Sprintf("API version moved backwards from %s to %s", previous.APIVersion, run.APIVersion)
		log.Printf("Warning: %s", warning)
		result.Warnings = append(result.Warnings, warning)
	}
}

func (s *generatorServiceImpl) record(ctx context.Context, result *model.RunResult) {
	if s.db == nil {
		return
	}
	if err := s.db.Record(ctx, result.Run); err != nil {
		log.Printf("Failed to record run %s: %v", result.Run.ID, err)
		return
	}
	result.Recorded = true
}

// Validate loads the input document and compiles every component schema
func (s *generatorServiceImpl) Validate(ctx context.Context) (*ValidationReport, error) {
	log.Printf("Reading %s", s.cfg.Input)
	doc, err := openapi.Load(ctx, s.cfg.Input)
	if err != nil {
		return nil, err
	}
	failures, err := openapi.ValidateSchemas(doc)
	report := &ValidationReport{
		Source:   doc.Source,
		Schemas:  len(doc.SchemaNames()),
		Failures: failures,
	}
	return report, err
}

// List returns recorded runs newest first
func (s *generatorServiceImpl) List(ctx context.Context, cursor string, limit int) ([]*model.Run, string, error) {
	if s.db == nil {
		return nil, "", ErrHistoryDisabled
	}
	return s.db.List(ctx, cursor, limit)
}

// GetByID retrieves a single recorded run
func (s *generatorServiceImpl) GetByID(ctx context.Context, id string) (*model.Run, error) {
	if s.db == nil {
		return nil, ErrHistoryDisabled
	}
	return s.db.GetByID(ctx, id)
}

// Artifact returns the text of the last generated module
func (s *generatorServiceImpl) Artifact(name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name != ArtifactTypes && name != ArtifactReexport {
		return nil, fmt.Errorf("%w: %s", ErrUnknownArtifact, name)
	}
	if s.last == nil {
		return nil, ErrNoArtifact
	}
	if name == ArtifactTypes {
		return s.last.types, nil
	}
	return s.last.reexport, nil
}

// SourceDocument returns the input document of the last run as JSON, loading
// it from the configured input when nothing has been generated yet
func (s *generatorServiceImpl) SourceDocument(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	var doc *openapi.Document
	if s.last != nil {
		doc = s.last.doc
	}
	s.mu.Unlock()

	if doc == nil {
		var err error
		doc, err = openapi.Load(ctx, s.cfg.Input)
		if err != nil {
			return nil, err
		}
	}
	return doc.JSON()
}

// writeOutput replaces path with data through a temporary file in the same
// directory
func writeOutput(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w %s: %w", ErrWrite, path, err)
	}
	log.Printf("Writing %s", path)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w %s: %w", ErrWrite, path, err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w %s: %w", ErrWrite, path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w %s: %w", ErrWrite, path, err)
	}
	return nil
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
