package service

import (
	"context"
	"errors"

	"github.com/ndlano/taxonomy-typegen/internal/openapi"
	"github.com/ndlano/taxonomy-typegen/pkg/model"
)

// Service errors
var (
	ErrWrite           = errors.New("failed to write output")
	ErrNoArtifact      = errors.New("no artifact has been generated yet")
	ErrUnknownArtifact = errors.New("unknown artifact")
	ErrHistoryDisabled = errors.New("run history is disabled")
)

// Artifact names served by the preview API
const (
	ArtifactTypes    = "types"
	ArtifactReexport = "reexport"
)

// ValidationReport is the outcome of a schema compile check
type ValidationReport struct {
	Source   string                 `json:"source"`
	Schemas  int                    `json:"schemas"`
	Failures []*openapi.SchemaError `json:"-"`
}

// GeneratorService defines the interface for generation runs and their history
type GeneratorService interface {
	// Generate reads the input document, writes both TypeScript modules and
	// records the run
	Generate(ctx context.Context) (*model.RunResult, error)
	// Validate loads the input document and compiles its component schemas
	Validate(ctx context.Context) (*ValidationReport, error)
	// List returns recorded runs newest first
	List(ctx context.Context, cursor string, limit int) ([]*model.Run, string, error)
	// GetByID retrieves a single recorded run
	GetByID(ctx context.Context, id string) (*model.Run, error)
	// Artifact returns the text of the last generated module
	Artifact(name string) ([]byte, error)
	// SourceDocument returns the input document rendered as JSON
	SourceDocument(ctx context.Context) ([]byte, error)
}
