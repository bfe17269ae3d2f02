package service_test

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ndlano/taxonomy-typegen/internal/config"
	"github.com/ndlano/taxonomy-typegen/internal/database"
	"github.com/ndlano/taxonomy-typegen/internal/openapi"
	"github.com/ndlano/taxonomy-typegen/internal/service"
	"github.com/ndlano/taxonomy-typegen/internal/transform"
	"github.com/ndlano/taxonomy-typegen/internal/tsgen"
	"github.com/ndlano/taxonomy-typegen/pkg/model"
)

const taxonomyDocument = `{
  "openapi": "3.0.1",
  "info": {"title": "Taxonomy API", "version": "1.2.0"},
  "paths": {},
  "components": {
    "schemas": {
      "Node": {
        "type": "object",
        "required": ["id"],
        "properties": {
          "id": {"type": "string"},
          "qualityEvaluation": {
            "oneOf": [{"$ref": "#/components/schemas/Grade"}],
            "$ref": "#/components/schemas/Grade"
          }
        }
      },
      "Grade": {"type": "integer", "enum": [1, 2, 3]},
      "Metadata": {
        "type": "object",
        "additionalProperties": {"type": "string"},
        "properties": {"empty": {"type": "boolean"}}
      },
      "Upload": {"type": "string", "format": "binary", "nullable": true}
    }
  }
}`

func writeInput(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "taxonomy-api.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testConfig(t *testing.T, content string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Input = writeInput(t, dir, content)
	cfg.TypesOutput = filepath.Join(dir, "taxonomy-api-openapi.ts")
	cfg.ReexportOutput = filepath.Join(dir, "taxonomy-api.ts")
	return cfg
}

func TestGenerate_WritesBothModules(t *testing.T) {
	cfg := testConfig(t, taxonomyDocument)
	svc, err := service.NewGeneratorService(cfg, database.NewMemoryDB(), nil)
	require.NoError(t, err)

	result, err := svc.Generate(context.Background())
	require.NoError(t, err)

	types, err := os.ReadFile(cfg.TypesOutput)
	require.NoError(t, err)
	assert.Contains(t, string(types), "export type components = {")
	assert.Contains(t, string(types), "Upload: Blob | null;")
	assert.Contains(t, string(types), `qualityEvaluation?: components["schemas"]["Grade"] | null;`)
	assert.Contains(t, string(types), "Metadata: {\n            [key: string]: string;\n        };")

	reexport, err := os.ReadFile(cfg.ReexportOutput)
	require.NoError(t, err)
	var aliases []string
	for _, line := range strings.Split(string(reexport), "\n") {
		if strings.HasPrefix(line, "export type ") {
			aliases = append(aliases, line)
		}
	}
	assert.Equal(t, []string{
		`export type Node = components["schemas"]["Node"];`,
		`export type Grade = components["schemas"]["Grade"];`,
		`export type Metadata = components["schemas"]["Metadata"];`,
		`export type Upload = components["schemas"]["Upload"];`,
	}, aliases)

	run := result.Run
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "Taxonomy API", run.APITitle)
	assert.Equal(t, "1.2.0", run.APIVersion)
	assert.Equal(t, "3.0.1", run.OpenAPIVersion)
	assert.Equal(t, []string{"Node", "Grade", "Metadata", "Upload"}, run.SchemaNames)
	assert.Equal(t, map[string]int{
		transform.RuleStripEmptyMarker: 1,
		transform.RuleNullableRef:      1,
		transform.RuleBinaryFormat:     1,
	}, run.Edits)
	assert.True(t, run.Changed)
	assert.True(t, result.Recorded)
	assert.True(t, result.Diff.Empty())

	artifact, err := svc.Artifact(service.ArtifactTypes)
	require.NoError(t, err)
	assert.Equal(t, types, artifact)
	artifact, err = svc.Artifact(service.ArtifactReexport)
	require.NoError(t, err)
	assert.Equal(t, reexport, artifact)

	_, err = os.Stat(cfg.TypesOutput + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file should be renamed away")
}

// captureLog redirects the standard logger for the duration of the test
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	flags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	})
	return &buf
}

func TestGenerate_LogsProgressBeforeReadAndWrites(t *testing.T) {
	cfg := testConfig(t, taxonomyDocument)
	svc, err := service.NewGeneratorService(cfg, nil, nil)
	require.NoError(t, err)

	buf := captureLog(t)
	_, err = svc.Generate(context.Background())
	require.NoError(t, err)

	var progress []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "Reading ") || strings.HasPrefix(line, "Writing ") {
			progress = append(progress, line)
		}
	}
	assert.Equal(t, []string{
		"Reading " + cfg.Input,
		"Writing " + cfg.TypesOutput,
		"Writing " + cfg.ReexportOutput,
	}, progress)
}

func TestGenerate_ReadFailureLogsNoWrite(t *testing.T) {
	cfg := testConfig(t, taxonomyDocument)
	cfg.Input = filepath.Join(t.TempDir(), "missing.json")
	svc, err := service.NewGeneratorService(cfg, nil, nil)
	require.NoError(t, err)

	buf := captureLog(t)
	_, err = svc.Generate(context.Background())
	require.ErrorIs(t, err, openapi.ErrRead)
	assert.Contains(t, buf.String(), "Reading "+cfg.Input)
	assert.NotContains(t, buf.String(), "Writing ")
}

func TestGenerate_UnchangedInputIsDeterministic(t *testing.T) {
	cfg := testConfig(t, taxonomyDocument)
	svc, err := service.NewGeneratorService(cfg, database.NewMemoryDB(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := svc.Generate(ctx)
	require.NoError(t, err)
	types1, err := os.ReadFile(cfg.TypesOutput)
	require.NoError(t, err)
	reexport1, err := os.ReadFile(cfg.ReexportOutput)
	require.NoError(t, err)

	second, err := svc.Generate(ctx)
	require.NoError(t, err)
	types2, err := os.ReadFile(cfg.TypesOutput)
	require.NoError(t, err)
	reexport2, err := os.ReadFile(cfg.ReexportOutput)
	require.NoError(t, err)

	assert.Equal(t, types1, types2)
	assert.Equal(t, reexport1, reexport2)
	assert.Equal(t, first.Run.TypesDigest, second.Run.TypesDigest)
	assert.NotEqual(t, first.Run.ID, second.Run.ID)
	assert.False(t, second.Run.Changed)
	assert.True(t, second.Diff.Empty())

	runs, next, err := svc.List(ctx, "", 10)
	require.NoError(t, err)
	assert.Empty(t, next)
	require.Len(t, runs, 2)
	assert.Equal(t, second.Run.ID, runs[0].ID)
}

func TestGenerate_ComparesWithPreviousRun(t *testing.T) {
	cfg := testConfig(t, taxonomyDocument)
	svc, err := service.NewGeneratorService(cfg, database.NewMemoryDB(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Generate(ctx)
	require.NoError(t, err)

	next := strings.Replace(taxonomyDocument, `"version": "1.2.0"`, `"version": "1.1.0"`, 1)
	next = strings.Replace(next, `"Upload": {"type": "string", "format": "binary", "nullable": true}`,
		`"File": {"type": "string", "format": "binary"}`, 1)
	require.NoError(t, os.WriteFile(cfg.Input, []byte(next), 0o600))

	result, err := svc.Generate(ctx)
	require.NoError(t, err)
	assert.True(t, result.Run.Changed)
	assert.Equal(t, model.SchemaDiff{Added: []string{"File"}, Removed: []string{"Upload"}}, result.Diff)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "from 1.2.0 to 1.1.0")

	types, err := os.ReadFile(cfg.TypesOutput)
	require.NoError(t, err)
	assert.Contains(t, string(types), "File: Blob;")
}

func TestGenerate_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		prepare func(t *testing.T, cfg *config.Config)
		wantErr error
	}{
		{
			name: "missing input",
			prepare: func(t *testing.T, cfg *config.Config) {
				require.NoError(t, os.Remove(cfg.Input))
			},
			wantErr: openapi.ErrRead,
		},
		{
			name: "invalid JSON",
			prepare: func(t *testing.T, cfg *config.Config) {
				require.NoError(t, os.WriteFile(cfg.Input, []byte(`{"openapi": "3.0.1",`), 0o600))
			},
			wantErr: openapi.ErrParse,
		},
		{
			name: "unresolved reference",
			prepare: func(t *testing.T, cfg *config.Config) {
				doc := strings.Replace(taxonomyDocument, `"type": "integer", "enum": [1, 2, 3]`,
					`"$ref": "#/components/schemas/Missing"`, 1)
				require.NoError(t, os.WriteFile(cfg.Input, []byte(doc), 0o600))
			},
			wantErr: tsgen.ErrGenerate,
		},
		{
			name: "output path is a directory",
			prepare: func(t *testing.T, cfg *config.Config) {
				require.NoError(t, os.MkdirAll(cfg.TypesOutput, 0o755))
			},
			wantErr: service.ErrWrite,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig(t, taxonomyDocument)
			tc.prepare(t, cfg)

			db := database.NewMemoryDB()
			svc, err := service.NewGeneratorService(cfg, db, nil)
			require.NoError(t, err)

			result, err := svc.Generate(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
			assert.Nil(t, result)

			_, err = os.Stat(cfg.ReexportOutput)
			assert.True(t, os.IsNotExist(err), "re-export module must not be written")

			_, err = db.Latest(context.Background())
			assert.ErrorIs(t, err, database.ErrNotFound)
		})
	}
}

func TestGenerate_ValidateBeforeGenerate(t *testing.T) {
	doc := strings.Replace(taxonomyDocument, `"type": "integer", "enum": [1, 2, 3]`,
		`"$ref": "#/components/schemas/Missing"`, 1)
	cfg := testConfig(t, doc)
	cfg.Validate = true

	svc, err := service.NewGeneratorService(cfg, nil, nil)
	require.NoError(t, err)

	_, err = svc.Generate(context.Background())
	assert.ErrorIs(t, err, openapi.ErrInvalidSchema)
}

func TestGenerate_StoreFailureDoesNotFailRun(t *testing.T) {
	cfg := testConfig(t, taxonomyDocument)
	db := new(MockDatabase)
	db.On("Latest", mock.Anything).Return(nil, errors.New("connection reset"))
	db.On("Record", mock.Anything, mock.AnythingOfType("*model.Run")).Return(errors.New("connection reset"))

	svc, err := service.NewGeneratorService(cfg, db, nil)
	require.NoError(t, err)

	result, err := svc.Generate(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Recorded)
	assert.True(t, result.Run.Changed)
	db.AssertExpectations(t)
}

func TestGenerate_WithoutHistory(t *testing.T) {
	cfg := testConfig(t, taxonomyDocument)
	svc, err := service.NewGeneratorService(cfg, nil, nil)
	require.NoError(t, err)
	ctx := context.Background()

	result, err := svc.Generate(ctx)
	require.NoError(t, err)
	assert.False(t, result.Recorded)

	_, _, err = svc.List(ctx, "", 10)
	assert.ErrorIs(t, err, service.ErrHistoryDisabled)
	_, err = svc.GetByID(ctx, result.Run.ID)
	assert.ErrorIs(t, err, service.ErrHistoryDisabled)
}

func TestNewGeneratorService_UnknownRule(t *testing.T) {
	cfg := config.Default()
	cfg.Rules = []string{"strip-empty-marker", "uppercase-everything"}

	_, err := service.NewGeneratorService(cfg, nil, nil)
	assert.ErrorIs(t, err, transform.ErrUnknownRule)
}

func TestArtifact(t *testing.T) {
	cfg := testConfig(t, taxonomyDocument)
	svc, err := service.NewGeneratorService(cfg, nil, nil)
	require.NoError(t, err)

	_, err = svc.Artifact(service.ArtifactTypes)
	assert.ErrorIs(t, err, service.ErrNoArtifact)

	_, err = svc.Artifact("schema")
	assert.ErrorIs(t, err, service.ErrUnknownArtifact)
}

func TestValidate(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		cfg := testConfig(t, taxonomyDocument)
		svc, err := service.NewGeneratorService(cfg, nil, nil)
		require.NoError(t, err)

		report, err := svc.Validate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 4, report.Schemas)
		assert.Empty(t, report.Failures)

		_, err = os.Stat(cfg.TypesOutput)
		assert.True(t, os.IsNotExist(err), "validate must not write outputs")
	})

	t.Run("dangling reference", func(t *testing.T) {
		doc := strings.Replace(taxonomyDocument, `"type": "integer", "enum": [1, 2, 3]`,
			`"$ref": "#/components/schemas/Missing"`, 1)
		cfg := testConfig(t, doc)
		svc, err := service.NewGeneratorService(cfg, nil, nil)
		require.NoError(t, err)

		report, err := svc.Validate(context.Background())
		assert.ErrorIs(t, err, openapi.ErrInvalidSchema)
		require.NotNil(t, report)
		require.NotEmpty(t, report.Failures)
		names := make([]string, 0, len(report.Failures))
		for _, f := range report.Failures {
			names = append(names, f.Name)
		}
		assert.Contains(t, names, "Grade")
	})
}

func TestSourceDocument(t *testing.T) {
	cfg := testConfig(t, taxonomyDocument)
	svc, err := service.NewGeneratorService(cfg, nil, nil)
	require.NoError(t, err)

	data, err := svc.SourceDocument(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"title": "Taxonomy API"`)
}
