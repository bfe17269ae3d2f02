package transform_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ndlano/taxonomy-typegen/internal/openapi"
	"github.com/ndlano/taxonomy-typegen/internal/transform"
	"github.com/ndlano/taxonomy-typegen/internal/tsgen"
)

const patchedDocument = `{
  "openapi": "3.0.1",
  "components": {
    "schemas": {
      "Upload": {
        "type": "object",
        "required": ["file"],
        "properties": {
          "file": {"type": "string", "format": "binary"},
          "preview": {"type": "string", "format": "binary", "nullable": true}
        }
      },
      "CustomFields": {
        "type": "object",
        "properties": {"empty": {"type": "boolean"}},
        "additionalProperties": {"type": "string"}
      },
      "Node": {
        "type": "object",
        "properties": {
          "qualityEvaluation": {
            "$ref": "#/components/schemas/QualityEvaluation",
            "oneOf": [{"$ref": "#/components/schemas/QualityEvaluation"}]
          }
        }
      },
      "QualityEvaluation": {"type": "object", "properties": {"grade": {"type": "integer"}}}
    }
  }
}`

func TestVisitor_GeneratesPatchedTypes(t *testing.T) {
	doc, err := openapi.Parse("taxonomy-api.json", []byte(patchedDocument))
	require.NoError(t, err)

	rules, err := transform.NewRules(transform.AllRules(), nil)
	require.NoError(t, err)
	visitor := transform.NewVisitor(rules, false)

	out, err := tsgen.Generate(doc, tsgen.Options{ExportType: true, Transform: visitor.Visit})
	require.NoError(t, err)
	text := string(out)

	assert.Contains(t, text, "            /** Format: binary */\n            file: Blob;\n")
	assert.Contains(t, text, "            /** Format: binary */\n            preview?: Blob | null;\n")
	assert.Contains(t, text, "        CustomFields: {\n            [key: string]: string;\n        };\n")
	assert.Contains(t, text, "            qualityEvaluation?: components[\"schemas\"][\"QualityEvaluation\"] | null;\n")
	assert.NotContains(t, text, "empty")

	assert.Equal(t, map[string]int{
		transform.RuleStripEmptyMarker: 1,
		transform.RuleNullableRef:      1,
		transform.RuleBinaryFormat:     2,
	}, visitor.Edits())
}

func TestVisitor_NoRules(t *testing.T) {
	doc, err := openapi.Parse("taxonomy-api.json", []byte(patchedDocument))
	require.NoError(t, err)

	visitor := transform.NewVisitor(nil, false)
	out, err := tsgen.Generate(doc, tsgen.Options{ExportType: true, Transform: visitor.Visit})
	require.NoError(t, err)

	assert.Contains(t, string(out), "            file: string;\n")
	assert.Contains(t, string(out), "            empty?: boolean;\n")
	assert.Contains(t, string(out), "            qualityEvaluation?: components[\"schemas\"][\"QualityEvaluation\"];\n")
	assert.Empty(t, visitor.Edits())
}

func TestVisitor_FirstOverrideWins(t *testing.T) {
	visitor := transform.NewVisitor([]transform.Rule{
		transform.BinaryFormat{},
		fixedRule{name: "always-string", typ: tsgen.String},
	}, true)

	got := visitor.Visit(schemaNode(t, `{"type": "string", "format": "binary"}`), "#/components/schemas/File")
	assert.Equal(t, tsgen.Blob, got)

	got = visitor.Visit(schemaNode(t, `{"type": "string"}`), "#/components/schemas/Name")
	assert.Equal(t, tsgen.String, got)

	assert.Equal(t, map[string]int{"binary-format": 1, "always-string": 2}, visitor.Edits())
}

type fixedRule struct {
	name string
	typ  tsgen.Type
}

func (r fixedRule) Name() string { return r.name }

func (r fixedRule) Apply(_ *yaml.Node) (tsgen.Type, bool) { return r.typ, true }
