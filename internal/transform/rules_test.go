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

func schemaNode(t *testing.T, src string) *yaml.Node {
	t.Helper()
	var n yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &n))
	return n.Content[0]
}

func compactJSON(t *testing.T, n *yaml.Node) string {
	t.Helper()
	out, err := openapi.MarshalJSON(n, "")
	require.NoError(t, err)
	return string(out)
}

func TestStripEmptyMarker(t *testing.T) {
	testCases := []struct {
		name        string
		schema      string
		wantApplied bool
		expected    string
	}{
		{
			name:        "map with empty marker",
			schema:      `{"type": "object", "properties": {"empty": {"type": "boolean"}}, "additionalProperties": {"type": "string"}}`,
			wantApplied: true,
			expected:    `{"type":"object","additionalProperties":{"type":"string"}}`,
		},
		{
			name:        "untyped map with empty marker",
			schema:      `{"properties": {"empty": {"type": "boolean"}}, "additionalProperties": true}`,
			wantApplied: true,
			expected:    `{"additionalProperties":true}`,
		},
		{
			name:        "no empty property",
			schema:      `{"type": "object", "properties": {"name": {"type": "string"}}, "additionalProperties": {"type": "string"}}`,
			wantApplied: false,
			expected:    `{"type":"object","properties":{"name":{"type":"string"}},"additionalProperties":{"type":"string"}}`,
		},
		{
			name:        "additional properties disabled",
			schema:      `{"type": "object", "properties": {"empty": {"type": "boolean"}}, "additionalProperties": false}`,
			wantApplied: false,
			expected:    `{"type":"object","properties":{"empty":{"type":"boolean"}},"additionalProperties":false}`,
		},
		{
			name:        "no additional properties",
			schema:      `{"type": "object", "properties": {"empty": {"type": "boolean"}}}`,
			wantApplied: false,
			expected:    `{"type":"object","properties":{"empty":{"type":"boolean"}}}`,
		},
		{
			name:        "not an object",
			schema:      `{"type": "string"}`,
			wantApplied: false,
			expected:    `{"type":"string"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n := schemaNode(t, tc.schema)
			override, applied := transform.StripEmptyMarker{}.Apply(n)
			assert.Nil(t, override)
			assert.Equal(t, tc.wantApplied, applied)
			assert.Equal(t, tc.expected, compactJSON(t, n))
		})
	}
}

func TestNullableRef(t *testing.T) {
	rule := transform.NullableRef{Properties: transform.DefaultNullableProperties}

	t.Run("appends null and drops the reference", func(t *testing.T) {
		n := schemaNode(t, `{"type": "object", "properties": {"qualityEvaluation": {
			"$ref": "#/components/schemas/QualityEvaluation",
			"oneOf": [{"$ref": "#/components/schemas/QualityEvaluation"}, {"type": "string"}]
		}}}`)

		override, applied := rule.Apply(n)
		assert.Nil(t, override)
		assert.True(t, applied)
		prop := openapi.Get(openapi.Get(n, "properties"), "qualityEvaluation")
		assert.Equal(t,
			`{"oneOf":[{"$ref":"#/components/schemas/QualityEvaluation"},{"type":"string"},{"type":"null"}]}`,
			compactJSON(t, prop))
	})

	t.Run("reference without oneOf is left alone", func(t *testing.T) {
		n := schemaNode(t, `{"properties": {"qualityEvaluation": {"$ref": "#/components/schemas/QualityEvaluation"}}}`)
		_, applied := rule.Apply(n)
		assert.False(t, applied)
		assert.Equal(t, `{"properties":{"qualityEvaluation":{"$ref":"#/components/schemas/QualityEvaluation"}}}`, compactJSON(t, n))
	})

	t.Run("other properties are left alone", func(t *testing.T) {
		n := schemaNode(t, `{"properties": {"grade": {"$ref": "#/components/schemas/Grade", "oneOf": []}}}`)
		_, applied := rule.Apply(n)
		assert.False(t, applied)
	})

	t.Run("configured property list", func(t *testing.T) {
		n := schemaNode(t, `{"properties": {"grade": {"$ref": "#/components/schemas/Grade", "oneOf": []}}}`)
		_, applied := transform.NullableRef{Properties: []string{"grade"}}.Apply(n)
		assert.True(t, applied)
		assert.Equal(t, `{"properties":{"grade":{"oneOf":[{"type":"null"}]}}}`, compactJSON(t, n))
	})
}

func TestBinaryFormat(t *testing.T) {
	testCases := []struct {
		name        string
		schema      string
		wantApplied bool
		expected    string
	}{
		{name: "binary", schema: `{"type": "string", "format": "binary"}`, wantApplied: true, expected: "Blob"},
		{name: "nullable binary", schema: `{"type": "string", "format": "binary", "nullable": true}`, wantApplied: true, expected: "Blob | null"},
		{name: "other format", schema: `{"type": "string", "format": "uri"}`, wantApplied: false},
		{name: "not a string", schema: `{"type": "integer", "format": "binary"}`, wantApplied: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			override, applied := transform.BinaryFormat{}.Apply(schemaNode(t, tc.schema))
			assert.Equal(t, tc.wantApplied, applied)
			if !tc.wantApplied {
				assert.Nil(t, override)
				return
			}
			out := tsgen.Print([]tsgen.Declaration{{Name: "T", Type: override}})
			assert.Equal(t, "export type T = "+tc.expected+";\n", out)
		})
	}
}

func TestNewRules(t *testing.T) {
	rules, err := transform.NewRules(transform.AllRules(), nil)
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, transform.RuleStripEmptyMarker, rules[0].Name())
	assert.Equal(t, transform.NullableRef{Properties: []string{"qualityEvaluation"}}, rules[1])
	assert.Equal(t, transform.RuleBinaryFormat, rules[2].Name())

	_, err = transform.NewRules([]string{"binary-format", "rename-everything"}, nil)
	assert.ErrorIs(t, err, transform.ErrUnknownRule)
}
