// Package transform holds the schema rewrites applied while types are
// generated.
package transform

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ndlano/taxonomy-typegen/internal/openapi"
	"github.com/ndlano/taxonomy-typegen/internal/tsgen"
)

// Rule names accepted in configuration.
const (
	RuleStripEmptyMarker = "strip-empty-marker"
	RuleNullableRef      = "nullable-ref"
	RuleBinaryFormat     = "binary-format"
)

// DefaultNullableProperties are the properties NullableRef rewrites when no
// list is configured.
var DefaultNullableProperties = []string{"qualityEvaluation"}

// ErrUnknownRule is returned for a rule name that is not registered.
var ErrUnknownRule = errors.New("unknown transform rule")

// Rule inspects one schema node. It may edit the node in place and may
// return a type that replaces the generated one. applied reports whether
// the rule matched.
type Rule interface {
	Name() string
	Apply(schema *yaml.Node) (override tsgen.Type, applied bool)
}

// StripEmptyMarker drops the properties of a map-like object schema that
// carries a placeholder property named "empty". additionalProperties is
// kept, so the schema is emitted as an index signature only.
type StripEmptyMarker struct{}

func (StripEmptyMarker) Name() string { return RuleStripEmptyMarker }

func (StripEmptyMarker) Apply(schema *yaml.Node) (tsgen.Type, bool) {
	if !isObjectSchema(schema) || !openapi.Truthy(schema, "additionalProperties") {
		return nil, false
	}
	if !openapi.Has(openapi.Get(schema, "properties"), "empty") {
		return nil, false
	}
	return nil, openapi.Delete(schema, "properties")
}

func isObjectSchema(schema *yaml.Node) bool {
	if typ, ok := openapi.String(schema, "type"); ok && typ == "object" {
		return true
	}
	return openapi.Has(schema, "properties")
}

// NullableRef rewrites the named properties when they carry both oneOf and
// $ref: a null variant is appended to oneOf and the $ref is removed, so the
// property is emitted as a nullable union.
type NullableRef struct {
	Properties []string
}

func (NullableRef) Name() string { return RuleNullableRef }

func (r NullableRef) Apply(schema *yaml.Node) (tsgen.Type, bool) {
	props := openapi.Get(schema, "properties")
	if props == nil {
		return nil, false
	}
	applied := false
	for _, name := range r.Properties {
		prop := openapi.Get(props, name)
		oneOf := openapi.Get(prop, "oneOf")
		if !openapi.IsSequence(oneOf) || !openapi.Has(prop, "$ref") {
			continue
		}
		openapi.Append(oneOf, openapi.MappingNode("type", "null"))
		openapi.Delete(prop, "$ref")
		applied = true
	}
	return nil, applied
}

// BinaryFormat emits string schemas with format binary as Blob, adding null
// when the schema is nullable.
type BinaryFormat struct{}

func (BinaryFormat) Name() string { return RuleBinaryFormat }

func (BinaryFormat) Apply(schema *yaml.Node) (tsgen.Type, bool) {
	typ, _ := openapi.String(schema, "type")
	format, _ := openapi.String(schema, "format")
	if typ != "string" || format != "binary" {
		return nil, false
	}
	if openapi.Bool(schema, "nullable") {
		return tsgen.Nullable(tsgen.Blob), true
	}
	return tsgen.Blob, true
}

// NewRules builds rules from their configured names, in order.
// nullableProperties configures NullableRef; an empty list selects
// DefaultNullableProperties.
func NewRules(names []string, nullableProperties []string) ([]Rule, error) {
	if len(nullableProperties) == 0 {
		nullableProperties = DefaultNullableProperties
	}
	rules := make([]Rule, 0, len(names))
	for _, name := range names {
		switch name {
		case RuleStripEmptyMarker:
			rules = append(rules, StripEmptyMarker{})
		case RuleNullableRef:
			rules = append(rules, NullableRef{Properties: nullableProperties})
		case RuleBinaryFormat:
			rules = append(rules, BinaryFormat{})
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownRule, name)
		}
	}
	return rules, nil
}

// AllRules lists every rule name in application order.
func AllRules() []string {
	return []string{RuleStripEmptyMarker, RuleNullableRef, RuleBinaryFormat}
}
