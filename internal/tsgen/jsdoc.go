package tsgen

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ndlano/taxonomy-typegen/internal/openapi"
)

// schemaComment builds the JSDoc lines for a schema, parameter, header or
// response object.
func schemaComment(n *yaml.Node) []string {
	if !openapi.IsMapping(n) {
		return nil
	}
	var lines []string
	if title, ok := openapi.String(n, "title"); ok && title != "" {
		lines = append(lines, title)
	}
	if format, ok := openapi.String(n, "format"); ok && format != "" {
		lines = append(lines, "Format: "+format)
	}
	if openapi.Bool(n, "deprecated") {
		lines = append(lines, "@deprecated")
	}
	if desc, ok := openapi.String(n, "description"); ok && strings.TrimSpace(desc) != "" {
		lines = append(lines, "@description "+strings.TrimSpace(desc))
	}
	if v := openapi.Get(n, "default"); openapi.Has(n, "default") {
		lines = append(lines, "@default "+commentValue(v, ""))
	}
	if v := openapi.Get(n, "example"); openapi.Has(n, "example") {
		lines = append(lines, "@example "+commentValue(v, "  "))
	}
	if openapi.Has(n, "const") {
		lines = append(lines, "@constant")
	}
	if openapi.IsSequence(openapi.Get(n, "enum")) {
		if typ := enumType(n); typ != "" {
			lines = append(lines, "@enum {"+typ+"}")
		}
	}
	return lines
}

// operationComment builds the JSDoc lines for a path item method.
func operationComment(op *yaml.Node) []string {
	var lines []string
	if summary, ok := openapi.String(op, "summary"); ok && strings.TrimSpace(summary) != "" {
		lines = append(lines, strings.TrimSpace(summary))
	}
	if openapi.Bool(op, "deprecated") {
		lines = append(lines, "@deprecated")
	}
	if desc, ok := openapi.String(op, "description"); ok && strings.TrimSpace(desc) != "" {
		lines = append(lines, "@description "+strings.TrimSpace(desc))
	}
	return lines
}

// commentValue prints scalars raw and structured values as JSON.
func commentValue(v *yaml.Node, indent string) string {
	if v == nil {
		return "null"
	}
	if v.Kind == yaml.ScalarNode {
		if v.ShortTag() == "!!null" {
			return "null"
		}
		return v.Value
	}
	out, err := openapi.MarshalJSON(v, indent)
	if err != nil {
		return ""
	}
	return string(out)
}

func enumType(n *yaml.Node) string {
	if typ, ok := openapi.String(n, "type"); ok {
		return typ
	}
	if types := openapi.Strings(n, "type"); len(types) > 0 {
		return strings.Join(types, "|")
	}
	return ""
}
