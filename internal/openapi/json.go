package openapi

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// MarshalJSON renders n as JSON, keeping mapping keys in source order.
// An empty indent produces compact output.
func MarshalJSON(n *yaml.Node, indent string) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, unwrap(n), indent, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, n *yaml.Node, indent string, depth int) error {
	if n == nil {
		buf.WriteString("null")
		return nil
	}
	switch n.Kind {
	case yaml.AliasNode, yaml.DocumentNode:
		return writeJSON(buf, unwrap(n), indent, depth)
	case yaml.MappingNode:
		if len(n.Content) == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteByte('{')
		for i := 0; i+1 < len(n.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			newline(buf, indent, depth+1)
			key, err := json.MarshalNoEscape(n.Content[i].Value)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if indent != "" {
				buf.WriteByte(' ')
			}
			if err := writeJSON(buf, n.Content[i+1], indent, depth+1); err != nil {
				return err
			}
		}
		newline(buf, indent, depth)
		buf.WriteByte('}')
	case yaml.SequenceNode:
		if len(n.Content) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteByte('[')
		for i, item := range n.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			newline(buf, indent, depth+1)
			if err := writeJSON(buf, item, indent, depth+1); err != nil {
				return err
			}
		}
		newline(buf, indent, depth)
		buf.WriteByte(']')
	case yaml.ScalarNode:
		return writeScalar(buf, n)
	default:
		return fmt.Errorf("unsupported node kind %d at line %d", n.Kind, n.Line)
	}
	return nil
}

func writeScalar(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.ShortTag() {
	case "!!null":
		buf.WriteString("null")
	case "!!bool":
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q at line %d", n.Value, n.Line)
		}
		buf.WriteString(strconv.FormatBool(b))
	case "!!int", "!!float":
		if !json.Valid([]byte(n.Value)) {
			// YAML-only spellings such as .inf or 0x1f have no JSON form.
			return writeQuoted(buf, n.Value)
		}
		buf.WriteString(n.Value)
	default:
		return writeQuoted(buf, n.Value)
	}
	return nil
}

func writeQuoted(buf *bytes.Buffer, s string) error {
	b, err := json.MarshalNoEscape(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

func newline(buf *bytes.Buffer, indent string, depth int) {
	if indent == "" {
		return
	}
	buf.WriteByte('\n')
	buf.WriteString(strings.Repeat(indent, depth))
}
