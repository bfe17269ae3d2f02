package openapi

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pair is one key/value entry of a mapping node, in source order.
type Pair struct {
	Key   string
	Value *yaml.Node
}

// unwrap skips document and alias wrappers.
func unwrap(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch n.Kind {
		case yaml.DocumentNode:
			if len(n.Content) == 0 {
				return nil
			}
			n = n.Content[0]
		case yaml.AliasNode:
			n = n.Alias
		default:
			return n
		}
	}
	return nil
}

// IsMapping reports whether n is an object.
func IsMapping(n *yaml.Node) bool {
	n = unwrap(n)
	return n != nil && n.Kind == yaml.MappingNode
}

// IsSequence reports whether n is an array.
func IsSequence(n *yaml.Node) bool {
	n = unwrap(n)
	return n != nil && n.Kind == yaml.SequenceNode
}

// IsNull reports whether n is absent or an explicit null.
func IsNull(n *yaml.Node) bool {
	n = unwrap(n)
	return n == nil || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

// Pairs returns the entries of a mapping node in source order.
func Pairs(n *yaml.Node) []Pair {
	n = unwrap(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	pairs := make([]Pair, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		pairs = append(pairs, Pair{Key: n.Content[i].Value, Value: n.Content[i+1]})
	}
	return pairs
}

// Keys returns the keys of a mapping node in source order.
func Keys(n *yaml.Node) []string {
	pairs := Pairs(n)
	keys := make([]string, len(pairs))
	for i, p := range pairs {
		keys[i] = p.Key
	}
	return keys
}

// Items returns the elements of a sequence node.
func Items(n *yaml.Node) []*yaml.Node {
	n = unwrap(n)
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil
	}
	return n.Content
}

// Get looks up key in a mapping node. It returns nil when n is not a mapping
// or the key is absent.
func Get(n *yaml.Node, key string) *yaml.Node {
	n = unwrap(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return unwrap(n.Content[i+1])
		}
	}
	return nil
}

// Has reports whether a mapping node carries key, even with a null value.
func Has(n *yaml.Node, key string) bool {
	n = unwrap(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return true
		}
	}
	return false
}

// Delete removes key from a mapping node and reports whether it was present.
func Delete(n *yaml.Node, key string) bool {
	n = unwrap(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			n.Content = append(n.Content[:i], n.Content[i+2:]...)
			return true
		}
	}
	return false
}

// Set replaces the value of key or appends the entry when key is absent.
func Set(n *yaml.Node, key string, value *yaml.Node) {
	n = unwrap(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			n.Content[i+1] = value
			return
		}
	}
	n.Content = append(n.Content, StringNode(key), value)
}

// Append adds value to the end of a sequence node.
func Append(n *yaml.Node, value *yaml.Node) {
	n = unwrap(n)
	if n == nil || n.Kind != yaml.SequenceNode {
		return
	}
	n.Content = append(n.Content, value)
}

// String returns the scalar string stored under key.
func String(n *yaml.Node, key string) (string, bool) {
	v := Get(n, key)
	if v == nil || v.Kind != yaml.ScalarNode || v.ShortTag() == "!!null" {
		return "", false
	}
	return v.Value, true
}

// Bool returns the boolean stored under key, false when absent or not a bool.
func Bool(n *yaml.Node, key string) bool {
	v := Get(n, key)
	if v == nil || v.Kind != yaml.ScalarNode || v.ShortTag() != "!!bool" {
		return false
	}
	b, err := strconv.ParseBool(v.Value)
	return err == nil && b
}

// Truthy mirrors a loose presence check: the key exists and its value is not
// null or false.
func Truthy(n *yaml.Node, key string) bool {
	if !Has(n, key) {
		return false
	}
	v := Get(n, key)
	if IsNull(v) {
		return false
	}
	if v.Kind == yaml.ScalarNode && v.ShortTag() == "!!bool" {
		return Bool(n, key)
	}
	return true
}

// Strings returns a sequence of scalars stored under key.
func Strings(n *yaml.Node, key string) []string {
	var out []string
	for _, item := range Items(Get(n, key)) {
		if item.Kind == yaml.ScalarNode {
			out = append(out, item.Value)
		}
	}
	return out
}

// StringNode builds a quoted string scalar.
func StringNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s, Style: yaml.DoubleQuotedStyle}
}

// MappingNode builds a mapping from alternating key/value arguments.
func MappingNode(kv ...any) *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Style: yaml.FlowStyle}
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		var value *yaml.Node
		switch v := kv[i+1].(type) {
		case *yaml.Node:
			value = v
		case string:
			value = StringNode(v)
		case bool:
			value = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v)}
		case int:
			value = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(v)}
		default:
			value = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
		}
		m.Content = append(m.Content, StringNode(key), value)
	}
	return m
}

// Clone returns a deep copy of n. Aliases are expanded.
func Clone(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	if n.Kind == yaml.AliasNode {
		return Clone(n.Alias)
	}
	c := *n
	c.Content = nil
	if len(n.Content) > 0 {
		c.Content = make([]*yaml.Node, len(n.Content))
		for i, child := range n.Content {
			c.Content[i] = Clone(child)
		}
	}
	return &c
}

// EscapePointer encodes a single JSON pointer token.
func EscapePointer(token string) string {
	return strings.ReplaceAll(strings.ReplaceAll(token, "~", "~0"), "/", "~1")
}

// UnescapePointer decodes a single JSON pointer token.
func UnescapePointer(token string) string {
	return strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")
}

// SplitRef splits a local reference such as "#/components/schemas/Node" into
// decoded pointer tokens. It returns false for remote references.
func SplitRef(ref string) ([]string, bool) {
	if !strings.HasPrefix(ref, "#") {
		return nil, false
	}
	ptr := strings.TrimPrefix(ref, "#")
	if ptr == "" {
		return []string{}, true
	}
	if !strings.HasPrefix(ptr, "/") {
		return nil, false
	}
	tokens := strings.Split(strings.TrimPrefix(ptr, "/"), "/")
	for i, t := range tokens {
		tokens[i] = UnescapePointer(t)
	}
	return tokens, true
}
