package tsgen

import (
	"strings"

	json "github.com/goccy/go-json"
)

// Type is a TypeScript type expression.
type Type interface {
	isType()
}

// Keyword is a built-in type such as string or never.
type Keyword string

// Literal is pre-rendered literal text: "BETA", 1, true.
type Literal string

// Raw is emitted verbatim. It is used for references and template literals.
type Raw string

// Array is T[].
type Array struct {
	Elem Type
}

// Tuple is [A, B].
type Tuple struct {
	Elems []Type
}

// Union is A | B.
type Union []Type

// Intersection is A & B.
type Intersection []Type

// Object is a type literal.
type Object struct {
	Members []Member
}

// Member is one property or index signature of a type literal.
type Member struct {
	Name     string
	Optional bool
	Type     Type
	Doc      []string
	// Index marks an index signature; Name is then the key name
	// ("key" or "name") and IndexType its key type.
	Index     bool
	IndexType string
}

func (Keyword) isType()      {}
func (Literal) isType()      {}
func (Raw) isType()          {}
func (Array) isType()        {}
func (Tuple) isType()        {}
func (Union) isType()        {}
func (Intersection) isType() {}
func (*Object) isType()      {}

// Common keywords.
const (
	String  Keyword = "string"
	Number  Keyword = "number"
	Boolean Keyword = "boolean"
	Unknown Keyword = "unknown"
	Never   Keyword = "never"
	Null    Keyword = "null"
)

// Blob is the opaque binary payload type.
const Blob = Raw("Blob")

// EmptyRecord is an object type that admits no keys.
const EmptyRecord = Raw("Record<string, never>")

// StringLiteral returns a quoted string literal type.
func StringLiteral(s string) Literal {
	return Literal(quote(s))
}

// NewUnion flattens nested unions and drops duplicates. A single member is
// returned as is; no members yields never.
func NewUnion(types ...Type) Type {
	var flat []Type
	seen := map[string]bool{}
	var add func(t Type)
	add = func(t Type) {
		if u, ok := t.(Union); ok {
			for _, m := range u {
				add(m)
			}
			return
		}
		key := render(t)
		if seen[key] {
			return
		}
		seen[key] = true
		flat = append(flat, t)
	}
	for _, t := range types {
		if t != nil {
			add(t)
		}
	}
	switch len(flat) {
	case 0:
		return Never
	case 1:
		return flat[0]
	}
	return Union(flat)
}

// NewIntersection flattens nested intersections. A single member is
// returned as is.
func NewIntersection(types ...Type) Type {
	var flat []Type
	for _, t := range types {
		if t == nil {
			continue
		}
		if i, ok := t.(Intersection); ok {
			flat = append(flat, i...)
			continue
		}
		flat = append(flat, t)
	}
	switch len(flat) {
	case 0:
		return Unknown
	case 1:
		return flat[0]
	}
	return Intersection(flat)
}

// Nullable adds null to t.
func Nullable(t Type) Type {
	return NewUnion(t, Null)
}

// IndexedAccess renders root["a"]["b"].
func IndexedAccess(root string, keys ...string) Raw {
	var b strings.Builder
	b.WriteString(root)
	for _, k := range keys {
		b.WriteByte('[')
		b.WriteString(quote(k))
		b.WriteByte(']')
	}
	return Raw(b.String())
}

func quote(s string) string {
	out, err := json.MarshalNoEscape(s)
	if err != nil {
		return `""`
	}
	return string(out)
}

// render prints t on a single logical level; used for deduplication.
func render(t Type) string {
	p := &printer{}
	p.writeType(t, 0)
	return p.buf.String()
}
