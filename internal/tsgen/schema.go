package tsgen

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ndlano/taxonomy-typegen/internal/openapi"
)

type converter struct {
	doc  *openapi.Document
	opts Options
}

// refType turns a local reference into an indexed access type. The target
// must exist.
func (c *converter) refType(ref string) (Type, error) {
	tokens, ok := openapi.SplitRef(ref)
	if !ok || len(tokens) == 0 {
		return nil, fmt.Errorf("%w: unsupported $ref %q", ErrGenerate, ref)
	}
	if _, err := c.doc.Resolve(ref); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerate, err)
	}
	keys := tokens[1:]
	// #/components/schemas/X/properties/y reads as components["schemas"]["X"]["y"].
	if tokens[0] == "components" {
		filtered := make([]string, 0, len(keys))
		for i, k := range keys {
			if k == "properties" && i >= 2 {
				continue
			}
			filtered = append(filtered, k)
		}
		keys = filtered
	}
	return IndexedAccess(tokens[0], keys...), nil
}

// schema converts a schema object located at loc.
func (c *converter) schema(n *yaml.Node, loc string) (Type, error) {
	if n == nil {
		return Unknown, nil
	}
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!bool" {
		if n.Value == "true" {
			return Unknown, nil
		}
		return Never, nil
	}
	if !openapi.IsMapping(n) {
		return nil, fmt.Errorf("%w: schema at %s is not an object", ErrGenerate, loc)
	}
	if ref, ok := openapi.String(n, "$ref"); ok {
		return c.refType(ref)
	}
	if c.opts.Transform != nil {
		if t := c.opts.Transform(n, loc); t != nil {
			return t, nil
		}
	}

	t, err := c.schemaCore(n, loc)
	if err != nil {
		return nil, err
	}
	if openapi.Bool(n, "nullable") {
		t = Nullable(t)
	}
	return t, nil
}

func (c *converter) schemaCore(n *yaml.Node, loc string) (Type, error) {
	if openapi.Has(n, "const") {
		return literal(openapi.Get(n, "const")), nil
	}
	if enum := openapi.Get(n, "enum"); openapi.IsSequence(enum) {
		items := openapi.Items(enum)
		members := make([]Type, 0, len(items))
		for _, item := range items {
			members = append(members, literal(item))
		}
		return NewUnion(members...), nil
	}

	var parts []Type
	base, hasBase, err := c.typed(n, loc)
	if err != nil {
		return nil, err
	}
	if hasBase {
		parts = append(parts, base)
	}

	if allOf := openapi.Items(openapi.Get(n, "allOf")); len(allOf) > 0 {
		members, err := c.schemaList(allOf, loc+"/allOf")
		if err != nil {
			return nil, err
		}
		parts = append(parts, members...)
	}
	for _, key := range []string{"oneOf", "anyOf"} {
		items := openapi.Items(openapi.Get(n, key))
		if len(items) == 0 {
			continue
		}
		members, err := c.schemaList(items, loc+"/"+key)
		if err != nil {
			return nil, err
		}
		parts = append(parts, NewUnion(members...))
	}

	if len(parts) == 0 {
		return Unknown, nil
	}
	return NewIntersection(parts...), nil
}

func (c *converter) schemaList(items []*yaml.Node, loc string) ([]Type, error) {
	out := make([]Type, 0, len(items))
	for i, item := range items {
		t, err := c.schema(item, fmt.Sprintf("%s/%d", loc, i))
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// typed converts the type keyword. The second result is false when the
// schema only composes other schemas.
func (c *converter) typed(n *yaml.Node, loc string) (Type, bool, error) {
	if types := openapi.Strings(n, "type"); openapi.IsSequence(openapi.Get(n, "type")) {
		members := make([]Type, 0, len(types))
		for _, typ := range types {
			t, err := c.single(n, typ, loc)
			if err != nil {
				return nil, false, err
			}
			members = append(members, t)
		}
		return NewUnion(members...), len(members) > 0, nil
	}

	typ, ok := openapi.String(n, "type")
	if !ok {
		switch {
		case openapi.Has(n, "properties") || openapi.Has(n, "additionalProperties"):
			typ = "object"
		case openapi.Has(n, "items") || openapi.Has(n, "prefixItems"):
			typ = "array"
		default:
			return nil, false, nil
		}
	}
	// An object that only carries composition keywords adds nothing.
	if typ == "object" && !openapi.Has(n, "properties") && !openapi.Has(n, "additionalProperties") && hasComposition(n) {
		return nil, false, nil
	}
	t, err := c.single(n, typ, loc)
	return t, err == nil, err
}

func hasComposition(n *yaml.Node) bool {
	for _, key := range []string{"allOf", "oneOf", "anyOf"} {
		if len(openapi.Items(openapi.Get(n, key))) > 0 {
			return true
		}
	}
	return false
}

func (c *converter) single(n *yaml.Node, typ, loc string) (Type, error) {
	switch typ {
	case "string":
		return String, nil
	case "integer", "number":
		return Number, nil
	case "boolean":
		return Boolean, nil
	case "null":
		return Null, nil
	case "array":
		return c.array(n, loc)
	case "object":
		return c.object(n, loc)
	default:
		return nil, fmt.Errorf("%w: unknown type %q at %s", ErrGenerate, typ, loc)
	}
}

func (c *converter) array(n *yaml.Node, loc string) (Type, error) {
	if prefix := openapi.Items(openapi.Get(n, "prefixItems")); len(prefix) > 0 {
		elems, err := c.schemaList(prefix, loc+"/prefixItems")
		if err != nil {
			return nil, err
		}
		return Tuple{Elems: elems}, nil
	}
	items := openapi.Get(n, "items")
	if items == nil {
		return Array{Elem: Unknown}, nil
	}
	elem, err := c.schema(items, loc+"/items")
	if err != nil {
		return nil, err
	}
	return Array{Elem: elem}, nil
}

func (c *converter) object(n *yaml.Node, loc string) (Type, error) {
	required := map[string]bool{}
	for _, name := range openapi.Strings(n, "required") {
		required[name] = true
	}

	obj := &Object{}
	for _, p := range openapi.Pairs(openapi.Get(n, "properties")) {
		t, err := c.schema(p.Value, loc+"/properties/"+openapi.EscapePointer(p.Key))
		if err != nil {
			return nil, err
		}
		optional := !required[p.Key]
		if optional && c.opts.DefaultNonNullable && openapi.Has(p.Value, "default") {
			optional = false
		}
		obj.Members = append(obj.Members, Member{
			Name:     p.Key,
			Optional: optional,
			Type:     t,
			Doc:      schemaComment(p.Value),
		})
	}

	if openapi.Has(n, "additionalProperties") {
		ap := openapi.Get(n, "additionalProperties")
		var valueType Type
		switch {
		case ap == nil || (ap.Kind == yaml.ScalarNode && ap.ShortTag() == "!!bool"):
			if ap != nil && ap.Value == "false" {
				valueType = nil
			} else {
				valueType = Unknown
			}
		case openapi.IsMapping(ap) && len(openapi.Pairs(ap)) == 0:
			valueType = Unknown
		default:
			t, err := c.schema(ap, loc+"/additionalProperties")
			if err != nil {
				return nil, err
			}
			valueType = t
		}
		if valueType != nil {
			obj.Members = append(obj.Members, Member{Name: "key", Index: true, IndexType: "string", Type: valueType})
		}
	}
	return obj, nil
}

// literal converts an enum or const value.
func literal(v *yaml.Node) Type {
	if v == nil {
		return Null
	}
	if v.Kind != yaml.ScalarNode {
		out, err := openapi.MarshalJSON(v, "")
		if err != nil {
			return Unknown
		}
		return Literal(out)
	}
	switch v.ShortTag() {
	case "!!null":
		return Null
	case "!!str":
		return StringLiteral(v.Value)
	case "!!bool":
		return Literal(strings.ToLower(v.Value))
	default:
		return Literal(v.Value)
	}
}
