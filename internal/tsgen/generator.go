// Package tsgen converts an OpenAPI document into a TypeScript declaration
// module with paths, webhooks, components, $defs and operations types.
package tsgen

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ndlano/taxonomy-typegen/internal/openapi"
)

// ErrGenerate is returned when the document contains a construct that
// cannot be converted.
var ErrGenerate = errors.New("failed to generate types")

var (
	methods          = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}
	parameterIn      = []string{"query", "header", "path", "cookie"}
	componentKinds   = []string{"schemas", "responses", "parameters", "requestBodies", "headers", "pathItems"}
	pathParamPattern = regexp.MustCompile(`\{[^}]+\}`)
)

// Generate converts doc into module text. The document is cloned first, so
// edits made by opts.Transform never reach the caller's tree.
func Generate(doc *openapi.Document, opts Options) ([]byte, error) {
	c := &converter{doc: doc.Clone(), opts: opts}

	paths, err := c.paths(openapi.Get(c.doc.Root, "paths"), "#/paths")
	if err != nil {
		return nil, err
	}
	webhooks, err := c.paths(openapi.Get(c.doc.Root, "webhooks"), "#/webhooks")
	if err != nil {
		return nil, err
	}
	components, err := c.components()
	if err != nil {
		return nil, err
	}
	operations, err := c.operations()
	if err != nil {
		return nil, err
	}

	decls := []Declaration{
		{Name: "paths", Type: paths, Interface: !opts.ExportType},
		{Name: "webhooks", Type: webhooks, Interface: !opts.ExportType},
		{Name: "components", Type: components, Interface: !opts.ExportType},
		{Name: "$defs", Type: EmptyRecord},
		{Name: "operations", Type: operations, Interface: true},
	}
	return []byte(Print(decls)), nil
}

func (c *converter) paths(n *yaml.Node, loc string) (*Object, error) {
	obj := &Object{}
	for _, p := range openapi.Pairs(n) {
		itemLoc := loc + "/" + openapi.EscapePointer(p.Key)
		t, err := c.pathItem(p.Value, itemLoc)
		if err != nil {
			return nil, err
		}
		m := Member{Name: p.Key, Type: t}
		if c.opts.PathParamsAsTypes && pathParamPattern.MatchString(p.Key) {
			m.Name = "path"
			m.Index = true
			m.IndexType = templatePath(p.Key)
		}
		obj.Members = append(obj.Members, m)
	}
	return obj, nil
}

// templatePath renders /nodes/{id} as `/nodes/${string}`.
func templatePath(path string) string {
	escaped := strings.NewReplacer("`", "\\`", "$", "\\$").Replace(path)
	return "`" + pathParamPattern.ReplaceAllLiteralString(escaped, "${string}") + "`"
}

func (c *converter) pathItem(n *yaml.Node, loc string) (Type, error) {
	if ref, ok := openapi.String(n, "$ref"); ok {
		return c.refType(ref)
	}
	shared := openapi.Items(openapi.Get(n, "parameters"))
	params, err := c.parameters(shared, nil, loc)
	if err != nil {
		return nil, err
	}
	obj := &Object{Members: []Member{{Name: "parameters", Type: params}}}
	for _, method := range methods {
		op := openapi.Get(n, method)
		if op == nil {
			obj.Members = append(obj.Members, Member{Name: method, Optional: true, Type: Never})
			continue
		}
		m := Member{Name: method, Doc: operationComment(op)}
		if id, ok := openapi.String(op, "operationId"); ok && id != "" {
			m.Type = IndexedAccess("operations", id)
		} else {
			t, err := c.operation(op, shared, loc+"/"+method)
			if err != nil {
				return nil, err
			}
			m.Type = t
		}
		obj.Members = append(obj.Members, m)
	}
	return obj, nil
}

func (c *converter) operations() (*Object, error) {
	obj := &Object{}
	seen := map[string]bool{}
	for _, tree := range []string{"paths", "webhooks"} {
		for _, p := range openapi.Pairs(openapi.Get(c.doc.Root, tree)) {
			item := p.Value
			if ref, ok := openapi.String(item, "$ref"); ok {
				resolved, err := c.doc.Resolve(ref)
				if err != nil {
					return nil, fmt.Errorf("%w: %w", ErrGenerate, err)
				}
				item = resolved
			}
			shared := openapi.Items(openapi.Get(item, "parameters"))
			for _, method := range methods {
				op := openapi.Get(item, method)
				id, ok := openapi.String(op, "operationId")
				if !ok || id == "" {
					continue
				}
				if seen[id] {
					return nil, fmt.Errorf("%w: duplicate operationId %q", ErrGenerate, id)
				}
				seen[id] = true
				loc := "#/" + tree + "/" + openapi.EscapePointer(p.Key) + "/" + method
				t, err := c.operation(op, shared, loc)
				if err != nil {
					return nil, err
				}
				obj.Members = append(obj.Members, Member{Name: id, Type: t})
			}
		}
	}
	return obj, nil
}

func (c *converter) operation(op *yaml.Node, shared []*yaml.Node, loc string) (Type, error) {
	params, err := c.parameters(shared, openapi.Items(openapi.Get(op, "parameters")), loc)
	if err != nil {
		return nil, err
	}
	obj := &Object{Members: []Member{{Name: "parameters", Type: params}}}

	if body := openapi.Get(op, "requestBody"); body != nil {
		t, required, err := c.requestBody(body, loc+"/requestBody")
		if err != nil {
			return nil, err
		}
		obj.Members = append(obj.Members, Member{
			Name:     "requestBody",
			Optional: !required,
			Type:     t,
			Doc:      schemaComment(body),
		})
	} else {
		obj.Members = append(obj.Members, Member{Name: "requestBody", Optional: true, Type: Never})
	}

	responses := &Object{}
	for _, p := range openapi.Pairs(openapi.Get(op, "responses")) {
		t, err := c.response(p.Value, loc+"/responses/"+p.Key)
		if err != nil {
			return nil, err
		}
		responses.Members = append(responses.Members, Member{Name: p.Key, Type: t, Doc: c.responseComment(p.Value)})
	}
	obj.Members = append(obj.Members, Member{Name: "responses", Type: responses})
	return obj, nil
}

type parameterEntry struct {
	name string
	in   string
	node *yaml.Node
	ref  string
}

// parameters groups path level and operation level parameters by location.
// An operation parameter replaces a path level one with the same name and
// location.
func (c *converter) parameters(shared, own []*yaml.Node, loc string) (Type, error) {
	var entries []parameterEntry
	index := map[string]int{}
	for _, list := range [][]*yaml.Node{shared, own} {
		for _, raw := range list {
			node, ref, err := c.doc.ResolveObject(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: parameter at %s: %w", ErrGenerate, loc, err)
			}
			name, _ := openapi.String(node, "name")
			in, _ := openapi.String(node, "in")
			if name == "" || in == "" {
				return nil, fmt.Errorf("%w: parameter at %s lacks name or in", ErrGenerate, loc)
			}
			e := parameterEntry{name: name, in: in, node: node}
			if _, isRef := openapi.String(raw, "$ref"); isRef {
				e.ref = ref
			}
			key := in + "\x00" + name
			if i, ok := index[key]; ok {
				entries[i] = e
				continue
			}
			index[key] = len(entries)
			entries = append(entries, e)
		}
	}

	obj := &Object{}
	for _, in := range parameterIn {
		group := &Object{}
		groupRequired := false
		for _, e := range entries {
			if e.in != in {
				continue
			}
			required := openapi.Bool(e.node, "required") || in == "path"
			if required {
				groupRequired = true
			}
			m := Member{Name: e.name, Optional: !required}
			if e.ref != "" {
				t, err := c.refType(e.ref)
				if err != nil {
					return nil, err
				}
				m.Type = t
			} else {
				t, err := c.parameterSchema(e.node, loc+"/parameters/"+e.name)
				if err != nil {
					return nil, err
				}
				m.Type = t
				m.Doc = schemaComment(e.node)
			}
			group.Members = append(group.Members, m)
		}
		if len(group.Members) == 0 {
			obj.Members = append(obj.Members, Member{Name: in, Optional: true, Type: Never})
			continue
		}
		obj.Members = append(obj.Members, Member{Name: in, Optional: !groupRequired, Type: group})
	}
	return obj, nil
}

// parameterSchema returns the type of a parameter or header object, taken
// from its schema or from the first media type of its content.
func (c *converter) parameterSchema(n *yaml.Node, loc string) (Type, error) {
	if schema := openapi.Get(n, "schema"); schema != nil {
		return c.schema(schema, loc+"/schema")
	}
	for _, p := range openapi.Pairs(openapi.Get(n, "content")) {
		return c.schema(openapi.Get(p.Value, "schema"), loc+"/content/"+openapi.EscapePointer(p.Key)+"/schema")
	}
	return Unknown, nil
}

func (c *converter) requestBody(n *yaml.Node, loc string) (Type, bool, error) {
	if ref, ok := openapi.String(n, "$ref"); ok {
		t, err := c.refType(ref)
		if err != nil {
			return nil, false, err
		}
		target, _, err := c.doc.ResolveObject(n)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %w", ErrGenerate, err)
		}
		return t, openapi.Bool(target, "required"), nil
	}
	content, err := c.content(openapi.Get(n, "content"), loc+"/content")
	if err != nil {
		return nil, false, err
	}
	obj := &Object{}
	if content != nil {
		obj.Members = append(obj.Members, Member{Name: "content", Type: content})
	} else {
		obj.Members = append(obj.Members, Member{Name: "content", Optional: true, Type: Never})
	}
	return obj, openapi.Bool(n, "required"), nil
}

func (c *converter) response(n *yaml.Node, loc string) (Type, error) {
	if ref, ok := openapi.String(n, "$ref"); ok {
		return c.refType(ref)
	}
	headers := &Object{}
	for _, p := range openapi.Pairs(openapi.Get(n, "headers")) {
		m := Member{Name: p.Key}
		node, ref, err := c.doc.ResolveObject(p.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: header %s at %s: %w", ErrGenerate, p.Key, loc, err)
		}
		m.Optional = !openapi.Bool(node, "required")
		if _, isRef := openapi.String(p.Value, "$ref"); isRef {
			t, err := c.refType(ref)
			if err != nil {
				return nil, err
			}
			m.Type = t
		} else {
			t, err := c.parameterSchema(node, loc+"/headers/"+openapi.EscapePointer(p.Key))
			if err != nil {
				return nil, err
			}
			m.Type = t
			m.Doc = schemaComment(node)
		}
		headers.Members = append(headers.Members, m)
	}
	headers.Members = append(headers.Members, Member{Name: "name", Index: true, IndexType: "string", Type: Unknown})

	obj := &Object{Members: []Member{{Name: "headers", Type: headers}}}
	content, err := c.content(openapi.Get(n, "content"), loc+"/content")
	if err != nil {
		return nil, err
	}
	if content != nil {
		obj.Members = append(obj.Members, Member{Name: "content", Type: content})
	} else {
		obj.Members = append(obj.Members, Member{Name: "content", Optional: true, Type: Never})
	}
	return obj, nil
}

func (c *converter) responseComment(n *yaml.Node) []string {
	if openapi.Has(n, "$ref") {
		return nil
	}
	return schemaComment(n)
}

// content converts a media type map. It returns nil when there is nothing
// to emit.
func (c *converter) content(n *yaml.Node, loc string) (*Object, error) {
	pairs := openapi.Pairs(n)
	if len(pairs) == 0 {
		return nil, nil
	}
	obj := &Object{}
	for _, p := range pairs {
		var t Type = Unknown
		if schema := openapi.Get(p.Value, "schema"); schema != nil {
			var err error
			t, err = c.schema(schema, loc+"/"+openapi.EscapePointer(p.Key)+"/schema")
			if err != nil {
				return nil, err
			}
		}
		obj.Members = append(obj.Members, Member{Name: p.Key, Type: t})
	}
	return obj, nil
}

func (c *converter) components() (*Object, error) {
	root := openapi.Get(c.doc.Root, "components")
	obj := &Object{}
	for _, kind := range componentKinds {
		pairs := openapi.Pairs(openapi.Get(root, kind))
		if len(pairs) == 0 {
			obj.Members = append(obj.Members, Member{Name: kind, Type: Never})
			continue
		}
		section := &Object{}
		for _, p := range pairs {
			loc := "#/components/" + kind + "/" + openapi.EscapePointer(p.Key)
			m, err := c.component(kind, p.Key, p.Value, loc)
			if err != nil {
				return nil, err
			}
			section.Members = append(section.Members, m)
		}
		obj.Members = append(obj.Members, Member{Name: kind, Type: section})
	}
	return obj, nil
}

func (c *converter) component(kind, name string, n *yaml.Node, loc string) (Member, error) {
	m := Member{Name: name}
	var (
		t   Type
		err error
	)
	switch kind {
	case "schemas":
		t, err = c.schema(n, loc)
		m.Doc = schemaComment(n)
	case "responses":
		t, err = c.response(n, loc)
		m.Doc = c.responseComment(n)
	case "parameters", "headers":
		if ref, ok := openapi.String(n, "$ref"); ok {
			t, err = c.refType(ref)
		} else {
			t, err = c.parameterSchema(n, loc)
			m.Doc = schemaComment(n)
		}
	case "requestBodies":
		t, _, err = c.requestBody(n, loc)
	case "pathItems":
		t, err = c.pathItem(n, loc)
	}
	if err != nil {
		return Member{}, err
	}
	m.Type = t
	return m, nil
}
