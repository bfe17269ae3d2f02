// Package openapi loads OpenAPI documents into an order-preserving node tree
// and provides the lookups the type generator needs.
package openapi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Common document errors
var (
	ErrRead        = errors.New("failed to read schema document")
	ErrParse       = errors.New("failed to parse schema document")
	ErrUnsupported = errors.New("unsupported reference")
	ErrNotFound    = errors.New("reference target not found")
)

// Info holds the fields of the document's info object that are recorded
// with each generation run.
type Info struct {
	Title   string
	Version string
}

// Document is a parsed OpenAPI document. Root is the top-level mapping; key
// order matches the source file.
type Document struct {
	Source string
	Root   *yaml.Node
	Digest string
	raw    []byte
}

// Load reads a document from a local path or an http(s) URL.
func Load(ctx context.Context, source string) (*Document, error) {
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		data, err = fetchFromHTTP(ctx, source)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("%w from %s: %w", ErrRead, source, err)
	}
	return Parse(source, data)
}

// Parse builds a Document from raw bytes. Sources ending in .json must be
// valid JSON; everything else is read as YAML, of which JSON is a subset.
func Parse(source string, data []byte) (*Document, error) {
	if isJSONSource(source, data) && !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid JSON", ErrParse, source)
	}

	var file yaml.Node
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, source, err)
	}
	root := unwrap(&file)
	if root == nil || root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s: top level is not an object", ErrParse, source)
	}
	if !Has(root, "openapi") && !Has(root, "swagger") {
		return nil, fmt.Errorf("%w: %s: missing openapi version field", ErrParse, source)
	}

	sum := sha256.Sum256(data)
	return &Document{
		Source: source,
		Root:   root,
		Digest: hex.EncodeToString(sum[:]),
		raw:    data,
	}, nil
}

func isJSONSource(source string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(source)) {
	case ".json":
		return true
	case ".yaml", ".yml":
		return false
	}
	trimmed := strings.TrimSpace(string(data))
	return strings.HasPrefix(trimmed, "{")
}

func fetchFromHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from HTTP: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP request failed with status: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// Raw returns the bytes the document was parsed from.
func (d *Document) Raw() []byte {
	return d.raw
}

// Clone returns a copy whose node tree can be mutated without affecting d.
func (d *Document) Clone() *Document {
	return &Document{
		Source: d.Source,
		Root:   Clone(d.Root),
		Digest: d.Digest,
		raw:    d.raw,
	}
}

// OpenAPIVersion returns the openapi (or swagger) version string.
func (d *Document) OpenAPIVersion() string {
	if v, ok := String(d.Root, "openapi"); ok {
		return v
	}
	v, _ := String(d.Root, "swagger")
	return v
}

// Info returns the document title and API version.
func (d *Document) Info() Info {
	info := Get(d.Root, "info")
	title, _ := String(info, "title")
	version, _ := String(info, "version")
	return Info{Title: title, Version: version}
}

// Schemas returns the components.schemas mapping, or nil.
func (d *Document) Schemas() *yaml.Node {
	return Get(Get(d.Root, "components"), "schemas")
}

// SchemaNames returns the keys of components.schemas in source order.
func (d *Document) SchemaNames() []string {
	return Keys(d.Schemas())
}

// Resolve follows a local reference to its target node.
func (d *Document) Resolve(ref string) (*yaml.Node, error) {
	tokens, ok := SplitRef(ref)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, ref)
	}
	n := d.Root
	for _, t := range tokens {
		switch {
		case IsMapping(n):
			if !Has(n, t) {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
			}
			n = Get(n, t)
		case IsSequence(n):
			items := Items(n)
			idx := -1
			if _, err := fmt.Sscanf(t, "%d", &idx); err != nil || idx < 0 || idx >= len(items) {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
			}
			n = unwrap(items[idx])
		default:
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
	}
	return n, nil
}

// ResolveObject resolves n when it is a reference object, following chained
// references. Non-reference nodes are returned unchanged. The returned ref is
// the last reference followed, empty when n was inline.
func (d *Document) ResolveObject(n *yaml.Node) (*yaml.Node, string, error) {
	var last string
	seen := map[string]bool{}
	for {
		ref, ok := String(n, "$ref")
		if !ok {
			return n, last, nil
		}
		if seen[ref] {
			return nil, last, fmt.Errorf("%w: circular reference %s", ErrUnsupported, ref)
		}
		seen[ref] = true
		target, err := d.Resolve(ref)
		if err != nil {
			return nil, last, err
		}
		last = ref
		n = target
	}
}

// JSON renders the document as indented JSON, preserving key order.
func (d *Document) JSON() ([]byte, error) {
	return MarshalJSON(d.Root, "  ")
}
