package tsgen

import "gopkg.in/yaml.v3"

// TransformFunc is called for every schema node that is not a reference,
// before it is converted. It may edit the node in place. A non-nil result
// replaces the converted type.
type TransformFunc func(schema *yaml.Node, location string) Type

// Options control the shape of the generated module.
type Options struct {
	// ExportType declares paths, webhooks and components as type aliases
	// rather than interfaces. operations is always an interface.
	ExportType bool
	// DefaultNonNullable marks properties that carry a default as required.
	DefaultNonNullable bool
	// PathParamsAsTypes keys templated paths by template literal types.
	PathParamsAsTypes bool
	// Transform is the per-node rewrite callback. It may be nil.
	Transform TransformFunc
}
