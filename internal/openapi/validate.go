package openapi

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidSchema is returned when a component schema does not compile.
var ErrInvalidSchema = errors.New("invalid component schema")

// documentURL is the resource name the document is registered under.
const documentURL = "typegen://document.json"

// SchemaError describes one component schema that failed to compile.
type SchemaError struct {
	Name string
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

// Unwrap exposes both ErrInvalidSchema and the compiler error.
func (e *SchemaError) Unwrap() []error {
	return []error{ErrInvalidSchema, e.Err}
}

// ValidateSchemas compiles every components.schemas entry as a JSON schema.
// OpenAPI 3.1 documents use draft 2020-12; older documents use draft 4,
// whose boolean exclusiveMinimum/Maximum match OpenAPI 3.0.
// All failures are collected; the returned error wraps ErrInvalidSchema.
func ValidateSchemas(d *Document) ([]*SchemaError, error) {
	names := d.SchemaNames()
	if len(names) == 0 {
		return nil, nil
	}

	data, err := d.JSON()
	if err != nil {
		return nil, fmt.Errorf("failed to render document as JSON: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = draftFor(d.OpenAPIVersion())
	if err := compiler.AddResource(documentURL, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to add document resource: %w", err)
	}

	var failures []*SchemaError
	for _, name := range names {
		loc := documentURL + "#/components/schemas/" + EscapePointer(name)
		if _, err := compiler.Compile(loc); err != nil {
			failures = append(failures, &SchemaError{Name: name, Err: err})
		}
	}
	if len(failures) > 0 {
		msgs := make([]string, len(failures))
		for i, f := range failures {
			msgs[i] = f.Name
		}
		return failures, fmt.Errorf("%w: %s", ErrInvalidSchema, strings.Join(msgs, ", "))
	}
	return nil, nil
}

func draftFor(openapiVersion string) *jsonschema.Draft {
	if strings.HasPrefix(openapiVersion, "3.1") {
		return jsonschema.Draft2020
	}
	return jsonschema.Draft4
}
