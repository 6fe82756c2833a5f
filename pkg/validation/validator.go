package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaSet holds compiled schemas by name. It is safe for concurrent use.
type SchemaSet struct {
	schemas map[string]*jsonschema.Schema
}

// LoadSchemas compiles every file of fsys matching pattern (a doublestar glob).
func LoadSchemas(fsys fs.FS, pattern string) (*SchemaSet, error) {
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid schema pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no schemas match %q", pattern)
	}
	sort.Strings(matches)

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	for _, m := range matches {
		data, err := fs.ReadFile(fsys, m)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", m, err)
		}
		if err := compiler.AddResource(m, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to add schema resource %s: %w", m, err)
		}
	}

	set := &SchemaSet{schemas: make(map[string]*jsonschema.Schema, len(matches))}
	for _, m := range matches {
		schema, err := compiler.Compile(m)
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", m, err)
		}
		name := strings.TrimSuffix(path.Base(m), path.Ext(m))
		if _, dup := set.schemas[name]; dup {
			return nil, fmt.Errorf("schema name %q used twice", name)
		}
		set.schemas[name] = schema
	}
	return set, nil
}

// Names returns the schema names, sorted.
func (s *SchemaSet) Names() []string {
	names := make([]string, 0, len(s.schemas))
	for name := range s.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a schema with the given name exists.
func (s *SchemaSet) Has(name string) bool {
	_, ok := s.schemas[name]
	return ok
}

// Validate validates a raw JSON body against the named schema.
func (s *SchemaSet) Validate(name string, body []byte) *Result {
	result := &Result{Valid: true}

	schema, ok := s.schemas[name]
	if !ok {
		result.AddError(&FieldError{Code: ErrCodeUnknown, Message: fmt.Sprintf("no schema named %q", name)})
		return result
	}

	doc, err := decodeInstance(body)
	if err != nil {
		result.AddError(&FieldError{Code: ErrCodeInvalidJSON, Message: fmt.Sprintf("body is not valid JSON: %v", err)})
		return result
	}

	if err := schema.Validate(doc); err != nil {
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			parseSchemaErrors(validationErr, result)
		} else {
			result.AddError(&FieldError{Code: ErrCodeSchema, Message: err.Error()})
		}
	}
	return result
}

// Validator returns a function validating bodies against the named schema,
// or nil if there is no such schema.
func (s *SchemaSet) Validator(name string) func([]byte) error {
	if !s.Has(name) {
		return nil
	}
	return func(body []byte) error {
		return s.Validate(name, body).Err()
	}
}

// decodeInstance decodes body the way the validator expects instances:
// numbers stay json.Number and trailing data is rejected.
func decodeInstance(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return doc, nil
}

// parseSchemaErrors extracts detailed errors from JSON Schema validation
func parseSchemaErrors(err *jsonschema.ValidationError, result *Result) {
	if len(err.Causes) == 0 {
		result.AddError(&FieldError{
			Field:   extractFieldFromPath(err.InstanceLocation),
			Code:    ErrCodeSchema,
			Message: err.Message,
		})
		return
	}

	for _, cause := range err.Causes {
		parseSchemaErrors(cause, result)
	}
}

// extractFieldFromPath extracts field name from JSON Pointer path
func extractFieldFromPath(path string) string {
	if path == "" || path == "/" {
		return ""
	}
	path = strings.TrimPrefix(path, "/")
	path = strings.ReplaceAll(path, "/", ".")
	return path
}
