package document

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// FieldType specifies the type of a field
type FieldType string

const (
	FieldString      FieldType = "string"
	FieldNumber      FieldType = "number"
	FieldBool        FieldType = "bool"
	FieldObject      FieldType = "object"
	FieldStringArray FieldType = "[]string"
	FieldAny         FieldType = "any"
)

// IndexSpec describes a secondary index declared on a field.
// The zero value is a plain, non-unique index.
type IndexSpec struct {
	Unique bool   `json:"unique,omitempty"`
	Sparse bool   `json:"sparse,omitempty"`
	Name   string `json:"name,omitempty"`
}

// FieldSpec defines a field's configuration
type FieldSpec struct {
	Type  FieldType  `json:"type"`
	Index *IndexSpec `json:"index,omitempty"`
}

// HookFunc runs before a document is persisted. A non-nil error aborts the write.
type HookFunc func(ctx context.Context, doc *Document) error

var (
	ErrFieldExists  = errors.New("field already declared")
	ErrInvalidField = errors.New("invalid field name")
	ErrInvalidName  = errors.New("invalid schema name")
)

var validNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var reservedFieldNames = map[string]bool{
	"_id": true,
}

// Schema is the definition shared by all documents of one collection.
type Schema struct {
	name   string
	order  []string
	fields map[string]FieldSpec
	hooks  []HookFunc
}

// NewSchema creates a schema for the named collection with the given fields.
func NewSchema(name string, fields map[string]FieldSpec) (*Schema, error) {
	if !validNameRe.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	s := &Schema{name: name, fields: make(map[string]FieldSpec)}
	for _, f := range sortedKeys(fields) {
		if err := s.AddField(f, fields[f]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Name returns the collection name
func (s *Schema) Name() string {
	return s.name
}

// AddField declares a field. Dotted names declare nested fields; a name that
// equals, contains or is contained by an existing declaration is rejected.
func (s *Schema) AddField(name string, spec FieldSpec) error {
	if err := validatePath(name); err != nil {
		return err
	}
	if reservedFieldNames[name] {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidField, name)
	}
	for _, existing := range s.order {
		if Overlaps(existing, name) {
			return fmt.Errorf("%w: %q conflicts with %q", ErrFieldExists, name, existing)
		}
	}
	if spec.Type == "" {
		spec.Type = FieldAny
	}
	s.order = append(s.order, name)
	s.fields[name] = spec
	return nil
}

// Path retrieves a field spec by name
func (s *Schema) Path(name string) (FieldSpec, bool) {
	spec, ok := s.fields[name]
	return spec, ok
}

// HasField checks if a field exists in the schema
func (s *Schema) HasField(name string) bool {
	_, ok := s.fields[name]
	return ok
}

// Fields returns declared field names in declaration order.
func (s *Schema) Fields() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// IndexedFields returns the fields that carry an index declaration, in
// declaration order.
func (s *Schema) IndexedFields() []string {
	var out []string
	for _, name := range s.order {
		if s.fields[name].Index != nil {
			out = append(out, name)
		}
	}
	return out
}

// StringArrayFields returns the []string fields in declaration order.
func (s *Schema) StringArrayFields() []string {
	var out []string
	for _, name := range s.order {
		if s.fields[name].Type == FieldStringArray {
			out = append(out, name)
		}
	}
	return out
}

// Pre registers a hook run before every save, in registration order.
func (s *Schema) Pre(hook HookFunc) {
	s.hooks = append(s.hooks, hook)
}

// RunPreSave runs the registered hooks and stops at the first error.
func (s *Schema) RunPreSave(ctx context.Context, doc *Document) error {
	for _, hook := range s.hooks {
		if err := hook(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

// New creates a fresh document of this schema. The data map is copied.
// Absent string-array fields default to an empty list unless a non-object
// value sits on their path.
func (s *Schema) New(data map[string]any) *Document {
	doc := &Document{
		schema:   s,
		data:     cloneMap(data),
		isNew:    true,
		modified: make(map[string]bool),
	}
	for _, name := range s.order {
		if s.fields[name].Type != FieldStringArray {
			continue
		}
		if _, ok := doc.lookup(name); !ok && canSetPath(doc.data, name) {
			doc.setRaw(name, []string{})
		}
	}
	return doc
}

func validatePath(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidField)
	}
	for _, part := range strings.Split(name, ".") {
		if !validNameRe.MatchString(part) {
			return fmt.Errorf("%w: %q", ErrInvalidField, name)
		}
	}
	return nil
}

// Overlaps reports whether a and b name the same field or one is nested in the other.
func Overlaps(a, b string) bool {
	return a == b || strings.HasPrefix(a, b+".") || strings.HasPrefix(b, a+".")
}
