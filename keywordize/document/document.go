package document

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Document is one record of a Schema together with its change-tracking state.
// A Document is not safe for concurrent mutation.
type Document struct {
	ID string

	schema   *Schema
	data     map[string]any
	isNew    bool
	modified map[string]bool
}

// Load rebuilds a persisted document. The result is neither new nor modified.
func (s *Schema) Load(id string, data map[string]any) *Document {
	doc := s.New(data)
	doc.ID = id
	for _, name := range s.StringArrayFields() {
		if v, ok := doc.lookup(name); ok {
			doc.setRaw(name, toStrings(v))
		}
	}
	doc.MarkSaved()
	return doc
}

// LoadJSON is Load for a JSON object.
func (s *Schema) LoadJSON(id string, dataJSON []byte) (*Document, error) {
	var data map[string]any
	if err := json.Unmarshal(dataJSON, &data); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	return s.Load(id, data), nil
}

// Schema returns the schema the document belongs to
func (d *Document) Schema() *Schema {
	return d.schema
}

// Get returns the value stored at a dotted path, or nil when absent.
func (d *Document) Get(path string) any {
	v, _ := d.lookup(path)
	return v
}

// Strings returns the value at path as a string slice. Non-string elements
// are dropped.
func (d *Document) Strings(path string) []string {
	v, ok := d.lookup(path)
	if !ok {
		return nil
	}
	return toStrings(v)
}

// Set stores a value at a dotted path and marks the path modified.
func (d *Document) Set(path string, v any) {
	d.setRaw(path, v)
	d.modified[path] = true
}

// IsNew reports whether the document has never been saved.
func (d *Document) IsNew() bool {
	return d.isNew
}

// IsModified reports whether path, one of its parents or one of its children
// was set since the last save.
func (d *Document) IsModified(path string) bool {
	for m := range d.modified {
		if Overlaps(m, path) {
			return true
		}
	}
	return false
}

// ModifiedPaths returns the paths set since the last save, sorted.
func (d *Document) ModifiedPaths() []string {
	out := make([]string, 0, len(d.modified))
	for m := range d.modified {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// MarkSaved clears the change-tracking state after a successful write.
func (d *Document) MarkSaved() {
	d.isNew = false
	d.modified = make(map[string]bool)
}

// Data returns a deep copy of the document's fields.
func (d *Document) Data() map[string]any {
	return cloneMap(d.data)
}

// MarshalJSON encodes the document's fields.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.data)
}

func (d *Document) lookup(path string) (any, bool) {
	return getPath(d.data, path)
}

func (d *Document) setRaw(path string, v any) {
	setPath(d.data, path, v)
}

func toStrings(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{t}
	default:
		return nil
	}
}
