package document_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nonibytes/keywordize/keywordize/document"
)

func personSchema(t *testing.T) *document.Schema {
	t.Helper()
	s, err := document.NewSchema("people", map[string]document.FieldSpec{
		"name.first": {Type: document.FieldString},
		"name.last":  {Type: document.FieldString},
		"langs":      {Type: document.FieldStringArray},
	})
	require.NoError(t, err)
	return s
}

func TestNewSchemaRejectsBadNames(t *testing.T) {
	_, err := document.NewSchema("bad name", nil)
	assert.ErrorIs(t, err, document.ErrInvalidName)

	_, err = document.NewSchema("ok", map[string]document.FieldSpec{"a..b": {}})
	assert.ErrorIs(t, err, document.ErrInvalidField)

	_, err = document.NewSchema("ok", map[string]document.FieldSpec{"_id": {}})
	assert.ErrorIs(t, err, document.ErrInvalidField)
}

func TestAddFieldCollision(t *testing.T) {
	s := personSchema(t)

	assert.ErrorIs(t, s.AddField("langs", document.FieldSpec{}), document.ErrFieldExists)
	assert.ErrorIs(t, s.AddField("name", document.FieldSpec{}), document.ErrFieldExists)
	assert.ErrorIs(t, s.AddField("name.first.initial", document.FieldSpec{}), document.ErrFieldExists)
	assert.NoError(t, s.AddField("nickname", document.FieldSpec{Type: document.FieldString}))

	assert.Equal(t, []string{"langs", "name.first", "name.last", "nickname"}, s.Fields())
}

func TestFieldSpecKeepsIndex(t *testing.T) {
	s := personSchema(t)
	require.NoError(t, s.AddField("keywords", document.FieldSpec{
		Type:  document.FieldStringArray,
		Index: &document.IndexSpec{Sparse: true},
	}))

	spec, ok := s.Path("keywords")
	require.True(t, ok)
	assert.Equal(t, &document.IndexSpec{Sparse: true}, spec.Index)
	assert.Equal(t, []string{"keywords"}, s.IndexedFields())
	assert.Equal(t, []string{"langs", "keywords"}, s.StringArrayFields())
}

func TestDottedGetSet(t *testing.T) {
	s := personSchema(t)
	doc := s.New(map[string]any{"name": map[string]any{"last": "heckmann"}})

	assert.Equal(t, "heckmann", doc.Get("name.last"))
	assert.Nil(t, doc.Get("name.first"))
	assert.Nil(t, doc.Get("name.last.deeper"))
	assert.Equal(t, []string{}, doc.Get("langs"))

	doc.Set("name.first", "aaron")
	assert.Equal(t, "aaron", doc.Get("name.first"))
	assert.Equal(t, "heckmann", doc.Get("name.last"))

	doc.Set("address.city", "berlin")
	assert.Equal(t, map[string]any{"city": "berlin"}, doc.Get("address"))
}

func TestNewCopiesInput(t *testing.T) {
	s := personSchema(t)
	in := map[string]any{"name": map[string]any{"last": "a"}}
	doc := s.New(in)
	in["name"].(map[string]any)["last"] = "b"
	assert.Equal(t, "a", doc.Get("name.last"))
}

func TestNewKeepsScalarOnStringArrayPath(t *testing.T) {
	s, err := document.NewSchema("notes", map[string]document.FieldSpec{
		"meta.tags": {Type: document.FieldStringArray},
	})
	require.NoError(t, err)

	doc := s.New(map[string]any{"meta": "hello"})
	assert.Equal(t, "hello", doc.Get("meta"))
	assert.Nil(t, doc.Get("meta.tags"))

	doc = s.New(map[string]any{"meta": map[string]any{"title": "x"}})
	assert.Equal(t, []string{}, doc.Get("meta.tags"))
	assert.Equal(t, "x", doc.Get("meta.title"))
}

func TestOverlaps(t *testing.T) {
	assert.True(t, document.Overlaps("meta", "meta"))
	assert.True(t, document.Overlaps("meta", "meta.keywords"))
	assert.True(t, document.Overlaps("meta.keywords", "meta"))
	assert.False(t, document.Overlaps("meta", "metadata"))
	assert.False(t, document.Overlaps("name.first", "name.last"))
}

func TestChangeTracking(t *testing.T) {
	s := personSchema(t)
	doc := s.New(nil)

	assert.True(t, doc.IsNew())
	assert.False(t, doc.IsModified("name.first"))

	doc.Set("name.first", "aaron")
	assert.True(t, doc.IsModified("name.first"))
	assert.True(t, doc.IsModified("name"))
	assert.False(t, doc.IsModified("name.last"))

	doc.Set("name", map[string]any{"last": "x"})
	assert.True(t, doc.IsModified("name.last"))
	assert.Equal(t, []string{"name", "name.first"}, doc.ModifiedPaths())

	doc.MarkSaved()
	assert.False(t, doc.IsNew())
	assert.False(t, doc.IsModified("name"))
	assert.Empty(t, doc.ModifiedPaths())
}

func TestLoadJSON(t *testing.T) {
	s := personSchema(t)
	doc, err := s.LoadJSON("p1", []byte(`{"name":{"first":"jon"},"langs":["en","fr"]}`))
	require.NoError(t, err)

	assert.Equal(t, "p1", doc.ID)
	assert.False(t, doc.IsNew())
	assert.Empty(t, doc.ModifiedPaths())
	assert.Equal(t, []string{"en", "fr"}, doc.Get("langs"))
	assert.Equal(t, []string{"en", "fr"}, doc.Strings("langs"))

	_, err = s.LoadJSON("p2", []byte(`not json`))
	assert.Error(t, err)
}

func TestRunPreSaveStopsAtFirstError(t *testing.T) {
	s := personSchema(t)
	boom := errors.New("boom")
	var calls []string
	s.Pre(func(ctx context.Context, doc *document.Document) error {
		calls = append(calls, "first")
		return boom
	})
	s.Pre(func(ctx context.Context, doc *document.Document) error {
		calls = append(calls, "second")
		return nil
	})

	err := s.RunPreSave(context.Background(), s.New(nil))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first"}, calls)
}
