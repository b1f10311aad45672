package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nonibytes/keywordize/keywordize"
	"github.com/nonibytes/keywordize/keywordize/document"
	"github.com/nonibytes/keywordize/keywordize/storage"
	"github.com/nonibytes/keywordize/keywordize/storage/postgres"
	"github.com/nonibytes/keywordize/keywordize/storage/sqlbuilder"
)

func TestAdapterBasics(t *testing.T) {
	a := postgres.New("postgresql://localhost/db", "")
	assert.Equal(t, postgres.DefaultSchema, a.Schema)
	assert.Equal(t, "postgres:keywordize", a.StoreID())
	assert.Equal(t, storage.BackendPostgres, a.Backend())
	assert.Equal(t, sqlbuilder.PlaceholderDollar, a.PlaceholderStyle())
}

func TestConnectRejectsBadSchemaName(t *testing.T) {
	a := postgres.New("postgresql://localhost/db", `bad"schema`)
	_, err := a.Connect(context.Background())
	assert.Error(t, err)
}

// TestSaveAndFind_Postgres runs against a live server when
// KEYWORDIZE_TEST_POSTGRES_DSN is set.
func TestSaveAndFind_Postgres(t *testing.T) {
	dsn := os.Getenv("KEYWORDIZE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("KEYWORDIZE_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	opts := storage.DefaultOptions()
	opts.Logger = logrus.NewEntry(log)

	st, err := storage.Open(ctx, postgres.New(dsn, "keywordize_test"), opts)
	require.NoError(t, err)
	defer st.Close()
	_, err = st.DB().ExecContext(ctx, "DELETE FROM document_keywords; DELETE FROM documents")
	require.NoError(t, err)

	schema, err := document.NewSchema("articles", map[string]document.FieldSpec{
		"title":  {Type: document.FieldString},
		"topics": {Type: document.FieldStringArray},
	})
	require.NoError(t, err)
	_, err = keywordize.Configure(schema, keywordize.Options{
		Fields: []string{"title", "topics"},
		Index:  &document.IndexSpec{Sparse: true},
		Logger: opts.Logger,
	})
	require.NoError(t, err)

	coll, err := st.Collection(ctx, schema)
	require.NoError(t, err)

	doc := coll.New(map[string]any{"title": "Go Generics", "topics": []string{"Go", "Types"}})
	require.NoError(t, coll.Save(ctx, doc))
	assert.Equal(t, []string{"go", "types", "generics"}, doc.Get("keywords"))

	found, err := coll.FindByKeyword(ctx, "keywords", "generics", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, doc.ID, found[0].ID)
	assert.Equal(t, []string{"go", "types", "generics"}, found[0].Get("keywords"))

	deleted, err := coll.Delete(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
}
