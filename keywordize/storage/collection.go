package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nonibytes/keywordize/keywordize"
	"github.com/nonibytes/keywordize/keywordize/document"
)

// Collection stores the documents of one schema.
type Collection struct {
	store  *Store
	schema *document.Schema
	log    *logrus.Entry
}

// Schema returns the collection schema
func (c *Collection) Schema() *document.Schema {
	return c.schema
}

// New creates an unsaved document
func (c *Collection) New(data map[string]any) *document.Document {
	return c.schema.New(data)
}

// Save runs the schema's pre-save hooks and then writes doc. A hook error
// aborts the write and leaves doc unchanged apart from what the hooks did.
// Documents without an ID get one once the hooks pass. On success the
// document's change-tracking state is reset.
func (c *Collection) Save(ctx context.Context, doc *document.Document) error {
	switch {
	case doc.Schema() == nil:
		return keywordize.Wrap(keywordize.ErrConfig, "save", ErrSchemaMissing)
	case doc.Schema() != c.schema:
		return keywordize.Wrap(keywordize.ErrConfig, "save "+doc.Schema().Name()+" document", ErrWrongSchema)
	}
	if err := c.schema.RunPreSave(ctx, doc); err != nil {
		return fmt.Errorf("pre-save %s: %w", c.schema.Name(), err)
	}
	if doc.ID == "" {
		doc.ID = c.store.opts.NewID()
	}

	dataJSON, err := json.Marshal(doc)
	if err != nil {
		return keywordize.Wrap(keywordize.ErrIO, "encode document", err)
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return keywordize.Wrap(keywordize.ErrSQL, "begin transaction", err)
	}
	defer tx.Rollback()

	sqlt := c.store.adapter.SQL()
	nowMS := c.store.nowMS()

	var rowID int64
	err = tx.QueryRowContext(ctx, sqlt.UpsertDocument, c.schema.Name(), doc.ID, string(dataJSON), nowMS, nowMS).Scan(&rowID)
	if err != nil {
		return keywordize.Wrap(keywordize.ErrSQL, "upsert document", err)
	}

	if _, err := tx.ExecContext(ctx, sqlt.DeleteKeywords, rowID); err != nil {
		return keywordize.Wrap(keywordize.ErrSQL, "delete keywords", err)
	}
	rows := 0
	for _, field := range c.schema.StringArrayFields() {
		for pos, value := range doc.Strings(field) {
			if _, err := tx.ExecContext(ctx, sqlt.InsertKeyword, rowID, c.schema.Name(), field, pos, value); err != nil {
				return &keywordize.Error{Kind: keywordize.ErrSQL, Message: fmt.Sprintf("insert keyword %q", value), Field: field, Cause: err}
			}
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		return keywordize.Wrap(keywordize.ErrSQL, "commit", err)
	}

	c.log.WithFields(logrus.Fields{
		"id":       doc.ID,
		"new":      doc.IsNew(),
		"modified": doc.ModifiedPaths(),
		"keywords": rows,
	}).Debug("document saved")
	doc.MarkSaved()
	return nil
}

// Get loads a document by ID
func (c *Collection) Get(ctx context.Context, id string) (*document.Document, error) {
	sqlt := c.store.adapter.SQL()
	var dataJSON string
	var createdAt, updatedAt int64

	err := c.store.db.QueryRowContext(ctx, sqlt.GetDocument, c.schema.Name(), id).Scan(&dataJSON, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, keywordize.Wrap(keywordize.ErrNotFound, c.schema.Name()+"/"+id, ErrNotFound)
	}
	if err != nil {
		return nil, keywordize.Wrap(keywordize.ErrSQL, "get document", err)
	}
	doc, err := c.schema.LoadJSON(id, []byte(dataJSON))
	if err != nil {
		return nil, keywordize.Wrap(keywordize.ErrIO, "decode document", err)
	}
	return doc, nil
}

// Delete removes a document by ID and reports whether it existed.
func (c *Collection) Delete(ctx context.Context, id string) (bool, error) {
	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return false, keywordize.Wrap(keywordize.ErrSQL, "begin transaction", err)
	}
	defer tx.Rollback()

	sqlt := c.store.adapter.SQL()
	var rowID int64
	err = tx.QueryRowContext(ctx, sqlt.FindDocumentID, c.schema.Name(), id).Scan(&rowID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, keywordize.Wrap(keywordize.ErrSQL, "find document", err)
	}

	if _, err := tx.ExecContext(ctx, sqlt.DeleteKeywords, rowID); err != nil {
		return false, keywordize.Wrap(keywordize.ErrSQL, "delete keywords", err)
	}
	if _, err := tx.ExecContext(ctx, sqlt.DeleteDocument, rowID); err != nil {
		return false, keywordize.Wrap(keywordize.ErrSQL, "delete document", err)
	}
	if err := tx.Commit(); err != nil {
		return false, keywordize.Wrap(keywordize.ErrSQL, "commit", err)
	}
	return true, nil
}

// FindByKeyword returns the documents whose string-array field contains
// value exactly, oldest first. A limit of zero or less means no limit.
func (c *Collection) FindByKeyword(ctx context.Context, field, value string, limit int) ([]*document.Document, error) {
	b := c.store.builder()
	query := fmt.Sprintf(
		"SELECT doc_id, data_json FROM documents WHERE id IN (SELECT document_id FROM document_keywords WHERE collection = %s AND field = %s AND value = %s) ORDER BY id",
		b.Arg(c.schema.Name()), b.Arg(field), b.Arg(value))
	if limit > 0 {
		query += " LIMIT " + b.Arg(limit)
	}

	rows, err := c.store.db.QueryContext(ctx, query, b.Args()...)
	if err != nil {
		return nil, keywordize.Wrap(keywordize.ErrSQL, "find by keyword", err)
	}
	defer rows.Close()

	var out []*document.Document
	for rows.Next() {
		var id, dataJSON string
		if err := rows.Scan(&id, &dataJSON); err != nil {
			return nil, keywordize.Wrap(keywordize.ErrSQL, "scan document", err)
		}
		doc, err := c.schema.LoadJSON(id, []byte(dataJSON))
		if err != nil {
			return nil, keywordize.Wrap(keywordize.ErrIO, "decode document", err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, keywordize.Wrap(keywordize.ErrSQL, "iterate documents", err)
	}
	return out, nil
}

// Count returns the number of documents in the collection
func (c *Collection) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := c.store.db.QueryRowContext(ctx, c.store.adapter.SQL().CountDocuments, c.schema.Name()).Scan(&n); err != nil {
		return 0, keywordize.Wrap(keywordize.ErrSQL, "count documents", err)
	}
	return n, nil
}
