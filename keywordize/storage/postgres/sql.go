package postgres

import "github.com/nonibytes/keywordize/keywordize/storage"

const ddlBase = `
CREATE TABLE IF NOT EXISTS meta (
  key   TEXT PRIMARY KEY,
  value TEXT
);

CREATE TABLE IF NOT EXISTS documents (
  id         BIGSERIAL PRIMARY KEY,
  collection TEXT   NOT NULL,
  doc_id     TEXT   NOT NULL,
  data_json  JSONB  NOT NULL,
  created_at BIGINT NOT NULL,
  updated_at BIGINT NOT NULL,
  UNIQUE (collection, doc_id)
);
CREATE INDEX IF NOT EXISTS idx_documents_updated ON documents(collection, updated_at);

CREATE TABLE IF NOT EXISTS document_keywords (
  document_id BIGINT  NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
  collection  TEXT    NOT NULL,
  field       TEXT    NOT NULL,
  position    INTEGER NOT NULL,
  value       TEXT    NOT NULL,
  PRIMARY KEY (document_id, field, position)
);
CREATE INDEX IF NOT EXISTS idx_document_keywords_lookup ON document_keywords(collection, field, value);
`

var SQLTemplates = storage.SQL{
	GetMeta:        "SELECT value FROM meta WHERE key = $1",
	SetMeta:        "INSERT INTO meta(key,value) VALUES($1,$2) ON CONFLICT(key) DO UPDATE SET value=EXCLUDED.value",
	GetDocument:    "SELECT data_json::text, created_at, updated_at FROM documents WHERE collection = $1 AND doc_id = $2",
	FindDocumentID: "SELECT id FROM documents WHERE collection = $1 AND doc_id = $2",
	UpsertDocument: `INSERT INTO documents(collection, doc_id, data_json, created_at, updated_at)
	        VALUES($1, $2, $3::jsonb, $4, $5)
	        ON CONFLICT(collection, doc_id) DO UPDATE
	          SET data_json=EXCLUDED.data_json,
	              updated_at=EXCLUDED.updated_at
	        RETURNING id`,
	DeleteDocument: "DELETE FROM documents WHERE id = $1",
	CountDocuments: "SELECT COUNT(*) FROM documents WHERE collection = $1",
	DeleteKeywords: "DELETE FROM document_keywords WHERE document_id = $1",
	InsertKeyword:  "INSERT INTO document_keywords(document_id, collection, field, position, value) VALUES($1, $2, $3, $4, $5)",
}
