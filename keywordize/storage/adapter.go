package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nonibytes/keywordize/keywordize/document"
	"github.com/nonibytes/keywordize/keywordize/storage/sqlbuilder"
)

type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// Adapter abstracts database-specific operations
type Adapter interface {
	Backend() Backend
	PlaceholderStyle() sqlbuilder.PlaceholderStyle
	StoreID() string

	Connect(ctx context.Context) (*sql.DB, error)
	Close() error

	// Migrate creates the base tables and stamps the store metadata.
	Migrate(ctx context.Context, db *sql.DB) error
	// CreateKeywordIndex declares an index over one string-array field of a collection.
	CreateKeywordIndex(ctx context.Context, db *sql.DB, collection, field string, spec document.IndexSpec) error

	SQL() SQL
}

// SQL holds prepared SQL templates for common operations
type SQL struct {
	GetMeta string
	SetMeta string

	GetDocument    string
	FindDocumentID string
	UpsertDocument string
	DeleteDocument string
	CountDocuments string

	DeleteKeywords string
	InsertKeyword  string
}

// Meta keys written by Migrate.
const (
	MetaMagic   = "keywordize_magic"
	MetaVersion = "keywordize_version"

	Magic         = "keywordize"
	SchemaVersion = "1"
)

// KeywordIndexDDL builds the partial index statement used by both SQL
// backends. Keyword rows only exist for present tokens; Sparse additionally
// leaves empty strings out of the index.
func KeywordIndexDDL(collection, field string, spec document.IndexSpec) (string, error) {
	name := spec.Name
	if name == "" {
		name = sqlbuilder.IndexName(collection, field)
	}
	ident, err := sqlbuilder.QuoteIdent(name)
	if err != nil {
		return "", err
	}

	kind := "INDEX"
	if spec.Unique {
		kind = "UNIQUE INDEX"
	}
	stmt := fmt.Sprintf("CREATE %s IF NOT EXISTS %s ON document_keywords(value) WHERE collection = %s AND field = %s",
		kind, ident, sqlbuilder.QuoteLiteral(collection), sqlbuilder.QuoteLiteral(field))
	if spec.Sparse {
		stmt += " AND value <> ''"
	}
	return stmt, nil
}

// StampMeta writes the store magic and version rows.
func StampMeta(ctx context.Context, db *sql.DB, sqlt SQL) error {
	if _, err := db.ExecContext(ctx, sqlt.SetMeta, MetaMagic, Magic); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx, sqlt.SetMeta, MetaVersion, SchemaVersion)
	return err
}

// CheckMeta verifies that db was migrated by this module.
func CheckMeta(ctx context.Context, db *sql.DB, sqlt SQL) error {
	var magic string
	if err := db.QueryRowContext(ctx, sqlt.GetMeta, MetaMagic).Scan(&magic); err != nil {
		return err
	}
	if magic != Magic {
		return fmt.Errorf("not a keywordize store")
	}
	return nil
}
