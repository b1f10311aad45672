package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/nonibytes/keywordize/keywordize/document"
	"github.com/nonibytes/keywordize/keywordize/storage"
	"github.com/nonibytes/keywordize/keywordize/storage/sqlbuilder"
)

// DefaultSchema is the PostgreSQL schema used when none is given.
const DefaultSchema = "keywordize"

type Adapter struct {
	DSN    string
	Schema string // used as dedicated schema via search_path
}

func New(dsn, schema string) *Adapter {
	if schema == "" {
		schema = DefaultSchema
	}
	return &Adapter{DSN: dsn, Schema: schema}
}

func (a *Adapter) Backend() storage.Backend { return storage.BackendPostgres }

func (a *Adapter) PlaceholderStyle() sqlbuilder.PlaceholderStyle { return sqlbuilder.PlaceholderDollar }

func (a *Adapter) StoreID() string { return "postgres:" + a.Schema }

func (a *Adapter) Close() error { return nil }

func (a *Adapter) SQL() storage.SQL { return SQLTemplates }

func (a *Adapter) ensureSchema(ctx context.Context, db *sql.DB) error {
	ident, err := sqlbuilder.QuoteIdent(a.Schema)
	if err != nil {
		return fmt.Errorf("postgres schema: %w", err)
	}
	_, err = db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+ident)
	return err
}

func (a *Adapter) Connect(ctx context.Context) (*sql.DB, error) {
	ident, err := sqlbuilder.QuoteIdent(a.Schema)
	if err != nil {
		return nil, fmt.Errorf("postgres schema: %w", err)
	}

	// 1) Connect without search_path to ensure schema exists
	cfg0, err := pgx.ParseConfig(a.DSN)
	if err != nil {
		return nil, err
	}
	db0 := stdlib.OpenDB(*cfg0)
	if err := db0.PingContext(ctx); err != nil {
		_ = db0.Close()
		return nil, err
	}
	if err := a.ensureSchema(ctx, db0); err != nil {
		_ = db0.Close()
		return nil, err
	}
	_ = db0.Close()

	// 2) Connect with search_path pinned to the schema
	cfg, err := pgx.ParseConfig(a.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.RuntimeParams == nil {
		cfg.RuntimeParams = make(map[string]string)
	}
	cfg.RuntimeParams["search_path"] = fmt.Sprintf("%s,public", ident)

	db := stdlib.OpenDB(*cfg)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (a *Adapter) Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, ddlBase); err != nil {
		return err
	}
	return storage.StampMeta(ctx, db, a.SQL())
}

func (a *Adapter) CreateKeywordIndex(ctx context.Context, db *sql.DB, collection, field string, spec document.IndexSpec) error {
	stmt, err := storage.KeywordIndexDDL(collection, field, spec)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, stmt)
	return err
}
