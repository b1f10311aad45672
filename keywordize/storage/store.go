package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nonibytes/keywordize/keywordize"
	"github.com/nonibytes/keywordize/keywordize/document"
	"github.com/nonibytes/keywordize/keywordize/storage/sqlbuilder"
)

var (
	ErrNotFound      = errors.New("document not found")
	ErrSchemaMissing = errors.New("document has no schema")
	ErrWrongSchema   = errors.New("document belongs to another collection")
)

// Options configures a Store
type Options struct {
	Logger *logrus.Entry
	Now    func() time.Time
	NewID  func() string
}

// DefaultOptions returns sensible defaults
func DefaultOptions() Options {
	return Options{
		Logger: logrus.WithField("component", "storage"),
		Now:    time.Now,
		NewID:  uuid.NewString,
	}
}

// Store persists documents of any number of collections in one database.
type Store struct {
	adapter Adapter
	db      *sql.DB
	opts    Options
	log     *logrus.Entry
}

// Open connects through adapter and prepares the base tables.
func Open(ctx context.Context, adapter Adapter, opts Options) (*Store, error) {
	defaults := DefaultOptions()
	if opts.Logger == nil {
		opts.Logger = defaults.Logger
	}
	if opts.Now == nil {
		opts.Now = defaults.Now
	}
	if opts.NewID == nil {
		opts.NewID = defaults.NewID
	}

	db, err := adapter.Connect(ctx)
	if err != nil {
		return nil, keywordize.Wrap(keywordize.ErrIO, "connect to database", err)
	}
	if err := adapter.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, keywordize.Wrap(keywordize.ErrSQL, "migrate", err)
	}
	if err := CheckMeta(ctx, db, adapter.SQL()); err != nil {
		db.Close()
		return nil, keywordize.Wrap(keywordize.ErrSQL, "check store metadata", err)
	}

	log := opts.Logger.WithFields(logrus.Fields{
		"backend": adapter.Backend(),
		"store":   adapter.StoreID(),
	})
	log.Debug("store opened")
	return &Store{adapter: adapter, db: db, opts: opts, log: log}, nil
}

// Close closes the store
func (s *Store) Close() error {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return keywordize.Wrap(keywordize.ErrIO, "close database", err)
		}
	}
	return s.adapter.Close()
}

// Adapter returns the underlying storage adapter
func (s *Store) Adapter() Adapter {
	return s.adapter
}

// DB returns the underlying database connection (for advanced use)
func (s *Store) DB() *sql.DB {
	return s.db
}

// Collection binds schema to the store and declares the indexes of its
// indexed fields. Only string-array fields can be indexed.
func (s *Store) Collection(ctx context.Context, schema *document.Schema) (*Collection, error) {
	for _, field := range schema.IndexedFields() {
		spec, _ := schema.Path(field)
		if spec.Type != document.FieldStringArray {
			e := keywordize.New(keywordize.ErrConfig, fmt.Sprintf("only %s fields can be indexed in %s", document.FieldStringArray, schema.Name()))
			e.Field = field
			return nil, e
		}
		if err := s.adapter.CreateKeywordIndex(ctx, s.db, schema.Name(), field, *spec.Index); err != nil {
			return nil, &keywordize.Error{Kind: keywordize.ErrSQL, Message: "create index on " + schema.Name(), Field: field, Cause: err}
		}
		s.log.WithFields(logrus.Fields{
			"collection": schema.Name(),
			"field":      field,
			"unique":     spec.Index.Unique,
			"sparse":     spec.Index.Sparse,
		}).Info("keyword index declared")
	}
	return &Collection{
		store:  s,
		schema: schema,
		log:    s.log.WithField("collection", schema.Name()),
	}, nil
}

func (s *Store) nowMS() int64 {
	return s.opts.Now().UnixMilli()
}

func (s *Store) builder() *sqlbuilder.Builder {
	return sqlbuilder.New(s.adapter.PlaceholderStyle())
}
