package keywordize

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nonibytes/keywordize/keywordize/document"
)

// DefaultKeywordField is the name of the derived field when none is given.
const DefaultKeywordField = "keywords"

// Func computes extra keywords from a whole document. It may return nil,
// a string, a []string or a []any of strings.
type Func func(doc *document.Document) (any, error)

// MapFunc replaces the raw value read from a configured field.
type MapFunc func(field string, raw any) (any, error)

// Options configures Configure.
type Options struct {
	// Fields lists the dotted field paths keywords are taken from.
	Fields []string
	Fn     Func
	Map    MapFunc
	// KeywordField names the derived field; defaults to "keywords".
	KeywordField string
	// Upper keeps tokens in their original case instead of lowercasing them.
	Upper bool
	// Index, when set, is declared on the derived field as is.
	Index  *document.IndexSpec
	Logger *logrus.Entry
}

// config is the immutable result of normalizing Options.
type config struct {
	fields       []string
	fn           Func
	mapFn        MapFunc
	keywordField string
	upper        bool
	index        *document.IndexSpec
}

func newConfig(opts Options) (*config, error) {
	fields := make([]string, 0, len(opts.Fields))
	for _, f := range opts.Fields {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return nil, ConfigError("at least one field is required")
	}

	cfg := &config{
		fields:       fields,
		fn:           opts.Fn,
		mapFn:        opts.Map,
		keywordField: opts.KeywordField,
		upper:        opts.Upper,
	}
	if cfg.keywordField == "" {
		cfg.keywordField = DefaultKeywordField
	}
	for _, f := range fields {
		if document.Overlaps(f, cfg.keywordField) {
			return nil, &Error{Kind: ErrConfig, Message: "keyword field overlaps a source field", Field: f}
		}
	}
	if opts.Index != nil {
		spec := *opts.Index
		cfg.index = &spec
	}
	return cfg, nil
}
