// Package keywordize derives a searchable keyword set from selected fields of
// a document and keeps it current whenever those fields change.
//
// Configure attaches the behavior to a document.Schema: it declares the
// derived []string field, optionally indexes it, and registers a pre-save
// hook that recomputes the keywords for new documents and for documents
// whose source fields were modified.
package keywordize

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nonibytes/keywordize/keywordize/document"
)

// Keywordizer computes keywords for documents of one schema.
type Keywordizer struct {
	cfg *config
	log *logrus.Entry
}

// Configure validates opts, declares the keyword field on schema and
// registers the pre-save hook. It must run once per schema, before any
// document is created.
func Configure(schema *document.Schema, opts Options) (*Keywordizer, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	spec := document.FieldSpec{Type: document.FieldStringArray, Index: cfg.index}
	if err := schema.AddField(cfg.keywordField, spec); err != nil {
		return nil, CollisionError(cfg.keywordField, err)
	}

	log := opts.Logger
	if log == nil {
		log = logrus.WithField("component", "keywordize")
	}
	k := &Keywordizer{
		cfg: cfg,
		log: log.WithField("schema", schema.Name()),
	}
	schema.Pre(k.preSave)

	k.log.WithFields(logrus.Fields{
		"fields":        cfg.fields,
		"keyword_field": cfg.keywordField,
		"indexed":       cfg.index != nil,
	}).Debug("keywordize configured")
	return k, nil
}

// Fields returns a copy of the configured source fields
func (k *Keywordizer) Fields() []string {
	return append([]string(nil), k.cfg.fields...)
}

// KeywordField returns the derived field name
func (k *Keywordizer) KeywordField() string {
	return k.cfg.keywordField
}

// Keywordize recomputes the keyword set of doc, stores it in the keyword
// field and returns the stored slice. Fields are visited last to first and
// tokens within a field first to last; the first occurrence of a token wins.
// Errors from the Fn or Map callbacks are returned and leave doc untouched.
func (k *Keywordizer) Keywordize(doc *document.Document) ([]string, error) {
	values := make([]value, 0, len(k.cfg.fields)+1)
	for _, field := range k.cfg.fields {
		raw := doc.Get(field)
		if k.cfg.mapFn != nil {
			mapped, err := k.cfg.mapFn(field, raw)
			if err != nil {
				return nil, UserFuncError(field, err)
			}
			raw = mapped
		}
		values = append(values, newValue(raw))
	}

	if k.cfg.fn != nil {
		res, err := k.cfg.fn(doc)
		if err != nil {
			return nil, UserFuncError("", err)
		}
		if res != nil {
			values = append(values, newSequence(res))
		}
	}

	keywords := make([]string, 0)
	seen := make(map[string]bool)
	for i := len(values) - 1; i >= 0; i-- {
		for _, word := range values[i].candidates() {
			word = strings.TrimSpace(word)
			if word == "" {
				continue
			}
			if !k.cfg.upper {
				word = strings.ToLower(word)
			}
			if seen[word] {
				continue
			}
			seen[word] = true
			keywords = append(keywords, word)
		}
	}

	doc.Set(k.cfg.keywordField, keywords)
	return keywords, nil
}

// Changed reports whether doc needs its keywords recomputed before a write.
func (k *Keywordizer) Changed(doc *document.Document) bool {
	if doc.IsNew() {
		return true
	}
	for _, field := range k.cfg.fields {
		if doc.IsModified(field) {
			return true
		}
	}
	return false
}

func (k *Keywordizer) preSave(ctx context.Context, doc *document.Document) error {
	if !k.Changed(doc) {
		return nil
	}
	keywords, err := k.Keywordize(doc)
	if err != nil {
		return err
	}
	k.log.WithFields(logrus.Fields{
		"id":       doc.ID,
		"new":      doc.IsNew(),
		"keywords": len(keywords),
	}).Debug("keywords refreshed")
	return nil
}
