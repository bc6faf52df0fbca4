// Package query selects registered environments by exact field predicates
// or by boolean expressions over their JSON documents.
package query

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/opmodel/devenv/internal/environment"
	oerrors "github.com/opmodel/devenv/internal/errors"
	"github.com/opmodel/devenv/internal/output"
)

// Source enumerates configurations keyed by identity. *registry.Registry
// satisfies it.
type Source interface {
	GetAll() (map[string]*environment.Configuration, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func() (map[string]*environment.Configuration, error)

// GetAll calls f.
func (f SourceFunc) GetAll() (map[string]*environment.Configuration, error) {
	return f()
}

// Result maps identities to matching configurations.
type Result map[string]*environment.Configuration

// IDs returns the identities in r, sorted.
func (r Result) IDs() []string {
	ids := make([]string, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Sorted returns the configurations in r ordered by identity.
func (r Result) Sorted() []*environment.Configuration {
	out := make([]*environment.Configuration, 0, len(r))
	for _, id := range r.IDs() {
		out = append(out, r[id])
	}
	return out
}

// Search returns the configurations whose document satisfies every
// predicate. Keys are field names or dotted paths into nested objects
// ("install.packages"); values must equal the field exactly after JSON
// normalization. A missing field fails its predicate.
//
// An empty predicate set is rejected with errors.ErrEmptyQuery; callers that
// want everything use the source's GetAll.
func Search(src Source, preds map[string]interface{}) (Result, error) {
	if len(preds) == 0 {
		return nil, oerrors.Wrap(oerrors.ErrEmptyQuery, "search requires at least one predicate")
	}

	want := make(map[string]interface{}, len(preds))
	for key, value := range preds {
		if key == "" {
			return nil, oerrors.NewValidationError("predicate key must not be empty", "", "")
		}
		norm, err := normalize(value)
		if err != nil {
			return nil, fmt.Errorf("predicate %s: %w", key, err)
		}
		want[key] = norm
	}

	all, err := src.GetAll()
	if err != nil {
		return nil, err
	}

	out := Result{}
	for id, cfg := range all {
		doc, err := document(id, cfg)
		if err != nil {
			output.Debug("skipping unencodable configuration", "id", id, "error", err)
			continue
		}
		if matchAll(doc, want) {
			out[id] = cfg
		}
	}
	return out, nil
}

func matchAll(doc map[string]interface{}, want map[string]interface{}) bool {
	for key, value := range want {
		got, ok := Lookup(doc, key)
		if !ok || !reflect.DeepEqual(got, value) {
			return false
		}
	}
	return true
}

// Lookup resolves a dotted path in a JSON document.
func Lookup(doc map[string]interface{}, path string) (interface{}, bool) {
	var cur interface{} = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// document returns the JSON form of cfg with its identity injected.
func document(id string, cfg *environment.Configuration) (map[string]interface{}, error) {
	withID := cfg.Clone()
	withID.ID = id
	return withID.Document()
}

// normalize converts v into the types encoding/json produces, so a Go int
// compares equal to a decoded float64 and a []string to a []interface{}.
func normalize(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding value: %w", err)
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding value: %w", err)
	}
	return out, nil
}

// ParsePredicates parses KEY=VALUE options into predicates. A value that is
// a JSON array or object is decoded, so list fields can be matched;
// anything else is kept as a string.
func ParsePredicates(options []string) (map[string]interface{}, error) {
	preds := make(map[string]interface{}, len(options))
	for _, opt := range options {
		key, value, ok := strings.Cut(opt, "=")
		if !ok || key == "" {
			return nil, oerrors.NewValidationError(
				fmt.Sprintf("invalid option %q: expected KEY=VALUE", opt), "",
				"Use dotted keys for nested fields, e.g. install.packages=[\"numpy\"]")
		}
		preds[key] = parseValue(value)
	}
	return preds, nil
}

func parseValue(s string) interface{} {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		var v interface{}
		if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
			return v
		}
	}
	return s
}
