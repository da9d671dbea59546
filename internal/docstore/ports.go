// Package docstore defines the outbound port for the hosted document store
// and the merge semantics every backend must honor.
package docstore

import "context"

// Document is a loosely-typed document body as stored remotely.
type Document map[string]any

// Store is the port for collection/document addressed storage.
type Store interface {
	// Get returns the document, or ok=false when it does not exist.
	// Absence is not an error.
	Get(ctx context.Context, collection, id string) (doc Document, ok bool, err error)

	// SetMerge writes a partial document, deep-merging maps into the stored
	// document and replacing every other field kind wholesale. Creates the
	// document when absent.
	SetMerge(ctx context.Context, collection, id string, partial Document) error
}

// Merge deep-merges partial into base and returns the result. Nested maps
// merge key by key; lists and scalars replace. Neither input is mutated.
func Merge(base, partial map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(partial))
	for k, v := range base {
		out[k] = Clone(v)
	}
	for k, v := range partial {
		if pm, ok := v.(map[string]any); ok {
			if bm, ok := out[k].(map[string]any); ok {
				out[k] = Merge(bm, pm)
				continue
			}
		}
		out[k] = Clone(v)
	}
	return out
}

// NormalizeNumbers converts encoding/json float64 numbers to int64 when they
// are integral. Backends that round-trip documents through JSON use this so
// whole rupiah amounts come back as int64, matching the hosted store.
func NormalizeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = NormalizeNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = NormalizeNumbers(e)
		}
		return t
	case float64:
		if t == float64(int64(t)) {
			return int64(t)
		}
		return t
	default:
		return v
	}
}

// Clone deep-copies a document value so callers cannot alias stored state.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Clone(e)
		}
		return out
	case Document:
		return Clone(map[string]any(t))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Clone(e)
		}
		return out
	default:
		return v
	}
}
