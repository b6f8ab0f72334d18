// Package domain holds the record and outcome types shared across the seeding pipeline.
//
// Import Path: kv-shepherd.io/adminseed/internal/domain
package domain

import (
	"maps"
	"slices"
)

// Record is a schemaless document: field name to value.
// Values are whatever the store decodes (strings, numbers, nested maps).
type Record map[string]any

// Clone returns a shallow copy of r. A nil record clones to an empty one.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	maps.Copy(out, r)
	return out
}

// IsBlank reports whether field is absent, nil, or the empty string.
func (r Record) IsBlank(field string) bool {
	v, ok := r[field]
	if !ok || v == nil {
		return true
	}
	s, isString := v.(string)
	return isString && s == ""
}

// String returns the value of field when it holds a string.
func (r Record) String(field string) (string, bool) {
	s, ok := r[field].(string)
	return s, ok
}

// Keys returns the field names of r in sorted order.
func (r Record) Keys() []string {
	return slices.Sorted(maps.Keys(r))
}

// Merge returns a new record holding every field of existing with each
// override applied on top. Fields absent from overrides keep their value.
// Neither input is modified.
func Merge(existing, overrides Record) Record {
	out := existing.Clone()
	maps.Copy(out, overrides)
	return out
}

// Outcome is the terminal state of a reconciliation.
type Outcome string

const (
	// OutcomeCreated means no record carried the key and one was inserted.
	OutcomeCreated Outcome = "created"
	// OutcomeUpdated means the existing record was selectively overwritten.
	OutcomeUpdated Outcome = "updated"
)
