package schema

import (
	"fmt"
	"iter"

	apperrors "kv-shepherd.io/adminseed/internal/pkg/errors"
)

// Exclusions is the set of system-managed field names the walker skips.
type Exclusions map[string]struct{}

// NewExclusions builds an exclusion set from names.
func NewExclusions(names ...string) Exclusions {
	ex := make(Exclusions, len(names))
	for _, n := range names {
		ex[n] = struct{}{}
	}
	return ex
}

// Has reports whether name is excluded.
func (e Exclusions) Has(name string) bool {
	_, ok := e[name]
	return ok
}

// DefaultExcludedFields are managed by the store or by the password-reset
// flow and must never be populated by the seeder. Both camelCase (document
// stores) and snake_case (SQL columns, Ent) spellings are listed.
var DefaultExcludedFields = []string{
	"_id",
	"id",
	"__v",
	"createdAt",
	"updatedAt",
	"created_at",
	"updated_at",
	"passwordResetToken",
	"passwordResetExpires",
	"password_reset_token",
	"password_reset_expires",
}

// DefaultExclusions returns a fresh set of DefaultExcludedFields.
func DefaultExclusions() Exclusions {
	return NewExclusions(DefaultExcludedFields...)
}

// Enumerate yields every non-excluded field of desc in the order desc exposes.
//
// The sequence is lazy and restartable: each range re-reads desc.Paths.
// A malformed description (read failure, blank or duplicate names) yields a
// single error element wrapping ErrMalformedSchema and ends the sequence.
func Enumerate(desc Description, excluded Exclusions) iter.Seq2[Field, error] {
	return func(yield func(Field, error) bool) {
		if desc == nil {
			yield(Field{}, fmt.Errorf("%w: nil description", apperrors.ErrMalformedSchema))
			return
		}
		paths, err := desc.Paths()
		if err != nil {
			yield(Field{}, fmt.Errorf("%w: %w", apperrors.ErrMalformedSchema, err))
			return
		}

		seen := make(map[string]struct{}, len(paths))
		for i, p := range paths {
			if p.Name == "" {
				yield(Field{}, fmt.Errorf("%w: path %d has no name", apperrors.ErrMalformedSchema, i))
				return
			}
			if _, dup := seen[p.Name]; dup {
				yield(Field{}, fmt.Errorf("%w: duplicate path %q", apperrors.ErrMalformedSchema, p.Name))
				return
			}
			seen[p.Name] = struct{}{}

			if excluded.Has(p.Name) {
				continue
			}
			if !yield(Field{Name: p.Name, Type: p.Type, IsRequired: p.IsRequired()}, nil) {
				return
			}
		}
	}
}
