// Package schema describes the target entity's fields independently of any
// store's metadata format.
//
// Adapters (MongoDB $jsonSchema validators, PostgreSQL catalogs, Ent schema
// definitions, YAML files) expose a Description made of Paths. The walker
// turns those into Fields with a single required/optional classification.
//
// Import Path: kv-shepherd.io/adminseed/internal/schema
package schema

import (
	"context"
	"slices"
)

// ValidatorKind names the rule a validator enforces.
type ValidatorKind string

// ValidatorRequired marks a validator that rejects missing or empty values.
const ValidatorRequired ValidatorKind = "required"

// Validator is one validation rule attached to a path.
type Validator struct {
	Kind    ValidatorKind `yaml:"type"`
	Message string        `yaml:"message,omitempty"`
}

// Path is a declared field as a schema source exposes it.
// A path is mandatory when Required is set or any validator is of kind
// "required"; sources express the constraint either way.
type Path struct {
	Name       string
	Type       string
	Required   bool
	Validators []Validator
}

// IsRequired reports whether either mechanism flags the path as mandatory.
func (p Path) IsRequired() bool {
	return p.Required || slices.ContainsFunc(p.Validators, func(v Validator) bool {
		return v.Kind == ValidatorRequired
	})
}

// Field is the walker's classification of one non-excluded path.
type Field struct {
	Name       string
	Type       string
	IsRequired bool
}

// Description is a snapshot of the target entity's schema.
// Paths must return the same order on every call.
type Description interface {
	Paths() ([]Path, error)
}

// Static is an in-memory Description.
type Static []Path

// Paths implements Description.
func (s Static) Paths() ([]Path, error) {
	return slices.Clone(s), nil
}

// Provider fetches a fresh Description, typically from a live store.
type Provider interface {
	Describe(ctx context.Context) (Description, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (Description, error)

// Describe implements Provider.
func (f ProviderFunc) Describe(ctx context.Context) (Description, error) {
	return f(ctx)
}

// Fixed returns a Provider that always yields desc.
func Fixed(desc Description) Provider {
	return ProviderFunc(func(context.Context) (Description, error) {
		return desc, nil
	})
}
