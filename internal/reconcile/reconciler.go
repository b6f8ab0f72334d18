package reconcile

import (
	"context"
	"errors"

	"kv-shepherd.io/adminseed/internal/domain"
	apperrors "kv-shepherd.io/adminseed/internal/pkg/errors"
)

// Store is the record interface the reconciler drives.
//
// Implementations must enforce at most one record per key where the backend
// allows it; Create returns an error wrapping ErrAlreadyExists on conflict.
type Store interface {
	// FindOne returns the record stored under key or an error wrapping ErrNotFound.
	FindOne(ctx context.Context, key string) (domain.Record, error)
	// Create inserts rec as a new record.
	Create(ctx context.Context, rec domain.Record) error
	// Save applies changes to the record stored under key in one atomic write.
	Save(ctx context.Context, key string, changes domain.Record) error
}

// Result reports what a reconciliation did.
type Result struct {
	Outcome domain.Outcome
	// Record is the stored record as it stands after the write.
	Record domain.Record
	// Changes is the override set written on update; nil after a create.
	Changes domain.Record
}

// Reconciler runs the lookup, then create-or-save, sequence.
// It takes no locks; concurrent runs for the same key rely on the store's
// uniqueness guarantee.
type Reconciler struct {
	store  Store
	policy Policy
}

// New creates a Reconciler.
func New(store Store, policy Policy) *Reconciler {
	return &Reconciler{store: store, policy: policy}
}

// Reconcile makes the stored record for email match candidate.
//
// Without a stored record, candidate is inserted in full. Otherwise only
// the policy's overrides are written and all other stored fields survive.
// Store failures come back as PERSISTENCE_FAILED errors; nothing is retried.
func (r *Reconciler) Reconcile(ctx context.Context, email string, candidate, synthesized domain.Record, secretHash string) (*Result, error) {
	existing, err := r.store.FindOne(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return r.create(ctx, candidate)
	case err != nil:
		return nil, apperrors.PersistenceFailed("lookup", err)
	}

	changes := r.policy.Overrides(candidate, synthesized, secretHash)
	if err := r.store.Save(ctx, email, changes); err != nil {
		return nil, apperrors.PersistenceFailed("save", err)
	}
	return &Result{
		Outcome: domain.OutcomeUpdated,
		Record:  domain.Merge(existing, changes),
		Changes: changes,
	}, nil
}

func (r *Reconciler) create(ctx context.Context, candidate domain.Record) (*Result, error) {
	rec := candidate.Clone()
	if err := r.store.Create(ctx, rec); err != nil {
		return nil, apperrors.PersistenceFailed("create", err)
	}
	return &Result{Outcome: domain.OutcomeCreated, Record: rec}, nil
}
