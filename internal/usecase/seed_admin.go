// Package usecase holds SeedAdminUseCase, which provisions the administrative record.
//
// Flow: hash secret → read live schema → enumerate fields → synthesize
// missing required values → reconcile against the store.
//
// Import Path: kv-shepherd.io/adminseed/internal/usecase
package usecase

import (
	"context"

	"go.uber.org/zap"

	"kv-shepherd.io/adminseed/internal/domain"
	apperrors "kv-shepherd.io/adminseed/internal/pkg/errors"
	"kv-shepherd.io/adminseed/internal/pkg/secret"
	"kv-shepherd.io/adminseed/internal/reconcile"
	"kv-shepherd.io/adminseed/internal/schema"
	"kv-shepherd.io/adminseed/internal/synth"
)

// SeedAdminInput is the explicit intent for the administrative record.
type SeedAdminInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Mobile    string
	Role      string
}

// SeedAdminOutput reports what a run did.
type SeedAdminOutput struct {
	Outcome domain.Outcome
	// AutoFilled maps each synthesized field to its placeholder value.
	AutoFilled domain.Record
	// AutoFilledOrder lists AutoFilled keys in schema order.
	AutoFilledOrder []string
}

// Fields names the record attributes the base record populates.
type Fields struct {
	Identity  string
	Secret    string
	Role      string
	FirstName string
	LastName  string
	Mobile    string
}

// DefaultFields matches the user document layout.
func DefaultFields() Fields {
	return Fields{
		Identity:  "email",
		Secret:    "password",
		Role:      "role",
		FirstName: "firstname",
		LastName:  "lastname",
		Mobile:    "mobile",
	}
}

// SeedAdminUseCase wires the schema walker, synthesizer and reconciler.
type SeedAdminUseCase struct {
	store      reconcile.Store
	schema     schema.Provider
	hasher     secret.Hasher
	synth      *synth.Synthesizer
	fields     Fields
	exclusions schema.Exclusions
	log        *zap.Logger
}

// NewSeedAdminUseCase creates a SeedAdminUseCase over store.
func NewSeedAdminUseCase(store reconcile.Store, provider schema.Provider, hasher secret.Hasher, fields Fields, log *zap.Logger) *SeedAdminUseCase {
	return &SeedAdminUseCase{
		store:      store,
		schema:     provider,
		hasher:     hasher,
		synth:      synth.New(),
		fields:     fields,
		exclusions: schema.DefaultExclusions(),
		log:        log,
	}
}

// WithExclusions replaces the default set of skipped system fields.
// An empty list keeps the defaults.
func (uc *SeedAdminUseCase) WithExclusions(names []string) *SeedAdminUseCase {
	if len(names) > 0 {
		uc.exclusions = schema.NewExclusions(names...)
	}
	return uc
}

// Execute runs one seeding pass. Every stage runs once, in order, and the
// first failure ends the run with a coded AppError.
func (uc *SeedAdminUseCase) Execute(ctx context.Context, input SeedAdminInput) (*SeedAdminOutput, error) {
	// Step 1: Hash the secret once; every later stage uses the same hash.
	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperrors.SecretHashFailed(err)
	}

	base := domain.Record{
		uc.fields.Identity:  input.Email,
		uc.fields.FirstName: input.FirstName,
		uc.fields.LastName:  input.LastName,
		uc.fields.Mobile:    input.Mobile,
		uc.fields.Secret:    hash,
		uc.fields.Role:      input.Role,
	}

	// Step 2: Read the schema fresh and fill what the base record lacks.
	desc, err := uc.schema.Describe(ctx)
	if err != nil {
		return nil, apperrors.SchemaAccessFailed(err)
	}
	synthesized, err := uc.synth.Synthesize(base, schema.Enumerate(desc, uc.exclusions), synth.Identity{
		Email:      input.Email,
		SecretHash: hash,
	})
	if err != nil {
		return nil, apperrors.SchemaAccessFailed(err)
	}
	if len(synthesized.Filled) > 0 {
		uc.log.Debug("Synthesized required fields", zap.Strings("fields", synthesized.Filled))
	}

	// Step 3: Create or selectively update the stored record.
	policy := reconcile.Policy{
		SecretField:  uc.fields.Secret,
		RoleField:    uc.fields.Role,
		AdminRole:    input.Role,
		CopiedFields: []string{uc.fields.FirstName, uc.fields.LastName, uc.fields.Mobile},
	}
	res, err := reconcile.New(uc.store, policy).Reconcile(ctx, input.Email, synthesized.Candidate, synthesized.Synthesized, hash)
	if err != nil {
		return nil, err
	}

	out := &SeedAdminOutput{
		Outcome:         res.Outcome,
		AutoFilled:      synthesized.Synthesized,
		AutoFilledOrder: synthesized.Filled,
	}
	uc.logOutcome(input.Email, out)
	return out, nil
}

func (uc *SeedAdminUseCase) logOutcome(email string, out *SeedAdminOutput) {
	fields := []zap.Field{zap.String("email", email)}
	if len(out.AutoFilledOrder) > 0 {
		fields = append(fields, zap.Strings("auto_filled", out.AutoFilledOrder))
	}

	switch out.Outcome {
	case domain.OutcomeCreated:
		uc.log.Info("Admin user created", fields...)
	case domain.OutcomeUpdated:
		uc.log.Info("Admin user updated (password and role reset)", fields...)
	}
}
