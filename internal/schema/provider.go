package schema

import (
	"context"
	"errors"

	"go.uber.org/zap"

	apperrors "kv-shepherd.io/adminseed/internal/pkg/errors"
)

// NamedProvider labels a Provider for logging.
type NamedProvider struct {
	Name     string
	Provider Provider
}

// FirstAvailable returns a Provider that tries each candidate in order and
// returns the first description found. Candidates answering ErrNoSchema are
// skipped; any other error stops the chain.
func FirstAvailable(log *zap.Logger, candidates ...NamedProvider) Provider {
	return ProviderFunc(func(ctx context.Context) (Description, error) {
		for _, c := range candidates {
			desc, err := c.Provider.Describe(ctx)
			if errors.Is(err, apperrors.ErrNoSchema) {
				log.Warn("Schema source has no schema, trying next", zap.String("source", c.Name))
				continue
			}
			if err != nil {
				return nil, err
			}
			log.Debug("Using schema source", zap.String("source", c.Name))
			return desc, nil
		}
		return nil, apperrors.ErrNoSchema
	})
}
