package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"kv-shepherd.io/adminseed/internal/domain"
	apperrors "kv-shepherd.io/adminseed/internal/pkg/errors"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "seed.db")
	s, err := OpenSQLite(context.Background(), dsn, "users", "email")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLite_Contract(t *testing.T) {
	runStoreContract(t, openTestSQLite(t))
}

func TestSQLite_MigrateIsIdempotent(t *testing.T) {
	s := openTestSQLite(t)
	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.Migrate(context.Background()))
}

func TestSQLite_PreservesNestedValues(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)

	require.NoError(t, s.Create(ctx, domain.Record{
		"email":   "admin@example.com",
		"profile": map[string]any{"theme": "dark"},
		"logins":  3,
	}))
	require.NoError(t, s.Save(ctx, "admin@example.com", domain.Record{"role": "admin"}))

	got, err := s.FindOne(ctx, "admin@example.com")
	require.NoError(t, err)
	require.Equal(t, map[string]any{"theme": "dark"}, got["profile"])
	require.InDelta(t, 3, got["logins"], 0)
	require.Equal(t, "admin", got["role"])
}

func TestSQLite_DescribeHasNoSchema(t *testing.T) {
	_, err := openTestSQLite(t).Describe(context.Background())
	require.ErrorIs(t, err, apperrors.ErrNoSchema)
}

func TestQuoteSQLiteIdent(t *testing.T) {
	require.Equal(t, `"users"`, quoteSQLiteIdent("users"))
	require.Equal(t, `"we""ird"`, quoteSQLiteIdent(`we"ird`))
}
