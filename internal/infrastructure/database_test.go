package infrastructure

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"kv-shepherd.io/adminseed/internal/config"
	"kv-shepherd.io/adminseed/internal/domain"
	apperrors "kv-shepherd.io/adminseed/internal/pkg/errors"
	"kv-shepherd.io/adminseed/internal/schema"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Database: config.DatabaseConfig{
			Driver:     config.DriverSQLite,
			URL:        "sqlite://" + filepath.Join(t.TempDir(), "seed.db"),
			Collection: "users",
		},
		Admin:  config.AdminConfig{IdentityField: "email"},
		Schema: config.SchemaConfig{Source: config.SchemaLive},
	}
}

func fieldNames(t *testing.T, p schema.Provider) []string {
	t.Helper()
	desc, err := p.Describe(context.Background())
	require.NoError(t, err)
	var names []string
	for f, err := range schema.Enumerate(desc, schema.DefaultExclusions()) {
		require.NoError(t, err)
		names = append(names, f.Name)
	}
	return names
}

func TestNewStoreClients_SQLite(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := context.Background()

	clients, err := NewStoreClients(ctx, sqliteConfig(t), zap.New(core))
	require.NoError(t, err)

	require.NoError(t, clients.Store.Create(ctx, domain.Record{"email": "admin@example.com"}))
	got, err := clients.Store.FindOne(ctx, "admin@example.com")
	require.NoError(t, err)
	require.Equal(t, "admin@example.com", got["email"])

	// SQLite carries no schema; the chain falls back to the built-in User.
	require.Equal(t, []string{"email", "firstname", "lastname", "mobile", "password", "role"}, fieldNames(t, clients.Schema))
	require.Len(t, logs.FilterMessage("Schema source has no schema, trying next").All(), 1)

	clients.Close(ctx)
	require.Len(t, logs.FilterMessage("Disconnected from store").All(), 1)
}

func TestNewStoreClients_ConnectFailure(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Database.URL = filepath.Join(t.TempDir(), "missing", "dir", "seed.db")

	_, err := NewStoreClients(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	require.True(t, apperrors.HasCode(err, apperrors.CodeStoreConnectFail))
}

func TestNewStoreClients_UnknownDriver(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Database.Driver = "redis"

	_, err := NewStoreClients(context.Background(), cfg, zap.NewNop())
	require.True(t, apperrors.HasCode(err, apperrors.CodeConfigInvalid))
}

func TestNewSchemaProvider(t *testing.T) {
	noSchema := schema.ProviderFunc(func(context.Context) (schema.Description, error) {
		return nil, apperrors.ErrNoSchema
	})
	live := schema.Fixed(schema.Static{{Name: "email", Required: true}, {Name: "tenant", Required: true}})

	t.Run("live wins when present", func(t *testing.T) {
		p := NewSchemaProvider(config.SchemaConfig{Source: config.SchemaLive}, live, zap.NewNop())
		require.Equal(t, []string{"email", "tenant"}, fieldNames(t, p))
	})

	t.Run("ent ignores the store", func(t *testing.T) {
		p := NewSchemaProvider(config.SchemaConfig{Source: config.SchemaEnt}, live, zap.NewNop())
		require.Contains(t, fieldNames(t, p), "firstname")
	})

	t.Run("live falls back to ent", func(t *testing.T) {
		p := NewSchemaProvider(config.SchemaConfig{Source: config.SchemaLive}, noSchema, zap.NewNop())
		require.Contains(t, fieldNames(t, p), "password")
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schema.yaml")
		require.NoError(t, os.WriteFile(path, []byte("fields:\n  - name: email\n    required: true\n  - name: nickname\n"), 0o600))
		p := NewSchemaProvider(config.SchemaConfig{Source: config.SchemaFile, File: path}, noSchema, zap.NewNop())
		require.Equal(t, []string{"email", "nickname"}, fieldNames(t, p))
	})
}
