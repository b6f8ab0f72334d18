// Package infrastructure opens the record store selected by configuration
// and assembles the schema source chain that goes with it.
//
// One StoreClients value owns every connection of a run; Close releases
// them on every exit path.
//
// Import Path: kv-shepherd.io/adminseed/internal/infrastructure
package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	"go.uber.org/zap"

	entschema "kv-shepherd.io/adminseed/ent/schema"
	"kv-shepherd.io/adminseed/internal/config"
	apperrors "kv-shepherd.io/adminseed/internal/pkg/errors"
	"kv-shepherd.io/adminseed/internal/reconcile"
	"kv-shepherd.io/adminseed/internal/repository"
	"kv-shepherd.io/adminseed/internal/schema"
)

// defaultMongoDatabase matches the driver default when the URI names none.
const defaultMongoDatabase = "test"

// liveStore is a store that can also describe its own schema.
type liveStore interface {
	reconcile.Store
	schema.Provider
}

// StoreClients holds the open store and the schema source for one run.
type StoreClients struct {
	// Store is the record store the reconciler writes to.
	Store reconcile.Store

	// Schema yields the target entity's field list.
	Schema schema.Provider

	driver string
	close  func(ctx context.Context) error
	log    *zap.Logger
}

// NewStoreClients connects to the configured store. A failure to reach the
// store is returned as STORE_CONNECTION_FAILED.
func NewStoreClients(ctx context.Context, cfg *config.Config, log *zap.Logger) (*StoreClients, error) {
	var (
		store   liveStore
		closeFn func(context.Context) error
		err     error
	)

	switch cfg.Database.Driver {
	case config.DriverMongo:
		store, closeFn, err = openMongo(ctx, cfg.Database, cfg.Admin.IdentityField)
	case config.DriverPostgres:
		store, closeFn, err = openPostgres(ctx, cfg.Database, cfg.Admin.IdentityField)
	case config.DriverSQLite:
		store, closeFn, err = openSQLite(ctx, cfg.Database, cfg.Admin.IdentityField)
	default:
		return nil, apperrors.ConfigInvalid(fmt.Sprintf("unknown database driver %q", cfg.Database.Driver))
	}
	if err != nil {
		return nil, apperrors.StoreConnectFailed(err)
	}

	log.Info("Connected to store",
		zap.String("driver", cfg.Database.Driver),
		zap.String("url", cfg.Database.Redacted()),
		zap.String("collection", cfg.Database.Collection),
	)

	return &StoreClients{
		Store:  store,
		Schema: NewSchemaProvider(cfg.Schema, store, log),
		driver: cfg.Database.Driver,
		close:  closeFn,
		log:    log,
	}, nil
}

// NewSchemaProvider builds the schema source for cfg. The live source falls
// back to the built-in User definition when the store carries no schema.
func NewSchemaProvider(cfg config.SchemaConfig, live schema.Provider, log *zap.Logger) schema.Provider {
	builtin := schema.Fixed(schema.FromEnt(entschema.User{}))

	switch cfg.Source {
	case config.SchemaFile:
		return schema.FileProvider{Path: cfg.File}
	case config.SchemaEnt:
		return builtin
	default:
		return schema.FirstAvailable(log,
			schema.NamedProvider{Name: config.SchemaLive, Provider: live},
			schema.NamedProvider{Name: config.SchemaEnt, Provider: builtin},
		)
	}
}

// Close releases every connection. It logs the disconnect whether or not
// the release succeeded.
func (c *StoreClients) Close(ctx context.Context) {
	if c == nil || c.close == nil {
		return
	}
	if err := c.close(ctx); err != nil {
		c.log.Warn("Store disconnect failed", zap.String("driver", c.driver), zap.Error(err))
		return
	}
	c.log.Info("Disconnected from store", zap.String("driver", c.driver))
}

func openMongo(ctx context.Context, cfg config.DatabaseConfig, keyField string) (liveStore, func(context.Context) error, error) {
	dbName := cfg.Name
	if dbName == "" {
		cs, err := connstring.ParseAndValidate(cfg.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse mongodb uri: %w", err)
		}
		dbName = cs.Database
	}
	if dbName == "" {
		dbName = defaultMongoDatabase
	}

	opts := options.Client().ApplyURI(cfg.URL)
	if cfg.OperationTimeout > 0 {
		opts.SetServerSelectionTimeout(cfg.OperationTimeout)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping mongodb: %w", err)
	}

	store := repository.NewMongo(client.Database(dbName).Collection(cfg.Collection), keyField)
	if cfg.EnsureUniqueIndex {
		if err := store.EnsureUniqueKey(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, err
		}
	}
	return store, client.Disconnect, nil
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig, keyField string) (liveStore, func(context.Context) error, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse pool config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MinConns = cfg.MinConns
	poolConfig.HealthCheckPeriod = time.Minute

	// Set UTC timezone on each new connection
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, "SET timezone = 'UTC'")
		return err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	return repository.NewPostgres(pool, cfg.Collection, keyField), func(context.Context) error {
		pool.Close()
		return nil
	}, nil
}

func openSQLite(ctx context.Context, cfg config.DatabaseConfig, keyField string) (liveStore, func(context.Context) error, error) {
	store, err := repository.OpenSQLite(ctx, cfg.SQLiteDSN(), cfg.Collection, keyField)
	if err != nil {
		return nil, nil, err
	}
	return store, func(context.Context) error { return store.Close() }, nil
}
