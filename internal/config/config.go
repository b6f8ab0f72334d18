// Package config provides configuration management for the admin seeder.
//
// Configuration is loaded from:
// 1. .env and .env.local files (optional, never override the process env)
// 2. config.yaml file (optional)
// 3. Environment variables (ADMIN_EMAIL, DATABASE_URL, LOG_LEVEL, ...)
// 4. Default values
//
// Import Path: kv-shepherd.io/adminseed/internal/config
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	apperrors "kv-shepherd.io/adminseed/internal/pkg/errors"
	"kv-shepherd.io/adminseed/internal/pkg/secret"
)

// Store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Schema sources.
const (
	SchemaLive = "live"
	SchemaEnt  = "ent"
	SchemaFile = "file"
)

// DefaultPassword is used when admin.password is not configured.
const DefaultPassword = "Admin@12345"

// Config is the root configuration structure.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Schema   SchemaConfig   `mapstructure:"schema"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig selects and tunes the document store.
type DatabaseConfig struct {
	// Driver is inferred from URL when empty.
	Driver string `mapstructure:"driver"`
	URL    string `mapstructure:"url"`
	// Name is the MongoDB database; defaults to the one in URL.
	Name string `mapstructure:"name"`
	// Collection is the MongoDB collection or SQL table holding admin records.
	Collection string `mapstructure:"collection"`

	// Pool configuration (PostgreSQL only)
	MaxConns int32 `mapstructure:"max_conns"`
	MinConns int32 `mapstructure:"min_conns"`

	EnsureUniqueIndex bool          `mapstructure:"ensure_unique_index"`
	OperationTimeout  time.Duration `mapstructure:"operation_timeout"`
}

// AdminConfig is the explicit intent for the administrative record.
type AdminConfig struct {
	Email      string `mapstructure:"email"`
	Password   string `mapstructure:"password"`
	FirstName  string `mapstructure:"first_name"`
	LastName   string `mapstructure:"last_name"`
	Mobile     string `mapstructure:"mobile"`
	Role       string `mapstructure:"role"`
	BcryptCost int    `mapstructure:"bcrypt_cost"`

	IdentityField string `mapstructure:"identity_field"`
	SecretField   string `mapstructure:"secret_field"`
	RoleField     string `mapstructure:"role_field"`
}

// SchemaConfig selects where the target schema is read from.
type SchemaConfig struct {
	Source  string   `mapstructure:"source"`
	File    string   `mapstructure:"file"`
	Exclude []string `mapstructure:"exclude"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

var (
	bootstrapLoggerOnce sync.Once
	bootstrapLogger     *zap.Logger
)

// connection string variables, highest priority first
var databaseURLEnv = []string{"MONGODB_URL", "MONGO_URI", "DATABASE_URL"}

// Load reads configuration from .env files, config file and environment.
func Load() (*Config, error) {
	loadEnvFiles()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/admin-seed")

	// Maps nested config: admin.first_name → ADMIN_FIRST_NAME
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file is optional, use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// AutomaticEnv maps database.url to DATABASE_URL only; the MongoDB
	// names outrank it.
	if u, ok := lookupDatabaseURL(); ok {
		cfg.Database.URL = u
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = InferDriver(cfg.Database.URL)
	}
	if cfg.Admin.Password == "" {
		cfg.Admin.Password = DefaultPassword
	}
	if cfg.Admin.Password == DefaultPassword {
		logBootstrapWarn(
			"using the built-in default admin password; set ADMIN_PASSWORD to override",
			zap.String("email", cfg.Admin.Email),
		)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks for critical configuration errors. Every failure is a
// CONFIG_INVALID AppError so callers can stop before touching the store.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return apperrors.ConfigInvalid(
			"no connection string: set " + strings.Join(databaseURLEnv, ", ") + " or database.url")
	}
	switch c.Database.Driver {
	case DriverMongo, DriverPostgres, DriverSQLite:
	case "":
		return apperrors.ConfigInvalid("cannot infer database driver from url; set database.driver")
	default:
		return apperrors.ConfigInvalid(fmt.Sprintf("unknown database driver %q", c.Database.Driver))
	}
	if c.Database.Collection == "" {
		return apperrors.ConfigInvalid("database.collection must not be empty")
	}
	if c.Admin.Email == "" {
		return apperrors.ConfigInvalid("admin.email must not be empty")
	}
	if c.Admin.IdentityField == "" || c.Admin.SecretField == "" || c.Admin.RoleField == "" {
		return apperrors.ConfigInvalid("admin identity, secret and role field names must not be empty")
	}
	if c.Admin.BcryptCost != 0 {
		if _, err := secret.NewBcrypt(c.Admin.BcryptCost); err != nil {
			return apperrors.ConfigInvalid(err.Error())
		}
	}

	switch c.Schema.Source {
	case SchemaLive, SchemaEnt:
	case SchemaFile:
		if c.Schema.File == "" {
			return apperrors.ConfigInvalid("schema.file is required when schema.source is file")
		}
	default:
		return apperrors.ConfigInvalid(fmt.Sprintf("unknown schema source %q", c.Schema.Source))
	}
	return nil
}

// lookupDatabaseURL returns the first non-empty connection string variable
// in databaseURLEnv order.
func lookupDatabaseURL() (string, bool) {
	for _, name := range databaseURLEnv {
		if u, ok := os.LookupEnv(name); ok && strings.TrimSpace(u) != "" {
			return strings.TrimSpace(u), true
		}
	}
	return "", false
}

// InferDriver maps a connection string to a store driver, or "" when the
// scheme is not recognized.
func InferDriver(rawURL string) string {
	switch {
	case strings.HasPrefix(rawURL, "mongodb://"), strings.HasPrefix(rawURL, "mongodb+srv://"):
		return DriverMongo
	case strings.HasPrefix(rawURL, "postgres://"), strings.HasPrefix(rawURL, "postgresql://"):
		return DriverPostgres
	case strings.HasPrefix(rawURL, "sqlite://"), strings.HasPrefix(rawURL, "file:"),
		strings.HasSuffix(rawURL, ".db"), strings.HasSuffix(rawURL, ".sqlite"):
		return DriverSQLite
	}
	return ""
}

// SQLiteDSN returns the DSN the sqlite driver expects: the sqlite:// scheme
// is stripped, other forms pass through.
func (c DatabaseConfig) SQLiteDSN() string {
	if rest, ok := strings.CutPrefix(c.URL, "sqlite://"); ok {
		return rest
	}
	return c.URL
}

// Redacted returns URL with any password masked, for logging.
func (c DatabaseConfig) Redacted() string {
	u, err := url.Parse(c.URL)
	if err != nil || u.User == nil {
		return c.URL
	}
	return u.Redacted()
}

// loadEnvFiles loads environment variables from .env files.
// Variables already present in the process environment are kept.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

func logBootstrapWarn(msg string, fields ...zap.Field) {
	bootstrapLoggerOnce.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		cfg.OutputPaths = []string{"stderr"}

		l, err := cfg.Build()
		if err != nil {
			bootstrapLogger = zap.NewNop()
			return
		}
		bootstrapLogger = l
	})

	bootstrapLogger.Warn(msg, fields...)
}

func setDefaults(v *viper.Viper) {
	// Database
	v.SetDefault("database.driver", "")
	v.SetDefault("database.name", "")
	v.SetDefault("database.collection", "users")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 0)
	v.SetDefault("database.ensure_unique_index", true)
	v.SetDefault("database.operation_timeout", "30s")

	// Admin record
	v.SetDefault("admin.email", "admin@example.com")
	v.SetDefault("admin.password", "")
	v.SetDefault("admin.first_name", "Admin")
	v.SetDefault("admin.last_name", "User")
	v.SetDefault("admin.mobile", "0000000000")
	v.SetDefault("admin.role", "admin")
	v.SetDefault("admin.bcrypt_cost", secret.DefaultCost)
	v.SetDefault("admin.identity_field", "email")
	v.SetDefault("admin.secret_field", "password")
	v.SetDefault("admin.role_field", "role")

	// Schema
	v.SetDefault("schema.source", SchemaLive)
	v.SetDefault("schema.file", "")
	v.SetDefault("schema.exclude", []string{})

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
