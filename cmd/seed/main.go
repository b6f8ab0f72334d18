// Package main provides the admin seeder command.
//
// It ensures exactly one administrative user record exists in the
// configured store: created with synthesized placeholders for any
// mandatory fields, or updated in place with password and role reset.
//
// Import Path: kv-shepherd.io/adminseed/cmd/seed
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kv-shepherd.io/adminseed/internal/config"
	"kv-shepherd.io/adminseed/internal/infrastructure"
	"kv-shepherd.io/adminseed/internal/pkg/logger"
	"kv-shepherd.io/adminseed/internal/pkg/secret"
	"kv-shepherd.io/adminseed/internal/usecase"
)

// disconnectTimeout bounds the release of store connections after the run.
const disconnectTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "seed error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create or reset the administrative user",
		Long: `Seed ensures one administrative user exists in the configured store.

The connection string comes from MONGODB_URL, MONGO_URI or DATABASE_URL.
Required fields the schema declares but the seed does not supply are
filled with placeholders and reported. Running it again resets the
password and role and leaves every other field alone.

Example:
  MONGODB_URL=mongodb://localhost:27017/app seed
  DATABASE_URL=sqlite://./app.db SCHEMA_SOURCE=ent seed`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func run(ctx context.Context, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	hasher, err := secret.NewBcrypt(cfg.Admin.BcryptCost)
	if err != nil {
		return fmt.Errorf("init hasher: %w", err)
	}

	if cfg.Database.OperationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Database.OperationTimeout)
		defer cancel()
	}

	clients, err := infrastructure.NewStoreClients(ctx, cfg, logger.Named("store"))
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer func() {
		// The run context may have expired; disconnect regardless.
		closeCtx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
		defer cancel()
		clients.Close(closeCtx)
	}()

	fields := usecase.DefaultFields()
	fields.Identity = cfg.Admin.IdentityField
	fields.Secret = cfg.Admin.SecretField
	fields.Role = cfg.Admin.RoleField

	uc := usecase.NewSeedAdminUseCase(clients.Store, clients.Schema, hasher, fields, logger.Named("seed")).
		WithExclusions(cfg.Schema.Exclude)

	logger.Info("Starting admin seeding...", zap.String("email", cfg.Admin.Email))

	res, err := uc.Execute(ctx, usecase.SeedAdminInput{
		Email:     cfg.Admin.Email,
		Password:  cfg.Admin.Password,
		FirstName: cfg.Admin.FirstName,
		LastName:  cfg.Admin.LastName,
		Mobile:    cfg.Admin.Mobile,
		Role:      cfg.Admin.Role,
	})
	if err != nil {
		logger.Error("Admin seeding failed", zap.Error(err))
		return err
	}

	fmt.Fprintln(out, summary(cfg.Admin.Email, res))
	return nil
}

// summary renders the one-line operator report.
func summary(email string, res *usecase.SeedAdminOutput) string {
	line := fmt.Sprintf("admin user %s: %s", res.Outcome, email)
	if len(res.AutoFilledOrder) > 0 {
		pairs := make([]string, len(res.AutoFilledOrder))
		for i, name := range res.AutoFilledOrder {
			pairs[i] = fmt.Sprintf("%s=%v", name, displayValue(name, res.AutoFilled[name]))
		}
		line += " (auto-filled: " + strings.Join(pairs, ", ") + ")"
	}
	return line
}

// displayValue keeps hashes out of terminal output.
func displayValue(name string, v any) any {
	if strings.Contains(strings.ToLower(name), "password") {
		return "<hash>"
	}
	return v
}
