package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/phrazzld/huddle-api/internal/ciutil"
	"github.com/phrazzld/huddle-api/internal/config"
	"github.com/phrazzld/huddle-api/internal/platform/logger"
	"github.com/phrazzld/huddle-api/internal/platform/postgres"
	"github.com/phrazzld/huddle-api/internal/service/auth"
	"github.com/spf13/cobra"
)

// rootOptions carries the dependencies shared by all subcommands.
type rootOptions struct {
	loadConfig func() (*config.Config, error)
}

func newRootCommand() *cobra.Command {
	return newRootCommandWith(&rootOptions{loadConfig: config.Load})
}

func newRootCommandWith(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "huddle-api",
		Short:         "Huddle group task API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newTokenCommand(opts))

	return cmd
}

// loadAppConfig loads the configuration and sets up the default logger.
func loadAppConfig(opts *rootOptions) (*config.Config, *slog.Logger, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))
	return cfg, l, nil
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, l, err := loadAppConfig(opts)
			if err != nil {
				return err
			}

			db, err := postgres.Open(ctx, cfg.Database)
			if err != nil {
				return err
			}
			l.Info("database connection established")

			app, err := newApplication(cfg, l, db)
			if err != nil {
				_ = db.Close()
				return err
			}
			return app.Run(ctx)
		},
	}
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate <up|down|status|version|reset|create NAME>",
		Short: "Manage the database schema",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			command := args[0]
			if command == "create" {
				if len(args) != 2 {
					return fmt.Errorf("migrate create requires a migration name")
				}
				if dir == "" {
					found, err := ciutil.FindMigrationsDir(slog.Default())
					if err != nil {
						return err
					}
					dir = found
				}
				if err := postgres.CreateMigration(dir, args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created migration %s in %s\n", args[1], dir)
				return nil
			}
			if len(args) != 1 {
				return fmt.Errorf("migrate %s takes no further arguments", command)
			}
			if !isMigrationCommand(command) {
				return fmt.Errorf("unknown migration command %q", command)
			}

			cfg, l, err := loadAppConfig(opts)
			if err != nil {
				return err
			}
			db, err := postgres.Open(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			l.Info("executing migrations", slog.String("command", command))
			return postgres.Migrate(cmd.Context(), db, l, command)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "directory for new migration files (default: the project's migrations directory)")
	return cmd
}

func isMigrationCommand(command string) bool {
	switch command {
	case postgres.MigrateUp, postgres.MigrateDown, postgres.MigrateReset,
		postgres.MigrateStatus, postgres.MigrateVersion:
		return true
	}
	return false
}

func newTokenCommand(opts *rootOptions) *cobra.Command {
	var userFlag string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(userFlag)
			if err != nil || userID == uuid.Nil {
				return fmt.Errorf("--user must be a non-nil UUID")
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			jwtService, err := auth.NewJWTService(cfg.Auth)
			if err != nil {
				return fmt.Errorf("failed to initialize JWT service: %w", err)
			}

			token, err := jwtService.GenerateToken(context.Background(), userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userFlag, "user", "", "user UUID to put in the token")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
