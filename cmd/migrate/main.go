package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/ledger/backend/internal/infrastructure/config"
	"github.com/ledger/backend/internal/infrastructure/logger"
	"github.com/ledger/backend/internal/infrastructure/migration"
	"github.com/ledger/backend/migrations"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "migrations"

var (
	// migrationsPath reads SQL files from disk instead of the embedded set
	migrationsPath string
	logLevel       string
	confirmDown    bool

	log *zap.Logger

	rootCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply and manage supplier ledger schema migrations",
		Long: `migrate runs the SQL migrations against the database configured through
config.toml or LEDGER_DATABASE_* environment variables. The migrations are
embedded in the binary; pass --path to use a directory on disk instead.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			log, err = logger.New(&logger.Config{
				Level:      logLevel,
				Format:     "console",
				Output:     "stdout",
				TimeFormat: "2006-01-02 15:04:05",
			})
			return err
		},
	}

	upCmd = &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(m *migration.Migrator, _ []string) error {
			return m.Up()
		}),
	}

	downCmd = &cobra.Command{
		Use:   "down [n]",
		Short: "Roll back n migrations, or all of them with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: withMigrator(func(m *migration.Migrator, args []string) error {
			if len(args) == 0 {
				if !confirmDown {
					return fmt.Errorf("rolling back every migration drops all ledger data; rerun with --all to confirm")
				}
				return m.Down(0)
			}
			n, err := positiveInt(args[0])
			if err != nil {
				return err
			}
			return m.Down(n)
		}),
	}

	stepsCmd = &cobra.Command{
		Use:   "steps <n>",
		Short: "Apply n migrations (negative rolls back)",
		Args:  cobra.ExactArgs(1),
		RunE: withMigrator(func(m *migration.Migrator, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return m.Steps(n)
		}),
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Show the current migration version",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(m *migration.Migrator, _ []string) error {
			version, dirty, err := m.Version()
			if err != nil {
				return err
			}
			if version == 0 {
				log.Info("No migrations applied")
				return nil
			}
			log.Info("Current migration version",
				zap.Uint("version", version),
				zap.Bool("dirty", dirty),
			)
			return nil
		}),
	}

	forceCmd = &cobra.Command{
		Use:   "force <version>",
		Short: "Set the migration version without running it, to recover a dirty database",
		Args:  cobra.ExactArgs(1),
		RunE: withMigrator(func(m *migration.Migrator, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return m.Force(version)
		}),
	}

	createCmd = &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty up/down migration pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mf, err := migration.CreateMigration(sourceDir(), args[0])
			if err != nil {
				return err
			}
			log.Info("Migration created",
				zap.String("version", mf.Version),
				zap.String("up_file", mf.UpPath),
				zap.String("down_file", mf.DownPath),
			)
			return nil
		},
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List migration files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := migration.ListMigrations(sourceDir())
			if err != nil {
				return err
			}
			if len(files) == 0 {
				log.Info("No migrations found")
				return nil
			}
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&migrationsPath, "path", "", "migrations directory (default: embedded migrations)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	downCmd.Flags().BoolVar(&confirmDown, "all", false, "roll back every migration")

	rootCmd.AddCommand(upCmd, downCmd, stepsCmd, versionCmd, forceCmd, createCmd, listCmd)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		if log != nil {
			log.Error("Migration command failed", zap.Error(err))
			_ = log.Sync()
		}
		os.Exit(1)
	}
	if log != nil {
		_ = log.Sync()
	}
}

// withMigrator opens the database, builds a Migrator and runs fn with it
func withMigrator(fn func(m *migration.Migrator, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}

		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}

		var m *migration.Migrator
		if migrationsPath != "" {
			m, err = migration.NewFromPath(db, sourceDir(), log)
		} else {
			m, err = migration.NewFromFS(db, migrations.FS, log)
		}
		if err != nil {
			return err
		}
		defer func() {
			if err := m.Close(); err != nil {
				log.Warn("Failed to close migrator", zap.Error(err))
			}
		}()

		log.Info("Running migration command",
			zap.String("command", cmd.Name()),
			zap.String("database", cfg.Database.DBName),
		)
		return fn(m, args)
	}
}

// sourceDir resolves --path, falling back to ./migrations
func sourceDir() string {
	dir := migrationsPath
	if dir == "" {
		dir = defaultMigrationsDir
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	return abs
}

func positiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("expected a positive number of migrations, got %q", s)
	}
	return n, nil
}
