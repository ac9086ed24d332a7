package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"agentdeck/internal/config"
	"agentdeck/internal/repository/postgres"
	"agentdeck/internal/seed"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	fixturePath string
	dropTables  bool
	schemaOnly  bool
	clearData   bool
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the organization schema and load a folder/agent fixture",
	Long: `Seed ensures the organization tables exist and loads a YAML fixture
describing folders and agents. Without --file the built-in demo tree is used.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&fixturePath, "file", "f", "", "YAML fixture to load (default: built-in demo tree)")
	rootCmd.Flags().BoolVar(&dropTables, "drop-tables", false, "Drop all tables before seeding (fresh start)")
	rootCmd.Flags().BoolVar(&schemaOnly, "schema-only", false, "Only set up schema, don't load the fixture")
	rootCmd.Flags().BoolVar(&clearData, "clear-data", false, "Clear all folders and agents (keep schema)")
	rootCmd.MarkFlagsMutuallyExclusive("schema-only", "clear-data")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (dropTables || clearData) {
		return fmt.Errorf("refusing --drop-tables or --clear-data in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	logger = logger.With("environment", cfg.Environment, "table_prefix", cfg.TablePrefix)

	// Parse the fixture before touching the database
	var fixture *seed.Fixture
	if !schemaOnly && !clearData {
		var err error
		if fixturePath != "" {
			fixture, err = seed.LoadFile(fixturePath)
		} else {
			fixture, err = seed.DefaultFixture()
		}
		if err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if dropTables {
		logger.Warn("dropping tables", "folders", tables.Folders, "agents", tables.Agents)
		if err := postgres.DropSchema(ctx, pool, tables); err != nil {
			return err
		}
	}

	if err := postgres.EnsureSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		return err
	}
	logger.Info("schema ready")

	if schemaOnly {
		return nil
	}

	if clearData {
		if err := postgres.ClearData(ctx, pool, tables); err != nil {
			return err
		}
		logger.Info("data cleared")
		return nil
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	seeder := seed.NewSeeder(
		postgres.NewFolderRepository(repoConfig),
		postgres.NewAgentRepository(repoConfig),
		postgres.NewTransactionManager(pool, logger),
		logger,
	)

	stats, err := seeder.Seed(ctx, fixture)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d folders and %d agents (%d trashed)\n",
		stats.Folders, stats.Agents, stats.Trashed)
	return nil
}
