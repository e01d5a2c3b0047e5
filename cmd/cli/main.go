package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/interview-allocator/cmd/cli/commands"
	"github.com/jakechorley/interview-allocator/internal/config"
	"github.com/jakechorley/interview-allocator/pkg/postgres"
	"github.com/jakechorley/interview-allocator/pkg/utils/logging"
)

var (
	env string
	app *commands.AppContext
	pg  *postgres.DB
)

func main() {
	app = &commands.AppContext{}

	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Interview allocator CLI - schedule recruitment interviews",
		Long:  `A CLI tool for allocating interview slots to applicants, publishing schedules and notifying applicants.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if pg != nil {
				pg.Close()
			}
			if app.Logger != nil {
				app.Logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.AllocateInterviewsCmd(app))
	rootCmd.AddCommand(commands.ListTimeBlocksCmd(app))
	rootCmd.AddCommand(commands.PublishInterviewsCmd(app))
	rootCmd.AddCommand(commands.NotifyApplicantsCmd(app))
	rootCmd.AddCommand(commands.MigrateCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(os.Stdin))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config and database. Google clients are created
// lazily by the commands that need them.
func initApp() error {
	var err error
	app.Env = env
	app.Ctx = context.Background()

	app.Logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	app.Logger.Info("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully")

	app.Logger.Info("Connecting to database")
	pg, err = postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.Database = pg
	app.Migrator = pg
	app.Logger.Info("Database initialized successfully")

	return nil
}
