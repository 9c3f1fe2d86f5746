package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/consensuslabs/pavilion-mint/internal/config"
	"github.com/consensuslabs/pavilion-mint/internal/database"
	"github.com/consensuslabs/pavilion-mint/internal/database/scylladb"
	"github.com/consensuslabs/pavilion-mint/internal/logger"
	"github.com/consensuslabs/pavilion-mint/internal/mint"
	"github.com/spf13/cobra"
)

var configPath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pavilion-mint",
	Short: "Video NFT minting service",
	Long: "Pavilion Mint takes a video from a connected wallet, runs it through the\n" +
		"media pipeline, exports it to IPFS and mints it on the NFT contract.",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the session tables and the timeline keyspace",
	RunE:  runMigrate,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory holding config.yaml and .env")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads configuration with a debug logger, then builds the
// logger the configuration asks for
func bootstrap() (*config.Config, logger.Logger, error) {
	bootLogger, err := logger.NewLogger(&logger.Config{Level: logger.DebugLevel})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.NewConfigService(bootLogger).Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	loggerConfig := &logger.Config{
		Level:       logger.Level(cfg.Logging.Level),
		Format:      cfg.Logging.Format,
		Output:      cfg.Logging.Output,
		Development: cfg.Logging.Development,
	}
	loggerConfig.File.Enabled = cfg.Logging.File.Enabled
	loggerConfig.File.Path = cfg.Logging.File.Path
	loggerConfig.Sampling.Initial = cfg.Logging.Sampling.Initial
	loggerConfig.Sampling.Thereafter = cfg.Logging.Sampling.Thereafter

	appLogger, err := logger.NewLogger(loggerConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, appLogger, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, appLogger, err := bootstrap()
	if err != nil {
		log.Printf("Failed to start: %v", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg, appLogger)
	if err != nil {
		appLogger.LogError(err, "Failed to initialize application")
		return err
	}

	runErr := app.Run(ctx)
	if runErr != nil {
		appLogger.LogError(runErr, "Server stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		appLogger.LogError(err, "Error during shutdown")
		return err
	}
	return runErr
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, appLogger, err := bootstrap()
	if err != nil {
		log.Printf("Failed to start: %v", err)
		return err
	}

	dbService := database.NewDatabaseService(&cfg.Database, appLogger)
	if _, err := dbService.Connect(); err != nil {
		return appLogger.LogError(err, "Failed to connect to database")
	}
	defer dbService.Close()

	dbService.ForceMigrations()
	if err := dbService.Migrate(mint.Models()...); err != nil {
		return appLogger.LogError(err, "Failed to migrate database")
	}

	history, err := dbService.MigrationHistory()
	if err != nil {
		return appLogger.LogError(err, "Failed to read migration history")
	}
	for _, record := range history {
		appLogger.LogInfo("Applied migration", map[string]interface{}{
			"name":       record.Name,
			"batch":      record.BatchNo,
			"applied_at": record.AppliedAt,
		})
	}

	if cfg.ScyllaDB.Enabled {
		client := scylladb.NewClient(scylladb.NewConfig(cfg.ScyllaDB), scylladb.NewLoggerAdapter(appLogger))
		if err := client.Connect(); err != nil {
			return appLogger.LogError(err, "Failed to initialize timeline keyspace")
		}
		defer client.Close()
	}

	appLogger.LogInfo("Migrations completed", map[string]interface{}{
		"scylladb": cfg.ScyllaDB.Enabled,
	})
	return nil
}
