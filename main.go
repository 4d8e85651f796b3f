package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-share-api/cmd/config"
	migration "recipe-share-api/cmd/database/migrate"
	"recipe-share-api/cmd/database/seed"
	"recipe-share-api/internal/api/handlers"
	"recipe-share-api/internal/logging"
	"recipe-share-api/internal/utils"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var root = &cobra.Command{
	Use:           "recipe-share-api",
	Short:         "Recipe sharing REST API",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfgErr := utils.LoadConfig()
		logging.Init(logging.Config{
			Level:  utils.GetConfig("LOG_LEVEL"),
			Format: utils.GetConfig("LOG_FORMAT"),
		})
		if cfgErr != nil {
			logging.Warn().Err(cfgErr).Msg("configuration loaded with errors")
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func withDB(run func(db *gorm.DB) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		db, err := config.ConnectDB()
		if err != nil {
			return err
		}
		return run(db)
	}
}

func init() {
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve()
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema",
			RunE:  withDB(migration.Migrate),
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Insert the ingredient catalog",
			RunE:  withDB(seed.Seed),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Run: func(cmd *cobra.Command, args []string) {
				cmd.Printf("recipe-share-api %s\n", handlers.Version)
			},
		},
	)
}

func serve() error {
	db, err := config.ConnectDB()
	if err != nil {
		return err
	}
	app, err := config.NewApp(db)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + utils.GetConfig("APP_PORT")
		logging.Info().Str("addr", addr).Msg("server listening")
		errCh <- app.Listen(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logging.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}

func main() {
	if err := root.Execute(); err != nil {
		logging.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
