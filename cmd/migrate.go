package cmd

import (
	"context"
	"log"
	"strings"

	"github.com/smartserve-ai/smartserve/internal/logger"
	"github.com/smartserve-ai/smartserve/internal/store/postgres"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Run: func(_ *cobra.Command, _ []string) {
		migrate()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func migrate() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if strings.TrimSpace(config.DatabaseURL) == "" {
		logger.Fatal("DATABASE_URL is required to run migrations")
	}

	db, err := postgres.New(ctx, config.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("connecting to the database", zap.Error(err))
	}
	defer db.Close()

	applied, err := db.RunMigrations(ctx)
	if err != nil {
		logger.Fatal("applying migrations", zap.Error(err))
	}

	if len(applied) == 0 {
		logger.Info("database is up to date")
		return
	}
	logger.Info("migrations applied", zap.Strings("applied", applied))
}
