package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/smartserve-ai/smartserve/internal/api"
	"github.com/smartserve-ai/smartserve/internal/events"
	"github.com/smartserve-ai/smartserve/internal/logger"
	"github.com/smartserve-ai/smartserve/internal/service"
	"github.com/smartserve-ai/smartserve/internal/store"
	"github.com/smartserve-ai/smartserve/internal/store/memory"
	"github.com/smartserve-ai/smartserve/internal/store/postgres"
	"github.com/smartserve-ai/smartserve/internal/sweeper"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const readHeaderTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Run the HTTP API",
	PreRunE: bindStrategy,
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 0, "port to listen on (overrides PORT)")
	serveCmd.Flags().String("strategy", "", "tag extraction strategy: keyword or gemini")
	serveCmd.Flags().Bool("migrate", false, "apply database migrations before serving")

	viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
}

func serve(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer func() { _ = logger.Sync() }()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting smartserve", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	tagging, err := buildExtractors(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("configuring tag extraction", zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY or GEMINI_API_KEY_FILE, or use the keyword strategy"),
		)
	}

	migrate, _ := cmd.Flags().GetBool("migrate")
	st, err := openStore(ctx, config, migrate, logger)
	if err != nil {
		logger.Fatal("opening the store", zap.Error(err))
	}
	defer st.Close()

	publisher, closeEvents := openEvents(ctx, config, logger)
	defer closeEvents()

	svc, err := service.New(service.Options{
		Store:        st,
		Extractor:    tagging.records,
		Analyzer:     tagging.analyze,
		Events:       publisher,
		Logger:       logger,
		MinimumScore: config.Matching.MinimumScore,
	})
	if err != nil {
		logger.Fatal("creating the service", zap.Error(err))
	}

	sweep := sweeper.New(st, config.Sweeper.Schedule, logger)
	if err := sweep.Start(ctx); err != nil {
		logger.Fatal("starting the sweeper", zap.Error(err))
	}
	defer sweep.Stop()

	srv := &http.Server{
		Addr: net.JoinHostPort("", strconv.Itoa(config.Port)),
		Handler: api.NewRouter(api.Dependencies{
			Service:        svc,
			Health:         st.Ping,
			Logger:         logger,
			RequestTimeout: config.HTTP.RequestTimeout,
		}),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openStore uses Postgres when a database URL is configured and the in-memory
// store otherwise.
func openStore(ctx context.Context, config *Config, migrate bool, log *zap.Logger) (store.Store, error) {
	if strings.TrimSpace(config.DatabaseURL) == "" {
		log.Warn("DATABASE_URL is not set, using the in-memory store; data is lost on restart")
		return memory.New(), nil
	}

	db, err := postgres.New(ctx, config.DatabaseURL, log)
	if err != nil {
		return nil, err
	}

	if migrate {
		applied, err := db.RunMigrations(ctx)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating: %w", err)
		}
		log.Info("migrations applied", zap.Strings("applied", applied))
	}

	return db, nil
}

// openEvents connects the Redis publisher. Redis being unset or unreachable
// only disables notifications.
func openEvents(ctx context.Context, config *Config, log *zap.Logger) (events.Publisher, func()) {
	if strings.TrimSpace(config.RedisURL) == "" {
		log.Info("REDIS_URL is not set, application events are disabled")
		return events.Nop{}, func() {}
	}

	client, err := events.Connect(ctx, config.RedisURL)
	if err != nil {
		log.Warn("redis unavailable, application events are disabled", zap.Error(err))
		return events.Nop{}, func() {}
	}

	log.Info("publishing application events", zap.String("channel", config.Events.Channel))
	return events.NewRedis(client, config.Events.Channel), func() { _ = client.Close() }
}

// redacted returns a copy of config that is safe to log.
func redacted(config *Config) Config {
	out := *config
	if config.AI != nil && config.AI.Gemini != nil {
		ai := *config.AI
		gem := *config.AI.Gemini
		if gem.APIKey != "" {
			gem.APIKey = "***"
		}
		ai.Gemini = &gem
		out.AI = &ai
	}
	if out.DatabaseURL != "" {
		out.DatabaseURL = "***"
	}
	if out.RedisURL != "" {
		out.RedisURL = "***"
	}
	return out
}
