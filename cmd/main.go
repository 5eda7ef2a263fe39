package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/NNikoGG/water-quality-monitoring/internal/feed"
	"github.com/NNikoGG/water-quality-monitoring/internal/handlers"
	"github.com/NNikoGG/water-quality-monitoring/internal/logger"
	"github.com/NNikoGG/water-quality-monitoring/internal/observability"
	"github.com/NNikoGG/water-quality-monitoring/internal/predictor"
	"github.com/NNikoGG/water-quality-monitoring/internal/repository"
	"github.com/NNikoGG/water-quality-monitoring/internal/server"
	"github.com/NNikoGG/water-quality-monitoring/internal/service"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func main() {
	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	// load config.yml before the logger so level/file come from config
	if err := loadConfig(); err != nil {
		logger.Get().Fatalw("error reading config", "err", err)
	}

	log := logger.Init(viper.GetString("log.level"), viper.GetString("log.file"))

	// open DB
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	metrics := observability.NewMetrics()
	hub := feed.NewHub(metrics)
	repos := repository.NewRepository(db)
	client := predictor.NewClient(
		viper.GetString("prediction.base_url"),
		viper.GetDuration("prediction.timeout"),
		log,
	)
	services := service.NewService(service.Deps{
		Repos:        repos,
		Feed:         hub,
		Predictor:    client,
		Metrics:      metrics,
		Log:          log,
		WindowSize:   viper.GetInt("feed.window"),
		MinReadings:  viper.GetInt("prediction.min_readings"),
		PollInterval: viper.GetDuration("prediction.poll_interval"),
		SigningKey:   viper.GetString("auth.signing_key"),
		TokenTTL:     viper.GetDuration("auth.token_ttl"),
	})
	apiHandler := handlers.NewHandler(services, hub, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start prediction triggers (feed-driven forecast + pollers)
	go services.Predictions.Run(ctx)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")

	// WQM_PREDICTION_BASE_URL overrides prediction.base_url, etc.
	viper.SetEnvPrefix("wqm")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "readings.db")
		dbPath = "readings.db"
	}
	return repository.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
