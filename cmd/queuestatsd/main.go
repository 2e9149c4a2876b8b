package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/maerty1/asterisk-stats-sub000/internal/api"
	"github.com/maerty1/asterisk-stats-sub000/internal/database"
	"github.com/maerty1/asterisk-stats-sub000/internal/logger"
	"github.com/maerty1/asterisk-stats-sub000/internal/middleware"
	"github.com/maerty1/asterisk-stats-sub000/internal/report"
	"github.com/maerty1/asterisk-stats-sub000/internal/workers"
)

const version = "1.0.0"

// Config represents the application configuration
type Config struct {
	Server struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		IdleTimeout  time.Duration `yaml:"idle_timeout"`
	} `yaml:"server"`

	Database struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port"`
		User            string        `yaml:"user"`
		Password        string        `yaml:"password"`
		DBName          string        `yaml:"dbname"`
		SSLMode         string        `yaml:"sslmode"`
		MaxOpenConns    int           `yaml:"max_open_conns"`
		MaxIdleConns    int           `yaml:"max_idle_conns"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
		SearchPath      string        `yaml:"search_path"`
	} `yaml:"database"`

	Cache struct {
		TTL             time.Duration `yaml:"ttl"`
		RefreshInterval time.Duration `yaml:"refresh_interval"`
	} `yaml:"cache"`

	Report struct {
		Strategies     []string      `yaml:"strategies"`
		CallbackWindow time.Duration `yaml:"callback_window"`
	} `yaml:"report"`
}

func main() {
	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Optional .env overlay for credentials; absence is not an error.
	_ = godotenv.Load()

	log := logger.New()
	log.WithFields(logrus.Fields{
		"version": version,
		"config":  *configFile,
	}).Info("queue stats service starting")

	config, err := loadConfig(*configFile)
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	db, err := database.New(&database.Config{
		Host:            config.Database.Host,
		Port:            config.Database.Port,
		User:            config.Database.User,
		Password:        config.Database.Password,
		DBName:          config.Database.DBName,
		SSLMode:         config.Database.SSLMode,
		MaxOpenConns:    config.Database.MaxOpenConns,
		MaxIdleConns:    config.Database.MaxIdleConns,
		ConnMaxLifetime: config.Database.ConnMaxLifetime,
		SearchPath:      config.Database.SearchPath,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()
	log.Info("database connected")

	directory := workers.NewQueueDirectory(db, &workers.QueueDirectoryConfig{
		TTL:             config.Cache.TTL,
		RefreshInterval: config.Cache.RefreshInterval,
	}, logrus.NewEntry(log))

	strategies, err := report.BuildStrategies(db, config.Report.Strategies)
	if err != nil {
		log.WithError(err).Fatal("failed to build fetch strategies")
	}

	correlator := report.NewCorrelator(db, logrus.NewEntry(log)).
		WithWindow(config.Report.CallbackWindow)
	service := report.NewService(strategies, correlator, directory, logrus.NewEntry(log))

	router := mux.NewRouter()
	setupRoutes(router, log, db, directory, service)

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
		IdleTimeout:  config.Server.IdleTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go directory.Start(ctx)

	go func() {
		log.WithField("addr", addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down gracefully")

	cancel()
	directory.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server exited cleanly")
}

// loadConfig loads configuration from YAML file
func loadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Environment overrides for credentials
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		config.Database.Password = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		config.Database.User = v
	}

	// Set defaults
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = 10 * time.Second
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = 30 * time.Second
	}
	if config.Server.IdleTimeout == 0 {
		config.Server.IdleTimeout = 60 * time.Second
	}
	if config.Database.MaxOpenConns == 0 {
		config.Database.MaxOpenConns = 25
	}
	if config.Database.MaxIdleConns == 0 {
		config.Database.MaxIdleConns = 5
	}
	if config.Database.ConnMaxLifetime == 0 {
		config.Database.ConnMaxLifetime = 5 * time.Minute
	}
	if config.Cache.TTL == 0 {
		config.Cache.TTL = 5 * time.Minute
	}
	if config.Cache.RefreshInterval == 0 {
		config.Cache.RefreshInterval = time.Minute
	}
	if config.Report.CallbackWindow == 0 {
		config.Report.CallbackWindow = report.DefaultCallbackWindow
	}

	return &config, nil
}

// setupRoutes configures HTTP routes
func setupRoutes(router *mux.Router, log *logrus.Logger, db *database.DB, directory *workers.QueueDirectory, service *report.Service) {
	healthHandler := api.NewHealthHandler(db, directory, version)
	reportHandler := api.NewReportHandler(service, directory)

	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logging(log))

	router.HandleFunc("/health", healthHandler.Check).Methods("GET")
	router.HandleFunc("/health/stats", healthHandler.Stats).Methods("GET")

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.HandleFunc("/queues", reportHandler.Queues).Methods("GET")
	apiRouter.HandleFunc("/queues/{queue}/stats", reportHandler.QueueStats).Methods("GET")
	apiRouter.HandleFunc("/queues/{queue}/missed", reportHandler.MissedCalls).Methods("GET")
	apiRouter.HandleFunc("/ranking", reportHandler.Ranking).Methods("GET")
}
