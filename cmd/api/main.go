package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"netclass-console/internal/auth"
	"netclass-console/internal/config"
	"netclass-console/internal/database"
	"netclass-console/internal/dispatch"
	"netclass-console/internal/handler"
	"netclass-console/internal/logger"
	"netclass-console/internal/notification"
	"netclass-console/internal/repository"
	"netclass-console/internal/router"
	"netclass-console/internal/service"
	servicenotification "netclass-console/internal/service/notification"
	"netclass-console/internal/tasks"
)

const serviceName = "netclass-console"

// Locations created for a fresh in-memory store
var defaultLocations = []struct {
	name  string
	floor int
}{
	{"Computer Lab 1", 1},
	{"Computer Lab 2", 2},
	{"", 1},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	store, closeStore, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	sessions, closeSessions, err := openSessions(cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	var dispatcher service.CommandDispatcher
	if cfg.MQTT.Broker != "" {
		mqttDispatcher, err := dispatch.Connect(cfg.MQTT, log)
		if err != nil {
			return fmt.Errorf("failed to connect to MQTT broker: %w", err)
		}
		defer mqttDispatcher.Close()
		dispatcher = mqttDispatcher
	} else {
		log.Info("MQTT broker not configured, remote commands are recorded only")
	}

	var alerts service.AlertSender
	if cfg.Notifier.URL != "" {
		notifier := notification.NewNotifierWithConfig(notification.NotificationConfig{
			URL:            cfg.Notifier.URL,
			Timeout:        cfg.Notifier.Timeout,
			RetryAttempts:  cfg.Notifier.RetryAttempts,
			RetryDelay:     cfg.Notifier.RetryDelay,
			MaxPayloadSize: notification.DefaultConfig(cfg.Notifier.URL).MaxPayloadSize,
		}, log)
		alerts = servicenotification.NewServiceAdapter(notifier)
	}

	authService := service.NewAuthService(store, sessions, log)
	maintenance := service.NewMaintenanceService(store, alerts, cfg.Notifier.HealthThreshold, log)
	defer maintenance.WaitForAlerts()

	h := handler.NewConsoleHandler(handler.Services{
		PCs:         service.NewPCService(store, log),
		Commands:    service.NewCommandService(store, dispatcher, log),
		Clients:     service.NewClientService(store, log),
		Maintenance: maintenance,
		Analytics:   service.NewAnalyticsService(store),
		Auth:        authService,
		Store:       store,
	}, handler.SessionCookie{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.SecureCookie,
		TTL:    cfg.Session.TTL,
	}, log)

	if cfg.Maintenance.Enabled {
		scheduler := tasks.NewMaintenanceScheduler(maintenance, cfg.Maintenance.Hour, log)
		scheduler.Start()
		defer scheduler.Stop()
	}

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Port),
		Handler:        router.NewRouter(h, authService, cfg, log),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting server",
			zap.Int("port", cfg.Port),
			zap.String("store", cfg.StoreDriver),
			zap.String("sessions", cfg.Session.Backend),
			zap.Int("rate_limit_rps", cfg.Security.RateLimitRPS),
			zap.Int("rate_limit_burst", cfg.Security.RateLimitBurst),
			zap.Bool("cors", cfg.Security.EnableCORS),
			zap.Duration("request_timeout", cfg.Security.RequestTimeout),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-done:
	}
	log.Info("Server is shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Security.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Warn("Server forced to shutdown", zap.Error(err))
	} else {
		log.Info("Server exited gracefully")
	}
	return nil
}

// openStore connects the configured store and returns its cleanup function.
func openStore(cfg *config.Config, log *zap.Logger) (repository.Store, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		store, err := newMemoryStore(cfg)
		if err != nil {
			return nil, nil, err
		}
		log.Warn("Using the in-memory store, data is lost on restart")
		return store, func() {}, nil
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.Database.Migrate {
		if err := database.RunMigrations(context.Background(), db, log); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	return repository.NewPostgresStore(db, cfg.Database.QueryTimeout), func() { closeDB(db, log) }, nil
}

func closeDB(db *sql.DB, log *zap.Logger) {
	if err := db.Close(); err != nil {
		log.Warn("Failed to close database", zap.Error(err))
	}
}

func newMemoryStore(cfg *config.Config) (*repository.MemoryStore, error) {
	store := repository.NewMemoryStore()
	for _, loc := range defaultLocations {
		store.AddLocation(loc.name, loc.floor)
	}

	hash, err := auth.HashPassword(cfg.MemoryAdminPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}
	store.AddAdmin(cfg.MemoryAdminUsername, hash, "Administrator")
	return store, nil
}

// openSessions creates the configured session store.
func openSessions(cfg *config.Config) (auth.SessionStore, func(), error) {
	if cfg.Session.Backend != config.SessionBackendRedis {
		return auth.NewMemorySessionStore(cfg.Session.TTL), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Session.RedisAddr,
		Password: cfg.Session.RedisPassword,
		DB:       cfg.Session.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), handler.HealthTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return auth.NewRedisSessionStore(client, cfg.Session.TTL), func() { client.Close() }, nil
}
