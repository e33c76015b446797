package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"stock-inventory/internal/alerts"
	"stock-inventory/internal/config"
	"stock-inventory/internal/email"
	"stock-inventory/internal/gate"
	"stock-inventory/internal/lowstock"
	"stock-inventory/internal/notifications"
	"stock-inventory/internal/products"
	"stock-inventory/internal/products/repository"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	migrateSourcePrefix   = "file://"
	postgresDriverName    = "postgres"
	emailHTTPClientBuffer = 5 * time.Second
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	os.Exit(run(logger))
}

func run(logger *slog.Logger) int {
	cfg, err := config.LoadNotifications()
	if err != nil {
		logger.Error("load config", "error", err)
		return 1
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if err := runMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		logger.Error("run migrations", "error", err)
		return 1
	}

	db, err := sql.Open(postgresDriverName, cfg.DatabaseURL)
	if err != nil {
		logger.Error("open database", "error", err)
		return 1
	}
	defer db.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), cfg.DBPingTimeout)
	defer pingCancel()
	if err := db.PingContext(pingCtx); err != nil {
		logger.Error("ping database", "error", err)
		return 1
	}

	gateStore, closeGate, err := gate.Open(pingCtx, cfg.RedisURL, cfg.GateSlot, db)
	if err != nil {
		logger.Error("open alert gate", "error", err)
		return 1
	}
	defer closeGate()

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Error("connect rabbitmq", "error", err)
		return 1
	}
	defer conn.Close()

	alertOutcomes := newAlertOutcomes(prometheus.DefaultRegisterer)

	repo := repository.NewPostgres(db, cfg.DefaultMinQty)
	watcher := notifications.NewWatcher(repo, logger)

	emailClient := email.New(cfg.EmailConfig(), &http.Client{Timeout: cfg.SendTimeout + emailHTTPClientBuffer})
	if !emailClient.Configured() {
		logger.Warn("email delivery is not configured, low-stock alerts will fail")
	}
	notifier := lowstock.NewNotifier(emailClient, gateStore, lowstock.Options{
		SendTimeout: cfg.SendTimeout,
		Location:    cfg.Location,
	}, logger, alertOutcomes)
	alertService := alerts.New(alerts.SourceFunc(watcher.List), notifier, cfg.Recipient)

	unsubscribe := watcher.Subscribe(func(ctx context.Context, items []products.Product) {
		alertService.Check(ctx, items)
	})
	defer unsubscribe()

	consumer, err := notifications.NewConsumer(conn, products.EventsQueue, watcher, logger)
	if err != nil {
		logger.Error("init consumer", "error", err)
		return 1
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The list is checked once at startup so a restart on a new day does not
	// wait for the next product change.
	if _, err := alertService.CheckCurrent(ctx); err != nil {
		logger.Error("initial low-stock check failed", "error", err)
	}

	metricsServer := newMetricsServer(cfg.MetricsAddr, prometheus.DefaultGatherer)
	go func() {
		logger.Info("metrics listener started", "addr", cfg.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics listener failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics listener shutdown failed", "error", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("notifications service started")
		errCh <- consumer.Listen(ctx)
	}()

	waitForDrain := false
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		waitForDrain = true
	case err := <-errCh:
		if err != nil {
			logger.Error("consumer failed", "error", err)
			return 1
		}
	}

	if waitForDrain {
		shutdownDeadline := time.NewTimer(cfg.ShutdownTimeout)
		defer shutdownDeadline.Stop()
		select {
		case err := <-errCh:
			if err != nil {
				logger.Error("consumer stop failed", "error", err)
				return 1
			}
		case <-shutdownDeadline.C:
			logger.Warn("consumer shutdown timeout reached")
		}
	}

	logger.Info("notifications service stopped")
	return 0
}

func runMigrations(databaseURL, migrationsPath string) error {
	m, err := migrate.New(migrateSourcePrefix+migrationsPath, databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}
