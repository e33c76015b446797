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
	"stock-inventory/internal/products"
	producthttp "stock-inventory/internal/products/http"
	"stock-inventory/internal/products/messaging"
	"stock-inventory/internal/products/repository"
	"stock-inventory/internal/products/service"

	_ "stock-inventory/docs"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	metricCreatedTotal    = "products_created_total"
	metricUpdatedTotal    = "products_updated_total"
	metricDeletedTotal    = "products_deleted_total"
	metricAlertsTotal     = "lowstock_alerts_total"
	migrateSourcePrefix   = "file://"
	postgresDriverName    = "postgres"
	limiterCleanupPeriod  = time.Minute
	emailHTTPClientBuffer = 5 * time.Second
)

// @title        Stock Inventory API
// @version      1.0
// @description  Product catalog, inventory reports and daily low-stock email alerts.
// @host         localhost:8080
// @BasePath     /
func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadProducts()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if err := runMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		logger.Error("run migrations", "error", err)
		os.Exit(1)
	}

	db, err := sql.Open(postgresDriverName, cfg.DatabaseURL)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), cfg.DBPingTimeout)
	defer pingCancel()
	if err := db.PingContext(pingCtx); err != nil {
		logger.Error("ping database", "error", err)
		os.Exit(1)
	}

	rabbitConn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Error("connect rabbitmq", "error", err)
		os.Exit(1)
	}
	defer rabbitConn.Close()

	publisher, err := messaging.NewRabbitPublisher(rabbitConn, products.EventsQueue)
	if err != nil {
		logger.Error("init publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	gateStore, closeGate, err := gate.Open(pingCtx, cfg.RedisURL, cfg.GateSlot, db)
	if err != nil {
		logger.Error("open alert gate", "error", err)
		os.Exit(1)
	}
	defer closeGate()

	counters := service.Counters{
		Created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricCreatedTotal,
			Help: "Total number of products created",
		}),
		Updated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricUpdatedTotal,
			Help: "Total number of product updates, including quantity changes",
		}),
		Deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricDeletedTotal,
			Help: "Total number of products deleted",
		}),
	}
	alertOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricAlertsTotal,
		Help: "Low-stock alert attempts by outcome",
	}, []string{"status", "reason"})
	prometheus.MustRegister(counters.Created, counters.Updated, counters.Deleted, alertOutcomes)

	repo := repository.NewPostgres(db, cfg.DefaultMinQty)
	svc := service.New(repo, publisher, logger, counters, cfg.DefaultMinQty)

	emailClient := email.New(cfg.EmailConfig(), &http.Client{Timeout: cfg.SendTimeout + emailHTTPClientBuffer})
	if !emailClient.Configured() {
		logger.Warn("email delivery is not configured, low-stock alerts will fail")
	}
	notifier := lowstock.NewNotifier(emailClient, gateStore, lowstock.Options{
		SendTimeout: cfg.SendTimeout,
		Location:    cfg.Location,
	}, logger, alertOutcomes)
	alertService := alerts.New(svc, notifier, cfg.Recipient)

	limiter := producthttp.NewRateLimiter(cfg.AlertRate(), cfg.AlertRateBurst)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(producthttp.RequestIDMiddleware())
	router.Use(producthttp.AccessLogMiddleware(logger))
	producthttp.RegisterRoutes(router, producthttp.Handlers{
		Products:     producthttp.NewHandler(svc),
		Reports:      producthttp.NewReportHandler(svc, cfg.Location),
		Alerts:       producthttp.NewAlertHandler(alertService),
		AlertLimiter: limiter,
	}, repo, publisher, gateStore)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go limiter.Cleanup(ctx, limiterCleanupPeriod)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("products service started", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("http server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("products service stopped")
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
