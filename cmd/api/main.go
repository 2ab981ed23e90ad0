package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/retail-backoffice/internal/api"
	"github.com/example/retail-backoffice/internal/auth"
	"github.com/example/retail-backoffice/internal/command"
	"github.com/example/retail-backoffice/internal/config"
	"github.com/example/retail-backoffice/internal/domain/catalog"
	"github.com/example/retail-backoffice/internal/domain/inventory"
	"github.com/example/retail-backoffice/internal/domain/order"
	"github.com/example/retail-backoffice/internal/email"
	"github.com/example/retail-backoffice/internal/infrastructure/kafka"
	"github.com/example/retail-backoffice/internal/infrastructure/store"
	"github.com/example/retail-backoffice/internal/notification"
	"github.com/example/retail-backoffice/internal/observability"
	"github.com/example/retail-backoffice/internal/query"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not configured yet
		os.Stderr.WriteString("[API] " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		os.Stderr.WriteString("[API] " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("api stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting",
		zap.String("service", config.ServiceName),
		zap.String("version", config.ServiceVersion),
		zap.String("addr", cfg.HTTPAddr),
		zap.Bool("postgres", cfg.DatabaseURL != ""),
		zap.Strings("kafka_brokers", cfg.KafkaBrokers),
		zap.Bool("strict_order_transitions", cfg.StrictOrderTransitions),
	)

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OtelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = store.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := store.EnsureSchema(ctx, db); err != nil {
			return err
		}
		logger.Info("connected to PostgreSQL")
	}

	var publisher store.Publisher = store.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer producer.Close()
		publisher = producer
		logger.Info("publishing events to Kafka", zap.String("topic", cfg.KafkaTopic))
	}

	// Phase one: the catalog is loaded first, the ledger is reconciled against it,
	// and only then is the order service given the ledger as its stock restorer.
	catalogSvc, err := catalog.NewService(ctx,
		repository(cfg, db, "products", func(p catalog.Product) string { return p.ID }, logger),
		logger,
	)
	if err != nil {
		return err
	}

	ledger, err := inventory.NewLedger(ctx, catalogSvc,
		repository(cfg, db, "inventory", func(r inventory.Record) string { return r.ProductID }, logger),
		inventory.WithPublisher(publisher),
		inventory.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	report, err := ledger.Sync(ctx)
	if err != nil {
		return err
	}
	logger.Info("inventory reconciled",
		zap.Int("created", len(report.Created)),
		zap.Int("removed", len(report.Removed)),
		zap.Int("renamed", len(report.Renamed)),
	)

	emailSvc := email.NewService(cfg.MailFrom, logger)
	orderSvc, err := order.NewService(ctx,
		repository(cfg, db, "orders", func(o order.Order) string { return o.ID }, logger),
		ledger,
		order.WithStrictTransitions(cfg.StrictOrderTransitions),
		order.WithNotifier(notification.NewNotifier(emailSvc, logger)),
		order.WithPublisher(publisher),
		order.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	// Phase two: handlers and the HTTP surface
	cmdHandler := command.NewHandler(catalogSvc, ledger, orderSvc, cfg.OperationTimeout, logger)
	queryHandler := query.NewHandler(catalogSvc, ledger, orderSvc)

	jwtService := auth.NewJWTService(cfg.JWTSecret, config.AccessTokenExpiry, config.RefreshTokenExpiry)
	authenticator := auth.NewAuthenticator(cfg.AdminUsername, cfg.AdminPasswordHash)

	router := api.NewRouter(
		api.NewHandlers(cmdHandler, queryHandler, logger),
		api.NewAuthHandlers(authenticator, jwtService, logger),
		jwtService,
		logger,
	)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// repository picks PostgreSQL with a local JSON fallback when a database is configured,
// otherwise the JSON file alone.
func repository[T any](cfg *config.Config, db *sql.DB, collection string, idOf store.IDFunc[T], logger *zap.Logger) store.Repository[T] {
	local := store.NewFileStore[T](cfg.DataFile(collection))
	if db == nil {
		return local
	}
	return store.NewCached[T](store.NewPostgresStore(db, collection, idOf), local, logger)
}
