package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"booking/internal/app"
	"booking/internal/config"
	"booking/internal/handler"
	"booking/internal/logger"
	"booking/internal/payment"
	internalRedis "booking/internal/redis"
	"booking/internal/repository"
	"booking/internal/repository/memory"
	"booking/internal/repository/postgres"
	"booking/internal/service"
	"booking/internal/userdirectory"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	log := logger.New(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.WithError(err).Error("failed to initialize New Relic")
		} else {
			log.WithField("app", cfg.NewRelic.AppName).Info("New Relic enabled")
		}
	}

	// Initialize the booking store.
	var (
		db    *sql.DB
		store storage
	)
	if cfg.Database.Driver == "memory" {
		store = newMemoryStorage()
		log.Warn("using in-memory booking store; data is lost on restart")
	} else {
		db, err = app.NewDatabase(ctx, cfg.Database, nrApp)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to database")
		}
		defer db.Close()
		log.WithField("driver", cfg.Database.Driver).Info("Connected to PostgreSQL")

		if cfg.Database.Migrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				log.WithError(err).Fatal("failed to apply migrations")
			}
			log.Info("Migrations applied")
		}
		store = newSQLStorage(db)
	}

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.WithField("addr", cfg.Redis.Addr).Info("Connected to Redis")
	} else {
		log.Warn("redis disabled; driver accept lock, profile cache and idempotency are off")
	}

	publisher, err := app.NewEventPublisher(cfg.Events, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize event publisher")
	}
	defer publisher.Close()
	notifier := service.NewNotifier(publisher, log, cfg.Events.QueueSize)

	// Wire dependencies.
	server, err := wireServer(store, redisClient, notifier, nrApp, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to wire server")
	}

	// Start server in goroutine.
	go func() {
		log.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	if err := notifier.Close(shutdownCtx); err != nil {
		log.WithError(err).Warn("booking events still queued at shutdown")
	}
	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	log.Info("Server exited")
}

// storage is the booking store as seen by the services.
type storage struct {
	tx       repository.Transactor
	bookings repository.BookingRepository
}

func newMemoryStorage() storage {
	s := memory.NewStore()
	return storage{tx: s, bookings: s.Repository()}
}

func newSQLStorage(db *sql.DB) storage {
	return storage{
		tx:       postgres.NewTransactor(db),
		bookings: postgres.NewBookingRepository(db),
	}
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(
	store storage,
	redisClient *redis.Client,
	notifier *service.Notifier,
	nrApp *newrelic.Application,
	cfg *config.Config,
	log logrus.FieldLogger,
) (*http.Server, error) {
	// User directory, cached in Redis when available.
	var directory userdirectory.Directory = userdirectory.NewClient(cfg.UserDirectory.BaseURL, cfg.UserDirectory.Timeout)

	// Initialize Redis stores.
	var lockStore internalRedis.LockStoreInterface
	if redisClient != nil {
		lockStore = internalRedis.NewLockStore(redisClient)
		cacheStore := internalRedis.NewCacheStore(redisClient, cfg.UserDirectory.CacheTTL)
		directory = userdirectory.NewCachedDirectory(directory, cacheStore, log)
	}

	estimator, err := service.NewDistanceEstimator(cfg.Booking.DistanceEstimator)
	if err != nil {
		return nil, err
	}

	var provider payment.Provider
	if cfg.Payment.StripeSecretKey != "" {
		provider = payment.NewStripeProvider(cfg.Payment.StripeSecretKey)
	} else {
		log.Warn("STRIPE_SECRET_KEY not set; using mock payment provider")
		provider = payment.NewMockProvider()
	}

	// Initialize services.
	enricher := service.NewEnricher(directory, log)
	bookingService := service.NewBookingService(
		store.tx, store.bookings, estimator, lockStore, cfg.Booking.AcceptLockTTL, enricher, notifier, log,
	)
	queryService := service.NewQueryService(store.bookings, enricher)
	paymentService := service.NewPaymentService(store.tx, store.bookings, provider, cfg.Payment.Currency, notifier, log)
	receiptService := service.NewReceiptService(store.bookings)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		BookingHandler: handler.NewBookingHandler(bookingService, queryService),
		DriverHandler:  handler.NewDriverHandler(bookingService, queryService),
		AdminHandler:   handler.NewAdminHandler(queryService),
		PaymentHandler: handler.NewPaymentHandler(paymentService, receiptService),
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
		Logger:         log,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, nil
}
