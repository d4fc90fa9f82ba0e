package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/sanctified-studios/studio/internal/app"
	"github.com/sanctified-studios/studio/internal/bookings"
	"github.com/sanctified-studios/studio/internal/dispatch"
	"github.com/sanctified-studios/studio/internal/enquiries"
	"github.com/sanctified-studios/studio/internal/messaging"
	"github.com/sanctified-studios/studio/internal/observability"
	"github.com/sanctified-studios/studio/internal/platform/cache"
	"github.com/sanctified-studios/studio/internal/platform/db"
	"github.com/sanctified-studios/studio/internal/storage"
	"github.com/sanctified-studios/studio/jobs"
	"github.com/sanctified-studios/studio/migrations"
	"github.com/sanctified-studios/studio/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	if cfg.MigrateOnStart {
		applied, err := migrations.Apply(ctx, dbpool)
		if err != nil {
			logger.Error("apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("migrations applied", slog.Int("count", applied))
	}

	var linkCache *storage.LinkCache
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, document links will not be cached", slog.Any("error", err))
	} else {
		linkCache = storage.NewLinkCache(redisClient, cfg.LinkCacheTTL)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	renderer, err := app.NewRenderer(cfg)
	if err != nil {
		logger.Error("init receipt renderer", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.ReceiptRenderer == app.RendererGotenberg {
		if err := report.NewClient(cfg.GotenbergURL).Ping(ctx); err != nil {
			logger.Warn("gotenberg ping, receipts will fall back to text", slog.Any("error", err))
		}
	}

	objectStore := storage.NewObjectStore(cfg.StorageConfig())
	if !objectStore.Enabled() {
		logger.Warn("document storage not configured, receipts will fall back to text")
	}
	whatsapp := messaging.NewCloudClient(cfg.MessagingConfig())

	metrics := observability.NewMetrics()
	var cacheBackend dispatch.LinkCache
	if linkCache != nil {
		cacheBackend = linkCache
	}
	dispatcher := dispatch.New(renderer, objectStore, cacheBackend, whatsapp, metrics, logger)
	issuer := cfg.Issuer()

	enquiryService := enquiries.NewService(enquiries.NewRepository(dbpool), cfg.PhoneDefaultCountry)
	enquiryHandler := enquiries.NewHandler(logger, enquiryService, dispatcher, issuer)

	bookingService := bookings.NewService(bookings.NewRepository(dbpool), bookings.ServiceConfig{DefaultCountry: cfg.PhoneDefaultCountry}, metrics, logger)
	bookingHandler := bookings.NewHandler(logger, bookingService, dispatcher, issuer)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		EnquiryHandler: enquiryHandler,
		BookingHandler: bookingHandler,
		JobHandler:     jobHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("http server", slog.Any("error", err))
		os.Exit(1)
	}
}
