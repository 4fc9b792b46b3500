package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fifilen/foodapp/internal/apiclient"
	c "github.com/fifilen/foodapp/internal/cache"
	"github.com/fifilen/foodapp/internal/cart"
	"github.com/fifilen/foodapp/internal/checkout"
	"github.com/fifilen/foodapp/internal/config"
	"github.com/fifilen/foodapp/internal/favorites"
	h "github.com/fifilen/foodapp/internal/http"
	"github.com/fifilen/foodapp/internal/journal"
	"github.com/fifilen/foodapp/internal/logging"
	"github.com/fifilen/foodapp/internal/poller"
	"github.com/fifilen/foodapp/internal/publisher"
	"github.com/fifilen/foodapp/internal/session"
	"github.com/fifilen/foodapp/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()
	defer zap.ReplaceGlobals(logger)()

	policy, err := cart.ParsePolicy(cfg.CartPolicy)
	if err != nil {
		logger.Fatal("invalid cart policy", zap.Error(err))
	}

	ctx := context.Background()
	shutdownTracing, err := telemetry.Setup(ctx, "foodapp", cfg.OTelEndpoint)
	if err != nil {
		logger.Fatal("failed to set up tracing", zap.Error(err))
	}
	metrics := telemetry.NewMetrics()

	// Upstream API
	clientOpts := []apiclient.Option{
		apiclient.WithTimeout(cfg.APITimeout),
		apiclient.WithLogger(logger.Named("apiclient")),
	}
	if cfg.BreakerEnabled {
		clientOpts = append(clientOpts, apiclient.WithBreaker("upstream-api"))
	}
	api := apiclient.New(cfg.APIBaseURL, clientOpts...)

	// Cart cache is optional
	var cartCache c.CartCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal("redis connection failed", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		logger.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))
		cartCache = c.NewRedisCache(redisClient)
	}
	carts := session.NewRegistry(policy, cartCache, logger.Named("session"))

	checkoutOpts := []checkout.Option{
		checkout.WithRecorder(metrics),
		checkout.WithLogger(logger.Named("checkout")),
	}

	var pending h.PendingPayments
	var outbox *journal.Journal
	if cfg.JournalPath != "" {
		j, err := journal.NewJournal(cfg.JournalPath)
		if err != nil {
			logger.Fatal("failed to open checkout journal", zap.String("path", cfg.JournalPath), zap.Error(err))
		}
		defer j.Close()
		if err := j.RunMigrations(); err != nil {
			logger.Fatal("failed to run journal migrations", zap.Error(err))
		}
		logger.Info("checkout journal ready", zap.String("path", cfg.JournalPath))
		checkoutOpts = append(checkoutOpts, checkout.WithJournal(j))
		pending = j
		outbox = j
	}

	if len(cfg.KafkaBrokers) > 0 {
		// checkout events are relayed from the journal, never sent inline
		if outbox != nil {
			pub := publisher.NewKafkaPublisher(cfg.KafkaBrokers...)
			defer pub.Close()
			relay := publisher.NewOutboxPoller(outbox, pub, logger.Named("outbox"))
			relayCtx, stopRelay := context.WithCancel(ctx)
			defer stopRelay()
			go relay.Run(relayCtx)
			logger.Info("relaying checkout events", zap.Strings("brokers", cfg.KafkaBrokers))
		} else {
			logger.Warn("kafka brokers set without a checkout journal, checkout events will not be published")
		}

		groupID := cfg.KafkaGroupID
		if groupID == "" {
			hostname, _ := os.Hostname()
			groupID = "foodapp-bff-" + hostname
		}
		p := poller.NewPoller(carts, groupID, logger.Named("poller"), cfg.KafkaBrokers...)
		defer p.Close()
		pollCtx, stopPolling := context.WithCancel(ctx)
		defer stopPolling()
		go p.Run(pollCtx)
	}

	checkoutService := checkout.NewService(api, checkoutOpts...)
	favoritesService := favorites.NewService(api, logger.Named("favorites"))

	router := h.NewRouter(h.RouterConfig{
		Cart:           h.NewCartHandler(carts, metrics, logger.Named("cart"), cfg.RequestTimeout),
		Checkout:       h.NewCheckoutHandler(carts, checkoutService, pending, logger.Named("checkout"), cfg.RequestTimeout),
		Favorites:      h.NewFavoritesHandler(favoritesService, cfg.RequestTimeout),
		Metrics:        metrics.Handler(),
		Recorder:       metrics,
		Logger:         logger.Named("http"),
		JWTSecret:      []byte(cfg.JWTSecret),
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("foodapp BFF starting", zap.String("port", cfg.HTTPPort), zap.Stringer("cart_policy", policy))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("failed to flush traces", zap.Error(err))
	}

	logger.Info("server exited")
}
