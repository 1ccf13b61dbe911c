package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopify-quantity-rules/internal/application"
	"shopify-quantity-rules/internal/application/webhook_handlers"
	"shopify-quantity-rules/internal/config"
	"shopify-quantity-rules/internal/infrastructure/api"
	"shopify-quantity-rules/internal/infrastructure/cache"
	"shopify-quantity-rules/internal/infrastructure/encryption"
	"shopify-quantity-rules/internal/infrastructure/repository"
	"shopify-quantity-rules/internal/infrastructure/repository/memory"
	shopifyinfra "shopify-quantity-rules/internal/infrastructure/shopify"
	"shopify-quantity-rules/internal/ports"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// stores groups the persistence and cache adapters selected by STORAGE_DRIVER
type stores struct {
	repos    ports.Repositories
	rulesets ports.RulesetCache
	sessions ports.SessionStore
	deduper  ports.WebhookDeduper
	checks   map[string]api.Pinger
	closers  []func(context.Context) error
}

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg(".env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger = logger.Level(level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("Failed to initialize storage")
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		for _, closeFn := range st.closers {
			if err := closeFn(closeCtx); err != nil {
				logger.Error().Err(err).Msg("Failed to close storage connection")
			}
		}
	}()

	encryptionService, err := encryption.NewService(cfg.EncryptionKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}

	shopifyClient := shopifyinfra.NewClient(shopifyinfra.ClientConfig{
		APIKey:     cfg.ShopifyAPIKey,
		APISecret:  cfg.ShopifyAPISecret,
		APIVersion: cfg.ShopifyAPIVersion,
	}, logger)

	// Initialize application services
	shopService := application.NewShopService(st.repos, st.rulesets, encryptionService, logger)
	ruleService := application.NewRuleService(st.repos.Rules, shopService, st.rulesets, logger)
	settingsService := application.NewSettingsService(st.repos.Settings, shopService, st.rulesets, logger)
	cartService := application.NewCartValidationService(st.repos.Rules, st.repos.Settings, st.rulesets, logger)
	productService := application.NewProductService(shopService, shopifyClient, logger)
	prepShipmentService := application.NewPrepShipmentService(st.repos.PrepShipments, shopService, logger)
	billingService := application.NewBillingService(shopService, shopifyClient, application.BillingOptions{
		Enabled: cfg.Billing.Enabled,
		Plan:    cfg.Billing.Plan(),
		AppURL:  cfg.AppURL,
	}, logger)
	oauthService := application.NewOAuthService(shopifyClient, st.sessions, shopService, application.OAuthOptions{
		Scopes:      cfg.ShopifyScopes,
		AppURL:      cfg.AppURL,
		FrontendURL: cfg.FrontendURL,
	}, logger)

	// Initialize webhook dispatcher and register handlers
	webhookDispatcher := application.NewWebhookDispatcher(logger)
	webhookDispatcher.RegisterHandler(webhook_handlers.NewProductHandler(logger, ruleService))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewCustomerHandler(logger))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewAppUninstalledHandler(logger, shopService))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewShopRedactHandler(logger, shopService))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewAppSubscriptionHandler(logger, shopService))
	webhookService := application.NewWebhookService(st.deduper, shopService, webhookDispatcher, logger)

	router := api.NewRouter(api.Services{
		Rules:         ruleService,
		Settings:      settingsService,
		Carts:         cartService,
		Products:      productService,
		PrepShipments: prepShipmentService,
		Billing:       billingService,
		OAuth:         oauthService,
		Webhooks:      webhookService,
	}, api.RouterOptions{
		WebhookVerifier: shopifyinfra.NewWebhookVerifier(cfg.ShopifyWebhookSecret),
		FrontendURL:     cfg.FrontendURL,
		AllowedOrigins:  cfg.AllowedOrigins,
		RequestTimeout:  cfg.RequestTimeout,
		ReadinessChecks: st.checks,
	}, logger)

	httpServer := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("addr", httpServer.Addr).
			Str("storage", cfg.StorageDriver).
			Bool("billing", cfg.Billing.Enabled).
			Msg("Starting API server")
		logger.Info().Msg("Swagger documentation available at " + cfg.AppURL + "/swagger/index.html")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to shut down server gracefully")
	}
	logger.Info().Msg("Server stopped")
}

// openStores connects the configured storage driver; memory keeps everything in process
func openStores(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*stores, error) {
	if cfg.StorageDriver == config.StorageMemory {
		logger.Warn().Msg("Using in-memory storage; data is lost on restart")
		return &stores{
			repos:    memory.NewStore().Repositories(),
			rulesets: cache.NewMemoryRulesetCache(cfg.RulesetCacheTTL),
			sessions: cache.NewMemorySessionStore(),
			deduper:  cache.NewMemoryWebhookDeduper(),
			checks:   map[string]api.Pinger{},
		}, nil
	}

	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	defer connectCancel()

	mongoClient, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, err
	}
	if err := mongoClient.Ping(connectCtx, readpref.Primary()); err != nil {
		return nil, err
	}
	logger.Info().Str("database", cfg.MongoDatabase).Msg("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDatabase)
	if err := repository.EnsureIndexes(connectCtx, db); err != nil {
		return nil, err
	}

	redisClient, err := cache.NewClient(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	if err := redisClient.Ping(connectCtx); err != nil {
		return nil, err
	}
	logger.Info().Msg("Connected to Redis")

	return &stores{
		repos:    repository.NewMongoRepositories(db),
		rulesets: cache.NewRedisRulesetCache(redisClient, cfg.RulesetCacheTTL),
		sessions: cache.NewRedisSessionStore(redisClient),
		deduper:  cache.NewRedisWebhookDeduper(redisClient),
		checks: map[string]api.Pinger{
			"mongodb": api.PingFunc(func(ctx context.Context) error {
				return mongoClient.Ping(ctx, readpref.Primary())
			}),
			"redis": redisClient,
		},
		closers: []func(context.Context) error{
			mongoClient.Disconnect,
			func(context.Context) error { return redisClient.Close() },
		},
	}, nil
}
