package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gitshopapp/trackpage/internal/cache"
	"github.com/gitshopapp/trackpage/internal/config"
	"github.com/gitshopapp/trackpage/internal/crypto"
	"github.com/gitshopapp/trackpage/internal/db"
	"github.com/gitshopapp/trackpage/internal/email"
	"github.com/gitshopapp/trackpage/internal/handlers"
	"github.com/gitshopapp/trackpage/internal/logging"
	"github.com/gitshopapp/trackpage/internal/services"
	"github.com/gitshopapp/trackpage/internal/session"
	"github.com/gitshopapp/trackpage/internal/shopify"
	"github.com/gitshopapp/trackpage/internal/timeline"
)

const defaultCacheSize = 10_000

type App struct {
	Config         *config.Config
	Logger         *slog.Logger
	DB             *pgxpool.Pool
	CacheProvider  cache.Provider
	SessionManager *session.Manager
	Handlers       *handlers.Handlers

	closeLog      func() error
	stopJanitor   context.CancelFunc
	janitorDone   sync.WaitGroup
	sentryEnabled bool
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg}
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
		}); err != nil {
			return nil, fmt.Errorf("failed to initialize sentry: %w", err)
		}
		a.sentryEnabled = true
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
		Sentry: a.sentryEnabled,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Logger = logger
	a.closeLog = closeLog

	if err := a.wire(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire() error {
	cfg := a.Config
	logger := a.Logger

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	var pageStore *db.PageStore
	if cfg.DurableStoreEnabled() {
		database, err := db.Connect(startupCtx, cfg.DatabaseURL, db.PoolOptions{MaxConns: cfg.DatabaseMaxConns}, logger.With("component", "db"))
		if err != nil {
			return err
		}
		a.DB = database

		sealer, err := crypto.NewSealer(cfg.EncryptionKey)
		if err != nil {
			return fmt.Errorf("failed to initialize sealer: %w", err)
		}
		pageStore, err = db.NewPageStore(database, sealer)
		if err != nil {
			return fmt.Errorf("failed to initialize page store: %w", err)
		}
		if err := pageStore.EnsureSchema(startupCtx); err != nil {
			return err
		}
	} else {
		logger.Warn("DATABASE_URL not set; saved pages live only in the volatile cache")
	}

	cacheProvider, err := cache.NewProvider(cache.Config{
		Provider:              cfg.CacheProvider,
		RedisConnectionString: cfg.RedisConnectionString,
		MemorySize:            defaultCacheSize,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize cache provider: %w", err)
	}
	a.CacheProvider = cacheProvider
	logger.Info("page cache ready", "provider", cacheProvider.Name())

	sessionStore, err := session.NewStore(startupCtx, session.Config{
		Provider:              cfg.SessionStoreProvider,
		RedisConnectionString: cfg.RedisConnectionString,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	a.SessionManager = session.NewManager(sessionStore, handlers.SecureCookiesFromConfig(cfg), cfg.AdminTokenTTL)

	facilities, err := timeline.LoadFacilities(cfg.FacilitiesFile)
	if err != nil {
		return err
	}
	location := cfg.Location()
	synthesizer := timeline.NewSynthesizer(timeline.Options{
		Facilities:              facilities,
		Location:                location,
		FulfillmentAnchorWindow: cfg.FulfillmentAnchorWindow,
	})

	shopifyClient, err := shopify.NewClient(shopify.Config{
		ShopDomain:         cfg.ShopifyShopDomain,
		AccessToken:        cfg.ShopifyAccessToken,
		APIVersion:         cfg.ShopifyAPIVersion,
		Timeout:            cfg.ShopifyTimeout,
		MetafieldNamespace: cfg.ReplacementMetafieldNamespace,
		MetafieldKey:       cfg.ReplacementMetafieldKey,
	}, nil, logger.With("component", "shopify_client"))
	if err != nil {
		return fmt.Errorf("failed to initialize shopify client: %w", err)
	}

	pageCache, err := services.NewPageCache(cacheProvider, cfg.UnsavedPageTTL)
	if err != nil {
		return err
	}

	// Interface values stay nil unless the store exists.
	var durable services.DurablePageStore
	var durablePinger handlers.Pinger
	if pageStore != nil {
		durable = pageStore
		durablePinger = pageStore
	}

	pageService, err := services.NewTrackingPageService(services.TrackingPageDependencies{
		Gateway:      shopifyClient,
		Cache:        pageCache,
		Store:        durable,
		Synthesizer:  synthesizer,
		RefreshAfter: cfg.PageRefreshAfter,
		Location:     location,
		NewID:        uuid.NewString,
		Logger:       logger.With("component", "tracking_page_service"),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracking page service: %w", err)
	}

	authService, err := services.NewAdminAuthService(cfg.AdminPassword, cfg.TokenSigningKey, cfg.AdminTokenTTL, logger.With("component", "admin_auth"))
	if err != nil {
		return fmt.Errorf("failed to initialize admin auth: %w", err)
	}

	emailProvider, err := email.NewProvider(email.Config{
		Provider: "resend",
		APIKey:   cfg.ResendAPIKey,
		From:     cfg.EmailFrom,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize email provider: %w", err)
	}
	shareService, err := services.NewShareService(pageService, emailProvider, cfg.BaseURL, logger.With("component", "share_service"))
	if err != nil {
		return fmt.Errorf("failed to initialize share service: %w", err)
	}
	if !shareService.Enabled() {
		logger.Info("page sharing disabled; RESEND_API_KEY and EMAIL_FROM are not both set")
	} else if err := emailProvider.ValidateAPIKey(startupCtx); err != nil {
		// Sending-only keys cannot list keys, so this is only a hint.
		logger.Warn("could not verify email API key", "error", err)
	}

	var sweeper services.Sweeper
	if memory, ok := cacheProvider.(*cache.MemoryProvider); ok {
		sweeper = memory
	}
	janitor, err := services.NewJanitor(services.JanitorConfig{
		Store:         durable,
		Sweeper:       sweeper,
		Retention:     cfg.PageRetention,
		PruneInterval: cfg.PruneInterval,
		SweepInterval: cfg.CacheSweepInterval,
		Logger:        logger.With("component", "janitor"),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize janitor: %w", err)
	}

	h, err := handlers.New(handlers.Dependencies{
		Config:         cfg,
		Pages:          pageService,
		Sharer:         shareService,
		AuthService:    authService,
		SessionManager: a.SessionManager,
		DurableStore:   durablePinger,
		Cache:          cacheProvider,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize handlers: %w", err)
	}
	a.Handlers = h

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	a.stopJanitor = stopJanitor
	a.janitorDone.Add(1)
	go func() {
		defer a.janitorDone.Done()
		janitor.Run(janitorCtx)
	}()

	return nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.stopJanitor != nil {
		a.stopJanitor()
		a.janitorDone.Wait()
	}
	if a.SessionManager != nil {
		closeSessionManager(a.Logger, a.SessionManager)
	}
	if a.CacheProvider != nil {
		closeCacheProvider(a.Logger, a.CacheProvider)
	}
	if a.DB != nil {
		a.DB.Close()
	}
	if a.sentryEnabled {
		sentry.Flush(2 * time.Second)
	}
	if a.closeLog != nil {
		if err := a.closeLog(); err != nil && a.Logger != nil {
			a.Logger.Warn("failed to close log file", "error", err)
		}
	}
}

func closeSessionManager(logger *slog.Logger, manager *session.Manager) {
	if manager == nil {
		return
	}
	if err := manager.Close(); err != nil && logger != nil {
		logger.Warn("failed to close session manager", "error", err)
	}
}

func closeCacheProvider(logger *slog.Logger, provider cache.Provider) {
	if provider == nil {
		return
	}
	if err := provider.Close(); err != nil && logger != nil {
		logger.Warn("failed to close cache provider", "error", err)
	}
}
