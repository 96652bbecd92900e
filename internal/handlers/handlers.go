package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gitshopapp/trackpage/internal/config"
	"github.com/gitshopapp/trackpage/internal/logging"
	"github.com/gitshopapp/trackpage/internal/models"
	"github.com/gitshopapp/trackpage/internal/services"
	"github.com/gitshopapp/trackpage/internal/session"
)

const maxRequestBodyBytes = 64 << 10 // 64 KB

// PageService is the status page surface the handlers drive.
type PageService interface {
	Generate(ctx context.Context, in services.GenerateInput) (*models.StatusPage, error)
	Save(ctx context.Context, id string) (*models.StatusPage, error)
	Get(ctx context.Context, id string) (*models.StatusPage, error)
	Refresh(ctx context.Context, id string) (*models.StatusPage, error)
	Delete(ctx context.Context, id string) error
	ListSaved(ctx context.Context, limit int) ([]*models.StatusPage, error)
}

// PageSharer emails a page link to a recipient.
type PageSharer interface {
	Enabled() bool
	PublicURL(id string) string
	SharePage(ctx context.Context, id, recipient string) error
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers provides the HTTP handlers for the tracking page API and public pages.
type Handlers struct {
	config         *config.Config
	pages          PageService
	sharer         PageSharer
	authService    *services.AdminAuthService
	sessionManager *session.Manager
	durableStore   Pinger
	cache          Pinger
	logger         *slog.Logger
}

type Dependencies struct {
	Config         *config.Config
	Pages          PageService
	Sharer         PageSharer
	AuthService    *services.AdminAuthService
	SessionManager *session.Manager
	// DurableStore is optional; nil when no database is configured.
	DurableStore Pinger
	// Cache is optional; when set, health reports its reachability.
	Cache  Pinger
	Logger *slog.Logger
}

func New(deps Dependencies) (*Handlers, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if deps.Config == nil {
		return nil, fmt.Errorf("handlers dependencies: config is required")
	}
	if deps.Pages == nil {
		return nil, fmt.Errorf("handlers dependencies: pages is required")
	}
	if deps.Sharer == nil {
		return nil, fmt.Errorf("handlers dependencies: sharer is required")
	}
	if deps.AuthService == nil {
		return nil, fmt.Errorf("handlers dependencies: authService is required")
	}
	if deps.SessionManager == nil {
		return nil, fmt.Errorf("handlers dependencies: sessionManager is required")
	}

	return &Handlers{
		config:         deps.Config,
		pages:          deps.Pages,
		sharer:         deps.Sharer,
		authService:    deps.AuthService,
		sessionManager: deps.SessionManager,
		durableStore:   deps.DurableStore,
		cache:          deps.Cache,
		logger:         logger.With("component", "handlers"),
	}, nil
}

// Health reports liveness along with the state of the page stores. Any
// unreachable store turns the response into a 503.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	status := http.StatusOK
	body := map[string]string{
		"status":  "healthy",
		"durable": "disabled",
		"cache":   "disabled",
	}

	if h.durableStore != nil {
		body["durable"] = "ok"
		if err := h.durableStore.Ping(ctx); err != nil {
			logger.Error("database health check failed", "error", err)
			body["durable"] = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}
	if h.cache != nil {
		body["cache"] = "ok"
		if err := h.cache.Ping(ctx); err != nil {
			logger.Error("cache health check failed", "error", err)
			body["cache"] = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}

	if status != http.StatusOK {
		body["status"] = "unhealthy"
	}
	writeJSON(w, r, status, body)
}

// SessionMiddleware adds session data to the request context
func (h *Handlers) SessionMiddleware(next http.Handler) http.Handler {
	return h.sessionManager.Middleware(next)
}

func (h *Handlers) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, h.logger)
}

func SecureCookiesFromConfig(cfg *config.Config) bool {
	if cfg == nil {
		return false
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL != "" {
		if parsed, err := url.Parse(baseURL); err == nil {
			return strings.EqualFold(parsed.Scheme, "https")
		}
	}

	return cfg.Port == "443" || cfg.Port == "8443"
}
