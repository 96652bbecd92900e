package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/gitshopapp/trackpage/internal/config"
	"github.com/gitshopapp/trackpage/internal/handlers"
	uiassets "github.com/gitshopapp/trackpage/ui/assets"
)

type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	handlers   *handlers.Handlers
	httpServer *http.Server
}

func New(cfg *config.Config, logger *slog.Logger, h *handlers.Handlers) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if h == nil {
		return nil, fmt.Errorf("handlers are required")
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		handlers: h,
	}

	router := s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

func (s *Server) Run() error {
	s.logger.Info("server starting", "port", s.cfg.Port)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Close(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return nil
	}

	s.logger.Info("server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) buildRouter() *mux.Router {
	h := s.handlers

	r := mux.NewRouter()
	r.Use(h.RequestLogger)
	r.Use(h.SecurityHeaders)
	r.Use(h.MetricsContext)
	r.NotFoundHandler = http.HandlerFunc(h.NotFound)

	r.HandleFunc("/health", h.Health).Methods("GET").Name("health")
	r.PathPrefix("/assets/").Handler(http.StripPrefix("/assets/", http.FileServer(http.FS(uiassets.FS)))).Name("assets")

	// Public status pages
	r.HandleFunc("/track/{id}", h.TrackPage).Methods("GET").Name("track.page")
	r.HandleFunc("/api/pages/{id}", h.GetPage).Methods("GET").Name("api.pages.get")

	authRouter := r.PathPrefix("/api/auth").Subrouter()
	authRouter.Use(h.SessionMiddleware)
	authRouter.Use(h.RequireSameOrigin)
	authRouter.HandleFunc("/login", h.Login).Methods("POST").Name("api.auth.login")
	authRouter.HandleFunc("/logout", h.Logout).Methods("POST").Name("api.auth.logout")
	authRouter.Handle("/check", h.RequireAdmin(http.HandlerFunc(h.AuthCheck))).Methods("GET").Name("api.auth.check")

	// Admin API - session cookie or bearer token
	adminRouter := r.PathPrefix("/api").Subrouter()
	adminRouter.Use(h.SessionMiddleware)
	adminRouter.Use(h.RequireAdmin)
	adminRouter.Use(h.RequireSameOrigin)
	adminRouter.HandleFunc("/pages", h.GeneratePage).Methods("POST").Name("api.pages.generate")
	adminRouter.HandleFunc("/pages", h.ListPages).Methods("GET").Name("api.pages.list")
	adminRouter.HandleFunc("/pages/{id}/save", h.SavePage).Methods("POST").Name("api.pages.save")
	adminRouter.HandleFunc("/pages/{id}/refresh", h.RefreshPage).Methods("POST").Name("api.pages.refresh")
	adminRouter.HandleFunc("/pages/{id}/share", h.SharePage).Methods("POST").Name("api.pages.share")
	adminRouter.HandleFunc("/pages/{id}", h.DeletePage).Methods("DELETE").Name("api.pages.delete")
	adminRouter.HandleFunc("/carriers/classify", h.ClassifyCarrier).Methods("GET").Name("api.carriers.classify")

	return r
}
