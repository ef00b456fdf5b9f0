package api

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/plataforma-eventos/server/internal/api/handlers"
	"github.com/plataforma-eventos/server/internal/api/middleware"
	"github.com/plataforma-eventos/server/internal/audit"
	"github.com/plataforma-eventos/server/internal/auth"
	"github.com/plataforma-eventos/server/internal/config"
	"github.com/plataforma-eventos/server/internal/domain/dashboard"
	"github.com/plataforma-eventos/server/internal/domain/events"
	"github.com/plataforma-eventos/server/internal/domain/questions"
	"github.com/plataforma-eventos/server/internal/domain/users"
	"github.com/plataforma-eventos/server/internal/metrics"
	"github.com/plataforma-eventos/server/internal/store"
	"github.com/plataforma-eventos/server/internal/uploads"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Router bundles the HTTP handler with the shared components the serve
// command needs outside request handling (admin bootstrap, seeding).
type Router struct {
	Handler http.Handler
	Store   *store.Store
	Users   *users.Service
}

func NewRouter(cfg config.Config, logger zerolog.Logger) (*Router, error) {
	st, err := store.New(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}

	sessions, err := auth.NewSessionManager(cfg.Auth.SessionSecret, cfg.Auth.SessionExpiry)
	if err != nil {
		return nil, fmt.Errorf("session manager: %w", err)
	}

	csrfKey, err := auth.DeriveCSRFKey([]byte(cfg.Auth.SessionSecret))
	if err != nil {
		return nil, fmt.Errorf("derive csrf key: %w", err)
	}

	uploadManager, err := uploads.NewManager(cfg.Storage.UploadsDir)
	if err != nil {
		return nil, fmt.Errorf("uploads dir: %w", err)
	}

	recorder := audit.NewRecorder(st, logger)
	userService := users.NewService(st, sessions, recorder, logger)
	eventService := events.NewService(st, uploadManager, recorder, cfg.Server.BaseURL, logger)
	questionService := questions.NewService(st, recorder, logger)
	dashboardService := dashboard.NewService(st)

	env := cfg.Environment
	authHandler := handlers.NewAuthHandler(userService, sessions, env)
	eventsHandler := handlers.NewEventsHandler(eventService, env)
	reportsHandler := handlers.NewReportsHandler(eventService, env)
	questionsHandler := handlers.NewQuestionsHandler(questionService, env)
	adminHandler := handlers.NewAdminHandler(userService, dashboardService, st, env)

	requireAuth := middleware.RequireAuth(sessions, env)
	requireAdmin := middleware.RequireAdmin(sessions, env)
	jsonSize := middleware.JSONRequestSize()
	uploadSize := middleware.UploadRequestSize()

	// One limiter store shared by every route; the tier wrapper has to sit
	// outside the limiter so the tier is in the context when it runs.
	limit := middleware.RateLimit(cfg.RateLimit)
	loginTier := middleware.WithRateLimitTierHandler(middleware.TierLogin)
	adminTier := middleware.WithRateLimitTierHandler(middleware.TierAdmin)
	public := func(h http.Handler) http.Handler { return limit(h) }
	login := func(h http.Handler) http.Handler { return loginTier(limit(h)) }
	admin := func(h http.Handler) http.Handler { return adminTier(limit(requireAdmin(h))) }
	authed := func(h http.Handler) http.Handler { return limit(requireAuth(h)) }

	mux := http.NewServeMux()
	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", handlers.Readyz(st))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadManager.BaseDir()))))

	mux.Handle("/api/v1/auth/register", instrument("/api/v1/auth/register", methodMux(map[string]http.Handler{
		http.MethodPost: login(jsonSize(http.HandlerFunc(authHandler.Register))),
	})))
	mux.Handle("/api/v1/auth/login", instrument("/api/v1/auth/login", methodMux(map[string]http.Handler{
		http.MethodPost: login(jsonSize(http.HandlerFunc(authHandler.Login))),
	})))
	mux.Handle("/api/v1/auth/logout", instrument("/api/v1/auth/logout", methodMux(map[string]http.Handler{
		http.MethodPost: authed(http.HandlerFunc(authHandler.Logout)),
	})))
	mux.Handle("/api/v1/auth/session", instrument("/api/v1/auth/session", methodMux(map[string]http.Handler{
		http.MethodGet: authed(http.HandlerFunc(authHandler.Session)),
	})))

	mux.Handle("/api/v1/eventos", instrument("/api/v1/eventos", methodMux(map[string]http.Handler{
		http.MethodGet:  authed(http.HandlerFunc(eventsHandler.List)),
		http.MethodPost: authed(jsonSize(http.HandlerFunc(eventsHandler.Create))),
	})))
	mux.Handle("/api/v1/eventos/{id}", instrument("/api/v1/eventos/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    authed(http.HandlerFunc(eventsHandler.Get)),
		http.MethodPut:    authed(jsonSize(http.HandlerFunc(eventsHandler.Update))),
		http.MethodDelete: authed(http.HandlerFunc(eventsHandler.Delete)),
	})))
	mux.Handle("/api/v1/eventos/{id}/finalizar", instrument("/api/v1/eventos/{id}/finalizar", methodMux(map[string]http.Handler{
		http.MethodPost: authed(http.HandlerFunc(eventsHandler.Finalize)),
	})))
	mux.Handle("/api/v1/eventos/{id}/informe", instrument("/api/v1/eventos/{id}/informe", methodMux(map[string]http.Handler{
		http.MethodPost: authed(uploadSize(http.HandlerFunc(reportsHandler.Upload))),
	})))
	mux.Handle("/api/v1/eventos/{id}/informe/descargar-zip", instrument("/api/v1/eventos/{id}/informe/descargar-zip", methodMux(map[string]http.Handler{
		http.MethodGet: authed(http.HandlerFunc(reportsHandler.DownloadZip)),
	})))
	mux.Handle("/api/v1/eventos/{id}/qr", instrument("/api/v1/eventos/{id}/qr", methodMux(map[string]http.Handler{
		http.MethodGet: authed(http.HandlerFunc(eventsHandler.QR)),
	})))

	// Public surface for the question form reached via QR code.
	mux.Handle("/api/v1/eventos/{id}/public", instrument("/api/v1/eventos/{id}/public", methodMux(map[string]http.Handler{
		http.MethodGet: public(http.HandlerFunc(eventsHandler.Public)),
	})))
	mux.Handle("/api/v1/eventos/{id}/preguntas", instrument("/api/v1/eventos/{id}/preguntas", methodMux(map[string]http.Handler{
		http.MethodGet:  public(http.HandlerFunc(questionsHandler.List)),
		http.MethodPost: public(jsonSize(http.HandlerFunc(questionsHandler.Submit))),
	})))

	mux.Handle("/api/v1/admin/usuarios", instrument("/api/v1/admin/usuarios", methodMux(map[string]http.Handler{
		http.MethodGet: admin(http.HandlerFunc(adminHandler.ListUsers)),
	})))
	mux.Handle("/api/v1/admin/usuarios/{id}/aprobar", instrument("/api/v1/admin/usuarios/{id}/aprobar", methodMux(map[string]http.Handler{
		http.MethodPost: admin(http.HandlerFunc(adminHandler.ApproveUser)),
	})))
	mux.Handle("/api/v1/admin/logs", instrument("/api/v1/admin/logs", methodMux(map[string]http.Handler{
		http.MethodGet: admin(http.HandlerFunc(adminHandler.Logs)),
	})))
	mux.Handle("/api/v1/admin/dashboard", instrument("/api/v1/admin/dashboard", methodMux(map[string]http.Handler{
		http.MethodGet: admin(http.HandlerFunc(adminHandler.DashboardMetrics)),
	})))

	// Outer chain. CSRF wraps the whole mux: gorilla/csrf passes safe
	// methods through, and clients pick the token up from the response
	// header of any GET before their first mutation.
	var handler http.Handler = mux
	handler = middleware.CSRFProtection(csrfKey, env == "production")(handler)
	handler = middleware.SecurityHeaders(env == "production")(handler)
	handler = middleware.RequestLogging(logger)(handler)
	if cfg.Tracing.Enabled {
		handler = middleware.Tracing(handler)
	}
	handler = middleware.CorrelationID(logger)(handler)

	return &Router{
		Handler: handler,
		Store:   st,
		Users:   userService,
	}, nil
}

func instrument(path string, next http.Handler) http.Handler {
	return metrics.InstrumentHandler(path, next)
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
