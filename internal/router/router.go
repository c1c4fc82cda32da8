package router

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"netclass-console/internal/config"
	"netclass-console/internal/handler"
	"netclass-console/internal/middleware"
)

// NewRouter creates a new router and sets up the routes with security
// middleware. Admin routes require a session; the login, client simulation
// and health routes are public.
func NewRouter(h handler.ConsoleHandlerInterface, authenticator middleware.Authenticator, cfg *config.Config, logger *zap.Logger) *mux.Router {
	r := mux.NewRouter()

	securityMW := middleware.NewSecurityMiddleware(&cfg.Security)
	loggingMW := middleware.NewLoggingMiddleware(logger)
	authMW := middleware.NewAuthMiddleware(authenticator, cfg.Session.CookieName, logger)

	// Apply global middleware in order
	r.Use(securityMW.SecurityHeaders)
	r.Use(securityMW.CORS)
	r.Use(securityMW.TrustedProxy)
	r.Use(loggingMW.LogRequests)
	r.Use(securityMW.RateLimit)
	r.Use(securityMW.RequestTimeout)

	// Public routes
	r.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/login", h.LoginPageHandler).Methods(http.MethodGet)
	r.HandleFunc("/login", h.LoginHandler).Methods(http.MethodPost)
	r.HandleFunc("/logout", h.LogoutHandler).Methods(http.MethodGet)

	// Client simulation
	r.HandleFunc("/client", h.ClientListHandler).Methods(http.MethodGet)
	r.HandleFunc("/client/install", h.ClientInstallHandler).Methods(http.MethodPost)
	r.HandleFunc("/client/shutdown", h.ClientShutdownHandler).Methods(http.MethodPost)
	r.HandleFunc("/client/{id:[0-9]+}", h.ClientDesktopHandler).Methods(http.MethodGet)

	// Admin console
	admin := r.NewRoute().Subrouter()
	admin.Use(authMW.RequireAdmin)

	admin.HandleFunc("/", h.DashboardHandler).Methods(http.MethodGet)
	admin.HandleFunc("/pc/register", h.RegisterFormHandler).Methods(http.MethodGet)
	admin.HandleFunc("/pc/register", h.RegisterPCHandler).Methods(http.MethodPost)
	admin.HandleFunc("/pc/create_snapshot", h.CreateSnapshotHandler).Methods(http.MethodPost)
	admin.HandleFunc("/pc/set_active_snapshot", h.SetActiveSnapshotHandler).Methods(http.MethodPost)
	admin.HandleFunc("/pc/{id:[0-9]+}", h.PCDetailHandler).Methods(http.MethodGet)
	admin.HandleFunc("/change_mode", h.ChangeModeHandler).Methods(http.MethodPost)
	admin.HandleFunc("/remote_command", h.RemoteCommandHandler).Methods(http.MethodPost)
	admin.HandleFunc("/admin/health_check", h.HealthCheckHandler).Methods(http.MethodPost)
	admin.HandleFunc("/admin/run_maintenance", h.RunMaintenanceHandler).Methods(http.MethodPost)
	admin.HandleFunc("/analytics", h.AnalyticsHandler).Methods(http.MethodGet)
	admin.HandleFunc("/analytics/export", h.AnalyticsExportHandler).Methods(http.MethodGet)
	admin.HandleFunc("/logs", h.EventLogHandler).Methods(http.MethodGet)

	return r
}
