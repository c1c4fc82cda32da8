package handler

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"netclass-console/internal/auth"
	"netclass-console/pkg/errors"
)

// Constants for timeouts
const (
	DefaultTimeout     = 10 * time.Second
	LongRunningTimeout = 60 * time.Second
	HealthTimeout      = 2 * time.Second
)

// SessionCookie describes the cookie that carries the session token
type SessionCookie struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// Services groups the operations the console handlers depend on
type Services struct {
	PCs         PCOperations
	Commands    CommandOperations
	Clients     ClientOperations
	Maintenance MaintenanceOperations
	Analytics   AnalyticsOperations
	Auth        AuthOperations
	Store       Pinger
}

// ConsoleHandler handles the HTTP requests of the management console.
type ConsoleHandler struct {
	Services
	Cookie SessionCookie
	Logger *zap.Logger

	ErrorHandler   *ErrorHandler
	ResponseHelper *ResponseHelper
}

// NewConsoleHandler creates a new ConsoleHandler with dependencies and helpers
func NewConsoleHandler(services Services, cookie SessionCookie, logger *zap.Logger) *ConsoleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ConsoleHandler{
		Services:       services,
		Cookie:         cookie,
		Logger:         logger,
		ErrorHandler:   NewErrorHandler(logger),
		ResponseHelper: NewResponseHelper(),
	}
}

// admin returns the signed-in admin attached by the session middleware.
func (h *ConsoleHandler) admin(r *http.Request) (auth.Identity, error) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return auth.Identity{}, errors.UnauthorizedError("Login required")
	}
	return identity, nil
}
