package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"netclass-console/internal/auth"
	"netclass-console/internal/handler"
	"netclass-console/pkg/errors"
)

// LoginPath is where browsers without a session are sent
const LoginPath = "/login"

// Authenticator resolves a session token to the signed-in admin
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (auth.Identity, error)
}

// AuthMiddleware guards the admin routes with the session cookie
type AuthMiddleware struct {
	auth       Authenticator
	cookieName string
	logger     *zap.Logger
}

// NewAuthMiddleware creates a new session middleware
func NewAuthMiddleware(authenticator Authenticator, cookieName string, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{auth: authenticator, cookieName: cookieName, logger: logger}
}

// RequireAdmin attaches the admin identity to the request context. Requests
// without a valid session get 401, or a redirect to the login page when the
// client accepts HTML.
func (am *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if cookie, err := r.Cookie(am.cookieName); err == nil {
			token = cookie.Value
		}

		identity, err := am.auth.Authenticate(r.Context(), token)
		if err != nil {
			am.reject(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
	})
}

func (am *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request, err error) {
	appErr := errors.WrapError(err, "failed to authenticate")
	if appErr.Code != errors.ErrorCodeUnauthorized {
		am.logger.Error("Session lookup failed", zap.String("path", r.URL.Path), zap.Error(err))
	}

	if appErr.Code == errors.ErrorCodeUnauthorized && handler.AcceptsHTML(r) {
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		return
	}

	body := errors.NewAppError(appErr.Code, appErr.Message).
		WithRequestID(handler.RequestIDFromContext(r.Context()))
	if appErr.Code == errors.ErrorCodeInternal {
		body.Message = "Internal server error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.GetHTTPStatus())
	w.Write(body.ToJSON())
}
