package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"netclass-console/internal/handler"
)

// LoggingMiddleware assigns request ids and logs every request
type LoggingMiddleware struct {
	logger *zap.Logger
}

// NewLoggingMiddleware creates a new logging middleware
func NewLoggingMiddleware(logger *zap.Logger) *LoggingMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingMiddleware{
		logger: logger,
	}
}

// LogRequests logs the method, path, status, duration, client IP and
// request id of each request. A missing X-Request-ID is generated. The id is
// put on the request context and echoed back to the client.
func (lm *LoggingMiddleware) LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(handler.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(handler.RequestIDHeader, requestID)
		r = r.WithContext(handler.WithRequestID(r.Context(), requestID))

		clientIP := ClientIPFromContext(r.Context())
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", wrapped.statusCode),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", clientIP),
			zap.String("request_id", requestID),
			zap.String("user_agent", r.UserAgent()),
		}

		switch wrapped.statusCode {
		case http.StatusTooManyRequests:
			lm.logger.Warn("Rate limit exceeded", fields...)
		case http.StatusUnauthorized:
			lm.logger.Warn("Unauthenticated request", fields...)
		default:
			lm.logger.Info("Request handled", fields...)
		}
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}
