package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"netclass-console/pkg/errors"
)

// ResponseHelper provides common response utilities and context management
type ResponseHelper struct{}

// NewResponseHelper creates a new ResponseHelper instance
func NewResponseHelper() *ResponseHelper {
	return &ResponseHelper{}
}

// ContextKey type for context keys to avoid collisions
type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"

	// RequestIDHeader carries the request id set by the logging middleware
	RequestIDHeader = "X-Request-ID"
)

// Limits for request bodies
const (
	MaxBodyBytes = 1 << 20
)

// CreateRequestContext creates a context with timeout derived from the
// request context, so the request id stays visible to callees.
func (rh *ResponseHelper) CreateRequestContext(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), timeout)
}

// WithRequestID attaches the request id to ctx.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// RequestIDFromContext returns the request id set by the logging middleware.
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// CreateHealthCheckData creates health check response data
func (rh *ResponseHelper) CreateHealthCheckData(storeErr error) map[string]interface{} {
	data := map[string]interface{}{
		"timestamp": time.Now().UTC(),
		"service":   "netclass-console",
		"status":    "healthy",
		"store":     "up",
	}
	if storeErr != nil {
		data["status"] = "degraded"
		data["store"] = "down"
	}
	return data
}

// AcceptsHTML reports whether the client prefers a browser-style redirect
// over a JSON body.
func AcceptsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// RequestFields holds the submitted fields of a form-encoded or JSON body.
type RequestFields map[string]string

// ReadFields parses the request body. JSON objects are flattened to their
// string representation so both encodings are validated the same way.
func ReadFields(w http.ResponseWriter, r *http.Request) (RequestFields, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		return readJSONFields(r)
	}

	if err := r.ParseForm(); err != nil {
		return nil, errors.BadRequestError("Invalid form body")
	}
	fields := make(RequestFields, len(r.Form))
	for key := range r.Form {
		fields[key] = r.Form.Get(key)
	}
	return fields, nil
}

func readJSONFields(r *http.Request) (RequestFields, error) {
	var raw map[string]interface{}
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return nil, errors.BadRequestError("Invalid JSON format")
	}

	fields := make(RequestFields, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			fields[key] = ""
		case string:
			fields[key] = v
		case json.Number:
			fields[key] = v.String()
		case bool:
			fields[key] = strconv.FormatBool(v)
		default:
			fields[key] = fmt.Sprint(v)
		}
	}
	return fields, nil
}

// String returns the first non-empty value among the given names.
func (f RequestFields) String(names ...string) string {
	for _, name := range names {
		if value := strings.TrimSpace(f[name]); value != "" {
			return value
		}
	}
	return ""
}

// Raw returns the untrimmed value of a field.
func (f RequestFields) Raw(name string) string {
	return f[name]
}

// Int parses a required integer field. Aliases are consulted in order when
// the primary name is absent.
func (f RequestFields) Int(name string, aliases ...string) (int, error) {
	value := f.String(append([]string{name}, aliases...)...)
	if value == "" {
		return 0, errors.MissingParameterError(name)
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.ValidationErrorWithDetails("Invalid request", map[string]string{
			name: "must be a number",
		})
	}
	return n, nil
}

// parsePathID parses the numeric id route variable.
func parsePathID(value string) (int, error) {
	id, err := strconv.Atoi(value)
	if err != nil || id <= 0 {
		return 0, errors.ValidationErrorWithDetails("Invalid request", map[string]string{
			"id": "must be a positive integer",
		})
	}
	return id, nil
}
