package handler

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"go.uber.org/zap"

	"netclass-console/pkg/errors"
)

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error     string                 `json:"error"`
	Code      string                 `json:"code,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// SuccessResponse is the JSON body of a successful command
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorHandler provides centralized error handling functionality for handlers
type ErrorHandler struct {
	Logger *zap.Logger
}

// NewErrorHandler creates a new ErrorHandler instance
func NewErrorHandler(logger *zap.Logger) *ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorHandler{
		Logger: logger,
	}
}

// SendErrorResponse sends a structured error response
func (e *ErrorHandler) SendErrorResponse(w http.ResponseWriter, statusCode int, response ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		e.Logger.Error("Failed to encode error response", zap.Error(err))
	}
}

// SendSuccessResponse sends a structured success response
func (e *ErrorHandler) SendSuccessResponse(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	e.SendJSONResponse(w, statusCode, SuccessResponse{
		Message: message,
		Data:    data,
	})
}

// SendJSONResponse sends a generic JSON response
func (e *ErrorHandler) SendJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		e.Logger.Error("Failed to encode JSON response", zap.Error(err))
		e.SendErrorResponse(w, http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to encode response",
			Code:  string(errors.ErrorCodeInternal),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(append(body, '\n')); err != nil {
		e.Logger.Warn("Failed to write JSON response", zap.Error(err))
	}
}

// HandleError maps any error returned by the service layer to an HTTP
// response. Errors that are not AppErrors become internal errors.
func (e *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *errors.AppError
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		appErr = errors.TimeoutError(r.Method + " " + r.URL.Path)
	default:
		appErr = errors.WrapError(err, "unexpected error")
	}

	requestID := RequestIDFromContext(r.Context())
	status := appErr.GetHTTPStatus()
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("code", string(appErr.Code)),
		zap.String("request_id", requestID),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		e.Logger.Error("Request failed", fields...)
	} else {
		e.Logger.Warn("Request rejected", fields...)
	}

	message := appErr.Message
	if appErr.Code == errors.ErrorCodeInternal {
		message = "Internal server error"
	}

	var details map[string]interface{}
	if len(appErr.Details) > 0 {
		details = appErr.Details
	}

	e.SendErrorResponse(w, status, ErrorResponse{
		Error:     message,
		Code:      string(appErr.Code),
		Details:   details,
		RequestID: requestID,
	})
}
