package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// NotificationLevel represents the severity level of a notification
type NotificationLevel string

const (
	LevelInfo     NotificationLevel = "info"
	LevelWarning  NotificationLevel = "warning"
	LevelError    NotificationLevel = "error"
	LevelCritical NotificationLevel = "critical"
)

const (
	defaultSource    = "netclass-console"
	userAgent        = "netclass-console/1.0"
	maxMessageLength = 1000
)

// Notifier is an interface for sending alerts to the webhook
type Notifier interface {
	Send(ctx context.Context, notification Notification) error
	IsHealthy(ctx context.Context) bool
}

// NotificationConfig holds configuration for the notification client
type NotificationConfig struct {
	URL            string
	Timeout        time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	MaxPayloadSize int64
}

// DefaultConfig returns a default configuration for the notification client
func DefaultConfig(url string) NotificationConfig {
	return NotificationConfig{
		URL:            url,
		Timeout:        10 * time.Second,
		RetryAttempts:  3,
		RetryDelay:     time.Second,
		MaxPayloadSize: 1024 * 1024, // 1MB
	}
}

// permanentError marks a failure that a retry cannot fix.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(format string, args ...interface{}) error {
	return &permanentError{err: fmt.Errorf(format, args...)}
}

// notificationClient is the concrete implementation of the Notifier interface
type notificationClient struct {
	config NotificationConfig
	http   *resty.Client
	logger *zap.Logger
}

// NewNotifier creates a new Notifier with default configuration
func NewNotifier(url string, logger *zap.Logger) Notifier {
	return NewNotifierWithConfig(DefaultConfig(url), logger)
}

// NewNotifierWithConfig creates a new Notifier with custom configuration
func NewNotifierWithConfig(config NotificationConfig, logger *zap.Logger) Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxPayloadSize <= 0 {
		config.MaxPayloadSize = DefaultConfig(config.URL).MaxPayloadSize
	}

	client := resty.New().
		SetTimeout(config.Timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")

	return &notificationClient{
		config: config,
		http:   client,
		logger: logger,
	}
}

// Notification represents the payload posted to the webhook
type Notification struct {
	Level     NotificationLevel `json:"level"`
	Message   string            `json:"message"`
	PCName    string            `json:"pcName,omitempty"`
	Timestamp time.Time         `json:"timestamp,omitempty"`
	Source    string            `json:"source,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Validate checks if the notification is valid
func (n *Notification) Validate() error {
	if n.Level == "" {
		return fmt.Errorf("notification level is required")
	}
	if n.Message == "" {
		return fmt.Errorf("notification message is required")
	}
	if len(n.Message) > maxMessageLength {
		return fmt.Errorf("notification message too long (max %d characters)", maxMessageLength)
	}

	switch n.Level {
	case LevelInfo, LevelWarning, LevelError, LevelCritical:
	default:
		return fmt.Errorf("invalid notification level: %s", n.Level)
	}

	return nil
}

// Send posts a notification, retrying transient failures with a linear backoff
func (c *notificationClient) Send(ctx context.Context, notification Notification) error {
	if err := notification.Validate(); err != nil {
		return fmt.Errorf("invalid notification: %w", err)
	}

	if notification.Timestamp.IsZero() {
		notification.Timestamp = time.Now()
	}
	if notification.Source == "" {
		notification.Source = defaultSource
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.config.RetryDelay * time.Duration(attempt)):
			}
			c.logger.Info("Retrying notification send",
				zap.Int("attempt", attempt+1),
				zap.Int("max_attempts", c.config.RetryAttempts+1),
			)
		}

		err := c.sendAttempt(ctx, notification)
		if err == nil {
			return nil
		}

		lastErr = err
		c.logger.Warn("Notification send attempt failed", zap.Int("attempt", attempt+1), zap.Error(err))

		var perm *permanentError
		if errors.As(err, &perm) {
			return err
		}
	}

	return fmt.Errorf("failed to send notification after %d attempts: %w", c.config.RetryAttempts+1, lastErr)
}

// sendAttempt performs a single notification send attempt
func (c *notificationClient) sendAttempt(ctx context.Context, notification Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return permanent("failed to marshal notification: %w", err)
	}

	if int64(len(payload)) > c.config.MaxPayloadSize {
		return permanent("notification payload too large: %d bytes (max %d)", len(payload), c.config.MaxPayloadSize)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(c.config.URL)
	if err != nil {
		if ctx.Err() != nil {
			return &permanentError{err: fmt.Errorf("failed to send request: %w", ctx.Err())}
		}
		return fmt.Errorf("failed to send request: %w", err)
	}

	status := resp.StatusCode()
	switch {
	case status >= 500 || status == http.StatusTooManyRequests:
		return fmt.Errorf("notification service returned error status %d: %s", status, resp.String())
	case status >= 400:
		return permanent("notification service returned error status %d: %s", status, resp.String())
	case status != http.StatusOK && status != http.StatusCreated && status != http.StatusAccepted && status != http.StatusNoContent:
		c.logger.Warn("Unexpected status code from notification service", zap.Int("status_code", status))
	}

	return nil
}

// IsHealthy checks if the notification service is reachable
func (c *notificationClient) IsHealthy(ctx context.Context) bool {
	resp, err := c.http.R().SetContext(ctx).Head(c.config.URL)
	if err != nil {
		return false
	}
	return resp.StatusCode() < 500
}
