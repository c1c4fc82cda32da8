package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestNotification_Validate(t *testing.T) {
	tests := []struct {
		name          string
		notification  Notification
		expectError   bool
		errorContains string
	}{
		{
			name:         "valid notification",
			notification: Notification{Level: LevelWarning, PCName: "Lab-01", Message: "Health score 40"},
			expectError:  false,
		},
		{
			name:          "missing level",
			notification:  Notification{Message: "Health score 40"},
			expectError:   true,
			errorContains: "level is required",
		},
		{
			name:          "missing message",
			notification:  Notification{Level: LevelWarning},
			expectError:   true,
			errorContains: "message is required",
		},
		{
			name:          "message too long",
			notification:  Notification{Level: LevelWarning, Message: strings.Repeat("a", 1001)},
			expectError:   true,
			errorContains: "message too long",
		},
		{
			name:          "invalid level",
			notification:  Notification{Level: "invalid", Message: "Test message"},
			expectError:   true,
			errorContains: "invalid notification level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.notification.Validate()
			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
				} else if !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("Expected error to contain '%s', got: %v", tt.errorContains, err)
				}
			} else if err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
		})
	}
}

func TestNotificationClient_Send_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST method, got %s", r.Method)
		}
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			t.Errorf("Expected Content-Type application/json, got %s", r.Header.Get("Content-Type"))
		}
		if r.Header.Get("User-Agent") != "netclass-console/1.0" {
			t.Errorf("Expected User-Agent netclass-console/1.0, got %s", r.Header.Get("User-Agent"))
		}

		var notification Notification
		if err := json.NewDecoder(r.Body).Decode(&notification); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		if notification.Level != LevelWarning {
			t.Errorf("Expected level warning, got %s", notification.Level)
		}
		if notification.PCName != "Lab-01" {
			t.Errorf("Expected PC name Lab-01, got %s", notification.PCName)
		}
		if notification.Source != "netclass-console" {
			t.Errorf("Expected source 'netclass-console', got %s", notification.Source)
		}
		if notification.Timestamp.IsZero() {
			t.Error("Expected timestamp to be set")
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewNotifier(server.URL, nil)
	err := client.Send(context.Background(), Notification{Level: LevelWarning, PCName: "Lab-01", Message: "Health score 40"})
	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
}

func TestNotificationClient_Send_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal server error"))
	}))
	defer server.Close()

	config := DefaultConfig(server.URL)
	config.RetryAttempts = 1
	config.RetryDelay = time.Millisecond
	client := NewNotifierWithConfig(config, nil)

	err := client.Send(context.Background(), Notification{Level: LevelWarning, Message: "Test message"})
	if err == nil {
		t.Fatal("Expected error but got none")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("Expected error to contain '500', got: %v", err)
	}
}

func TestNotificationClient_Send_ClientErrorNotRetried(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	config := DefaultConfig(server.URL)
	config.RetryDelay = time.Millisecond
	client := NewNotifierWithConfig(config, nil)

	err := client.Send(context.Background(), Notification{Level: LevelWarning, Message: "Test message"})
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Errorf("Expected 400 error, got: %v", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("Expected 1 attempt, got %d", got)
	}
}

func TestNotificationClient_Send_ValidationError(t *testing.T) {
	client := NewNotifier("http://localhost:8080", nil)

	err := client.Send(context.Background(), Notification{PCName: "Lab-01"})
	if err == nil {
		t.Fatal("Expected validation error but got none")
	}
	if !strings.Contains(err.Error(), "invalid notification") {
		t.Errorf("Expected validation error, got: %v", err)
	}
}

func TestNotificationClient_Send_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewNotifier(server.URL, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := client.Send(ctx, Notification{Level: LevelWarning, Message: "Test message"}); err == nil {
		t.Error("Expected timeout error but got none")
	}
}

func TestNotificationClient_Retry_Mechanism(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	config := DefaultConfig(server.URL)
	config.RetryAttempts = 3
	config.RetryDelay = 10 * time.Millisecond
	client := NewNotifierWithConfig(config, nil)

	if err := client.Send(context.Background(), Notification{Level: LevelWarning, Message: "Test message"}); err != nil {
		t.Errorf("Expected success after retries, got: %v", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
}

func TestNotificationClient_IsHealthy(t *testing.T) {
	tests := []struct {
		name           string
		serverStatus   int
		expectedHealth bool
	}{
		{name: "healthy service", serverStatus: http.StatusOK, expectedHealth: true},
		{name: "client error still healthy", serverStatus: http.StatusMethodNotAllowed, expectedHealth: true},
		{name: "server error unhealthy", serverStatus: http.StatusInternalServerError, expectedHealth: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.serverStatus)
			}))
			defer server.Close()

			client := NewNotifier(server.URL, nil)
			if healthy := client.IsHealthy(context.Background()); healthy != tt.expectedHealth {
				t.Errorf("Expected health %v, got %v", tt.expectedHealth, healthy)
			}
		})
	}
}

func TestNotificationClient_PayloadSizeLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	config := DefaultConfig(server.URL)
	config.MaxPayloadSize = 100
	client := NewNotifierWithConfig(config, nil)

	err := client.Send(context.Background(), Notification{Level: LevelWarning, Message: strings.Repeat("a", 200)})
	if err == nil {
		t.Fatal("Expected payload size error but got none")
	}
	if !strings.Contains(err.Error(), "payload too large") {
		t.Errorf("Expected payload size error, got: %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	url := "http://example.com"
	config := DefaultConfig(url)

	if config.URL != url {
		t.Errorf("Expected URL %s, got %s", url, config.URL)
	}
	if config.Timeout != 10*time.Second {
		t.Errorf("Expected timeout 10s, got %v", config.Timeout)
	}
	if config.RetryAttempts != 3 {
		t.Errorf("Expected 3 retry attempts, got %d", config.RetryAttempts)
	}
	if config.MaxPayloadSize != 1024*1024 {
		t.Errorf("Expected 1MB max payload size, got %d", config.MaxPayloadSize)
	}
}
