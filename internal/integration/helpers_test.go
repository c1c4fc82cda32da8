package integration

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"netclass-console/internal/auth"
	"netclass-console/internal/config"
	"netclass-console/internal/handler"
	"netclass-console/internal/repository"
	"netclass-console/internal/router"
	"netclass-console/internal/service"
)

const (
	testAdminUser     = "admin"
	testAdminPassword = "correct horse battery staple"
)

// consoleServer is the full HTTP stack over a given store
type consoleServer struct {
	*httptest.Server
	client      *http.Client
	maintenance *service.MaintenanceService
}

func testConfig() *config.Config {
	return &config.Config{
		Session: config.SessionConfig{CookieName: "netclass_session", TTL: time.Hour},
		Security: config.SecurityConfig{
			RateLimitRPS:   1000,
			RateLimitBurst: 1000,
			RequestTimeout: 10 * time.Second,
		},
	}
}

func newConsoleServer(t *testing.T, store repository.Store) *consoleServer {
	t.Helper()

	cfg := testConfig()
	logger := zap.NewNop()
	sessions := auth.NewMemorySessionStore(cfg.Session.TTL)
	authService := service.NewAuthService(store, sessions, logger)
	maintenance := service.NewMaintenanceService(store, nil, 0, logger)

	h := handler.NewConsoleHandler(handler.Services{
		PCs:         service.NewPCService(store, logger),
		Commands:    service.NewCommandService(store, nil, logger),
		Clients:     service.NewClientService(store, logger),
		Maintenance: maintenance,
		Analytics:   service.NewAnalyticsService(store),
		Auth:        authService,
		Store:       store,
	}, handler.SessionCookie{Name: cfg.Session.CookieName, TTL: cfg.Session.TTL}, logger)

	server := httptest.NewServer(router.NewRouter(h, authService, cfg, logger))
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("Failed to create cookie jar: %v", err)
	}

	return &consoleServer{
		Server:      server,
		client:      &http.Client{Jar: jar, Timeout: 10 * time.Second},
		maintenance: maintenance,
	}
}

// postForm submits a form and returns the status code and the raw body
func (s *consoleServer) postForm(t *testing.T, path string, values url.Values) (int, []byte) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, s.URL+path, strings.NewReader(values.Encode()))
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(t, req)
}

func (s *consoleServer) get(t *testing.T, path string) (int, []byte) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, s.URL+path, nil)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	return s.do(t, req)
}

func (s *consoleServer) do(t *testing.T, req *http.Request) (int, []byte) {
	t.Helper()

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	return resp.StatusCode, body
}

func (s *consoleServer) login(t *testing.T) {
	t.Helper()

	status, body := s.postForm(t, "/login", url.Values{
		"username": {testAdminUser},
		"password": {testAdminPassword},
	})
	if status != http.StatusOK {
		t.Fatalf("Login failed with status %d: %s", status, body)
	}
}

func decode(t *testing.T, body []byte, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("Failed to decode %s: %v", body, err)
	}
}

func seedAdmin(t *testing.T, add func(username, hash, name string)) {
	t.Helper()

	hash, err := auth.HashPassword(testAdminPassword)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	add(testAdminUser, hash, "Kim")
}
