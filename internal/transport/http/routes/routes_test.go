package routes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/okunev/learnhub/internal/infra/config"
	"github.com/okunev/learnhub/internal/infra/security"
	"github.com/okunev/learnhub/internal/usecase"
)

type failingChecker struct{}

func (failingChecker) Ping(ctx context.Context) error {
	return errors.New("connection refused")
}

func newTestDependencies(t *testing.T) Dependencies {
	t.Helper()

	issuer, err := security.NewTokenIssuer("unit-test-signing-secret", "learnhub-api", 24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	cfg := &config.AppConfig{}
	cfg.App.Name = "learnhub-api"
	cfg.App.Env = "test"
	cfg.CORS.AllowedOrigins = []string{"*"}

	return Dependencies{
		Config: cfg,
		Logger: zaptest.NewLogger(t),
		Services: ServiceSet{
			Accounts: usecase.NewAccountService(nil, nil, nil, issuer, 0, zaptest.NewLogger(t)),
		},
	}
}

func TestRegisterHealthEndpoints(t *testing.T) {
	router := Register(newTestDependencies(t))

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, recorder.Code)
		}
	}
}

func TestRegisterReadinessReportsDegradedDependency(t *testing.T) {
	deps := newTestDependencies(t)
	deps.Database = failingChecker{}
	router := Register(deps)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", recorder.Code)
	}
}

func TestRegisterProtectedRoutesRequireToken(t *testing.T) {
	router := Register(newTestDependencies(t))

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/user/profile"},
		{http.MethodGet, "/api/courses"},
		{http.MethodGet, "/api/courses/course-1"},
		{http.MethodPost, "/api/courses/course-1/enroll"},
		{http.MethodPost, "/api/courses/course-1/lessons/0/complete"},
	}

	for _, tc := range paths {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 without token, got %d", tc.method, tc.path, recorder.Code)
		}
	}
}
