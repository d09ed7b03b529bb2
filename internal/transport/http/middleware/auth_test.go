package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/okunev/learnhub/internal/infra/security"
	"github.com/okunev/learnhub/internal/usecase"
)

func newAuthTestRouter(t *testing.T) (*gin.Engine, *security.TokenIssuer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	issuer, err := security.NewTokenIssuer("unit-test-signing-secret", "learnhub-api", 24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	accounts := usecase.NewAccountService(nil, nil, nil, issuer, 0, zaptest.NewLogger(t))

	router := gin.New()
	router.GET("/protected", RequireAuth(accounts), func(c *gin.Context) {
		accountID, ok := GetAuthenticatedAccountID(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no account in context"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"accountId": accountID})
	})

	return router, issuer
}

func performRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestRequireAuthMissingHeader(t *testing.T) {
	router, _ := newAuthTestRouter(t)

	if res := performRequest(router, ""); res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestRequireAuthMalformedHeader(t *testing.T) {
	router, issuer := newAuthTestRouter(t)

	token, err := issuer.Issue("account-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	for _, header := range []string{"Basic abc123", token, "Bearer "} {
		if res := performRequest(router, header); res.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, res.Code)
		}
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	router, _ := newAuthTestRouter(t)

	if res := performRequest(router, "Bearer not-a-jwt"); res.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.Code)
	}
}

func TestRequireAuthExpiredToken(t *testing.T) {
	router, issuer := newAuthTestRouter(t)

	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer.WithClock(func() time.Time { return issuedAt })
	token, err := issuer.Issue("account-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	issuer.WithClock(func() time.Time { return issuedAt.Add(25 * time.Hour) })

	if res := performRequest(router, "Bearer "+token); res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for expired token, got %d", res.Code)
	}
}

func TestRequireAuthValidToken(t *testing.T) {
	router, issuer := newAuthTestRouter(t)

	token, err := issuer.Issue("account-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	res := performRequest(router, "Bearer "+token)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if body := res.Body.String(); !strings.Contains(body, "account-1") {
		t.Fatalf("expected account id in response, got %s", body)
	}
}
