package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lasroun/collectgate/internal/config"
)

func newTestAuth(enabled bool) *Auth {
	return NewAuth(config.AuthConfig{
		Enabled:  enabled,
		Secret:   "0123456789abcdef0123456789abcdef",
		TokenTTL: time.Hour,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAuth_TokenRoundTrip(t *testing.T) {
	auth := newTestAuth(true)

	token, err := auth.GenerateServiceToken("checkout")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "checkout", claims.Service)
	require.Equal(t, "collectgate", claims.Issuer)
}

func TestAuth_RejectsForeignToken(t *testing.T) {
	auth := newTestAuth(true)
	other := NewAuth(config.AuthConfig{
		Enabled:  true,
		Secret:   "ffffffffffffffffffffffffffffffff",
		TokenTTL: time.Hour,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	token, err := other.GenerateServiceToken("checkout")
	require.NoError(t, err)

	_, err = auth.ValidateToken(token)
	require.Error(t, err)
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	auth := newTestAuth(false)

	handler := auth.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_Enabled(t *testing.T) {
	auth := newTestAuth(true)

	var seen *Claims
	handler := auth.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetClaims(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic something")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := auth.GenerateServiceToken("checkout")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, seen)
		require.Equal(t, "checkout", seen.Service)
	})
}
