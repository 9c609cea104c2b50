package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func serve(a AuthService, key string) *httptest.ResponseRecorder {
	handler := a.RequireAPIKey(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/crawl", nil)
	if key != "" {
		req.Header.Set(HeaderAPIKey, key)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRequireAPIKey_Disabled(t *testing.T) {
	a := NewAuthService("", discardLogger)
	assert.False(t, a.Enabled())

	rec := serve(a, "anything")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Not Found"}`, rec.Body.String())
}

func TestRequireAPIKey(t *testing.T) {
	a := NewAuthService("secret", discardLogger)
	assert.True(t, a.Enabled())

	assert.Equal(t, http.StatusUnauthorized, serve(a, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(a, "wrong").Code)
	assert.Equal(t, http.StatusAccepted, serve(a, "secret").Code)
}

func TestGenerateAPIKey(t *testing.T) {
	first, err := GenerateAPIKey()
	require.NoError(t, err)
	assert.Len(t, first, 64)

	second, err := GenerateAPIKey()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
