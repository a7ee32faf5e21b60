package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthCache struct {
	tokens map[string]struct {
		visitorID string
		id        int
	}
}

func (f *fakeAuthCache) GetTokenExpiry() time.Duration { return time.Hour }

func (f *fakeAuthCache) GetUserByToken(ctx context.Context, token string) (string, int, error) {
	if v, ok := f.tokens[token]; ok {
		return v.visitorID, v.id, nil
	}
	return "", 0, redis.Nil
}

func (f *fakeAuthCache) GenerateAndSaveToken(ctx context.Context, visitorID string, uid int) (string, error) {
	return "", nil
}

func (f *fakeAuthCache) DeleteToken(ctx context.Context, token string) error { return nil }

func TestOAuth2Middleware(t *testing.T) {
	cache := &fakeAuthCache{tokens: map[string]struct {
		visitorID string
		id        int
	}{
		"good-token": {visitorID: "gh-123", id: 7},
	}}

	var captured *AuthUserValue
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v := r.Context().Value("user").(AuthUserValue)
		captured = &v
	})

	handler := OAuth2Middleware(cache, next)

	t.Run("valid token", func(t *testing.T) {
		captured = nil
		req := httptest.NewRequest("GET", "/api/projects", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, captured)
		assert.Equal(t, 7, captured.ID)
		assert.Equal(t, "gh-123", captured.VisitorID)
		assert.Equal(t, "good-token", captured.Token)
	})

	t.Run("unknown token", func(t *testing.T) {
		captured = nil
		req := httptest.NewRequest("GET", "/api/projects", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Nil(t, captured)
	})

	t.Run("missing header", func(t *testing.T) {
		captured = nil
		req := httptest.NewRequest("GET", "/api/projects", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Nil(t, captured)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		captured = nil
		req := httptest.NewRequest("GET", "/api/projects", nil)
		req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Nil(t, captured)
	})
}
