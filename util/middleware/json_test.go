package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJsonBodyMiddleware(t *testing.T) {
	var captured interface{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Context().Value("json")
	})
	handler := JsonBodyMiddleware(next)

	t.Run("valid body", func(t *testing.T) {
		captured = nil
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Ana","rating":4}`))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		body, ok := captured.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "Ana", body["name"])
		assert.Equal(t, float64(4), body["rating"])
	})

	t.Run("broken body", func(t *testing.T) {
		captured = nil
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":`))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Nil(t, captured)
	})
}
