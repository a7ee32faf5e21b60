package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/testimonio/api/util"
)

// JsonBodyMiddleware decodes the request body and stores it in the request
// context under "json" as a map[string]interface{}.
func JsonBodyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			log.Warn().Err(err).Msg("bad json body")
			util.WriteStatus(w, http.StatusBadRequest)
			return
		}
		ctx := context.WithValue(r.Context(), "json", body)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
