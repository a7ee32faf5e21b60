package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"github.com/testimonio/api/domain"
	"github.com/testimonio/api/util"
)

type AuthUserValue struct {
	ID        int
	VisitorID string
	Token     string
}

func OAuth2Middleware(authCache domain.AuthCache, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		parts := strings.Split(header, " ")

		if len(parts) < 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn().Msg("bad Authorization header")
			util.WriteUnauthorized(w)
			return
		}

		ctx, cancel := util.GetContextWithTimeout(context.Background())
		defer cancel()
		token := parts[1]
		visitorID, id, err := authCache.GetUserByToken(ctx, token)

		if err != nil {
			log.Warn().Err(err).Msg("token lookup")
			if err == redis.Nil {
				util.WriteUnauthorized(w)
			} else {
				util.WriteInternalServerError(w)
			}
			return
		}

		ctx = context.WithValue(r.Context(), "user", AuthUserValue{
			ID:        id,
			VisitorID: visitorID,
			Token:     token,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
