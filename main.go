package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/log/zerologadapter"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	_redis "github.com/testimonio/api/cache/redis"
	"github.com/testimonio/api/config"
	handler "github.com/testimonio/api/handler"
	auth "github.com/testimonio/api/handler/auth"
	_pg "github.com/testimonio/api/repository/pg"
	util "github.com/testimonio/api/util"
)

func initLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func initDatabase(cfg *config.Config) *pgxpool.Pool {
	poolConfig, err := pgxpool.ParseConfig(fmt.Sprintf(
		"postgres://%s:%s@%s/%s",
		cfg.DatabaseUser,
		cfg.DatabasePassword,
		cfg.DatabaseHost,
		cfg.DatabaseName,
	))

	if err != nil {
		log.Fatal().Err(err).Msg("unable to parse database config")
	}

	poolConfig.HealthCheckPeriod = time.Minute
	poolConfig.ConnConfig.Logger = zerologadapter.NewLogger(log.Logger)
	if cfg.Debug {
		poolConfig.ConnConfig.LogLevel = pgx.LogLevelDebug
	} else {
		poolConfig.ConnConfig.LogLevel = pgx.LogLevelWarn
	}

	ctx, cancel := util.GetContextWithTimeout(context.Background())
	defer cancel()
	pool, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to create connection pool")
	}

	queries := []string{
		_pg.CreateUserTable(),
		_pg.CreateProjectTable(),
		_pg.CreateTestimonialTable(),
	}

	for _, q := range queries {
		ctx, cancel = util.GetContextWithTimeout(context.Background())
		defer cancel()
		if _, err := pool.Exec(ctx, q); err != nil {
			log.Fatal().Err(err).Msg("schema init")
		}
	}

	return pool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	initLogger(cfg)

	pool := initDatabase(cfg)
	defer pool.Close()

	userRepo := _pg.NewUserPostgresRepository(pool)
	projectRepo := _pg.NewProjectPostgresRepository(pool)
	testimonialRepo := _pg.NewTestimonialPostgresRepository(pool)

	feedCache := _redis.NewFeedRedisCache(
		_redis.NewClient(cfg.RedisAddr, _redis.REDIS_DATABASE_FEED),
		24*time.Hour,
	)

	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return hlog.NewHandler(log.Logger)(
			hlog.AccessHandler(func(req *http.Request, status, size int, duration time.Duration) {
				hlog.FromRequest(req).Info().
					Str("method", req.Method).
					Str("path", req.URL.Path).
					Int("status", status).
					Int("size", size).
					Dur("duration", duration).
					Msg("request")
			})(next),
		)
	})

	authHandler := auth.NewGithubOAuth2Handler(
		r,
		userRepo,
		_redis.NewAuthRedisCache(
			_redis.NewClient(cfg.RedisAddr, _redis.REDIS_DATABASE_AUTH),
			1*time.Hour,
		),
		cfg.AuthClientSecret,
		cfg.AuthClientID,
		cfg.AuthSessionKey,
		cfg.APIPath,
		"/oauth2",
	)

	handler.NewUserHandler(
		r,
		authHandler.Middleware,
		userRepo,
	)

	handler.NewProjectHandler(
		r,
		authHandler.Middleware,
		projectRepo,
		testimonialRepo,
		userRepo,
		feedCache,
	)

	handler.NewTestimonialHandler(
		r,
		authHandler.Middleware,
		testimonialRepo,
		projectRepo,
		feedCache,
	)

	handler.NewWidgetHandler(
		r,
		testimonialRepo,
		projectRepo,
		feedCache,
		cfg.BaseURL,
	)

	handler.NewPagesHandler(
		r,
		projectRepo,
	)

	log.Info().Str("addr", cfg.ListenAddr).Msg("listening")
	if err := http.ListenAndServe(cfg.ListenAddr, r); err != nil {
		log.Fatal().Err(err).Msg("server")
	}
}
