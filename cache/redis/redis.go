package redis

import (
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

var (
	ErrRedisBadValue = errors.New("bad value")
)

const (
	REDIS_MIN_RETRY_BACKOFF = 3 * time.Second
	REDIS_MAX_RETRY_BACKOFF = 5 * time.Second
	REDIS_DATABASE_AUTH     = 0
	REDIS_DATABASE_FEED     = 1
)

func NewClient(addr string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:            addr,
		DB:              db,
		MinRetryBackoff: REDIS_MIN_RETRY_BACKOFF,
		MaxRetryBackoff: REDIS_MAX_RETRY_BACKOFF,
	})
}
