package lock

import (
	"context"
	"time"

	"github.com/fekuna/shelter-inventory-service/internal/apperr"
	"github.com/fekuna/shelter-inventory-service/internal/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type RedisConfig struct {
	TTL      time.Duration
	Attempts int
	Backoff  time.Duration
}

// RedisLocker holds locks as SET NX PX keys so several service instances
// serialize on the same item.
type RedisLocker struct {
	client redis.UniversalClient
	cfg    RedisConfig
	logger logger.ZapLogger
}

func NewRedisLocker(client redis.UniversalClient, cfg RedisConfig, log logger.ZapLogger) *RedisLocker {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Second
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 50
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 100 * time.Millisecond
	}
	return &RedisLocker{client: client, cfg: cfg, logger: log}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.New().String()

	for i := 0; i < l.cfg.Attempts; i++ {
		ok, err := l.client.SetNX(ctx, key, token, l.cfg.TTL).Result()
		if err != nil {
			l.logger.Error("failed to acquire lock redis error", zap.String("key", key), zap.Error(err))
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}

		select {
		case <-ctx.Done():
			return nil, apperr.Wrap(apperr.KindBusy, ctx.Err(), "lock %s", key)
		case <-time.After(l.cfg.Backoff):
		}
	}

	return nil, apperr.New(apperr.KindBusy, "system busy, please try again later (lock %s)", key)
}

func (l *RedisLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
		l.logger.Warn("failed to release lock", zap.String("key", key), zap.Error(err))
	}
}
