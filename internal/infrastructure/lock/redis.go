package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

var _ inventory.Locker = (*Redis)(nil)

// Redis bloqueo distribuido por clave (varias instancias de la API sobre la misma BD).
type Redis struct {
	locker  *redislock.Client
	ttl     time.Duration
	wait    time.Duration
	backoff time.Duration
}

// NewRedisClient abre el cliente y verifica la conexión.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// NewRedis construye el locker. ttl limita cuánto vive un bloqueo si el proceso muere;
// wait es la espera máxima antes de domain.ErrBusy.
func NewRedis(rdb redislock.RedisClient, ttl, wait time.Duration) *Redis {
	return &Redis{
		locker:  redislock.New(rdb),
		ttl:     ttl,
		wait:    wait,
		backoff: 25 * time.Millisecond,
	}
}

// Acquire intenta obtener el bloqueo reintentando con espera lineal hasta wait.
func (r *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	obtainCtx, cancel := context.WithTimeout(ctx, r.wait)
	defer cancel()

	lock, err := r.locker.Obtain(obtainCtx, key, r.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(r.backoff),
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.ErrBusy
		}
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	return func() {
		_ = lock.Release(context.Background())
	}, nil
}
