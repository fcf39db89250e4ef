package alert

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RunGuard lets at most one dispatch run proceed at a time.
// TryAcquire returns ok false when another run holds the guard. release must be called once when ok is true.
type RunGuard interface {
	TryAcquire(ctx context.Context) (release func(), ok bool, err error)
}

// LocalGuard is a RunGuard for a single process.
type LocalGuard struct {
	running atomic.Bool
}

// TryAcquire implements RunGuard.
func (g *LocalGuard) TryAcquire(context.Context) (func(), bool, error) {
	if !g.running.CompareAndSwap(false, true) {
		return nil, false, nil
	}

	return func() { g.running.Store(false) }, true, nil
}

// releaseLua deletes the lock only if it still holds our token.
const releaseLua = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`

var releaseScript = redis.NewScript(releaseLua) //nolint:gochecknoglobals

// RedisGuard is a RunGuard shared by every process using the same redis key.
// The lock expires after ttl so a crashed holder does not block dispatch forever.
type RedisGuard struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisGuard returns a RedisGuard locking key on client.
func NewRedisGuard(client *redis.Client, key string, ttl time.Duration) *RedisGuard {
	return &RedisGuard{client: client, key: key, ttl: ttl}
}

// TryAcquire implements RunGuard.
func (g *RedisGuard) TryAcquire(ctx context.Context) (func(), bool, error) {
	token := uuid.NewString()

	ok, err := g.client.SetNX(ctx, g.key, token, g.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire dispatch lock %s: %w", g.key, err)
	}

	if !ok {
		return nil, false, nil
	}

	release := func() {
		// the run context may be cancelled already
		if err := releaseScript.Run(context.Background(), g.client, []string{g.key}, token).Err(); err != nil {
			log.Error().Err(err).Str("key", g.key).Msg("failed to release dispatch lock")
		}
	}

	return release, true, nil
}
