package redis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/neomorfeo/tenantdesk/internal/domain"
)

var _ domain.DeletionGuard = (*Guard)(nil)

const keyPrefix = "tenantdesk:deleting:"

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another instance is left alone.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Guard is a DeletionGuard shared by every instance connected to the same Redis.
// The TTL bounds how long a crashed holder can block deletion of a tenant.
type Guard struct {
	client *goredis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewGuard creates a guard using client. Locks expire after ttl.
func NewGuard(client *goredis.Client, ttl time.Duration, logger *zap.Logger) *Guard {
	return &Guard{client: client, ttl: ttl, logger: logger.Named("guard")}
}

// TryAcquire takes the deletion lock for tenantID.
func (g *Guard) TryAcquire(ctx context.Context, tenantID string) (func(), error) {
	key := keyPrefix + tenantID
	token := uuid.NewString()

	ok, err := g.client.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		return nil, &domain.TransportError{Op: "acquiring deletion lock", Err: err}
	}
	if !ok {
		return nil, domain.ErrDeletionInProgress
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(rctx, g.client, []string{key}, token).Err(); err != nil {
				g.logger.Warn("releasing deletion lock failed", zap.String("tenant_id", tenantID), zap.Error(err))
			}
		})
	}
	return release, nil
}

// NewClient connects to Redis at addr and logs whether it is reachable.
func NewClient(addr string, logger *zap.Logger) *goredis.Client {
	client := goredis.NewClient(&goredis.Options{Addr: addr})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.String("addr", addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", addr))
	}
	return client
}
