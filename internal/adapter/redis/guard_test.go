package redis_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/neomorfeo/tenantdesk/internal/adapter/redis"
	"github.com/neomorfeo/tenantdesk/internal/domain"
)

func newTestClient(t *testing.T) *goredis.Client {
	t.Helper()
	addr := os.Getenv("TENANTDESK_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TENANTDESK_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(addr, zap.NewNop())
	t.Cleanup(func() { client.Close() })
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	return client
}

func TestGuard_SingleFlight(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	first := redis.NewGuard(client, time.Minute, zap.NewNop())
	second := redis.NewGuard(client, time.Minute, zap.NewNop())
	tenantID := uuid.NewString()

	release, err := first.TryAcquire(ctx, tenantID)
	if err != nil {
		t.Fatalf("TryAcquire failed: %v", err)
	}

	if _, err := second.TryAcquire(ctx, tenantID); !errors.Is(err, domain.ErrDeletionInProgress) {
		t.Fatalf("expected ErrDeletionInProgress, got %v", err)
	}

	release()
	release()

	again, err := second.TryAcquire(ctx, tenantID)
	if err != nil {
		t.Fatalf("TryAcquire after release failed: %v", err)
	}
	again()
}

func TestGuard_ExpiredLockIsNotReleasedByOldHolder(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	guard := redis.NewGuard(client, 100*time.Millisecond, zap.NewNop())
	tenantID := uuid.NewString()

	stale, err := guard.TryAcquire(ctx, tenantID)
	if err != nil {
		t.Fatalf("TryAcquire failed: %v", err)
	}
	time.Sleep(200 * time.Millisecond)

	current, err := guard.TryAcquire(ctx, tenantID)
	if err != nil {
		t.Fatalf("TryAcquire after expiry failed: %v", err)
	}
	defer current()

	stale()

	if _, err := guard.TryAcquire(ctx, tenantID); !errors.Is(err, domain.ErrDeletionInProgress) {
		t.Fatalf("stale release freed the current holder: %v", err)
	}
}

func TestGuard_UnreachableIsTransport(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	guard := redis.NewGuard(client, time.Minute, zap.NewNop())

	_, err := guard.TryAcquire(context.Background(), uuid.NewString())
	if domain.KindOf(err) != domain.KindTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
}
