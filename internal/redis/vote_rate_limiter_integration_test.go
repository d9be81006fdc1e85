package redis

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/redis"
)

var (
	testRedisURL string
	redContainer testcontainers.Container
)

func TestMain(m *testing.M) {
	// Parse flags to check for -short
	flag.Parse()

	// os.Exit skips defers, so the container lifecycle lives in run.
	os.Exit(run(m))
}

func run(m *testing.M) int {
	// Skip container setup if running in short mode
	if testing.Short() {
		return m.Run()
	}

	ctx := context.Background()
	var err error
	redContainer, err = redis.Run(ctx, "redis:7-alpine")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start redis container: %v\n", err)
		return 1
	}
	defer func() {
		if err := redContainer.Terminate(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "failed to terminate redis container: %v\n", err)
		}
	}()

	endpoint, err := redContainer.Endpoint(ctx, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get redis endpoint: %v\n", err)
		return 1
	}
	testRedisURL = "redis://" + endpoint

	return m.Run()
}

func setupTestClient(t *testing.T) *goredis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	client, err := NewClient(ctx, testRedisURL)
	if err != nil {
		t.Fatalf("failed to create redis client: %v", err)
	}

	// Flush all keys before each test
	if err := client.FlushAll(ctx).Err(); err != nil {
		t.Fatalf("failed to flush redis: %v", err)
	}

	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestNewClient_InvalidURL(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	_, err := NewClient(context.Background(), "not-a-redis-url")
	assert.Error(t, err)
}

func TestVoteRateLimiter_AllowsWithinBurst(t *testing.T) {
	client := setupTestClient(t)
	limiter := NewVoteRateLimiter(client, clockwork.NewFakeClock(), 3, 60)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, 1)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i)
	}

	allowed, err := limiter.Allow(ctx, 1)
	require.NoError(t, err)
	assert.False(t, allowed, "burst exhausted, request should be denied")
}

func TestVoteRateLimiter_RefillsOverTime(t *testing.T) {
	client := setupTestClient(t)
	clock := clockwork.NewFakeClock()
	limiter := NewVoteRateLimiter(client, clock, 2, 60) // one token per second
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(ctx, 1)
		require.NoError(t, err)
		require.True(t, allowed)
	}
	allowed, err := limiter.Allow(ctx, 1)
	require.NoError(t, err)
	require.False(t, allowed)

	clock.Advance(time.Second)

	allowed, err = limiter.Allow(ctx, 1)
	require.NoError(t, err)
	assert.True(t, allowed, "one token should have refilled")
}

func TestVoteRateLimiter_RefillCapsAtCapacity(t *testing.T) {
	client := setupTestClient(t)
	clock := clockwork.NewFakeClock()
	limiter := NewVoteRateLimiter(client, clock, 2, 60)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, 1)
	require.NoError(t, err)
	require.True(t, allowed)

	// A long idle period must not accumulate more than the capacity.
	clock.Advance(time.Hour)

	for i := 0; i < 2; i++ {
		allowed, err = limiter.Allow(ctx, 1)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, err = limiter.Allow(ctx, 1)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestVoteRateLimiter_UsersAreIndependent(t *testing.T) {
	client := setupTestClient(t)
	limiter := NewVoteRateLimiter(client, clockwork.NewFakeClock(), 1, 60)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, 1)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = limiter.Allow(ctx, 1)
	require.NoError(t, err)
	require.False(t, allowed)

	allowed, err = limiter.Allow(ctx, 2)
	require.NoError(t, err)
	assert.True(t, allowed, "a different user has a fresh bucket")
}
