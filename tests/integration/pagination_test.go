package integration

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mhelbich/listpager/internal/testutil"
	"github.com/mhelbich/listpager/pkg/client"
	"github.com/mhelbich/listpager/pkg/pagination"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

// newPaginator wires a client against the mock server into a typed paginator.
func newPaginator(t *testing.T, cfg client.Config) *pagination.Paginator[testutil.Record] {
	t.Helper()

	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	fetcher := c.ListFetcher("/records", client.Envelope{})
	paginator, err := pagination.NewOffsetPaginator(fetcher, func(raw json.RawMessage) (testutil.Record, error) {
		var rec testutil.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return testutil.Record{}, err
		}
		return rec, nil
	}, pagination.DefaultConfig())
	if err != nil {
		t.Fatalf("Failed to create paginator: %v", err)
	}
	return paginator
}

// TestFetchAllWithCaching tests the complete flow: Rate Limit → Cache →
// Upstream → Cache Store, across multiple pages. A second full fetch must be
// answered entirely from Redis.
func TestFetchAllWithCaching(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockListAPI(250)
	defer mock.Close()

	cfg := client.DefaultConfig(mock.URL(), "listpager-integration/1.0.0")
	cfg.Redis = redisClient
	cfg.EnableResponseCaching = true
	cfg.CacheTTL = time.Minute
	cfg.EnableRateLimiting = false

	paginator := newPaginator(t, cfg)
	ctx := context.Background()

	t.Log("First fetch: cache misses, three upstream pages")
	items, err := paginator.FetchAll(ctx, pagination.FetchOptions{})
	if err != nil {
		t.Fatalf("First fetch failed: %v", err)
	}
	if len(items) != 250 {
		t.Errorf("First fetch items = %d, want 250", len(items))
	}
	if mock.RequestCount != 3 {
		t.Errorf("Upstream requests = %d, want 3", mock.RequestCount)
	}

	// Cache writes complete before Get returns, but give Redis a moment.
	time.Sleep(100 * time.Millisecond)

	t.Log("Second fetch: served from cache, no new upstream requests")
	items2, err := paginator.FetchAll(ctx, pagination.FetchOptions{})
	if err != nil {
		t.Fatalf("Second fetch failed: %v", err)
	}
	if len(items2) != 250 {
		t.Errorf("Second fetch items = %d, want 250", len(items2))
	}
	if mock.RequestCount != 3 {
		t.Errorf("Upstream requests after cached fetch = %d, want 3", mock.RequestCount)
	}
	if items2[0].ID != items[0].ID || items2[249].ID != items[249].ID {
		t.Error("Cached fetch returned different records")
	}
}

// TestCacheExpiration tests that expired entries are refetched from upstream.
func TestCacheExpiration(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockListAPI(40)
	defer mock.Close()

	cfg := client.DefaultConfig(mock.URL(), "listpager-integration/1.0.0")
	cfg.Redis = redisClient
	cfg.EnableResponseCaching = true
	cfg.CacheTTL = 1 * time.Second
	cfg.EnableRateLimiting = false

	paginator := newPaginator(t, cfg)
	ctx := context.Background()

	if _, err := paginator.FetchAll(ctx, pagination.FetchOptions{}); err != nil {
		t.Fatalf("First fetch failed: %v", err)
	}
	first := mock.RequestCount
	if first != 1 {
		t.Errorf("Upstream requests = %d, want 1", first)
	}

	time.Sleep(1500 * time.Millisecond)

	if _, err := paginator.FetchAll(ctx, pagination.FetchOptions{}); err != nil {
		t.Fatalf("Second fetch failed: %v", err)
	}
	if mock.RequestCount != first+1 {
		t.Errorf("Upstream requests = %d, want %d (entry expired)", mock.RequestCount, first+1)
	}
}

// TestDistinctPagesCachedSeparately tests that each page's query parameters
// produce a distinct cache entry.
func TestDistinctPagesCachedSeparately(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockListAPI(150)
	defer mock.Close()

	cfg := client.DefaultConfig(mock.URL(), "listpager-integration/1.0.0")
	cfg.Redis = redisClient
	cfg.EnableResponseCaching = true
	cfg.CacheTTL = time.Minute
	cfg.EnableRateLimiting = false

	paginator := newPaginator(t, cfg)
	ctx := context.Background()

	pageOne, err := paginator.FetchPage(ctx, pagination.FetchOptions{PageSize: 50})
	if err != nil {
		t.Fatalf("Page 1 fetch failed: %v", err)
	}
	pageTwo, err := paginator.FetchPage(ctx, pagination.FetchOptions{PageSize: 50, Offset: pageOne.Meta.NextOffset})
	if err != nil {
		t.Fatalf("Page 2 fetch failed: %v", err)
	}

	if mock.RequestCount != 2 {
		t.Errorf("Upstream requests = %d, want 2 (distinct pages)", mock.RequestCount)
	}
	if pageOne.Data[0].ID == pageTwo.Data[0].ID {
		t.Error("Pages returned overlapping records")
	}

	// Refetching page 1 must not reach upstream again.
	if _, err := paginator.FetchPage(ctx, pagination.FetchOptions{PageSize: 50}); err != nil {
		t.Fatalf("Cached page refetch failed: %v", err)
	}
	if mock.RequestCount != 2 {
		t.Errorf("Upstream requests after cached refetch = %d, want 2", mock.RequestCount)
	}
}

// TestStreamingEndToEnd tests lazy iteration through the full stack with an
// early break, which must not fetch pages past the consumer's stop point.
func TestStreamingEndToEnd(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockListAPI(300)
	defer mock.Close()

	cfg := client.DefaultConfig(mock.URL(), "listpager-integration/1.0.0")
	cfg.Redis = redisClient
	cfg.EnableResponseCaching = true
	cfg.CacheTTL = time.Minute
	cfg.EnableRateLimiting = false

	paginator := newPaginator(t, cfg)
	ctx := context.Background()

	seq, err := paginator.IterPages(ctx, pagination.FetchOptions{})
	if err != nil {
		t.Fatalf("IterPages failed: %v", err)
	}

	seen := 0
	for _, err := range seq {
		if err != nil {
			t.Fatalf("Stream failed after %d items: %v", seen, err)
		}
		seen++
		if seen >= 150 {
			break
		}
	}

	if seen != 150 {
		t.Errorf("Items consumed = %d, want 150", seen)
	}
	// 150 items at the default page size of 100 needs two pages.
	if mock.RequestCount != 2 {
		t.Errorf("Upstream requests = %d, want 2 (stopped early)", mock.RequestCount)
	}
}

// TestRetryAgainstFlakyUpstream tests that transient 5xx responses are
// retried inside the client without surfacing to the paginator.
func TestRetryAgainstFlakyUpstream(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockListAPI(80)
	defer mock.Close()

	// First request fails with 503, the retry succeeds.
	mock.FailTimes(503, 1)

	cfg := client.DefaultConfig(mock.URL(), "listpager-integration/1.0.0")
	cfg.Redis = redisClient
	cfg.EnableResponseCaching = true
	cfg.CacheTTL = time.Minute
	cfg.EnableRateLimiting = false
	cfg.MaxRetries = 3
	cfg.InitialBackoff = 50 * time.Millisecond

	paginator := newPaginator(t, cfg)
	ctx := context.Background()

	items, err := paginator.FetchAll(ctx, pagination.FetchOptions{})
	if err != nil {
		t.Fatalf("Fetch failed despite retries: %v", err)
	}
	if len(items) != 80 {
		t.Errorf("Items = %d, want 80", len(items))
	}
}
