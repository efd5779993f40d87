// Command list-fetch retrieves every item from an offset-paginated list
// endpoint and writes the records to stdout as NDJSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/mhelbich/listpager/pkg/client"
	"github.com/mhelbich/listpager/pkg/logging"
	"github.com/mhelbich/listpager/pkg/pagination"
)

func main() {
	// .env is optional; flags and the environment take precedence.
	_ = godotenv.Load()

	var (
		baseURL  = flag.String("url", getEnv("LISTPAGER_BASE_URL", ""), "upstream API base URL")
		endpoint = flag.String("endpoint", getEnv("LISTPAGER_ENDPOINT", "/"), "list endpoint path")
		pageSize = flag.Int("page-size", 100, "items requested per page")
		limit    = flag.Int("limit", 0, "maximum total items (0 = fetch everything)")
		offset   = flag.Int("offset", 0, "starting offset")
		stream   = flag.Bool("stream", false, "emit items as pages arrive instead of collecting first")
		itemsKey = flag.String("items-key", "", "envelope field holding the items (empty = bare array response)")
		countKey = flag.String("count-key", "", "envelope field holding the total count")
		redisURL = flag.String("redis", getEnv("REDIS_URL", ""), "Redis address enabling response caching (empty = no cache)")
		logLevel = flag.String("log-level", getEnv("LISTPAGER_LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
		timeout  = flag.Duration("timeout", 5*time.Minute, "overall fetch timeout")
	)
	flag.Parse()

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(*logLevel),
		Pretty: true,
		Output: os.Stderr,
	})

	if *baseURL == "" {
		logger.Fatal().Msg("Base URL required (-url or LISTPAGER_BASE_URL)")
	}

	cfg := client.DefaultConfig(*baseURL, "listpager/0.1.0")
	if *redisURL != "" {
		cfg.Redis = redis.NewClient(&redis.Options{Addr: *redisURL})
		cfg.EnableResponseCaching = true
	}

	c, err := client.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create client")
	}

	fetcher := c.ListFetcher(*endpoint, client.Envelope{ItemsKey: *itemsKey, CountKey: *countKey})
	paginator, err := pagination.NewOffsetPaginator(fetcher, rawConverter, pagination.DefaultConfig())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create paginator")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	opts := buildOptions(*limit, *offset, *pageSize)
	enc := json.NewEncoder(os.Stdout)
	start := time.Now()

	if *stream {
		seq, err := paginator.IterPages(ctx, opts)
		if err != nil {
			logger.Fatal().Err(err).Msg("Invalid fetch options")
		}
		count := 0
		for item, err := range seq {
			if err != nil {
				logger.Fatal().Err(err).Int("items_emitted", count).Msg("Fetch failed mid-stream")
			}
			if err := enc.Encode(item); err != nil {
				logger.Fatal().Err(err).Msg("Failed to write item")
			}
			count++
		}
		logger.Info().Int("items", count).Dur("elapsed", time.Since(start)).Msg("Stream complete")
		return
	}

	items, err := paginator.FetchAll(ctx, opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("Fetch failed")
	}
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			logger.Fatal().Err(err).Msg("Failed to write item")
		}
	}
	logger.Info().Int("items", len(items)).Dur("elapsed", time.Since(start)).Msg("Fetch complete")
}

// rawConverter passes records through untouched so the CLI can emit them
// exactly as the upstream API returned them.
func rawConverter(raw json.RawMessage) (json.RawMessage, error) {
	return raw, nil
}

func buildOptions(limit, offset, pageSize int) pagination.FetchOptions {
	opts := pagination.FetchOptions{
		Offset:   offset,
		PageSize: pageSize,
	}
	if limit > 0 {
		opts.Limit = pagination.Limit(limit)
	}
	return opts
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
