package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for cache operations.
var (
	// CacheHits tracks cache hits.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "listpager_cache_hits_total",
		Help: "Total number of page cache hits",
	})

	// CacheMisses tracks cache misses.
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "listpager_cache_misses_total",
		Help: "Total number of page cache misses",
	})

	// CacheErrors tracks cache operation errors.
	CacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listpager_cache_errors_total",
		Help: "Total number of cache operation errors",
	}, []string{"operation"})

	// CacheWrites tracks stored entries.
	CacheWrites = promauto.NewCounter(prometheus.CounterOpts{
		Name: "listpager_cache_writes_total",
		Help: "Total number of page responses written to cache",
	})
)
