package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "okrs",
		Subsystem: "analytics_cache",
		Name:      "hits_total",
		Help:      "Analytics cache lookups served from a fresh entry",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "okrs",
		Subsystem: "analytics_cache",
		Name:      "misses_total",
		Help:      "Analytics cache lookups that found no fresh entry",
	})

	cacheInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "okrs",
		Subsystem: "analytics_cache",
		Name:      "invalidated_entries_total",
		Help:      "Entries dropped by prefix invalidation or purge",
	})
)
