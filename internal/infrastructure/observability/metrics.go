// Package observability holds the Prometheus metrics collector for the note
// store and its cache.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds all Prometheus metrics for the application. Each collector
// owns its own registry, so independently-constructed containers (and tests)
// never collide on metric registration.
type Collector struct {
	registry *prometheus.Registry

	// Business metrics
	NotesCreated prometheus.Counter
	NotesMoved   prometheus.Counter
	NotesDeleted prometheus.Counter

	// Repository metrics
	RepoOperations *prometheus.CounterVec
	RepoDuration   *prometheus.HistogramVec

	// Cache metrics
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	CacheInvalidations prometheus.Counter
}

// NewCollector creates a new metrics collector with the given namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	notesCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notes_created_total",
		Help:      "Total number of notes created",
	})

	notesMoved := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notes_moved_total",
		Help:      "Total number of notes migrated to long-term storage",
	})

	notesDeleted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notes_deleted_total",
		Help:      "Total number of notes deleted or archived",
	})

	repoOperations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "repository_operations_total",
			Help:      "Total number of repository operations",
		},
		[]string{"operation", "status"},
	)

	repoDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "repository_operation_duration_seconds",
			Help:      "Repository operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_hits_total",
		Help:      "Total number of cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_misses_total",
		Help:      "Total number of cache misses",
	})

	cacheInvalidations := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_invalidations_total",
		Help:      "Total number of cache entries removed by prefix invalidation",
	})

	registry.MustRegister(
		notesCreated, notesMoved, notesDeleted,
		repoOperations, repoDuration,
		cacheHits, cacheMisses, cacheInvalidations,
	)

	return &Collector{
		registry:           registry,
		NotesCreated:       notesCreated,
		NotesMoved:         notesMoved,
		NotesDeleted:       notesDeleted,
		RepoOperations:     repoOperations,
		RepoDuration:       repoDuration,
		CacheHits:          cacheHits,
		CacheMisses:        cacheMisses,
		CacheInvalidations: cacheInvalidations,
	}
}

// Registry returns the collector's registry for scraping or test inspection.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CacheHit implements the cache metrics hook.
func (c *Collector) CacheHit() {
	c.CacheHits.Inc()
}

// CacheMiss implements the cache metrics hook.
func (c *Collector) CacheMiss() {
	c.CacheMisses.Inc()
}

// CacheInvalidation implements the cache metrics hook.
func (c *Collector) CacheInvalidation(count int) {
	c.CacheInvalidations.Add(float64(count))
}

// ObserveRepoOperation records one repository call outcome.
func (c *Collector) ObserveRepoOperation(operation string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.RepoOperations.WithLabelValues(operation, status).Inc()
	c.RepoDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
