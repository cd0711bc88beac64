package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result update outcomes
const (
	OutcomeUpdated     = "updated"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
)

// Prometheus metrics
var (
	QueueJoins = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rift_queue_joins_total",
		Help: "Total number of matchmaking queue joins",
	})

	QueueLeaves = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rift_queue_leaves_total",
		Help: "Total number of matchmaking queue leaves",
	})

	MatchesFormed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rift_matches_formed_total",
		Help: "Total number of matches formed",
	})

	FormationRaces = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rift_formation_insufficient_total",
		Help: "Formation attempts that found fewer players than a full match at pop time",
	})

	ResultUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rift_result_updates_total",
		Help: "Per-player result updates by outcome",
	}, []string{"outcome"})

	PartialBatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rift_result_partial_batches_total",
		Help: "Result batches where at least one player update failed",
	})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rift_cache_hits_total",
		Help: "Profile cache hits",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rift_cache_misses_total",
		Help: "Profile cache misses",
	})

	CacheErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rift_cache_errors_total",
		Help: "Profile cache backend errors absorbed as misses",
	})

	NotificationsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rift_notifications_published_total",
		Help: "Notifications published to the bus",
	})

	NotificationsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rift_notifications_dropped_total",
		Help: "Notifications dropped because a subscriber buffer was full",
	})

	ActiveSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rift_active_subscribers",
		Help: "Current number of notification subscribers",
	})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rift_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})
)
