package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ChatDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pathfinder_chat_duration_seconds",
			Help:    "Chat pipeline duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"status"},
	)

	ChatTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pathfinder_chat_total",
			Help: "Total chat requests processed",
		},
		[]string{"status"},
	)

	TopicsDetected = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pathfinder_topics_detected",
			Help:    "Topics detected per query",
			Buckets: []float64{0, 1, 2, 3, 5, 8},
		},
	)

	PlacesReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pathfinder_places_returned",
			Help:    "Places returned per chat reply",
			Buckets: []float64{0, 1, 2, 5, 10, 20},
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pathfinder_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pathfinder_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	TranslationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pathfinder_translation_failures_total",
			Help: "Translation calls that fell back to the original text",
		},
	)

	GenerationFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pathfinder_generation_fallbacks_total",
			Help: "Replies that fell back to the offline template",
		},
	)

	IndexRebuilds = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pathfinder_index_rebuilds_total",
			Help: "Embedding index rebuilds from source",
		},
	)

	IndexDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pathfinder_index_documents",
			Help: "Documents in the embedding index",
		},
	)
)

func Init() {
	prometheus.MustRegister(ChatDuration)
	prometheus.MustRegister(ChatTotal)
	prometheus.MustRegister(TopicsDetected)
	prometheus.MustRegister(PlacesReturned)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(TranslationFailures)
	prometheus.MustRegister(GenerationFallbacks)
	prometheus.MustRegister(IndexRebuilds)
	prometheus.MustRegister(IndexDocuments)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
