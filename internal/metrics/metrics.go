// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

// Package metrics holds the Prometheus collectors exported on /metrics.
//
// Collectors are registered on the default registry through promauto and
// exposed by promhttp in the API router.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelrec_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelrec_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelrec_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelrec_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Catalog Ingestion Metrics
	CatalogFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelrec_catalog_fetch_total",
			Help: "Catalog page fetches by category and result",
		},
		[]string{"category", "result"}, // result: "success", "failure"
	)

	CatalogFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelrec_catalog_fetch_duration_seconds",
			Help:    "Duration of a single catalog page fetch",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"category"},
	)

	CatalogItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelrec_catalog_items",
			Help: "Number of unique catalog items after the last ingestion",
		},
	)

	CatalogDuplicatesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelrec_catalog_duplicates_dropped_total",
			Help: "Items dropped during ingestion because their ID was already seen",
		},
	)

	// Model Training Metrics
	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelrec_training_runs_total",
			Help: "Training requests by outcome",
		},
		[]string{"status"}, // "trained", "skipped", "failed"
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelrec_training_duration_seconds",
			Help:    "Duration of completed training runs",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	TrainingLoss = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelrec_training_loss",
			Help: "Training loss reported by the most recent epoch",
		},
	)

	TrainingInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelrec_training_in_progress",
			Help: "1 while a training run is executing",
		},
	)

	ModelLastTrained = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelrec_model_last_trained_timestamp",
			Help: "Unix timestamp of the last successful training run",
		},
	)

	// Recommendation Metrics
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelrec_recommendations_total",
			Help: "Recommendation requests by result path",
		},
		[]string{"path"}, // "scored", "fallback", "unknown_user"
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelrec_recommendation_duration_seconds",
			Help:    "Time spent assembling a recommendation list",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	// User Store Metrics
	UserStoreLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelrec_user_store_lookups_total",
			Help: "User profile lookups by backend and result",
		},
		[]string{"backend", "result"}, // result: "hit", "miss", "error"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reelrec_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelrec_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelrec_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCatalogFetch records the outcome of one catalog page fetch.
func RecordCatalogFetch(category string, duration time.Duration, err error) {
	CatalogFetchDuration.WithLabelValues(category).Observe(duration.Seconds())
	result := "success"
	if err != nil {
		result = "failure"
	}
	CatalogFetchTotal.WithLabelValues(category, result).Inc()
}

// RecordIngestion records the size of an ingested catalog.
func RecordIngestion(unique, duplicates int) {
	CatalogItems.Set(float64(unique))
	CatalogDuplicatesDropped.Add(float64(duplicates))
}

// RecordTrainingSkipped counts a training request answered from the fresh model.
func RecordTrainingSkipped() {
	TrainingRuns.WithLabelValues("skipped").Inc()
}

// RecordTrainingRun records a completed or failed training run.
func RecordTrainingRun(duration time.Duration, finishedAt time.Time, err error) {
	if err != nil {
		TrainingRuns.WithLabelValues("failed").Inc()
		return
	}
	TrainingRuns.WithLabelValues("trained").Inc()
	TrainingDuration.Observe(duration.Seconds())
	ModelLastTrained.Set(float64(finishedAt.Unix()))
}

// RecordRecommendation records which assembly path answered a request.
func RecordRecommendation(path string, duration time.Duration) {
	RecommendationsServed.WithLabelValues(path).Inc()
	RecommendationDuration.Observe(duration.Seconds())
}

// RecordUserLookup records a user store lookup.
func RecordUserLookup(backend, result string) {
	UserStoreLookups.WithLabelValues(backend, result).Inc()
}
