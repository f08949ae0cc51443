package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for uploadOutcomes.
const (
	outcomeSucceeded       = "succeeded"
	outcomeUnknownID       = "unknown_id"
	outcomeAlreadyBound    = "already_bound"
	outcomeInvalidPayload  = "invalid_payload"
	outcomeMalformedStream = "malformed_stream"
	outcomeTooLarge        = "too_large"
)

var (
	submissionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "submitbox_submissions_created_total",
			Help: "Number of submissions registered",
		},
	)

	uploadOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submitbox_upload_outcomes_total",
			Help: "Terminal outcomes of upload streams",
		},
		[]string{"outcome"},
	)

	uploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "submitbox_upload_bytes",
			Help:    "Bytes drained from accepted upload streams",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		},
	)
)
