// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Source metrics track what each site yielded on a run.
var (
	// EntriesFetchedTotal counts entries returned by a source before filtering
	EntriesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deadline_entries_fetched_total",
			Help: "Total number of deadline entries fetched from sources",
		},
		[]string{"source"},
	)

	// EntriesMatchedTotal counts entries that fell on an alert day
	EntriesMatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deadline_entries_matched_total",
			Help: "Total number of deadline entries matching an alert day",
		},
		[]string{"source"},
	)

	// SourceErrorsTotal counts sources that could not be read
	SourceErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deadline_source_errors_total",
			Help: "Total number of failed source fetches",
		},
		[]string{"source"},
	)

	// SourceFetchDuration measures time to fetch all entries of a source
	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deadline_source_fetch_duration_seconds",
			Help:    "Time taken to fetch all entries of a source",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"source"},
	)
)

// Compaction metrics track how much was lost to the message budget.
var (
	// MessagesCompactedTotal counts compacted date-group messages by mode
	MessagesCompactedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deadline_messages_compacted_total",
			Help: "Total number of date-group messages compacted",
		},
		[]string{"source", "mode"}, // mode: verbatim, merged, truncated, fallback
	)

	// RowsOmittedTotal counts entries that did not get their own line
	RowsOmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deadline_rows_omitted_total",
			Help: "Total number of entries merged away or dropped by compaction",
		},
		[]string{"source"},
	)

	// MessageLength observes the final length of compacted messages in characters
	MessageLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "deadline_message_length_chars",
			Help:    "Length of compacted messages in characters",
			Buckets: []float64{100, 250, 500, 1000, 1500, 1800, 1900, 2000},
		},
	)
)
