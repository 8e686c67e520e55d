package metrics

import "time"

// RecordSourceFetched records a successful fetch of a source
func RecordSourceFetched(source string, entries int, duration time.Duration) {
	EntriesFetchedTotal.WithLabelValues(source).Add(float64(entries))
	SourceFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordSourceError records a failed fetch of a source
func RecordSourceError(source string, duration time.Duration) {
	SourceErrorsTotal.WithLabelValues(source).Inc()
	SourceFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordEntriesMatched records how many entries passed the alert day filter
func RecordEntriesMatched(source string, count int) {
	EntriesMatchedTotal.WithLabelValues(source).Add(float64(count))
}

// RecordCompaction records one compacted message.
// omitted is the number of input entries that are not shown on a line of their own.
func RecordCompaction(source, mode string, omitted, length int) {
	MessagesCompactedTotal.WithLabelValues(source, mode).Inc()
	if omitted > 0 {
		RowsOmittedTotal.WithLabelValues(source).Add(float64(omitted))
	}
	MessageLength.Observe(float64(length))
}
