package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordSourceFetched(t *testing.T) {
	before := testutil.ToFloat64(EntriesFetchedTotal.WithLabelValues("metrics-test-store"))

	RecordSourceFetched("metrics-test-store", 12, 300*time.Millisecond)

	after := testutil.ToFloat64(EntriesFetchedTotal.WithLabelValues("metrics-test-store"))
	assert.Equal(t, 12.0, after-before)
}

func TestRecordSourceError(t *testing.T) {
	before := testutil.ToFloat64(SourceErrorsTotal.WithLabelValues("metrics-test-ticket"))

	RecordSourceError("metrics-test-ticket", time.Second)
	RecordSourceError("metrics-test-ticket", time.Second)

	after := testutil.ToFloat64(SourceErrorsTotal.WithLabelValues("metrics-test-ticket"))
	assert.Equal(t, 2.0, after-before)
}

func TestRecordEntriesMatched(t *testing.T) {
	before := testutil.ToFloat64(EntriesMatchedTotal.WithLabelValues("metrics-test-feed"))

	RecordEntriesMatched("metrics-test-feed", 0)
	RecordEntriesMatched("metrics-test-feed", 4)

	after := testutil.ToFloat64(EntriesMatchedTotal.WithLabelValues("metrics-test-feed"))
	assert.Equal(t, 4.0, after-before)
}

func TestRecordCompaction(t *testing.T) {
	tests := []struct {
		name        string
		mode        string
		omitted     int
		wantOmitted float64
	}{
		{name: "verbatim", mode: "verbatim", omitted: 0, wantOmitted: 0},
		{name: "merged", mode: "merged", omitted: 27, wantOmitted: 27},
		{name: "fallback", mode: "fallback", omitted: 3, wantOmitted: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := "metrics-test-" + tt.name
			modeBefore := testutil.ToFloat64(MessagesCompactedTotal.WithLabelValues(source, tt.mode))
			omittedBefore := testutil.ToFloat64(RowsOmittedTotal.WithLabelValues(source))

			RecordCompaction(source, tt.mode, tt.omitted, 1500)

			assert.Equal(t, 1.0, testutil.ToFloat64(MessagesCompactedTotal.WithLabelValues(source, tt.mode))-modeBefore)
			assert.Equal(t, tt.wantOmitted, testutil.ToFloat64(RowsOmittedTotal.WithLabelValues(source))-omittedBefore)
		})
	}
}
