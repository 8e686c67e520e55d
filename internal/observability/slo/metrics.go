package slo

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SLO targets for the scheduled announcement job.
const (
	// RunSuccessSLO is the target share of runs that finish without any fetch or delivery error.
	RunSuccessSLO = 0.95

	// RunDurationSLO is the target duration of one run in seconds.
	RunDurationSLO = 300.0

	// DefaultWindow is how many recent runs the success ratio is computed over (one month of daily runs).
	DefaultWindow = 30
)

var (
	// SLORunSuccess is the success ratio (0-1) over the last DefaultWindow runs.
	SLORunSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_run_success_ratio",
			Help: "Share of recent announcement runs without errors (0-1), target: 0.95",
		},
	)

	// SLORunDuration is the duration of the most recent run in seconds.
	SLORunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_run_duration_seconds",
			Help: "Duration of the most recent announcement run in seconds, target: 300",
		},
	)
)

// UpdateRunSuccess sets the run success ratio gauge.
func UpdateRunSuccess(ratio float64) {
	SLORunSuccess.Set(ratio)
}

// UpdateRunDuration sets the last run duration gauge.
func UpdateRunDuration(seconds float64) {
	SLORunDuration.Set(seconds)
}

// Tracker keeps the outcome of the last N runs.
type Tracker struct {
	mu      sync.Mutex
	results []bool
	next    int
	filled  int
}

// NewTracker creates a tracker over the last size runs. size <= 0 means DefaultWindow.
func NewTracker(size int) *Tracker {
	if size <= 0 {
		size = DefaultWindow
	}
	return &Tracker{results: make([]bool, size)}
}

// Observe records one run, updates both gauges and returns the new success ratio.
func (t *Tracker) Observe(success bool, duration time.Duration) float64 {
	t.mu.Lock()
	t.results[t.next] = success
	t.next = (t.next + 1) % len(t.results)
	if t.filled < len(t.results) {
		t.filled++
	}
	ratio := t.ratioLocked()
	t.mu.Unlock()

	UpdateRunSuccess(ratio)
	UpdateRunDuration(duration.Seconds())
	return ratio
}

// Ratio returns the success ratio of the recorded runs, 1 before the first run.
func (t *Tracker) Ratio() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ratioLocked()
}

// Met reports whether the recorded runs meet RunSuccessSLO.
func (t *Tracker) Met() bool {
	return t.Ratio() >= RunSuccessSLO
}

func (t *Tracker) ratioLocked() float64 {
	if t.filled == 0 {
		return 1
	}
	ok := 0
	for i := 0; i < t.filled; i++ {
		if t.results[i] {
			ok++
		}
	}
	return float64(ok) / float64(t.filled)
}
