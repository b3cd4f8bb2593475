package pitch

import (
	"gonum.org/v1/gonum/stat"
)

// DefaultHistorySize is the moving-average depth for display smoothing
const DefaultHistorySize = 5

// TrackerState represents the tracker lifecycle
type TrackerState int

const (
	// TrackerInactive means no session is running; pushes are ignored
	TrackerInactive TrackerState = iota
	// TrackerActive means estimates are being accumulated and smoothed
	TrackerActive
)

// SmoothedTracker wraps raw per-frame estimates with a short
// moving-average history to reduce display jitter.
//
// The history buffer holds only voiced frequencies. A single unvoiced
// frame clears the displayed value but NOT the buffer, so a momentary
// dropout mid-note does not make the readout flicker. The buffer is
// cleared only on activation and deactivation.
type SmoothedTracker struct {
	historySize int
	history     []float64
	state       TrackerState
	displayed   float64
	hasValue    bool
}

// NewSmoothedTracker creates an inactive tracker with the default history depth
func NewSmoothedTracker() *SmoothedTracker {
	return NewSmoothedTrackerWithSize(DefaultHistorySize)
}

// NewSmoothedTrackerWithSize creates an inactive tracker with a custom history depth
func NewSmoothedTrackerWithSize(historySize int) *SmoothedTracker {
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	return &SmoothedTracker{
		historySize: historySize,
		history:     make([]float64, 0, historySize),
	}
}

// State returns the current lifecycle state
func (t *SmoothedTracker) State() TrackerState {
	return t.state
}

// Activate transitions Inactive -> Active and clears any stale history
func (t *SmoothedTracker) Activate() {
	t.state = TrackerActive
	t.history = t.history[:0]
	t.displayed = 0
	t.hasValue = false
}

// Deactivate transitions Active -> Inactive, clearing history and the
// displayed value. Idempotent.
func (t *SmoothedTracker) Deactivate() {
	t.state = TrackerInactive
	t.history = t.history[:0]
	t.displayed = 0
	t.hasValue = false
}

// Push feeds one estimate through the smoother and returns the smoothed
// frequency, or ok=false when there is no displayable pitch. Pushes on
// an inactive tracker are ignored.
func (t *SmoothedTracker) Push(est Estimate) (smoothed float64, ok bool) {
	if t.state != TrackerActive {
		return 0, false
	}

	if !est.Voiced {
		// Momentary dropout: blank the display, keep the history
		t.displayed = 0
		t.hasValue = false
		return 0, false
	}

	t.history = append(t.history, est.Frequency)
	if len(t.history) > t.historySize {
		t.history = t.history[1:]
	}

	t.displayed = stat.Mean(t.history, nil)
	t.hasValue = true
	return t.displayed, true
}

// Value returns the last smoothed frequency, or ok=false if the display
// is currently blank
func (t *SmoothedTracker) Value() (float64, bool) {
	return t.displayed, t.hasValue
}
