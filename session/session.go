// Package session runs live training sessions: a poll loop that pulls
// audio frames from a capture provider, feeds them through the pitch
// pipeline, buffers the per-frame series and optional raw audio, and
// on finalize folds the completed session into the persisted records.
package session

import (
	"sync"
	"time"

	"github.com/resona-app/resona/audio"
	"github.com/resona-app/resona/logging"
	"github.com/resona-app/resona/pitch"
	"github.com/resona-app/resona/stats"
)

// PitchPoint is one live update published while a session runs.
// PitchHz <= 0 means the frame was unvoiced; Smoothed carries the
// moving-average display value when ok.
type PitchPoint struct {
	TimeOffsetMs int64   `json:"time"`
	PitchHz      float64 `json:"pitch"`
	Smoothed     float64 `json:"smoothed,omitempty"`
	Clarity      float64 `json:"clarity,omitempty"`
}

// Session is one live training session. It owns its capture provider
// for its whole lifetime: the provider is acquired on start and closed
// on stop, never shared between sessions.
type Session struct {
	id        string
	capture   audio.CaptureProvider
	estimator *pitch.Estimator
	tracker   *pitch.SmoothedTracker
	logger    logging.Logger

	interval time.Duration
	bufSize  int
	record   bool

	startTime time.Time
	points    chan PitchPoint
	stop      chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
	finalized bool // guarded by the manager's mutex

	mu          sync.Mutex
	pitchData   []stats.PitchDataPoint
	recSamples  []float64
	endTime     time.Time
	paused      bool
	pausedAt    time.Time
	pausedTotal time.Duration
}

// ID returns the session's unique identifier
func (s *Session) ID() string {
	return s.id
}

// StartTime returns when the session began
func (s *Session) StartTime() time.Time {
	return s.startTime
}

// Points returns the live update stream. The channel is closed when
// the session stops. Slow or absent consumers never stall the poll
// loop; updates they miss are dropped from the stream but kept in the
// recorded series.
func (s *Session) Points() <-chan PitchPoint {
	return s.points
}

// Pause suspends polling. The clock stops with it: paused time does
// not count toward the session duration or point offsets. Idempotent.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paused {
		s.paused = true
		s.pausedAt = time.Now()
	}
}

// Resume continues a paused session. Idempotent.
func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused {
		s.pausedTotal += time.Since(s.pausedAt)
		s.paused = false
	}
}

// Paused reports whether the session is currently paused
func (s *Session) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Stop ends the session: the poll loop exits, the points channel is
// closed, and the capture provider is released. Idempotent; safe to
// call from any goroutine.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		<-s.done

		s.tracker.Deactivate()
		if err := s.capture.Close(); err != nil {
			s.logger.WithFields(logging.Fields{"error": err.Error()}).Warn("capture close failed")
		}

		s.mu.Lock()
		if s.paused {
			s.pausedTotal += time.Since(s.pausedAt)
			s.paused = false
		}
		s.endTime = time.Now()
		s.mu.Unlock()
	})
}

// PitchData returns a copy of the recorded per-frame series so far
func (s *Session) PitchData() []stats.PitchDataPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]stats.PitchDataPoint, len(s.pitchData))
	copy(cp, s.pitchData)
	return cp
}

// run is the poll loop. One goroutine per session; exits on Stop.
func (s *Session) run() {
	defer close(s.done)
	defer close(s.points)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.poll()
		}
	}
}

// poll processes one frame. Capture errors degrade to an unvoiced
// point rather than ending the session; the microphone coming back
// mid-session just resumes voiced points.
func (s *Session) poll() {
	s.mu.Lock()
	if s.paused {
		s.mu.Unlock()
		return
	}
	offset := (time.Since(s.startTime) - s.pausedTotal).Milliseconds()
	s.mu.Unlock()

	frame, err := s.capture.CurrentFrame(s.bufSize)
	var est pitch.Estimate
	if err != nil {
		s.logger.WithFields(logging.Fields{"error": err.Error()}).Debug("frame capture failed")
		est = pitch.NoPitch
	} else {
		est = s.estimator.Estimate(frame)
	}

	point := PitchPoint{TimeOffsetMs: offset}
	if est.Voiced {
		point.PitchHz = est.Frequency
		point.Clarity = est.Clarity
	}
	if smoothed, ok := s.tracker.Push(est); ok {
		point.Smoothed = smoothed
	}

	s.mu.Lock()
	s.pitchData = append(s.pitchData, stats.PitchDataPoint{
		TimeOffsetMs: point.TimeOffsetMs,
		PitchHz:      point.PitchHz,
	})
	if s.record && err == nil {
		s.recSamples = append(s.recSamples, frame.Samples...)
	}
	s.mu.Unlock()

	select {
	case s.points <- point:
	default:
	}
}
