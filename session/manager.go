package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/resona-app/resona/audio"
	"github.com/resona-app/resona/config"
	"github.com/resona-app/resona/logging"
	"github.com/resona-app/resona/pitch"
	"github.com/resona-app/resona/progression"
	"github.com/resona-app/resona/stats"
	"github.com/resona-app/resona/storage"
)

var (
	// ErrNoActiveSession means no session is currently running
	ErrNoActiveSession = errors.New("session: no active session")
	// ErrSessionFinalized means the session's records were already persisted
	ErrSessionFinalized = errors.New("session: already finalized")
)

// Manager owns the session lifecycle and the persisted records. At
// most one session runs at a time.
type Manager struct {
	settings config.Settings
	kv       storage.KVStore
	blobs    storage.BlobStore
	progress *progression.Engine
	logger   logging.Logger
	clock    func() time.Time

	mu     sync.Mutex
	active *Session
}

// NewManager creates a session manager backed by the given stores
func NewManager(settings config.Settings, kv storage.KVStore, blobs storage.BlobStore) *Manager {
	engine := progression.NewEngine()
	engine.SetDisableLeveling(settings.DisableLeveling)
	return &Manager{
		settings: settings,
		kv:       kv,
		blobs:    blobs,
		progress: engine,
		logger:   logging.GetGlobalLogger(),
		clock:    time.Now,
	}
}

// Start begins a new session on the given capture provider. The
// manager takes ownership of the provider; it is closed when the
// session stops. Cancelling ctx stops the session.
//
// At most one capture pipeline is open at a time: any session still
// running is stopped and its device released before the new provider
// is probed. The superseded session stays finalizable.
func (m *Manager) Start(ctx context.Context, capture audio.CaptureProvider) (*Session, error) {
	if capture == nil {
		return nil, fmt.Errorf("session: nil capture provider")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil {
		m.logger.WithFields(logging.Fields{"session_id": m.active.id}).Warn("stopping previous session")
		m.active.Stop()
		m.active = nil
	}

	// Probe the device before committing to a session
	if _, err := capture.CurrentFrame(m.settings.AnalysisBufSize); err != nil {
		capture.Close()
		return nil, fmt.Errorf("session: capture probe: %w", err)
	}
	capture.SetGain(m.settings.MicGain)

	tracker := pitch.NewSmoothedTracker()
	tracker.Activate()

	sess := &Session{
		id:        uuid.New().String(),
		capture:   capture,
		estimator: pitch.NewEstimatorWithParams(m.settings.Pitch),
		tracker:   tracker,
		logger:    m.logger,
		interval:  m.settings.PollEvery(),
		bufSize:   m.settings.AnalysisBufSize,
		record:    m.settings.EnableRecording,
		startTime: m.clock(),
		points:    make(chan PitchPoint, 16),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	m.active = sess

	go sess.run()
	go func() {
		select {
		case <-ctx.Done():
			sess.Stop()
		case <-sess.done:
		}
	}()

	m.logger.WithFields(logging.Fields{
		"session_id": sess.id,
		"interval":   sess.interval.String(),
		"recording":  sess.record,
	}).Info("session started")

	return sess, nil
}

// Active returns the running session, if any
func (m *Manager) Active() (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active, m.active != nil
}

// Finalize stops the session, persists its records, and runs the
// progression pipeline. Works on the active session and on one that
// was superseded by a later Start; each session finalizes at most
// once. The session slot is freed even when persistence fails partway;
// the error reports what was lost.
func (m *Manager) Finalize(sess *Session, healthLog *stats.VocalHealthLog, notes string) (stats.TrainingSession, progression.SessionOutcome, error) {
	if sess == nil {
		return stats.TrainingSession{}, progression.SessionOutcome{}, ErrNoActiveSession
	}

	m.mu.Lock()
	if sess.finalized {
		m.mu.Unlock()
		return stats.TrainingSession{}, progression.SessionOutcome{}, ErrSessionFinalized
	}
	sess.finalized = true
	if m.active == sess {
		m.active = nil
	}
	m.mu.Unlock()

	sess.Stop()

	now := m.clock()
	duration := int(math.Round((sess.endTime.Sub(sess.startTime) - sess.pausedTotal).Seconds()))
	if duration < 0 {
		duration = 0
	}

	record := stats.TrainingSession{
		ID:              sess.id,
		StartTime:       sess.startTime,
		EndTime:         sess.endTime,
		DurationSeconds: duration,
		Notes:           notes,
		PitchData:       sess.PitchData(),
		TargetPitch:     m.settings.TargetPitch,
		HealthLog:       healthLog,
	}

	if sess.record && len(sess.recSamples) > 0 {
		recID, err := m.saveRecording(sess, record)
		if err != nil {
			m.logger.Error(err, "recording save failed")
		} else {
			record.RecordingID = recID
		}
	}

	userStats := m.loadStats()
	sessions := m.loadSessions()
	goals := m.loadGoals()

	sessions = append([]stats.TrainingSession{record}, sessions...)

	outcome := m.progress.ApplySession(userStats, record, sessions, goals, m.settings.Schedule(), now)

	var firstErr error
	for _, step := range []struct {
		key string
		val interface{}
	}{
		{storage.KeyStats, userStats},
		{storage.KeySessions, sessions},
		{storage.KeyGoals, outcome.Goals},
	} {
		if err := m.kv.Put(step.key, step.val); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("session: persist %s: %w", step.key, err)
		}
	}

	return record, outcome, firstErr
}

// saveRecording encodes the buffered audio as WAV, stores the blob,
// and prepends the recording metadata
func (m *Manager) saveRecording(sess *Session, record stats.TrainingSession) (string, error) {
	wav, err := audio.EncodeWAV(sess.recSamples, sess.capture.SampleRate())
	if err != nil {
		return "", err
	}

	recID := uuid.New().String()
	if err := m.blobs.SaveBlob(recID, wav); err != nil {
		return "", err
	}

	recordings := m.loadRecordings()
	recordings = append([]stats.Recording{{
		ID:              recID,
		Filename:        fmt.Sprintf("session-%s.wav", sess.endTime.Format("2006-01-02-150405")),
		Date:            sess.endTime,
		DurationSeconds: record.DurationSeconds,
		SizeBytes:       int64(len(wav)),
		PitchData:       record.PitchData,
		TargetPitch:     record.TargetPitch,
	}}, recordings...)

	if err := m.kv.Put(storage.KeyRecordings, recordings); err != nil {
		return "", err
	}
	return recID, nil
}

// DeleteSession removes a session record. When configured, the linked
// recording is deleted with it, and health trend entries are dropped
// unless analytics retention is on.
func (m *Manager) DeleteSession(id string) error {
	sessions := m.loadSessions()
	idx := -1
	for i, s := range sessions {
		if s.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return storage.ErrNotFound
	}
	target := sessions[idx]

	if m.settings.DeleteSessionWithRecording && target.RecordingID != "" {
		if err := m.DeleteRecording(target.RecordingID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			m.logger.WithFields(logging.Fields{"error": err.Error()}).Warn("linked recording delete failed")
		}
	}

	if !m.settings.RetainAnalytics {
		userStats := m.loadStats()
		trends := userStats.HealthTrends[:0]
		for _, t := range userStats.HealthTrends {
			if !t.Date.Equal(target.EndTime) {
				trends = append(trends, t)
			}
		}
		userStats.HealthTrends = trends
		if err := m.kv.Put(storage.KeyStats, userStats); err != nil {
			return fmt.Errorf("session: persist stats: %w", err)
		}
	}

	sessions = append(sessions[:idx], sessions[idx+1:]...)
	return m.kv.Put(storage.KeySessions, sessions)
}

// DeleteRecording removes a recording blob and its metadata
func (m *Manager) DeleteRecording(id string) error {
	if err := m.blobs.DeleteBlob(id); err != nil {
		return err
	}
	recordings := m.loadRecordings()
	filtered := recordings[:0]
	for _, r := range recordings {
		if r.ID != id {
			filtered = append(filtered, r)
		}
	}
	return m.kv.Put(storage.KeyRecordings, filtered)
}

// Stats returns the persisted stats record, creating a fresh one if
// none exists yet
func (m *Manager) Stats() *stats.UserStats {
	return m.loadStats()
}

// Sessions returns the persisted session history, newest first
func (m *Manager) Sessions() []stats.TrainingSession {
	return m.loadSessions()
}

// Recordings returns the persisted recording metadata, newest first
func (m *Manager) Recordings() []stats.Recording {
	return m.loadRecordings()
}

// Goals returns the active goal list
func (m *Manager) Goals() []stats.Goal {
	return m.loadGoals()
}

// AddGoal creates a goal snapshotted against the current stats and
// persists the updated goal list
func (m *Manager) AddGoal(goalType stats.GoalType, target int, label string) (stats.Goal, error) {
	goal := progression.NewGoal(goalType, target, label, m.loadStats())
	goals := append(m.loadGoals(), goal)
	if err := m.kv.Put(storage.KeyGoals, goals); err != nil {
		return stats.Goal{}, fmt.Errorf("session: persist goals: %w", err)
	}
	return goal, nil
}

// ClaimGoal moves a completed goal into the stats history
func (m *Manager) ClaimGoal(goalID string) error {
	userStats := m.loadStats()
	remaining, err := progression.ClaimGoal(m.loadGoals(), userStats, goalID, m.clock())
	if err != nil {
		return err
	}
	if err := m.kv.Put(storage.KeyGoals, remaining); err != nil {
		return fmt.Errorf("session: persist goals: %w", err)
	}
	return m.kv.Put(storage.KeyStats, userStats)
}

func (m *Manager) loadStats() *stats.UserStats {
	s := stats.NewUserStats()
	if err := m.kv.Get(storage.KeyStats, s); err != nil && !errors.Is(err, storage.ErrNotFound) {
		m.logger.WithFields(logging.Fields{"error": err.Error()}).Warn("stats load failed, starting fresh")
		return stats.NewUserStats()
	}
	return s
}

func (m *Manager) loadSessions() []stats.TrainingSession {
	var sessions []stats.TrainingSession
	if err := m.kv.Get(storage.KeySessions, &sessions); err != nil && !errors.Is(err, storage.ErrNotFound) {
		m.logger.WithFields(logging.Fields{"error": err.Error()}).Warn("session history load failed")
	}
	return sessions
}

func (m *Manager) loadRecordings() []stats.Recording {
	var recordings []stats.Recording
	if err := m.kv.Get(storage.KeyRecordings, &recordings); err != nil && !errors.Is(err, storage.ErrNotFound) {
		m.logger.WithFields(logging.Fields{"error": err.Error()}).Warn("recordings load failed")
	}
	return recordings
}

func (m *Manager) loadGoals() []stats.Goal {
	var goals []stats.Goal
	if err := m.kv.Get(storage.KeyGoals, &goals); err != nil && !errors.Is(err, storage.ErrNotFound) {
		m.logger.WithFields(logging.Fields{"error": err.Error()}).Warn("goals load failed")
	}
	return goals
}
