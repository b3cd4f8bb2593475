package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettingsValid(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())

	assert.Equal(t, 261.0, s.TargetPitch)
	assert.Equal(t, 1.0, s.MicGain)
	assert.Empty(t, s.TrainingDays, "no schedule until the user sets one")
	assert.True(t, s.EnableRecording)
	assert.Equal(t, 100*time.Millisecond, s.PollEvery())
	assert.Equal(t, 0.6, s.Pitch.ClarityThreshold)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().TargetPitch, s.TargetPitch)
}

func TestLoadTOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resona.toml")
	content := `
user_name = "Alex"
target_pitch = 196.0
training_days = [1, 3, 5]
disable_leveling = true

[pitch]
clarity_threshold = 0.75
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Alex", s.UserName)
	assert.Equal(t, 196.0, s.TargetPitch)
	assert.Equal(t, []int{1, 3, 5}, s.TrainingDays)
	assert.True(t, s.DisableLeveling)
	assert.Equal(t, 0.75, s.Pitch.ClarityThreshold)

	// Untouched fields keep their defaults
	assert.Equal(t, 1.0, s.MicGain)
	assert.Equal(t, 0.005, s.Pitch.SilenceRMS)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resona.toml")
	require.NoError(t, os.WriteFile(path, []byte(`target_pitch = 196.0`), 0o644))

	t.Setenv("RESONA_TARGET_PITCH", "220")
	t.Setenv("RESONA_POLL_INTERVAL", "50ms")
	t.Setenv("RESONA_TRAINING_DAYS", "0, 6")
	t.Setenv("RESONA_DISABLE_LEVELING", "true")

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 220.0, s.TargetPitch, "env wins over file")
	assert.Equal(t, 50*time.Millisecond, s.PollEvery())
	assert.Equal(t, []int{0, 6}, s.TrainingDays)
	assert.True(t, s.DisableLeveling)
}

func TestLoadBadEnvValue(t *testing.T) {
	t.Setenv("RESONA_TARGET_PITCH", "not-a-number")
	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"zero target pitch", func(s *Settings) { s.TargetPitch = 0 }},
		{"negative gain", func(s *Settings) { s.MicGain = -1 }},
		{"zero poll interval", func(s *Settings) { s.PollIntervalMs = 0 }},
		{"buffer below min frame", func(s *Settings) { s.AnalysisBufSize = 16 }},
		{"training day out of range", func(s *Settings) { s.TrainingDays = []int{7} }},
		{"negative training day", func(s *Settings) { s.TrainingDays = []int{-1} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestSchedule(t *testing.T) {
	s := Default()
	assert.Nil(t, s.Schedule())

	s.TrainingDays = []int{0, 2}
	assert.Equal(t, []time.Weekday{time.Sunday, time.Tuesday}, s.Schedule())
}
