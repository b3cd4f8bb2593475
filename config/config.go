// Package config loads application settings from an optional TOML file
// with environment-variable overrides on top. Defaults always produce a
// usable configuration; a missing file is not an error.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/resona-app/resona/pitch"
)

// Settings holds everything tunable about a training profile
type Settings struct {
	UserName     string  `toml:"user_name" json:"user_name"`
	TrainingDays []int   `toml:"training_days" json:"training_days"` // 0=Sunday .. 6=Saturday; empty = every day
	TargetPitch  float64 `toml:"target_pitch" json:"target_pitch"`   // Hz

	EnableRecording bool    `toml:"enable_recording" json:"enable_recording"`
	InputDevice     string  `toml:"input_device" json:"input_device"`
	MicGain         float64 `toml:"mic_gain" json:"mic_gain"`

	PollIntervalMs  int `toml:"poll_interval_ms" json:"poll_interval_ms"`
	AnalysisBufSize int `toml:"analysis_buf_size" json:"analysis_buf_size"`

	DeleteSessionWithRecording bool `toml:"delete_session_with_recording" json:"delete_session_with_recording"`
	RetainAnalytics            bool `toml:"retain_analytics" json:"retain_analytics"`
	DisableLeveling            bool `toml:"disable_leveling" json:"disable_leveling"`

	DataDir string `toml:"data_dir" json:"data_dir"`

	Pitch pitch.Params `toml:"pitch" json:"pitch"`
}

// Default returns the baseline settings for a fresh profile
func Default() Settings {
	return Settings{
		UserName:        "Vocalist",
		TrainingDays:    nil, // every day until the user narrows it
		TargetPitch:     261, // middle C
		EnableRecording: true,
		InputDevice:     "default",
		MicGain:         1.0,
		PollIntervalMs:  100,
		AnalysisBufSize: 2048,
		RetainAnalytics: true,
		DataDir:         defaultDataDir(),
		Pitch:           pitch.DefaultParams(),
	}
}

// Load builds settings from defaults, then the TOML file at path (if it
// exists), then RESONA_* environment variables. A .env file in the
// working directory is folded into the environment first.
func Load(path string) (Settings, error) {
	// Missing .env is the normal case
	_ = godotenv.Load()

	s := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &s); err != nil {
				return s, fmt.Errorf("config: parse %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return s, fmt.Errorf("config: stat %s: %w", path, err)
		}
	}

	if err := applyEnv(&s); err != nil {
		return s, err
	}
	return s, s.Validate()
}

// Validate rejects settings no component could run with
func (s *Settings) Validate() error {
	if s.TargetPitch <= 0 {
		return fmt.Errorf("config: target_pitch must be positive, got %v", s.TargetPitch)
	}
	if s.MicGain <= 0 {
		return fmt.Errorf("config: mic_gain must be positive, got %v", s.MicGain)
	}
	if s.PollIntervalMs <= 0 {
		return fmt.Errorf("config: poll_interval_ms must be positive, got %d", s.PollIntervalMs)
	}
	if s.AnalysisBufSize < s.Pitch.MinFrameSize {
		return fmt.Errorf("config: analysis_buf_size %d below minimum frame size %d", s.AnalysisBufSize, s.Pitch.MinFrameSize)
	}
	for _, d := range s.TrainingDays {
		if d < 0 || d > 6 {
			return fmt.Errorf("config: training day %d out of range 0-6", d)
		}
	}
	return nil
}

// PollEvery returns the live-pitch poll interval as a duration
func (s *Settings) PollEvery() time.Duration {
	return time.Duration(s.PollIntervalMs) * time.Millisecond
}

// Schedule converts the numeric training days into weekdays
func (s *Settings) Schedule() []time.Weekday {
	if len(s.TrainingDays) == 0 {
		return nil
	}
	days := make([]time.Weekday, 0, len(s.TrainingDays))
	for _, d := range s.TrainingDays {
		days = append(days, time.Weekday(d))
	}
	return days
}

func applyEnv(s *Settings) error {
	if v := os.Getenv("RESONA_DATA_DIR"); v != "" {
		s.DataDir = v
	}
	if v := os.Getenv("RESONA_TARGET_PITCH"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: RESONA_TARGET_PITCH: %w", err)
		}
		s.TargetPitch = f
	}
	if v := os.Getenv("RESONA_MIC_GAIN"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: RESONA_MIC_GAIN: %w", err)
		}
		s.MicGain = f
	}
	if v := os.Getenv("RESONA_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: RESONA_POLL_INTERVAL: %w", err)
		}
		s.PollIntervalMs = int(d / time.Millisecond)
	}
	if v := os.Getenv("RESONA_DISABLE_LEVELING"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: RESONA_DISABLE_LEVELING: %w", err)
		}
		s.DisableLeveling = b
	}
	if v := os.Getenv("RESONA_TRAINING_DAYS"); v != "" {
		var days []int
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			d, err := strconv.Atoi(part)
			if err != nil {
				return fmt.Errorf("config: RESONA_TRAINING_DAYS: %w", err)
			}
			days = append(days, d)
		}
		s.TrainingDays = days
	}
	return nil
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home + string(os.PathSeparator) + ".resona"
	}
	return ".resona"
}
