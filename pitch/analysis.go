package pitch

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// SeriesSummary describes a recorded pitch time series after a session
type SeriesSummary struct {
	MeanHz      float64 `json:"mean_hz"`
	MedianHz    float64 `json:"median_hz"`
	StdDevHz    float64 `json:"std_dev_hz"`
	MinHz       float64 `json:"min_hz"`
	MaxHz       float64 `json:"max_hz"`
	Jitter      float64 `json:"jitter"`       // mean absolute frame-to-frame change
	VoicedRatio float64 `json:"voiced_ratio"` // voiced frames / all frames
}

// AnalyzeSeries summarizes a per-frame pitch series where values <= 0
// mark unvoiced frames. Returns ok=false when the series holds no
// voiced frames at all.
func AnalyzeSeries(pitches []float64) (SeriesSummary, bool) {
	if len(pitches) == 0 {
		return SeriesSummary{}, false
	}

	voiced := make([]float64, 0, len(pitches))
	for _, p := range pitches {
		if p > 0 {
			voiced = append(voiced, p)
		}
	}

	if len(voiced) == 0 {
		return SeriesSummary{}, false
	}

	summary := SeriesSummary{
		MeanHz:      stat.Mean(voiced, nil),
		VoicedRatio: float64(len(voiced)) / float64(len(pitches)),
	}

	sorted := make([]float64, len(voiced))
	copy(sorted, voiced)
	sort.Float64s(sorted)
	summary.MedianHz = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	summary.MinHz = sorted[0]
	summary.MaxHz = sorted[len(sorted)-1]

	if len(voiced) >= 2 {
		summary.StdDevHz = math.Sqrt(stat.Variance(voiced, nil))

		jitter := 0.0
		for i := 1; i < len(voiced); i++ {
			jitter += math.Abs(voiced[i] - voiced[i-1])
		}
		summary.Jitter = jitter / float64(len(voiced)-1)
	}

	return summary, true
}
