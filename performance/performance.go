package performance

import (
	"errors"
	"fmt"

	"seo-toolkit/models"
)

// ErrUnsupported is returned when no navigation timing is available.
var ErrUnsupported = errors.New("Performance API not supported")

// TimingSource supplies navigation timestamps. ok is false when the host has no
// timing support.
type TimingSource interface {
	NavigationTiming() (timing models.NavigationTiming, ok bool)
}

// StaticTiming is a TimingSource over already captured timestamps.
type StaticTiming models.NavigationTiming

func (s StaticTiming) NavigationTiming() (models.NavigationTiming, bool) {
	return models.NavigationTiming(s), true
}

// Sample derives the four durations from navigation timestamps.
func Sample(t models.NavigationTiming) models.TimingSample {
	return models.TimingSample{
		PageLoadTime: t.LoadEventEnd - t.NavigationStart,
		ConnectTime:  t.ResponseEnd - t.RequestStart,
		RenderTime:   t.DOMComplete - t.DOMLoading,
		DOMReadyTime: t.DOMContentLoadedEventEnd - t.NavigationStart,
	}
}

// Analyze reads timing from src and evaluates it.
func Analyze(src TimingSource) (*models.PerformanceReport, error) {
	if src == nil {
		return nil, ErrUnsupported
	}
	timing, ok := src.NavigationTiming()
	if !ok {
		return nil, ErrUnsupported
	}
	sample := Sample(timing)
	return Evaluate(&sample)
}

// Evaluate scores a timing sample. A nil sample means timing is unavailable.
func Evaluate(sample *models.TimingSample) (*models.PerformanceReport, error) {
	if sample == nil {
		return nil, ErrUnsupported
	}

	score := Score(*sample)

	return &models.PerformanceReport{
		Score:           max(0, score),
		Rating:          RatingFor(score),
		Metrics:         Format(*sample),
		Recommendations: Recommend(score, sample.PageLoadTime, sample.ConnectTime, sample.RenderTime),
	}, nil
}

// Score applies the per-category penalties to a starting score of 100. The result
// is not clamped.
func Score(s models.TimingSample) int {
	score := 100

	if s.PageLoadTime > 3000 {
		score -= 30
	} else if s.PageLoadTime > 2000 {
		score -= 15
	}

	if s.ConnectTime > 500 {
		score -= 20
	} else if s.ConnectTime > 300 {
		score -= 10
	}

	if s.RenderTime > 1000 {
		score -= 20
	} else if s.RenderTime > 500 {
		score -= 10
	}

	return score
}

func RatingFor(score int) models.Rating {
	switch {
	case score < 70:
		return models.RatingNeedsImprovement
	case score < 85:
		return models.RatingGood
	default:
		return models.RatingExcellent
	}
}

// Format renders every duration in seconds with two decimals.
func Format(s models.TimingSample) models.FormattedTiming {
	return models.FormattedTiming{
		PageLoadTime: seconds(s.PageLoadTime),
		ConnectTime:  seconds(s.ConnectTime),
		RenderTime:   seconds(s.RenderTime),
		DOMReady:     seconds(s.DOMReadyTime),
	}
}

func seconds(ms int64) string {
	return fmt.Sprintf("%.2f", float64(ms)/1000)
}
