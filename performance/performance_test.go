package performance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seo-toolkit/models"
)

type noTiming struct{}

func (noTiming) NavigationTiming() (models.NavigationTiming, bool) {
	return models.NavigationTiming{}, false
}

func TestEvaluateSlowPage(t *testing.T) {
	report, err := Evaluate(&models.TimingSample{PageLoadTime: 5000, ConnectTime: 600, RenderTime: 1200, DOMReadyTime: 2500})
	require.NoError(t, err)

	assert.Equal(t, 30, report.Score)
	assert.Equal(t, models.RatingNeedsImprovement, report.Rating)
	assert.Equal(t, []string{AdviceCaching, AdviceHosting, AdviceMinify, AdviceCompression, AdviceRequests}, report.Recommendations)
	assert.Equal(t, models.FormattedTiming{
		PageLoadTime: "5.00",
		ConnectTime:  "0.60",
		RenderTime:   "1.20",
		DOMReady:     "2.50",
	}, report.Metrics)
}

func TestEvaluateFastPage(t *testing.T) {
	report, err := Evaluate(&models.TimingSample{PageLoadTime: 1000, ConnectTime: 100, RenderTime: 200, DOMReadyTime: 800})
	require.NoError(t, err)

	assert.Equal(t, 100, report.Score)
	assert.Equal(t, models.RatingExcellent, report.Rating)
	assert.Equal(t, []string{AdviceGreat}, report.Recommendations)
}

func TestEvaluateUnsupported(t *testing.T) {
	report, err := Evaluate(nil)
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Nil(t, report)
	assert.EqualError(t, err, "Performance API not supported")

	report, err = Analyze(nil)
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Nil(t, report)

	report, err = Analyze(noTiming{})
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Nil(t, report)
}

func TestScoreTiers(t *testing.T) {
	tests := []struct {
		name   string
		sample models.TimingSample
		score  int
		rating models.Rating
	}{
		{"boundaries are exclusive", models.TimingSample{PageLoadTime: 2000, ConnectTime: 300, RenderTime: 500}, 100, models.RatingExcellent},
		{"middle tier load", models.TimingSample{PageLoadTime: 2001}, 85, models.RatingExcellent},
		{"middle tier everywhere", models.TimingSample{PageLoadTime: 2500, ConnectTime: 400, RenderTime: 700}, 65, models.RatingNeedsImprovement},
		{"middle connect and render", models.TimingSample{ConnectTime: 301, RenderTime: 501}, 80, models.RatingGood},
		{"top tier load only", models.TimingSample{PageLoadTime: 3001}, 70, models.RatingGood},
		{"top connect", models.TimingSample{ConnectTime: 501}, 80, models.RatingGood},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := Score(tt.sample)
			assert.Equal(t, tt.score, score)
			assert.Equal(t, tt.rating, RatingFor(score))
		})
	}
}

func TestAnalyzeDerivesDurations(t *testing.T) {
	src := StaticTiming{
		NavigationStart:          1000,
		RequestStart:             1050,
		ResponseEnd:              1450,
		DOMLoading:               1500,
		DOMContentLoadedEventEnd: 2100,
		DOMComplete:              2200,
		LoadEventEnd:             3600,
	}

	assert.Equal(t, models.TimingSample{
		PageLoadTime: 2600,
		ConnectTime:  400,
		RenderTime:   700,
		DOMReadyTime: 1100,
	}, Sample(models.NavigationTiming(src)))

	report, err := Analyze(src)
	require.NoError(t, err)
	assert.Equal(t, 65, report.Score)
	assert.Equal(t, models.RatingNeedsImprovement, report.Rating)
	assert.Equal(t, []string{AdviceCompression, AdviceRequests}, report.Recommendations)
	assert.Equal(t, "2.60", report.Metrics.PageLoadTime)
	assert.Equal(t, "1.10", report.Metrics.DOMReady)
}

func TestEvaluateIdempotent(t *testing.T) {
	sample := &models.TimingSample{PageLoadTime: 2500, ConnectTime: 350, RenderTime: 900, DOMReadyTime: 1200}

	first, err := Evaluate(sample)
	require.NoError(t, err)
	second, err := Evaluate(sample)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
