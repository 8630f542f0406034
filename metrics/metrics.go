package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	scoresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seo_toolkit_scores_total",
			Help: "Total scorer invocations by scorer and outcome",
		},
		[]string{"scorer", "outcome"},
	)

	scoreValues = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seo_toolkit_score",
			Help:    "Distribution of produced scores by scorer",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 85, 100},
		},
		[]string{"scorer"},
	)

	keywordVolume = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "seo_toolkit_keyword_volume",
			Help:    "Distribution of estimated monthly search volumes",
			Buckets: prometheus.ExponentialBuckets(250, 2, 8),
		},
	)

	fetchSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "seo_toolkit_fetch_duration_seconds",
			Help:    "Time spent fetching audited pages, subresources included",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Register adds the toolkit collectors to reg.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{scoresTotal, scoreValues, keywordVolume, fetchSeconds} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// RecordScore counts a scorer result. outcome is a rating, verdict or difficulty label.
func RecordScore(scorer, outcome string, score int) {
	scoresTotal.WithLabelValues(scorer, outcome).Inc()
	scoreValues.WithLabelValues(scorer).Observe(float64(score))
}

// RecordFailure counts a scorer invocation that produced no score.
func RecordFailure(scorer, reason string) {
	scoresTotal.WithLabelValues(scorer, reason).Inc()
}

// RecordKeyword counts an estimate by difficulty. Volumes are not scores and
// get their own histogram.
func RecordKeyword(difficulty string, volume int) {
	scoresTotal.WithLabelValues("keyword", difficulty).Inc()
	keywordVolume.Observe(float64(volume))
}

func RecordMobile(score int, friendly bool) {
	RecordScore("mobile", "friendly="+strconv.FormatBool(friendly), score)
}

func ObserveFetch(seconds float64) {
	fetchSeconds.Observe(seconds)
}
