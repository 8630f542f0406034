package keyword

import (
	"math"
	"math/rand"
	"regexp"
	"strings"

	"seo-toolkit/models"
)

var (
	questionPattern = regexp.MustCompile(`(?i)\b(how|what|why|when|where|who)\b`)
	buyingPattern   = regexp.MustCompile(`(?i)\b(buy|price|cost|cheap|best|review|hire|order)\b`)
)

const (
	baseVolume  = 500
	volumeRange = 5000
)

// RandSource returns a value in [0, 1).
type RandSource func() float64

// Keyword holds the lexical features the estimator looks at.
type Keyword struct {
	Text            string
	TokenCount      int
	IsQuestion      bool
	HasBuyingIntent bool
}

// Analyze computes the lexical features of text. An empty or single word input
// counts as one token.
func Analyze(text string) Keyword {
	count := len(strings.Fields(text))
	if count < 1 {
		count = 1
	}

	return Keyword{
		Text:            text,
		TokenCount:      count,
		IsQuestion:      questionPattern.MatchString(text),
		HasBuyingIntent: buyingPattern.MatchString(text),
	}
}

// Estimator produces synthetic search metrics. Volumes are drawn, not measured.
type Estimator struct {
	rand RandSource
}

func NewEstimator(source RandSource) *Estimator {
	if source == nil {
		source = rand.Float64
	}
	return &Estimator{rand: source}
}

func (e *Estimator) Estimate(text string) models.KeywordMetrics {
	kw := Analyze(text)

	volume := baseVolume + int(math.Floor(e.rand()*volumeRange))
	difficulty := models.DifficultyMedium

	if kw.TokenCount >= 4 {
		volume = scale(volume, 0.6)
		difficulty = models.DifficultyLow
	} else if kw.TokenCount <= 2 {
		volume = scale(volume, 2)
		difficulty = models.DifficultyHigh
	}

	// Runs after the length rule; overrides difficulty, stacks on volume.
	if kw.IsQuestion {
		difficulty = models.DifficultyLow
		volume = scale(volume, 0.8)
	}

	if kw.HasBuyingIntent {
		volume = scale(volume, 1.5)
	}

	return models.KeywordMetrics{
		Keyword:     text,
		Volume:      volume,
		Difficulty:  difficulty,
		Competition: difficulty.Competition(),
	}
}

// EstimateAll estimates every keyword in order.
func (e *Estimator) EstimateAll(keywords []string) []models.KeywordMetrics {
	out := make([]models.KeywordMetrics, 0, len(keywords))
	for _, kw := range keywords {
		out = append(out, e.Estimate(kw))
	}
	return out
}

func scale(volume int, factor float64) int {
	return int(math.Floor(float64(volume) * factor))
}
