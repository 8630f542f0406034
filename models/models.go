// models/models.go
package models

import (
	"time"
)

type Difficulty string

const (
	DifficultyLow    Difficulty = "low"
	DifficultyMedium Difficulty = "medium"
	DifficultyHigh   Difficulty = "high"
)

type Competition string

const (
	CompetitionLow    Competition = "Low"
	CompetitionMedium Competition = "Medium"
	CompetitionHigh   Competition = "High"
)

// Competition maps a difficulty onto its display label. The two never disagree.
func (d Difficulty) Competition() Competition {
	switch d {
	case DifficultyLow:
		return CompetitionLow
	case DifficultyHigh:
		return CompetitionHigh
	default:
		return CompetitionMedium
	}
}

type KeywordMetrics struct {
	Keyword     string      `json:"keyword,omitempty"`
	Volume      int         `json:"volume"`
	Difficulty  Difficulty  `json:"difficulty"`
	Competition Competition `json:"competition"`
}

type KeywordSuggestions struct {
	LongTail     []string `json:"longTail"`
	Questions    []string `json:"questions"`
	BuyingIntent []string `json:"buyingIntent"`
}

// NavigationTiming mirrors the browser navigation timing timestamps, in milliseconds.
type NavigationTiming struct {
	NavigationStart          int64 `json:"navigationStart"`
	RequestStart             int64 `json:"requestStart"`
	ResponseEnd              int64 `json:"responseEnd"`
	DOMLoading               int64 `json:"domLoading"`
	DOMContentLoadedEventEnd int64 `json:"domContentLoadedEventEnd"`
	DOMComplete              int64 `json:"domComplete"`
	LoadEventEnd             int64 `json:"loadEventEnd"`
}

// TimingSample holds the four derived durations in milliseconds.
type TimingSample struct {
	PageLoadTime int64 `json:"pageLoadTime"`
	ConnectTime  int64 `json:"connectTime"`
	RenderTime   int64 `json:"renderTime"`
	DOMReadyTime int64 `json:"domReadyTime"`
}

type Rating string

const (
	RatingExcellent        Rating = "Excellent"
	RatingGood             Rating = "Good"
	RatingNeedsImprovement Rating = "Needs Improvement"
)

// FormattedTiming is a TimingSample rendered in seconds with two decimals.
type FormattedTiming struct {
	PageLoadTime string `json:"pageLoadTime"`
	ConnectTime  string `json:"connectTime"`
	RenderTime   string `json:"renderTime"`
	DOMReady     string `json:"domReady"`
}

type PerformanceReport struct {
	Score           int             `json:"score"`
	Rating          Rating          `json:"rating"`
	Metrics         FormattedTiming `json:"metrics"`
	Recommendations []string        `json:"recommendations"`
}

type ResponsivenessFacts struct {
	HasViewportTag  bool `json:"hasViewportTag"`
	HasMediaQueries bool `json:"hasMediaQueries"`
	HasFlexboxUsage bool `json:"hasFlexboxUsage"`
	ViewportWidth   int  `json:"viewportWidth"`
}

type ResponsivenessReport struct {
	Score            int      `json:"score"`
	IsMobileFriendly bool     `json:"isMobileFriendly"`
	Passes           []string `json:"passes"`
	Issues           []string `json:"issues"`
}

type OnPageInput struct {
	Title           string `json:"title"`
	MetaDescription string `json:"meta_description"`
	Content         string `json:"content"`
}

type OnPageReport struct {
	TitleScore   int      `json:"title_score"`
	MetaScore    int      `json:"meta_score"`
	ContentScore int      `json:"content_score"`
	OverallScore int      `json:"overall_score"`
	Suggestions  []string `json:"suggestions"`
}

// Audit is the combined result of auditing one fetched page.
type Audit struct {
	ID               string               `json:"id"`
	URL              string               `json:"url"`
	StatusCode       int                  `json:"status_code"`
	Depth            int                  `json:"depth"`
	CreatedAt        time.Time            `json:"created_at"`
	Performance      *PerformanceReport   `json:"performance,omitempty"`
	PerformanceError string               `json:"performance_error,omitempty"`
	Facts            ResponsivenessFacts  `json:"facts"`
	Mobile           ResponsivenessReport `json:"mobile"`
	OnPage           OnPageReport         `json:"onpage"`
}

type AuditStats struct {
	PagesAudited int           `json:"pages_audited"`
	Errors       int           `json:"errors"`
	Duration     time.Duration `json:"duration"`
	AvgScore     float64       `json:"avg_performance_score"`
}

type URLTask struct {
	URL    string
	Depth  int
	Parent string
}
