package mobile

import (
	"seo-toolkit/collector"
	"seo-toolkit/models"
)

const (
	MobileBreakpoint = 768
	FriendlyScore    = 60
)

const (
	PassViewport  = "Viewport meta tag is present"
	IssueViewport = "Missing viewport meta tag"
	PassMedia     = "Responsive CSS detected"
	IssueMedia    = "No media queries detected"
	PassWidth     = "Page is viewable on mobile devices"
	PassFlexbox   = "Modern layout techniques detected"
)

// Score adds up the independent responsiveness bonuses. The width and flexbox
// checks only ever add a pass. The total is not clamped; all four bonuses sum to
// exactly 100.
func Score(f models.ResponsivenessFacts) models.ResponsivenessReport {
	report := models.ResponsivenessReport{
		Passes: []string{},
		Issues: []string{},
	}

	if f.HasViewportTag {
		report.Score += 30
		report.Passes = append(report.Passes, PassViewport)
	} else {
		report.Issues = append(report.Issues, IssueViewport)
	}

	if f.HasMediaQueries {
		report.Score += 30
		report.Passes = append(report.Passes, PassMedia)
	} else {
		report.Issues = append(report.Issues, IssueMedia)
	}

	if f.ViewportWidth < MobileBreakpoint {
		report.Score += 20
		report.Passes = append(report.Passes, PassWidth)
	}

	if f.HasFlexboxUsage {
		report.Score += 20
		report.Passes = append(report.Passes, PassFlexbox)
	}

	report.IsMobileFriendly = report.Score >= FriendlyScore
	return report
}

// Check collects the facts from env and scores them.
func Check(env collector.Environment) (models.ResponsivenessFacts, models.ResponsivenessReport) {
	facts := collector.Facts(env)
	return facts, Score(facts)
}
