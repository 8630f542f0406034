// report/report.go
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"seo-toolkit/models"
)

func Keywords(w io.Writer, metrics []models.KeywordMetrics) {
	fmt.Fprintf(w, "%-45s %-10s %-12s %-12s\n", "Keyword", "Volume", "Difficulty", "Competition")
	fmt.Fprintln(w, strings.Repeat("-", 82))
	for _, m := range metrics {
		fmt.Fprintf(w, "%-45s %-10d %-12s %-12s\n", m.Keyword, m.Volume, m.Difficulty, m.Competition)
	}
}

func Suggestions(w io.Writer, s models.KeywordSuggestions) {
	groups := []struct {
		title string
		items []string
	}{
		{"Long-tail", s.LongTail},
		{"Questions", s.Questions},
		{"Buying intent", s.BuyingIntent},
	}
	for _, g := range groups {
		fmt.Fprintf(w, "\n%s\n%s\n", g.title, strings.Repeat("=", len(g.title)))
		for _, item := range g.items {
			fmt.Fprintf(w, "• %s\n", item)
		}
	}
}

func Performance(w io.Writer, r *models.PerformanceReport) {
	fmt.Fprintln(w, "⚡ Performance")
	fmt.Fprintln(w, "=============")
	fmt.Fprintf(w, "%-20s %d (%s)\n", "Score", r.Score, r.Rating)
	fmt.Fprintf(w, "%-20s %ss\n", "Page Load", r.Metrics.PageLoadTime)
	fmt.Fprintf(w, "%-20s %ss\n", "Server Response", r.Metrics.ConnectTime)
	fmt.Fprintf(w, "%-20s %ss\n", "DOM Render", r.Metrics.RenderTime)
	fmt.Fprintf(w, "%-20s %ss\n", "DOM Ready", r.Metrics.DOMReady)
	fmt.Fprintln(w, "\n💡 Recommendations")
	for _, rec := range r.Recommendations {
		fmt.Fprintf(w, "• %s\n", rec)
	}
}

func Mobile(w io.Writer, r models.ResponsivenessReport) {
	verdict := "not mobile friendly"
	if r.IsMobileFriendly {
		verdict = "mobile friendly"
	}
	fmt.Fprintln(w, "📱 Mobile Responsiveness")
	fmt.Fprintln(w, "=======================")
	fmt.Fprintf(w, "%-20s %d (%s)\n", "Score", r.Score, verdict)
	for _, p := range r.Passes {
		fmt.Fprintf(w, "✓ %s\n", p)
	}
	for _, i := range r.Issues {
		fmt.Fprintf(w, "✗ %s\n", i)
	}
}

func OnPage(w io.Writer, r models.OnPageReport) {
	fmt.Fprintln(w, "📝 On-page")
	fmt.Fprintln(w, "==========")
	fmt.Fprintf(w, "%-20s %d\n", "Title", r.TitleScore)
	fmt.Fprintf(w, "%-20s %d\n", "Meta Description", r.MetaScore)
	fmt.Fprintf(w, "%-20s %d\n", "Content", r.ContentScore)
	fmt.Fprintf(w, "%-20s %d\n", "Overall", r.OverallScore)
	for _, s := range r.Suggestions {
		fmt.Fprintf(w, "• %s\n", s)
	}
}

func Audit(w io.Writer, a *models.Audit) {
	fmt.Fprintf(w, "\n🔎 %s (status %d, depth %d)\n\n", a.URL, a.StatusCode, a.Depth)
	if a.Performance != nil {
		Performance(w, a.Performance)
	} else {
		fmt.Fprintf(w, "⚡ Performance: %s\n", a.PerformanceError)
	}
	fmt.Fprintln(w)
	Mobile(w, a.Mobile)
	fmt.Fprintln(w)
	OnPage(w, a.OnPage)
}

// Summary prints the per-page score table for a multi-page run.
func Summary(w io.Writer, audits []*models.Audit, stats *models.AuditStats) {
	fmt.Fprintln(w, "\n📈 Audit Summary")
	fmt.Fprintln(w, "================")
	fmt.Fprintf(w, "%-50s %-12s %-8s %-8s\n", "URL", "Performance", "Mobile", "On-page")
	fmt.Fprintln(w, strings.Repeat("-", 81))
	for _, a := range audits {
		perf := "N/A"
		if a.Performance != nil {
			perf = fmt.Sprintf("%d", a.Performance.Score)
		}
		fmt.Fprintf(w, "%-50s %-12s %-8d %-8d\n", truncate(a.URL, 50), perf, a.Mobile.Score, a.OnPage.OverallScore)
	}

	fmt.Fprintf(w, "\nPages audited: %d\n", stats.PagesAudited)
	fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	fmt.Fprintf(w, "Duration: %s\n", stats.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Average performance score: %.1f\n", stats.AvgScore)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
