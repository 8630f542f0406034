package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"seo-toolkit/models"
)

func TestAuditWithoutTiming(t *testing.T) {
	var buf bytes.Buffer
	Audit(&buf, &models.Audit{
		URL:              "https://example.com/",
		StatusCode:       200,
		PerformanceError: "Performance API not supported",
		Mobile:           models.ResponsivenessReport{Issues: []string{"Missing viewport meta tag"}},
		OnPage:           models.OnPageReport{Suggestions: []string{"Add a title tag"}},
	})

	out := buf.String()
	assert.Contains(t, out, "Performance: Performance API not supported")
	assert.Contains(t, out, "✗ Missing viewport meta tag")
	assert.Contains(t, out, "• Add a title tag")
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	long := "https://example.com/" + strings.Repeat("a", 60)
	Summary(&buf, []*models.Audit{
		{URL: "https://example.com/", Performance: &models.PerformanceReport{Score: 85}, Mobile: models.ResponsivenessReport{Score: 60}},
		{URL: long},
	}, &models.AuditStats{PagesAudited: 2, Duration: 1500 * time.Millisecond, AvgScore: 85})

	out := buf.String()
	assert.Contains(t, out, "85")
	assert.Contains(t, out, "N/A")
	assert.NotContains(t, out, long)
	assert.Contains(t, out, "Duration: 1.5s")
	assert.Contains(t, out, "Average performance score: 85.0")
}

func TestKeywords(t *testing.T) {
	var buf bytes.Buffer
	Keywords(&buf, []models.KeywordMetrics{{Keyword: "seo tools", Volume: 3466, Difficulty: models.DifficultyHigh, Competition: models.CompetitionHigh}})
	assert.Contains(t, buf.String(), "seo tools")
	assert.Contains(t, buf.String(), "3466")
}
