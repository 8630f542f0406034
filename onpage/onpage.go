package onpage

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"seo-toolkit/models"
)

const (
	fullScore    = 100
	partialScore = 50
)

// Score grades the title, meta description and body content by length.
func Score(in models.OnPageInput) models.OnPageReport {
	report := models.OnPageReport{Suggestions: []string{}}

	report.TitleScore = grade(&report, in.Title, 30, 60,
		"Title should be between 30-60 characters", "Add a title tag")
	report.MetaScore = grade(&report, in.MetaDescription, 120, 160,
		"Meta description should be between 120-160 characters", "Add a meta description")
	report.ContentScore = grade(&report, in.Content, 300, math.MaxInt,
		"Content should be at least 300 words", "Add page content")

	sum := report.TitleScore + report.MetaScore + report.ContentScore
	report.OverallScore = int(math.Round(float64(sum) / 3))

	return report
}

func grade(report *models.OnPageReport, text string, lo, hi int, tooShortOrLong, missing string) int {
	n := utf8.RuneCountInString(text)
	switch {
	case n >= lo && n <= hi:
		return fullScore
	case n > 0:
		report.Suggestions = append(report.Suggestions, tooShortOrLong)
		return partialScore
	default:
		report.Suggestions = append(report.Suggestions, missing)
		return 0
	}
}

// FromDocument pulls the scored fields out of a parsed page.
func FromDocument(doc *goquery.Document) models.OnPageInput {
	desc, _ := doc.Find(`meta[name="description"]`).First().Attr("content")

	return models.OnPageInput{
		Title:           strings.TrimSpace(doc.Find("title").First().Text()),
		MetaDescription: strings.TrimSpace(desc),
		Content:         strings.Join(strings.Fields(doc.Find("body").Text()), " "),
	}
}
