// Package collector answers the environment questions the responsiveness scorer
// asks: is there a viewport meta tag, do any stylesheets carry media queries, does
// any element lay out with flexbox, and how wide is the window.
package collector

import (
	"errors"

	"seo-toolkit/models"
)

// ErrCrossOriginSheet is reported by a stylesheet whose rules cannot be read
// because it was served from another origin.
var ErrCrossOriginSheet = errors.New("cannot access rules of cross-origin stylesheet")

type ViewportQuery interface {
	HasViewportMeta() bool
}

// Stylesheet exposes the parsed rules of one sheet. Rules fails per sheet.
type Stylesheet interface {
	Href() string
	Rules() ([]Rule, error)
}

type StylesheetEnumerator interface {
	Stylesheets() []Stylesheet
}

// Element is an opaque handle to a node of the inspected document.
type Element any

type ComputedStyleAccessor interface {
	Elements() []Element
	Display(el Element) string
}

type WindowGeometry interface {
	InnerWidth() int
}

// Environment is everything the fact collectors read.
type Environment interface {
	ViewportQuery
	StylesheetEnumerator
	ComputedStyleAccessor
	WindowGeometry
}

// HasMediaQueries reports whether any readable stylesheet has a top-level @media
// rule. Sheets whose rules cannot be read are skipped.
func HasMediaQueries(e StylesheetEnumerator) bool {
	for _, sheet := range e.Stylesheets() {
		rules, err := sheet.Rules()
		if err != nil {
			continue
		}
		for _, rule := range rules {
			if rule.Type == MediaRule {
				return true
			}
		}
	}
	return false
}

// HasFlexboxUsage reports whether any element resolves to a flex or inline-flex display.
func HasFlexboxUsage(a ComputedStyleAccessor) bool {
	for _, el := range a.Elements() {
		switch a.Display(el) {
		case "flex", "inline-flex":
			return true
		}
	}
	return false
}

func Facts(env Environment) models.ResponsivenessFacts {
	return models.ResponsivenessFacts{
		HasViewportTag:  env.HasViewportMeta(),
		HasMediaQueries: HasMediaQueries(env),
		HasFlexboxUsage: HasFlexboxUsage(env),
		ViewportWidth:   env.InnerWidth(),
	}
}
