package collector

import (
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document answers every collector question for a parsed HTML page.
type Document struct {
	doc    *goquery.Document
	sheets []Stylesheet
	width  int

	once    sync.Once
	display map[*html.Node]string
}

func NewDocument(doc *goquery.Document, sheets []Stylesheet, width int) *Document {
	return &Document{
		doc:    doc,
		sheets: sheets,
		width:  width,
	}
}

func (d *Document) HasViewportMeta() bool {
	return d.doc.Find(`meta[name="viewport"]`).Length() > 0
}

func (d *Document) Stylesheets() []Stylesheet {
	return d.sheets
}

func (d *Document) InnerWidth() int {
	return d.width
}

func (d *Document) Elements() []Element {
	nodes := d.doc.Find("*").Nodes
	elements := make([]Element, len(nodes))
	for i, n := range nodes {
		elements[i] = n
	}
	return elements
}

// Display resolves the display value of el: user agent default, then matching
// top-level style rules in source order, then the inline style attribute.
// Specificity and !important are not weighed.
func (d *Document) Display(el Element) string {
	n, ok := el.(*html.Node)
	if !ok || n.Type != html.ElementNode {
		return ""
	}

	d.once.Do(d.cascade)

	if v, ok := d.display[n]; ok {
		return v
	}
	return defaultDisplay(n.Data)
}

func (d *Document) cascade() {
	d.display = make(map[*html.Node]string)

	for _, sheet := range d.sheets {
		rules, err := sheet.Rules()
		if err != nil {
			continue
		}
		for _, rule := range rules {
			if rule.Type != StyleRule {
				continue
			}
			value, ok := rule.Value("display")
			if !ok {
				continue
			}
			for _, n := range d.doc.Find(rule.Selector).Nodes {
				d.display[n] = value
			}
		}
	}

	d.doc.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		style, _ := s.Attr("style")
		rule := Rule{Type: StyleRule, Declarations: ParseDeclarations(style)}
		if value, ok := rule.Value("display"); ok {
			d.display[s.Nodes[0]] = value
		}
	})
}

var blockElements = map[string]string{
	"html": "block", "body": "block", "div": "block", "p": "block", "section": "block",
	"article": "block", "header": "block", "footer": "block", "nav": "block", "main": "block",
	"aside": "block", "form": "block", "ul": "block", "ol": "block", "h1": "block",
	"h2": "block", "h3": "block", "h4": "block", "h5": "block", "h6": "block",
	"blockquote": "block", "pre": "block", "figure": "block", "hr": "block", "address": "block",
	"fieldset": "block", "dl": "block", "dd": "block", "dt": "block", "li": "list-item",
	"table": "table", "tr": "table-row", "td": "table-cell", "th": "table-cell",
	"thead": "table-header-group", "tbody": "table-row-group", "tfoot": "table-footer-group",
	"head": "none", "script": "none", "style": "none", "meta": "none", "link": "none",
	"title": "none", "template": "none", "noscript": "none",
}

func defaultDisplay(tag string) string {
	if v, ok := blockElements[tag]; ok {
		return v
	}
	return "inline"
}

// Sheet source
type InlineSheet struct {
	CSS string
}

func (s *InlineSheet) Href() string { return "" }

func (s *InlineSheet) Rules() ([]Rule, error) {
	return ParseStylesheet(s.CSS), nil
}

// LinkedSheet is a <link rel="stylesheet"> sheet. Err holds the reason its rules
// are unavailable, if any.
type LinkedSheet struct {
	URL string
	CSS string
	Err error
}

func (s *LinkedSheet) Href() string { return s.URL }

func (s *LinkedSheet) Rules() ([]Rule, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return ParseStylesheet(s.CSS), nil
}

// LoadStylesheets collects the sheets of doc in document order. Linked sheets on
// the page's origin are read through load; sheets on other origins are listed
// with ErrCrossOriginSheet and never loaded.
func LoadStylesheets(doc *goquery.Document, base *url.URL, load func(u *url.URL) (string, error)) []Stylesheet {
	var sheets []Stylesheet

	doc.Find("style, link").Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "style" {
			sheets = append(sheets, &InlineSheet{CSS: s.Text()})
			return
		}

		rel, _ := s.Attr("rel")
		if !hasToken(rel, "stylesheet") {
			return
		}
		href, ok := s.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}

		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			sheets = append(sheets, &LinkedSheet{URL: href, Err: err})
			return
		}
		abs := base.ResolveReference(ref)
		sheet := &LinkedSheet{URL: abs.String()}

		if !sameOrigin(base, abs) {
			sheet.Err = ErrCrossOriginSheet
		} else {
			sheet.CSS, sheet.Err = load(abs)
		}
		sheets = append(sheets, sheet)
	})

	return sheets
}

func sameOrigin(a, b *url.URL) bool {
	return strings.EqualFold(a.Scheme, b.Scheme) && strings.EqualFold(a.Host, b.Host)
}

func hasToken(list, token string) bool {
	for _, f := range strings.Fields(list) {
		if strings.EqualFold(f, token) {
			return true
		}
	}
	return false
}
