package collector

import (
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

type RuleType int

const (
	StyleRule RuleType = iota + 1
	MediaRule
	ImportRule
	FontFaceRule
	KeyframesRule
	OtherAtRule
)

type Declaration struct {
	Property  string
	Value     string
	Important bool
}

type Rule struct {
	Type         RuleType
	Selector     string
	AtName       string
	Prelude      string
	Declarations []Declaration
	Rules        []Rule
}

// Value returns the last declared value of property.
func (r Rule) Value(property string) (string, bool) {
	for i := len(r.Declarations) - 1; i >= 0; i-- {
		if r.Declarations[i].Property == property {
			return r.Declarations[i].Value, true
		}
	}
	return "", false
}

// ParseStylesheet reads the rules of a style sheet the way a browser would:
// malformed rules are dropped, blocks still open at the end of the sheet are
// closed, and top-level <!-- --> markers are ignored.
func ParseStylesheet(src string) []Rule {
	p := css.NewParser(parse.NewInputString(src), false)

	var (
		rules     []Rule
		open      []*Rule
		selectors []string
		failures  int
	)

	// Rules are only appended to the innermost open rule, so pointers held in
	// open stay valid until they are popped.
	add := func(r Rule) *Rule {
		if len(open) == 0 {
			rules = append(rules, r)
			return &rules[len(rules)-1]
		}
		parent := open[len(open)-1]
		parent.Rules = append(parent.Rules, r)
		return &parent.Rules[len(parent.Rules)-1]
	}

	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			failures++
			if !recoverable(p.Err(), failures, src) {
				return rules
			}
		case css.AtRuleGrammar:
			name := atName(data)
			typ := OtherAtRule
			if name == "import" {
				typ = ImportRule
			}
			add(Rule{Type: typ, AtName: name, Prelude: tokenText(p.Values())})
		case css.BeginAtRuleGrammar:
			name := atName(data)
			open = append(open, add(Rule{Type: atRuleType(name), AtName: name, Prelude: tokenText(p.Values())}))
		case css.QualifiedRuleGrammar:
			selectors = append(selectors, tokenText(p.Values()))
		case css.BeginRulesetGrammar:
			selectors = append(selectors, tokenText(p.Values()))
			open = append(open, add(Rule{Type: StyleRule, Selector: strings.Join(selectors, ", ")}))
			selectors = selectors[:0]
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			if len(open) == 0 {
				continue
			}
			if d, ok := declaration(data, p.Values()); ok {
				cur := open[len(open)-1]
				cur.Declarations = append(cur.Declarations, d)
			}
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			if len(open) > 0 {
				open = open[:len(open)-1]
			}
		}
	}
}

// ParseDeclarations parses a declaration block body, such as a style attribute.
// Values are lowercased and a trailing !important is split off.
func ParseDeclarations(body string) []Declaration {
	p := css.NewParser(parse.NewInputString(body), true)

	var (
		decls    []Declaration
		failures int
	)
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			failures++
			if !recoverable(p.Err(), failures, body) {
				return decls
			}
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			if d, ok := declaration(data, p.Values()); ok {
				decls = append(decls, d)
			}
		}
	}
}

// recoverable reports whether the parser skipped a malformed construct and can
// go on. io.EOF and read errors end parsing. Every skip consumes input, so more
// failures than bytes means the parser is stuck.
func recoverable(err error, failures int, src string) bool {
	_, ok := err.(*parse.Error)
	return ok && failures <= len(src)
}

func declaration(property []byte, values []css.Token) (Declaration, bool) {
	prop := strings.ToLower(strings.TrimSpace(string(property)))
	value := tokenText(values)
	if prop == "" || value == "" {
		return Declaration{}, false
	}

	d := Declaration{Property: prop}
	lower := strings.ToLower(value)
	if i := strings.LastIndexByte(lower, '!'); i >= 0 && strings.TrimSpace(lower[i+1:]) == "important" {
		d.Important = true
		value = strings.TrimSpace(value[:i])
		lower = strings.TrimSpace(lower[:i])
	}
	if value == "" {
		return Declaration{}, false
	}

	// Custom property values are case sensitive.
	if strings.HasPrefix(prop, "--") {
		d.Value = value
	} else {
		d.Value = lower
	}
	return d, true
}

func tokenText(tokens []css.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		switch t.TokenType {
		case css.CommentToken, css.CDOToken, css.CDCToken:
		case css.WhitespaceToken:
			b.WriteByte(' ')
		default:
			b.Write(t.Data)
		}
	}
	return strings.TrimSpace(b.String())
}

func atName(data []byte) string {
	return strings.ToLower(strings.TrimPrefix(string(data), "@"))
}

func atRuleType(name string) RuleType {
	switch {
	case name == "media":
		return MediaRule
	case name == "font-face":
		return FontFaceRule
	case strings.HasSuffix(name, "keyframes"):
		return KeyframesRule
	default:
		return OtherAtRule
	}
}
