package headlines

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Rule is one extraction strategy. Rules are tried in order and the first
// one that selects anything wins.
type Rule interface {
	Name() string
	Select(doc *goquery.Document) *goquery.Selection
}

// CSSRule selects headline links with a CSS selector.
type CSSRule struct {
	selector string
	matcher  cascadia.Selector
}

// NewCSSRule compiles selector up front so a bad configuration fails at startup.
func NewCSSRule(selector string) (*CSSRule, error) {
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("compile selector %q: %w", selector, err)
	}
	return &CSSRule{selector: selector, matcher: m}, nil
}

func (r *CSSRule) Name() string { return r.selector }

func (r *CSSRule) Select(doc *goquery.Document) *goquery.Selection {
	return doc.FindMatcher(r.matcher)
}

// CSSRules compiles an ordered selector list.
func CSSRules(selectors []string) ([]Rule, error) {
	rules := make([]Rule, 0, len(selectors))
	for _, s := range selectors {
		r, err := NewCSSRule(s)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// FirstMatch returns the index and selection of the first rule with at least one match,
// or -1 and nil. Rules after the winner are not evaluated.
func FirstMatch(doc *goquery.Document, rules []Rule) (int, *goquery.Selection) {
	for i, r := range rules {
		if sel := r.Select(doc); sel.Length() > 0 {
			return i, sel
		}
	}
	return -1, nil
}
