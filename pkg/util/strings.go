package util

import "strings"

// CollapseSpace trims s and folds internal whitespace runs into single spaces.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ExpandTicker substitutes {ticker} in a URL template.
func ExpandTicker(tmpl, ticker string) string {
	return strings.ReplaceAll(tmpl, "{ticker}", ticker)
}
