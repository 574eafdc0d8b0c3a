package headlines

import (
	"fmt"
	"sort"

	"FinMerge/internal/domain/models"
)

// Undated places headlines without a resolved date in the final ordering.
type Undated string

const (
	UndatedLast  Undated = "last"
	UndatedFirst Undated = "first"
	UndatedDrop  Undated = "drop"
	// UndatedDropIfAnyDated drops undated headlines unless nothing is dated,
	// in which case everything is kept in first-seen order.
	UndatedDropIfAnyDated Undated = "drop_if_any_dated"
)

func ParseUndated(s string) (Undated, error) {
	switch u := Undated(s); u {
	case UndatedLast, UndatedFirst, UndatedDrop, UndatedDropIfAnyDated:
		return u, nil
	}
	return "", fmt.Errorf("unknown undated placement %q", s)
}

type key struct{ ticker, text string }

// Dedupe collapses headlines sharing (Ticker, Text), keeping the first occurrence.
func Dedupe(hs []models.Headline) []models.Headline {
	seen := make(map[key]struct{}, len(hs))
	out := make([]models.Headline, 0, len(hs))
	for _, h := range hs {
		k := key{h.Ticker, h.Text}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, h)
	}
	return out
}

// Arrange dedupes hs, sorts dated headlines newest first (ties keep input order)
// and places undated ones per u.
func Arrange(hs []models.Headline, u Undated) []models.Headline {
	uniq := Dedupe(hs)

	var dated, undated []models.Headline
	for _, h := range uniq {
		if h.Date.Valid {
			dated = append(dated, h)
		} else {
			undated = append(undated, h)
		}
	}
	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].Date.Time.After(dated[j].Date.Time)
	})

	out := make([]models.Headline, 0, len(uniq))
	switch u {
	case UndatedFirst:
		out = append(append(out, undated...), dated...)
	case UndatedDrop:
		out = append(out, dated...)
	case UndatedDropIfAnyDated:
		if len(dated) == 0 {
			return uniq
		}
		out = append(out, dated...)
	default:
		out = append(append(out, dated...), undated...)
	}
	return out
}
