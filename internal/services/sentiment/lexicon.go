package sentiment

import (
	"context"
	"strings"
	"unicode"
)

var (
	positiveWords = []string{
		"beat", "beats", "gain", "gains", "growth", "surge", "surges", "soar", "soars", "rally",
		"rallies", "record", "upgrade", "upgraded", "profit", "profits", "strong", "climb", "climbs",
		"rise", "rises", "jump", "jumps", "outperform", "bullish", "raise", "raises", "boost",
	}
	negativeWords = []string{
		"miss", "misses", "loss", "losses", "decline", "declines", "drop", "drops", "fall", "falls",
		"plunge", "plunges", "slump", "downgrade", "downgraded", "weak", "cut", "cuts", "lawsuit",
		"probe", "recall", "bearish", "layoffs", "slide", "slides", "sink", "sinks", "warning",
	}
)

// Lexicon is an offline model: the sign of positive minus negative word hits, in {-1, 0, 1}.
type Lexicon struct {
	pos map[string]struct{}
	neg map[string]struct{}
}

func NewLexicon() *Lexicon {
	l := &Lexicon{pos: map[string]struct{}{}, neg: map[string]struct{}{}}
	for _, w := range positiveWords {
		l.pos[w] = struct{}{}
	}
	for _, w := range negativeWords {
		l.neg[w] = struct{}{}
	}
	return l
}

func (l *Lexicon) Classify(ctx context.Context, texts []string) ([]float64, error) {
	out := make([]float64, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = l.score(t)
	}
	return out, nil
}

func (l *Lexicon) score(text string) float64 {
	hits := 0
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	for _, w := range words {
		if _, ok := l.pos[w]; ok {
			hits++
		}
		if _, ok := l.neg[w]; ok {
			hits--
		}
	}
	switch {
	case hits > 0:
		return 1
	case hits < 0:
		return -1
	}
	return 0
}
