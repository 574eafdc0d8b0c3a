// Package headlines scrapes news titles from pages with an ordered selector-fallback heuristic,
// infers their dates from nearby text, and dedupes/sorts the result.
package headlines

import (
	"bytes"
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"FinMerge/internal/domain/failure"
	"FinMerge/internal/domain/models"
	"FinMerge/internal/domain/repository"
	applogger "FinMerge/pkg/logger"
	"FinMerge/pkg/util"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Mode decides what happens to headlines whose date cannot be resolved.
type Mode string

const (
	// ModeStrict keeps only headlines with a resolved in-window date.
	ModeStrict Mode = "strict"
	// ModeRelaxed also keeps undated headlines, labelled Recent.
	ModeRelaxed Mode = "relaxed"
)

// ancestorLevels is how far up from a matched link the date search goes.
const ancestorLevels = 3

var fallbackKeywords = []string{"earnings", "revenue", "profit", "stock", "shares", "market", "business", "company"}

// Source is one news site.
type Source struct {
	Name        string
	Pages       []string // URL templates, {ticker} substituted
	Rules       []Rule
	Mode        Mode
	MaxArticles int
	MaxPerRule  int
	Fallback    bool
}

type Options struct {
	MinLength         int
	ExcludePrefixes   []string
	MinYear           int
	MaxYear           int
	FallbackThreshold int
}

type Extractor struct {
	docs  repository.DocumentSource
	opts  Options
	dates *DateParser
	log   *applogger.Logger
}

// NewExtractor builds an extractor; now is read whenever a relative date is resolved.
func NewExtractor(docs repository.DocumentSource, opts Options, now func() time.Time, l *applogger.Logger) *Extractor {
	return &Extractor{docs: docs, opts: opts, dates: NewDateParser(now), log: l}
}

// Scrape collects headlines for ticker from every page of src. Later pages are only fetched
// while fewer than MaxArticles/2 headlines were found. A failure on the first page fails the
// ticker; a failure on a later page keeps what was already found.
func (e *Extractor) Scrape(ctx context.Context, src Source, ticker string) ([]models.Headline, error) {
	var (
		out   []models.Headline
		first *goquery.Document
	)

	for i, tmpl := range src.Pages {
		if i > 0 && len(out) >= src.MaxArticles/2 {
			break
		}
		url := util.ExpandTicker(tmpl, ticker)

		doc, err := e.load(ctx, url)
		if err != nil {
			if i == 0 {
				return nil, err
			}
			e.log.Warn("news page failed",
				applogger.String("source", src.Name),
				applogger.String("ticker", ticker),
				applogger.String("url", url),
				applogger.Error(err),
			)
			break
		}
		if first == nil {
			first = doc
		}

		found := e.ExtractDocument(doc, src, ticker)
		e.log.Debug("news page parsed",
			applogger.String("source", src.Name),
			applogger.String("url", url),
			applogger.Int("headlines", len(found)),
		)
		out = append(out, found...)
	}

	if src.Fallback && first != nil && len(out) < e.opts.FallbackThreshold {
		out = append(out, e.FallbackLines(first, src, ticker, len(out))...)
	}
	return out, nil
}

func (e *Extractor) load(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := e.docs.Fetch(ctx, url)
	if err != nil {
		return nil, failure.Wrap("fetch "+url, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, failure.Parse("parse "+url, err)
	}
	return doc, nil
}

// ExtractDocument runs the primary pass over one page: the first rule with matches wins,
// at most MaxPerRule of its matches are considered.
func (e *Extractor) ExtractDocument(doc *goquery.Document, src Source, ticker string) []models.Headline {
	_, sel := FirstMatch(doc, src.Rules)
	if sel == nil {
		return nil
	}

	limit := src.MaxPerRule
	if limit <= 0 {
		limit = src.MaxArticles
	}

	var out []models.Headline
	sel.EachWithBreak(func(i int, link *goquery.Selection) bool {
		if i >= limit {
			return false
		}
		text := util.CollapseSpace(link.Text())
		if !e.acceptText(text) {
			return true
		}

		date, dated := time.Time{}, false
		if hint := nearbyDateText(link); hint != "" {
			date, dated = e.dates.Parse(hint)
		}

		h := models.Headline{
			Ticker:  ticker,
			Text:    text,
			Source:  src.Name,
			Quality: models.QualityPrimary,
		}
		switch {
		case dated && e.inWindow(date):
			h.Date = models.Dated(date)
		case dated:
			return true
		case src.Mode == ModeRelaxed:
			h.Sentinel = models.SentinelRecent
		default:
			return true
		}
		out = append(out, h)
		return true
	})
	return out
}

// FallbackLines scans the page text for keyword lines when the primary pass came up short.
// They are undated, low quality, and added until the total reaches MaxArticles.
func (e *Extractor) FallbackLines(doc *goquery.Document, src Source, ticker string, have int) []models.Headline {
	body := doc.Selection.Clone()
	body.Find("script, style, noscript").Remove()

	sentinel := models.SentinelUnknown
	if src.Mode == ModeRelaxed {
		sentinel = models.SentinelRecent
	}

	var out []models.Headline
	for _, line := range strings.Split(body.Text(), "\n") {
		if have+len(out) >= src.MaxArticles {
			break
		}
		line = strings.TrimSpace(line)
		n := utf8.RuneCountInString(line)
		if n <= 20 || n >= 200 || !containsKeyword(line) {
			continue
		}
		out = append(out, models.Headline{
			Ticker:   ticker,
			Text:     line,
			Source:   src.Name,
			Quality:  models.QualityLow,
			Sentinel: sentinel,
		})
	}
	return out
}

func (e *Extractor) acceptText(text string) bool {
	if utf8.RuneCountInString(text) <= e.opts.MinLength {
		return false
	}
	for _, p := range e.opts.ExcludePrefixes {
		if strings.HasPrefix(text, p) {
			return false
		}
	}
	return true
}

func (e *Extractor) inWindow(t time.Time) bool {
	y := t.Year()
	return y >= e.opts.MinYear && y <= e.opts.MaxYear
}

func containsKeyword(line string) bool {
	lower := strings.ToLower(line)
	for _, k := range fallbackKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// nearbyDateText walks up from the link's parent and returns the first text node with a
// date hint, ignoring the link's own text. The nearest ancestor with a hint wins.
func nearbyDateText(link *goquery.Selection) string {
	self := link.Get(0)
	anc := self.Parent
	for level := 0; level < ancestorLevels && anc != nil; level++ {
		if s, ok := firstHintText(anc, self); ok {
			return s
		}
		anc = anc.Parent
	}
	return ""
}

func firstHintText(n, skip *html.Node) (string, bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c == skip {
			continue
		}
		switch c.Type {
		case html.TextNode:
			if t := strings.TrimSpace(c.Data); t != "" && HasDateHint(t) {
				return t, true
			}
		case html.ElementNode:
			if c.DataAtom == atom.Script || c.DataAtom == atom.Style {
				continue
			}
			if s, ok := firstHintText(c, skip); ok {
				return s, true
			}
		}
	}
	return "", false
}
