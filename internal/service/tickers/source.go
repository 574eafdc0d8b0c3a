package tickers

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"FinMerge/internal/domain/failure"
	"FinMerge/internal/domain/repository"
	"FinMerge/pkg/logger"
)

// Static returns a fixed symbol list.
type Static struct {
	symbols []string
}

func NewStatic(symbols []string) *Static {
	return &Static{symbols: symbols}
}

func (s *Static) Tickers(ctx context.Context) ([]string, error) {
	return append([]string(nil), s.symbols...), nil
}

// MarketCapper looks up the current market capitalization of a symbol.
type MarketCapper interface {
	MarketCap(ctx context.Context, ticker string) (float64, error)
}

// Ranked reads index constituents from a Wikipedia list page and keeps the topN
// symbols by market capitalization.
type Ranked struct {
	docs repository.DocumentSource
	caps MarketCapper
	url  string
	topN int
	log  *logger.Logger
}

func NewRanked(docs repository.DocumentSource, caps MarketCapper, url string, topN int, l *logger.Logger) *Ranked {
	return &Ranked{docs: docs, caps: caps, url: url, topN: topN, log: l}
}

type capEntry struct {
	symbol string
	cap    float64
}

// Tickers returns the topN constituents in descending market-cap order.
// Symbols whose lookup fails are logged and skipped.
func (r *Ranked) Tickers(ctx context.Context) ([]string, error) {
	symbols, err := r.Constituents(ctx)
	if err != nil {
		return nil, err
	}
	r.log.Info("constituents loaded", logger.Int("count", len(symbols)))

	caps := make([]capEntry, 0, len(symbols))
	for _, s := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mc, err := r.caps.MarketCap(ctx, s)
		if err != nil {
			r.log.Warn("market cap lookup failed",
				logger.String("ticker", s),
				logger.String("kind", string(failure.Classify(err))),
				logger.Error(err),
			)
			continue
		}
		caps = append(caps, capEntry{symbol: s, cap: mc})
	}
	if len(caps) == 0 {
		return nil, failure.Empty("rank constituents")
	}

	sort.SliceStable(caps, func(i, j int) bool { return caps[i].cap > caps[j].cap })
	if len(caps) > r.topN {
		caps = caps[:r.topN]
	}
	out := make([]string, len(caps))
	for i, c := range caps {
		out[i] = c.symbol
	}
	return out, nil
}

// Constituents scrapes the symbol column of the #constituents table. Class-share dots are
// written with a dash the way quote APIs expect them (BRK.B becomes BRK-B).
func (r *Ranked) Constituents(ctx context.Context) ([]string, error) {
	body, err := r.docs.Fetch(ctx, r.url)
	if err != nil {
		return nil, failure.Wrap("fetch constituents", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, failure.Parse("parse constituents", err)
	}

	table := doc.Find("table#constituents").First()
	if table.Length() == 0 {
		return nil, failure.Parse("parse constituents", fmt.Errorf("table #constituents not found"))
	}

	seen := make(map[string]bool)
	var symbols []string
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cell := row.Find("td").First()
		if cell.Length() == 0 {
			return
		}
		s := strings.ReplaceAll(strings.TrimSpace(cell.Text()), ".", "-")
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		symbols = append(symbols, s)
	})
	if len(symbols) == 0 {
		return nil, failure.Empty("parse constituents")
	}
	return symbols, nil
}
