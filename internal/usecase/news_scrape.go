package usecase

import (
	"context"
	"sort"
	"time"

	"FinMerge/internal/domain/failure"
	"FinMerge/internal/domain/models"
	"FinMerge/internal/domain/repository"
	"FinMerge/internal/services/headlines"
	applogger "FinMerge/pkg/logger"
	"FinMerge/pkg/util"
)

const stageSources = "sources"

// Pacer is told when an item is finished so it can take a longer break every N items.
type Pacer interface {
	ItemDone(ctx context.Context) error
}

type NewsScrapeOptions struct {
	Output         string
	IncludeQuality bool
	Undated        headlines.Undated
}

// NewsScrape collects headlines for every ticker from every configured source,
// deduplicates and orders them, and writes one headline file.
type NewsScrape struct {
	tickers   repository.TickerSource
	extractor *headlines.Extractor
	sources   []headlines.Source
	store     repository.HeadlineStore
	opts      NewsScrapeOptions
	pacer     Pacer
	sinks     Sinks
	metrics   repository.Metrics
	log       *applogger.Logger
	runID     func() string
	now       func() time.Time
}

func NewNewsScrape(
	tickers repository.TickerSource,
	extractor *headlines.Extractor,
	sources []headlines.Source,
	store repository.HeadlineStore,
	opts NewsScrapeOptions,
	pacer Pacer,
	sinks Sinks,
	metrics repository.Metrics,
	l *applogger.Logger,
	runID func() string,
) *NewsScrape {
	return &NewsScrape{
		tickers:   tickers,
		extractor: extractor,
		sources:   sources,
		store:     store,
		opts:      opts,
		pacer:     pacer,
		sinks:     sinks,
		metrics:   metrics,
		log:       l,
		runID:     runID,
		now:       time.Now,
	}
}

func (uc *NewsScrape) Run(ctx context.Context) (*Summary, error) {
	runID := uc.runID()
	sum := newSummary("news_scrape", runID, uc.metrics, uc.now())
	defer func() { sum.Finished = uc.now() }()

	tickers, err := uc.tickers.Tickers(ctx)
	if err != nil {
		return sum, err
	}
	uc.log.Info("scraping news",
		applogger.Int("tickers", len(tickers)),
		applogger.Int("sources", len(uc.sources)),
	)

	var all []models.Headline
	for i, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			uc.log.Warn("scrape interrupted", applogger.Int("done", i), applogger.Int("total", len(tickers)))
			break
		}

		found := uc.scrapeTicker(ctx, sum, ticker)
		if len(found) == 0 {
			sum.Record(stageTickers, ticker, failure.Empty("scrape "+ticker))
		} else {
			sum.OK(stageTickers, ticker, len(found))
		}
		uc.log.Info("ticker scraped",
			applogger.String("ticker", ticker),
			applogger.Int("headlines", len(found)),
			applogger.Int("progress", i+1),
			applogger.Int("total", len(tickers)),
		)
		all = append(all, found...)

		if uc.pacer != nil && i+1 < len(tickers) {
			if err := uc.pacer.ItemDone(ctx); err != nil {
				break
			}
		}
	}

	if len(all) == 0 {
		uc.log.Warn("no headlines collected, nothing written")
		return sum, ctx.Err()
	}

	out := headlines.Arrange(all, uc.opts.Undated)
	if err := uc.store.SaveHeadlines(uc.opts.Output, out, uc.opts.IncludeQuality); err != nil {
		return sum, err
	}
	uc.metrics.RecordRows(sum.Pipeline, len(out))
	uc.logStats(out)

	st, pub := uc.sinks.storage(), uc.sinks.publisher()
	writeSink(ctx, "clickhouse", st, uc.metrics, uc.log, uc.opts.Output, func(ctx context.Context) error {
		return st.StoreHeadlines(ctx, runID, out)
	})
	writeSink(ctx, "kafka", pub, uc.metrics, uc.log, uc.opts.Output, func(ctx context.Context) error {
		return pub.PublishHeadlines(ctx, runID, out)
	})
	return sum, ctx.Err()
}

func (uc *NewsScrape) scrapeTicker(ctx context.Context, sum *Summary, ticker string) []models.Headline {
	var found []models.Headline
	for _, src := range uc.sources {
		if ctx.Err() != nil {
			return found
		}
		start := time.Now()
		hs, err := uc.extractor.Scrape(ctx, src, ticker)
		uc.metrics.RecordLatency("scrape_"+src.Name, time.Since(start).Seconds())
		item := ticker + "/" + src.Name
		if err != nil {
			sum.Record(stageSources, item, err)
			uc.log.Warn("source failed",
				applogger.String("ticker", ticker),
				applogger.String("source", src.Name),
				applogger.Error(err),
			)
			continue
		}
		sum.OK(stageSources, item, len(hs))
		uc.log.Debug("source scraped",
			applogger.String("ticker", ticker),
			applogger.String("source", src.Name),
			applogger.Int("headlines", len(hs)),
		)
		found = append(found, hs...)
	}
	return found
}

// HeadlineStats describes a written headline file.
type HeadlineStats struct {
	Total    int
	Dated    int
	Undated  int
	First    time.Time
	Last     time.Time
	ByTicker []Count
	BySource []Count
}

type Count struct {
	Key string
	N   int
}

// StatsOf computes HeadlineStats; counts are sorted by descending N, then key.
func StatsOf(hs []models.Headline) HeadlineStats {
	st := HeadlineStats{Total: len(hs)}
	tickers := make(map[string]int)
	sources := make(map[string]int)
	for _, h := range hs {
		tickers[h.Ticker]++
		sources[h.Source]++
		if !h.Date.Valid {
			st.Undated++
			continue
		}
		st.Dated++
		d := h.Date.Time
		if st.First.IsZero() || d.Before(st.First) {
			st.First = d
		}
		if d.After(st.Last) {
			st.Last = d
		}
	}
	st.ByTicker = sortedCounts(tickers)
	st.BySource = sortedCounts(sources)
	return st
}

func sortedCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for k, n := range m {
		out = append(out, Count{Key: k, N: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].N != out[j].N {
			return out[i].N > out[j].N
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func (uc *NewsScrape) logStats(hs []models.Headline) {
	st := StatsOf(hs)
	fields := []applogger.Field{
		applogger.String("file", uc.opts.Output),
		applogger.Int("total", st.Total),
		applogger.Int("dated", st.Dated),
		applogger.Int("undated", st.Undated),
	}
	if st.Dated > 0 {
		fields = append(fields,
			applogger.String("from", util.FormatDay(st.First)),
			applogger.String("to", util.FormatDay(st.Last)),
		)
	}
	uc.log.Info("headlines saved", fields...)

	top := st.ByTicker
	if len(top) > 10 {
		top = top[:10]
	}
	for _, c := range top {
		uc.log.Info("headlines by ticker", applogger.String("ticker", c.Key), applogger.Int("count", c.N))
	}
	for _, c := range st.BySource {
		uc.log.Info("headlines by source", applogger.String("source", c.Key), applogger.Int("count", c.N))
	}
}
