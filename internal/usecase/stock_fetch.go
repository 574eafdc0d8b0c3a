package usecase

import (
	"context"
	"time"

	"FinMerge/internal/domain/failure"
	"FinMerge/internal/domain/models"
	"FinMerge/internal/domain/repository"
	applogger "FinMerge/pkg/logger"
)

const stageInfo = "info"

// StockFetch downloads daily history for every ticker and writes one raw file each.
type StockFetch struct {
	tickers repository.TickerSource
	prices  repository.PriceSource
	store   repository.PriceStore
	years   int
	metrics repository.Metrics
	log     *applogger.Logger
	runID   func() string
	now     func() time.Time
}

func NewStockFetch(
	tickers repository.TickerSource,
	prices repository.PriceSource,
	store repository.PriceStore,
	years int,
	metrics repository.Metrics,
	l *applogger.Logger,
	runID func() string,
) *StockFetch {
	return &StockFetch{
		tickers: tickers,
		prices:  prices,
		store:   store,
		years:   years,
		metrics: metrics,
		log:     l,
		runID:   runID,
		now:     time.Now,
	}
}

func (uc *StockFetch) Run(ctx context.Context) (*Summary, error) {
	sum := newSummary("stock_fetch", uc.runID(), uc.metrics, uc.now())
	defer func() { sum.Finished = uc.now() }()

	tickers, err := uc.tickers.Tickers(ctx)
	if err != nil {
		return sum, err
	}
	uc.log.Info("fetching price history",
		applogger.Int("tickers", len(tickers)),
		applogger.Int("years", uc.years),
	)

	end := uc.now()
	start := end.AddDate(0, 0, -365*uc.years)

	for i, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			uc.log.Warn("fetch interrupted", applogger.Int("done", i), applogger.Int("total", len(tickers)))
			return sum, err
		}
		n, err := uc.fetchOne(ctx, sum, ticker, start, end)
		if err != nil {
			sum.Record(stageTickers, ticker, err)
			if failure.IsEmpty(err) {
				uc.log.Warn("no price history", applogger.String("ticker", ticker))
			} else {
				uc.log.Error("price fetch failed", applogger.String("ticker", ticker), applogger.Error(err))
			}
			continue
		}
		sum.OK(stageTickers, ticker, n)
		uc.log.Info("prices saved",
			applogger.String("ticker", ticker),
			applogger.Int("rows", n),
			applogger.Int("progress", i+1),
			applogger.Int("total", len(tickers)),
		)
	}
	return sum, nil
}

func (uc *StockFetch) fetchOne(ctx context.Context, sum *Summary, ticker string, start, end time.Time) (int, error) {
	recs, err := uc.prices.History(ctx, ticker, start, end)
	if err != nil {
		return 0, err
	}
	if len(recs) == 0 {
		return 0, failure.Empty("history " + ticker)
	}

	// metadata is best effort and never fails the ticker
	info, err := uc.prices.Info(ctx, ticker)
	if err != nil {
		sum.Record(stageInfo, ticker, err)
		uc.log.Warn("company info unavailable",
			applogger.String("ticker", ticker),
			applogger.Error(err),
		)
		info = models.FallbackInfo(ticker)
	} else {
		sum.OK(stageInfo, ticker, 0)
	}
	for i := range recs {
		recs[i].CompanyName = info.Name
		recs[i].Sector = info.Sector
	}

	if err := uc.store.SavePrices(&models.PriceTable{Ticker: ticker, Records: recs}); err != nil {
		return 0, err
	}
	return len(recs), nil
}
