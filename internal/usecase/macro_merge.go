package usecase

import (
	"context"
	"time"

	"FinMerge/internal/domain/failure"
	"FinMerge/internal/domain/models"
	"FinMerge/internal/domain/repository"
	"FinMerge/internal/services/aligner"
	applogger "FinMerge/pkg/logger"
)

const (
	stageIndicators = "indicators"
	stageTickers    = "tickers"
)

// MacroMerge fetches every configured indicator, builds the macro table and attaches it to
// each raw price file with a backward as-of join.
type MacroMerge struct {
	sources []repository.IndicatorSource
	aligner *aligner.Aligner
	prices  repository.PriceStore
	merged  repository.MergedStore
	sinks   Sinks
	metrics repository.Metrics
	log     *applogger.Logger
	runID   func() string
	now     func() time.Time
}

func NewMacroMerge(
	sources []repository.IndicatorSource,
	al *aligner.Aligner,
	prices repository.PriceStore,
	merged repository.MergedStore,
	sinks Sinks,
	metrics repository.Metrics,
	l *applogger.Logger,
	runID func() string,
) *MacroMerge {
	return &MacroMerge{
		sources: sources,
		aligner: al,
		prices:  prices,
		merged:  merged,
		sinks:   sinks,
		metrics: metrics,
		log:     l,
		runID:   runID,
		now:     time.Now,
	}
}

// BuildMacro fetches each indicator independently; a failed or empty indicator is recorded
// and left out of the table.
func (uc *MacroMerge) BuildMacro(ctx context.Context, sum *Summary) *models.MacroTable {
	var series []models.IndicatorSeries
	for _, src := range uc.sources {
		for _, spec := range src.Indicators() {
			if ctx.Err() != nil {
				return aligner.Union(series)
			}
			start := time.Now()
			s, err := src.FetchSeries(ctx, spec)
			uc.metrics.RecordLatency(src.Name()+"_fetch", time.Since(start).Seconds())
			item := src.Name() + ":" + spec.Code
			if err != nil {
				sum.Record(stageIndicators, item, err)
				uc.log.Warn("indicator skipped",
					applogger.String("source", src.Name()),
					applogger.String("indicator", spec.Name),
					applogger.Error(err),
				)
				continue
			}
			sum.OK(stageIndicators, item, len(s.Observations))
			uc.log.Info("indicator fetched",
				applogger.String("source", src.Name()),
				applogger.String("indicator", spec.Name),
				applogger.Int("observations", len(s.Observations)),
			)
			series = append(series, s)
		}
	}
	return aligner.Union(series)
}

// Run merges every raw price file. A ticker that fails is recorded and skipped; its
// processed file is left untouched.
func (uc *MacroMerge) Run(ctx context.Context) (*Summary, error) {
	runID := uc.runID()
	sum := newSummary("macro_merge", runID, uc.metrics, uc.now())
	defer func() { sum.Finished = uc.now() }()

	macro := uc.BuildMacro(ctx, sum)
	if macro.Empty() {
		uc.log.Warn("no macroeconomic data fetched, indicator columns will be empty")
	} else {
		uc.log.Info("macro table built",
			applogger.Int("rows", len(macro.Rows)),
			applogger.Strings("columns", macro.Columns),
		)
	}

	tickers, err := uc.prices.ListTickers()
	if err != nil {
		return sum, err
	}
	if len(tickers) == 0 {
		uc.log.Warn("no raw price files found")
		return sum, nil
	}

	for i, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			uc.log.Warn("merge interrupted", applogger.Int("done", i), applogger.Int("total", len(tickers)))
			return sum, err
		}
		mt, err := uc.mergeOne(ticker, macro)
		if err != nil {
			sum.Record(stageTickers, ticker, err)
			uc.log.Error("merge failed", applogger.String("ticker", ticker), applogger.Error(err))
			continue
		}
		sum.OK(stageTickers, ticker, len(mt.Records))
		uc.log.Info("merged",
			applogger.String("ticker", ticker),
			applogger.Int("rows", len(mt.Records)),
			applogger.Int("progress", i+1),
			applogger.Int("total", len(tickers)),
		)

		st := uc.sinks.storage()
		writeSink(ctx, "clickhouse", st, uc.metrics, uc.log, ticker, func(ctx context.Context) error {
			return st.StoreMerged(ctx, runID, mt)
		})
	}
	return sum, nil
}

func (uc *MacroMerge) mergeOne(ticker string, macro *models.MacroTable) (*models.MergedTable, error) {
	p, err := uc.prices.LoadPrices(ticker)
	if err != nil {
		return nil, err
	}
	if len(p.Records) == 0 {
		return nil, failure.Empty("merge " + ticker)
	}
	mt, err := uc.aligner.Merge(p, macro)
	if err != nil {
		return nil, err
	}
	if err := uc.merged.SaveMerged(mt); err != nil {
		return nil, err
	}
	return mt, nil
}
