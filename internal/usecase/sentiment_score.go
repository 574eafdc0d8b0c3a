package usecase

import (
	"context"
	"fmt"
	"time"

	"FinMerge/internal/domain/failure"
	"FinMerge/internal/domain/models"
	"FinMerge/internal/domain/repository"
	"FinMerge/internal/services/sentiment"
	applogger "FinMerge/pkg/logger"
	"FinMerge/pkg/util"
)

const stageInput = "input"

type SentimentOptions struct {
	Input           string
	DailyOutput     string
	HeadlinesOutput string
	// From and To bound the headline dates, inclusive; a zero value leaves that side open.
	From, To time.Time
}

// SentimentScore scores a headline file and aggregates the scores per day.
type SentimentScore struct {
	store   repository.SentimentStore
	model   repository.SentimentModel
	opts    SentimentOptions
	sinks   Sinks
	metrics repository.Metrics
	log     *applogger.Logger
	runID   func() string
	now     func() time.Time
}

func NewSentimentScore(
	store repository.SentimentStore,
	model repository.SentimentModel,
	opts SentimentOptions,
	sinks Sinks,
	metrics repository.Metrics,
	l *applogger.Logger,
	runID func() string,
) *SentimentScore {
	return &SentimentScore{
		store:   store,
		model:   model,
		opts:    opts,
		sinks:   sinks,
		metrics: metrics,
		log:     l,
		runID:   runID,
		now:     time.Now,
	}
}

func (uc *SentimentScore) inWindow(d time.Time) bool {
	if !uc.opts.From.IsZero() && d.Before(util.CalendarDate(uc.opts.From)) {
		return false
	}
	if !uc.opts.To.IsZero() && d.After(util.CalendarDate(uc.opts.To)) {
		return false
	}
	return true
}

func (uc *SentimentScore) Run(ctx context.Context) (*Summary, error) {
	runID := uc.runID()
	sum := newSummary("sentiment", runID, uc.metrics, uc.now())
	defer func() { sum.Finished = uc.now() }()

	rows, dropped, err := uc.store.LoadScoringInput(uc.opts.Input)
	if err != nil {
		sum.Record(stageInput, uc.opts.Input, err)
		return sum, err
	}
	loaded := len(rows) + dropped

	kept := rows[:0]
	for _, r := range rows {
		if uc.inWindow(r.Date) {
			kept = append(kept, r)
		}
	}
	rows = kept
	uc.log.Info("headlines loaded",
		applogger.String("file", uc.opts.Input),
		applogger.Int("loaded", loaded),
		applogger.Int("kept", len(rows)),
		applogger.Int("removed", loaded-len(rows)),
	)
	if len(rows) == 0 {
		sum.Record(stageInput, uc.opts.Input, failure.Empty("load "+uc.opts.Input))
		uc.log.Warn("no valid headlines, nothing written")
		return sum, nil
	}
	sum.OK(stageInput, uc.opts.Input, len(rows))

	texts := make([]string, len(rows))
	for i, r := range rows {
		texts[i] = r.Headline
	}
	start := time.Now()
	scores, err := uc.model.Classify(ctx, texts)
	uc.metrics.RecordLatency("classify", time.Since(start).Seconds())
	if err != nil {
		sum.Record("classify", uc.opts.Input, err)
		return sum, fmt.Errorf("classify: %w", err)
	}
	if len(scores) != len(rows) {
		err := failure.Parsef("classify", "model returned %d scores for %d headlines", len(scores), len(rows))
		sum.Record("classify", uc.opts.Input, err)
		return sum, err
	}
	for i := range rows {
		rows[i].Score = scores[i]
	}

	days, err := sentiment.Daily(rows)
	if err != nil {
		return sum, err
	}
	if err := uc.store.SaveDaily(uc.opts.DailyOutput, days); err != nil {
		return sum, err
	}
	if err := uc.store.SaveScored(uc.opts.HeadlinesOutput, rows); err != nil {
		return sum, err
	}
	uc.metrics.RecordRows(sum.Pipeline, len(days))
	uc.logSummary(days)

	st, pub := uc.sinks.storage(), uc.sinks.publisher()
	writeSink(ctx, "clickhouse", st, uc.metrics, uc.log, uc.opts.DailyOutput, func(ctx context.Context) error {
		return st.StoreDailySentiment(ctx, runID, days)
	})
	writeSink(ctx, "kafka", pub, uc.metrics, uc.log, uc.opts.DailyOutput, func(ctx context.Context) error {
		return pub.PublishDailySentiment(ctx, runID, days)
	})
	return sum, nil
}

func (uc *SentimentScore) logSummary(days []models.DailySentiment) {
	s := sentiment.Summarize(days)
	uc.log.Info("daily sentiment saved",
		applogger.String("daily", uc.opts.DailyOutput),
		applogger.String("headlines", uc.opts.HeadlinesOutput),
		applogger.String("from", util.FormatDay(s.From)),
		applogger.String("to", util.FormatDay(s.To)),
		applogger.Int("days", s.Days),
		applogger.Int("headline_count", s.Headlines),
		applogger.Float64("mean_sentiment", s.MeanSentiment),
		applogger.Int("positive_days", s.PositiveDays),
		applogger.Int("negative_days", s.NegativeDays),
		applogger.Int("neutral_days", s.NeutralDays),
	)
}
