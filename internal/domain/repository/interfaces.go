package repository

import (
	"context"
	"time"

	"FinMerge/internal/domain/models"
)

// IndicatorSource fetches one macroeconomic series at a time.
type IndicatorSource interface {
	Name() string
	Indicators() []models.IndicatorSpec
	FetchSeries(ctx context.Context, spec models.IndicatorSpec) (models.IndicatorSeries, error)
}

type PriceSource interface {
	History(ctx context.Context, ticker string, from, to time.Time) ([]models.PriceRecord, error)
	Info(ctx context.Context, ticker string) (models.CompanyInfo, error)
	MarketCap(ctx context.Context, ticker string) (float64, error)
}

type TickerSource interface {
	Tickers(ctx context.Context) ([]string, error)
}

// DocumentSource returns the raw HTML of a page.
type DocumentSource interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// SentimentModel scores texts in order, one score per input.
type SentimentModel interface {
	Classify(ctx context.Context, texts []string) ([]float64, error)
}

type PriceStore interface {
	ListTickers() ([]string, error)
	LoadPrices(ticker string) (*models.PriceTable, error)
	SavePrices(t *models.PriceTable) error
}

type MergedStore interface {
	SaveMerged(t *models.MergedTable) error
	LoadMerged(ticker string) (*models.MergedTable, error)
}

type HeadlineStore interface {
	SaveHeadlines(name string, hs []models.Headline, withQuality bool) error
	LoadHeadlines(name string) ([]models.Headline, error)
}

type SentimentStore interface {
	// LoadScoringInput returns rows with a usable date and headline, and how many were dropped.
	LoadScoringInput(name string) ([]models.ScoredHeadline, int, error)
	SaveScored(name string, rows []models.ScoredHeadline) error
	SaveDaily(name string, rows []models.DailySentiment) error
	LoadDaily(name string) ([]models.DailySentiment, error)
}

// Storage is the optional analytical sink.
type Storage interface {
	Init(ctx context.Context) error // ensure tables, health checks
	StoreMerged(ctx context.Context, runID string, t *models.MergedTable) error
	StoreHeadlines(ctx context.Context, runID string, hs []models.Headline) error
	StoreDailySentiment(ctx context.Context, runID string, rows []models.DailySentiment) error
	Health(ctx context.Context) error // ping
	Close() error
}

// Publisher is the optional message sink.
type Publisher interface {
	PublishHeadlines(ctx context.Context, runID string, hs []models.Headline) error
	PublishDailySentiment(ctx context.Context, runID string, rows []models.DailySentiment) error
	Close() error
}

type Metrics interface {
	RecordItem(pipeline, outcome string)
	RecordError(pipeline, kind string)
	RecordSinkWrite(sink string, ok bool)
	RecordRows(pipeline string, n int)
	RecordLatency(op string, seconds float64)
}
