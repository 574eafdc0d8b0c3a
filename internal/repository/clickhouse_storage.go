package repository

import (
	"context"
	"fmt"
	"time"

	"FinMerge/internal/domain/models"
	pkgch "FinMerge/pkg/clickhouse"
	applogger "FinMerge/pkg/logger"
)

const (
	tableMergedPrices   = "merged_prices"
	tableHeadlines      = "headlines"
	tableDailySentiment = "daily_sentiment"
)

// ClickHouseStorage copies pipeline outputs into ClickHouse. Every row carries the run id.
type ClickHouseStorage struct {
	ch  *pkgch.Client
	l   *applogger.Logger
	now func() time.Time
}

func NewClickHouseStorage(ch *pkgch.Client, l *applogger.Logger) *ClickHouseStorage {
	return &ClickHouseStorage{ch: ch, l: l, now: time.Now}
}

func (s *ClickHouseStorage) schema() []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			run_id      String,
			ticker      LowCardinality(String),
			date        Date,
			open        Decimal64(6),
			high        Decimal64(6),
			low         Decimal64(6),
			close       Decimal64(6),
			volume      Int64,
			company     String,
			sector      LowCardinality(String),
			indicators  Map(String, Float64),
			ingested_at DateTime
		) ENGINE = MergeTree ORDER BY (ticker, date, run_id)`, s.ch.Table(tableMergedPrices)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			run_id      String,
			ticker      LowCardinality(String),
			headline    String,
			date        Nullable(Date),
			date_label  String,
			source      LowCardinality(String),
			quality     LowCardinality(String),
			ingested_at DateTime
		) ENGINE = MergeTree ORDER BY (ticker, run_id)`, s.ch.Table(tableHeadlines)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			run_id         String,
			date           Date,
			avg_sentiment  Float64,
			headline_count UInt32,
			sentiment_std  Float64,
			ingested_at    DateTime
		) ENGINE = MergeTree ORDER BY (date, run_id)`, s.ch.Table(tableDailySentiment)),
	}
}

// Init creates the database and tables if they do not exist.
func (s *ClickHouseStorage) Init(ctx context.Context) error {
	if err := s.ch.InitSchema(ctx, s.schema()); err != nil {
		s.l.Error("clickhouse schema init failed", applogger.Error(err))
		return err
	}
	return nil
}

func (s *ClickHouseStorage) StoreMerged(ctx context.Context, runID string, t *models.MergedTable) error {
	at := s.now().UTC()
	rows := make([][]interface{}, 0, len(t.Records))
	for _, r := range t.Records {
		ind := make(map[string]float64, len(t.Columns))
		for i, v := range r.Indicators {
			if v.Valid {
				ind[t.Columns[i]] = v.Float64
			}
		}
		rows = append(rows, []interface{}{
			runID, t.Ticker, r.Date, r.Open, r.High, r.Low, r.Close, r.Volume,
			r.CompanyName, r.Sector, ind, at,
		})
	}
	return s.insert(ctx, tableMergedPrices, []string{
		"run_id", "ticker", "date", "open", "high", "low", "close", "volume",
		"company", "sector", "indicators", "ingested_at",
	}, rows)
}

func (s *ClickHouseStorage) StoreHeadlines(ctx context.Context, runID string, hs []models.Headline) error {
	at := s.now().UTC()
	rows := make([][]interface{}, 0, len(hs))
	for _, h := range hs {
		var date *time.Time
		if h.Date.Valid {
			d := h.Date.Time
			date = &d
		}
		rows = append(rows, []interface{}{
			runID, h.Ticker, h.Text, date, h.DateLabel(), h.Source, string(h.Quality), at,
		})
	}
	return s.insert(ctx, tableHeadlines, []string{
		"run_id", "ticker", "headline", "date", "date_label", "source", "quality", "ingested_at",
	}, rows)
}

func (s *ClickHouseStorage) StoreDailySentiment(ctx context.Context, runID string, days []models.DailySentiment) error {
	at := s.now().UTC()
	rows := make([][]interface{}, 0, len(days))
	for _, d := range days {
		rows = append(rows, []interface{}{
			runID, d.Date, d.AvgSentiment, uint32(d.HeadlineCount), d.SentimentStd, at,
		})
	}
	return s.insert(ctx, tableDailySentiment, []string{
		"run_id", "date", "avg_sentiment", "headline_count", "sentiment_std", "ingested_at",
	}, rows)
}

func (s *ClickHouseStorage) insert(ctx context.Context, table string, columns []string, rows [][]interface{}) error {
	start := time.Now()
	if err := s.ch.InsertRows(ctx, table, columns, rows); err != nil {
		s.l.Error("clickhouse insert failed",
			applogger.String("table", table),
			applogger.Int("rows", len(rows)),
			applogger.Error(err),
		)
		return err
	}
	s.l.Debug("clickhouse insert",
		applogger.String("table", table),
		applogger.Int("rows", len(rows)),
		applogger.Duration("took", time.Since(start)),
	)
	return nil
}

func (s *ClickHouseStorage) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

func (s *ClickHouseStorage) Close() error {
	return s.ch.Close()
}
