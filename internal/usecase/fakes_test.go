package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"FinMerge/internal/domain/failure"
	"FinMerge/internal/domain/models"
	"FinMerge/internal/repository"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func fixedRunID() string { return "run-test" }

func newCSVStore(t *testing.T) (*repository.CSVStore, string) {
	t.Helper()
	dir := t.TempDir()
	return repository.NewCSVStore(dir, filepath.Join(dir, "raw"), filepath.Join(dir, "processed")), dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

// fakeIndicators serves fixed series by code; codes in errs fail with that error.
type fakeIndicators struct {
	name   string
	specs  []models.IndicatorSpec
	series map[string]models.IndicatorSeries
	errs   map[string]error
}

func (f *fakeIndicators) Name() string                       { return f.name }
func (f *fakeIndicators) Indicators() []models.IndicatorSpec { return f.specs }

func (f *fakeIndicators) FetchSeries(ctx context.Context, spec models.IndicatorSpec) (models.IndicatorSeries, error) {
	if err, ok := f.errs[spec.Code]; ok {
		return models.IndicatorSeries{Name: spec.Name}, err
	}
	s, ok := f.series[spec.Code]
	if !ok {
		return models.IndicatorSeries{Name: spec.Name}, failure.Empty("fake " + spec.Code)
	}
	return s, nil
}

type staticTickers []string

func (s staticTickers) Tickers(ctx context.Context) ([]string, error) { return s, nil }

// fakePrices serves history and info per ticker.
type fakePrices struct {
	history map[string][]models.PriceRecord
	infos   map[string]models.CompanyInfo
	errs    map[string]error
}

func (f *fakePrices) History(ctx context.Context, ticker string, from, to time.Time) ([]models.PriceRecord, error) {
	if err, ok := f.errs[ticker]; ok {
		return nil, err
	}
	recs := f.history[ticker]
	if len(recs) == 0 {
		return nil, failure.Empty("history " + ticker)
	}
	return append([]models.PriceRecord(nil), recs...), nil
}

func (f *fakePrices) Info(ctx context.Context, ticker string) (models.CompanyInfo, error) {
	info, ok := f.infos[ticker]
	if !ok {
		return models.FallbackInfo(ticker), failure.Network("info "+ticker, fmt.Errorf("status 401"))
	}
	return info, nil
}

func (f *fakePrices) MarketCap(ctx context.Context, ticker string) (float64, error) {
	return 0, failure.Empty("market cap")
}

// pageDocs serves HTML bodies by URL; unknown URLs fail with a network error.
type pageDocs map[string]string

func (p pageDocs) Fetch(ctx context.Context, url string) ([]byte, error) {
	body, ok := p[url]
	if !ok {
		return nil, failure.Network("fetch "+url, fmt.Errorf("status 503"))
	}
	return []byte(body), nil
}

// textModel scores a text from a fixed table.
type textModel map[string]float64

func (m textModel) Classify(ctx context.Context, texts []string) ([]float64, error) {
	out := make([]float64, len(texts))
	for i, t := range texts {
		out[i] = m[t]
	}
	return out, nil
}

// countingPacer records ItemDone calls.
type countingPacer struct{ n int }

func (p *countingPacer) ItemDone(ctx context.Context) error {
	p.n++
	return nil
}

// recordingStorage captures sink writes.
type recordingStorage struct {
	merged    []string
	headlines int
	days      int
	fail      bool
}

func (s *recordingStorage) Init(context.Context) error { return nil }
func (s *recordingStorage) StoreMerged(_ context.Context, _ string, t *models.MergedTable) error {
	if s.fail {
		return fmt.Errorf("clickhouse down")
	}
	s.merged = append(s.merged, t.Ticker)
	return nil
}
func (s *recordingStorage) StoreHeadlines(_ context.Context, _ string, hs []models.Headline) error {
	s.headlines += len(hs)
	return nil
}
func (s *recordingStorage) StoreDailySentiment(_ context.Context, _ string, d []models.DailySentiment) error {
	s.days += len(d)
	return nil
}
func (s *recordingStorage) Health(context.Context) error { return nil }
func (s *recordingStorage) Close() error                 { return nil }
