package tickers

import (
	"context"
	"os"
	"reflect"
	"testing"

	"FinMerge/internal/domain/failure"
	"FinMerge/pkg/logger"
)

type fileDocs struct{ path string }

func (f fileDocs) Fetch(ctx context.Context, url string) ([]byte, error) {
	return os.ReadFile(f.path)
}

type fakeCaps map[string]float64

func (f fakeCaps) MarketCap(ctx context.Context, ticker string) (float64, error) {
	mc, ok := f[ticker]
	if !ok {
		return 0, failure.Empty("market cap " + ticker)
	}
	return mc, nil
}

func TestConstituents(t *testing.T) {
	r := NewRanked(fileDocs{"testdata/constituents.html"}, fakeCaps{}, "http://wiki", 10, logger.Nop())
	got, err := r.Constituents(context.Background())
	if err != nil {
		t.Fatalf("Constituents: %v", err)
	}
	want := []string{"MMM", "AAPL", "BRK-B", "MSFT", "XYZ"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRankedTopN(t *testing.T) {
	caps := fakeCaps{"MMM": 6e10, "AAPL": 3e12, "BRK-B": 9e11, "MSFT": 3.1e12}
	r := NewRanked(fileDocs{"testdata/constituents.html"}, caps, "http://wiki", 3, logger.Nop())

	got, err := r.Tickers(context.Background())
	if err != nil {
		t.Fatalf("Tickers: %v", err)
	}
	want := []string{"MSFT", "AAPL", "BRK-B"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRankedMissingTable(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/page.html"
	if err := os.WriteFile(path, []byte("<html><body><p>moved</p></body></html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewRanked(fileDocs{path}, fakeCaps{}, "http://wiki", 3, logger.Nop())
	if _, err := r.Tickers(context.Background()); failure.Classify(err) != failure.KindParse {
		t.Fatalf("expected parse failure, got %v", err)
	}
}

func TestRankedAllLookupsFail(t *testing.T) {
	r := NewRanked(fileDocs{"testdata/constituents.html"}, fakeCaps{}, "http://wiki", 3, logger.Nop())
	_, err := r.Tickers(context.Background())
	if !failure.IsEmpty(err) {
		t.Fatalf("expected empty, got %v", err)
	}
}

func TestStaticReturnsCopy(t *testing.T) {
	s := NewStatic([]string{"AAPL", "MSFT"})
	got, _ := s.Tickers(context.Background())
	got[0] = "X"
	again, _ := s.Tickers(context.Background())
	if again[0] != "AAPL" {
		t.Fatal("static list was mutated through the returned slice")
	}
}
