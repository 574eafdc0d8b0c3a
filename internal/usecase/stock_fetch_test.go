package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"FinMerge/internal/domain/failure"
	"FinMerge/internal/domain/models"
	"FinMerge/internal/domain/repository"
	applogger "FinMerge/pkg/logger"
)

func bar(date string, o, h, l, c string, v int64) models.PriceRecord {
	return models.PriceRecord{
		Date:   day(date),
		Open:   decimal.RequireFromString(o),
		High:   decimal.RequireFromString(h),
		Low:    decimal.RequireFromString(l),
		Close:  decimal.RequireFromString(c),
		Volume: v,
	}
}

func TestStockFetchRun(t *testing.T) {
	store, dir := newCSVStore(t)
	src := &fakePrices{
		history: map[string][]models.PriceRecord{
			"AAPL": {bar("2024-03-01", "180", "182", "179.5", "181.25", 1000), bar("2024-03-04", "181", "183", "180", "182", 1200)},
			"MSFT": {bar("2024-03-01", "410", "415", "405", "411.5", 800)},
		},
		infos: map[string]models.CompanyInfo{
			"AAPL": {Name: "Apple Inc.", Sector: "Technology"},
		},
		errs: map[string]error{
			"BAD": failure.Network("history BAD", errors.New("status 404")),
		},
	}
	tickers := staticTickers{"AAPL", "MSFT", "BAD", "NONE"}

	uc := NewStockFetch(tickers, src, store, 5, repository.NoopMetrics{}, applogger.Nop(), fixedRunID)
	sum, err := uc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := `Date,Open,High,Low,Close,Volume,Company_Name,Sector
2024-03-01,180,182,179.5,181.25,1000,Apple Inc.,Technology
2024-03-04,181,183,180,182,1200,Apple Inc.,Technology
`
	if got := readFile(t, filepath.Join(dir, "raw", "AAPL_historical_data.csv")); got != want {
		t.Errorf("AAPL =\n%s\nwant\n%s", got, want)
	}
	if got := readFile(t, filepath.Join(dir, "raw", "MSFT_historical_data.csv")); !strings.Contains(got, ",MSFT,Unknown\n") {
		t.Errorf("MSFT should carry fallback info, got\n%s", got)
	}

	listed, err := store.ListTickers()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(listed, ",") != "AAPL,MSFT" {
		t.Errorf("ListTickers() = %v, want [AAPL MSFT]", listed)
	}

	cases := []struct {
		stage string
		o     Outcome
		want  int
	}{
		{stageTickers, OutcomeOK, 2},
		{stageTickers, OutcomeFailed, 1},
		{stageTickers, OutcomeEmpty, 1},
		{stageInfo, OutcomeOK, 1},
		{stageInfo, OutcomeFailed, 1},
	}
	for _, c := range cases {
		if got := sum.Count(c.stage, c.o); got != c.want {
			t.Errorf("Count(%s, %s) = %d, want %d", c.stage, c.o, got, c.want)
		}
	}
}

func TestStockFetchStopsOnCancel(t *testing.T) {
	store, _ := newCSVStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	uc := NewStockFetch(staticTickers{"AAPL"}, &fakePrices{}, store, 1, repository.NoopMetrics{}, applogger.Nop(), fixedRunID)
	sum, err := uc.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(sum.Results) != 0 {
		t.Errorf("results = %+v, want none", sum.Results)
	}
}
