package usecase

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"FinMerge/internal/domain/failure"
	"FinMerge/internal/domain/models"
	"FinMerge/internal/domain/repository"
	"FinMerge/internal/services/aligner"
	applogger "FinMerge/pkg/logger"
)

const aaplRaw = `Date,Open,High,Low,Close,Volume,Company_Name,Sector
2023-02-15,150.5,152,149.25,151,1000,Apple Inc.,Technology
2022-12-01,140,141,139,140.5,900,Apple Inc.,Technology
`

func gdpSource() *fakeIndicators {
	return &fakeIndicators{
		name: "worldbank",
		specs: []models.IndicatorSpec{
			{Code: "NY.GDP.MKTP.KD.ZG", Name: "GDP_Growth"},
			{Code: "FP.CPI.TOTL.ZG", Name: "Inflation"},
		},
		series: map[string]models.IndicatorSeries{
			"NY.GDP.MKTP.KD.ZG": {Name: "GDP_Growth", Observations: []models.Observation{
				{Date: day("2023-01-01"), Value: 2.1},
				{Date: day("2023-04-01"), Value: 2.3},
			}},
		},
		errs: map[string]error{
			"FP.CPI.TOTL.ZG": failure.Network("fetch inflation", os.ErrDeadlineExceeded),
		},
	}
}

func TestMacroMergeAsOfAndIsolation(t *testing.T) {
	store, dir := newCSVStore(t)
	raw := filepath.Join(dir, "raw")
	processed := filepath.Join(dir, "processed")

	writeFile(t, filepath.Join(raw, "AAPL_historical_data.csv"), aaplRaw)
	writeFile(t, filepath.Join(raw, "BAD_historical_data.csv"),
		"Date,Open,High,Low,Close,Volume\n2023-02-15,1,1,1,abc,10\n")
	writeFile(t, filepath.Join(raw, "EMPTY_historical_data.csv"),
		"Date,Open,High,Low,Close,Volume\n")
	// a failing ticker must not touch its previous output
	writeFile(t, filepath.Join(processed, "BAD_historical_data.csv"), "previous run\n")

	sink := &recordingStorage{}
	uc := NewMacroMerge(
		[]repository.IndicatorSource{gdpSource()},
		aligner.New(aligner.ModeRow),
		store, store,
		Sinks{Storage: sink},
		repository.NoopMetrics{},
		applogger.Nop(),
		fixedRunID,
	)

	sum, err := uc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := `Date,Open,High,Low,Close,Volume,Company_Name,Sector,GDP_Growth
2022-12-01,140,141,139,140.5,900,Apple Inc.,Technology,
2023-02-15,150.5,152,149.25,151,1000,Apple Inc.,Technology,2.1
`
	if got := readFile(t, filepath.Join(processed, "AAPL_historical_data.csv")); got != want {
		t.Errorf("merged AAPL =\n%s\nwant\n%s", got, want)
	}
	if got := readFile(t, filepath.Join(processed, "BAD_historical_data.csv")); got != "previous run\n" {
		t.Errorf("BAD output was overwritten: %q", got)
	}
	if _, err := os.Stat(filepath.Join(processed, "EMPTY_historical_data.csv")); !os.IsNotExist(err) {
		t.Errorf("EMPTY output should not exist, stat err = %v", err)
	}

	if got := sum.Count(stageIndicators, OutcomeOK); got != 1 {
		t.Errorf("indicators ok = %d, want 1", got)
	}
	if got := sum.Count(stageIndicators, OutcomeFailed); got != 1 {
		t.Errorf("indicators failed = %d, want 1", got)
	}
	if got := sum.Count(stageTickers, OutcomeOK); got != 1 {
		t.Errorf("tickers ok = %d, want 1", got)
	}
	if got := sum.Count(stageTickers, OutcomeEmpty); got != 1 {
		t.Errorf("tickers empty = %d, want 1", got)
	}
	failed := sum.Failed(stageTickers)
	if len(failed) != 1 || failed[0].Item != "BAD" || failed[0].Kind != failure.KindParse {
		t.Errorf("failed tickers = %+v, want BAD/parse", failed)
	}
	kinds := sum.KindCounts()
	if kinds[failure.KindNetwork] != 1 || kinds[failure.KindParse] != 1 {
		t.Errorf("KindCounts() = %v", kinds)
	}
	if len(sink.merged) != 1 || sink.merged[0] != "AAPL" {
		t.Errorf("storage got %v, want [AAPL]", sink.merged)
	}
}

func TestMacroMergeIsIdempotent(t *testing.T) {
	store, dir := newCSVStore(t)
	writeFile(t, filepath.Join(dir, "raw", "AAPL_historical_data.csv"), aaplRaw)
	out := filepath.Join(dir, "processed", "AAPL_historical_data.csv")

	run := func() string {
		uc := NewMacroMerge([]repository.IndicatorSource{gdpSource()}, aligner.New(aligner.ModeRow),
			store, store, Sinks{}, repository.NoopMetrics{}, applogger.Nop(), fixedRunID)
		if _, err := uc.Run(context.Background()); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		return readFile(t, out)
	}

	first := run()
	if second := run(); second != first {
		t.Errorf("second run differs:\n%s\nvs\n%s", second, first)
	}
}

func TestMacroMergeWithoutIndicators(t *testing.T) {
	store, dir := newCSVStore(t)
	writeFile(t, filepath.Join(dir, "raw", "AAPL_historical_data.csv"), aaplRaw)

	src := &fakeIndicators{name: "fred", specs: []models.IndicatorSpec{{Code: "DFF", Name: "Fed_Funds_Rate"}}}
	uc := NewMacroMerge([]repository.IndicatorSource{src}, aligner.New(aligner.ModeRow),
		store, store, Sinks{Storage: &recordingStorage{fail: true}}, repository.NoopMetrics{}, applogger.Nop(), fixedRunID)

	sum, err := uc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := sum.Count(stageIndicators, OutcomeEmpty); got != 1 {
		t.Errorf("indicators empty = %d, want 1", got)
	}
	// a failing sink is not a failed ticker
	if got := sum.Count(stageTickers, OutcomeOK); got != 1 {
		t.Errorf("tickers ok = %d, want 1", got)
	}

	mt, err := store.LoadMerged("AAPL")
	if err != nil {
		t.Fatalf("LoadMerged() error = %v", err)
	}
	if len(mt.Columns) != 0 || len(mt.Records) != 2 {
		t.Errorf("merged = %d columns, %d records; want 0, 2", len(mt.Columns), len(mt.Records))
	}
}

func TestMacroMergeNoRawFiles(t *testing.T) {
	store, _ := newCSVStore(t)
	uc := NewMacroMerge(nil, aligner.New(aligner.ModeRow), store, store, Sinks{}, repository.NoopMetrics{}, applogger.Nop(), fixedRunID)

	sum, err := uc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(sum.Results) != 0 {
		t.Errorf("results = %+v, want none", sum.Results)
	}
}
