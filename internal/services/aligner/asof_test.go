package aligner

import (
	"testing"
	"time"

	"FinMerge/internal/domain/failure"
	"FinMerge/internal/domain/models"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func price(d string) models.PriceRecord {
	return models.PriceRecord{
		Date:        day(d),
		Open:        decimal.RequireFromString("10.5"),
		High:        decimal.RequireFromString("11"),
		Low:         decimal.RequireFromString("10"),
		Close:       decimal.RequireFromString("10.75"),
		Volume:      1000,
		CompanyName: "Apple Inc.",
		Sector:      "Technology",
	}
}

func gdpTable() *models.MacroTable {
	return &models.MacroTable{
		Columns: []string{"GDP_Growth"},
		Rows: []models.MacroRow{
			{Date: day("2023-01-01"), Values: []null.Float{null.FloatFrom(2.1)}},
			{Date: day("2023-04-01"), Values: []null.Float{null.FloatFrom(2.3)}},
		},
	}
}

func TestMergeBackwardAsOf(t *testing.T) {
	p := &models.PriceTable{Ticker: "AAPL", Records: []models.PriceRecord{
		price("2022-12-01"), price("2023-01-01"), price("2023-02-15"), price("2023-04-01"), price("2023-05-02"),
	}}

	got, err := New(ModeRow).Merge(p, gdpTable())
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(got.Records) != len(p.Records) {
		t.Fatalf("expected %d rows, got %d", len(p.Records), len(got.Records))
	}

	want := []null.Float{{}, null.FloatFrom(2.1), null.FloatFrom(2.1), null.FloatFrom(2.3), null.FloatFrom(2.3)}
	for i, w := range want {
		g := got.Records[i].Indicators[0]
		if g.Valid != w.Valid || (g.Valid && g.Float64 != w.Float64) {
			t.Fatalf("row %d (%s): expected %v, got %v", i, got.Records[i].Date.Format("2006-01-02"), w, g)
		}
	}
}

func TestMergeUnsortedMacroMatchesSorted(t *testing.T) {
	p := &models.PriceTable{Ticker: "AAPL", Records: []models.PriceRecord{
		price("2023-03-01"), price("2022-12-01"), price("2023-06-30"),
	}}
	sorted := gdpTable()
	unsorted := &models.MacroTable{
		Columns: sorted.Columns,
		Rows:    []models.MacroRow{sorted.Rows[1], sorted.Rows[0]},
	}

	a := New(ModeRow)
	want, err := a.Merge(p, sorted)
	if err != nil {
		t.Fatalf("merge sorted: %v", err)
	}
	got, err := a.Merge(p, unsorted)
	if err != nil {
		t.Fatalf("merge unsorted: %v", err)
	}

	for i := range want.Records {
		w, g := want.Records[i], got.Records[i]
		if !w.Date.Equal(g.Date) || w.Indicators[0] != g.Indicators[0] {
			t.Fatalf("row %d differs: %+v vs %+v", i, w, g)
		}
	}
	if !got.Records[0].Date.Equal(day("2022-12-01")) {
		t.Fatalf("expected output in ascending price order")
	}
	// the caller's table is left as given
	if !unsorted.Rows[0].Date.Equal(day("2023-04-01")) {
		t.Fatalf("input table was reordered")
	}
}

func TestMergeNormalizesTimezones(t *testing.T) {
	ny := time.FixedZone("EST", -5*3600)
	p := &models.PriceTable{Ticker: "AAPL", Records: []models.PriceRecord{
		{Date: time.Date(2023, 1, 1, 0, 0, 0, 0, ny)},
	}}
	got, err := New(ModeRow).Merge(p, gdpTable())
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	v := got.Records[0].Indicators[0]
	if !v.Valid || v.Float64 != 2.1 {
		t.Fatalf("expected same-day macro row to match, got %v", v)
	}
	if got.Records[0].Date.Location() != time.UTC {
		t.Fatalf("expected UTC calendar date")
	}
}

func TestMergeRowVersusColumnMode(t *testing.T) {
	m := &models.MacroTable{
		Columns: []string{"Inflation", "Unemployment"},
		Rows: []models.MacroRow{
			{Date: day("2022-12-31"), Values: []null.Float{null.FloatFrom(8.0), null.FloatFrom(3.6)}},
			{Date: day("2023-01-01"), Values: []null.Float{null.FloatFrom(6.4), {}}},
		},
	}
	p := &models.PriceTable{Ticker: "MSFT", Records: []models.PriceRecord{price("2023-01-03")}}

	row, err := New(ModeRow).Merge(p, m)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if row.Records[0].Indicators[1].Valid {
		t.Fatalf("row mode: expected Unemployment empty, got %v", row.Records[0].Indicators[1])
	}

	col, err := New(ModeColumn).Merge(p, m)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if got := col.Records[0].Indicators; got[0].Float64 != 6.4 || !got[1].Valid || got[1].Float64 != 3.6 {
		t.Fatalf("column mode: expected [6.4 3.6], got %v", got)
	}
}

func TestMergeDuplicatePriceDate(t *testing.T) {
	p := &models.PriceTable{Ticker: "AAPL", Records: []models.PriceRecord{price("2023-01-03"), price("2023-01-03")}}
	_, err := New(ModeRow).Merge(p, gdpTable())
	if failure.Classify(err) != failure.KindParse {
		t.Fatalf("expected parse failure, got %v", err)
	}
}

func TestMergeEmptyMacroTable(t *testing.T) {
	p := &models.PriceTable{Ticker: "AAPL", Records: []models.PriceRecord{price("2023-01-03")}}
	got, err := New(ModeRow).Merge(p, nil)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(got.Columns) != 0 || len(got.Records) != 1 {
		t.Fatalf("expected price rows with no indicator columns, got %+v", got)
	}
}

func TestUnion(t *testing.T) {
	series := []models.IndicatorSeries{
		{Name: "Unemployment", Observations: []models.Observation{
			{Date: day("2022-12-31"), Value: 3.6},
		}},
		{Name: "GDP_Current", Observations: []models.Observation{
			{Date: day("2023-01-01"), Value: 26000},
			{Date: day("2022-12-31"), Value: 25700},
		}},
	}

	m := Union(series)
	if len(m.Columns) != 2 || m.Columns[0] != "GDP_Current" || m.Columns[1] != "Unemployment" {
		t.Fatalf("expected columns sorted by name, got %v", m.Columns)
	}
	if len(m.Rows) != 2 || !m.Rows[0].Date.Equal(day("2022-12-31")) {
		t.Fatalf("expected 2 ascending rows, got %+v", m.Rows)
	}
	if m.Rows[1].Values[1].Valid {
		t.Fatalf("expected no Unemployment value on 2023-01-01")
	}
	if m.Rows[0].Values[0].Float64 != 25700 || m.Rows[0].Values[1].Float64 != 3.6 {
		t.Fatalf("unexpected first row %v", m.Rows[0].Values)
	}
}
