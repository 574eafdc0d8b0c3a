package repository

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"

	"FinMerge/internal/domain/failure"
	"FinMerge/internal/domain/models"
)

func newStore(t *testing.T) (*CSVStore, string) {
	t.Helper()
	dir := t.TempDir()
	return NewCSVStore(dir, filepath.Join(dir, "raw"), filepath.Join(dir, "processed")), dir
}

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func price(date, close string) models.PriceRecord {
	c := decimal.RequireFromString(close)
	return models.PriceRecord{
		Date: day(date), Open: c, High: c, Low: c, Close: c,
		Volume: 1000, CompanyName: "Apple Inc.", Sector: "Technology",
	}
}

func TestPricesRoundTrip(t *testing.T) {
	s, _ := newStore(t)
	in := &models.PriceTable{Ticker: "AAPL", Records: []models.PriceRecord{
		price("2024-03-01", "179.66"),
		price("2024-03-04", "175.10"),
	}}
	if err := s.SavePrices(in); err != nil {
		t.Fatalf("SavePrices: %v", err)
	}

	out, err := s.LoadPrices("AAPL")
	if err != nil {
		t.Fatalf("LoadPrices: %v", err)
	}
	if len(out.Records) != 2 {
		t.Fatalf("got %d records", len(out.Records))
	}
	if !out.Records[1].Close.Equal(decimal.RequireFromString("175.1")) {
		t.Fatalf("close = %s", out.Records[1].Close)
	}
	if out.Records[0].CompanyName != "Apple Inc." || out.Records[0].Sector != "Technology" {
		t.Fatalf("metadata = %+v", out.Records[0])
	}

	tickers, err := s.ListTickers()
	if err != nil || !reflect.DeepEqual(tickers, []string{"AAPL"}) {
		t.Fatalf("ListTickers = %v, %v", tickers, err)
	}
}

func TestLoadPricesAcceptsTimestampsAndFloatVolume(t *testing.T) {
	s, dir := newStore(t)
	raw := "Date,Open,High,Low,Close,Volume\n" +
		"2024-03-01 00:00:00-05:00,179.55,180.53,177.38,179.66,73488000.0\n"
	if err := os.MkdirAll(filepath.Join(dir, "raw"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "raw", "AAPL"+RawSuffix), []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := s.LoadPrices("AAPL")
	if err != nil {
		t.Fatalf("LoadPrices: %v", err)
	}
	r := out.Records[0]
	if !r.Date.Equal(day("2024-03-01")) || r.Volume != 73488000 || r.CompanyName != "" {
		t.Fatalf("record = %+v", r)
	}
}

func TestLoadPricesMissingColumn(t *testing.T) {
	s, dir := newStore(t)
	os.MkdirAll(filepath.Join(dir, "raw"), 0o755)
	os.WriteFile(filepath.Join(dir, "raw", "BAD"+RawSuffix), []byte("Date,Open\n2024-03-01,1\n"), 0o644)

	_, err := s.LoadPrices("BAD")
	if failure.Classify(err) != failure.KindParse {
		t.Fatalf("expected parse failure, got %v", err)
	}
	if _, err := s.LoadPrices("MISSING"); failure.Classify(err) != failure.KindParse {
		t.Fatalf("expected parse failure for missing file, got %v", err)
	}
}

func TestSaveMergedEmptyForNoValue(t *testing.T) {
	s, dir := newStore(t)
	mt := &models.MergedTable{
		Ticker:  "MSFT",
		Columns: []string{"GDP_Growth", "Inflation"},
		Records: []models.MergedRecord{
			{PriceRecord: price("2024-01-02", "370.87"), Indicators: []null.Float{null.FloatFrom(2.5), {}}},
			{PriceRecord: price("2024-01-03", "370.6"), Indicators: []null.Float{null.FloatFrom(2.5), null.FloatFrom(0)}},
		},
	}
	if err := s.SaveMerged(mt); err != nil {
		t.Fatalf("SaveMerged: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "processed", "MSFT"+RawSuffix))
	if err != nil {
		t.Fatal(err)
	}
	want := "Date,Open,High,Low,Close,Volume,Company_Name,Sector,GDP_Growth,Inflation\n" +
		"2024-01-02,370.87,370.87,370.87,370.87,1000,Apple Inc.,Technology,2.5,\n" +
		"2024-01-03,370.6,370.6,370.6,370.6,1000,Apple Inc.,Technology,2.5,0\n"
	if string(b) != want {
		t.Fatalf("file =\n%s\nwant\n%s", b, want)
	}

	back, err := s.LoadMerged("MSFT")
	if err != nil {
		t.Fatalf("LoadMerged: %v", err)
	}
	if !reflect.DeepEqual(back.Columns, mt.Columns) {
		t.Fatalf("columns = %v", back.Columns)
	}
	if back.Records[0].Indicators[1].Valid || !back.Records[1].Indicators[1].Valid {
		t.Fatalf("indicators = %+v", back.Records)
	}
}

func TestWritesAreByteIdentical(t *testing.T) {
	s, dir := newStore(t)
	mt := &models.MergedTable{
		Ticker:  "AAPL",
		Columns: []string{"GDP"},
		Records: []models.MergedRecord{{PriceRecord: price("2024-01-02", "185.64"), Indicators: []null.Float{null.FloatFrom(1.25)}}},
	}
	path := filepath.Join(dir, "processed", "AAPL"+RawSuffix)

	if err := s.SaveMerged(mt); err != nil {
		t.Fatal(err)
	}
	first, _ := os.ReadFile(path)
	if err := s.SaveMerged(mt); err != nil {
		t.Fatal(err)
	}
	second, _ := os.ReadFile(path)
	if !bytes.Equal(first, second) {
		t.Fatal("second write differs from the first")
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("leftover files: %v", entries)
	}
}

func TestHeadlinesRoundTrip(t *testing.T) {
	s, dir := newStore(t)
	hs := []models.Headline{
		{Ticker: "AAPL", Text: "Apple, Inc. unveils new iPad", Date: models.Dated(day("2024-03-05")), Source: "Yahoo Finance", Quality: models.QualityPrimary},
		{Ticker: "AAPL", Text: "Apple shares slip", Source: "MarketWatch", Quality: models.QualityLow, Sentinel: models.SentinelRecent},
	}
	if err := s.SaveHeadlines("news.csv", hs, true); err != nil {
		t.Fatalf("SaveHeadlines: %v", err)
	}

	b, _ := os.ReadFile(filepath.Join(dir, "news.csv"))
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if lines[0] != "Ticker,Headline,Date,Source,Quality" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != `AAPL,"Apple, Inc. unveils new iPad",2024-03-05,Yahoo Finance,primary` {
		t.Fatalf("row = %q", lines[1])
	}
	if lines[2] != "AAPL,Apple shares slip,Recent,MarketWatch,low" {
		t.Fatalf("row = %q", lines[2])
	}

	back, err := s.LoadHeadlines("news.csv")
	if err != nil {
		t.Fatalf("LoadHeadlines: %v", err)
	}
	if !reflect.DeepEqual(back, hs) {
		t.Fatalf("round trip = %+v", back)
	}
}

func TestLoadScoringInput(t *testing.T) {
	s, dir := newStore(t)
	in := "DATE, Headline ,Source\n" +
		"2024-03-01,Stocks rally on rate hopes,gdelt\n" +
		"20240302101500,Oil slides,gdelt\n" +
		"2024-03-03,   ,gdelt\n" +
		"not a date,Something,gdelt\n" +
		"20240304,Fed holds,gdelt\n"
	os.WriteFile(filepath.Join(dir, "gdelt.csv"), []byte(in), 0o644)

	rows, dropped, err := s.LoadScoringInput("gdelt.csv")
	if err != nil {
		t.Fatalf("LoadScoringInput: %v", err)
	}
	if dropped != 2 {
		t.Fatalf("dropped = %d", dropped)
	}
	var got []string
	for _, r := range rows {
		got = append(got, r.Date.Format("2006-01-02")+" "+r.Headline)
	}
	want := []string{"2024-03-01 Stocks rally on rate hopes", "2024-03-02 Oil slides", "2024-03-04 Fed holds"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v", got)
	}
	if rows[0].Source != "gdelt" || rows[0].Ticker != "" {
		t.Fatalf("row = %+v", rows[0])
	}
}

func TestLoadScoringInputMissingHeadline(t *testing.T) {
	s, dir := newStore(t)
	os.WriteFile(filepath.Join(dir, "x.csv"), []byte("date,title\n2024-03-01,x\n"), 0o644)
	if _, _, err := s.LoadScoringInput("x.csv"); failure.Classify(err) != failure.KindParse {
		t.Fatalf("expected parse failure, got %v", err)
	}
}

func TestDailyRoundTrip(t *testing.T) {
	s, dir := newStore(t)
	days := []models.DailySentiment{
		{Date: day("2024-01-01"), AvgSentiment: 0, HeadlineCount: 2, SentimentStd: 1.4142135623730951},
		{Date: day("2024-01-02"), AvgSentiment: 1, HeadlineCount: 1, SentimentStd: 0},
	}
	if err := s.SaveDaily("daily.csv", days); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(filepath.Join(dir, "daily.csv"))
	want := "date,avg_sentiment,headline_count,sentiment_std\n2024-01-01,0,2,1.4142135623730951\n2024-01-02,1,1,0\n"
	if string(b) != want {
		t.Fatalf("file = %q", b)
	}
	back, err := s.LoadDaily("daily.csv")
	if err != nil || !reflect.DeepEqual(back, days) {
		t.Fatalf("LoadDaily = %+v, %v", back, err)
	}
}
