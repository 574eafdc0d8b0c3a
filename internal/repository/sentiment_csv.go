package repository

import (
	"strconv"
	"strings"
	"time"

	"FinMerge/internal/domain/failure"
	"FinMerge/internal/domain/models"
	"FinMerge/pkg/util"
)

// gdeltLayouts are the compact timestamps found in GDELT exports.
var gdeltLayouts = []string{"20060102150405", "20060102"}

// parseInputDate accepts YYYY-MM-DD with an optional time part, RFC 3339, and GDELT compact dates.
func parseInputDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if d, ok := util.ParseDay(s); ok {
		return d, true
	}
	for _, layout := range gdeltLayouts {
		if len(s) != len(layout) {
			continue
		}
		if t, err := time.Parse(layout, s); err == nil {
			return util.CalendarDate(t), true
		}
	}
	if t, ok := util.ParseTime(s); ok {
		return util.CalendarDate(t), true
	}
	return time.Time{}, false
}

// LoadScoringInput reads headlines to score. Columns are matched case-insensitively; date and
// headline are required, ticker and source are carried when present. Rows with a blank headline
// or an unparseable date are dropped and counted.
func (s *CSVStore) LoadScoringInput(name string) ([]models.ScoredHeadline, int, error) {
	tbl, err := readTable(s.dataPath(name), true)
	if err != nil {
		return nil, 0, err
	}
	cols, err := tbl.require("date", "headline")
	if err != nil {
		return nil, 0, err
	}
	tickerCol, sourceCol := tbl.col("ticker"), tbl.col("source")

	var (
		out     = make([]models.ScoredHeadline, 0, len(tbl.rows))
		dropped int
	)
	for _, row := range tbl.rows {
		text := strings.TrimSpace(field(row, cols[1]))
		if text == "" {
			dropped++
			continue
		}
		day, ok := parseInputDate(field(row, cols[0]))
		if !ok {
			dropped++
			continue
		}
		out = append(out, models.ScoredHeadline{
			Date:     day,
			Ticker:   field(row, tickerCol),
			Source:   field(row, sourceCol),
			Headline: text,
		})
	}
	return out, dropped, nil
}

// SaveScored writes date,ticker,source,headline,sentiment_score.
func (s *CSVStore) SaveScored(name string, rows []models.ScoredHeadline) error {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{util.FormatDay(r.Date), r.Ticker, r.Source, r.Headline, formatFloat(r.Score)}
	}
	return writeAtomic(s.dataPath(name), []string{"date", "ticker", "source", "headline", "sentiment_score"}, out)
}

var dailyHeader = []string{"date", "avg_sentiment", "headline_count", "sentiment_std"}

// SaveDaily writes date,avg_sentiment,headline_count,sentiment_std.
func (s *CSVStore) SaveDaily(name string, rows []models.DailySentiment) error {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{
			util.FormatDay(r.Date),
			formatFloat(r.AvgSentiment),
			strconv.Itoa(r.HeadlineCount),
			formatFloat(r.SentimentStd),
		}
	}
	return writeAtomic(s.dataPath(name), dailyHeader, out)
}

func (s *CSVStore) LoadDaily(name string) ([]models.DailySentiment, error) {
	tbl, err := readTable(s.dataPath(name), true)
	if err != nil {
		return nil, err
	}
	cols, err := tbl.require(dailyHeader...)
	if err != nil {
		return nil, err
	}
	op := "read " + tbl.path

	out := make([]models.DailySentiment, 0, len(tbl.rows))
	for n, row := range tbl.rows {
		day, ok := util.ParseDay(field(row, cols[0]))
		if !ok {
			return nil, failure.Parsef(op, "line %d: bad date %q", n+2, field(row, cols[0]))
		}
		avg, err1 := strconv.ParseFloat(field(row, cols[1]), 64)
		count, err2 := strconv.Atoi(field(row, cols[2]))
		std, err3 := strconv.ParseFloat(field(row, cols[3]), 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, failure.Parsef(op, "line %d: bad numeric field", n+2)
		}
		out = append(out, models.DailySentiment{Date: day, AvgSentiment: avg, HeadlineCount: count, SentimentStd: std})
	}
	return out, nil
}
