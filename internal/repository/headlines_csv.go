package repository

import (
	"strings"

	"FinMerge/internal/domain/failure"
	"FinMerge/internal/domain/models"
	"FinMerge/pkg/util"
)

// SaveHeadlines writes Ticker,Headline,Date,Source and, when withQuality is set, Quality.
func (s *CSVStore) SaveHeadlines(name string, hs []models.Headline, withQuality bool) error {
	header := []string{"Ticker", "Headline", "Date", "Source"}
	if withQuality {
		header = append(header, "Quality")
	}
	rows := make([][]string, len(hs))
	for i, h := range hs {
		row := []string{h.Ticker, h.Text, h.DateLabel(), h.Source}
		if withQuality {
			row = append(row, string(h.Quality))
		}
		rows[i] = row
	}
	return writeAtomic(s.dataPath(name), header, rows)
}

// LoadHeadlines reads a headline file written by SaveHeadlines. Sentinel dates come back undated.
func (s *CSVStore) LoadHeadlines(name string) ([]models.Headline, error) {
	tbl, err := readTable(s.dataPath(name), false)
	if err != nil {
		return nil, err
	}
	cols, err := tbl.require("Ticker", "Headline", "Date", "Source")
	if err != nil {
		return nil, err
	}
	qualityCol := tbl.col("Quality")

	out := make([]models.Headline, 0, len(tbl.rows))
	for n, row := range tbl.rows {
		h := models.Headline{
			Ticker:  field(row, cols[0]),
			Text:    field(row, cols[1]),
			Source:  field(row, cols[3]),
			Quality: models.QualityPrimary,
		}
		if q := field(row, qualityCol); q != "" {
			h.Quality = models.Quality(q)
		}

		label := strings.TrimSpace(field(row, cols[2]))
		switch label {
		case models.SentinelUnknown, models.SentinelRecent, "":
			h.Sentinel = label
		default:
			day, ok := util.ParseDay(label)
			if !ok {
				return nil, failure.Parsef("read "+tbl.path, "line %d: bad date %q", n+2, label)
			}
			h.Date = models.Dated(day)
		}
		out = append(out, h)
	}
	return out, nil
}
