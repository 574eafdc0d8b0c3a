package repository

import (
	"strconv"
	"strings"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"

	"FinMerge/internal/domain/failure"
	"FinMerge/internal/domain/models"
	"FinMerge/pkg/util"
)

var priceHeader = []string{"Date", "Open", "High", "Low", "Close", "Volume", "Company_Name", "Sector"}

func priceFields(r models.PriceRecord) []string {
	return []string{
		util.FormatDay(r.Date),
		r.Open.String(),
		r.High.String(),
		r.Low.String(),
		r.Close.String(),
		strconv.FormatInt(r.Volume, 10),
		r.CompanyName,
		r.Sector,
	}
}

// SavePrices writes data/raw/{TICKER}_historical_data.csv.
func (s *CSVStore) SavePrices(t *models.PriceTable) error {
	rows := make([][]string, len(t.Records))
	for i, r := range t.Records {
		rows[i] = priceFields(r)
	}
	return writeAtomic(s.rawPath(t.Ticker), priceHeader, rows)
}

// LoadPrices reads a raw price file. Rows keep file order; Company_Name and Sector are optional.
func (s *CSVStore) LoadPrices(ticker string) (*models.PriceTable, error) {
	tbl, err := readTable(s.rawPath(ticker), false)
	if err != nil {
		return nil, err
	}
	recs, err := parsePrices(tbl)
	if err != nil {
		return nil, err
	}
	return &models.PriceTable{Ticker: ticker, Records: recs}, nil
}

func parsePrices(tbl *table) ([]models.PriceRecord, error) {
	cols, err := tbl.require("Date", "Open", "High", "Low", "Close", "Volume")
	if err != nil {
		return nil, err
	}
	nameCol, sectorCol := tbl.col("Company_Name"), tbl.col("Sector")
	op := "read " + tbl.path

	out := make([]models.PriceRecord, 0, len(tbl.rows))
	for n, row := range tbl.rows {
		line := n + 2
		day, ok := util.ParseDay(field(row, cols[0]))
		if !ok {
			return nil, failure.Parsef(op, "line %d: bad date %q", line, field(row, cols[0]))
		}
		var ohlc [4]decimal.Decimal
		for k := 0; k < 4; k++ {
			v, err := decimal.NewFromString(strings.TrimSpace(field(row, cols[k+1])))
			if err != nil {
				return nil, failure.Parsef(op, "line %d: bad %s %q", line, priceHeader[k+1], field(row, cols[k+1]))
			}
			ohlc[k] = v
		}
		vol, err := parseVolume(field(row, cols[5]))
		if err != nil {
			return nil, failure.Parsef(op, "line %d: bad Volume %q", line, field(row, cols[5]))
		}
		out = append(out, models.PriceRecord{
			Date:        day,
			Open:        ohlc[0],
			High:        ohlc[1],
			Low:         ohlc[2],
			Close:       ohlc[3],
			Volume:      vol,
			CompanyName: field(row, nameCol),
			Sector:      field(row, sectorCol),
		})
	}
	return out, nil
}

// parseVolume accepts integers and integral floats such as "1200.0".
func parseVolume(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return d.IntPart(), nil
}

// SaveMerged writes data/processed/{TICKER}_historical_data.csv: the raw columns followed by
// one column per indicator, with an empty field for "no value".
func (s *CSVStore) SaveMerged(t *models.MergedTable) error {
	header := append(append([]string(nil), priceHeader...), t.Columns...)
	rows := make([][]string, len(t.Records))
	for i, r := range t.Records {
		row := priceFields(r.PriceRecord)
		for _, v := range r.Indicators {
			if v.Valid {
				row = append(row, formatFloat(v.Float64))
			} else {
				row = append(row, "")
			}
		}
		rows[i] = row
	}
	return writeAtomic(s.processedPath(t.Ticker), header, rows)
}

// LoadMerged reads a processed file; every column after the raw ones is an indicator.
func (s *CSVStore) LoadMerged(ticker string) (*models.MergedTable, error) {
	tbl, err := readTable(s.processedPath(ticker), false)
	if err != nil {
		return nil, err
	}
	recs, err := parsePrices(tbl)
	if err != nil {
		return nil, err
	}

	raw := make(map[string]bool, len(priceHeader))
	for _, h := range priceHeader {
		raw[h] = true
	}
	var (
		columns []string
		idx     []int
	)
	for i, h := range tbl.header {
		if !raw[h] {
			columns = append(columns, h)
			idx = append(idx, i)
		}
	}

	out := &models.MergedTable{Ticker: ticker, Columns: columns, Records: make([]models.MergedRecord, len(recs))}
	for n, row := range tbl.rows {
		vals := make([]null.Float, len(idx))
		for k, i := range idx {
			f := strings.TrimSpace(field(row, i))
			if f == "" {
				continue
			}
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, failure.Parsef("read "+tbl.path, "line %d: bad %s %q", n+2, columns[k], f)
			}
			vals[k] = null.FloatFrom(v)
		}
		out.Records[n] = models.MergedRecord{PriceRecord: recs[n], Indicators: vals}
	}
	return out, nil
}
