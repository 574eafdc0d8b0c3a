// Package aligner merges irregular macroeconomic series onto daily price records
// with a backward as-of join.
package aligner

import (
	"sort"

	"FinMerge/internal/domain/failure"
	"FinMerge/internal/domain/models"
	"FinMerge/pkg/util"

	"github.com/guregu/null/v6"
)

// Mode selects how indicator values are looked up for a price date.
type Mode string

const (
	// ModeRow reads every column from the latest macro row dated on or before the price date.
	// Columns empty in that row stay empty.
	ModeRow Mode = "row"
	// ModeColumn carries each column's last observed value forward independently.
	ModeColumn Mode = "column"
)

type Aligner struct {
	mode Mode
}

func New(mode Mode) *Aligner {
	if mode != ModeColumn {
		mode = ModeRow
	}
	return &Aligner{mode: mode}
}

// Union builds a MacroTable from series: columns sorted by name, one row per distinct
// calendar date, ascending. A later observation of the same column and date wins.
func Union(series []models.IndicatorSeries) *models.MacroTable {
	names := make([]string, 0, len(series))
	seen := make(map[string]bool, len(series))
	for _, s := range series {
		if !seen[s.Name] {
			seen[s.Name] = true
			names = append(names, s.Name)
		}
	}
	sort.Strings(names)

	col := make(map[string]int, len(names))
	for i, n := range names {
		col[n] = i
	}

	byDate := make(map[int64]*models.MacroRow)
	for _, s := range series {
		ci := col[s.Name]
		for _, o := range s.Observations {
			d := util.CalendarDate(o.Date)
			row, ok := byDate[d.Unix()]
			if !ok {
				row = &models.MacroRow{Date: d, Values: make([]null.Float, len(names))}
				byDate[d.Unix()] = row
			}
			row.Values[ci] = null.FloatFrom(o.Value)
		}
	}

	rows := make([]models.MacroRow, 0, len(byDate))
	for _, r := range byDate {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	return &models.MacroTable{Columns: names, Rows: rows}
}

// Merge produces one MergedRecord per price record, in ascending date order.
// Inputs are not modified; both sides are copied, normalized to calendar dates and sorted first.
// Duplicate price dates are a parse failure.
func (a *Aligner) Merge(p *models.PriceTable, m *models.MacroTable) (*models.MergedTable, error) {
	if m == nil {
		m = &models.MacroTable{}
	}

	prices := make([]models.PriceRecord, len(p.Records))
	copy(prices, p.Records)
	for i := range prices {
		prices[i].Date = util.CalendarDate(prices[i].Date)
	}
	sort.SliceStable(prices, func(i, j int) bool { return prices[i].Date.Before(prices[j].Date) })
	for i := 1; i < len(prices); i++ {
		if prices[i].Date.Equal(prices[i-1].Date) {
			return nil, failure.Parsef("merge "+p.Ticker, "duplicate price date %s", util.FormatDay(prices[i].Date))
		}
	}

	rows := make([]models.MacroRow, len(m.Rows))
	copy(rows, m.Rows)
	for i := range rows {
		rows[i].Date = util.CalendarDate(rows[i].Date)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	ncol := len(m.Columns)
	out := &models.MergedTable{
		Ticker:  p.Ticker,
		Columns: append([]string(nil), m.Columns...),
		Records: make([]models.MergedRecord, 0, len(prices)),
	}

	carried := make([]null.Float, ncol)
	j := -1
	for _, pr := range prices {
		for j+1 < len(rows) && !rows[j+1].Date.After(pr.Date) {
			j++
			if a.mode == ModeColumn {
				for c, v := range rows[j].Values {
					if c < ncol && v.Valid {
						carried[c] = v
					}
				}
			}
		}

		vals := make([]null.Float, ncol)
		switch {
		case j < 0:
		case a.mode == ModeColumn:
			copy(vals, carried)
		default:
			// equal dates keep the last row, as the stable sort left it
			copy(vals, rows[j].Values)
		}
		out.Records = append(out.Records, models.MergedRecord{PriceRecord: pr, Indicators: vals})
	}

	return out, nil
}
