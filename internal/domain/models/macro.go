package models

import (
	"time"

	"github.com/guregu/null/v6"
)

// Observation is one dated value of an indicator.
type Observation struct {
	Date  time.Time
	Value float64
}

// IndicatorSeries is a named scalar series keyed by calendar date.
type IndicatorSeries struct {
	Name         string
	Observations []Observation
}

// MacroRow holds one value per MacroTable column; an invalid null.Float means no value.
type MacroRow struct {
	Date   time.Time
	Values []null.Float
}

// MacroTable is the outer union of indicator series on a date index.
// Columns are sorted by name; rows are unique by date and ascending.
type MacroTable struct {
	Columns []string
	Rows    []MacroRow
}

// Empty reports whether the table carries no data rows.
func (m *MacroTable) Empty() bool { return m == nil || len(m.Rows) == 0 }

// IndicatorSpec maps a source code to the column name it is published under.
type IndicatorSpec struct {
	Code string
	Name string
}
