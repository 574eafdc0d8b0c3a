package models

import "github.com/guregu/null/v6"

// MergedRecord is a PriceRecord with the as-of indicator values attached, one per MergedTable column.
type MergedRecord struct {
	PriceRecord
	Indicators []null.Float
}

// MergedTable is the merge output for one ticker, in price-date order.
type MergedTable struct {
	Ticker  string
	Columns []string
	Records []MergedRecord
}
