package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceRecord is one trading day of a ticker.
type PriceRecord struct {
	Date        time.Time       `json:"date"`
	Open        decimal.Decimal `json:"open"`
	High        decimal.Decimal `json:"high"`
	Low         decimal.Decimal `json:"low"`
	Close       decimal.Decimal `json:"close"`
	Volume      int64           `json:"volume"`
	CompanyName string          `json:"company_name"`
	Sector      string          `json:"sector"`
}

// PriceTable is the daily history of one ticker.
type PriceTable struct {
	Ticker  string
	Records []PriceRecord
}

// CompanyInfo is the metadata attached to every PriceRecord of a ticker.
type CompanyInfo struct {
	Name   string
	Sector string
}

// UnknownSector is used when the metadata lookup fails.
const UnknownSector = "Unknown"

// FallbackInfo is the metadata used when the lookup for ticker fails.
func FallbackInfo(ticker string) CompanyInfo {
	return CompanyInfo{Name: ticker, Sector: UnknownSector}
}
