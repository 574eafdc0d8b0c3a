package models

import (
	"time"

	"FinMerge/pkg/util"

	"github.com/guregu/null/v6"
)

type Quality string

const (
	QualityPrimary Quality = "primary"
	QualityLow     Quality = "low"
)

// Labels written in place of a date for undated headlines.
const (
	SentinelUnknown = "Unknown"
	SentinelRecent  = "Recent"
)

// Headline is one scraped news title.
type Headline struct {
	Ticker   string    `json:"ticker"`
	Text     string    `json:"headline"`
	Date     null.Time `json:"date"`
	Source   string    `json:"source"`
	Quality  Quality   `json:"quality"`
	Sentinel string    `json:"-"`
}

// DateLabel is the persisted date column: YYYY-MM-DD, or the sentinel when undated.
func (h Headline) DateLabel() string {
	if h.Date.Valid {
		return h.Date.Time.Format(util.DayLayout)
	}
	if h.Sentinel != "" {
		return h.Sentinel
	}
	return SentinelUnknown
}

// Dated builds a headline date from a resolved time.
func Dated(t time.Time) null.Time { return null.TimeFrom(t) }
