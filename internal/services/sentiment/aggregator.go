// Package sentiment aggregates headline scores per calendar date.
package sentiment

import (
	"fmt"
	"sort"
	"time"

	"FinMerge/internal/domain/models"
	"FinMerge/pkg/util"

	"github.com/montanaflynn/stats"
)

// Daily groups scores by calendar date and returns mean, count and sample standard
// deviation per date, ascending. A date with a single score has a deviation of 0.
// Dates with no scores are not emitted.
func Daily(rows []models.ScoredHeadline) ([]models.DailySentiment, error) {
	groups := make(map[time.Time]stats.Float64Data)
	for _, r := range rows {
		d := util.CalendarDate(r.Date)
		groups[d] = append(groups[d], r.Score)
	}

	out := make([]models.DailySentiment, 0, len(groups))
	for d, scores := range groups {
		mean, err := stats.Mean(scores)
		if err != nil {
			return nil, fmt.Errorf("mean for %s: %w", util.FormatDay(d), err)
		}

		std := 0.0
		if len(scores) > 1 {
			std, err = stats.StandardDeviationSample(scores)
			if err != nil {
				return nil, fmt.Errorf("std for %s: %w", util.FormatDay(d), err)
			}
		}

		out = append(out, models.DailySentiment{
			Date:          d,
			AvgSentiment:  mean,
			HeadlineCount: len(scores),
			SentimentStd:  std,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Summary describes a daily series the way the run log reports it.
type Summary struct {
	Days          int
	Headlines     int
	MeanSentiment float64
	PositiveDays  int
	NegativeDays  int
	NeutralDays   int
	From, To      time.Time
}

func Summarize(days []models.DailySentiment) Summary {
	s := Summary{Days: len(days)}
	if len(days) == 0 {
		return s
	}

	avgs := make(stats.Float64Data, 0, len(days))
	for _, d := range days {
		s.Headlines += d.HeadlineCount
		avgs = append(avgs, d.AvgSentiment)
		switch {
		case d.AvgSentiment > 0:
			s.PositiveDays++
		case d.AvgSentiment < 0:
			s.NegativeDays++
		default:
			s.NeutralDays++
		}
	}
	s.MeanSentiment, _ = stats.Mean(avgs)
	s.From, s.To = days[0].Date, days[len(days)-1].Date
	return s
}
