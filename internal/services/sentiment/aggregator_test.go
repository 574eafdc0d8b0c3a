package sentiment

import (
	"context"
	"math"
	"testing"
	"time"

	"FinMerge/internal/domain/models"
)

func scored(day string, score float64) models.ScoredHeadline {
	d, _ := time.Parse("2006-01-02", day)
	return models.ScoredHeadline{Date: d, Score: score}
}

func TestDaily(t *testing.T) {
	got, err := Daily([]models.ScoredHeadline{
		scored("2024-01-02", 0),
		scored("2024-01-01", 1),
		scored("2024-01-01", -1),
	})
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 days, got %d", len(got))
	}

	first, second := got[0], got[1]
	if first.Date.Format("2006-01-02") != "2024-01-01" || second.Date.Format("2006-01-02") != "2024-01-02" {
		t.Fatalf("expected ascending dates, got %v %v", first.Date, second.Date)
	}
	if first.AvgSentiment != 0 || first.HeadlineCount != 2 || math.Abs(first.SentimentStd-math.Sqrt2) > 1e-12 {
		t.Fatalf("unexpected first day %+v", first)
	}
	if second.AvgSentiment != 0 || second.HeadlineCount != 1 || second.SentimentStd != 0 {
		t.Fatalf("unexpected second day %+v", second)
	}
}

func TestDailyNoZeroFill(t *testing.T) {
	got, err := Daily([]models.ScoredHeadline{scored("2024-01-01", 1), scored("2024-01-05", -1)})
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected only dates present in input, got %d rows", len(got))
	}
	if out, _ := Daily(nil); len(out) != 0 {
		t.Fatalf("expected no rows for no input")
	}
}

func TestSummarize(t *testing.T) {
	days, _ := Daily([]models.ScoredHeadline{
		scored("2024-01-01", 1), scored("2024-01-02", -1), scored("2024-01-03", 0), scored("2024-01-03", 0),
	})
	s := Summarize(days)
	if s.Days != 3 || s.Headlines != 4 || s.PositiveDays != 1 || s.NegativeDays != 1 || s.NeutralDays != 1 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if s.From.Format("2006-01-02") != "2024-01-01" || s.To.Format("2006-01-02") != "2024-01-03" {
		t.Fatalf("unexpected range %v..%v", s.From, s.To)
	}
}

func TestLexicon(t *testing.T) {
	got, err := NewLexicon().Classify(context.Background(), []string{
		"Apple beats estimates as iPhone sales surge",
		"Tesla shares slump after recall",
		"Microsoft to hold annual meeting",
	})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	want := []float64{1, -1, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("text %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}
