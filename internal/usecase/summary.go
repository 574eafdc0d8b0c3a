package usecase

import (
	"sort"
	"time"

	"FinMerge/internal/domain/failure"
	"FinMerge/internal/domain/repository"
	applogger "FinMerge/pkg/logger"
)

type Outcome string

const (
	OutcomeOK     Outcome = "ok"
	OutcomeFailed Outcome = "failed"
	OutcomeEmpty  Outcome = "empty"
)

// ItemResult is the outcome of one unit of work (an indicator, a ticker, a source page set).
type ItemResult struct {
	Stage   string
	Item    string
	Outcome Outcome
	Kind    failure.Kind
	Rows    int
	Err     error
}

// Summary collects per-item outcomes of one pipeline run and mirrors them to metrics.
type Summary struct {
	Pipeline string
	RunID    string
	Started  time.Time
	Finished time.Time
	Results  []ItemResult

	metrics repository.Metrics
}

func newSummary(pipeline, runID string, m repository.Metrics, now time.Time) *Summary {
	if m == nil {
		m = repository.NoopMetrics{}
	}
	return &Summary{Pipeline: pipeline, RunID: runID, Started: now, metrics: m}
}

func (s *Summary) OK(stage, item string, rows int) {
	s.Results = append(s.Results, ItemResult{Stage: stage, Item: item, Outcome: OutcomeOK, Rows: rows})
	s.metrics.RecordItem(s.Pipeline, string(OutcomeOK))
	s.metrics.RecordRows(s.Pipeline, rows)
}

// Record files err under the matching outcome; an EmptyResult is not a failure.
func (s *Summary) Record(stage, item string, err error) {
	kind := failure.Classify(err)
	outcome := OutcomeFailed
	if kind == failure.KindEmpty {
		outcome = OutcomeEmpty
	}
	s.Results = append(s.Results, ItemResult{Stage: stage, Item: item, Outcome: outcome, Kind: kind, Err: err})
	s.metrics.RecordItem(s.Pipeline, string(outcome))
	if outcome == OutcomeFailed {
		s.metrics.RecordError(s.Pipeline, string(kind))
	}
}

// Count returns the number of results of stage with outcome; an empty stage matches all.
func (s *Summary) Count(stage string, o Outcome) int {
	n := 0
	for _, r := range s.Results {
		if (stage == "" || r.Stage == stage) && r.Outcome == o {
			n++
		}
	}
	return n
}

// KindCounts counts failures by kind.
func (s *Summary) KindCounts() map[failure.Kind]int {
	out := make(map[failure.Kind]int)
	for _, r := range s.Results {
		if r.Outcome == OutcomeFailed {
			out[r.Kind]++
		}
	}
	return out
}

// Failed lists the failed items of stage in processing order.
func (s *Summary) Failed(stage string) []ItemResult {
	var out []ItemResult
	for _, r := range s.Results {
		if r.Stage == stage && r.Outcome == OutcomeFailed {
			out = append(out, r)
		}
	}
	return out
}

func (s *Summary) stages() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range s.Results {
		if !seen[r.Stage] {
			seen[r.Stage] = true
			out = append(out, r.Stage)
		}
	}
	return out
}

// Log writes one line per stage and one per failed item.
func (s *Summary) Log(l *applogger.Logger) {
	for _, stage := range s.stages() {
		l.Info("run summary",
			applogger.String("pipeline", s.Pipeline),
			applogger.String("run_id", s.RunID),
			applogger.String("stage", stage),
			applogger.Int("ok", s.Count(stage, OutcomeOK)),
			applogger.Int("failed", s.Count(stage, OutcomeFailed)),
			applogger.Int("empty", s.Count(stage, OutcomeEmpty)),
		)
		for _, r := range s.Failed(stage) {
			l.Warn("failed item",
				applogger.String("stage", stage),
				applogger.String("item", r.Item),
				applogger.String("kind", string(r.Kind)),
				applogger.Error(r.Err),
			)
		}
	}

	kinds := s.KindCounts()
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, string(k))
	}
	sort.Strings(names)
	for _, k := range names {
		l.Info("failures by kind",
			applogger.String("pipeline", s.Pipeline),
			applogger.String("kind", k),
			applogger.Int("count", kinds[failure.Kind(k)]),
		)
	}
	l.Info("run finished",
		applogger.String("pipeline", s.Pipeline),
		applogger.Duration("took", s.Finished.Sub(s.Started)),
	)
}
