package usecase

import (
	"context"

	"FinMerge/internal/domain/repository"
	applogger "FinMerge/pkg/logger"
)

// Sinks are the optional copies written after the CSV output succeeded.
// Their failures are logged and counted, never returned.
type Sinks struct {
	Storage   repository.Storage
	Publisher repository.Publisher
}

func (s Sinks) storage() repository.Storage {
	if s.Storage == nil {
		return repository.NoopStorage{}
	}
	return s.Storage
}

func (s Sinks) publisher() repository.Publisher {
	if s.Publisher == nil {
		return repository.NoopPublisher{}
	}
	return s.Publisher
}

// writeSink runs fn against a sink unless it is disabled.
func writeSink(ctx context.Context, sink string, target interface{}, m repository.Metrics, l *applogger.Logger, item string, fn func(context.Context) error) {
	if repository.IsNoop(target) {
		return
	}
	err := fn(ctx)
	m.RecordSinkWrite(sink, err == nil)
	if err != nil {
		l.Warn("sink write failed",
			applogger.String("sink", sink),
			applogger.String("item", item),
			applogger.Error(err),
		)
	}
}
