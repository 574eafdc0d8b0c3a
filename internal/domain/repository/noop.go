package repository

import (
	"context"

	"FinMerge/internal/domain/models"
)

// NoopStorage is used when the analytical sink is disabled.
type NoopStorage struct{}

func (NoopStorage) Init(context.Context) error { return nil }
func (NoopStorage) StoreMerged(context.Context, string, *models.MergedTable) error {
	return nil
}
func (NoopStorage) StoreHeadlines(context.Context, string, []models.Headline) error {
	return nil
}
func (NoopStorage) StoreDailySentiment(context.Context, string, []models.DailySentiment) error {
	return nil
}
func (NoopStorage) Health(context.Context) error { return nil }
func (NoopStorage) Close() error                 { return nil }

// NoopPublisher is used when the message sink is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishHeadlines(context.Context, string, []models.Headline) error {
	return nil
}
func (NoopPublisher) PublishDailySentiment(context.Context, string, []models.DailySentiment) error {
	return nil
}
func (NoopPublisher) Close() error { return nil }

// IsNoop reports whether v is one of the disabled sinks.
func IsNoop(v interface{}) bool {
	switch v.(type) {
	case NoopStorage, *NoopStorage, NoopPublisher, *NoopPublisher:
		return true
	}
	return false
}

// NoopMetrics discards measurements.
type NoopMetrics struct{}

func (NoopMetrics) RecordItem(string, string)     {}
func (NoopMetrics) RecordError(string, string)    {}
func (NoopMetrics) RecordSinkWrite(string, bool)  {}
func (NoopMetrics) RecordRows(string, int)        {}
func (NoopMetrics) RecordLatency(string, float64) {}
