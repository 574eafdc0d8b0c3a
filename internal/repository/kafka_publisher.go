package repository

import (
	"context"

	"FinMerge/internal/domain/models"
	pkgkafka "FinMerge/pkg/kafka"
	"FinMerge/pkg/util"
)

// KafkaPublisher emits headlines keyed by ticker and daily sentiment keyed by date.
type KafkaPublisher struct {
	producer       *pkgkafka.Producer
	headlinesTopic string
	sentimentTopic string
}

func NewKafkaPublisher(producer *pkgkafka.Producer, headlinesTopic, sentimentTopic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, headlinesTopic: headlinesTopic, sentimentTopic: sentimentTopic}
}

type headlineMessage struct {
	RunID    string `json:"run_id"`
	Ticker   string `json:"ticker"`
	Headline string `json:"headline"`
	Date     string `json:"date"`
	Source   string `json:"source"`
	Quality  string `json:"quality"`
}

type dailySentimentMessage struct {
	RunID         string  `json:"run_id"`
	Date          string  `json:"date"`
	AvgSentiment  float64 `json:"avg_sentiment"`
	HeadlineCount int     `json:"headline_count"`
	SentimentStd  float64 `json:"sentiment_std"`
}

func (p *KafkaPublisher) PublishHeadlines(ctx context.Context, runID string, hs []models.Headline) error {
	if len(hs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(hs))
	for i, h := range hs {
		msgs[i] = pkgkafka.Message{
			Key: []byte(h.Ticker),
			Value: headlineMessage{
				RunID:    runID,
				Ticker:   h.Ticker,
				Headline: h.Text,
				Date:     h.DateLabel(),
				Source:   h.Source,
				Quality:  string(h.Quality),
			},
		}
	}
	return p.producer.PublishBatch(ctx, p.headlinesTopic, msgs)
}

func (p *KafkaPublisher) PublishDailySentiment(ctx context.Context, runID string, days []models.DailySentiment) error {
	if len(days) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(days))
	for i, d := range days {
		day := util.FormatDay(d.Date)
		msgs[i] = pkgkafka.Message{
			Key: []byte(day),
			Value: dailySentimentMessage{
				RunID:         runID,
				Date:          day,
				AvgSentiment:  d.AvgSentiment,
				HeadlineCount: d.HeadlineCount,
				SentimentStd:  d.SentimentStd,
			},
		}
	}
	return p.producer.PublishBatch(ctx, p.sentimentTopic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
