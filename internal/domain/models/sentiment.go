package models

import "time"

// ScoredHeadline is a headline with its model score.
type ScoredHeadline struct {
	Date     time.Time `json:"date"`
	Ticker   string    `json:"ticker"`
	Source   string    `json:"source"`
	Headline string    `json:"headline"`
	Score    float64   `json:"sentiment_score"`
}

// DailySentiment aggregates the scores of one calendar date.
type DailySentiment struct {
	Date          time.Time `json:"date"`
	AvgSentiment  float64   `json:"avg_sentiment"`
	HeadlineCount int       `json:"headline_count"`
	SentimentStd  float64   `json:"sentiment_std"`
}
