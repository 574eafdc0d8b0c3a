package models

// Requests for the results API.

type MergedRequest struct {
	Ticker string `param:"ticker" json:"ticker" validate:"required,max=16"`
	Limit  int    `query:"limit" json:"limit" default:"0" validate:"gte=0,lte=10000"`
}

type HeadlinesRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"omitempty,max=16"`
	Limit  int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=5000"`
}

type SentimentRequest struct {
	From string `query:"from" json:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `query:"to" json:"to" validate:"omitempty,datetime=2006-01-02"`
}
