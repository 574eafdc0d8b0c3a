package worldbank

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"FinMerge/internal/domain/failure"
	"FinMerge/internal/domain/models"
	"FinMerge/internal/service/ratelimit"
	"FinMerge/pkg/cache"
	xhttp "FinMerge/pkg/http"
	"FinMerge/pkg/util"
)

// Client reads annual indicator series from the World Bank v2 API.
type Client struct {
	http       *xhttp.Client
	limiter    *ratelimit.Limiter
	baseURL    string
	country    string
	years      int
	indicators []models.IndicatorSpec
	now        func() time.Time
}

type Option func(*Client)

// WithClock fixes the reference time used for the date range.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a World Bank source for country covering the last `years` years.
func New(hc *xhttp.Client, lim *ratelimit.Limiter, baseURL, country string, years int, indicators []models.IndicatorSpec, opts ...Option) *Client {
	c := &Client{
		http:       hc,
		limiter:    lim,
		baseURL:    strings.TrimRight(baseURL, "/"),
		country:    country,
		years:      years,
		indicators: indicators,
		now:        time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Name() string { return "worldbank" }

func (c *Client) Indicators() []models.IndicatorSpec { return c.indicators }

type wbPoint struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

// FetchSeries returns one observation per year with a value, dated on 31 December.
func (c *Client) FetchSeries(ctx context.Context, spec models.IndicatorSpec) (models.IndicatorSeries, error) {
	op := "worldbank " + spec.Code
	series := models.IndicatorSeries{Name: spec.Name}

	end := c.now().Year()
	dateRange := fmt.Sprintf("%d:%d", end-c.years, end)
	url := fmt.Sprintf("%s/country/%s/indicator/%s", c.baseURL, c.country, spec.Code)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, ratelimit.HostKey(url)); err != nil {
			return series, failure.Network(op, err)
		}
	}

	// The body is a two element array: paging metadata, then the data list (null when nothing matches).
	var parts []json.RawMessage
	err := c.http.GetJSON(ctx, &xhttp.RequestOptions{
		URL: url,
		QueryParams: map[string][]string{
			"format":   {"json"},
			"date":     {dateRange},
			"per_page": {"100"},
		},
		CacheKey: cache.Key("worldbank", c.country, spec.Code, dateRange),
	}, &parts)
	if err != nil {
		return series, failure.Wrap(op, err)
	}
	if len(parts) < 2 {
		// A single element response carries an API error message instead of data.
		return series, failure.Parsef(op, "unexpected response with %d elements", len(parts))
	}
	if string(parts[1]) == "null" {
		return series, failure.Empty(op)
	}

	var points []wbPoint
	if err := json.Unmarshal(parts[1], &points); err != nil {
		return series, failure.Parse(op, err)
	}

	for _, p := range points {
		if p.Value == nil {
			continue
		}
		year, err := strconv.Atoi(strings.TrimSpace(p.Date))
		if err != nil {
			return series, failure.Parsef(op, "bad year %q", p.Date)
		}
		series.Observations = append(series.Observations, models.Observation{
			Date:  util.YearEnd(year),
			Value: *p.Value,
		})
	}
	if len(series.Observations) == 0 {
		return series, failure.Empty(op)
	}
	return series, nil
}
