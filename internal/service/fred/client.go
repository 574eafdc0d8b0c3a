package fred

import (
	"context"
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

// missingValue is how FRED publishes an observation with no value.
const missingValue = "."

// Client reads series observations from the FRED API.
type Client struct {
	http    *xhttp.Client
	limiter *ratelimit.Limiter
	baseURL string
	apiKey  string
	years   int
	series  []models.IndicatorSpec
	now     func() time.Time
}

type Option func(*Client)

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func New(hc *xhttp.Client, lim *ratelimit.Limiter, baseURL, apiKey string, years int, series []models.IndicatorSpec, opts ...Option) *Client {
	c := &Client{
		http:    hc,
		limiter: lim,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		years:   years,
		series:  series,
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Name() string { return "fred" }

func (c *Client) Indicators() []models.IndicatorSpec { return c.series }

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// FetchSeries returns the observations of the last `years` * 365 days, skipping missing values.
func (c *Client) FetchSeries(ctx context.Context, spec models.IndicatorSpec) (models.IndicatorSeries, error) {
	op := "fred " + spec.Code
	series := models.IndicatorSeries{Name: spec.Name}

	end := c.now()
	start := end.AddDate(0, 0, -365*c.years)
	from, to := util.FormatDay(start), util.FormatDay(end)
	url := c.baseURL + "/series/observations"

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, ratelimit.HostKey(url)); err != nil {
			return series, failure.Network(op, err)
		}
	}

	var resp observationsResponse
	err := c.http.GetJSON(ctx, &xhttp.RequestOptions{
		URL: url,
		QueryParams: map[string][]string{
			"series_id":         {spec.Code},
			"api_key":           {c.apiKey},
			"file_type":         {"json"},
			"observation_start": {from},
			"observation_end":   {to},
		},
		// the api key is left out so rotating it keeps cached bodies valid
		CacheKey: cache.Key("fred", spec.Code, from, to),
	}, &resp)
	if err != nil {
		return series, failure.Wrap(op, err)
	}

	for _, o := range resp.Observations {
		if o.Value == missingValue {
			continue
		}
		day, ok := util.ParseDay(o.Date)
		if !ok {
			return series, failure.Parsef(op, "bad date %q", o.Date)
		}
		v, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			return series, failure.Parsef(op, "bad value %q on %s", o.Value, o.Date)
		}
		series.Observations = append(series.Observations, models.Observation{Date: day, Value: v})
	}
	if len(series.Observations) == 0 {
		return series, failure.Empty(op)
	}
	return series, nil
}
