package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"FinMerge/internal/domain/failure"
	"FinMerge/internal/domain/models"
	"FinMerge/internal/service/ratelimit"
	xhttp "FinMerge/pkg/http"
	"FinMerge/pkg/util"
)

// Client reads daily history and company metadata from Yahoo Finance.
type Client struct {
	http    *xhttp.Client
	limiter *ratelimit.Limiter
	baseURL string
}

func New(hc *xhttp.Client, lim *ratelimit.Limiter, baseURL string) *Client {
	return &Client{
		http:    hc,
		limiter: lim,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				GMTOffset int64 `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				LongName  string `json:"longName"`
				ShortName string `json:"shortName"`
				MarketCap struct {
					Raw float64 `json:"raw"`
				} `json:"marketCap"`
			} `json:"price"`
			AssetProfile struct {
				Sector string `json:"sector"`
			} `json:"assetProfile"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

func (c *Client) wait(ctx context.Context, rawURL string) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx, ratelimit.HostKey(rawURL))
}

// History returns daily bars in [from, to], ascending by exchange-local date.
// Bars without a close are dropped; a repeated date keeps the later bar.
func (c *Client) History(ctx context.Context, ticker string, from, to time.Time) ([]models.PriceRecord, error) {
	op := "yahoo chart " + ticker
	u := fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, url.PathEscape(ticker))
	if err := c.wait(ctx, u); err != nil {
		return nil, failure.Network(op, err)
	}

	var resp chartResponse
	err := c.http.GetJSON(ctx, &xhttp.RequestOptions{
		URL: u,
		QueryParams: map[string][]string{
			"period1":  {strconv.FormatInt(from.Unix(), 10)},
			"period2":  {strconv.FormatInt(to.Unix(), 10)},
			"interval": {"1d"},
			"events":   {"history"},
		},
	}, &resp)
	if err != nil {
		return nil, failure.Wrap(op, err)
	}
	if e := resp.Chart.Error; e != nil {
		return nil, failure.Parsef(op, "%s: %s", e.Code, e.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, failure.Empty(op)
	}

	res := resp.Chart.Result[0]
	if len(res.Timestamp) == 0 || len(res.Indicators.Quote) == 0 {
		return nil, failure.Empty(op)
	}
	q := res.Indicators.Quote[0]
	n := len(res.Timestamp)
	if len(q.Close) != n || len(q.Open) != n || len(q.High) != n || len(q.Low) != n {
		return nil, failure.Parsef(op, "quote arrays do not match %d timestamps", n)
	}

	byDay := make(map[time.Time]int, n)
	var out []models.PriceRecord
	for i, ts := range res.Timestamp {
		if q.Close[i] == nil {
			continue
		}
		day := util.CalendarDate(time.Unix(ts+res.Meta.GMTOffset, 0).UTC())
		rec := models.PriceRecord{
			Date:  day,
			Open:  dec(q.Open[i]),
			High:  dec(q.High[i]),
			Low:   dec(q.Low[i]),
			Close: dec(q.Close[i]),
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			rec.Volume = *q.Volume[i]
		}
		if j, ok := byDay[day]; ok {
			out[j] = rec
			continue
		}
		byDay[day] = len(out)
		out = append(out, rec)
	}
	if len(out) == 0 {
		return nil, failure.Empty(op)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func dec(v *float64) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*v)
}

func (c *Client) summary(ctx context.Context, ticker, modules string) (*quoteSummaryResponse, error) {
	op := "yahoo quoteSummary " + ticker
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s", c.baseURL, url.PathEscape(ticker))
	if err := c.wait(ctx, u); err != nil {
		return nil, failure.Network(op, err)
	}

	var resp quoteSummaryResponse
	err := c.http.GetJSON(ctx, &xhttp.RequestOptions{
		URL:         u,
		QueryParams: map[string][]string{"modules": {modules}},
	}, &resp)
	if err != nil {
		return nil, failure.Wrap(op, err)
	}
	if e := resp.QuoteSummary.Error; e != nil {
		return nil, failure.Parsef(op, "%s: %s", e.Code, e.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, failure.Empty(op)
	}
	return &resp, nil
}

// Info returns the company long name and sector. Missing fields fall back to the
// ticker and UnknownSector.
func (c *Client) Info(ctx context.Context, ticker string) (models.CompanyInfo, error) {
	resp, err := c.summary(ctx, ticker, "price,assetProfile")
	if err != nil {
		return models.FallbackInfo(ticker), err
	}
	r := resp.QuoteSummary.Result[0]
	info := models.FallbackInfo(ticker)
	switch {
	case r.Price.LongName != "":
		info.Name = r.Price.LongName
	case r.Price.ShortName != "":
		info.Name = r.Price.ShortName
	}
	if r.AssetProfile.Sector != "" {
		info.Sector = r.AssetProfile.Sector
	}
	return info, nil
}

// MarketCap returns the current market capitalization in the quote currency.
func (c *Client) MarketCap(ctx context.Context, ticker string) (float64, error) {
	resp, err := c.summary(ctx, ticker, "price")
	if err != nil {
		return 0, err
	}
	mc := resp.QuoteSummary.Result[0].Price.MarketCap.Raw
	if mc <= 0 {
		return 0, failure.Empty("yahoo marketCap " + ticker)
	}
	return mc, nil
}
