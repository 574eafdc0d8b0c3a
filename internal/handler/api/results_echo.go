package api

import (
	"context"
	"errors"
	"io/fs"
	"regexp"
	"strings"
	"time"

	"github.com/guregu/null/v6"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"FinMerge/internal/domain/models"
	domrepo "FinMerge/internal/domain/repository"
	icache "FinMerge/internal/service/cache"
	"FinMerge/internal/service/metrics"
	"FinMerge/internal/service/ratelimit"
	xhttp "FinMerge/pkg/http"
	xlogger "FinMerge/pkg/logger"
	"FinMerge/pkg/util"
)

var tickerRe = regexp.MustCompile(`^[A-Z0-9^=-]{1,16}$`)

// Files names the artifacts served by the results API.
type Files struct {
	Headlines string
	Daily     string
}

// ResultsEchoHandler serves the CSV artifacts of the batch commands read-only.
type ResultsEchoHandler struct {
	logger    *xlogger.Logger
	merged    domrepo.MergedStore
	headlines domrepo.HeadlineStore
	sentiment domrepo.SentimentStore
	storage   domrepo.Storage
	files     Files
	cache     *icache.TTLCache
	metrics   *metrics.APIMetrics
	rl        *ratelimit.Limiter
}

func NewResultsEchoHandler(
	logger *xlogger.Logger,
	merged domrepo.MergedStore,
	headlines domrepo.HeadlineStore,
	sentiment domrepo.SentimentStore,
	storage domrepo.Storage,
	files Files,
	cache *icache.TTLCache,
	m *metrics.APIMetrics,
	rl *ratelimit.Limiter,
) *ResultsEchoHandler {
	return &ResultsEchoHandler{
		logger:    logger,
		merged:    merged,
		headlines: headlines,
		sentiment: sentiment,
		storage:   storage,
		files:     files,
		cache:     cache,
		metrics:   m,
		rl:        rl,
	}
}

func (h *ResultsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api", h.throttle)
	g.GET("/merged/:ticker", h.Merged)
	g.GET("/headlines", h.Headlines)
	g.GET("/sentiment", h.Sentiment)
}

// throttle rejects clients that exceed the per-address request budget.
func (h *ResultsEchoHandler) throttle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.rl != nil && !h.rl.Allow(c.RealIP()) {
			h.logger.Warn("results api rate limited", xlogger.String("remote", c.RealIP()))
			return xhttp.ErrorResponse(c, xhttp.TooManyRequests())
		}
		return next(c)
	}
}

type mergedRow struct {
	Date        string                `json:"date"`
	Open        decimal.Decimal       `json:"open"`
	High        decimal.Decimal       `json:"high"`
	Low         decimal.Decimal       `json:"low"`
	Close       decimal.Decimal       `json:"close"`
	Volume      int64                 `json:"volume"`
	CompanyName string                `json:"company_name"`
	Sector      string                `json:"sector"`
	Indicators  map[string]null.Float `json:"indicators"`
}

type mergedResponse struct {
	Ticker  string      `json:"ticker"`
	Columns []string    `json:"columns"`
	Rows    []mergedRow `json:"rows"`
}

// Merged returns the processed table of one ticker; limit keeps the most recent rows.
func (h *ResultsEchoHandler) Merged(c echo.Context) error {
	req := &models.MergedRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.ValidationResponse(c, verr)
	}
	ticker := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(req.Ticker), ".", "-"))
	if !tickerRe.MatchString(ticker) {
		return xhttp.ErrorResponse(c, xhttp.BadRequest("invalid ticker %q", req.Ticker))
	}

	v, err := h.load("merged:"+ticker, "merged", func() (any, error) { return h.merged.LoadMerged(ticker) })
	if err != nil {
		return h.loadError(c, "merged", err, xhttp.NotFound("no merged data for %s", ticker))
	}
	mt := v.(*models.MergedTable)

	recs := mt.Records
	if req.Limit > 0 && len(recs) > req.Limit {
		recs = recs[len(recs)-req.Limit:]
	}
	out := mergedResponse{Ticker: mt.Ticker, Columns: mt.Columns, Rows: make([]mergedRow, len(recs))}
	for i, r := range recs {
		ind := make(map[string]null.Float, len(mt.Columns))
		for k, name := range mt.Columns {
			if k < len(r.Indicators) {
				ind[name] = r.Indicators[k]
			}
		}
		out.Rows[i] = mergedRow{
			Date:        util.FormatDay(r.Date),
			Open:        r.Open,
			High:        r.High,
			Low:         r.Low,
			Close:       r.Close,
			Volume:      r.Volume,
			CompanyName: r.CompanyName,
			Sector:      r.Sector,
			Indicators:  ind,
		}
	}
	return xhttp.SuccessResponse(c, out)
}

type headlineRow struct {
	Ticker   string `json:"ticker"`
	Headline string `json:"headline"`
	Date     string `json:"date"`
	Source   string `json:"source"`
	Quality  string `json:"quality"`
}

// Headlines returns the headline file in stored order, optionally for one ticker.
func (h *ResultsEchoHandler) Headlines(c echo.Context) error {
	req := &models.HeadlinesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.ValidationResponse(c, verr)
	}

	v, err := h.load("headlines", "headlines", func() (any, error) { return h.headlines.LoadHeadlines(h.files.Headlines) })
	if err != nil {
		return h.loadError(c, "headlines", err, xhttp.NotFound("no headline file"))
	}

	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	out := make([]headlineRow, 0)
	for _, hl := range v.([]models.Headline) {
		if ticker != "" && hl.Ticker != ticker {
			continue
		}
		out = append(out, headlineRow{
			Ticker:   hl.Ticker,
			Headline: hl.Text,
			Date:     hl.DateLabel(),
			Source:   hl.Source,
			Quality:  string(hl.Quality),
		})
		if len(out) >= req.Limit {
			break
		}
	}
	return xhttp.SuccessResponse(c, out)
}

type dailyRow struct {
	Date          string  `json:"date"`
	AvgSentiment  float64 `json:"avg_sentiment"`
	HeadlineCount int     `json:"headline_count"`
	SentimentStd  float64 `json:"sentiment_std"`
}

// Sentiment returns daily aggregates inside the optional [from, to] window.
func (h *ResultsEchoHandler) Sentiment(c echo.Context) error {
	req := &models.SentimentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.ValidationResponse(c, verr)
	}
	from, _ := util.ParseDay(req.From)
	to, _ := util.ParseDay(req.To)
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return xhttp.ErrorResponse(c, xhttp.BadRequest("to must not be before from"))
	}

	v, err := h.load("daily", "daily_sentiment", func() (any, error) { return h.sentiment.LoadDaily(h.files.Daily) })
	if err != nil {
		return h.loadError(c, "daily_sentiment", err, xhttp.NotFound("no daily sentiment file"))
	}

	out := make([]dailyRow, 0)
	for _, d := range v.([]models.DailySentiment) {
		if (!from.IsZero() && d.Date.Before(from)) || (!to.IsZero() && d.Date.After(to)) {
			continue
		}
		out = append(out, dailyRow{
			Date:          util.FormatDay(d.Date),
			AvgSentiment:  d.AvgSentiment,
			HeadlineCount: d.HeadlineCount,
			SentimentStd:  d.SentimentStd,
		})
	}
	return xhttp.SuccessResponse(c, out)
}

func (h *ResultsEchoHandler) Health(c echo.Context) error {
	status := map[string]string{"status": "ok"}
	if h.storage != nil && !domrepo.IsNoop(h.storage) {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.storage.Health(ctx); err != nil {
			h.logger.Warn("storage health check failed", xlogger.Error(err))
			status["clickhouse"] = "unavailable"
		} else {
			status["clickhouse"] = "ok"
		}
	}
	return xhttp.SuccessResponse(c, status)
}

func (h *ResultsEchoHandler) load(key, table string, fn func() (any, error)) (any, error) {
	start := time.Now()
	v, hit, err := h.cache.Load(key, fn)
	switch {
	case err != nil:
		h.metrics.Error(table)
	case hit:
		h.metrics.Hit(table)
	default:
		h.metrics.Miss(table, time.Since(start).Seconds())
	}
	return v, err
}

// loadError maps a missing file to notFound and anything else to 500.
func (h *ResultsEchoHandler) loadError(c echo.Context, table string, err error, notFound *xhttp.AppError) error {
	if errors.Is(err, fs.ErrNotExist) {
		return xhttp.ErrorResponse(c, notFound)
	}
	h.logger.Error("results load failed", xlogger.String("table", table), xlogger.Error(err))
	return xhttp.ErrorResponse(c, err)
}
