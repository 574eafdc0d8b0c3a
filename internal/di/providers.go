package di

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"FinMerge/internal/domain/models"
	"FinMerge/internal/domain/repository"
	"FinMerge/internal/handler/api"
	internalrepo "FinMerge/internal/repository"
	icache "FinMerge/internal/service/cache"
	"FinMerge/internal/service/fred"
	svcmetrics "FinMerge/internal/service/metrics"
	"FinMerge/internal/service/ratelimit"
	"FinMerge/internal/service/scorer"
	"FinMerge/internal/service/tickers"
	"FinMerge/internal/service/web"
	"FinMerge/internal/service/worldbank"
	"FinMerge/internal/service/yahoo"
	"FinMerge/internal/services/aligner"
	"FinMerge/internal/services/headlines"
	"FinMerge/internal/services/sentiment"
	"FinMerge/internal/usecase"
	"FinMerge/pkg/cache"
	pkgch "FinMerge/pkg/clickhouse"
	"FinMerge/pkg/config"
	xhttp "FinMerge/pkg/http"
	pkgkafka "FinMerge/pkg/kafka"
	applogger "FinMerge/pkg/logger"
	"FinMerge/pkg/metrics"
	"FinMerge/pkg/server"
	"FinMerge/pkg/util"
)

// ProvideLogger builds the process logger from the logging section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		TimeFormat: time.RFC3339,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideRegistry creates the registry shared by the recorder, the Kafka producer and /metrics.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.New(reg)
}

// ProvideMetricsServer exposes /metrics while a batch command runs. Nil when metrics.port is 0.
func ProvideMetricsServer(cfg *config.Config, reg *prometheus.Registry, l *applogger.Logger) *xhttp.Server {
	if cfg.Metrics.Port == 0 {
		return nil
	}
	return xhttp.NewServer(l, nil,
		xhttp.WithPort(cfg.Metrics.Port),
		xhttp.WithCORS(false),
		xhttp.WithRegistry(reg),
	)
}

// ProvideRunID stamps every sink row and message of one run.
func ProvideRunID() func() string {
	return uuid.NewString
}

func ProvideCSVStore(cfg *config.Config) *internalrepo.CSVStore {
	return internalrepo.NewCSVStore(cfg.DataDir, cfg.RawDir(), cfg.ProcessedDir())
}

// ProvideResponseCache builds the optional response cache. A Redis backend that cannot be
// reached is logged and the run continues without it.
func ProvideResponseCache(cfg *config.Config, l *applogger.Logger) cache.Service {
	c := cfg.Cache
	memory := func() cache.Service { return cache.NewMemoryCache(cache.WithMemoryMaxSize(c.MaxEntries)) }
	redis := func() cache.Service {
		rc, err := cache.NewRedisCache(context.Background(), cache.RedisConfig{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
			Prefix:   c.Redis.Prefix,
		})
		if err != nil {
			l.Warn("redis cache unavailable, continuing without it",
				applogger.String("addr", c.Redis.Addr),
				applogger.Error(err),
			)
			return nil
		}
		return rc
	}

	switch c.Backend {
	case "memory":
		return memory()
	case "redis":
		return redis()
	case "layered":
		l2 := redis()
		if l2 == nil {
			return memory()
		}
		return cache.NewLayeredCache(memory(), l2, c.TTL)
	default:
		return nil
	}
}

// ProvideAPIClient is the JSON client for indicator sources, with the response cache when configured.
func ProvideAPIClient(cfg *config.Config, svc cache.Service) *xhttp.Client {
	opts := []xhttp.ClientOption{xhttp.WithTimeout(cfg.HTTP.Timeout)}
	if svc != nil {
		opts = append(opts, xhttp.WithCache(svc, cfg.Cache.TTL))
	}
	return xhttp.NewClient(opts...)
}

func browserClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(
		xhttp.WithTimeout(cfg.HTTP.Timeout),
		xhttp.WithHeaders(xhttp.BrowserHeaders()),
		xhttp.WithUserAgents(cfg.HTTP.UserAgents),
	)
}

func specs(in []config.Indicator) []models.IndicatorSpec {
	out := make([]models.IndicatorSpec, len(in))
	for i, s := range in {
		out[i] = models.IndicatorSpec{Code: s.Code, Name: s.Name}
	}
	return out
}

// ProvideIndicatorSources returns World Bank and, when an API key is set, FRED.
func ProvideIndicatorSources(cfg *config.Config, hc *xhttp.Client, l *applogger.Logger) []repository.IndicatorSource {
	m := cfg.Macro
	lim := ratelimit.New(m.Delay, 1)

	sources := []repository.IndicatorSource{
		worldbank.New(hc, lim, m.WorldBank.BaseURL, m.WorldBank.Country, m.WorldBank.Years, specs(m.WorldBank.Indicators)),
	}
	if m.FRED.APIKey == "" {
		l.Warn("FRED_API_KEY not set, FRED series skipped", applogger.Int("series", len(m.FRED.Series)))
		return sources
	}
	return append(sources, fred.New(hc, lim, m.FRED.BaseURL, m.FRED.APIKey, m.FRED.Years, specs(m.FRED.Series)))
}

func ProvideAligner(cfg *config.Config) *aligner.Aligner {
	return aligner.New(aligner.Mode(cfg.Macro.AsOfMode))
}

// ProvidePriceSource is the Yahoo client paced by prices.delay.
func ProvidePriceSource(cfg *config.Config) *yahoo.Client {
	hc := xhttp.NewClient(xhttp.WithTimeout(cfg.HTTP.Timeout), xhttp.WithUserAgents(cfg.HTTP.UserAgents))
	return yahoo.New(hc, ratelimit.New(cfg.Prices.Delay, 1), cfg.Prices.BaseURL)
}

// ProvideTickerSource returns the fixed list or the market-cap ranked S&P 500 constituents.
func ProvideTickerSource(cfg *config.Config, l *applogger.Logger) repository.TickerSource {
	t := cfg.Tickers
	if t.Source != "ranked" {
		return tickers.NewStatic(t.Symbols)
	}
	docs := web.New(browserClient(cfg), ratelimit.New(0, 1))
	caps := yahoo.New(
		xhttp.NewClient(xhttp.WithTimeout(cfg.HTTP.Timeout), xhttp.WithUserAgents(cfg.HTTP.UserAgents)),
		ratelimit.New(t.LookupDelay, 1),
		cfg.Prices.BaseURL,
	)
	return tickers.NewRanked(docs, caps, t.ConstituentsURL, t.TopN, l)
}

// ProvideThrottle paces page fetches and takes the long break between tickers.
func ProvideThrottle(cfg *config.Config) *ratelimit.Limiter {
	t := cfg.Throttle
	return ratelimit.New(t.Delay, t.Burst, ratelimit.WithBreak(t.BreakEvery, t.BreakDelay))
}

func ProvideFetcher(cfg *config.Config, lim *ratelimit.Limiter) *web.Fetcher {
	return web.New(browserClient(cfg), lim)
}

func ProvideExtractor(cfg *config.Config, docs *web.Fetcher, l *applogger.Logger) *headlines.Extractor {
	n := cfg.News
	return headlines.NewExtractor(docs, headlines.Options{
		MinLength:         n.MinLength,
		ExcludePrefixes:   n.ExcludePrefixes,
		MinYear:           n.MinYear,
		MaxYear:           n.MaxYear,
		FallbackThreshold: n.FallbackThreshold,
	}, time.Now, l)
}

// ProvideNewsSources compiles every configured selector; a bad selector fails startup.
func ProvideNewsSources(cfg *config.Config) ([]headlines.Source, error) {
	out := make([]headlines.Source, 0, len(cfg.News.Sources))
	for _, s := range cfg.News.Sources {
		rules, err := headlines.CSSRules(s.Selectors)
		if err != nil {
			return nil, fmt.Errorf("news source %s: %w", s.Name, err)
		}
		out = append(out, headlines.Source{
			Name:        s.Name,
			Pages:       s.Pages,
			Rules:       rules,
			Mode:        headlines.Mode(s.Mode),
			MaxArticles: s.MaxArticles,
			MaxPerRule:  s.MaxPerRule,
			Fallback:    s.Fallback,
		})
	}
	return out, nil
}

func ProvideNewsOptions(cfg *config.Config) (usecase.NewsScrapeOptions, error) {
	u, err := headlines.ParseUndated(cfg.News.Undated)
	if err != nil {
		return usecase.NewsScrapeOptions{}, err
	}
	return usecase.NewsScrapeOptions{
		Output:         cfg.News.Output,
		IncludeQuality: cfg.News.IncludeQuality,
		Undated:        u,
	}, nil
}

// ProvideSentimentModel returns the HTTP classifier or the offline lexicon.
func ProvideSentimentModel(cfg *config.Config) repository.SentimentModel {
	m := cfg.Sentiment.Model
	if m.Type == "lexicon" {
		return sentiment.NewLexicon()
	}
	return scorer.New(xhttp.NewClient(xhttp.WithTimeout(m.Timeout)), m.URL, m.BatchSize, m.MaxTokens)
}

func ProvideSentimentOptions(cfg *config.Config) usecase.SentimentOptions {
	s := cfg.Sentiment
	from, _ := util.ParseDay(s.From)
	to, _ := util.ParseDay(s.To)
	return usecase.SentimentOptions{
		Input:           s.Input,
		DailyOutput:     s.DailyOutput,
		HeadlinesOutput: s.HeadlinesOutput,
		From:            from,
		To:              to,
	}
}

// ProvideStorage connects the ClickHouse sink and creates its tables. When ClickHouse is
// disabled or unreachable the sink is a no-op.
func ProvideStorage(cfg *config.Config, l *applogger.Logger) repository.Storage {
	c := cfg.Sinks.ClickHouse
	if !c.Enabled {
		return repository.NoopStorage{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(c.Host),
		pkgch.WithPort(c.Port),
		pkgch.WithDatabase(c.Database),
		pkgch.WithCredentials(c.User, c.Password),
		pkgch.WithHTTP(c.UseHTTP),
		pkgch.WithTimeouts(c.DialTimeout, c.ReadTimeout, c.WriteTimeout),
		pkgch.WithBatchSize(c.BatchSize),
		pkgch.WithAsyncInsert(c.AsyncInsert),
	)
	if err != nil {
		l.Warn("clickhouse sink disabled", applogger.String("host", c.Host), applogger.Error(err))
		return repository.NoopStorage{}
	}

	st := internalrepo.NewClickHouseStorage(client, l)
	if err := st.Init(ctx); err != nil {
		_ = st.Close()
		l.Warn("clickhouse sink disabled", applogger.Error(err))
		return repository.NoopStorage{}
	}
	l.Info("clickhouse sink ready", applogger.String("database", c.Database))
	return st
}

// ProvidePublisher creates the Kafka sink. Only a bad configuration is an error.
func ProvidePublisher(cfg *config.Config, reg *prometheus.Registry, l *applogger.Logger) (repository.Publisher, error) {
	k := cfg.Sinks.Kafka
	if !k.Enabled {
		return repository.NoopPublisher{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(k.Brokers),
		pkgkafka.WithCompression(k.Compression),
		pkgkafka.WithRequiredAcks(k.RequiredAcks),
		pkgkafka.WithMaxAttempts(k.MaxAttempts),
		pkgkafka.WithWriteTimeout(k.WriteTimeout),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	l.Info("kafka sink ready", applogger.Strings("brokers", k.Brokers))
	return internalrepo.NewKafkaPublisher(producer, k.HeadlinesTopic, k.SentimentTopic), nil
}

func ProvideSinks(st repository.Storage, pub repository.Publisher) usecase.Sinks {
	return usecase.Sinks{Storage: st, Publisher: pub}
}

// closers drops disabled components so App.Close only sees live resources.
func closers(svc cache.Service, sinks usecase.Sinks) []io.Closer {
	var out []io.Closer
	if svc != nil {
		out = append(out, svc)
	}
	if sinks.Storage != nil && !repository.IsNoop(sinks.Storage) {
		out = append(out, sinks.Storage)
	}
	if sinks.Publisher != nil && !repository.IsNoop(sinks.Publisher) {
		out = append(out, sinks.Publisher)
	}
	return out
}

func ProvideStockFetch(cfg *config.Config, ts repository.TickerSource, prices *yahoo.Client, store *internalrepo.CSVStore, m repository.Metrics, l *applogger.Logger, runID func() string) *usecase.StockFetch {
	return usecase.NewStockFetch(ts, prices, store, cfg.Prices.Years, m, l, runID)
}

func ProvideMacroMerge(sources []repository.IndicatorSource, al *aligner.Aligner, store *internalrepo.CSVStore, sinks usecase.Sinks, m repository.Metrics, l *applogger.Logger, runID func() string) *usecase.MacroMerge {
	return usecase.NewMacroMerge(sources, al, store, store, sinks, m, l, runID)
}

func ProvideNewsScrape(
	ts repository.TickerSource,
	ex *headlines.Extractor,
	sources []headlines.Source,
	store *internalrepo.CSVStore,
	opts usecase.NewsScrapeOptions,
	lim *ratelimit.Limiter,
	sinks usecase.Sinks,
	m repository.Metrics,
	l *applogger.Logger,
	runID func() string,
) *usecase.NewsScrape {
	return usecase.NewNewsScrape(ts, ex, sources, store, opts, lim, sinks, m, l, runID)
}

func ProvideSentimentScore(store *internalrepo.CSVStore, model repository.SentimentModel, opts usecase.SentimentOptions, sinks usecase.Sinks, m repository.Metrics, l *applogger.Logger, runID func() string) *usecase.SentimentScore {
	return usecase.NewSentimentScore(store, model, opts, sinks, m, l, runID)
}

func ProvideStockFetchApp(l *applogger.Logger, uc *usecase.StockFetch, srv *xhttp.Server) *server.App {
	return server.NewBatch("stockfetch", l, uc, srv)
}

func ProvideMacroMergeApp(l *applogger.Logger, uc *usecase.MacroMerge, srv *xhttp.Server, svc cache.Service, sinks usecase.Sinks) *server.App {
	return server.NewBatch("macromerge", l, uc, srv, closers(svc, sinks)...)
}

func ProvideNewsScrapeApp(l *applogger.Logger, uc *usecase.NewsScrape, srv *xhttp.Server, sinks usecase.Sinks) *server.App {
	return server.NewBatch("newsscrape", l, uc, srv, closers(nil, sinks)...)
}

func ProvideSentimentApp(l *applogger.Logger, uc *usecase.SentimentScore, srv *xhttp.Server, sinks usecase.Sinks) *server.App {
	return server.NewBatch("sentiment", l, uc, srv, closers(nil, sinks)...)
}

// ProvideResultsHandler serves the CSV artifacts named in the news and sentiment sections.
func ProvideResultsHandler(cfg *config.Config, l *applogger.Logger, store *internalrepo.CSVStore, st repository.Storage, reg *prometheus.Registry) *api.ResultsEchoHandler {
	return api.NewResultsEchoHandler(
		l,
		store, store, store,
		st,
		api.Files{Headlines: cfg.News.Output, Daily: cfg.Sentiment.DailyOutput},
		icache.NewTTLCache(cfg.Server.CacheTTL),
		svcmetrics.NewAPIMetrics(reg),
		ratelimit.New(cfg.Server.RateEvery, cfg.Server.RateBurst),
	)
}

func ProvideAPIServer(cfg *config.Config, l *applogger.Logger, reg *prometheus.Registry, h *api.ResultsEchoHandler) *xhttp.Server {
	return xhttp.NewServer(l, []xhttp.Handler{h},
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithRegistry(reg),
	)
}

func ProvideServerApp(l *applogger.Logger, srv *xhttp.Server, st repository.Storage) *server.App {
	return server.NewService("server", l, srv, closers(nil, usecase.Sinks{Storage: st})...)
}
