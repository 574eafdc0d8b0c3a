package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	DataDir     string `yaml:"data_dir" default:"data" validate:"required"`

	Logging struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout" validate:"required"`
	} `yaml:"logging"`

	// Metrics.Port exposes /metrics while a batch command runs; 0 disables it.
	Metrics struct {
		Port int `yaml:"port" validate:"gte=0,lte=65535"`
	} `yaml:"metrics"`

	Server struct {
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CacheTTL        time.Duration `yaml:"cache_ttl" default:"30s"`
		RateEvery       time.Duration `yaml:"rate_every" default:"100ms"`
		RateBurst       int           `yaml:"rate_burst" default:"20" validate:"gte=1"`
	} `yaml:"server"`

	HTTP     HTTP     `yaml:"http"`
	Throttle Throttle `yaml:"throttle"`
	Cache    Cache    `yaml:"cache"`
	Tickers  Tickers  `yaml:"tickers"`

	Prices struct {
		Years   int           `yaml:"years" default:"5" validate:"gte=1"`
		BaseURL string        `yaml:"base_url" default:"https://query1.finance.yahoo.com" validate:"url"`
		Delay   time.Duration `yaml:"delay" default:"100ms"`
	} `yaml:"prices"`

	Macro     Macro     `yaml:"macro"`
	News      News      `yaml:"news"`
	Sentiment Sentiment `yaml:"sentiment"`
	Sinks     Sinks     `yaml:"sinks"`
}

// HTTP configures the shared outbound client.
type HTTP struct {
	Timeout    time.Duration `yaml:"timeout" default:"30s"`
	UserAgents []string      `yaml:"user_agents"`
}

func (h *HTTP) SetDefaults() {
	if len(h.UserAgents) == 0 {
		h.UserAgents = []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/92.0.4515.107 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Safari/605.1.15",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
		}
	}
}

// Throttle paces successive external calls.
type Throttle struct {
	Delay      time.Duration `yaml:"delay" default:"3500ms"`
	Burst      int           `yaml:"burst" default:"1" validate:"gte=1"`
	BreakEvery int           `yaml:"break_every" default:"10" validate:"gte=0"`
	BreakDelay time.Duration `yaml:"break_delay" default:"12500ms"`
}

type Cache struct {
	Backend    string        `yaml:"backend" default:"none" validate:"oneof=none memory redis layered"`
	TTL        time.Duration `yaml:"ttl" default:"6h"`
	MaxEntries int           `yaml:"max_entries" default:"1000" validate:"gte=1"`
	Redis      struct {
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix" default:"finmerge"`
	} `yaml:"redis"`
}

type Tickers struct {
	Source          string        `yaml:"source" default:"static" validate:"oneof=static ranked"`
	Symbols         []string      `yaml:"symbols"`
	TopN            int           `yaml:"top_n" default:"50" validate:"gte=1"`
	ConstituentsURL string        `yaml:"constituents_url" default:"https://en.wikipedia.org/wiki/List_of_S%26P_500_companies" validate:"url"`
	LookupDelay     time.Duration `yaml:"lookup_delay" default:"100ms"`
}

func (t *Tickers) SetDefaults() {
	if len(t.Symbols) == 0 {
		t.Symbols = DefaultSymbols()
	}
}

// DefaultSymbols is the fixed large-cap list used when no ranking is requested.
func DefaultSymbols() []string {
	return []string{
		"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "TSLA", "META", "BRK-B", "UNH", "JNJ",
		"JPM", "V", "PG", "HD", "MA", "BAC", "ABBV", "PFE", "KO", "AVGO",
		"PEP", "TMO", "COST", "MRK", "WMT", "ABT", "ACN", "VZ", "CRM", "LLY",
		"DHR", "NEE", "TXN", "NKE", "PM", "RTX", "HON", "QCOM", "LOW", "UNP",
		"IBM", "CAT", "GS", "AMGN", "SPGI", "AXP", "GE", "MS", "ISRG", "PLD",
	}
}

// Indicator maps a source code to the column name it is published under.
type Indicator struct {
	Code string `yaml:"code" validate:"required"`
	Name string `yaml:"name" validate:"required"`
}

type Macro struct {
	AsOfMode string `yaml:"asof_mode" default:"row" validate:"oneof=row column"`

	// Delay paces indicator requests per host; 0 sends them back to back.
	Delay time.Duration `yaml:"delay"`

	WorldBank struct {
		BaseURL    string      `yaml:"base_url" default:"http://api.worldbank.org/v2" validate:"url"`
		Country    string      `yaml:"country" default:"US" validate:"required"`
		Years      int         `yaml:"years" default:"5" validate:"gte=1"`
		Indicators []Indicator `yaml:"indicators" validate:"dive"`
	} `yaml:"world_bank"`

	FRED struct {
		BaseURL string      `yaml:"base_url" default:"https://api.stlouisfed.org/fred" validate:"url"`
		APIKey  string      `yaml:"api_key"`
		Years   int         `yaml:"years" default:"5" validate:"gte=1"`
		Series  []Indicator `yaml:"series" validate:"dive"`
	} `yaml:"fred"`
}

func (m *Macro) SetDefaults() {
	if len(m.WorldBank.Indicators) == 0 {
		m.WorldBank.Indicators = []Indicator{
			{Code: "NY.GDP.MKTP.KD.ZG", Name: "GDP_Growth"},
			{Code: "FP.CPI.TOTL.ZG", Name: "Inflation"},
			{Code: "FR.INR.RINR", Name: "Interest_Rate"},
			{Code: "NE.EXP.GNFS.ZS", Name: "Exports_GDP"},
			{Code: "NE.IMP.GNFS.ZS", Name: "Imports_GDP"},
			{Code: "NY.GNS.ICTR.ZS", Name: "Gross_Savings"},
			{Code: "SL.UEM.TOTL.ZS", Name: "Unemployment"},
		}
	}
	if len(m.FRED.Series) == 0 {
		m.FRED.Series = []Indicator{
			{Code: "GDP", Name: "GDP_Current"},
			{Code: "CPIAUCSL", Name: "Inflation_CPI"},
			{Code: "UNRATE", Name: "Unemployment_Rate"},
			{Code: "FEDFUNDS", Name: "Fed_Funds_Rate"},
			{Code: "M2", Name: "Money_Supply"},
		}
	}
}

// NewsSource describes one scraped site: page templates ({ticker} is substituted)
// and the ordered selector rules tried on each page.
type NewsSource struct {
	Name        string   `yaml:"name" validate:"required"`
	Pages       []string `yaml:"pages" validate:"min=1"`
	Selectors   []string `yaml:"selectors" validate:"min=1"`
	Mode        string   `yaml:"mode" default:"strict" validate:"oneof=strict relaxed"`
	MaxArticles int      `yaml:"max_articles" default:"50" validate:"gte=1"`
	// MaxPerRule caps the matches taken from the winning rule; 0 means MaxArticles.
	MaxPerRule int  `yaml:"max_per_rule" validate:"gte=0"`
	Fallback   bool `yaml:"fallback"`
}

type News struct {
	Preset            string       `yaml:"preset" default:"yahoo" validate:"oneof=yahoo alternative"`
	Sources           []NewsSource `yaml:"sources" validate:"dive"`
	MinLength         int          `yaml:"min_length" default:"10" validate:"gte=0"`
	ExcludePrefixes   []string     `yaml:"exclude_prefixes"`
	MinYear           int          `yaml:"min_year" default:"2019"`
	MaxYear           int          `yaml:"max_year" default:"2024" validate:"gtefield=MinYear"`
	FallbackThreshold int          `yaml:"fallback_threshold" default:"5" validate:"gte=0"`
	Undated           string       `yaml:"undated" validate:"omitempty,oneof=last first drop drop_if_any_dated"`
	Output            string       `yaml:"output"`
	IncludeQuality    bool         `yaml:"include_quality"`
}

func (n *News) SetDefaults() {
	if len(n.ExcludePrefixes) == 0 {
		n.ExcludePrefixes = []string{"Today's news"}
	}
	if n.Preset == "" {
		n.Preset = "yahoo"
	}
	switch n.Preset {
	case "alternative":
		if len(n.Sources) == 0 {
			n.Sources = alternativeSources()
		}
		if n.Undated == "" {
			n.Undated = "last"
		}
		if n.Output == "" {
			n.Output = "financial_news_headlines.csv"
		}
	default:
		if len(n.Sources) == 0 {
			n.Sources = yahooSources()
		}
		if n.Undated == "" {
			n.Undated = "drop_if_any_dated"
		}
		if n.Output == "" {
			n.Output = "yahoo_finance_headlines.csv"
		}
	}
}

func yahooSources() []NewsSource {
	return []NewsSource{{
		Name: "Yahoo Finance",
		Pages: []string{
			"https://finance.yahoo.com/quote/{ticker}",
			"https://finance.yahoo.com/quote/{ticker}/news",
		},
		Selectors: []string{
			`div[data-test-id="news-item"] h3 a`,
			`div[class*="news"] h3 a`,
			`div[class*="News"] h3 a`,
			`li[class*="news-item"] h3 a`,
			`div[class*="story"] h3 a`,
			`div[class*="article"] h3 a`,
			`h3 a[href*="/news/"]`,
			`a[data-test-id="news-headline"]`,
		},
		Mode:        "strict",
		MaxArticles: 50,
		MaxPerRule:  25,
		Fallback:    true,
	}}
}

func alternativeSources() []NewsSource {
	return []NewsSource{
		{
			Name:  "MarketWatch",
			Pages: []string{"https://www.marketwatch.com/investing/stock/{ticker}"},
			Selectors: []string{
				`h3 a[href*="/story/"]`,
				`div[class*="article"] h3 a`,
				`a[href*="/story/"]`,
				`h3 a[href*="/news/"]`,
			},
			Mode:        "relaxed",
			MaxArticles: 15,
			MaxPerRule:  15,
		},
		{
			Name:  "Seeking Alpha",
			Pages: []string{"https://seekingalpha.com/symbol/{ticker}/news"},
			Selectors: []string{
				`a[data-test-id="post-list-item-title"]`,
				`h3 a[href*="/news/"]`,
				`div[class*="article"] h3 a`,
				`a[href*="/news/"]`,
			},
			Mode:        "relaxed",
			MaxArticles: 15,
			MaxPerRule:  15,
		},
	}
}

type Sentiment struct {
	Input           string `yaml:"input" default:"gdelt_headlines.csv" validate:"required"`
	DailyOutput     string `yaml:"daily_output" default:"daily_sentiment.csv" validate:"required"`
	HeadlinesOutput string `yaml:"headlines_output" default:"headlines_with_sentiment.csv" validate:"required"`
	From            string `yaml:"from" validate:"omitempty,datetime=2006-01-02"`
	To              string `yaml:"to" validate:"omitempty,datetime=2006-01-02"`
	Model           struct {
		Type      string        `yaml:"type" default:"http" validate:"oneof=http lexicon"`
		URL       string        `yaml:"url" default:"http://localhost:8000" validate:"url"`
		BatchSize int           `yaml:"batch_size" default:"32" validate:"gte=1"`
		MaxTokens int           `yaml:"max_tokens" default:"512" validate:"gte=1"`
		Timeout   time.Duration `yaml:"timeout" default:"60s"`
	} `yaml:"model"`
}

type Sinks struct {
	ClickHouse struct {
		Enabled      bool          `yaml:"enabled"`
		Host         string        `yaml:"host" default:"localhost"`
		Port         int           `yaml:"port" default:"9000"`
		Database     string        `yaml:"database" default:"finmerge"`
		User         string        `yaml:"user" default:"default"`
		Password     string        `yaml:"password"`
		UseHTTP      bool          `yaml:"use_http"`
		DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		BatchSize    int           `yaml:"batch_size" default:"2000" validate:"gte=1"`
		AsyncInsert  bool          `yaml:"async_insert"`
	} `yaml:"clickhouse"`

	Kafka struct {
		Enabled        bool          `yaml:"enabled"`
		Brokers        []string      `yaml:"brokers"`
		HeadlinesTopic string        `yaml:"headlines_topic" default:"finmerge.headlines"`
		SentimentTopic string        `yaml:"sentiment_topic" default:"finmerge.daily_sentiment"`
		RequiredAcks   int           `yaml:"required_acks" default:"-1"`
		Compression    string        `yaml:"compression" default:"gzip" validate:"oneof=none gzip snappy lz4 zstd"`
		MaxAttempts    int           `yaml:"max_attempts" default:"3"`
		WriteTimeout   time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"kafka"`
}

var validate = validator.New()

// Load reads and parses a YAML configuration file.
// A missing file is not an error: defaults alone describe a runnable setup.
func Load(path string) (*Config, error) {
	var c Config

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads .env (if present), then the YAML config, then applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("FRED_API_KEY"); v != "" {
		c.Macro.FRED.APIKey = v
	}
	if v := os.Getenv("TICKERS"); v != "" {
		c.Tickers.Symbols = splitList(v)
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Sinks.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("MODEL_URL"); v != "" {
		c.Sentiment.Model.URL = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Sinks.Kafka.Enabled && len(c.Sinks.Kafka.Brokers) == 0 {
		return fmt.Errorf("sinks.kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Tickers.Source == "static" && len(c.Tickers.Symbols) == 0 {
		return fmt.Errorf("tickers.symbols cannot be empty")
	}
	return nil
}

// RawDir holds one price CSV per ticker.
func (c *Config) RawDir() string { return filepath.Join(c.DataDir, "raw") }

// ProcessedDir holds the merged CSV per ticker.
func (c *Config) ProcessedDir() string { return filepath.Join(c.DataDir, "processed") }

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
