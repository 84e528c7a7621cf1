package config

import (
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/nova/internal/domain"
	"github.com/vadiminshakov/nova/internal/services/pricereport"
	"gopkg.in/yaml.v3"
)

const (
	ModeREPL = "repl"
	ModeWeb  = "web"

	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"

	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvLLMKey       = "LLM_API_KEY"
	EnvSearchKey    = "EXA_API_KEY"
	EnvCoinGeckoKey = "COINGECKO_API_KEY"
)

type Config struct {
	Mode     string
	Username string
	Debug    bool

	LLM     LLMConfig
	Prices  PriceConfig
	Search  SearchConfig
	Chat    ChatConfig
	Storage StorageConfig
	Web     WebConfig
}

type LLMConfig struct {
	Provider  string
	APIURL    string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

type PriceConfig struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MinInterval time.Duration
	CacheTTL    time.Duration
	Bands       pricereport.Policy
}

type SearchConfig struct {
	BaseURL string
	APIKey  string
	Results int
}

type ChatConfig struct {
	HistoryLimit   int
	KnowledgeLimit int
	Research       bool
}

type StorageConfig struct {
	SQLitePath string
	JournalDir string
}

type WebConfig struct {
	Addr         string
	TLSDomains   []string
	CertCacheDir string
}

// ConfigTmp is the YAML shape of Config. Empty values keep the defaults.
type ConfigTmp struct {
	Mode     string `yaml:"mode,omitempty"`
	Username string `yaml:"user,omitempty"`

	LLM struct {
		Provider  string        `yaml:"provider,omitempty"`
		APIURL    string        `yaml:"api_url,omitempty"`
		Model     string        `yaml:"model,omitempty"`
		MaxTokens int           `yaml:"max_tokens,omitempty"`
		Timeout   time.Duration `yaml:"timeout,omitempty"`
	} `yaml:"llm"`

	Prices struct {
		BaseURL     string        `yaml:"base_url,omitempty"`
		Timeout     time.Duration `yaml:"timeout,omitempty"`
		MinInterval time.Duration `yaml:"min_interval,omitempty"`
		CacheTTL    time.Duration `yaml:"cache_ttl,omitempty"`
		Bands       struct {
			Major BandsTmp `yaml:"major"`
			Minor BandsTmp `yaml:"minor"`
		} `yaml:"bands"`
	} `yaml:"prices"`

	Search struct {
		BaseURL string `yaml:"base_url,omitempty"`
		Results int    `yaml:"results,omitempty"`
	} `yaml:"search"`

	Chat struct {
		HistoryLimit   int  `yaml:"history_limit,omitempty"`
		KnowledgeLimit int  `yaml:"knowledge_limit,omitempty"`
		Research       bool `yaml:"research,omitempty"`
	} `yaml:"chat"`

	Storage struct {
		SQLitePath string `yaml:"sqlite_path,omitempty"`
		JournalDir string `yaml:"journal_dir,omitempty"`
	} `yaml:"storage"`

	Web struct {
		Addr         string   `yaml:"addr,omitempty"`
		TLSDomains   []string `yaml:"tls_domains,omitempty"`
		CertCacheDir string   `yaml:"cert_cache_dir,omitempty"`
	} `yaml:"web"`
}

// BandsTmp multipliers as decimal strings.
type BandsTmp struct {
	StrongSupport    string `yaml:"strong_support,omitempty"`
	Support          string `yaml:"support,omitempty"`
	Resistance       string `yaml:"resistance,omitempty"`
	StrongResistance string `yaml:"strong_resistance,omitempty"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Mode: ModeREPL,
		LLM: LLMConfig{
			Provider:  ProviderAnthropic,
			Model:     "claude-3-opus-20240229",
			MaxTokens: 2048,
			Timeout:   30 * time.Second,
		},
		Prices: PriceConfig{
			BaseURL:     "https://api.coingecko.com/api/v3",
			Timeout:     10 * time.Second,
			MinInterval: 1500 * time.Millisecond,
			CacheTTL:    10 * time.Minute,
			Bands:       pricereport.DefaultPolicy(),
		},
		Search: SearchConfig{
			BaseURL: "https://api.exa.ai",
			Results: 3,
		},
		Chat: ChatConfig{
			HistoryLimit:   10,
			KnowledgeLimit: 2,
		},
		Storage: StorageConfig{
			SQLitePath: "./data/nova.db",
			JournalDir: "./wal/turns",
		},
		Web: WebConfig{
			Addr:         ":8080",
			CertCacheDir: "cert-cache",
		},
	}
}

// Load builds a Config from defaults, the optional YAML file at path and the environment.
// envFile is loaded into the environment first; a missing file is ignored.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.applyYaml(path); err != nil {
			return Config{}, err
		}
	}

	if err := loadEnvFile(envFile); err != nil {
		return Config{}, err
	}
	cfg.applyEnv()

	return cfg, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "load env file %s", path)
	}
	return nil
}

func (c *Config) applyYaml(path string) error {
	f, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config")
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return errors.Wrap(err, "parse config")
	}

	setString(&c.Mode, tmp.Mode)
	setString(&c.Username, tmp.Username)

	setString(&c.LLM.Provider, strings.ToLower(tmp.LLM.Provider))
	setString(&c.LLM.APIURL, tmp.LLM.APIURL)
	setString(&c.LLM.Model, tmp.LLM.Model)
	setInt(&c.LLM.MaxTokens, tmp.LLM.MaxTokens)
	setDuration(&c.LLM.Timeout, tmp.LLM.Timeout)

	setString(&c.Prices.BaseURL, tmp.Prices.BaseURL)
	setDuration(&c.Prices.Timeout, tmp.Prices.Timeout)
	setDuration(&c.Prices.MinInterval, tmp.Prices.MinInterval)
	setDuration(&c.Prices.CacheTTL, tmp.Prices.CacheTTL)
	if err := applyBands(&c.Prices.Bands.Major, tmp.Prices.Bands.Major, "major"); err != nil {
		return err
	}
	if err := applyBands(&c.Prices.Bands.Minor, tmp.Prices.Bands.Minor, "minor"); err != nil {
		return err
	}

	setString(&c.Search.BaseURL, tmp.Search.BaseURL)
	setInt(&c.Search.Results, tmp.Search.Results)

	setInt(&c.Chat.HistoryLimit, tmp.Chat.HistoryLimit)
	setInt(&c.Chat.KnowledgeLimit, tmp.Chat.KnowledgeLimit)
	c.Chat.Research = c.Chat.Research || tmp.Chat.Research

	setString(&c.Storage.SQLitePath, tmp.Storage.SQLitePath)
	setString(&c.Storage.JournalDir, tmp.Storage.JournalDir)

	setString(&c.Web.Addr, tmp.Web.Addr)
	setString(&c.Web.CertCacheDir, tmp.Web.CertCacheDir)
	if len(tmp.Web.TLSDomains) > 0 {
		c.Web.TLSDomains = tmp.Web.TLSDomains
	}

	return nil
}

func applyBands(dst *pricereport.Bands, src BandsTmp, class string) error {
	fields := []struct {
		name  string
		value string
		dst   *decimal.Decimal
	}{
		{"strong_support", src.StrongSupport, &dst.StrongSupport},
		{"support", src.Support, &dst.Support},
		{"resistance", src.Resistance, &dst.Resistance},
		{"strong_resistance", src.StrongResistance, &dst.StrongResistance},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		d, err := decimal.NewFromString(f.value)
		if err != nil {
			return fmt.Errorf("incorrect 'bands.%s.%s' param in yaml config (must be a decimal), error: %w", class, f.name, err)
		}
		*f.dst = d
	}
	return nil
}

func (c *Config) applyEnv() {
	switch c.LLM.Provider {
	case ProviderOpenAI:
		setString(&c.LLM.APIKey, os.Getenv(EnvLLMKey))
	default:
		setString(&c.LLM.APIKey, os.Getenv(EnvAnthropicKey))
	}
	setString(&c.Search.APIKey, os.Getenv(EnvSearchKey))
	setString(&c.Prices.APIKey, os.Getenv(EnvCoinGeckoKey))
}

// Validate reports the first problem as a Configuration error.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeREPL, ModeWeb:
	default:
		return domain.ConfigurationError("unknown mode %q, expected %s or %s", c.Mode, ModeREPL, ModeWeb)
	}

	switch c.LLM.Provider {
	case ProviderAnthropic:
		if c.LLM.APIKey == "" {
			return domain.ConfigurationError("%s is not set", EnvAnthropicKey)
		}
	case ProviderOpenAI:
		if c.LLM.APIKey == "" {
			return domain.ConfigurationError("%s is not set", EnvLLMKey)
		}
		if c.LLM.APIURL == "" {
			return domain.ConfigurationError("llm.api_url is required for the %s provider", ProviderOpenAI)
		}
	default:
		return domain.ConfigurationError("unknown llm provider %q", c.LLM.Provider)
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"llm.timeout", c.LLM.Timeout},
		{"prices.timeout", c.Prices.Timeout},
		{"prices.min_interval", c.Prices.MinInterval},
		{"prices.cache_ttl", c.Prices.CacheTTL},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return domain.ConfigurationError("%s must be positive, got %s", d.name, d.value)
		}
	}

	if c.LLM.MaxTokens <= 0 {
		return domain.ConfigurationError("llm.max_tokens must be positive")
	}

	if err := validateBands(c.Prices.Bands.Major, "major"); err != nil {
		return err
	}
	if err := validateBands(c.Prices.Bands.Minor, "minor"); err != nil {
		return err
	}

	if c.Mode == ModeWeb && c.Web.Addr == "" {
		return domain.ConfigurationError("web.addr is required in %s mode", ModeWeb)
	}

	return nil
}

// bands must satisfy 0 < strong_support <= support <= 1 <= resistance <= strong_resistance
func validateBands(b pricereport.Bands, class string) error {
	one := decimal.NewFromInt(1)
	ok := b.StrongSupport.IsPositive() &&
		b.StrongSupport.LessThanOrEqual(b.Support) &&
		b.Support.LessThanOrEqual(one) &&
		one.LessThanOrEqual(b.Resistance) &&
		b.Resistance.LessThanOrEqual(b.StrongResistance)
	if !ok {
		return domain.ConfigurationError("bands.%s must satisfy 0 < strong_support <= support <= 1 <= resistance <= strong_resistance", class)
	}
	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}
