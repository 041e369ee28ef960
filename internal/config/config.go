package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. It is loaded once at
// startup and passed into components; nothing reads viper after Load.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Serp      SerpConfig      `yaml:"serpapi" mapstructure:"serpapi"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Collect   CollectConfig   `yaml:"collect" mapstructure:"collect"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Signals   SignalsConfig   `yaml:"signals" mapstructure:"signals"`
	Export    ExportConfig    `yaml:"export" mapstructure:"export"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "sqlite" or "postgres"
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// SerpConfig holds SerpAPI settings for the search collectors.
type SerpConfig struct {
	Key      string `yaml:"key" mapstructure:"key"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	Country  string `yaml:"country" mapstructure:"country"`
	Language string `yaml:"language" mapstructure:"language"`
}

// AnthropicConfig holds the completion backend settings for
// classification. An empty key disables the backend and every lead is
// classified via the keyword fallback.
type AnthropicConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	MaxTokens   int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// CollectConfig configures the source collectors.
type CollectConfig struct {
	Keywords          []string `yaml:"keywords" mapstructure:"keywords"`
	DirectorySites    []string `yaml:"directory_sites" mapstructure:"directory_sites"`
	DirectoryQueries  []string `yaml:"directory_queries" mapstructure:"directory_queries"`
	Feeds             []string `yaml:"feeds" mapstructure:"feeds"`
	ListingURLs       []string `yaml:"listing_urls" mapstructure:"listing_urls"`
	MaxPerKeyword     int      `yaml:"max_per_keyword" mapstructure:"max_per_keyword"`
	MaxPerDirectory   int      `yaml:"max_per_directory" mapstructure:"max_per_directory"`
	RequestsPerSecond float64  `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// PipelineConfig configures orchestrator behavior.
type PipelineConfig struct {
	MaxConcurrent   int  `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	NameKeyFallback bool `yaml:"name_key_fallback" mapstructure:"name_key_fallback"`
	GuessEmails     bool `yaml:"guess_emails" mapstructure:"guess_emails"`
}

// SignalsConfig points at an optional signal registry override file.
type SignalsConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ExportConfig configures lead export.
type ExportConfig struct {
	Dir      string `yaml:"dir" mapstructure:"dir"`
	Filename string `yaml:"filename" mapstructure:"filename"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Keys with no meaningful default still need an empty one
	// registered, or Unmarshal never sees their env values.
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.sqlite_path", "leadgen.db")
	v.SetDefault("serpapi.key", "")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("signals.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("serpapi.base_url", "https://serpapi.com")
	v.SetDefault("serpapi.country", "in")
	v.SetDefault("serpapi.language", "en")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 64)
	v.SetDefault("anthropic.temperature", 0.1)
	v.SetDefault("anthropic.timeout_secs", 30)
	v.SetDefault("collect.keywords", []string{
		`"loan license pharma" India`,
		`"third party manufacturing" pharma India`,
		`"pharma marketing company" India`,
		`"loan license" pharmaceutical India`,
		`"propaganda cum distribution" company pharma`,
		`"pharma franchise" manufacturer India`,
		`"virtual pharma" company India`,
		`"marketing and distribution" pharmaceutical India`,
	})
	v.SetDefault("collect.directory_sites", []string{
		"indiamart.com",
		"tradeindia.com",
		"pharmabiz.com",
	})
	v.SetDefault("collect.directory_queries", []string{
		"pharma third party manufacturing",
		"loan license pharmaceutical",
		"pharma marketing company",
		"contract manufacturing pharma",
	})
	v.SetDefault("collect.feeds", []string{})
	v.SetDefault("collect.listing_urls", []string{})
	v.SetDefault("collect.max_per_keyword", 10)
	v.SetDefault("collect.max_per_directory", 20)
	v.SetDefault("collect.requests_per_second", 1.0)
	v.SetDefault("pipeline.max_concurrent", 5)
	v.SetDefault("pipeline.name_key_fallback", true)
	v.SetDefault("pipeline.guess_emails", true)
	v.SetDefault("export.dir", "output")
	v.SetDefault("export.filename", "pharma_leads.csv")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
