package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/newswatch-cli/internal/sink"
)

// Config holds the full application configuration.
type Config struct {
	Scrape  ScrapeConfig  `yaml:"scrape" mapstructure:"scrape"`
	Browser BrowserConfig `yaml:"browser" mapstructure:"browser"`
	Store   sink.Config   `yaml:"store" mapstructure:"store"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// ScrapeConfig tunes the scrape run: worker counts, timeouts, and the
// static fetcher's politeness settings.
type ScrapeConfig struct {
	Concurrency      int     `yaml:"concurrency" mapstructure:"concurrency"`
	TimeoutSecs      int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	FetchTimeoutSecs int     `yaml:"fetch_timeout_secs" mapstructure:"fetch_timeout_secs"`
	PageDelaySecs    int     `yaml:"page_delay_secs" mapstructure:"page_delay_secs"`
	UserAgent        string  `yaml:"user_agent" mapstructure:"user_agent"`
	RatePerHost      float64 `yaml:"rate_per_host" mapstructure:"rate_per_host"`
	RateBurst        int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// BrowserConfig configures the headless browser pool.
type BrowserConfig struct {
	PoolSize       int  `yaml:"pool_size" mapstructure:"pool_size"`
	Headless       bool `yaml:"headless" mapstructure:"headless"`
	NavTimeoutSecs int  `yaml:"nav_timeout_secs" mapstructure:"nav_timeout_secs"`
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
	v.SetEnvPrefix("NEWSWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("scrape.concurrency", 3)
	v.SetDefault("scrape.timeout_secs", 0)
	v.SetDefault("scrape.fetch_timeout_secs", 10)
	v.SetDefault("scrape.page_delay_secs", 2)
	v.SetDefault("scrape.user_agent", "")
	v.SetDefault("scrape.rate_per_host", 2)
	v.SetDefault("scrape.rate_burst", 4)
	v.SetDefault("browser.pool_size", 2)
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.nav_timeout_secs", 30)
	v.SetDefault("store.driver", "dataset")
	v.SetDefault("store.dir", "storage")
	v.SetDefault("store.path", "newswatch.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
