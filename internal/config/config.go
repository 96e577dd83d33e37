// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs, loaded from an optional config
// file with STEAMREQS_* environment overrides.
type Config struct {
	Steam      SteamConfig      `mapstructure:"steam"`
	Crawl      CrawlConfig      `mapstructure:"crawl"`
	DB         DBConfig         `mapstructure:"db"`
	Checkpoint CheckpointConfig `mapstructure:"checkpoint"`
	Export     ExportConfig     `mapstructure:"export"`
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// SteamConfig holds remote endpoint parameters. Key is only read from the
// environment (STEAMREQS_STEAM_KEY), never from a config file on disk.
type SteamConfig struct {
	Key              string        `mapstructure:"key"`
	CountryCode      string        `mapstructure:"cc"`
	Language         string        `mapstructure:"lang"`
	IncludeGames     bool          `mapstructure:"include_games"`
	IncludeDLC       bool          `mapstructure:"include_dlc"`
	PageSize         int           `mapstructure:"page_size"`
	DetailsBatchSize int           `mapstructure:"details_batch_size"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
}

// CrawlConfig governs pacing and retry behavior of the crawl loop.
type CrawlConfig struct {
	SleepBase         time.Duration `mapstructure:"sleep_base"`
	SleepJitter       time.Duration `mapstructure:"sleep_jitter"`
	PageRetryInterval time.Duration `mapstructure:"page_retry_interval"`
	RateLimitBackoff  time.Duration `mapstructure:"rate_limit_backoff"`
	BatchErrorBackoff time.Duration `mapstructure:"batch_error_backoff"`
	// MaxPages bounds a run for testing; zero means crawl to exhaustion.
	MaxPages int `mapstructure:"max_pages"`
}

// DBConfig locates the local mirror database.
type DBConfig struct {
	Path string `mapstructure:"path"`
}

// CheckpointConfig locates the cursor and run-state files.
type CheckpointConfig struct {
	Path      string `mapstructure:"path"`
	StatePath string `mapstructure:"state_path"`
}

// ExportConfig controls the static site-data projection.
type ExportConfig struct {
	ShardSize int    `mapstructure:"shard_size"`
	Provider  string `mapstructure:"provider"`
	OutDir    string `mapstructure:"out_dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	GCSPrefix string `mapstructure:"gcs_prefix"`
}

// ServerConfig controls the optional status/metrics HTTP server.
type ServerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("STEAMREQS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Registering the key with an empty default lets AutomaticEnv surface
	// STEAMREQS_STEAM_KEY through Unmarshal.
	v.SetDefault("steam.key", "")
	v.SetDefault("steam.cc", "us")
	v.SetDefault("steam.lang", "en")
	v.SetDefault("steam.include_games", true)
	v.SetDefault("steam.include_dlc", true)
	v.SetDefault("steam.page_size", 50000)
	v.SetDefault("steam.details_batch_size", 50)
	v.SetDefault("steam.request_timeout", "30s")
	v.SetDefault("crawl.sleep_base", "400ms")
	v.SetDefault("crawl.sleep_jitter", "200ms")
	v.SetDefault("crawl.page_retry_interval", "30s")
	v.SetDefault("crawl.rate_limit_backoff", "60s")
	v.SetDefault("crawl.batch_error_backoff", "20s")
	v.SetDefault("crawl.max_pages", 0)
	v.SetDefault("db.path", "data/steam_requirements.sqlite")
	v.SetDefault("checkpoint.path", "data/applist_checkpoint.json")
	v.SetDefault("checkpoint.state_path", "data/last_run.json")
	v.SetDefault("export.shard_size", 2000)
	v.SetDefault("export.provider", "local")
	v.SetDefault("export.out_dir", "site/data")
	v.SetDefault("export.gcs_prefix", "site/data")
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits. The Steam key is
// checked by the crawl command, not here, so read-only commands like export
// run without credentials.
func (c Config) Validate() error {
	if c.DB.Path == "" {
		return fmt.Errorf("db.path must be set")
	}
	if c.Checkpoint.Path == "" {
		return fmt.Errorf("checkpoint.path must be set")
	}
	if c.Steam.PageSize <= 0 {
		return fmt.Errorf("steam.page_size must be > 0")
	}
	if c.Steam.DetailsBatchSize <= 0 {
		return fmt.Errorf("steam.details_batch_size must be > 0")
	}
	if c.Crawl.MaxPages < 0 {
		return fmt.Errorf("crawl.max_pages must be >= 0")
	}
	if c.Export.ShardSize <= 0 {
		return fmt.Errorf("export.shard_size must be > 0")
	}
	if c.Export.Provider != "local" && c.Export.Provider != "gcs" {
		return fmt.Errorf("unknown export provider: %s", c.Export.Provider)
	}
	if c.Export.Provider == "gcs" && c.Export.GCSBucket == "" {
		return fmt.Errorf("export.gcs_bucket must be set when export.provider is gcs")
	}
	if c.Server.Enabled && c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0 when server is enabled")
	}
	return nil
}
