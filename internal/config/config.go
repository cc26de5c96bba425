package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port          int              `json:"port"`
	JWTSecret     string           `json:"jwt_secret"`
	CORSAllowlist []string         `json:"cors_allowlist"`
	LogConfig     logger.LogConfig `json:"log_config"`
	Database      DatabaseConfig   `json:"database"`
	Redis         RedisConfig      `json:"redis"`
	AI            AIConfig         `json:"ai"`
	Sources       SourcesConfig    `json:"sources"`
	RateLimit     RateLimitConfig  `json:"rate_limit"`
	Mail          MailConfig       `json:"mail"`
	FileStore     FileStoreConfig  `json:"file_store"`
	Schedule      ScheduleConfig   `json:"schedule"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type RedisConfig struct {
	URL string `json:"url"`
}

type AIConfig struct {
	Provider      string      `json:"provider"`
	Data          interface{} `json:"data"`
	EmbedModel    string      `json:"embed_model"`
	GenModel      string      `json:"gen_model"`
	MaxInputChars int         `json:"max_input_chars"`
	Timeout       int         `json:"timeout"`
}

type SourcesConfig struct {
	FetchTimeout int                `json:"fetch_timeout"`
	Adzuna       AdzunaConfig       `json:"adzuna"`
	Remotive     RemotiveConfig     `json:"remotive"`
	RSSFeeds     []RSSFeedConfig    `json:"rss_feeds"`
	HNHiring     HNHiringConfig     `json:"hn_hiring"`
	Sweeps       []SweepSearch      `json:"sweeps"`
}

type AdzunaConfig struct {
	AppID   string `json:"app_id"`
	AppKey  string `json:"app_key"`
	Country string `json:"country"`
}

type RemotiveConfig struct {
	Disabled bool `json:"disabled"`
}

type RSSFeedConfig struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type HNHiringConfig struct {
	PageDelayMS int `json:"page_delay_ms"`
	MaxPages    int `json:"max_pages"`
}

// SweepSearch is a query the cron sweep fetches without user action so the
// feed stays warm.
type SweepSearch struct {
	Query    string `json:"query"`
	Location string `json:"location"`
}

type RateLimitConfig struct {
	Tiers map[string]TierLimit `json:"tiers"`
}

type TierLimit struct {
	Max    int    `json:"max"`
	Window string `json:"window"`
}

// WindowDuration parses the tier window, accepting a "d" day suffix on top
// of time.ParseDuration units ("7d", "24h", "30m").
func (t TierLimit) WindowDuration() (time.Duration, error) {
	raw := strings.TrimSpace(t.Window)
	if raw == "" {
		return 0, fmt.Errorf("window is required")
	}
	if strings.HasSuffix(raw, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(raw, "d"))
		if err != nil {
			return 0, fmt.Errorf("parse window %q: %w", raw, err)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse window %q: %w", raw, err)
	}
	return d, nil
}

type MailConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	From     string `json:"from"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type ScheduleConfig struct {
	SweepSpec    string `json:"sweep_spec"`
	BackfillSpec string `json:"backfill_spec"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.AI.MaxInputChars == 0 {
		cfg.AI.MaxInputChars = 8000
	}
	if cfg.AI.Timeout == 0 {
		cfg.AI.Timeout = 30
	}
	if cfg.Sources.FetchTimeout == 0 {
		cfg.Sources.FetchTimeout = 20
	}
	if cfg.Sources.HNHiring.MaxPages == 0 {
		cfg.Sources.HNHiring.MaxPages = 5
	}
	if cfg.Sources.HNHiring.PageDelayMS == 0 {
		cfg.Sources.HNHiring.PageDelayMS = 1000
	}
	if cfg.RateLimit.Tiers == nil {
		cfg.RateLimit.Tiers = map[string]TierLimit{
			"free": {Max: 20, Window: "1d"},
			"pro":  {Max: 500, Window: "1d"},
		}
	}
	for tier, limit := range cfg.RateLimit.Tiers {
		if _, err := limit.WindowDuration(); err != nil {
			return nil, fmt.Errorf("rate_limit.tiers.%s: %w", tier, err)
		}
	}
	if cfg.Schedule.SweepSpec == "" {
		cfg.Schedule.SweepSpec = "0 */6 * * *"
	}
	if cfg.Schedule.BackfillSpec == "" {
		cfg.Schedule.BackfillSpec = "*/15 * * * *"
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	return &cfg, nil
}
