package videostats

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the scraper, the rate limiter and
// the API server. Values come from defaults, then an optional YAML file,
// then VIDEOSTATS_* environment variables, last one wins.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Scraper   ScraperConfig   `yaml:"scraper"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type ScraperConfig struct {
	Headless          bool          `yaml:"headless"`
	NavTimeout        time.Duration `yaml:"nav_timeout"`
	Proxy             string        `yaml:"proxy"`
	ResolveShortLinks bool          `yaml:"resolve_short_links"`
}

type RateLimitConfig struct {
	MinDelay    time.Duration `yaml:"min_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
	MaxRequests int           `yaml:"max_requests"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the configuration used when nothing is provided.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5000,
		},
		Scraper: ScraperConfig{
			Headless:   true,
			NavTimeout: defaultNavTimeout,
		},
		RateLimit: RateLimitConfig{
			MinDelay:    defaultMinDelay,
			MaxDelay:    defaultMaxDelay,
			MaxRequests: defaultMaxRequests,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig builds a Config from defaults, an optional YAML file (path
// may be empty) and environment overrides. A .env file in the working
// directory is honored if present.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("VIDEOSTATS_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("VIDEOSTATS_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("VIDEOSTATS_HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Scraper.Headless = b
		}
	}
	if v := os.Getenv("VIDEOSTATS_PROXY"); v != "" {
		c.Scraper.Proxy = v
	}
	if v := os.Getenv("VIDEOSTATS_NAV_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Scraper.NavTimeout = d
		}
	}
	if v := os.Getenv("VIDEOSTATS_MIN_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.RateLimit.MinDelay = d
		}
	}
	if v := os.Getenv("VIDEOSTATS_MAX_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.RateLimit.MaxDelay = d
		}
	}
	if v := os.Getenv("VIDEOSTATS_MAX_REQUESTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateLimit.MaxRequests = n
		}
	}
	if v := os.Getenv("VIDEOSTATS_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Server.Port)
	}
	if c.RateLimit.MinDelay < 0 {
		return fmt.Errorf("config: negative min_delay")
	}
	if c.RateLimit.MaxDelay < c.RateLimit.MinDelay {
		return fmt.Errorf("config: max_delay %v below min_delay %v",
			c.RateLimit.MaxDelay, c.RateLimit.MinDelay)
	}
	if c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("config: max_requests must be positive")
	}
	if c.Scraper.NavTimeout <= 0 {
		return fmt.Errorf("config: nav_timeout must be positive")
	}
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("config: invalid log level %q", c.Logging.Level)
	}
	return nil
}

// NewLimiter builds a RateLimiter from the rate-limit section.
func (c *Config) NewLimiter() *RateLimiter {
	return NewRateLimiterWith(c.RateLimit.MinDelay, c.RateLimit.MaxDelay, c.RateLimit.MaxRequests)
}

// NewScraper builds a Scraper from the scraper section.
func (c *Config) NewScraper(log zerolog.Logger) (*Scraper, error) {
	s := New().
		WithHeadless(c.Scraper.Headless).
		WithNavTimeout(c.Scraper.NavTimeout).
		WithResolveShortLinks(c.Scraper.ResolveShortLinks).
		WithLogger(log)
	if c.Scraper.Proxy != "" {
		if err := s.SetProxy(c.Scraper.Proxy); err != nil {
			return nil, err
		}
	}
	return s, nil
}
