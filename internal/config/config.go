package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	"valorant-match-scraper/internal/constants"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
)

// Config is loaded once at startup and never modified afterwards.
type Config struct {
	BaseURL        string
	UserAgent      string
	RequestTimeout time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	RequestDelay   time.Duration
	MaxBatchSize   int
	MaxConcurrency int
	ServerPort     string
	LogLevel       string
	LogFile        string
}

func Default() Config {
	return Config{
		BaseURL:        constants.DefaultBaseURL,
		UserAgent:      constants.DefaultUserAgent,
		RequestTimeout: constants.DefaultRequestTimeout,
		MaxRetries:     constants.DefaultMaxRetries,
		RetryBackoff:   constants.DefaultRetryBackoff,
		RequestDelay:   constants.DefaultRequestDelay,
		MaxBatchSize:   constants.DefaultMaxBatchSize,
		MaxConcurrency: constants.DefaultMaxConcurrency,
		ServerPort:     "8080",
		LogLevel:       "info",
	}
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := Default()

	if path := os.Getenv("SCRAPER_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
		logger.Debug().Str("path", path).Msg("config file applied")
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("base_url", cfg.BaseURL).
		Dur("request_timeout", cfg.RequestTimeout).
		Int("max_retries", cfg.MaxRetries).
		Dur("request_delay", cfg.RequestDelay).
		Int("max_batch_size", cfg.MaxBatchSize).
		Int("max_concurrency", cfg.MaxConcurrency).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Msg("configuration loaded")

	return &cfg, nil
}

// fileConfig mirrors Config for TOML files; durations are strings such as
// "1500ms" and unset keys keep their defaults.
type fileConfig struct {
	BaseURL        *string `toml:"base_url"`
	UserAgent      *string `toml:"user_agent"`
	RequestTimeout *string `toml:"request_timeout"`
	MaxRetries     *int    `toml:"max_retries"`
	RetryBackoff   *string `toml:"retry_backoff"`
	RequestDelay   *string `toml:"request_delay"`
	MaxBatchSize   *int    `toml:"max_batch_size"`
	MaxConcurrency *int    `toml:"max_concurrency"`
	ServerPort     *string `toml:"server_port"`
	LogLevel       *string `toml:"log_level"`
	LogFile        *string `toml:"log_file"`
}

func (c *Config) loadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var fc fileConfig
	if err := toml.NewDecoder(file).DisallowUnknownFields().Decode(&fc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return c.merge(fc)
}

func (c *Config) merge(fc fileConfig) error {
	setString(&c.BaseURL, fc.BaseURL)
	setString(&c.UserAgent, fc.UserAgent)
	setString(&c.ServerPort, fc.ServerPort)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.LogFile, fc.LogFile)
	setInt(&c.MaxRetries, fc.MaxRetries)
	setInt(&c.MaxBatchSize, fc.MaxBatchSize)
	setInt(&c.MaxConcurrency, fc.MaxConcurrency)

	durations := []struct {
		key string
		src *string
		dst *time.Duration
	}{
		{"request_timeout", fc.RequestTimeout, &c.RequestTimeout},
		{"retry_backoff", fc.RetryBackoff, &c.RetryBackoff},
		{"request_delay", fc.RequestDelay, &c.RequestDelay},
	}
	for _, d := range durations {
		if d.src == nil {
			continue
		}
		v, err := parseDuration(*d.src)
		if err != nil {
			return fmt.Errorf("parse config: %s: %w", d.key, err)
		}
		*d.dst = v
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func (c *Config) applyEnv() error {
	var err error
	c.BaseURL = getEnv("SCRAPER_BASE_URL", c.BaseURL)
	c.UserAgent = getEnv("SCRAPER_USER_AGENT", c.UserAgent)
	c.ServerPort = getEnv("SERVER_PORT", c.ServerPort)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)

	if c.RequestTimeout, err = getEnvDuration("SCRAPER_REQUEST_TIMEOUT", c.RequestTimeout); err != nil {
		return err
	}
	if c.RetryBackoff, err = getEnvDuration("SCRAPER_RETRY_BACKOFF", c.RetryBackoff); err != nil {
		return err
	}
	if c.RequestDelay, err = getEnvDuration("SCRAPER_REQUEST_DELAY", c.RequestDelay); err != nil {
		return err
	}
	if c.MaxRetries, err = getEnvInt("SCRAPER_MAX_RETRIES", c.MaxRetries); err != nil {
		return err
	}
	if c.MaxBatchSize, err = getEnvInt("SCRAPER_MAX_BATCH_SIZE", c.MaxBatchSize); err != nil {
		return err
	}
	if c.MaxConcurrency, err = getEnvInt("SCRAPER_MAX_CONCURRENCY", c.MaxConcurrency); err != nil {
		return err
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("base_url %q must be an absolute http(s) url", c.BaseURL))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request_timeout must be positive"))
	}
	if c.MaxRetries < 1 {
		errs = append(errs, errors.New("max_retries must be at least 1"))
	}
	if c.RetryBackoff < 0 {
		errs = append(errs, errors.New("retry_backoff must not be negative"))
	}
	if c.RequestDelay < 0 {
		errs = append(errs, errors.New("request_delay must not be negative"))
	}
	if c.MaxBatchSize < 1 {
		errs = append(errs, errors.New("max_batch_size must be at least 1"))
	}
	if c.MaxConcurrency < 1 {
		errs = append(errs, errors.New("max_concurrency must be at least 1"))
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// ParsedBaseURL returns BaseURL as a url.URL; Validate guarantees it parses.
func (c *Config) ParsedBaseURL() *url.URL {
	u, _ := url.Parse(c.BaseURL)
	return u
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := parseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// parseDuration accepts Go syntax ("1500ms") or plain seconds ("1.5").
func parseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", v)
	}
	return time.Duration(secs * float64(time.Second)), nil
}
