package constants

import "time"

const (
	DefaultBaseURL        = "https://tracker.gg/valorant"
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultRequestTimeout = 30 * time.Second
	DefaultRequestDelay   = 1 * time.Second
	DefaultRetryBackoff   = 1 * time.Second
	DefaultMaxRetries     = 3
	DefaultMaxBatchSize   = 10
	DefaultMaxConcurrency = 3
)

const (
	MatchPathSegment = "match"
	MaxRetryBackoff  = 30 * time.Second
	MaxBodySize      = 8 << 20
)

const (
	ShutdownTimeout = 5 * time.Second
	RequestTimeout  = 5 * time.Minute
)

const (
	LogFileMaxSizeMB  = 50
	LogFileMaxBackups = 5
	LogFileMaxAgeDays = 14
)

const (
	ServiceName    = "valorant-match-scraper"
	ServiceVersion = "1.0.0"
)
