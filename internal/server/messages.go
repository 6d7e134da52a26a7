package server

import (
	"valorant-match-scraper/internal/domain"
	"valorant-match-scraper/internal/tracker"
)

type ResolveMatchRequest struct {
	MatchURL string `json:"match_url"`
	// IncludePlayerDetails defaults to true when omitted.
	IncludePlayerDetails *bool `json:"include_player_details,omitempty"`
}

type ResolveMatchByIDRequest struct {
	MatchID string `json:"match_id"`
}

type MatchResponse struct {
	Match          *domain.MatchResult `json:"match"`
	ProcessingTime float64             `json:"processing_time"`
}

type ResolveMatchesRequest struct {
	URLs []string `json:"urls"`
}

type ErrorDetail struct {
	Kind      domain.ErrorKind `json:"kind"`
	Message   string           `json:"message"`
	Retryable bool             `json:"retryable"`
}

type BatchResult struct {
	URL     string              `json:"url"`
	Success bool                `json:"success"`
	Match   *domain.MatchResult `json:"match,omitempty"`
	Error   *ErrorDetail        `json:"error,omitempty"`
}

type ResolveMatchesResponse struct {
	TotalRequested int           `json:"total_requested"`
	Successful     int           `json:"successful"`
	Failed         int           `json:"failed"`
	Results        []BatchResult `json:"results"`
	ProcessingTime float64       `json:"processing_time"`
}

type ListOptionsRequest struct {
	Query string `json:"query,omitempty"`
}

type ListOptionsResponse struct {
	Options []domain.Option `json:"options"`
	Version string          `json:"version"`
}

type GetStatsRequest struct{}

type GetStatsResponse struct {
	Service               string                 `json:"service"`
	Version               string                 `json:"version"`
	BaseURL               string                 `json:"base_url"`
	MaxRetries            int                    `json:"max_retries"`
	RequestTimeoutSeconds float64                `json:"request_timeout"`
	RequestDelaySeconds   float64                `json:"delay_between_requests"`
	MaxBatchSize          int                    `json:"max_batch_size"`
	MaxConcurrency        int                    `json:"max_concurrency"`
	ResolveCount          int64                  `json:"resolve_count"`
	Upstream              tracker.UpstreamStatus `json:"upstream"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}
