package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"valorant-match-scraper/internal/config"
	"valorant-match-scraper/internal/constants"
	"valorant-match-scraper/internal/domain"
	"valorant-match-scraper/internal/service"
	"valorant-match-scraper/internal/tracker"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

const ScraperServicePath = "/valorant.scraper.v1.ScraperService/"

const (
	ResolveMatchProcedure     = ScraperServicePath + "ResolveMatch"
	ResolveMatchByIDProcedure = ScraperServicePath + "ResolveMatchByID"
	ResolveMatchesProcedure   = ScraperServicePath + "ResolveMatches"
	ListGameModesProcedure    = ScraperServicePath + "ListGameModes"
	ListMapsProcedure         = ScraperServicePath + "ListMaps"
	GetStatsProcedure         = ScraperServicePath + "GetStats"
)

// UpstreamReporter is satisfied by *tracker.Fetcher.
type UpstreamReporter interface {
	Status() tracker.UpstreamStatus
}

type ScraperServer struct {
	matchSvc *service.MatchService
	batchSvc *service.BatchService
	upstream UpstreamReporter
	cfg      *config.Config
	logger   zerolog.Logger
}

func NewScraperServer(matchSvc *service.MatchService, batchSvc *service.BatchService, upstream UpstreamReporter, cfg *config.Config, logger zerolog.Logger) *ScraperServer {
	return &ScraperServer{matchSvc: matchSvc, batchSvc: batchSvc, upstream: upstream, cfg: cfg, logger: logger}
}

// Handler serves every procedure under ScraperServicePath.
func (s *ScraperServer) Handler() http.Handler {
	opts := []connect.HandlerOption{connect.WithCodec(jsonCodec{})}

	mux := http.NewServeMux()
	mux.Handle(ResolveMatchProcedure, connect.NewUnaryHandler(ResolveMatchProcedure, s.ResolveMatch, opts...))
	mux.Handle(ResolveMatchByIDProcedure, connect.NewUnaryHandler(ResolveMatchByIDProcedure, s.ResolveMatchByID, opts...))
	mux.Handle(ResolveMatchesProcedure, connect.NewUnaryHandler(ResolveMatchesProcedure, s.ResolveMatches, opts...))
	mux.Handle(ListGameModesProcedure, connect.NewUnaryHandler(ListGameModesProcedure, s.ListGameModes, opts...))
	mux.Handle(ListMapsProcedure, connect.NewUnaryHandler(ListMapsProcedure, s.ListMaps, opts...))
	mux.Handle(GetStatsProcedure, connect.NewUnaryHandler(GetStatsProcedure, s.GetStats, opts...))
	return mux
}

func (s *ScraperServer) ResolveMatch(ctx context.Context, req *connect.Request[ResolveMatchRequest]) (*connect.Response[MatchResponse], error) {
	start := time.Now()

	matchURL := strings.TrimSpace(req.Msg.MatchURL)
	if matchURL == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("match_url is required"))
	}

	match, err := s.matchSvc.Resolve(ctx, matchURL)
	if err != nil {
		return nil, toConnectError(err)
	}
	if req.Msg.IncludePlayerDetails != nil && !*req.Msg.IncludePlayerDetails {
		match = withoutPlayers(match)
	}

	return connect.NewResponse(&MatchResponse{Match: match, ProcessingTime: secondsSince(start)}), nil
}

func (s *ScraperServer) ResolveMatchByID(ctx context.Context, req *connect.Request[ResolveMatchByIDRequest]) (*connect.Response[MatchResponse], error) {
	start := time.Now()

	match, err := s.matchSvc.ResolveByID(ctx, req.Msg.MatchID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&MatchResponse{Match: match, ProcessingTime: secondsSince(start)}), nil
}

func (s *ScraperServer) ResolveMatches(ctx context.Context, req *connect.Request[ResolveMatchesRequest]) (*connect.Response[ResolveMatchesResponse], error) {
	start := time.Now()

	items, err := s.batchSvc.ResolveMany(ctx, req.Msg.URLs)
	if err != nil {
		return nil, toConnectError(err)
	}

	summary := service.Summarize(items)
	resp := &ResolveMatchesResponse{
		TotalRequested: summary.Total,
		Successful:     summary.Successful,
		Failed:         summary.Failed,
		Results:        make([]BatchResult, 0, len(items)),
	}
	for _, it := range items {
		r := BatchResult{URL: it.URL, Success: it.Err == nil, Match: it.Match}
		if it.Err != nil {
			kind := domain.KindOf(it.Err)
			r.Error = &ErrorDetail{Kind: kind, Message: it.Err.Error(), Retryable: kind.Retryable()}
		}
		resp.Results = append(resp.Results, r)
	}
	resp.ProcessingTime = secondsSince(start)

	s.logger.Info().
		Int("total", summary.Total).
		Int("failed", summary.Failed).
		Float64("processing_time", resp.ProcessingTime).
		Msg("batch request served")

	return connect.NewResponse(resp), nil
}

func (s *ScraperServer) ListGameModes(ctx context.Context, req *connect.Request[ListOptionsRequest]) (*connect.Response[ListOptionsResponse], error) {
	return connect.NewResponse(&ListOptionsResponse{
		Options: nonNil(domain.SearchGameModes(req.Msg.Query)),
		Version: domain.LookupTableVersion,
	}), nil
}

func (s *ScraperServer) ListMaps(ctx context.Context, req *connect.Request[ListOptionsRequest]) (*connect.Response[ListOptionsResponse], error) {
	return connect.NewResponse(&ListOptionsResponse{
		Options: nonNil(domain.SearchMaps(req.Msg.Query)),
		Version: domain.LookupTableVersion,
	}), nil
}

func (s *ScraperServer) GetStats(ctx context.Context, req *connect.Request[GetStatsRequest]) (*connect.Response[GetStatsResponse], error) {
	return connect.NewResponse(&GetStatsResponse{
		Service:               constants.ServiceName,
		Version:               constants.ServiceVersion,
		BaseURL:               s.cfg.BaseURL,
		MaxRetries:            s.cfg.MaxRetries,
		RequestTimeoutSeconds: s.cfg.RequestTimeout.Seconds(),
		RequestDelaySeconds:   s.cfg.RequestDelay.Seconds(),
		MaxBatchSize:          s.cfg.MaxBatchSize,
		MaxConcurrency:        s.cfg.MaxConcurrency,
		ResolveCount:          s.matchSvc.ResolveCount(),
		Upstream:              s.upstream.Status(),
	}), nil
}

// HealthHandler answers GET /health without touching the provider.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(HealthResponse{
		Status:  "healthy",
		Service: constants.ServiceName,
		Version: constants.ServiceVersion,
	})
}

func toConnectError(err error) *connect.Error {
	code := connect.CodeInternal
	switch domain.KindOf(err) {
	case domain.KindInvalidURL, domain.KindTooManyURLs:
		code = connect.CodeInvalidArgument
	case domain.KindNotFound:
		code = connect.CodeNotFound
	case domain.KindUnreachable:
		code = connect.CodeUnavailable
	case domain.KindMalformedDocument:
		code = connect.CodeFailedPrecondition
	}
	return connect.NewError(code, err)
}

func withoutPlayers(m *domain.MatchResult) *domain.MatchResult {
	c := *m
	c.Players = []domain.PlayerPerformance{}
	return &c
}

func nonNil(options []domain.Option) []domain.Option {
	if options == nil {
		return []domain.Option{}
	}
	return options
}

func secondsSince(start time.Time) float64 {
	return time.Since(start).Seconds()
}
