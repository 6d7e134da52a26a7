package service

import (
	"context"
	"strings"
	"sync/atomic"
	"time"
	"valorant-match-scraper/internal/domain"
	"valorant-match-scraper/internal/extract"
	"valorant-match-scraper/internal/tracker"

	"github.com/rs/zerolog"
)

const (
	StageFetch   = "fetch"
	StageExtract = "extract"
)

// PageFetcher is satisfied by *tracker.Fetcher.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

type MatchService struct {
	fetcher   PageFetcher
	urls      tracker.MatchURLs
	extractor *extract.Extractor
	logger    zerolog.Logger
	resolved  atomic.Int64
}

func NewMatchService(fetcher PageFetcher, urls tracker.MatchURLs, extractor *extract.Extractor, logger zerolog.Logger) *MatchService {
	return &MatchService{fetcher: fetcher, urls: urls, extractor: extractor, logger: logger}
}

// Resolve fetches and extracts one match. It either returns a complete
// MatchResult or a *domain.PipelineError naming the failed stage.
func (s *MatchService) Resolve(ctx context.Context, rawURL string) (*domain.MatchResult, error) {
	s.resolved.Add(1)
	rawURL = strings.TrimSpace(rawURL)
	start := time.Now()

	body, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		s.logger.Error().Err(err).Str("url", rawURL).Str("kind", string(domain.KindOf(err))).Msg("failed to fetch match page")
		return nil, &domain.PipelineError{URL: rawURL, Stage: StageFetch, Err: err}
	}

	match, err := s.extractor.Extract(body, rawURL)
	if err != nil {
		s.logger.Error().Err(err).Str("url", rawURL).Msg("failed to extract match")
		return nil, &domain.PipelineError{URL: rawURL, Stage: StageExtract, Err: err}
	}

	s.logger.Info().
		Str("url", rawURL).
		Str("match_id", match.MatchID).
		Int("players", len(match.Players)).
		Dur("elapsed", time.Since(start)).
		Msg("match resolved")
	return match, nil
}

func (s *MatchService) ResolveByID(ctx context.Context, matchID string) (*domain.MatchResult, error) {
	u, err := s.urls.ForID(matchID)
	if err != nil {
		s.resolved.Add(1)
		return nil, &domain.PipelineError{
			URL:   matchID,
			Stage: StageFetch,
			Err:   &domain.FetchError{Kind: domain.KindInvalidURL, URL: matchID, Err: err},
		}
	}
	return s.Resolve(ctx, u)
}

// ResolveCount is the number of Resolve calls since start, successful or not.
func (s *MatchService) ResolveCount() int64 {
	return s.resolved.Load()
}
