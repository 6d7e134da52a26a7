package service

import (
	"context"
	"fmt"
	"time"
	"valorant-match-scraper/internal/config"
	"valorant-match-scraper/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// BatchItem is the outcome for one input URL: exactly one of Match and Err
// is set.
type BatchItem struct {
	URL   string
	Match *domain.MatchResult
	Err   error
}

type BatchSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

type BatchService struct {
	matches        *MatchService
	maxBatchSize   int
	maxConcurrency int
	logger         zerolog.Logger
}

func NewBatchService(matches *MatchService, cfg *config.Config, logger zerolog.Logger) *BatchService {
	return &BatchService{
		matches:        matches,
		maxBatchSize:   cfg.MaxBatchSize,
		maxConcurrency: cfg.MaxConcurrency,
		logger:         logger,
	}
}

// ResolveMany resolves every URL with at most maxConcurrency in flight.
// Items come back in input order and one failure never cancels the others.
func (s *BatchService) ResolveMany(ctx context.Context, urls []string) ([]BatchItem, error) {
	if len(urls) > s.maxBatchSize {
		return nil, &domain.BatchError{Kind: domain.KindTooManyURLs, Size: len(urls), Limit: s.maxBatchSize}
	}

	batchID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate batch id: %w", err)
	}
	logger := s.logger.With().Str("batch_id", batchID).Logger()
	logger.Info().Int("urls", len(urls)).Int("concurrency", s.maxConcurrency).Msg("batch started")
	start := time.Now()

	items := make([]BatchItem, len(urls))
	g := new(errgroup.Group)
	g.SetLimit(s.maxConcurrency)

	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			match, err := s.matches.Resolve(ctx, u)
			items[i] = BatchItem{URL: u, Match: match, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	summary := Summarize(items)
	logger.Info().
		Int("successful", summary.Successful).
		Int("failed", summary.Failed).
		Dur("elapsed", time.Since(start)).
		Msg("batch finished")

	return items, nil
}

func Summarize(items []BatchItem) BatchSummary {
	summary := BatchSummary{Total: len(items)}
	for _, it := range items {
		if it.Err != nil {
			summary.Failed++
		} else {
			summary.Successful++
		}
	}
	return summary
}

func (s *BatchService) MaxBatchSize() int {
	return s.maxBatchSize
}
