package fx

import (
	"valorant-match-scraper/internal/config"
	"valorant-match-scraper/internal/extract"
	"valorant-match-scraper/internal/logger"
	"valorant-match-scraper/internal/server"
	"valorant-match-scraper/internal/service"
	"valorant-match-scraper/internal/tracker"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// ProvideConfig loads config with the bootstrap logger; everything else gets
// the configured one from logger.Module.
func ProvideConfig() (*config.Config, error) {
	return config.Load(logger.New())
}

func ProvideFetcher(cfg *config.Config, log zerolog.Logger) *tracker.Fetcher {
	return tracker.NewFetcher(cfg, log)
}

func ProvideMatchService(fetcher *tracker.Fetcher, extractor *extract.Extractor, log zerolog.Logger) *service.MatchService {
	return service.NewMatchService(fetcher, fetcher.URLs(), extractor, log)
}

func ProvideScraperServer(matchSvc *service.MatchService, batchSvc *service.BatchService, fetcher *tracker.Fetcher, cfg *config.Config, log zerolog.Logger) *server.ScraperServer {
	return server.NewScraperServer(matchSvc, batchSvc, fetcher, cfg, log)
}

// Pipeline is everything needed to resolve matches in-process, given a
// *config.Config.
var Pipeline = fx.Options(
	logger.Module,
	// upstream
	fx.Provide(ProvideFetcher),
	fx.Provide(extract.NewExtractor),
	// svc
	fx.Provide(ProvideMatchService),
	fx.Provide(service.NewBatchService),
)

var Module = fx.Options(
	fx.Provide(ProvideConfig),
	Pipeline,
	// server
	fx.Provide(ProvideScraperServer),
)
