package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"valorant-match-scraper/internal/config"
	"valorant-match-scraper/internal/domain"
	fxmodules "valorant-match-scraper/internal/fx"
	"valorant-match-scraper/internal/service"
	"valorant-match-scraper/internal/tracker"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

type matchOutput struct {
	URL   string              `json:"url"`
	Match *domain.MatchResult `json:"match,omitempty"`
	Error *errorOutput        `json:"error,omitempty"`
}

type errorOutput struct {
	Kind      domain.ErrorKind `json:"kind"`
	Message   string           `json:"message"`
	Retryable bool             `json:"retryable"`
}

func newMatchCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "match <url|id>...",
		Short: "Fetch and extract one or more match pages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fetcher, batch, err := loadPipeline(opts.verbose)
			if err != nil {
				return err
			}

			items, err := batch.ResolveMany(cmd.Context(), toURLs(fetcher.URLs(), args))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.wantJSON(out) {
				if err := writeJSON(cmd, toOutput(items)); err != nil {
					return err
				}
			} else {
				printMatches(out, items)
			}

			if summary := service.Summarize(items); summary.Failed > 0 {
				return fmt.Errorf("%d of %d matches failed", summary.Failed, summary.Total)
			}
			return nil
		},
	}
}

// loadPipeline builds the same services the server uses, logging to stderr.
func loadPipeline(verbose bool) (*tracker.Fetcher, *service.BatchService, error) {
	var (
		fetcher *tracker.Fetcher
		batch   *service.BatchService
	)
	app := fx.New(
		fx.NopLogger,
		fx.Provide(func() (*config.Config, error) {
			return config.Load(cliLogger(verbose))
		}),
		fxmodules.Pipeline,
		fx.Decorate(func(zerolog.Logger) zerolog.Logger {
			return cliLogger(verbose)
		}),
		fx.Populate(&fetcher, &batch),
	)
	if err := app.Err(); err != nil {
		return nil, nil, err
	}
	return fetcher, batch, nil
}

func cliLogger(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().
		Timestamp().
		Logger().
		Level(level)
}

// toURLs expands bare match ids into provider URLs. Anything that is not a
// valid id is passed through so the pipeline reports it per item.
func toURLs(urls tracker.MatchURLs, args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if strings.Contains(a, "://") {
			out = append(out, a)
			continue
		}
		u, err := urls.ForID(a)
		if err != nil {
			out = append(out, a)
			continue
		}
		out = append(out, u)
	}
	return out
}

func toOutput(items []service.BatchItem) []matchOutput {
	out := make([]matchOutput, 0, len(items))
	for _, it := range items {
		o := matchOutput{URL: it.URL, Match: it.Match}
		if it.Err != nil {
			kind := domain.KindOf(it.Err)
			o.Error = &errorOutput{Kind: kind, Message: it.Err.Error(), Retryable: kind.Retryable()}
		}
		out = append(out, o)
	}
	return out
}

func printMatches(w io.Writer, items []service.BatchItem) {
	for i, it := range items {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if it.Err != nil {
			fmt.Fprintf(w, "%s\n  error (%s): %v\n", it.URL, domain.KindOf(it.Err), it.Err)
			continue
		}
		fmt.Fprintln(w, matchHeadline(it.Match))
		fmt.Fprintln(w, playersTable(it.Match.Players))
	}
}

func matchHeadline(m *domain.MatchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s on %s  red %d - %d blue  winner: %s",
		m.MatchID, m.GameMode, m.MapName, m.RedTeamScore, m.BlueTeamScore, m.Winner)
	if m.DurationSeconds != nil {
		d := *m.DurationSeconds
		fmt.Fprintf(&b, "  duration %d:%02d", d/60, d%60)
	}
	if m.MatchDate != nil {
		fmt.Fprintf(&b, "  played %s", m.MatchDate.Format("2006-01-02 15:04"))
	}
	return b.String()
}

func playersTable(players []domain.PlayerPerformance) string {
	headers := []string{"Player", "Team", "K", "D", "A", "K/D", "HS%", "Score", "Damage"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight}

	rows := make([][]string, 0, len(players))
	for _, p := range players {
		rows = append(rows, []string{
			p.PlayerName,
			string(p.Team),
			strconv.Itoa(p.Kills),
			strconv.Itoa(p.Deaths),
			strconv.Itoa(p.Assists),
			strconv.FormatFloat(p.KDRatio, 'f', 2, 64),
			strconv.FormatFloat(p.HeadshotPercentage, 'f', 1, 64),
			strconv.Itoa(p.Score),
			strconv.Itoa(p.DamageDealt),
		})
	}
	return renderTable(headers, rows, aligns)
}
