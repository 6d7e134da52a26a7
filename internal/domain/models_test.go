package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWinnerOf(t *testing.T) {
	for red := 0; red <= 15; red++ {
		for blue := 0; blue <= 15; blue++ {
			got := WinnerOf(red, blue)
			switch {
			case red > blue:
				assert.Equal(t, TeamRed, got, "%d-%d", red, blue)
			case blue > red:
				assert.Equal(t, TeamBlue, got, "%d-%d", red, blue)
			default:
				assert.Equal(t, TeamTie, got, "%d-%d", red, blue)
			}
		}
	}
}

func TestKDRatio(t *testing.T) {
	assert.Equal(t, 7.0, KDRatio(7, 0))
	assert.Equal(t, 0.0, KDRatio(0, 0))
	assert.Equal(t, 2.0, KDRatio(10, 5))
	assert.InDelta(t, 1.875, KDRatio(15, 8), 1e-9)

	for kills := 0; kills < 40; kills++ {
		for deaths := 1; deaths < 40; deaths++ {
			assert.Equal(t, float64(kills)/float64(deaths), KDRatio(kills, deaths))
		}
	}
}

func TestHeadshotPercentage(t *testing.T) {
	assert.Equal(t, 0.0, HeadshotPercentage(5, 0))
	assert.Equal(t, 30.0, HeadshotPercentage(3, 10))
	assert.Equal(t, 100.0, HeadshotPercentage(12, 10), "clamped to 100")
	assert.Equal(t, 0.0, HeadshotPercentage(0, 10))

	for kills := 0; kills < 30; kills++ {
		for hs := 0; hs < 40; hs++ {
			pct := HeadshotPercentage(hs, kills)
			assert.GreaterOrEqual(t, pct, 0.0)
			assert.LessOrEqual(t, pct, 100.0)
		}
	}
}

func TestNewPlayerPerformance(t *testing.T) {
	p := NewPlayerPerformance("Tenz", TeamRed, PlayerStats{Kills: 10, Deaths: 5, Headshots: 3, Score: 4200})

	assert.Equal(t, "Tenz", p.PlayerName)
	assert.Equal(t, TeamRed, p.Team)
	assert.Equal(t, 2.0, p.KDRatio)
	assert.Equal(t, 30.0, p.HeadshotPercentage)
	assert.Equal(t, 4200, p.Score)
}

func TestNewMatchResult_CopiesPlayers(t *testing.T) {
	players := []PlayerPerformance{
		NewPlayerPerformance("a", TeamRed, PlayerStats{Kills: 1}),
		NewPlayerPerformance("b", TeamBlue, PlayerStats{Kills: 2}),
	}
	m := NewMatchResult(MatchHeader{MatchID: "abc", RedTeamScore: 11, BlueTeamScore: 13}, players)

	players[0].PlayerName = "changed"

	require.Len(t, m.Players, 2)
	assert.Equal(t, "a", m.Players[0].PlayerName)
	assert.Equal(t, "b", m.Players[1].PlayerName)
	assert.Equal(t, TeamBlue, m.Winner)
}

func TestLookupTables(t *testing.T) {
	assert.Equal(t, GameModeCompetitive, LookupGameMode("competitive"))
	assert.Equal(t, GameModeCompetitive, LookupGameMode(" Competitive "))
	assert.Equal(t, GameModeSpikeRush, LookupGameMode("spike_rush"))
	assert.Equal(t, GameModeSpikeRush, LookupGameMode("Spike Rush"))
	assert.Equal(t, GameModeTeamDeathmatch, LookupGameMode("hurm"))
	assert.Equal(t, GameModeUnknown, LookupGameMode("premier-playoffs"))
	assert.Equal(t, GameModeUnknown, LookupGameMode(""))

	assert.Equal(t, MapBind, LookupMap("bind"))
	assert.Equal(t, MapBind, LookupMap("Duality"))
	assert.Equal(t, MapRange, LookupMap("The Range"))
	assert.Equal(t, MapUnknown, LookupMap("atlantis"))
}

func TestDiscoveryOptions(t *testing.T) {
	modes := GameModes()
	require.Len(t, modes, 11)
	assert.Equal(t, Option{Value: "deathmatch", Name: "Deathmatch"}, modes[0])
	assert.Equal(t, Option{Value: "unknown", Name: "Unknown"}, modes[len(modes)-1])
	assert.Contains(t, modes, Option{Value: "spike-rush", Name: "Spike Rush"})

	mapOpts := Maps()
	assert.Contains(t, mapOpts, Option{Value: "the-range", Name: "The Range"})
	assert.Equal(t, MapUnknown, MapName(mapOpts[len(mapOpts)-1].Value))

	assert.Len(t, SearchGameModes(""), len(modes))
	got := SearchMaps("asc")
	require.NotEmpty(t, got)
	assert.Equal(t, "ascent", got[0].Value)
	assert.Empty(t, SearchMaps("zzzz"))
}

func TestErrorClassification(t *testing.T) {
	fetchErr := &FetchError{Kind: KindUnreachable, URL: "u", Attempts: 3, Err: errors.New("503")}
	wrapped := &PipelineError{URL: "u", Stage: "fetch", Err: fetchErr}

	assert.ErrorIs(t, wrapped, ErrUnreachable)
	assert.NotErrorIs(t, wrapped, ErrNotFound)
	assert.Equal(t, KindUnreachable, wrapped.Kind())
	assert.True(t, KindOf(wrapped).Retryable())
	assert.Contains(t, wrapped.Error(), "after 3 attempts")

	parseErr := &ParseError{URL: "u", Block: "players"}
	assert.ErrorIs(t, fmt.Errorf("outer: %w", parseErr), ErrMalformedDocument)
	assert.Equal(t, KindMalformedDocument, KindOf(parseErr))
	assert.False(t, KindOf(parseErr).Retryable())

	batchErr := &BatchError{Kind: KindTooManyURLs, Size: 11, Limit: 10}
	assert.ErrorIs(t, batchErr, ErrTooManyURLs)
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}
