package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/url"
	"testing"
	"valorant-match-scraper/internal/domain"
	"valorant-match-scraper/internal/service"
	"valorant-match-scraper/internal/tracker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMatch() *domain.MatchResult {
	secs := 2322
	return domain.NewMatchResult(domain.MatchHeader{
		MatchID:         "abc123",
		MatchURL:        "https://tracker.gg/valorant/match/abc123",
		GameMode:        domain.GameModeCompetitive,
		MapName:         domain.MapBind,
		DurationSeconds: &secs,
		RedTeamScore:    13,
		BlueTeamScore:   11,
	}, []domain.PlayerPerformance{
		domain.NewPlayerPerformance("Nova", domain.TeamRed, domain.PlayerStats{Kills: 10, Deaths: 5, Headshots: 3, Score: 4210}),
	})
}

func TestModesCommand_JSON(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"modes", "--json"})
	require.NoError(t, cmd.Execute())

	var got catalogOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, domain.LookupTableVersion, got.Version)
	assert.Len(t, got.Options, len(domain.GameModes()))
}

func TestMapsCommand_Query(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"maps", "zzzz"})
	require.NoError(t, cmd.Execute())

	var got catalogOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got), "non-terminal output is JSON")
	assert.Empty(t, got.Options)
}

func TestMatchCommand_RequiresArgs(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"match"})
	assert.Error(t, cmd.Execute())
}

func TestToURLs(t *testing.T) {
	base, err := url.Parse("https://tracker.gg/valorant")
	require.NoError(t, err)

	got := toURLs(tracker.NewMatchURLs(base), []string{
		"abc123",
		"https://tracker.gg/valorant/match/def456",
		"a/b",
	})
	assert.Equal(t, []string{
		"https://tracker.gg/valorant/match/abc123",
		"https://tracker.gg/valorant/match/def456",
		"a/b",
	}, got)
}

func TestPrintMatches(t *testing.T) {
	items := []service.BatchItem{
		{URL: "https://tracker.gg/valorant/match/abc123", Match: sampleMatch()},
		{URL: "https://tracker.gg/valorant/match/bad", Err: &domain.PipelineError{
			URL:   "https://tracker.gg/valorant/match/bad",
			Stage: service.StageExtract,
			Err:   &domain.ParseError{Block: "players", Err: errors.New("no player rows found")},
		}},
	}

	var out bytes.Buffer
	printMatches(&out, items)
	s := out.String()

	assert.Contains(t, s, "abc123  competitive on bind  red 13 - 11 blue  winner: red")
	assert.Contains(t, s, "duration 38:42")
	assert.Contains(t, s, "Nova")
	assert.Contains(t, s, "2.00")
	assert.Contains(t, s, "30.0")
	assert.Contains(t, s, "error (malformed_document)")
}

func TestToOutput(t *testing.T) {
	out := toOutput([]service.BatchItem{
		{URL: "u1", Match: sampleMatch()},
		{URL: "u2", Err: &domain.FetchError{Kind: domain.KindUnreachable, URL: "u2", Attempts: 3}},
	})
	require.Len(t, out, 2)
	assert.Nil(t, out[0].Error)
	require.NotNil(t, out[1].Error)
	assert.Equal(t, domain.KindUnreachable, out[1].Error.Kind)
	assert.True(t, out[1].Error.Retryable)
}
