package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"valorant-match-scraper/internal/config"
	"valorant-match-scraper/internal/domain"
	"valorant-match-scraper/internal/extract"
	"valorant-match-scraper/internal/service"
	"valorant-match-scraper/internal/tracker"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body>
<div class="match-header" data-mode="competitive" data-map="bind">
  <div class="score">13</div><div class="score">11</div>
</div>
<div class="player-stats">
  <div class="player-name">Nova</div><div class="team">red</div>
  <div class="kills">10</div><div class="deaths">5</div><div class="assists">2</div>
  <div class="headshots">3</div><div class="score">250</div>
</div>
</body></html>`

type stubFetcher map[string]string

func (f stubFetcher) Fetch(_ context.Context, rawURL string) ([]byte, error) {
	if !strings.HasPrefix(rawURL, "https://provider/valorant/match/") {
		return nil, &domain.FetchError{Kind: domain.KindInvalidURL, URL: rawURL}
	}
	if body, ok := f[rawURL]; ok {
		return []byte(body), nil
	}
	if rawURL == "https://provider/valorant/match/down" {
		return nil, &domain.FetchError{Kind: domain.KindUnreachable, URL: rawURL, Attempts: 3}
	}
	return nil, &domain.FetchError{Kind: domain.KindNotFound, URL: rawURL, StatusCode: 404, Attempts: 1}
}

type stubUpstream struct{}

func (stubUpstream) Status() tracker.UpstreamStatus {
	return tracker.UpstreamStatus{Requests: 7, LastStatus: 200}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	base, err := url.Parse("https://provider/valorant")
	require.NoError(t, err)

	cfg := config.Default()
	cfg.BaseURL = "https://provider/valorant"
	cfg.MaxBatchSize = 3

	logger := zerolog.Nop()
	fetcher := stubFetcher{
		"https://provider/valorant/match/abc123": page,
		"https://provider/valorant/match/empty":  "<html></html>",
	}
	matches := service.NewMatchService(fetcher, tracker.NewMatchURLs(base), extract.NewExtractor(logger), logger)
	batch := service.NewBatchService(matches, &cfg, logger)
	srv := NewScraperServer(matches, batch, stubUpstream{}, &cfg, logger)

	mux := http.NewServeMux()
	mux.Handle(ScraperServicePath, srv.Handler())
	mux.HandleFunc("/health", HealthHandler)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func call(t *testing.T, ts *httptest.Server, procedure string, body any, out any) int {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+procedure, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type connectError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func TestResolveMatch(t *testing.T) {
	ts := newTestServer(t)

	var resp MatchResponse
	status := call(t, ts, ResolveMatchProcedure, ResolveMatchRequest{MatchURL: "https://provider/valorant/match/abc123"}, &resp)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, resp.Match)
	assert.Equal(t, "abc123", resp.Match.MatchID)
	assert.Equal(t, domain.TeamRed, resp.Match.Winner)
	require.Len(t, resp.Match.Players, 1)
	assert.InDelta(t, 2.0, resp.Match.Players[0].KDRatio, 1e-9)
	assert.GreaterOrEqual(t, resp.ProcessingTime, 0.0)
}

func TestResolveMatch_WithoutPlayers(t *testing.T) {
	ts := newTestServer(t)
	no := false

	var resp MatchResponse
	status := call(t, ts, ResolveMatchProcedure, ResolveMatchRequest{
		MatchURL:             "https://provider/valorant/match/abc123",
		IncludePlayerDetails: &no,
	}, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, resp.Match.Players)
	assert.Equal(t, 13, resp.Match.RedTeamScore)
}

func TestResolveMatch_ErrorCodes(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		status int
		code   string
	}{
		{"missing url", "", http.StatusBadRequest, "invalid_argument"},
		{"invalid url", "https://elsewhere/valorant/match/abc123", http.StatusBadRequest, "invalid_argument"},
		{"not found", "https://provider/valorant/match/gone", http.StatusNotFound, "not_found"},
		{"unreachable", "https://provider/valorant/match/down", http.StatusServiceUnavailable, "unavailable"},
		{"malformed", "https://provider/valorant/match/empty", http.StatusBadRequest, "failed_precondition"},
	}
	ts := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ce connectError
			status := call(t, ts, ResolveMatchProcedure, ResolveMatchRequest{MatchURL: tt.url}, &ce)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, ce.Code)
		})
	}
}

func TestResolveMatchByID(t *testing.T) {
	ts := newTestServer(t)

	var resp MatchResponse
	status := call(t, ts, ResolveMatchByIDProcedure, ResolveMatchByIDRequest{MatchID: "abc123"}, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "https://provider/valorant/match/abc123", resp.Match.MatchURL)
}

func TestResolveMatches(t *testing.T) {
	ts := newTestServer(t)

	var resp ResolveMatchesResponse
	status := call(t, ts, ResolveMatchesProcedure, ResolveMatchesRequest{URLs: []string{
		"https://provider/valorant/match/abc123",
		"https://provider/valorant/match/empty",
	}}, &resp)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, 2, resp.TotalRequested)
	assert.Equal(t, 1, resp.Successful)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Results, 2)
	assert.True(t, resp.Results[0].Success)
	assert.False(t, resp.Results[1].Success)
	assert.Equal(t, "https://provider/valorant/match/empty", resp.Results[1].URL)
	require.NotNil(t, resp.Results[1].Error)
	assert.Equal(t, domain.KindMalformedDocument, resp.Results[1].Error.Kind)
	assert.False(t, resp.Results[1].Error.Retryable)
}

func TestResolveMatches_TooMany(t *testing.T) {
	ts := newTestServer(t)

	var ce connectError
	status := call(t, ts, ResolveMatchesProcedure, ResolveMatchesRequest{URLs: []string{"a", "b", "c", "d"}}, &ce)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_argument", ce.Code)
	assert.Contains(t, ce.Message, "exceeds limit of 3")
}

func TestListOptions(t *testing.T) {
	ts := newTestServer(t)

	var modes ListOptionsResponse
	require.Equal(t, http.StatusOK, call(t, ts, ListGameModesProcedure, ListOptionsRequest{}, &modes))
	assert.Len(t, modes.Options, len(domain.GameModes()))
	assert.Equal(t, domain.LookupTableVersion, modes.Version)

	var maps ListOptionsResponse
	require.Equal(t, http.StatusOK, call(t, ts, ListMapsProcedure, ListOptionsRequest{Query: "asc"}, &maps))
	require.NotEmpty(t, maps.Options)
	assert.Equal(t, "ascent", maps.Options[0].Value)
}

func TestGetStats(t *testing.T) {
	ts := newTestServer(t)
	call(t, ts, ResolveMatchByIDProcedure, ResolveMatchByIDRequest{MatchID: "abc123"}, nil)

	var stats GetStatsResponse
	require.Equal(t, http.StatusOK, call(t, ts, GetStatsProcedure, GetStatsRequest{}, &stats))
	assert.Equal(t, "https://provider/valorant", stats.BaseURL)
	assert.Equal(t, 3, stats.MaxBatchSize)
	assert.Equal(t, int64(1), stats.ResolveCount)
	assert.Equal(t, int64(7), stats.Upstream.Requests)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var health HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", health.Status)
}
