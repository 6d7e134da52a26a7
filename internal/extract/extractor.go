package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"valorant-match-scraper/internal/domain"
	"valorant-match-scraper/internal/tracker"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"
)

const (
	blockDocument = "document"
	blockHeader   = "header"
	blockScore    = "score"
	blockPlayers  = "players"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// Extractor turns a match page into a domain.MatchResult. It holds no
// per-document state and is safe for concurrent use.
type Extractor struct {
	logger zerolog.Logger
}

func NewExtractor(logger zerolog.Logger) *Extractor {
	return &Extractor{logger: logger.With().Str("component", "extractor").Logger()}
}

func (e *Extractor) Extract(doc []byte, sourceURL string) (*domain.MatchResult, error) {
	root, err := goquery.NewDocumentFromReader(bytes.NewReader(doc))
	if err != nil {
		return nil, &domain.ParseError{URL: sourceURL, Block: blockDocument, Err: err}
	}

	header, err := e.header(root, sourceURL)
	if err != nil {
		return nil, err
	}

	players, err := e.players(root, sourceURL)
	if err != nil {
		return nil, err
	}

	result := domain.NewMatchResult(header, players)

	e.logger.Debug().
		Str("match_id", result.MatchID).
		Str("game_mode", string(result.GameMode)).
		Str("map", string(result.MapName)).
		Int("red", result.RedTeamScore).
		Int("blue", result.BlueTeamScore).
		Int("players", len(result.Players)).
		Msg("match extracted")

	return result, nil
}

func (e *Extractor) header(root *goquery.Document, sourceURL string) (domain.MatchHeader, error) {
	h := domain.MatchHeader{
		MatchID:  tracker.MatchID(sourceURL),
		MatchURL: sourceURL,
	}
	if h.MatchID == "" {
		return h, &domain.ParseError{URL: sourceURL, Block: blockHeader, Err: errors.New("url has no match id")}
	}

	h.GameMode = domain.LookupGameMode(slug(root, "data-mode", ".game-mode"))
	h.MapName = domain.LookupMap(slug(root, "data-map", ".map-name"))
	if h.GameMode == domain.GameModeUnknown || h.MapName == domain.MapUnknown {
		e.logger.Warn().
			Str("url", sourceURL).
			Str("game_mode", string(h.GameMode)).
			Str("map", string(h.MapName)).
			Msg("unrecognized match header slug")
	}

	red, blue, err := scores(root)
	if err != nil {
		return h, &domain.ParseError{URL: sourceURL, Block: blockScore, Err: err}
	}
	h.RedTeamScore, h.BlueTeamScore = red, blue

	if text, ok := optionalText(root.Selection, ".duration"); ok {
		secs, err := parseDuration(text)
		if err != nil {
			return h, &domain.ParseError{URL: sourceURL, Block: blockHeader, Err: fmt.Errorf("duration: %w", err)}
		}
		h.DurationSeconds = &secs
	}

	if text, ok := optionalText(root.Selection, ".match-date"); ok {
		date, err := parseDate(text)
		if err != nil {
			return h, &domain.ParseError{URL: sourceURL, Block: blockHeader, Err: fmt.Errorf("match date: %w", err)}
		}
		h.MatchDate = &date
	}

	if h.TotalRounds, err = optionalInt(root.Selection, ".total-rounds"); err != nil {
		return h, &domain.ParseError{URL: sourceURL, Block: blockHeader, Err: fmt.Errorf("total rounds: %w", err)}
	}
	if h.OvertimeRounds, err = optionalInt(root.Selection, ".overtime-rounds"); err != nil {
		return h, &domain.ParseError{URL: sourceURL, Block: blockHeader, Err: fmt.Errorf("overtime rounds: %w", err)}
	}
	if h.OvertimeRounds > h.TotalRounds {
		return h, &domain.ParseError{
			URL:   sourceURL,
			Block: blockHeader,
			Err:   fmt.Errorf("overtime rounds %d exceed total rounds %d", h.OvertimeRounds, h.TotalRounds),
		}
	}

	return h, nil
}

// slug prefers the first data attribute in the page and falls back to the
// text of the labeled element.
func slug(root *goquery.Document, attr, selector string) string {
	if v, ok := root.Find("[" + attr + "]").First().Attr(attr); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return strings.TrimSpace(root.Find(selector).First().Text())
}

// scores reads the two team score elements outside the player rows. They
// are positional (red, blue) unless both carry a data-team attribute.
func scores(root *goquery.Document) (int, int, error) {
	sel := root.Find(".score").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Closest(".player-stats").Length() == 0
	})
	if sel.Length() < 2 {
		return 0, 0, errors.New("team scores not found")
	}

	var values [2]int
	var teams [2]string
	for i := 0; i < 2; i++ {
		s := sel.Eq(i)
		n, err := parseCount(s.Text())
		if err != nil {
			return 0, 0, err
		}
		values[i] = n
		teams[i] = strings.ToLower(strings.TrimSpace(s.AttrOr("data-team", "")))
	}

	if teams[0] == string(domain.TeamBlue) && teams[1] == string(domain.TeamRed) {
		return values[1], values[0], nil
	}
	return values[0], values[1], nil
}

func optionalText(s *goquery.Selection, selector string) (string, bool) {
	found := s.Find(selector).First()
	if found.Length() == 0 {
		return "", false
	}
	text := strings.TrimSpace(found.Text())
	return text, text != ""
}

func optionalInt(s *goquery.Selection, selector string) (int, error) {
	text, ok := optionalText(s, selector)
	if !ok {
		return 0, nil
	}
	return parseCount(text)
}

// parseCount parses a non-negative integer, allowing thousands separators.
func parseCount(text string) (int, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	n, err := strconv.Atoi(clean)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", strings.TrimSpace(text))
	}
	if n < 0 {
		return 0, fmt.Errorf("%q is negative", strings.TrimSpace(text))
	}
	return n, nil
}

// maxDurationLead bounds the leading field by the number of fields, keeping
// the total under 1000 hours.
var maxDurationLead = map[int]int{2: 59999, 3: 999}

// parseDuration accepts mm:ss and h:mm:ss.
func parseDuration(text string) (int, error) {
	parts := strings.Split(text, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%q is not mm:ss or h:mm:ss", text)
	}
	total := 0
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%q is not mm:ss or h:mm:ss", text)
		}
		if i == 0 && n > maxDurationLead[len(parts)] {
			return 0, fmt.Errorf("%q is longer than a match can run", text)
		}
		if i > 0 && n > 59 {
			return 0, fmt.Errorf("%q has a field above 59", text)
		}
		total = total*60 + n
	}
	return total, nil
}

func parseDate(text string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", text)
}

func normalizeName(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}
