package extract

import (
	"errors"
	"fmt"
	"strings"
	"valorant-match-scraper/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

type statCell struct {
	class    string
	required bool
	dst      func(*domain.PlayerStats) *int
}

var statCells = []statCell{
	{"kills", true, func(s *domain.PlayerStats) *int { return &s.Kills }},
	{"deaths", true, func(s *domain.PlayerStats) *int { return &s.Deaths }},
	{"assists", true, func(s *domain.PlayerStats) *int { return &s.Assists }},
	{"score", true, func(s *domain.PlayerStats) *int { return &s.Score }},
	{"headshots", false, func(s *domain.PlayerStats) *int { return &s.Headshots }},
	{"utility-used", false, func(s *domain.PlayerStats) *int { return &s.UtilityUsed }},
	{"first-bloods", false, func(s *domain.PlayerStats) *int { return &s.FirstBloods }},
	{"clutches", false, func(s *domain.PlayerStats) *int { return &s.Clutches }},
	{"damage-dealt", false, func(s *domain.PlayerStats) *int { return &s.DamageDealt }},
	{"damage-taken", false, func(s *domain.PlayerStats) *int { return &s.DamageTaken }},
}

// Column order of the legacy scoreboard table.
const (
	colName = iota
	colTeam
	colKills
	colDeaths
	colAssists
	colScore
	tableColumns
)

func (e *Extractor) players(root *goquery.Document, sourceURL string) ([]domain.PlayerPerformance, error) {
	rows := root.Find(".player-stats")
	if rows.Length() == 0 {
		return e.tablePlayers(root, sourceURL)
	}

	players := make([]domain.PlayerPerformance, 0, rows.Length())
	var rowErr error
	rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		p, err := playerRow(row)
		if err != nil {
			rowErr = &domain.ParseError{URL: sourceURL, Block: blockPlayers, Err: fmt.Errorf("row %d: %w", i+1, err)}
			return false
		}
		players = append(players, p)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return players, nil
}

func playerRow(row *goquery.Selection) (domain.PlayerPerformance, error) {
	name := normalizeName(row.Find(".player-name").First().Text())
	if name == "" {
		return domain.PlayerPerformance{}, errors.New("missing player name")
	}

	teamText := row.Find(".team").First().Text()
	if strings.TrimSpace(teamText) == "" {
		teamText = row.AttrOr("data-team", "")
	}
	team, err := parseTeam(teamText)
	if err != nil {
		return domain.PlayerPerformance{}, err
	}

	var stats domain.PlayerStats
	for _, cell := range statCells {
		text, ok := optionalText(row, "."+cell.class)
		if !ok {
			if cell.required {
				return domain.PlayerPerformance{}, fmt.Errorf("missing %s", cell.class)
			}
			continue
		}
		n, err := parseCount(text)
		if err != nil {
			return domain.PlayerPerformance{}, fmt.Errorf("%s: %w", cell.class, err)
		}
		*cell.dst(&stats) = n
	}

	return domain.NewPlayerPerformance(name, team, stats), nil
}

// tablePlayers reads the older scoreboard layout, a table.player-table with
// one header row and name, team, kills, deaths, assists, score columns.
// Rows with fewer cells than that are spacers and are skipped.
func (e *Extractor) tablePlayers(root *goquery.Document, sourceURL string) ([]domain.PlayerPerformance, error) {
	var (
		players []domain.PlayerPerformance
		rowErr  error
	)
	root.Find("table.player-table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		table.Find("tr").EachWithBreak(func(i int, tr *goquery.Selection) bool {
			// The first row is the column header, whether written in th or td.
			if i == 0 {
				return true
			}
			cells := tr.Find("td")
			if cells.Length() < tableColumns {
				return true
			}
			p, err := tableRow(cells)
			if err != nil {
				rowErr = fmt.Errorf("table row %d: %w", i, err)
				return false
			}
			players = append(players, p)
			return true
		})
		return rowErr == nil
	})

	if rowErr != nil {
		return nil, &domain.ParseError{URL: sourceURL, Block: blockPlayers, Err: rowErr}
	}
	if len(players) == 0 {
		return nil, &domain.ParseError{URL: sourceURL, Block: blockPlayers, Err: errors.New("no player rows found")}
	}
	e.logger.Debug().Str("url", sourceURL).Int("players", len(players)).Msg("players read from scoreboard table")
	return players, nil
}

func tableRow(cells *goquery.Selection) (domain.PlayerPerformance, error) {
	name := normalizeName(cells.Eq(colName).Text())
	if name == "" {
		return domain.PlayerPerformance{}, errors.New("missing player name")
	}
	team, err := parseTeam(cells.Eq(colTeam).Text())
	if err != nil {
		return domain.PlayerPerformance{}, err
	}

	var stats domain.PlayerStats
	for col, dst := range map[int]*int{
		colKills:   &stats.Kills,
		colDeaths:  &stats.Deaths,
		colAssists: &stats.Assists,
		colScore:   &stats.Score,
	} {
		n, err := parseCount(cells.Eq(col).Text())
		if err != nil {
			return domain.PlayerPerformance{}, err
		}
		*dst = n
	}
	return domain.NewPlayerPerformance(name, team, stats), nil
}

func parseTeam(text string) (domain.Team, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "red", "team red":
		return domain.TeamRed, nil
	case "blue", "team blue":
		return domain.TeamBlue, nil
	}
	return "", fmt.Errorf("unknown team %q", strings.TrimSpace(text))
}
