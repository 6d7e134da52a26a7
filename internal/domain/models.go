package domain

import (
	"time"
)

type Team string

const (
	TeamRed  Team = "red"
	TeamBlue Team = "blue"
	TeamTie  Team = "tie" // only valid as a winner
)

// PlayerPerformance is one player's stat line within a match. KDRatio and
// HeadshotPercentage are derived; build values with NewPlayerPerformance.
type PlayerPerformance struct {
	PlayerName         string  `json:"player_name"`
	Team               Team    `json:"team"`
	Kills              int     `json:"kills"`
	Deaths             int     `json:"deaths"`
	Assists            int     `json:"assists"`
	Headshots          int     `json:"headshots"`
	UtilityUsed        int     `json:"utility_used"`
	FirstBloods        int     `json:"first_bloods"`
	Clutches           int     `json:"clutches"`
	Score              int     `json:"score"`
	DamageDealt        int     `json:"damage_dealt"`
	DamageTaken        int     `json:"damage_taken"`
	KDRatio            float64 `json:"kd_ratio"`
	HeadshotPercentage float64 `json:"headshot_percentage"`
}

// PlayerStats holds the raw counters read from a player row.
type PlayerStats struct {
	Kills       int
	Deaths      int
	Assists     int
	Headshots   int
	UtilityUsed int
	FirstBloods int
	Clutches    int
	Score       int
	DamageDealt int
	DamageTaken int
}

// MatchResult is one parsed match. It is never mutated once the extractor
// returns it.
type MatchResult struct {
	MatchID         string              `json:"match_id"`
	MatchURL        string              `json:"match_url"`
	GameMode        GameMode            `json:"game_mode"`
	MapName         MapName             `json:"map_name"`
	DurationSeconds *int                `json:"match_duration_seconds,omitempty"`
	MatchDate       *time.Time          `json:"match_date,omitempty"`
	RedTeamScore    int                 `json:"red_team_score"`
	BlueTeamScore   int                 `json:"blue_team_score"`
	Winner          Team                `json:"winner"`
	TotalRounds     int                 `json:"total_rounds"`
	OvertimeRounds  int                 `json:"overtime_rounds"`
	Players         []PlayerPerformance `json:"players"`
}

// MatchHeader holds the raw match-level fields read from a document.
type MatchHeader struct {
	MatchID         string
	MatchURL        string
	GameMode        GameMode
	MapName         MapName
	DurationSeconds *int
	MatchDate       *time.Time
	RedTeamScore    int
	BlueTeamScore   int
	TotalRounds     int
	OvertimeRounds  int
}

func NewPlayerPerformance(name string, team Team, stats PlayerStats) PlayerPerformance {
	return PlayerPerformance{
		PlayerName:         name,
		Team:               team,
		Kills:              stats.Kills,
		Deaths:             stats.Deaths,
		Assists:            stats.Assists,
		Headshots:          stats.Headshots,
		UtilityUsed:        stats.UtilityUsed,
		FirstBloods:        stats.FirstBloods,
		Clutches:           stats.Clutches,
		Score:              stats.Score,
		DamageDealt:        stats.DamageDealt,
		DamageTaken:        stats.DamageTaken,
		KDRatio:            KDRatio(stats.Kills, stats.Deaths),
		HeadshotPercentage: HeadshotPercentage(stats.Headshots, stats.Kills),
	}
}

// NewMatchResult copies players so later changes to the caller's slice do
// not leak into the result.
func NewMatchResult(h MatchHeader, players []PlayerPerformance) *MatchResult {
	copied := make([]PlayerPerformance, len(players))
	copy(copied, players)

	return &MatchResult{
		MatchID:         h.MatchID,
		MatchURL:        h.MatchURL,
		GameMode:        h.GameMode,
		MapName:         h.MapName,
		DurationSeconds: h.DurationSeconds,
		MatchDate:       h.MatchDate,
		RedTeamScore:    h.RedTeamScore,
		BlueTeamScore:   h.BlueTeamScore,
		Winner:          WinnerOf(h.RedTeamScore, h.BlueTeamScore),
		TotalRounds:     h.TotalRounds,
		OvertimeRounds:  h.OvertimeRounds,
		Players:         copied,
	}
}

func WinnerOf(red, blue int) Team {
	switch {
	case red > blue:
		return TeamRed
	case blue > red:
		return TeamBlue
	default:
		return TeamTie
	}
}

func KDRatio(kills, deaths int) float64 {
	if deaths == 0 {
		return float64(kills)
	}
	return float64(kills) / float64(deaths)
}

// HeadshotPercentage is clamped to [0,100]; some pages count headshot hits
// rather than headshot kills.
func HeadshotPercentage(headshots, kills int) float64 {
	if kills <= 0 {
		return 0
	}
	pct := 100 * float64(headshots) / float64(kills)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
