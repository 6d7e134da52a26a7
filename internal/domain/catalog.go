package domain

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type GameMode string

const (
	GameModeDeathmatch     GameMode = "deathmatch"
	GameModeUnrated        GameMode = "unrated"
	GameModeCompetitive    GameMode = "competitive"
	GameModeSpikeRush      GameMode = "spike-rush"
	GameModeTeamDeathmatch GameMode = "deathmatch-team"
	GameModeEscalation     GameMode = "escalation"
	GameModeReplication    GameMode = "replication"
	GameModeSnowballFight  GameMode = "snowball-fight"
	GameModeSwiftplay      GameMode = "swiftplay"
	GameModeCustom         GameMode = "custom"
	GameModeUnknown        GameMode = "unknown"
)

type MapName string

const (
	MapAscent   MapName = "ascent"
	MapBind     MapName = "bind"
	MapBreeze   MapName = "breeze"
	MapFracture MapName = "fracture"
	MapHaven    MapName = "haven"
	MapIcebox   MapName = "icebox"
	MapLotus    MapName = "lotus"
	MapPearl    MapName = "pearl"
	MapSplit    MapName = "split"
	MapSunset   MapName = "sunset"
	MapAbyss    MapName = "abyss"
	MapCorrode  MapName = "corrode"
	MapDistrict MapName = "district"
	MapKasbah   MapName = "kasbah"
	MapDrift    MapName = "drift"
	MapPiazza   MapName = "piazza"
	MapGlitch   MapName = "glitch"
	MapRange    MapName = "the-range"
	MapUnknown  MapName = "unknown"
)

// LookupTableVersion changes whenever a slug is added to or removed from the
// tables below.
const LookupTableVersion = "2025.10"

// Slugs seen on the provider's pages, including the internal queue and map
// codenames it embeds in data attributes.
var gameModeSlugs = map[string]GameMode{
	"deathmatch":      GameModeDeathmatch,
	"dm":              GameModeDeathmatch,
	"unrated":         GameModeUnrated,
	"competitive":     GameModeCompetitive,
	"ranked":          GameModeCompetitive,
	"spike-rush":      GameModeSpikeRush,
	"spikerush":       GameModeSpikeRush,
	"deathmatch-team": GameModeTeamDeathmatch,
	"team-deathmatch": GameModeTeamDeathmatch,
	"hurm":            GameModeTeamDeathmatch,
	"escalation":      GameModeEscalation,
	"ggteam":          GameModeEscalation,
	"replication":     GameModeReplication,
	"onefa":           GameModeReplication,
	"snowball-fight":  GameModeSnowballFight,
	"snowball":        GameModeSnowballFight,
	"swiftplay":       GameModeSwiftplay,
	"custom":          GameModeCustom,
	"custom-game":     GameModeCustom,
}

var mapSlugs = map[string]MapName{
	"ascent":    MapAscent,
	"bind":      MapBind,
	"duality":   MapBind,
	"breeze":    MapBreeze,
	"foxtrot":   MapBreeze,
	"fracture":  MapFracture,
	"canyon":    MapFracture,
	"haven":     MapHaven,
	"triad":     MapHaven,
	"icebox":    MapIcebox,
	"port":      MapIcebox,
	"lotus":     MapLotus,
	"jam":       MapLotus,
	"pearl":     MapPearl,
	"pitt":      MapPearl,
	"split":     MapSplit,
	"bonsai":    MapSplit,
	"sunset":    MapSunset,
	"juliett":   MapSunset,
	"abyss":     MapAbyss,
	"infinity":  MapAbyss,
	"corrode":   MapCorrode,
	"rook":      MapCorrode,
	"district":  MapDistrict,
	"kasbah":    MapKasbah,
	"drift":     MapDrift,
	"piazza":    MapPiazza,
	"glitch":    MapGlitch,
	"the-range": MapRange,
	"range":     MapRange,
}

var gameModes = []GameMode{
	GameModeDeathmatch,
	GameModeUnrated,
	GameModeCompetitive,
	GameModeSpikeRush,
	GameModeTeamDeathmatch,
	GameModeEscalation,
	GameModeReplication,
	GameModeSnowballFight,
	GameModeSwiftplay,
	GameModeCustom,
	GameModeUnknown,
}

var maps = []MapName{
	MapAscent,
	MapBind,
	MapBreeze,
	MapFracture,
	MapHaven,
	MapIcebox,
	MapLotus,
	MapPearl,
	MapSplit,
	MapSunset,
	MapAbyss,
	MapCorrode,
	MapDistrict,
	MapKasbah,
	MapDrift,
	MapPiazza,
	MapGlitch,
	MapRange,
	MapUnknown,
}

// NormalizeSlug lower-cases s and folds spaces and underscores into hyphens.
func NormalizeSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", "-", " ", "-").Replace(s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

func LookupGameMode(slug string) GameMode {
	if mode, ok := gameModeSlugs[NormalizeSlug(slug)]; ok {
		return mode
	}
	return GameModeUnknown
}

func LookupMap(slug string) MapName {
	if m, ok := mapSlugs[NormalizeSlug(slug)]; ok {
		return m
	}
	return MapUnknown
}

// Option is a discovery entry for one enum value.
type Option struct {
	Value string `json:"value"`
	Name  string `json:"name"`
}

// GameModes returns every supported game mode, unknown last.
func GameModes() []Option {
	out := make([]Option, 0, len(gameModes))
	for _, m := range gameModes {
		out = append(out, newOption(string(m)))
	}
	return out
}

// Maps returns every supported map, unknown last.
func Maps() []Option {
	out := make([]Option, 0, len(maps))
	for _, m := range maps {
		out = append(out, newOption(string(m)))
	}
	return out
}

func SearchGameModes(query string) []Option {
	return filterOptions(GameModes(), query)
}

func SearchMaps(query string) []Option {
	return filterOptions(Maps(), query)
}

func filterOptions(options []Option, query string) []Option {
	query = strings.TrimSpace(query)
	if query == "" {
		return options
	}
	var out []Option
	for _, o := range options {
		if fuzzy.MatchFold(query, o.Value) || fuzzy.MatchFold(query, o.Name) {
			out = append(out, o)
		}
	}
	return out
}

func newOption(value string) Option {
	title := cases.Title(language.English)
	return Option{
		Value: value,
		Name:  title.String(strings.ReplaceAll(value, "-", " ")),
	}
}
