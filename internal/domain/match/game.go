package match

import (
	"fmt"
	"strings"
)

type Game string

const (
	GameLoL      Game = "lol"
	GameValorant Game = "valorant"
	GameCSGO     Game = "csgo"
	GameRL       Game = "rl"
	GameDota2    Game = "dota2"
)

var gameAliases = map[string]Game{
	"lol":                             GameLoL,
	"league-of-legends":               GameLoL,
	"valorant":                        GameValorant,
	"csgo":                            GameCSGO,
	"cs-go":                           GameCSGO,
	"counter-strike-global-offensive": GameCSGO,
	"rl":                              GameRL,
	"rocket-league":                   GameRL,
	"dota2":                           GameDota2,
	"dota-2":                          GameDota2,
}

var gameNames = map[Game]string{
	GameLoL:      "League of Legends",
	GameValorant: "Valorant",
	GameCSGO:     "Counter-Strike",
	GameRL:       "Rocket League",
	GameDota2:    "Dota 2",
}

// AllGames lists the supported games in display order.
func AllGames() []Game {
	return []Game{GameLoL, GameValorant, GameCSGO, GameRL, GameDota2}
}

// ParseGame maps a tag or provider slug, case-insensitively, to a supported game.
func ParseGame(raw string) (Game, bool) {
	game, ok := gameAliases[strings.ToLower(strings.TrimSpace(raw))]
	return game, ok
}

// ParseGames parses every entry or fails on the first unknown one.
func ParseGames(raw []string) ([]Game, error) {
	out := make([]Game, 0, len(raw))
	seen := make(map[Game]struct{}, len(raw))
	for _, item := range raw {
		game, ok := ParseGame(item)
		if !ok {
			return nil, fmt.Errorf("unsupported game %q", item)
		}
		if _, dup := seen[game]; dup {
			continue
		}
		seen[game] = struct{}{}
		out = append(out, game)
	}
	return out, nil
}

func (g Game) Valid() bool {
	_, ok := gameNames[g]
	return ok
}

// DisplayName is the human label, used when the provider sends no videogame name.
func (g Game) DisplayName() string {
	return gameNames[g]
}

// ProviderSlug is the videogame slug the provider expects on league lookups.
func (g Game) ProviderSlug() string {
	switch g {
	case GameLoL:
		return "league-of-legends"
	case GameCSGO:
		return "cs-go"
	default:
		return string(g)
	}
}
