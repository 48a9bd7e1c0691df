// Package parser converts provider-native payloads into validated domain records and back.
package parser

import (
	"fmt"

	"github.com/preston-bernstein/nba-stats-service/internal/domain"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/games"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/players"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/stats"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/teams"
)

// Record is one of games.Game, games.Schedule, stats.BoxScore, stats.PlayByPlay,
// teams.Standings, teams.Details or players.Index.
type Record any

// Parse decodes raw into the record for kind.
func Parse(raw []byte, kind domain.Kind) (Record, error) {
	switch kind {
	case domain.KindGame:
		return ParseGame(raw)
	case domain.KindBoxScore:
		return ParseBoxScore(raw)
	case domain.KindPlayByPlay:
		return ParsePlayByPlay(raw)
	case domain.KindSchedule:
		return ParseSchedule(raw)
	case domain.KindStandings:
		return ParseStandings(raw)
	case domain.KindPlayer:
		return ParsePlayers(raw)
	case domain.KindTeam:
		return ParseTeam(raw)
	default:
		return nil, &ParseError{Kind: kind, Reason: "unsupported kind"}
	}
}

// Serialize renders a record in its provider-native shape, so that
// Parse(Serialize(r), KindOf(r)) reproduces r.
func Serialize(record Record) ([]byte, error) {
	switch r := record.(type) {
	case games.Game:
		return json.Marshal(gameEnvelope(r, nil, nil))
	case stats.BoxScore:
		return json.Marshal(gameEnvelope(r.Game, r.Home.Players, r.Away.Players))
	case stats.PlayByPlay:
		return json.Marshal(playByPlayToNative(r))
	case games.Schedule:
		return json.Marshal(scheduleToNative(r))
	case teams.Standings:
		return json.Marshal(standingsToNative(r))
	case players.Index:
		return json.Marshal(playersToNative(r))
	case teams.Details:
		return json.Marshal(teamToNative(r))
	default:
		return nil, fmt.Errorf("serialize: unsupported record %T", record)
	}
}

// KindOf reports the resource kind of a record.
func KindOf(record Record) (domain.Kind, error) {
	switch record.(type) {
	case games.Game:
		return domain.KindGame, nil
	case stats.BoxScore:
		return domain.KindBoxScore, nil
	case stats.PlayByPlay:
		return domain.KindPlayByPlay, nil
	case games.Schedule:
		return domain.KindSchedule, nil
	case teams.Standings:
		return domain.KindStandings, nil
	case players.Index:
		return domain.KindPlayer, nil
	case teams.Details:
		return domain.KindTeam, nil
	default:
		return "", fmt.Errorf("unsupported record %T", record)
	}
}
