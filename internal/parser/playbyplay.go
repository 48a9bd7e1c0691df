package parser

import (
	"strconv"

	"github.com/preston-bernstein/nba-stats-service/internal/domain"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/games"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/stats"
)

type cdnPlayByPlay struct {
	Meta cdnMeta    `json:"meta"`
	Game cdnActions `json:"game"`
}

type cdnActions struct {
	GameID  string      `json:"gameId"`
	Actions []cdnAction `json:"actions"`
}

type cdnAction struct {
	ActionNumber flexInt `json:"actionNumber"`
	Clock        string  `json:"clock"`
	Period       flexInt `json:"period"`
	TeamTricode  string  `json:"teamTricode,omitempty"`
	PersonID     flexInt `json:"personId,omitempty"`
	PlayerName   string  `json:"playerName,omitempty"`
	ActionType   string  `json:"actionType"`
	SubType      string  `json:"subType,omitempty"`
	Description  string  `json:"description"`
	ScoreHome    flexInt `json:"scoreHome"`
	ScoreAway    flexInt `json:"scoreAway"`
	TimeActual   string  `json:"timeActual,omitempty"`
}

// ParsePlayByPlay decodes a liveData playbyplay payload.
func ParsePlayByPlay(raw []byte) (stats.PlayByPlay, error) {
	var env cdnPlayByPlay
	if err := json.Unmarshal(raw, &env); err != nil {
		return stats.PlayByPlay{}, decodeError(domain.KindPlayByPlay, err)
	}
	if env.Game.GameID == "" {
		return stats.PlayByPlay{}, fieldError(domain.KindPlayByPlay, "game.gameId", "missing")
	}
	if err := games.ValidateID(env.Game.GameID); err != nil {
		return stats.PlayByPlay{}, &ParseError{Kind: domain.KindPlayByPlay, Field: "game.gameId", Err: err}
	}
	out := stats.PlayByPlay{GameID: env.Game.GameID}
	if len(env.Game.Actions) > 0 {
		out.Actions = make([]stats.Action, 0, len(env.Game.Actions))
	}
	for i, a := range env.Game.Actions {
		path := "game.actions[" + strconv.Itoa(i) + "]"
		if a.ActionNumber <= 0 {
			return stats.PlayByPlay{}, fieldError(domain.KindPlayByPlay, path+".actionNumber", "missing")
		}
		if a.ActionType == "" {
			return stats.PlayByPlay{}, fieldError(domain.KindPlayByPlay, path+".actionType", "missing")
		}
		at, err := parseTime(a.TimeActual)
		if err != nil {
			return stats.PlayByPlay{}, &ParseError{Kind: domain.KindPlayByPlay, Field: path + ".timeActual", Err: err}
		}
		out.Actions = append(out.Actions, stats.Action{
			Number:      int(a.ActionNumber),
			Clock:       a.Clock,
			Period:      int(a.Period),
			TeamTricode: a.TeamTricode,
			PersonID:    int(a.PersonID),
			PlayerName:  a.PlayerName,
			ActionType:  a.ActionType,
			SubType:     a.SubType,
			Description: a.Description,
			ScoreHome:   int(a.ScoreHome),
			ScoreAway:   int(a.ScoreAway),
			TimeActual:  at,
		})
	}
	return out, nil
}

func playByPlayToNative(p stats.PlayByPlay) cdnPlayByPlay {
	env := cdnPlayByPlay{Game: cdnActions{GameID: p.GameID}}
	for _, a := range p.Actions {
		env.Game.Actions = append(env.Game.Actions, cdnAction{
			ActionNumber: flexInt(a.Number),
			Clock:        a.Clock,
			Period:       flexInt(a.Period),
			TeamTricode:  a.TeamTricode,
			PersonID:     flexInt(a.PersonID),
			PlayerName:   a.PlayerName,
			ActionType:   a.ActionType,
			SubType:      a.SubType,
			Description:  a.Description,
			ScoreHome:    flexInt(a.ScoreHome),
			ScoreAway:    flexInt(a.ScoreAway),
			TimeActual:   formatTime(a.TimeActual),
		})
	}
	return env
}
