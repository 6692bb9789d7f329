package stats

import (
	"time"

	"github.com/google/uuid"
)

// BuildGameSnapshots recomputes a finished game's player and team lines from
// its event log and shapes them as durable snapshot rows. The returned set is
// a full replacement for any rows a prior finalization of the same game wrote.
func BuildGameSnapshots(game Game, events []GameEvent, roster []RosterEntry, now time.Time) *SnapshotSet {
	players := BuildPlayerGameStats(events, roster)
	team := BuildTeamTotals(players)

	playerRows := make([]PlayerSnapshotRow, 0, len(players))
	for _, p := range players {
		playerRows = append(playerRows, PlayerSnapshotRow{
			ID:          uuid.New(),
			GameID:      game.ID,
			PlayerID:    p.PlayerID,
			TeamID:      game.TeamID,
			StatLine:    p.StatLine,
			Percentages: p.Percentages,
			CreatedAt:   now,
		})
	}

	return &SnapshotSet{
		GameID:  game.ID,
		TeamID:  game.TeamID,
		Players: playerRows,
		Team: TeamSnapshotRow{
			ID:          uuid.New(),
			GameID:      game.ID,
			TeamID:      game.TeamID,
			StatLine:    team.StatLine,
			Percentages: team.Percentages,
			CreatedAt:   now,
		},
	}
}
