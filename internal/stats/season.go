package stats

import (
	"github.com/google/uuid"
)

// recentGameWindow is how many of the most recent finished games a team season
// record exposes with individual win/loss labels. Win/loss totals still cover
// every finished game.
const recentGameWindow = 10

// PlayerSeasonStats is one player's aggregate over the persisted snapshots of
// a single team's finished games. Computed on read, never persisted.
type PlayerSeasonStats struct {
	PlayerID uuid.UUID
	TeamID   uuid.UUID

	GamesPlayed int

	StatLine
	Percentages

	PointsPerGame    float64
	ReboundsPerGame  float64
	AssistsPerGame   float64
	StealsPerGame    float64
	BlocksPerGame    float64
	TurnoversPerGame float64

	EfficiencyRating float64
}

// GameResult labels one finished game for the trailing-game history.
type GameResult struct {
	GameID    uuid.UUID
	Opponent  string
	HomeScore int
	AwayScore int
	Won       bool
}

// TeamSeasonStats is one team's aggregate over its persisted per-game
// snapshots. Computed on read, never persisted.
type TeamSeasonStats struct {
	TeamID uuid.UUID

	GamesPlayed int
	Wins        int
	Losses      int

	StatLine
	Percentages

	PointsPerGame float64

	// RecentGames holds up to the ten most recent finished games, newest first.
	RecentGames []GameResult
}

// BuildPlayerSeasonStats sums a player's persisted snapshots across a team's
// finished games. snapshots is keyed by game ID; a finished game with no
// snapshot for the player (they never appeared in its event log) simply does
// not count toward GamesPlayed. Percentages are recomputed from the summed
// made/attempted counts, averages and the efficiency rating from the totals.
// Zero qualifying games yields an all-zero record, never a division error.
func BuildPlayerSeasonStats(playerID, teamID uuid.UUID, games []Game, snapshots map[uuid.UUID]PlayerSnapshotRow) PlayerSeasonStats {
	var total StatLine
	gamesPlayed := 0

	for _, g := range games {
		row, ok := snapshots[g.ID]
		if !ok {
			continue
		}
		gamesPlayed++
		total.Add(row.StatLine)
	}

	missedFG := total.FieldGoalsAttempted - total.FieldGoalsMade
	missedFT := total.FreeThrowsAttempted - total.FreeThrowsMade
	efficiency := total.Points + total.Rebounds + total.Assists + total.Steals +
		total.Blocks - missedFG - missedFT - total.Turnovers

	return PlayerSeasonStats{
		PlayerID:         playerID,
		TeamID:           teamID,
		GamesPlayed:      gamesPlayed,
		StatLine:         total,
		Percentages:      derivePercentages(total),
		PointsPerGame:    PerGame(total.Points, gamesPlayed),
		ReboundsPerGame:  PerGame(total.Rebounds, gamesPlayed),
		AssistsPerGame:   PerGame(total.Assists, gamesPlayed),
		StealsPerGame:    PerGame(total.Steals, gamesPlayed),
		BlocksPerGame:    PerGame(total.Blocks, gamesPlayed),
		TurnoversPerGame: PerGame(total.Turnovers, gamesPlayed),
		EfficiencyRating: PerGame(efficiency, gamesPlayed),
	}
}

// BuildTeamSeasonStats folds a team's persisted per-game snapshots into one
// season record. games must be the team's finished games ordered by date
// descending; snapshots is keyed by game ID.
//
// Two quirks are kept on purpose:
//   - A game counts as a win when homeScore > awayScore. The data model does
//     not tie home/away to a team identity, so this is a plain score
//     comparison, not a home/away-aware check.
//   - Shooting percentages are the arithmetic mean of the stored, already
//     rounded per-game percentages. This differs from the player-level rule
//     of recomputing from summed counts and can diverge from it numerically.
func BuildTeamSeasonStats(teamID uuid.UUID, games []Game, snapshots map[uuid.UUID]TeamSnapshotRow) TeamSeasonStats {
	out := TeamSeasonStats{TeamID: teamID}

	var total StatLine
	var fgSum, threeSum, ftSum float64
	snapshotCount := 0

	for _, g := range games {
		won := g.HomeScore > g.AwayScore
		if won {
			out.Wins++
		} else {
			out.Losses++
		}

		if len(out.RecentGames) < recentGameWindow {
			out.RecentGames = append(out.RecentGames, GameResult{
				GameID:    g.ID,
				Opponent:  g.Opponent,
				HomeScore: g.HomeScore,
				AwayScore: g.AwayScore,
				Won:       won,
			})
		}

		row, ok := snapshots[g.ID]
		if !ok {
			continue
		}
		snapshotCount++
		total.Add(row.StatLine)
		fgSum += row.FieldGoalPercentage
		threeSum += row.ThreePointPercentage
		ftSum += row.FreeThrowPercentage
	}

	out.GamesPlayed = len(games)
	out.StatLine = total
	out.PointsPerGame = PerGame(total.Points, snapshotCount)
	if snapshotCount > 0 {
		out.Percentages = Percentages{
			FieldGoalPercentage:  roundTenth(fgSum / float64(snapshotCount)),
			ThreePointPercentage: roundTenth(threeSum / float64(snapshotCount)),
			FreeThrowPercentage:  roundTenth(ftSum / float64(snapshotCount)),
		}
	}

	return out
}

// BuildRosterSeasonStats computes season stats for every roster member from
// one batch-fetched snapshot index (player -> game -> row), sorted by points
// per game descending. Members with no snapshots appear with all-zero stats.
func BuildRosterSeasonStats(teamID uuid.UUID, roster []RosterEntry, games []Game, snapshots map[uuid.UUID]map[uuid.UUID]PlayerSnapshotRow) []PlayerSeasonStats {
	rows := make([]PlayerSeasonStats, 0, len(roster))
	for _, entry := range roster {
		rows = append(rows, BuildPlayerSeasonStats(entry.PlayerID, teamID, games, snapshots[entry.PlayerID]))
	}

	sortSeasonsByPointsPerGame(rows)
	return rows
}
