package stats

import (
	"sort"

	"github.com/google/uuid"
)

// CareerStats is one player's lifetime record: the sum of their per-team
// season records, re-derived with the player-level rules (percentages from
// summed counts, averages from summed totals). Computed on read.
type CareerStats struct {
	PlayerID uuid.UUID

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

	// Seasons lists the per-team records that were summed, one per team the
	// caller could see. Partial visibility is expected; the totals above cover
	// exactly these seasons.
	Seasons []PlayerSeasonStats
}

// BuildCareerStats sums per-team season records into one career record. The
// caller passes only the seasons it is authorized to see.
func BuildCareerStats(playerID uuid.UUID, seasons []PlayerSeasonStats) CareerStats {
	var total StatLine
	gamesPlayed := 0
	for _, s := range seasons {
		gamesPlayed += s.GamesPlayed
		total.Add(s.StatLine)
	}

	missedFG := total.FieldGoalsAttempted - total.FieldGoalsMade
	missedFT := total.FreeThrowsAttempted - total.FreeThrowsMade
	efficiency := total.Points + total.Rebounds + total.Assists + total.Steals +
		total.Blocks - missedFG - missedFT - total.Turnovers

	return CareerStats{
		PlayerID:         playerID,
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
		Seasons:          seasons,
	}
}

// sortSeasonsByPointsPerGame orders season rows for roster views, highest
// scoring first, stable for ties.
func sortSeasonsByPointsPerGame(rows []PlayerSeasonStats) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].PointsPerGame > rows[j].PointsPerGame
	})
}
