package stats

// BuildTeamTotals sums every player line of a game element-wise and re-derives
// the shooting percentages from the summed made/attempted counts.
func BuildTeamTotals(players []PlayerGameStats) TeamGameStats {
	var total StatLine
	for _, p := range players {
		total.Add(p.StatLine)
	}
	return TeamGameStats{
		StatLine:    total,
		Percentages: derivePercentages(total),
	}
}
