package stats

import "testing"

// TestBuildTeamTotals_PercentageFromSummedCounts checks the 8/15 + 6/12
// example: the team percentage comes from 14/27, never from averaging the two
// player percentages.
func TestBuildTeamTotals_PercentageFromSummedCounts(t *testing.T) {
	players := []PlayerGameStats{
		{
			PlayerID: playerA,
			StatLine: StatLine{FieldGoalsMade: 8, FieldGoalsAttempted: 15},
		},
		{
			PlayerID: playerB,
			StatLine: StatLine{FieldGoalsMade: 6, FieldGoalsAttempted: 12},
		},
	}

	team := BuildTeamTotals(players)
	if team.FieldGoalsMade != 14 || team.FieldGoalsAttempted != 27 {
		t.Fatalf("FG = %d/%d, want 14/27", team.FieldGoalsMade, team.FieldGoalsAttempted)
	}
	if team.FieldGoalPercentage != 51.9 {
		t.Errorf("FieldGoalPercentage = %v, want 51.9", team.FieldGoalPercentage)
	}

	// The naive average of 53.3 and 50.0 would be 51.7, not 51.9.
	naive := (Percentage(8, 15) + Percentage(6, 12)) / 2
	if team.FieldGoalPercentage == naive {
		t.Errorf("team percentage equals per-player average %v; must be recomputed from counts", naive)
	}
}

// TestBuildTeamTotals_SumsEveryCountingStat derives player lines from a real
// event log and asserts the team line is their exact sum, field by field.
func TestBuildTeamTotals_SumsEveryCountingStat(t *testing.T) {
	events := []GameEvent{
		shot(playerA, 2, true),
		shot(playerA, 1, false),
		shot(playerB, 3, true),
		shot(playerB, 3, false),
		ev(playerA, EventRebound, map[string]any{"type": "offensive"}),
		ev(playerB, EventRebound, nil),
		ev(playerA, EventAssist, nil),
		ev(playerB, EventSteal, nil),
		ev(playerA, EventBlock, nil),
		ev(playerB, EventTurnover, nil),
		ev(playerA, EventFoul, nil),
	}
	players := BuildPlayerGameStats(events, nil)
	team := BuildTeamTotals(players)

	var want StatLine
	for _, p := range players {
		want.Add(p.StatLine)
	}
	if team.StatLine != want {
		t.Errorf("team line = %+v, want exact sum %+v", team.StatLine, want)
	}
}

func TestBuildTeamTotals_Empty(t *testing.T) {
	team := BuildTeamTotals(nil)
	if team.StatLine != (StatLine{}) {
		t.Errorf("team line = %+v, want zero line", team.StatLine)
	}
	if team.FieldGoalPercentage != 0 || team.ThreePointPercentage != 0 || team.FreeThrowPercentage != 0 {
		t.Errorf("percentages = %+v, want all zero with no attempts", team.Percentages)
	}
}

func TestPercentageRounding(t *testing.T) {
	cases := []struct {
		made, attempted int
		want            float64
	}{
		{0, 0, 0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{1, 1, 100},
		{14, 27, 51.9},
		{0, 5, 0},
	}
	for _, tc := range cases {
		if got := Percentage(tc.made, tc.attempted); got != tc.want {
			t.Errorf("Percentage(%d, %d) = %v, want %v", tc.made, tc.attempted, got, tc.want)
		}
	}
}
