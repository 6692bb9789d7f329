package stats

import (
	"sort"

	"github.com/google/uuid"
)

// BuildPlayerGameStats folds a game's event log into one line per player who
// appears in it. Roster entries decorate the output with name, jersey number
// and position; roster members with no events produce no line. Output is
// sorted by points descending, ties keeping first-appearance order.
func BuildPlayerGameStats(events []GameEvent, roster []RosterEntry) []PlayerGameStats {
	rosterByID := make(map[uuid.UUID]RosterEntry, len(roster))
	for _, entry := range roster {
		rosterByID[entry.PlayerID] = entry
	}

	// Transient per-call accumulators keyed by player, in first-appearance order.
	accs := make(map[uuid.UUID]*accumulator)
	var order []uuid.UUID

	for _, ev := range events {
		if ev.PlayerID == nil {
			// Team-level event (e.g. timeout): no player to credit.
			continue
		}
		id := *ev.PlayerID
		acc, ok := accs[id]
		if !ok {
			acc = &accumulator{playerID: id}
			accs[id] = acc
			order = append(order, id)
		}
		applyEvent(acc, ev)
	}

	rows := make([]PlayerGameStats, 0, len(order))
	for _, id := range order {
		line := accs[id].statLine()
		row := PlayerGameStats{
			PlayerID:    id,
			StatLine:    line,
			Percentages: derivePercentages(line),
		}
		if entry, ok := rosterByID[id]; ok {
			row.PlayerName = entry.Name
			row.JerseyNumber = entry.JerseyNumber
			row.Position = entry.Position
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Points > rows[j].Points
	})

	return rows
}
