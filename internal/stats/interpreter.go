package stats

import "github.com/google/uuid"

// accumulator collects one player's raw counters while folding a game's event
// log. Two-point and three-point buckets are kept apart until finalization,
// where they merge into the unified field-goal counts.
type accumulator struct {
	playerID uuid.UUID

	points            int
	rebounds          int
	offensiveRebounds int
	defensiveRebounds int
	assists           int
	steals            int
	blocks            int
	turnovers         int
	fouls             int

	twoPointersMade      int
	twoPointersAttempted int
	threeMade            int
	threeAttempted       int
	freeThrowsMade       int
	freeThrowsAttempted  int
}

// applyEvent folds one event into the accumulator. Events never fail here:
// malformed metadata has already been defaulted by DecodeDetail, and
// SUBSTITUTION/TIMEOUT events carry timeline information only.
func applyEvent(acc *accumulator, ev GameEvent) {
	switch ev.Type {
	case EventShot:
		shot, ok := ev.Detail.(ShotDetail)
		if !ok {
			shot = ShotDetail{Points: 2}
		}
		switch shot.Points {
		case 3:
			acc.threeAttempted++
			if shot.Made {
				acc.threeMade++
				acc.points += 3
			}
		case 1:
			acc.freeThrowsAttempted++
			if shot.Made {
				acc.freeThrowsMade++
				acc.points++
			}
		default:
			acc.twoPointersAttempted++
			if shot.Made {
				acc.twoPointersMade++
				acc.points += 2
			}
		}
	case EventRebound:
		acc.rebounds++
		reb, _ := ev.Detail.(ReboundDetail)
		if reb.Offensive {
			acc.offensiveRebounds++
		} else {
			acc.defensiveRebounds++
		}
	case EventAssist:
		acc.assists++
	case EventSteal:
		acc.steals++
	case EventBlock:
		acc.blocks++
	case EventTurnover:
		acc.turnovers++
	case EventFoul:
		acc.fouls++
	case EventSubstitution, EventTimeout:
		// Timeline events only.
	}
}

// statLine finalizes the accumulator: the three-point bucket folds into the
// field-goal counts (a three is a field goal, not an extra attempt), free
// throws stay separate.
func (acc *accumulator) statLine() StatLine {
	return StatLine{
		Points:                 acc.points,
		Rebounds:               acc.rebounds,
		OffensiveRebounds:      acc.offensiveRebounds,
		DefensiveRebounds:      acc.defensiveRebounds,
		Assists:                acc.assists,
		Steals:                 acc.steals,
		Blocks:                 acc.blocks,
		Turnovers:              acc.turnovers,
		Fouls:                  acc.fouls,
		FieldGoalsMade:         acc.twoPointersMade + acc.threeMade,
		FieldGoalsAttempted:    acc.twoPointersAttempted + acc.threeAttempted,
		ThreePointersMade:      acc.threeMade,
		ThreePointersAttempted: acc.threeAttempted,
		FreeThrowsMade:         acc.freeThrowsMade,
		FreeThrowsAttempted:    acc.freeThrowsAttempted,
	}
}
