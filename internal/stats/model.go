package stats

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of game event recorded in the event log.
type EventType string

const (
	EventShot         EventType = "SHOT"
	EventRebound      EventType = "REBOUND"
	EventAssist       EventType = "ASSIST"
	EventSteal        EventType = "STEAL"
	EventBlock        EventType = "BLOCK"
	EventTurnover     EventType = "TURNOVER"
	EventFoul         EventType = "FOUL"
	EventSubstitution EventType = "SUBSTITUTION"
	EventTimeout      EventType = "TIMEOUT"
)

// GameStatus values as stored on the games table.
type GameStatus string

const (
	GameScheduled  GameStatus = "scheduled"
	GameInProgress GameStatus = "in_progress"
	GameFinished   GameStatus = "finished"
)

// EventDetail is the decoded, type-specific portion of an event. Only SHOT and
// REBOUND events carry a detail; all other event types interpret as a bare
// counter increment (or as timeline-only events with no statistical effect).
type EventDetail interface {
	isEventDetail()
}

// ShotDetail describes a shot attempt. Points is 1 (free throw), 2, or 3.
type ShotDetail struct {
	Points int
	Made   bool
}

func (ShotDetail) isEventDetail() {}

// ReboundDetail describes a rebound. Offensive is false for defensive boards.
type ReboundDetail struct {
	Offensive bool
}

func (ReboundDetail) isEventDetail() {}

// GameEvent is one immutable row of a game's event log. PlayerID is nil for
// team-level events such as a timeout.
type GameEvent struct {
	ID        uuid.UUID
	GameID    uuid.UUID
	PlayerID  *uuid.UUID
	Type      EventType
	Timestamp time.Time
	Detail    EventDetail
}

// DecodeDetail converts the free-form metadata map stored with an event into
// the typed detail for its event type. Malformed or missing fields fall back
// to the documented defaults rather than failing: a shot with no points value
// counts as a 2-pointer, a rebound with a missing or unknown type counts as
// defensive. Event types other than SHOT and REBOUND carry no detail.
func DecodeDetail(eventType EventType, metadata map[string]any) EventDetail {
	switch eventType {
	case EventShot:
		d := ShotDetail{Points: 2}
		if v, ok := metadataInt(metadata, "points"); ok {
			d.Points = v
		}
		if v, ok := metadata["made"].(bool); ok {
			d.Made = v
		}
		return d
	case EventRebound:
		d := ReboundDetail{}
		if v, ok := metadata["type"].(string); ok && v == "offensive" {
			d.Offensive = true
		}
		return d
	default:
		return nil
	}
}

// metadataInt reads a numeric metadata field. JSONB round-trips numbers as
// float64, but tolerate plain ints from hand-built events too.
func metadataInt(metadata map[string]any, key string) (int, bool) {
	switch v := metadata[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

// Game holds the game fields the engine reads. Games belong to one team of the
// league; the opponent is free text, which is why win/loss is inferred from the
// score comparison alone (see BuildTeamSeasonStats).
type Game struct {
	ID        uuid.UUID
	TeamID    uuid.UUID
	Opponent  string
	Status    GameStatus
	HomeScore int
	AwayScore int
	Date      time.Time
}

// RosterEntry is one member of a team's roster, used to decorate computed
// player lines with identity fields.
type RosterEntry struct {
	PlayerID     uuid.UUID
	Name         string
	JerseyNumber *int
	Position     *string
}

// StatLine holds the counting stats and shooting splits shared by player and
// team records at every aggregation level. FieldGoals include three-pointers;
// free throws are tracked separately.
type StatLine struct {
	Points            int
	Rebounds          int
	OffensiveRebounds int
	DefensiveRebounds int
	Assists           int
	Steals            int
	Blocks            int
	Turnovers         int
	Fouls             int

	FieldGoalsMade         int
	FieldGoalsAttempted    int
	ThreePointersMade      int
	ThreePointersAttempted int
	FreeThrowsMade         int
	FreeThrowsAttempted    int
}

// Add accumulates another line element-wise.
func (s *StatLine) Add(o StatLine) {
	s.Points += o.Points
	s.Rebounds += o.Rebounds
	s.OffensiveRebounds += o.OffensiveRebounds
	s.DefensiveRebounds += o.DefensiveRebounds
	s.Assists += o.Assists
	s.Steals += o.Steals
	s.Blocks += o.Blocks
	s.Turnovers += o.Turnovers
	s.Fouls += o.Fouls
	s.FieldGoalsMade += o.FieldGoalsMade
	s.FieldGoalsAttempted += o.FieldGoalsAttempted
	s.ThreePointersMade += o.ThreePointersMade
	s.ThreePointersAttempted += o.ThreePointersAttempted
	s.FreeThrowsMade += o.FreeThrowsMade
	s.FreeThrowsAttempted += o.FreeThrowsAttempted
}

// Percentages holds the three shooting percentages, each rounded to one
// decimal place of a percent.
type Percentages struct {
	FieldGoalPercentage  float64
	ThreePointPercentage float64
	FreeThrowPercentage  float64
}

// derivePercentages recomputes all three percentages from made/attempted
// counts. Never average already-computed percentages across players; attempt
// counts differ and the average would be wrong.
func derivePercentages(s StatLine) Percentages {
	return Percentages{
		FieldGoalPercentage:  Percentage(s.FieldGoalsMade, s.FieldGoalsAttempted),
		ThreePointPercentage: Percentage(s.ThreePointersMade, s.ThreePointersAttempted),
		FreeThrowPercentage:  Percentage(s.FreeThrowsMade, s.FreeThrowsAttempted),
	}
}

// PlayerGameStats is one player's computed line for a single game. Derived on
// demand from the event log; never persisted on its own.
type PlayerGameStats struct {
	PlayerID     uuid.UUID
	PlayerName   string
	JerseyNumber *int
	Position     *string

	StatLine
	Percentages
}

// TeamGameStats is the element-wise sum of a game's player lines with the
// percentages re-derived from the summed counts.
type TeamGameStats struct {
	StatLine
	Percentages
}

// PlayerSnapshotRow mirrors the player_game_snapshots table: one durable row
// per (player_id, game_id) for a finished game.
type PlayerSnapshotRow struct {
	ID       uuid.UUID
	GameID   uuid.UUID
	PlayerID uuid.UUID
	TeamID   uuid.UUID

	StatLine
	Percentages

	CreatedAt time.Time
}

// TeamSnapshotRow mirrors the team_game_snapshots table: one durable row per
// (team_id, game_id) for a finished game.
type TeamSnapshotRow struct {
	ID     uuid.UUID
	GameID uuid.UUID
	TeamID uuid.UUID

	StatLine
	Percentages

	CreatedAt time.Time
}

// SnapshotSet groups every row written by one finalization of a game. The
// writer applies the whole set in a single transaction.
type SnapshotSet struct {
	GameID  uuid.UUID
	TeamID  uuid.UUID
	Players []PlayerSnapshotRow
	Team    TeamSnapshotRow
}
