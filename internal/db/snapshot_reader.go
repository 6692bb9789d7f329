package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"courtstats/internal/stats"
)

// SnapshotReader batch-loads persisted per-game snapshots. Callers hand in ID
// sets and receive in-memory indexes, so the aggregators never issue one
// query per player or per game.
type SnapshotReader struct {
	pool *pgxpool.Pool
}

// NewSnapshotReader creates a reader over the snapshot tables.
func NewSnapshotReader(pool *pgxpool.Pool) *SnapshotReader {
	return &SnapshotReader{pool: pool}
}

const playerSnapshotColumns = `
	id, game_id, player_id, team_id,
	points, rebounds, offensive_rebounds, defensive_rebounds,
	assists, steals, blocks, turnovers, fouls,
	field_goals_made, field_goals_attempted,
	three_pointers_made, three_pointers_attempted,
	free_throws_made, free_throws_attempted,
	field_goal_percentage, three_point_percentage, free_throw_percentage,
	created_at`

// PlayerSnapshots fetches every snapshot row matching the player-ID set and
// game-ID set in one query, grouped as player -> game -> row.
func (r *SnapshotReader) PlayerSnapshots(ctx context.Context, playerIDs, gameIDs []uuid.UUID) (map[uuid.UUID]map[uuid.UUID]stats.PlayerSnapshotRow, error) {
	out := make(map[uuid.UUID]map[uuid.UUID]stats.PlayerSnapshotRow, len(playerIDs))
	if len(playerIDs) == 0 || len(gameIDs) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+playerSnapshotColumns+`
		FROM player_game_snapshots
		WHERE player_id = ANY($1) AND game_id = ANY($2)
	`, playerIDs, gameIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var row stats.PlayerSnapshotRow
		if err := rows.Scan(
			&row.ID, &row.GameID, &row.PlayerID, &row.TeamID,
			&row.Points, &row.Rebounds, &row.OffensiveRebounds, &row.DefensiveRebounds,
			&row.Assists, &row.Steals, &row.Blocks, &row.Turnovers, &row.Fouls,
			&row.FieldGoalsMade, &row.FieldGoalsAttempted,
			&row.ThreePointersMade, &row.ThreePointersAttempted,
			&row.FreeThrowsMade, &row.FreeThrowsAttempted,
			&row.FieldGoalPercentage, &row.ThreePointPercentage, &row.FreeThrowPercentage,
			&row.CreatedAt,
		); err != nil {
			return nil, err
		}
		byGame, ok := out[row.PlayerID]
		if !ok {
			byGame = make(map[uuid.UUID]stats.PlayerSnapshotRow)
			out[row.PlayerID] = byGame
		}
		byGame[row.GameID] = row
	}
	return out, rows.Err()
}

// TeamSnapshots fetches a team's snapshot rows for a game-ID set in one
// query, keyed by game ID.
func (r *SnapshotReader) TeamSnapshots(ctx context.Context, teamID uuid.UUID, gameIDs []uuid.UUID) (map[uuid.UUID]stats.TeamSnapshotRow, error) {
	out := make(map[uuid.UUID]stats.TeamSnapshotRow, len(gameIDs))
	if len(gameIDs) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, game_id, team_id,
		       points, rebounds, offensive_rebounds, defensive_rebounds,
		       assists, steals, blocks, turnovers, fouls,
		       field_goals_made, field_goals_attempted,
		       three_pointers_made, three_pointers_attempted,
		       free_throws_made, free_throws_attempted,
		       field_goal_percentage, three_point_percentage, free_throw_percentage,
		       created_at
		FROM team_game_snapshots
		WHERE team_id = $1 AND game_id = ANY($2)
	`, teamID, gameIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var row stats.TeamSnapshotRow
		if err := rows.Scan(
			&row.ID, &row.GameID, &row.TeamID,
			&row.Points, &row.Rebounds, &row.OffensiveRebounds, &row.DefensiveRebounds,
			&row.Assists, &row.Steals, &row.Blocks, &row.Turnovers, &row.Fouls,
			&row.FieldGoalsMade, &row.FieldGoalsAttempted,
			&row.ThreePointersMade, &row.ThreePointersAttempted,
			&row.FreeThrowsMade, &row.FreeThrowsAttempted,
			&row.FieldGoalPercentage, &row.ThreePointPercentage, &row.FreeThrowPercentage,
			&row.CreatedAt,
		); err != nil {
			return nil, err
		}
		out[row.GameID] = row
	}
	return out, rows.Err()
}
