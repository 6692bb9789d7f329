package db

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"courtstats/internal/stats"
)

// SnapshotWriter persists a game's finalized snapshots. One finalization is
// one transaction: prior rows for the game are purged and the full set is
// re-inserted, so re-finalizing the same game is idempotent and can never
// leave one player's row stale relative to another's. Concurrent
// finalizations of the same game serialize on a per-game advisory lock and
// the later one wins wholesale.
type SnapshotWriter struct {
	pool *pgxpool.Pool
}

// NewSnapshotWriter creates a new snapshot writer.
func NewSnapshotWriter(pool *pgxpool.Pool) *SnapshotWriter {
	return &SnapshotWriter{pool: pool}
}

// WriteGameSnapshots replaces all snapshot rows for one game within a single
// transaction.
func (w *SnapshotWriter) WriteGameSnapshots(ctx context.Context, set *stats.SnapshotSet) error {
	tx, err := w.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, advisoryLockKey(set.GameID)); err != nil {
		return fmt.Errorf("acquire game lock: %w", err)
	}

	if err := purgeSnapshots(ctx, tx, set.GameID); err != nil {
		return fmt.Errorf("purge snapshots: %w", err)
	}

	if err := insertPlayerSnapshots(ctx, tx, set.Players); err != nil {
		return fmt.Errorf("insert player snapshots: %w", err)
	}

	if err := insertTeamSnapshot(ctx, tx, set.Team); err != nil {
		return fmt.Errorf("insert team snapshot: %w", err)
	}

	return tx.Commit(ctx)
}

// advisoryLockKey generates a stable int64 key from a game UUID for
// pg_advisory_xact_lock.
func advisoryLockKey(id uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write(id[:])
	return int64(binary.BigEndian.Uint64(h.Sum(nil)[:8]))
}

// purgeSnapshots deletes a game's existing snapshot rows.
func purgeSnapshots(ctx context.Context, tx pgx.Tx, gameID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM player_game_snapshots WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("purge player_game_snapshots: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM team_game_snapshots WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("purge team_game_snapshots: %w", err)
	}
	return nil
}

// insertPlayerSnapshots inserts player snapshot rows using the COPY protocol.
func insertPlayerSnapshots(ctx context.Context, tx pgx.Tx, rows []stats.PlayerSnapshotRow) error {
	if len(rows) == 0 {
		return nil
	}

	columns := []string{
		"id", "game_id", "player_id", "team_id",
		"points", "rebounds", "offensive_rebounds", "defensive_rebounds",
		"assists", "steals", "blocks", "turnovers", "fouls",
		"field_goals_made", "field_goals_attempted",
		"three_pointers_made", "three_pointers_attempted",
		"free_throws_made", "free_throws_attempted",
		"field_goal_percentage", "three_point_percentage", "free_throw_percentage",
		"created_at",
	}

	_, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"player_game_snapshots"},
		columns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			return []any{
				r.ID, r.GameID, r.PlayerID, r.TeamID,
				r.Points, r.Rebounds, r.OffensiveRebounds, r.DefensiveRebounds,
				r.Assists, r.Steals, r.Blocks, r.Turnovers, r.Fouls,
				r.FieldGoalsMade, r.FieldGoalsAttempted,
				r.ThreePointersMade, r.ThreePointersAttempted,
				r.FreeThrowsMade, r.FreeThrowsAttempted,
				r.FieldGoalPercentage, r.ThreePointPercentage, r.FreeThrowPercentage,
				r.CreatedAt,
			}, nil
		}),
	)
	return err
}

// insertTeamSnapshot inserts the single team snapshot row for the game.
func insertTeamSnapshot(ctx context.Context, tx pgx.Tx, r stats.TeamSnapshotRow) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO team_game_snapshots (
			id, game_id, team_id,
			points, rebounds, offensive_rebounds, defensive_rebounds,
			assists, steals, blocks, turnovers, fouls,
			field_goals_made, field_goals_attempted,
			three_pointers_made, three_pointers_attempted,
			free_throws_made, free_throws_attempted,
			field_goal_percentage, three_point_percentage, free_throw_percentage,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		          $15, $16, $17, $18, $19, $20, $21, $22)
	`,
		r.ID, r.GameID, r.TeamID,
		r.Points, r.Rebounds, r.OffensiveRebounds, r.DefensiveRebounds,
		r.Assists, r.Steals, r.Blocks, r.Turnovers, r.Fouls,
		r.FieldGoalsMade, r.FieldGoalsAttempted,
		r.ThreePointersMade, r.ThreePointersAttempted,
		r.FreeThrowsMade, r.FreeThrowsAttempted,
		r.FieldGoalPercentage, r.ThreePointPercentage, r.FreeThrowPercentage,
		r.CreatedAt,
	)
	return err
}
