package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"courtstats/internal/stats"
)

// LeagueReader provides read-only access to the canonical league tables:
// games, game events, rosters, membership history and access grants.
type LeagueReader struct {
	pool *pgxpool.Pool
}

// NewLeagueReader creates a reader over the canonical league data.
func NewLeagueReader(pool *pgxpool.Pool) *LeagueReader {
	return &LeagueReader{pool: pool}
}

// GetGame fetches one game. Returns stats.ErrNotFound for an unknown ID.
func (r *LeagueReader) GetGame(ctx context.Context, gameID uuid.UUID) (*stats.Game, error) {
	g := stats.Game{ID: gameID}
	err := r.pool.QueryRow(ctx, `
		SELECT team_id, opponent, status, home_score, away_score, game_date
		FROM games
		WHERE id = $1
	`, gameID).Scan(&g.TeamID, &g.Opponent, &g.Status, &g.HomeScore, &g.AwayScore, &g.Date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("game %s: %w", gameID, stats.ErrNotFound)
		}
		return nil, fmt.Errorf("get game: %w", err)
	}
	return &g, nil
}

// GameExists checks whether a game row exists.
func (r *LeagueReader) GameExists(ctx context.Context, gameID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM games WHERE id = $1)
	`, gameID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// GetGameEvents retrieves a game's full event log in timestamp order. The
// per-type metadata stored as JSONB is decoded into the typed event detail,
// with malformed metadata falling back to the engine's defaults.
func (r *LeagueReader) GetGameEvents(ctx context.Context, gameID uuid.UUID) ([]stats.GameEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, game_id, player_id, event_type, event_time, metadata
		FROM game_events
		WHERE game_id = $1
		ORDER BY event_time, id
	`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []stats.GameEvent
	for rows.Next() {
		var ev stats.GameEvent
		var raw []byte
		if err := rows.Scan(&ev.ID, &ev.GameID, &ev.PlayerID, &ev.Type, &ev.Timestamp, &raw); err != nil {
			return nil, err
		}
		var metadata map[string]any
		if len(raw) > 0 {
			// A corrupt metadata blob must not abort the whole game; the
			// decoder's defaults cover an empty map.
			_ = json.Unmarshal(raw, &metadata)
		}
		ev.Detail = stats.DecodeDetail(ev.Type, metadata)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// GetTeamRoster retrieves a team's current roster with player names.
func (r *LeagueReader) GetTeamRoster(ctx context.Context, teamID uuid.UUID) ([]stats.RosterEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT tm.player_id, p.name, tm.jersey_number, tm.position
		FROM team_members tm
		JOIN players p ON p.id = tm.player_id
		WHERE tm.team_id = $1
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roster []stats.RosterEntry
	for rows.Next() {
		var entry stats.RosterEntry
		if err := rows.Scan(&entry.PlayerID, &entry.Name, &entry.JerseyNumber, &entry.Position); err != nil {
			return nil, err
		}
		roster = append(roster, entry)
	}
	return roster, rows.Err()
}

// GetFinishedGames retrieves a team's finished games, newest first.
func (r *LeagueReader) GetFinishedGames(ctx context.Context, teamID uuid.UUID) ([]stats.Game, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, team_id, opponent, status, home_score, away_score, game_date
		FROM games
		WHERE team_id = $1 AND status = $2
		ORDER BY game_date DESC
	`, teamID, stats.GameFinished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []stats.Game
	for rows.Next() {
		var g stats.Game
		if err := rows.Scan(&g.ID, &g.TeamID, &g.Opponent, &g.Status, &g.HomeScore, &g.AwayScore, &g.Date); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// GetPlayerTeams lists every team the player has ever belonged to, including
// past memberships.
func (r *LeagueReader) GetPlayerTeams(ctx context.Context, playerID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT team_id
		FROM team_members
		WHERE player_id = $1
	`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		teams = append(teams, id)
	}
	return teams, rows.Err()
}

// CanAccessTeam reports whether a user has an access grant for a team. The
// authorization model itself lives outside the engine; this is the opaque
// boolean the engine consumes.
func (r *LeagueReader) CanAccessTeam(ctx context.Context, userID, teamID uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM team_access WHERE user_id = $1 AND team_id = $2)
	`, userID, teamID).Scan(&ok)
	if err != nil {
		return false, err
	}
	return ok, nil
}

// IsSystemAdmin reports whether a user holds the system admin role.
func (r *LeagueReader) IsSystemAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE id = $1 AND role = 'admin')
	`, userID).Scan(&ok)
	if err != nil {
		return false, err
	}
	return ok, nil
}
