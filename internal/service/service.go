// Package service exposes the stats engine's operations: live box-score
// computation, snapshot finalization, and season/career aggregation. External
// collaborators (game management, rosters, authorization, the snapshot store)
// are consumed through the interfaces below; everything returned is a plain
// data structure from the stats package.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"courtstats/internal/logging"
	"courtstats/internal/stats"
)

// LeagueReader supplies the canonical data the engine consumes read-only.
type LeagueReader interface {
	GetGame(ctx context.Context, gameID uuid.UUID) (*stats.Game, error)
	GetGameEvents(ctx context.Context, gameID uuid.UUID) ([]stats.GameEvent, error)
	GetTeamRoster(ctx context.Context, teamID uuid.UUID) ([]stats.RosterEntry, error)
	GetFinishedGames(ctx context.Context, teamID uuid.UUID) ([]stats.Game, error)
	GetPlayerTeams(ctx context.Context, playerID uuid.UUID) ([]uuid.UUID, error)
}

// SnapshotReader batch-loads persisted snapshots grouped into lookup indexes.
type SnapshotReader interface {
	PlayerSnapshots(ctx context.Context, playerIDs, gameIDs []uuid.UUID) (map[uuid.UUID]map[uuid.UUID]stats.PlayerSnapshotRow, error)
	TeamSnapshots(ctx context.Context, teamID uuid.UUID, gameIDs []uuid.UUID) (map[uuid.UUID]stats.TeamSnapshotRow, error)
}

// SnapshotWriter applies one finalization's rows atomically.
type SnapshotWriter interface {
	WriteGameSnapshots(ctx context.Context, set *stats.SnapshotSet) error
}

// Authorizer answers access questions as opaque booleans; the engine never
// evaluates roles itself.
type Authorizer interface {
	CanAccessTeam(ctx context.Context, userID, teamID uuid.UUID) (bool, error)
	IsSystemAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

// SeasonCache caches computed team-season responses between finalizations.
// Implementations are best-effort: a miss or error just means recompute.
type SeasonCache interface {
	GetTeamSeason(ctx context.Context, teamID uuid.UUID) (*stats.TeamSeasonStats, bool)
	SetTeamSeason(ctx context.Context, teamID uuid.UUID, v *stats.TeamSeasonStats)
	InvalidateTeam(ctx context.Context, teamID uuid.UUID) error
}

// BoxScore is the combined team + per-player summary for one game.
type BoxScore struct {
	Game    stats.Game
	Team    stats.TeamGameStats
	Players []stats.PlayerGameStats
}

// StatsService wires the aggregators to their collaborators.
type StatsService struct {
	league    LeagueReader
	snapshots SnapshotReader
	writer    SnapshotWriter
	auth      Authorizer
	cache     SeasonCache // optional
	now       func() time.Time
}

// NewStatsService builds the service. cache may be nil to disable caching.
func NewStatsService(league LeagueReader, snapshots SnapshotReader, writer SnapshotWriter, auth Authorizer, cache SeasonCache) *StatsService {
	return &StatsService{
		league:    league,
		snapshots: snapshots,
		writer:    writer,
		auth:      auth,
		cache:     cache,
		now:       time.Now,
	}
}

// authorizeTeam returns stats.ErrForbidden unless the user is a system admin
// or holds an access grant for the team.
func (s *StatsService) authorizeTeam(ctx context.Context, userID, teamID uuid.UUID) error {
	admin, err := s.auth.IsSystemAdmin(ctx, userID)
	if err != nil {
		return fmt.Errorf("check admin: %w", err)
	}
	if admin {
		return nil
	}
	ok, err := s.auth.CanAccessTeam(ctx, userID, teamID)
	if err != nil {
		return fmt.Errorf("check team access: %w", err)
	}
	if !ok {
		return fmt.Errorf("team %s: %w", teamID, stats.ErrForbidden)
	}
	return nil
}

// loadGameInputs fetches a game's event log and its team's roster. The two
// reads are independent I/O, so they run concurrently; aggregation starts
// only once both are resolved.
func (s *StatsService) loadGameInputs(ctx context.Context, game *stats.Game) ([]stats.GameEvent, []stats.RosterEntry, error) {
	var (
		events []stats.GameEvent
		roster []stats.RosterEntry
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = s.league.GetGameEvents(ctx, game.ID)
		if err != nil {
			return fmt.Errorf("get game events: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		roster, err = s.league.GetTeamRoster(ctx, game.TeamID)
		if err != nil {
			return fmt.Errorf("get team roster: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return events, roster, nil
}

// CalculatePlayerStats recomputes per-player lines for a game from its live
// event log. Deterministic: the same log always yields the same output.
func (s *StatsService) CalculatePlayerStats(ctx context.Context, gameID uuid.UUID) ([]stats.PlayerGameStats, error) {
	game, err := s.league.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	events, roster, err := s.loadGameInputs(ctx, game)
	if err != nil {
		return nil, err
	}
	return stats.BuildPlayerGameStats(events, roster), nil
}

// CalculateTeamTotals sums already-computed player lines. Pure; no I/O.
func (s *StatsService) CalculateTeamTotals(players []stats.PlayerGameStats) stats.TeamGameStats {
	return stats.BuildTeamTotals(players)
}

// GetBoxScore returns the live-computed box score for a game.
func (s *StatsService) GetBoxScore(ctx context.Context, userID, gameID uuid.UUID) (*BoxScore, error) {
	game, err := s.league.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeTeam(ctx, userID, game.TeamID); err != nil {
		return nil, err
	}
	events, roster, err := s.loadGameInputs(ctx, game)
	if err != nil {
		return nil, err
	}
	players := stats.BuildPlayerGameStats(events, roster)
	return &BoxScore{
		Game:    *game,
		Team:    stats.BuildTeamTotals(players),
		Players: players,
	}, nil
}

// GetPlayerGameStats returns one player's line from a game's live box score.
// A player with no events in the game is a NotFound, not an empty line.
func (s *StatsService) GetPlayerGameStats(ctx context.Context, userID, gameID, playerID uuid.UUID) (*stats.PlayerGameStats, error) {
	game, err := s.league.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeTeam(ctx, userID, game.TeamID); err != nil {
		return nil, err
	}
	events, roster, err := s.loadGameInputs(ctx, game)
	if err != nil {
		return nil, err
	}
	for _, p := range stats.BuildPlayerGameStats(events, roster) {
		if p.PlayerID == playerID {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("player %s in game %s: %w", playerID, gameID, stats.ErrNotFound)
}

// FinalizeGameStats recomputes a game's stats from the live event log and
// replaces its persisted snapshots in one transaction. Safe to invoke
// repeatedly for the same game. Callers own the triggering status transition
// and must treat a failure here as retryable background work.
func (s *StatsService) FinalizeGameStats(ctx context.Context, gameID uuid.UUID) error {
	game, err := s.league.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	events, roster, err := s.loadGameInputs(ctx, game)
	if err != nil {
		return err
	}

	set := stats.BuildGameSnapshots(*game, events, roster, s.now().UTC())
	if err := s.writer.WriteGameSnapshots(ctx, set); err != nil {
		return fmt.Errorf("write snapshots: %w", err)
	}

	if s.cache != nil {
		// Post-write maintenance is best-effort: the snapshots are durable
		// either way, a stale cache entry just expires.
		if err := s.cache.InvalidateTeam(ctx, game.TeamID); err != nil {
			logging.Logger().Warnf("season cache invalidation failed for team %s: %v", game.TeamID, err)
		}
	}
	return nil
}

// GetPlayerSeasonStats aggregates a player's persisted snapshots across one
// team's finished games.
func (s *StatsService) GetPlayerSeasonStats(ctx context.Context, userID, playerID, teamID uuid.UUID) (*stats.PlayerSeasonStats, error) {
	if err := s.authorizeTeam(ctx, userID, teamID); err != nil {
		return nil, err
	}
	season, err := s.playerSeason(ctx, playerID, teamID)
	if err != nil {
		return nil, err
	}
	return season, nil
}

func (s *StatsService) playerSeason(ctx context.Context, playerID, teamID uuid.UUID) (*stats.PlayerSeasonStats, error) {
	games, err := s.league.GetFinishedGames(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("get finished games: %w", err)
	}
	byPlayer, err := s.snapshots.PlayerSnapshots(ctx, []uuid.UUID{playerID}, gameIDs(games))
	if err != nil {
		return nil, fmt.Errorf("load player snapshots: %w", err)
	}
	season := stats.BuildPlayerSeasonStats(playerID, teamID, games, byPlayer[playerID])
	return &season, nil
}

// GetTeamSeasonStats aggregates a team's persisted snapshots over all its
// finished games, with win/loss totals and the trailing-ten history.
func (s *StatsService) GetTeamSeasonStats(ctx context.Context, userID, teamID uuid.UUID) (*stats.TeamSeasonStats, error) {
	if err := s.authorizeTeam(ctx, userID, teamID); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cached, ok := s.cache.GetTeamSeason(ctx, teamID); ok {
			return cached, nil
		}
	}

	games, err := s.league.GetFinishedGames(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("get finished games: %w", err)
	}
	byGame, err := s.snapshots.TeamSnapshots(ctx, teamID, gameIDs(games))
	if err != nil {
		return nil, fmt.Errorf("load team snapshots: %w", err)
	}
	season := stats.BuildTeamSeasonStats(teamID, games, byGame)

	if s.cache != nil {
		s.cache.SetTeamSeason(ctx, teamID, &season)
	}
	return &season, nil
}

// GetTeamRosterStats computes season stats for every roster member from one
// batch snapshot fetch, sorted by points per game descending. Members with no
// finished-game appearances appear with all-zero stats.
func (s *StatsService) GetTeamRosterStats(ctx context.Context, userID, teamID uuid.UUID) ([]stats.PlayerSeasonStats, error) {
	if err := s.authorizeTeam(ctx, userID, teamID); err != nil {
		return nil, err
	}

	roster, err := s.league.GetTeamRoster(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("get team roster: %w", err)
	}
	games, err := s.league.GetFinishedGames(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("get finished games: %w", err)
	}

	playerIDs := make([]uuid.UUID, 0, len(roster))
	for _, entry := range roster {
		playerIDs = append(playerIDs, entry.PlayerID)
	}
	byPlayer, err := s.snapshots.PlayerSnapshots(ctx, playerIDs, gameIDs(games))
	if err != nil {
		return nil, fmt.Errorf("load roster snapshots: %w", err)
	}

	return stats.BuildRosterSeasonStats(teamID, roster, games, byPlayer), nil
}

// GetPlayerOverallStats sums a player's season stats across every team the
// caller may view. Seeing only some of the player's teams is expected; seeing
// none of them is a Forbidden, not a NotFound.
func (s *StatsService) GetPlayerOverallStats(ctx context.Context, userID, playerID uuid.UUID) (*stats.CareerStats, error) {
	teams, err := s.league.GetPlayerTeams(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("get player teams: %w", err)
	}
	if len(teams) == 0 {
		return nil, fmt.Errorf("player %s has no teams: %w", playerID, stats.ErrNotFound)
	}

	admin, err := s.auth.IsSystemAdmin(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check admin: %w", err)
	}

	var seasons []stats.PlayerSeasonStats
	for _, teamID := range teams {
		if !admin {
			ok, err := s.auth.CanAccessTeam(ctx, userID, teamID)
			if err != nil {
				return nil, fmt.Errorf("check team access: %w", err)
			}
			if !ok {
				continue
			}
		}
		season, err := s.playerSeason(ctx, playerID, teamID)
		if err != nil {
			return nil, err
		}
		seasons = append(seasons, *season)
	}

	if len(seasons) == 0 {
		return nil, fmt.Errorf("player %s: no visible teams: %w", playerID, stats.ErrForbidden)
	}

	career := stats.BuildCareerStats(playerID, seasons)
	return &career, nil
}

func gameIDs(games []stats.Game) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(games))
	for _, g := range games {
		ids = append(ids, g.ID)
	}
	return ids
}
