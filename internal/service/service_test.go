package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"courtstats/internal/stats"
)

var (
	adminUser  = uuid.MustParse("00000000-0000-0000-0000-00000000aa01")
	coachUser  = uuid.MustParse("00000000-0000-0000-0000-00000000aa02")
	outsider   = uuid.MustParse("00000000-0000-0000-0000-00000000aa03")
	playerOne  = uuid.MustParse("00000000-0000-0000-0000-00000000bb01")
	playerTwo  = uuid.MustParse("00000000-0000-0000-0000-00000000bb02")
	homeTeamID = uuid.MustParse("00000000-0000-0000-0000-00000000cc01")
	otherTeam  = uuid.MustParse("00000000-0000-0000-0000-00000000cc02")
)

// fakeLeague serves canned league data and records no state.
type fakeLeague struct {
	games   map[uuid.UUID]stats.Game
	events  map[uuid.UUID][]stats.GameEvent
	rosters map[uuid.UUID][]stats.RosterEntry
	// finished is keyed by team, ordered newest first like the real reader.
	finished map[uuid.UUID][]stats.Game
	teams    map[uuid.UUID][]uuid.UUID

	eventsErr error
}

func (f *fakeLeague) GetGame(_ context.Context, gameID uuid.UUID) (*stats.Game, error) {
	g, ok := f.games[gameID]
	if !ok {
		return nil, stats.ErrNotFound
	}
	return &g, nil
}

func (f *fakeLeague) GetGameEvents(_ context.Context, gameID uuid.UUID) ([]stats.GameEvent, error) {
	if f.eventsErr != nil {
		return nil, f.eventsErr
	}
	return f.events[gameID], nil
}

func (f *fakeLeague) GetTeamRoster(_ context.Context, teamID uuid.UUID) ([]stats.RosterEntry, error) {
	return f.rosters[teamID], nil
}

func (f *fakeLeague) GetFinishedGames(_ context.Context, teamID uuid.UUID) ([]stats.Game, error) {
	return f.finished[teamID], nil
}

func (f *fakeLeague) GetPlayerTeams(_ context.Context, playerID uuid.UUID) ([]uuid.UUID, error) {
	return f.teams[playerID], nil
}

// fakeAuth grants admin to adminUser and team access per the grants map.
type fakeAuth struct {
	grants map[uuid.UUID][]uuid.UUID // userID -> accessible teams
}

func (f *fakeAuth) IsSystemAdmin(_ context.Context, userID uuid.UUID) (bool, error) {
	return userID == adminUser, nil
}

func (f *fakeAuth) CanAccessTeam(_ context.Context, userID, teamID uuid.UUID) (bool, error) {
	for _, t := range f.grants[userID] {
		if t == teamID {
			return true, nil
		}
	}
	return false, nil
}

// fakeSnapshots serves canned snapshot indexes.
type fakeSnapshots struct {
	players map[uuid.UUID]map[uuid.UUID]stats.PlayerSnapshotRow
	teams   map[uuid.UUID]stats.TeamSnapshotRow
}

func (f *fakeSnapshots) PlayerSnapshots(_ context.Context, playerIDs, gameIDs []uuid.UUID) (map[uuid.UUID]map[uuid.UUID]stats.PlayerSnapshotRow, error) {
	out := make(map[uuid.UUID]map[uuid.UUID]stats.PlayerSnapshotRow)
	for _, pid := range playerIDs {
		byGame := f.players[pid]
		if byGame == nil {
			continue
		}
		for _, gid := range gameIDs {
			row, ok := byGame[gid]
			if !ok {
				continue
			}
			if out[pid] == nil {
				out[pid] = make(map[uuid.UUID]stats.PlayerSnapshotRow)
			}
			out[pid][gid] = row
		}
	}
	return out, nil
}

func (f *fakeSnapshots) TeamSnapshots(_ context.Context, _ uuid.UUID, gameIDs []uuid.UUID) (map[uuid.UUID]stats.TeamSnapshotRow, error) {
	out := make(map[uuid.UUID]stats.TeamSnapshotRow)
	for _, gid := range gameIDs {
		if row, ok := f.teams[gid]; ok {
			out[gid] = row
		}
	}
	return out, nil
}

// fakeWriter keeps the last written set per game, mimicking the purge-then-
// insert store: a rewrite replaces, never accumulates.
type fakeWriter struct {
	writes  int
	byGame  map[uuid.UUID]*stats.SnapshotSet
	failErr error
}

func (f *fakeWriter) WriteGameSnapshots(_ context.Context, set *stats.SnapshotSet) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.writes++
	if f.byGame == nil {
		f.byGame = make(map[uuid.UUID]*stats.SnapshotSet)
	}
	f.byGame[set.GameID] = set
	return nil
}

type fakeCache struct {
	entries     map[uuid.UUID]*stats.TeamSeasonStats
	gets, hits  int
	invalidated []uuid.UUID
}

func (f *fakeCache) GetTeamSeason(_ context.Context, teamID uuid.UUID) (*stats.TeamSeasonStats, bool) {
	f.gets++
	v, ok := f.entries[teamID]
	if ok {
		f.hits++
	}
	return v, ok
}

func (f *fakeCache) SetTeamSeason(_ context.Context, teamID uuid.UUID, v *stats.TeamSeasonStats) {
	if f.entries == nil {
		f.entries = make(map[uuid.UUID]*stats.TeamSeasonStats)
	}
	f.entries[teamID] = v
}

func (f *fakeCache) InvalidateTeam(_ context.Context, teamID uuid.UUID) error {
	delete(f.entries, teamID)
	f.invalidated = append(f.invalidated, teamID)
	return nil
}

func uuidPtr(id uuid.UUID) *uuid.UUID { return &id }

func shotEvent(gameID uuid.UUID, playerID uuid.UUID, points int, made bool) stats.GameEvent {
	return stats.GameEvent{
		ID:        uuid.New(),
		GameID:    gameID,
		PlayerID:  uuidPtr(playerID),
		Type:      stats.EventShot,
		Timestamp: time.Now(),
		Detail:    stats.ShotDetail{Points: points, Made: made},
	}
}

func fixtureLeague() (*fakeLeague, uuid.UUID) {
	gameID := uuid.New()
	game := stats.Game{
		ID:        gameID,
		TeamID:    homeTeamID,
		Opponent:  "Riverside",
		Status:    stats.GameFinished,
		HomeScore: 58,
		AwayScore: 51,
		Date:      time.Date(2026, 2, 10, 19, 0, 0, 0, time.UTC),
	}
	league := &fakeLeague{
		games: map[uuid.UUID]stats.Game{gameID: game},
		events: map[uuid.UUID][]stats.GameEvent{
			gameID: {
				shotEvent(gameID, playerOne, 2, true),
				shotEvent(gameID, playerOne, 3, true),
				shotEvent(gameID, playerOne, 2, false),
				shotEvent(gameID, playerTwo, 2, true),
			},
		},
		rosters: map[uuid.UUID][]stats.RosterEntry{
			homeTeamID: {
				{PlayerID: playerOne, Name: "Ada"},
				{PlayerID: playerTwo, Name: "Bea"},
			},
		},
		finished: map[uuid.UUID][]stats.Game{homeTeamID: {game}},
		teams:    map[uuid.UUID][]uuid.UUID{playerOne: {homeTeamID}},
	}
	return league, gameID
}

func newTestService(league *fakeLeague, snaps *fakeSnapshots, writer *fakeWriter, cache SeasonCache) *StatsService {
	auth := &fakeAuth{grants: map[uuid.UUID][]uuid.UUID{coachUser: {homeTeamID}}}
	svc := NewStatsService(league, snaps, writer, auth, cache)
	svc.now = func() time.Time { return time.Date(2026, 2, 10, 22, 0, 0, 0, time.UTC) }
	return svc
}

func TestGetBoxScore(t *testing.T) {
	league, gameID := fixtureLeague()
	svc := newTestService(league, &fakeSnapshots{}, &fakeWriter{}, nil)

	box, err := svc.GetBoxScore(context.Background(), coachUser, gameID)
	if err != nil {
		t.Fatalf("GetBoxScore: %v", err)
	}
	if box.Game.ID != gameID {
		t.Errorf("Game.ID = %v, want %v", box.Game.ID, gameID)
	}
	if len(box.Players) != 2 {
		t.Fatalf("len(Players) = %d, want 2", len(box.Players))
	}
	// Highest scorer first: Ada with 5 over Bea with 2.
	if box.Players[0].PlayerID != playerOne || box.Players[0].Points != 5 {
		t.Errorf("Players[0] = %s/%d, want Ada with 5", box.Players[0].PlayerName, box.Players[0].Points)
	}
	if box.Team.Points != 7 {
		t.Errorf("Team.Points = %d, want 7", box.Team.Points)
	}
	if box.Team.FieldGoalsAttempted != 4 || box.Team.FieldGoalsMade != 3 {
		t.Errorf("Team FG = %d/%d, want 3/4", box.Team.FieldGoalsMade, box.Team.FieldGoalsAttempted)
	}
}

func TestGetBoxScore_Authorization(t *testing.T) {
	league, gameID := fixtureLeague()
	svc := newTestService(league, &fakeSnapshots{}, &fakeWriter{}, nil)

	if _, err := svc.GetBoxScore(context.Background(), outsider, gameID); !errors.Is(err, stats.ErrForbidden) {
		t.Errorf("outsider err = %v, want ErrForbidden", err)
	}
	if _, err := svc.GetBoxScore(context.Background(), adminUser, gameID); err != nil {
		t.Errorf("admin err = %v, want access without a team grant", err)
	}
}

func TestGetBoxScore_UnknownGame(t *testing.T) {
	league, _ := fixtureLeague()
	svc := newTestService(league, &fakeSnapshots{}, &fakeWriter{}, nil)

	if _, err := svc.GetBoxScore(context.Background(), coachUser, uuid.New()); !errors.Is(err, stats.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetPlayerGameStats(t *testing.T) {
	league, gameID := fixtureLeague()
	svc := newTestService(league, &fakeSnapshots{}, &fakeWriter{}, nil)

	line, err := svc.GetPlayerGameStats(context.Background(), coachUser, gameID, playerOne)
	if err != nil {
		t.Fatalf("GetPlayerGameStats: %v", err)
	}
	if line.Points != 5 || line.FieldGoalsMade != 2 || line.FieldGoalsAttempted != 3 {
		t.Errorf("line = %d pts, FG %d/%d; want 5 pts, FG 2/3", line.Points, line.FieldGoalsMade, line.FieldGoalsAttempted)
	}

	// A roster member with zero events is a NotFound, not an empty line.
	league.rosters[homeTeamID] = append(league.rosters[homeTeamID], stats.RosterEntry{PlayerID: uuid.New(), Name: "Dee"})
	missing := league.rosters[homeTeamID][2].PlayerID
	if _, err := svc.GetPlayerGameStats(context.Background(), coachUser, gameID, missing); !errors.Is(err, stats.ErrNotFound) {
		t.Errorf("eventless player err = %v, want ErrNotFound", err)
	}
}

func TestFinalizeGameStats_Idempotent(t *testing.T) {
	league, gameID := fixtureLeague()
	writer := &fakeWriter{}
	cache := &fakeCache{}
	svc := newTestService(league, &fakeSnapshots{}, writer, cache)

	ctx := context.Background()
	if err := svc.FinalizeGameStats(ctx, gameID); err != nil {
		t.Fatalf("first finalize: %v", err)
	}
	if err := svc.FinalizeGameStats(ctx, gameID); err != nil {
		t.Fatalf("second finalize: %v", err)
	}

	if writer.writes != 2 {
		t.Errorf("writes = %d, want 2 full rewrites", writer.writes)
	}
	set := writer.byGame[gameID]
	if set == nil {
		t.Fatal("no snapshot set stored for game")
	}
	// The store holds exactly one set per game; player rows appear once each.
	if len(set.Players) != 2 {
		t.Errorf("len(Players) = %d, want 2 (no duplicate rows after retry)", len(set.Players))
	}
	if set.Team.Points != 7 {
		t.Errorf("team snapshot points = %d, want 7", set.Team.Points)
	}
	if len(cache.invalidated) != 2 || cache.invalidated[0] != homeTeamID {
		t.Errorf("cache invalidations = %v, want team invalidated on every finalize", cache.invalidated)
	}
}

func TestFinalizeGameStats_WriteFailure(t *testing.T) {
	league, gameID := fixtureLeague()
	writer := &fakeWriter{failErr: errors.New("connection reset")}
	cache := &fakeCache{}
	svc := newTestService(league, &fakeSnapshots{}, writer, cache)

	if err := svc.FinalizeGameStats(context.Background(), gameID); err == nil {
		t.Fatal("finalize succeeded past a failing writer")
	}
	if len(cache.invalidated) != 0 {
		t.Errorf("cache invalidated after failed write: %v", cache.invalidated)
	}
}

func TestGetTeamSeasonStats_CachesResult(t *testing.T) {
	league, gameID := fixtureLeague()
	snaps := &fakeSnapshots{
		teams: map[uuid.UUID]stats.TeamSnapshotRow{
			gameID: {GameID: gameID, TeamID: homeTeamID, StatLine: stats.StatLine{Points: 58}},
		},
	}
	cache := &fakeCache{}
	svc := newTestService(league, snaps, &fakeWriter{}, cache)

	ctx := context.Background()
	first, err := svc.GetTeamSeasonStats(ctx, coachUser, homeTeamID)
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	if first.Wins != 1 || first.Losses != 0 {
		t.Errorf("W-L = %d-%d, want 1-0", first.Wins, first.Losses)
	}

	second, err := svc.GetTeamSeasonStats(ctx, coachUser, homeTeamID)
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if cache.hits != 1 {
		t.Errorf("cache hits = %d, want the second read served from cache", cache.hits)
	}
	if second != first {
		t.Errorf("cached read returned a different record")
	}
}

func TestGetTeamRosterStats_BatchAndZeroGameMembers(t *testing.T) {
	league, gameID := fixtureLeague()
	snaps := &fakeSnapshots{
		players: map[uuid.UUID]map[uuid.UUID]stats.PlayerSnapshotRow{
			playerOne: {gameID: {
				GameID: gameID, PlayerID: playerOne, TeamID: homeTeamID,
				StatLine: stats.StatLine{Points: 21},
			}},
		},
	}
	svc := newTestService(league, snaps, &fakeWriter{}, nil)

	rows, err := svc.GetTeamRosterStats(context.Background(), coachUser, homeTeamID)
	if err != nil {
		t.Fatalf("GetTeamRosterStats: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want every roster member", len(rows))
	}
	if rows[0].PlayerID != playerOne || rows[0].PointsPerGame != 21.0 {
		t.Errorf("rows[0] = %v with %v ppg, want Ada with 21.0", rows[0].PlayerID, rows[0].PointsPerGame)
	}
	if rows[1].GamesPlayed != 0 || rows[1].PointsPerGame != 0 {
		t.Errorf("snapshot-less member = %+v, want all-zero stats", rows[1])
	}
}

func TestGetPlayerSeasonStats_Forbidden(t *testing.T) {
	league, _ := fixtureLeague()
	svc := newTestService(league, &fakeSnapshots{}, &fakeWriter{}, nil)

	if _, err := svc.GetPlayerSeasonStats(context.Background(), outsider, playerOne, homeTeamID); !errors.Is(err, stats.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestGetPlayerOverallStats(t *testing.T) {
	league, gameID := fixtureLeague()
	// playerOne also has a season on a team the coach cannot see.
	league.teams[playerOne] = []uuid.UUID{homeTeamID, otherTeam}
	snaps := &fakeSnapshots{
		players: map[uuid.UUID]map[uuid.UUID]stats.PlayerSnapshotRow{
			playerOne: {gameID: {
				GameID: gameID, PlayerID: playerOne, TeamID: homeTeamID,
				StatLine: stats.StatLine{Points: 18, FieldGoalsMade: 7, FieldGoalsAttempted: 12},
			}},
		},
	}
	svc := newTestService(league, snaps, &fakeWriter{}, nil)
	ctx := context.Background()

	// The coach sees only the home-team season; totals cover just that slice.
	career, err := svc.GetPlayerOverallStats(ctx, coachUser, playerOne)
	if err != nil {
		t.Fatalf("GetPlayerOverallStats: %v", err)
	}
	if len(career.Seasons) != 1 || career.Seasons[0].TeamID != homeTeamID {
		t.Fatalf("Seasons = %+v, want only the visible team", career.Seasons)
	}
	if career.GamesPlayed != 1 || career.Points != 18 {
		t.Errorf("career = %d games / %d points, want 1 / 18", career.GamesPlayed, career.Points)
	}

	// An admin sees both teams, including the zero-snapshot season.
	career, err = svc.GetPlayerOverallStats(ctx, adminUser, playerOne)
	if err != nil {
		t.Fatalf("admin GetPlayerOverallStats: %v", err)
	}
	if len(career.Seasons) != 2 {
		t.Errorf("admin Seasons = %d, want 2", len(career.Seasons))
	}

	// A caller who can see none of the player's teams gets Forbidden.
	if _, err := svc.GetPlayerOverallStats(ctx, outsider, playerOne); !errors.Is(err, stats.ErrForbidden) {
		t.Errorf("outsider err = %v, want ErrForbidden", err)
	}

	// A player with no team memberships at all is a NotFound.
	if _, err := svc.GetPlayerOverallStats(ctx, adminUser, playerTwo); !errors.Is(err, stats.ErrNotFound) {
		t.Errorf("teamless player err = %v, want ErrNotFound", err)
	}
}

func TestCalculatePlayerStats_PropagatesReadErrors(t *testing.T) {
	league, gameID := fixtureLeague()
	league.eventsErr = errors.New("query timeout")
	svc := newTestService(league, &fakeSnapshots{}, &fakeWriter{}, nil)

	if _, err := svc.CalculatePlayerStats(context.Background(), gameID); err == nil {
		t.Fatal("expected the event-log read error to surface")
	}
}
