package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"courtstats/internal/service"
	"courtstats/internal/stats"
)

// stubLeague serves a single game, or NotFound for everything else.
type stubLeague struct {
	game *stats.Game
}

func (s *stubLeague) GetGame(_ context.Context, gameID uuid.UUID) (*stats.Game, error) {
	if s.game != nil && s.game.ID == gameID {
		return s.game, nil
	}
	return nil, stats.ErrNotFound
}

func (s *stubLeague) GetGameEvents(context.Context, uuid.UUID) ([]stats.GameEvent, error) {
	return nil, nil
}

func (s *stubLeague) GetTeamRoster(context.Context, uuid.UUID) ([]stats.RosterEntry, error) {
	return nil, nil
}

func (s *stubLeague) GetFinishedGames(context.Context, uuid.UUID) ([]stats.Game, error) {
	return nil, nil
}

func (s *stubLeague) GetPlayerTeams(context.Context, uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

type stubSnapshots struct{}

func (stubSnapshots) PlayerSnapshots(context.Context, []uuid.UUID, []uuid.UUID) (map[uuid.UUID]map[uuid.UUID]stats.PlayerSnapshotRow, error) {
	return nil, nil
}

func (stubSnapshots) TeamSnapshots(context.Context, uuid.UUID, []uuid.UUID) (map[uuid.UUID]stats.TeamSnapshotRow, error) {
	return nil, nil
}

type stubWriter struct {
	writes int
	err    error
}

func (s *stubWriter) WriteGameSnapshots(context.Context, *stats.SnapshotSet) error {
	if s.err != nil {
		return s.err
	}
	s.writes++
	return nil
}

type stubAuth struct{}

func (stubAuth) CanAccessTeam(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return true, nil
}

func (stubAuth) IsSystemAdmin(context.Context, uuid.UUID) (bool, error) { return false, nil }

func newProcessor(league *stubLeague, writer *stubWriter) *FinalizeProcessor {
	svc := service.NewStatsService(league, stubSnapshots{}, writer, stubAuth{}, nil)
	return NewFinalizeProcessor(context.Background(), svc)
}

func TestHandle_FinalizesGame(t *testing.T) {
	game := &stats.Game{
		ID:     uuid.New(),
		TeamID: uuid.New(),
		Status: stats.GameFinished,
		Date:   time.Now(),
	}
	writer := &stubWriter{}
	p := newProcessor(&stubLeague{game: game}, writer)

	if err := p.Handle([]byte(`{"game_id": "` + game.ID.String() + `"}`)); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if writer.writes != 1 {
		t.Errorf("writes = %d, want 1", writer.writes)
	}
}

func TestHandle_SkipsMissingGame(t *testing.T) {
	writer := &stubWriter{}
	p := newProcessor(&stubLeague{}, writer)

	// A deleted game is dropped, not retried.
	if err := p.Handle([]byte(`{"game_id": "` + uuid.New().String() + `"}`)); err != nil {
		t.Fatalf("Handle = %v, want nil for a missing game", err)
	}
	if writer.writes != 0 {
		t.Errorf("writes = %d, want none", writer.writes)
	}
}

func TestHandle_MalformedPayload(t *testing.T) {
	p := newProcessor(&stubLeague{}, &stubWriter{})

	if err := p.Handle([]byte(`{not json`)); err == nil {
		t.Error("expected an error for malformed JSON")
	}
	if err := p.Handle([]byte(`{"game_id": "not-a-uuid"}`)); err == nil {
		t.Error("expected an error for an invalid game id")
	}
}

func TestHandle_WriteFailureIsRetryable(t *testing.T) {
	game := &stats.Game{ID: uuid.New(), TeamID: uuid.New(), Status: stats.GameFinished}
	writer := &stubWriter{err: errors.New("deadlock detected")}
	p := newProcessor(&stubLeague{game: game}, writer)

	if err := p.Handle([]byte(`{"game_id": "` + game.ID.String() + `"}`)); err == nil {
		t.Fatal("expected the write failure to surface for retry")
	}
}
