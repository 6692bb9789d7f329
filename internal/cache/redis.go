// Package cache provides a best-effort redis cache for computed team-season
// responses. Snapshots remain the durable record; entries here expire on TTL
// and are invalidated whenever a game of the team is re-finalized.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"courtstats/internal/stats"
)

// SeasonCache stores serialized season records under per-team keys.
type SeasonCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSeasonCache creates a cache over an existing redis client.
func NewSeasonCache(client *redis.Client, ttl time.Duration) *SeasonCache {
	return &SeasonCache{client: client, ttl: ttl}
}

func teamSeasonKey(teamID uuid.UUID) string {
	return fmt.Sprintf("season:team:%s", teamID)
}

// GetTeamSeason returns the cached team season record, if present. Any redis
// or decode error reads as a miss.
func (c *SeasonCache) GetTeamSeason(ctx context.Context, teamID uuid.UUID) (*stats.TeamSeasonStats, bool) {
	raw, err := c.client.Get(ctx, teamSeasonKey(teamID)).Bytes()
	if err != nil {
		return nil, false
	}
	var season stats.TeamSeasonStats
	if err := json.Unmarshal(raw, &season); err != nil {
		return nil, false
	}
	return &season, true
}

// SetTeamSeason stores a team season record with the configured TTL.
// Best-effort: a failed write is simply a future miss.
func (c *SeasonCache) SetTeamSeason(ctx context.Context, teamID uuid.UUID, v *stats.TeamSeasonStats) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, teamSeasonKey(teamID), raw, c.ttl).Err()
}

// InvalidateTeam drops the team's cached season record.
func (c *SeasonCache) InvalidateTeam(ctx context.Context, teamID uuid.UUID) error {
	return c.client.Del(ctx, teamSeasonKey(teamID)).Err()
}
