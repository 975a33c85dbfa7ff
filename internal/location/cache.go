package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"beacon/internal/platform/redis"
	id "beacon/pkg/domain"
	"beacon/pkg/geo"
	"beacon/pkg/platform/sentinel"
)

const latestKeyPrefix = "beacon:location:latest:"

// Cache keeps each kid's most recent report in Redis so the guardian
// dashboard read path skips the timestamp-ordered table scan.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache wraps a Redis client. A 24h TTL bounds staleness for kids whose
// devices stop reporting.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client, ttl: 24 * time.Hour}
}

type cachedReport struct {
	ID        string    `json:"id"`
	KidID     string    `json:"kid_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
}

// Set stores the report as the kid's latest.
func (c *Cache) Set(ctx context.Context, report *LocationReport) error {
	payload, err := json.Marshal(cachedReport{
		ID:        report.ID.String(),
		KidID:     report.KidID.String(),
		Latitude:  report.Point.Latitude,
		Longitude: report.Point.Longitude,
		CreatedAt: report.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal cached report: %w", err)
	}
	if err := c.client.Set(ctx, latestKeyPrefix+report.KidID.String(), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache latest report: %w", err)
	}
	return nil
}

// Get returns the kid's cached latest report, or sentinel.ErrNotFound on a
// cache miss.
func (c *Cache) Get(ctx context.Context, kidID id.UserID) (*LocationReport, error) {
	payload, err := c.client.Get(ctx, latestKeyPrefix+kidID.String()).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("read cached report: %w", err)
	}

	var cached cachedReport
	if err := json.Unmarshal(payload, &cached); err != nil {
		return nil, fmt.Errorf("unmarshal cached report: %w", err)
	}
	reportID, err := id.ParseLocationID(cached.ID)
	if err != nil {
		return nil, err
	}
	return &LocationReport{
		ID:        reportID,
		KidID:     kidID,
		Point:     geo.Point{Latitude: cached.Latitude, Longitude: cached.Longitude},
		CreatedAt: cached.CreatedAt,
	}, nil
}
