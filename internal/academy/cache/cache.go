// Package cache is a read-through snapshot cache for resolved student
// records. It only ever holds projections of ledger state; a cold or failing
// cache degrades to direct resolution, never to wrong answers.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"dojoledger/internal/academy/models"
	"dojoledger/internal/platform/redis"
	"dojoledger/pkg/platform/sentinel"
)

const keyPrefix = "academy:student:"

// StudentCache stores student snapshots in Redis with a bounded TTL so a
// stale entry ages out even if invalidation is missed.
type StudentCache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *StudentCache {
	return &StudentCache{client: client, ttl: ttl}
}

// Get returns the cached snapshot for a student, or sentinel.ErrNotFound on a
// miss.
func (c *StudentCache) Get(ctx context.Context, id string) (*models.Student, error) {
	raw, err := c.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("cache get %s: %w", id, err)
	}

	var student models.Student
	if err := json.Unmarshal(raw, &student); err != nil {
		return nil, fmt.Errorf("cache decode %s: %w", id, err)
	}
	return &student, nil
}

// Set stores a snapshot under the student's ledger-assigned ID.
func (c *StudentCache) Set(ctx context.Context, student models.Student) error {
	raw, err := json.Marshal(student)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", student.ID, err)
	}
	if err := c.client.Set(ctx, keyPrefix+student.ID, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", student.ID, err)
	}
	return nil
}

// Invalidate drops the cached snapshot after a confirmed write so the next
// read re-resolves from the ledger.
func (c *StudentCache) Invalidate(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("cache invalidate %s: %w", id, err)
	}
	return nil
}
