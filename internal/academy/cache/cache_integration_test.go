//go:build integration

package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dojoledger/internal/academy/models"
	"dojoledger/internal/platform/config"
	"dojoledger/internal/platform/redis"
	"dojoledger/pkg/platform/sentinel"
	"dojoledger/pkg/testutil/containers"
)

func testCache(t *testing.T, ttl time.Duration) *StudentCache {
	t.Helper()
	rc := containers.NewRedisContainer(t)

	client, err := redis.New(config.RedisConfig{
		URL:          rc.Addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return New(client, ttl)
}

func TestStudentCache_RoundTrip(t *testing.T) {
	c := testCache(t, time.Minute)
	ctx := t.Context()

	student := models.Student{
		ID:         "0xstudent1",
		ExternalID: "g-1",
		Name:       "Ana",
		Rank:       models.RankWhite,
		FeePaid:    true,
		EnrolledAt: time.UnixMilli(1700000000000).UTC(),
	}
	require.NoError(t, c.Set(ctx, student))

	got, err := c.Get(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, student, *got)
}

func TestStudentCache_MissIsNotFound(t *testing.T) {
	c := testCache(t, time.Minute)

	_, err := c.Get(t.Context(), "0xnothere")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel.ErrNotFound))
}

func TestStudentCache_Invalidate(t *testing.T) {
	c := testCache(t, time.Minute)
	ctx := t.Context()

	require.NoError(t, c.Set(ctx, models.Student{ID: "0xstudent1", Name: "Ana", Rank: models.RankWhite}))
	require.NoError(t, c.Invalidate(ctx, "0xstudent1"))

	_, err := c.Get(ctx, "0xstudent1")
	assert.True(t, errors.Is(err, sentinel.ErrNotFound))
}

func TestStudentCache_EntriesExpire(t *testing.T) {
	c := testCache(t, time.Second)
	ctx := t.Context()

	require.NoError(t, c.Set(ctx, models.Student{ID: "0xstudent1", Name: "Ana", Rank: models.RankWhite}))
	time.Sleep(1500 * time.Millisecond)

	_, err := c.Get(ctx, "0xstudent1")
	assert.True(t, errors.Is(err, sentinel.ErrNotFound))
}
