package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestStatsCountsEverything(t *testing.T) {
	svc := NewService(fixtureRepo(), nil, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{
		Books:         3,
		Copies:        4,
		Available:     2,
		Authors:       2,
		FantasyGenres: 2,
		BooksWithThe:  2,
	}, stats)
}

func TestStatsAreCachedUntilBump(t *testing.T) {
	repo := fixtureRepo()
	cache := NewStatsCache(newRedis(t), time.Minute)
	svc := NewService(repo, cache, nil)
	ctx := context.Background()

	first, err := svc.Stats(ctx)
	require.NoError(t, err)
	loads := repo.counts.Load()
	assert.Equal(t, int32(6), loads)

	repo.authors = append(repo.authors, Author{ID: 3, FirstName: "Mary", LastName: "Shelley"})
	second, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, loads, repo.counts.Load())

	require.NoError(t, cache.Bump(ctx))
	third, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, third.Authors)
}

func TestStatsFallBackWhenCacheDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	svc := NewService(fixtureRepo(), NewStatsCache(client, time.Minute), nil)
	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Books)
}

func TestNilStatsCacheBumpIsNoop(t *testing.T) {
	var cache *StatsCache
	assert.NoError(t, cache.Bump(context.Background()))
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "7", FormatCount(7))
	assert.Equal(t, "12,345", FormatCount(12345))
	assert.Equal(t, "1,000", Stats{Books: 1000}.View().Books)
}

func TestAuthorName(t *testing.T) {
	assert.Equal(t, "Tolkien, J.R.R.", Author{FirstName: "J.R.R.", LastName: "Tolkien"}.Name())
}

func TestStatsFetchSurvivesFirstCallerCancel(t *testing.T) {
	cache := NewStatsCache(newRedis(t), time.Minute)
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	load := func(ctx context.Context) (Stats, error) {
		once.Do(func() { close(started) })
		<-release
		if err := ctx.Err(); err != nil {
			return Stats{}, err
		}
		return Stats{Books: 5}, nil
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := cache.Fetch(firstCtx, load)
		firstErr <- err
	}()
	<-started

	type result struct {
		stats Stats
		err   error
	}
	second := make(chan result, 1)
	go func() {
		stats, err := cache.Fetch(context.Background(), load)
		second <- result{stats, err}
	}()

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)
	// Let the second caller reach the in-flight load before it finishes.
	time.Sleep(50 * time.Millisecond)
	close(release)

	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, 5, res.stats.Books)
}
