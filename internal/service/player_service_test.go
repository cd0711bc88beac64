package service

import (
	"context"
	"sync"
	"testing"

	"github.com/rift-augur/rift-augur-backend/internal/models"
	"github.com/rift-augur/rift-augur-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerService_CreateTwice(t *testing.T) {
	env := newTestEnv(10)
	ctx := context.Background()

	created, err := env.players.Create(ctx, &models.CreatePlayerRequest{PlayerID: "p1", Rating: intPtr(1200)})
	require.NoError(t, err)
	assert.Equal(t, 1200, created.Rating)

	_, err = env.players.Create(ctx, &models.CreatePlayerRequest{PlayerID: "p1", Rating: intPtr(1500)})
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)

	profile, err := env.players.GetStats(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1200, profile.Rating)
}

func TestPlayerService_CreateValidation(t *testing.T) {
	env := newTestEnv(10)

	_, err := env.players.Create(context.Background(), &models.CreatePlayerRequest{PlayerID: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPlayerService_GetStatsCreatesLazily(t *testing.T) {
	env := newTestEnv(10)
	ctx := context.Background()

	profile, err := env.players.GetStats(ctx, "newbie")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultRating, profile.Rating)
	assert.Equal(t, []string{models.DefaultCharacter}, profile.CharacterPreferences)

	stored, err := env.repo.Get(ctx, "newbie")
	require.NoError(t, err)
	assert.Equal(t, "newbie", stored.PlayerID)
}

func TestPlayerService_GetStatsConcurrentCreatesOnce(t *testing.T) {
	env := newTestEnv(10)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			profile, err := env.players.GetStats(ctx, "p1")
			assert.NoError(t, err)
			assert.Equal(t, "p1", profile.PlayerID)
		}()
	}
	wg.Wait()

	all, err := env.players.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPlayerService_ReadThroughFillsCache(t *testing.T) {
	env := newTestEnv(10)
	ctx := context.Background()

	_, err := env.players.Create(ctx, &models.CreatePlayerRequest{PlayerID: "p1"})
	require.NoError(t, err)

	_, ok := env.cache.Get(ctx, "p1")
	assert.False(t, ok)

	_, err = env.players.Resolve(ctx, "p1")
	require.NoError(t, err)

	cached, ok := env.cache.Get(ctx, "p1")
	require.True(t, ok)
	assert.Equal(t, "p1", cached.PlayerID)
}

func TestPlayerService_UpdateInvalidatesCache(t *testing.T) {
	env := newTestEnv(10)
	ctx := context.Background()

	_, err := env.players.Create(ctx, &models.CreatePlayerRequest{PlayerID: "p1"})
	require.NoError(t, err)
	_, err = env.players.Resolve(ctx, "p1")
	require.NoError(t, err)

	updated, err := env.players.Update(ctx, &models.UpdatePlayerRequest{
		PlayerID:             "p1",
		Rating:               intPtr(1350),
		CharacterPreferences: []string{"Jinx"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1350, updated.Rating)

	_, ok := env.cache.Get(ctx, "p1")
	assert.False(t, ok)

	profile, err := env.players.GetStats(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1350, profile.Rating)
	assert.Equal(t, []string{"Jinx"}, profile.CharacterPreferences)
}

func TestPlayerService_UpdateErrors(t *testing.T) {
	env := newTestEnv(10)
	ctx := context.Background()

	_, err := env.players.Update(ctx, &models.UpdatePlayerRequest{PlayerID: "ghost", Rating: intPtr(1)})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = env.players.Update(ctx, &models.UpdatePlayerRequest{PlayerID: "ghost"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPlayerService_EnsureForQueue(t *testing.T) {
	env := newTestEnv(10)
	ctx := context.Background()

	profile, err := env.players.EnsureForQueue(ctx, "p1", nil)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultRating, profile.Rating)

	profile, err = env.players.EnsureForQueue(ctx, "p1", intPtr(1500))
	require.NoError(t, err)
	assert.Equal(t, 1500, profile.Rating)

	profile, err = env.players.EnsureForQueue(ctx, "p1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1500, profile.Rating)

	profile, err = env.players.EnsureForQueue(ctx, "p2", intPtr(800))
	require.NoError(t, err)
	assert.Equal(t, 800, profile.Rating)
}

func TestPlayerService_ListByPrefix(t *testing.T) {
	env := newTestEnv(10)
	ctx := context.Background()

	for _, id := range []string{"faker", "fakeout", "caps"} {
		_, err := env.players.Create(ctx, &models.CreatePlayerRequest{PlayerID: id})
		require.NoError(t, err)
	}

	profiles, err := env.players.List(ctx, "fake")
	require.NoError(t, err)
	assert.Len(t, profiles, 2)
}
