package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rift-augur/rift-augur-backend/internal/models"
	"github.com/rift-augur/rift-augur-backend/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLiteRepository(t *testing.T) *SQLProfileRepository {
	db, err := database.Connect("sqlite3", filepath.Join(t.TempDir(), "profiles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewSQLProfileRepository(db)
}

func repositories(t *testing.T) map[string]ProfileRepository {
	return map[string]ProfileRepository{
		"memory": NewMemoryProfileRepository(),
		"sqlite": setupSQLiteRepository(t),
	}
}

func TestProfileRepository_CreateIfAbsent(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			err := repo.CreateIfAbsent(ctx, models.NewPlayerProfile("p1", 1200))
			require.NoError(t, err)

			// 두 번째 생성은 실패, 기존 값 유지
			err = repo.CreateIfAbsent(ctx, models.NewPlayerProfile("p1", 1500))
			assert.ErrorIs(t, err, ErrAlreadyExists)

			profile, err := repo.Get(ctx, "p1")
			require.NoError(t, err)
			assert.Equal(t, 1200, profile.Rating)
			assert.Equal(t, 0, profile.Wins)
			assert.Equal(t, 0, profile.Losses)
			assert.Equal(t, []string{models.DefaultCharacter}, profile.CharacterPreferences)
		})
	}
}

func TestProfileRepository_UpdateIfPresent(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rating := 1337

			_, err := repo.UpdateIfPresent(ctx, "ghost", models.ProfileUpdate{Rating: &rating})
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, repo.CreateIfAbsent(ctx, models.NewPlayerProfile("p1", 1000)))

			updated, err := repo.UpdateIfPresent(ctx, "p1", models.ProfileUpdate{Rating: &rating})
			require.NoError(t, err)
			assert.Equal(t, 1337, updated.Rating)
			assert.Equal(t, []string{models.DefaultCharacter}, updated.CharacterPreferences)

			updated, err = repo.UpdateIfPresent(ctx, "p1", models.ProfileUpdate{
				CharacterPreferences: []string{"Ahri", "Lux"},
			})
			require.NoError(t, err)
			assert.Equal(t, 1337, updated.Rating)
			assert.Equal(t, []string{"Ahri", "Lux"}, updated.CharacterPreferences)
		})
	}
}

func TestProfileRepository_ApplyDelta(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := repo.ApplyDelta(ctx, "ghost", models.ProfileDelta{Wins: 1})
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, repo.CreateIfAbsent(ctx, models.NewPlayerProfile("p1", 1000)))

			updated, err := repo.ApplyDelta(ctx, "p1", models.ProfileDelta{Rating: 25, Wins: 1})
			require.NoError(t, err)
			assert.Equal(t, 1025, updated.Rating)
			assert.Equal(t, 1, updated.Wins)

			updated, err = repo.ApplyDelta(ctx, "p1", models.ProfileDelta{Rating: -25, Losses: 1})
			require.NoError(t, err)
			assert.Equal(t, 1000, updated.Rating)
			assert.Equal(t, 1, updated.Wins)
			assert.Equal(t, 1, updated.Losses)
		})
	}
}

func TestProfileRepository_ApplyDeltaConcurrent(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repo.CreateIfAbsent(ctx, models.NewPlayerProfile("p1", 1000)))

			const workers = 20
			var wg sync.WaitGroup
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := repo.ApplyDelta(ctx, "p1", models.ProfileDelta{Rating: 25, Wins: 1})
					assert.NoError(t, err)
				}()
			}
			wg.Wait()

			// 동시 증가가 유실되지 않아야 함
			profile, err := repo.Get(ctx, "p1")
			require.NoError(t, err)
			assert.Equal(t, 1000+25*workers, profile.Rating)
			assert.Equal(t, workers, profile.Wins)
		})
	}
}

func TestProfileRepository_Scan(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, id := range []string{"alpha", "alps", "beta", "Alpha"} {
				require.NoError(t, repo.CreateIfAbsent(ctx, models.NewPlayerProfile(id, 1000)))
			}

			all, err := repo.Scan(ctx, "")
			require.NoError(t, err)
			assert.Len(t, all, 4)

			filtered, err := repo.Scan(ctx, "al")
			require.NoError(t, err)
			ids := make([]string, 0, len(filtered))
			for _, p := range filtered {
				ids = append(ids, p.PlayerID)
			}
			assert.ElementsMatch(t, []string{"alpha", "alps"}, ids)

			none, err := repo.Scan(ctx, "zzz")
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestProfileRepository_GetMissing(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			_, err := repo.Get(context.Background(), "nobody")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestSQLProfileRepository_ClosedDatabaseIsUnavailable(t *testing.T) {
	db, err := database.Connect("sqlite3", filepath.Join(t.TempDir(), "closed.db"))
	require.NoError(t, err)
	repo := NewSQLProfileRepository(db)
	require.NoError(t, db.Close())

	_, err = repo.Get(context.Background(), "p1")
	assert.ErrorIs(t, err, ErrBackendUnavailable)

	err = repo.CreateIfAbsent(context.Background(), models.NewPlayerProfile("p1", 1000))
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestSQLProfileRepository_BindsArgumentsInOrder(t *testing.T) {
	repo := setupSQLiteRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateIfAbsent(ctx, models.NewPlayerProfile("zed", 1000)))
	require.NoError(t, repo.CreateIfAbsent(ctx, models.NewPlayerProfile("zoe", 1000)))

	rating := 1400
	updated, err := repo.UpdateIfPresent(ctx, "zed", models.ProfileUpdate{
		Rating:               &rating,
		CharacterPreferences: []string{"Yasuo"},
	})
	require.NoError(t, err)
	assert.Equal(t, "zed", updated.PlayerID)
	assert.Equal(t, 1400, updated.Rating)
	assert.Equal(t, []string{"Yasuo"}, updated.CharacterPreferences)

	// rating/wins/losses가 서로 다른 값이어야 바인딩 순서가 드러난다
	updated, err = repo.ApplyDelta(ctx, "zed", models.ProfileDelta{Rating: 7, Wins: 2, Losses: 3})
	require.NoError(t, err)
	assert.Equal(t, 1407, updated.Rating)
	assert.Equal(t, 2, updated.Wins)
	assert.Equal(t, 3, updated.Losses)

	other, err := repo.Get(ctx, "zoe")
	require.NoError(t, err)
	assert.Equal(t, 1000, other.Rating)

	filtered, err := repo.Scan(ctx, "ze")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "zed", filtered[0].PlayerID)
}
