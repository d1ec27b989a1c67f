package repository

import (
	"context"
	"testing"

	"pointsbot/domain/services"
	"pointsbot/events"
	"pointsbot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleThresholdRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewRoleThresholdRepository(testDB.DB, guildA)
	other := NewRoleThresholdRepository(testDB.DB, guildB)

	t.Run("empty table", func(t *testing.T) {
		thresholds, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, thresholds)

		threshold, err := repo.GetByPoints(ctx, 50)
		require.NoError(t, err)
		assert.Nil(t, threshold)
	})

	t.Run("get all is ordered by points", func(t *testing.T) {
		for _, threshold := range []int64{350, 50, 150, 100} {
			require.NoError(t, repo.Upsert(ctx, testutil.CreateTestThreshold(0, threshold, "tier")))
		}
		require.NoError(t, other.Upsert(ctx, testutil.CreateTestThreshold(0, 10, "elsewhere")))

		thresholds, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, thresholds, 4)
		for i, want := range []int64{50, 100, 150, 350} {
			assert.Equal(t, want, thresholds[i].PointsRequired)
			assert.Equal(t, guildA, thresholds[i].GuildID)
		}
	})

	t.Run("last writer wins per points value", func(t *testing.T) {
		first := testutil.CreateTestThreshold(0, 100, "scout")
		require.NoError(t, repo.Upsert(ctx, first))

		second := testutil.CreateTestThreshold(0, 100, "veteran")
		second.RoleColor = "#ff0000"
		require.NoError(t, repo.Upsert(ctx, second))

		threshold, err := repo.GetByPoints(ctx, 100)
		require.NoError(t, err)
		require.NotNil(t, threshold)
		assert.Equal(t, "veteran", threshold.RoleName)
		assert.Equal(t, "#ff0000", threshold.RoleColor)

		thresholds, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, thresholds, 4)
	})

	t.Run("delete reports whether a row existed", func(t *testing.T) {
		removed, err := repo.Delete(ctx, 150)
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = repo.Delete(ctx, 150)
		require.NoError(t, err)
		assert.False(t, removed)

		removed, err = repo.Delete(ctx, 10)
		require.NoError(t, err)
		assert.False(t, removed, "other guild's threshold must not be visible")
	})
}

func TestGuildSettingsRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewGuildSettingsRepository(testDB.DB, guildA)

	settings, err := repo.GetOrCreateGuildSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, guildA, settings.GuildID)
	assert.Nil(t, settings.NotificationChannelID)
	assert.False(t, settings.DefaultTiersSeeded)

	channelID := int64(4242)
	settings.SetNotificationChannel(&channelID)
	settings.DefaultTiersSeeded = true
	require.NoError(t, repo.UpdateGuildSettings(ctx, settings))

	reloaded, err := repo.GetOrCreateGuildSettings(ctx)
	require.NoError(t, err)
	require.NotNil(t, reloaded.NotificationChannelID)
	assert.Equal(t, channelID, *reloaded.NotificationChannelID)
	assert.True(t, reloaded.DefaultTiersSeeded)

	reloaded.SetNotificationChannel(nil)
	require.NoError(t, repo.UpdateGuildSettings(ctx, reloaded))

	cleared, err := repo.GetOrCreateGuildSettings(ctx)
	require.NoError(t, err)
	assert.False(t, cleared.HasNotificationChannel())
}

func TestRoleThresholdService_EnsureDefaults_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	ctx := context.Background()

	seed := func() []int64 {
		uow := factory.CreateForGuild(guildA)
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()

		svc := services.NewRoleThresholdService(uow.GuildID(), uow.RoleThresholdRepository(), uow.GuildSettingsRepository(), uow.EventBus())
		_, err := svc.EnsureDefaults(ctx)
		require.NoError(t, err)

		thresholds, err := svc.ListThresholds(ctx)
		require.NoError(t, err)
		require.NoError(t, uow.Commit())

		var points []int64
		for _, threshold := range thresholds {
			points = append(points, threshold.PointsRequired)
		}
		return points
	}

	assert.Equal(t, []int64{50, 100, 150, 350, 500}, seed())

	// A removed default stays removed
	_, err := NewRoleThresholdRepository(testDB.DB, guildA).Delete(ctx, 500)
	require.NoError(t, err)
	assert.Equal(t, []int64{50, 100, 150, 350}, seed())
}
