package leaderboard

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"path/filepath"
	"testing"

	"pointsbot/domain/entities"
	"pointsbot/domain/services"
	"pointsbot/filestore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGuild = int64(777)

func seededFeature(t *testing.T, balances map[int64]int64) *Feature {
	t.Helper()
	ctx := context.Background()

	store, err := filestore.Open(filepath.Join(t.TempDir(), "points.json"), nil)
	require.NoError(t, err)

	uow := store.CreateForGuild(testGuild)
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	ledger := services.NewLedgerService(testGuild, uow.AccountRepository(), uow.TransactionRepository(), uow.EventBus())
	for userID, points := range balances {
		_, err := ledger.Credit(ctx, userID, points, nil, "")
		require.NoError(t, err)
	}
	tiers := services.NewRoleThresholdService(testGuild, uow.RoleThresholdRepository(), uow.GuildSettingsRepository(), uow.EventBus())
	_, err = tiers.SetThreshold(ctx, 100, "raider scout", "#3498db")
	require.NoError(t, err)
	require.NoError(t, uow.Commit())

	return &Feature{uowFactory: store, images: NewImageGenerator()}
}

func nameOf(userID int64) string {
	return fmt.Sprintf("user-%d", userID)
}

func TestLoadPage(t *testing.T) {
	balances := make(map[int64]int64)
	for id := int64(1); id <= 12; id++ {
		balances[id] = id * 10
	}
	f := seededFeature(t, balances)
	ctx := context.Background()

	t.Run("first page", func(t *testing.T) {
		data, err := f.loadPage(ctx, testGuild, 1, 10, nameOf)
		require.NoError(t, err)
		require.Len(t, data.Rows, 10)
		assert.Equal(t, 2, data.TotalPages)
		assert.Equal(t, 1, data.TierCount)

		top := data.Rows[0]
		assert.Equal(t, 1, top.Position)
		assert.Equal(t, int64(12), top.UserID)
		assert.Equal(t, "user-12", top.Name)
		assert.Equal(t, "raider scout", top.TierName())

		// 30 points is below every tier
		last := data.Rows[9]
		assert.Equal(t, int64(30), last.Points)
		assert.Equal(t, noTier, last.TierName())
	})

	t.Run("second page keeps global positions", func(t *testing.T) {
		data, err := f.loadPage(ctx, testGuild, 2, 10, nameOf)
		require.NoError(t, err)
		require.Len(t, data.Rows, 2)
		assert.Equal(t, 11, data.Rows[0].Position)
		assert.Equal(t, int64(12), data.Stats.AccountCount)
	})

	t.Run("page past the end is clamped", func(t *testing.T) {
		data, err := f.loadPage(ctx, testGuild, 9, 10, nameOf)
		require.NoError(t, err)
		assert.Equal(t, 2, data.Number)
		assert.Len(t, data.Rows, 2)
	})
}

func TestLoadPage_EmptyGuild(t *testing.T) {
	f := seededFeature(t, nil)

	data, err := f.loadPage(context.Background(), testGuild, 1, 10, nameOf)
	require.NoError(t, err)
	assert.Empty(t, data.Rows)
	assert.Equal(t, 1, data.TotalPages)
	assert.Equal(t, int64(0), data.Stats.AccountCount)
}

func TestBuildLeaderboardEmbed(t *testing.T) {
	tier := &entities.RoleThreshold{PointsRequired: 100, RoleName: "raider scout"}
	rows := []Row{
		{Position: 1, Name: "alice", Points: 1500, Tier: tier},
		{Position: 2, Name: "bob", Points: 20},
	}
	stats := &entities.GuildStats{AccountCount: 14, TotalPoints: 1520, AveragePoints: 108.57, MaxPoints: 1500}

	embed := BuildLeaderboardEmbed(rows, stats, 1, 2, true)
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "🥇 alice", embed.Fields[0].Name)
	assert.Equal(t, "**1,500** поинтов | 🏅 raider scout", embed.Fields[0].Value)
	assert.Contains(t, embed.Fields[1].Value, noTier)
	assert.Contains(t, embed.Fields[2].Value, "108.6")
	require.NotNil(t, embed.Footer)
	assert.Equal(t, "Страница 1/2 | Всего участников: 14", embed.Footer.Text)
	require.NotNil(t, embed.Image)
	assert.Equal(t, "attachment://leaderboard.png", embed.Image.URL)

	single := BuildLeaderboardEmbed(rows, stats, 1, 1, false)
	assert.Nil(t, single.Footer)
	assert.Nil(t, single.Image)
}

func TestBuildStatsEmbed(t *testing.T) {
	stats := &entities.GuildStats{AccountCount: 3, TotalPoints: 600, AveragePoints: 200}
	top := []Row{{Position: 1, Name: "alice", Points: 400}}

	embed := BuildStatsEmbed(stats, top, 5)
	require.Len(t, embed.Fields, 5)
	assert.Equal(t, "🏅 Топ-3", embed.Fields[3].Name)
	assert.Contains(t, embed.Fields[3].Value, "**1.** alice: **400** поинтов")
	assert.Contains(t, embed.Fields[4].Value, "**5**")

	bare := BuildStatsEmbed(&entities.GuildStats{}, nil, 0)
	assert.Len(t, bare.Fields, 3)
}

func TestImageGenerator_Generate(t *testing.T) {
	g := NewImageGenerator()
	tier := &entities.RoleThreshold{RoleName: "raider legend", RoleColor: "#9b59b6"}

	var rows []Row
	for pos := 1; pos <= 10; pos++ {
		rows = append(rows, Row{Position: pos, Name: "Участник с очень длинным именем", Points: int64(1000 - pos), Tier: tier})
	}

	small, err := g.Generate(rows[:1])
	require.NoError(t, err)
	large, err := g.Generate(rows)
	require.NoError(t, err)

	smallImg, err := png.Decode(bytes.NewReader(small))
	require.NoError(t, err)
	largeImg, err := png.Decode(bytes.NewReader(large))
	require.NoError(t, err)

	assert.Equal(t, 420, largeImg.Bounds().Dx())
	assert.Equal(t, 120, smallImg.Bounds().Dy())
	assert.Greater(t, largeImg.Bounds().Dy(), smallImg.Bounds().Dy())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 16))
	assert.Equal(t, "Учас…", truncate("Участник", 5))
	assert.Len(t, []rune(truncate("Участник с очень длинным именем", 16)), 16)
}
