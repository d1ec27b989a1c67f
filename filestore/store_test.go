package filestore

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pointsbot/application"
	"pointsbot/domain"
	"pointsbot/domain/interfaces"
	"pointsbot/domain/services"
	"pointsbot/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	guildA = int64(1001)
	guildB = int64(1002)
)

func openTestStore(t *testing.T, bus *events.Bus) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "points.json")
	store, err := Open(path, bus)
	require.NoError(t, err)
	return store, path
}

func ledgerFor(uow application.UnitOfWork) interfaces.LedgerService {
	return services.NewLedgerService(uow.GuildID(), uow.AccountRepository(), uow.TransactionRepository(), uow.EventBus())
}

func inLedger(t *testing.T, store *Store, guildID int64, fn func(ledger interfaces.LedgerService)) {
	t.Helper()
	ctx := context.Background()

	uow := store.CreateForGuild(guildID)
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	fn(ledgerFor(uow))
	require.NoError(t, uow.Commit())
}

func TestStore_LedgerProperties(t *testing.T) {
	t.Parallel()
	store, _ := openTestStore(t, nil)
	ctx := context.Background()

	t.Run("credit additivity and debit clamp", func(t *testing.T) {
		inLedger(t, store, guildA, func(ledger interfaces.LedgerService) {
			_, err := ledger.Credit(ctx, 1, 50, nil, "")
			require.NoError(t, err)
			balance, err := ledger.Credit(ctx, 1, 25, nil, "")
			require.NoError(t, err)
			assert.Equal(t, int64(75), balance)

			applied, balance, err := ledger.Debit(ctx, 1, 100, nil, "")
			require.NoError(t, err)
			assert.Equal(t, int64(75), applied)
			assert.Zero(t, balance)

			history, err := ledger.TransactionHistory(ctx, 1, 10)
			require.NoError(t, err)
			require.Len(t, history, 3)
			assert.Equal(t, []int64{-75, 25, 50}, []int64{history[0].Amount, history[1].Amount, history[2].Amount})
			assert.Greater(t, history[0].ID, history[1].ID)
		})
	})

	t.Run("set without change records nothing", func(t *testing.T) {
		inLedger(t, store, guildA, func(ledger interfaces.LedgerService) {
			_, err := ledger.SetBalance(ctx, 2, 40, nil, "")
			require.NoError(t, err)
			_, err = ledger.SetBalance(ctx, 2, 40, nil, "")
			require.NoError(t, err)

			history, err := ledger.TransactionHistory(ctx, 2, 10)
			require.NoError(t, err)
			assert.Len(t, history, 1)
		})
	})

	t.Run("negative points are refused", func(t *testing.T) {
		uow := store.CreateForGuild(guildA)
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()

		err := uow.AccountRepository().UpdatePoints(ctx, 2, -5)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})

	t.Run("credit past the maximum balance is refused", func(t *testing.T) {
		inLedger(t, store, guildA, func(ledger interfaces.LedgerService) {
			_, err := ledger.SetBalance(ctx, 3, math.MaxInt64, nil, "")
			require.NoError(t, err)

			_, err = ledger.Credit(ctx, 3, 1, nil, "")
			assert.ErrorIs(t, err, domain.ErrInvalidAmount)

			balance, err := ledger.GetBalance(ctx, 3)
			require.NoError(t, err)
			assert.Equal(t, int64(math.MaxInt64), balance)
		})
	})
}

func TestStore_LeaderboardOrdering(t *testing.T) {
	t.Parallel()
	store, _ := openTestStore(t, nil)
	ctx := context.Background()

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	inLedger(t, store, guildA, func(ledger interfaces.LedgerService) {
		for _, seed := range []struct{ user, points int64 }{{1, 100}, {2, 200}, {3, 200}, {4, 50}} {
			_, err := ledger.Credit(ctx, seed.user, seed.points, nil, "")
			require.NoError(t, err)
		}
	})

	inLedger(t, store, guildA, func(ledger interfaces.LedgerService) {
		entries, err := ledger.Leaderboard(ctx, 10, 0)
		require.NoError(t, err)

		var order []int64
		for _, entry := range entries {
			order = append(order, entry.UserID)
		}
		assert.Equal(t, []int64{2, 3, 1, 4}, order)

		page, err := ledger.Leaderboard(ctx, 10, 10)
		require.NoError(t, err)
		assert.Empty(t, page)

		rank, err := ledger.Rank(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, 1, rank)

		stats, err := ledger.GuildStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), stats.AccountCount)
		assert.Equal(t, int64(550), stats.TotalPoints)
		assert.InDelta(t, 137.5, stats.AveragePoints, 0.001)
		assert.Equal(t, int64(200), stats.MaxPoints)
	})
}

func TestStore_ResetIsolation(t *testing.T) {
	t.Parallel()
	store, _ := openTestStore(t, nil)
	ctx := context.Background()

	for _, guildID := range []int64{guildA, guildB} {
		inLedger(t, store, guildID, func(ledger interfaces.LedgerService) {
			_, err := ledger.Credit(ctx, 1, 100, nil, "")
			require.NoError(t, err)
		})
	}

	inLedger(t, store, guildA, func(ledger interfaces.LedgerService) {
		summary, err := ledger.ResetGuild(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), summary.AccountsRemoved)
		assert.Equal(t, int64(1), summary.TransactionsRemoved)
	})

	inLedger(t, store, guildA, func(ledger interfaces.LedgerService) {
		balance, err := ledger.GetBalance(ctx, 1)
		require.NoError(t, err)
		assert.Zero(t, balance)

		history, err := ledger.TransactionHistory(ctx, 1, 10)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	inLedger(t, store, guildB, func(ledger interfaces.LedgerService) {
		balance, err := ledger.GetBalance(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(100), balance)
	})
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()
	store, path := openTestStore(t, nil)
	ctx := context.Background()
	channelID := int64(4242)

	inLedger(t, store, guildA, func(ledger interfaces.LedgerService) {
		_, err := ledger.Credit(ctx, 1, 60, nil, "bonus")
		require.NoError(t, err)
	})

	uow := store.CreateForGuild(guildA)
	require.NoError(t, uow.Begin(ctx))
	_, err := services.NewRoleThresholdService(guildA, uow.RoleThresholdRepository(), uow.GuildSettingsRepository(), uow.EventBus()).
		SetThreshold(ctx, 50, "raider newgen", "2ECC71")
	require.NoError(t, err)
	require.NoError(t, services.NewGuildSettingsService(uow.GuildSettingsRepository()).UpdateNotificationChannel(ctx, &channelID))
	require.NoError(t, uow.Commit())
	require.NoError(t, store.Close())

	reopened, err := Open(path, nil)
	require.NoError(t, err)

	uow = reopened.CreateForGuild(guildA)
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	balance, err := ledgerFor(uow).GetBalance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(60), balance)

	history, err := ledgerFor(uow).TransactionHistory(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "bonus", history[0].Reason)

	thresholds, err := uow.RoleThresholdRepository().GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, thresholds, 1)
	assert.Equal(t, "#2ecc71", thresholds[0].RoleColor)

	settings, err := uow.GuildSettingsRepository().GetOrCreateGuildSettings(ctx)
	require.NoError(t, err)
	require.NotNil(t, settings.NotificationChannelID)
	assert.Equal(t, channelID, *settings.NotificationChannelID)

	// New transaction IDs continue after the persisted ones
	_, err = ledgerFor(uow).Credit(ctx, 1, 1, nil, "")
	require.NoError(t, err)
	history, err = ledgerFor(uow).TransactionHistory(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), history[0].ID)
}

func TestStore_Atomicity(t *testing.T) {
	t.Parallel()
	bus := events.NewBus()
	store, path := openTestStore(t, bus)
	ctx := context.Background()

	var delivered atomic.Int32
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) {
		delivered.Add(1)
	})

	inLedger(t, store, guildA, func(ledger interfaces.LedgerService) {
		_, err := ledger.Credit(ctx, 1, 70, nil, "")
		require.NoError(t, err)
	})
	bus.Wait()
	require.Equal(t, int32(1), delivered.Load())

	t.Run("rollback keeps the previous state", func(t *testing.T) {
		uow := store.CreateForGuild(guildA)
		require.NoError(t, uow.Begin(ctx))
		_, err := ledgerFor(uow).Credit(ctx, 1, 30, nil, "")
		require.NoError(t, err)
		require.NoError(t, uow.Rollback())

		inLedger(t, store, guildA, func(ledger interfaces.LedgerService) {
			balance, err := ledger.GetBalance(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, int64(70), balance)
		})
		bus.Wait()
		assert.Equal(t, int32(1), delivered.Load())
	})

	t.Run("failed write leaves the pre-call balance", func(t *testing.T) {
		// Replacing the data directory with a file makes every write fail
		dir := filepath.Dir(path)
		require.NoError(t, os.RemoveAll(dir))
		require.NoError(t, os.WriteFile(dir, []byte("not a directory"), 0o644))

		uow := store.CreateForGuild(guildA)
		require.NoError(t, uow.Begin(ctx))
		_, err := ledgerFor(uow).Credit(ctx, 1, 30, nil, "")
		require.NoError(t, err)

		err = uow.Commit()
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
		require.NoError(t, uow.Rollback())

		check := store.CreateForGuild(guildA)
		require.NoError(t, check.Begin(ctx))
		defer check.Rollback()

		balance, err := ledgerFor(check).GetBalance(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(70), balance)

		bus.Wait()
		assert.Equal(t, int32(1), delivered.Load())
	})
}

func TestStore_ConcurrentCredits(t *testing.T) {
	t.Parallel()
	store, _ := openTestStore(t, nil)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			uow := store.CreateForGuild(guildA)
			if err := uow.Begin(ctx); err != nil {
				t.Error(err)
				return
			}
			defer uow.Rollback()

			if _, err := ledgerFor(uow).Credit(ctx, 1, 5, nil, ""); err != nil {
				t.Error(err)
				return
			}
			if err := uow.Commit(); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	inLedger(t, store, guildA, func(ledger interfaces.LedgerService) {
		balance, err := ledger.GetBalance(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(workers*5), balance)
	})
}

func TestStore_BeginHonoursContext(t *testing.T) {
	t.Parallel()
	store, _ := openTestStore(t, nil)

	holder := store.CreateForGuild(guildA)
	require.NoError(t, holder.Begin(context.Background()))
	defer holder.Rollback()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := store.CreateForGuild(guildB).Begin(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestOpen_CorruptFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "points.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Open(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse data file")
}
