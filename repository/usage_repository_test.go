package repository

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/KYEONGBINKEUM/todo-sub001/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database per test. SQLite allows
// one writer, so the pool is capped at a single connection; the
// atomicity under test lives in the upsert statement, not the pool.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.UsageRecord{}, &models.UserSettings{}))
	return db
}

func TestUsageRepository_GetMonthlyUsage(t *testing.T) {
	repo := NewUsageRepository(newTestDB(t))

	t.Run("returns zero-valued record when nothing was recorded", func(t *testing.T) {
		usage, err := repo.GetMonthlyUsage("user-fresh")
		require.NoError(t, err)
		assert.Equal(t, "user-fresh", usage.UserID)
		assert.Equal(t, models.MonthKey(time.Now()), usage.MonthKey)
		assert.Zero(t, usage.InputTokens)
		assert.Zero(t, usage.OutputTokens)
		assert.Zero(t, usage.RequestCount)
	})

	t.Run("read is idempotent", func(t *testing.T) {
		require.NoError(t, repo.IncrementUsage("user-idem", 120, 340))

		first, err := repo.GetMonthlyUsage("user-idem")
		require.NoError(t, err)
		second, err := repo.GetMonthlyUsage("user-idem")
		require.NoError(t, err)

		assert.Equal(t, first.InputTokens, second.InputTokens)
		assert.Equal(t, first.OutputTokens, second.OutputTokens)
		assert.Equal(t, first.RequestCount, second.RequestCount)
	})

	t.Run("rejects empty user ID", func(t *testing.T) {
		_, err := repo.GetMonthlyUsage("")
		assert.Error(t, err)
	})
}

func TestUsageRepository_IncrementUsage(t *testing.T) {
	repo := NewUsageRepository(newTestDB(t))

	t.Run("creates the record on first increment", func(t *testing.T) {
		require.NoError(t, repo.IncrementUsage("user-a", 100, 50))

		usage, err := repo.GetMonthlyUsage("user-a")
		require.NoError(t, err)
		assert.Equal(t, int64(100), usage.InputTokens)
		assert.Equal(t, int64(50), usage.OutputTokens)
		assert.Equal(t, int64(1), usage.RequestCount)
		assert.False(t, usage.LastRequestAt.IsZero())
	})

	t.Run("accumulates across increments", func(t *testing.T) {
		require.NoError(t, repo.IncrementUsage("user-b", 10, 20))
		require.NoError(t, repo.IncrementUsage("user-b", 30, 40))

		usage, err := repo.GetMonthlyUsage("user-b")
		require.NoError(t, err)
		assert.Equal(t, int64(40), usage.InputTokens)
		assert.Equal(t, int64(60), usage.OutputTokens)
		assert.Equal(t, int64(2), usage.RequestCount)
		assert.Equal(t, int64(100), usage.TotalTokens())
	})

	t.Run("rejects negative token counts", func(t *testing.T) {
		assert.Error(t, repo.IncrementUsage("user-c", -1, 0))
		assert.Error(t, repo.IncrementUsage("user-c", 0, -1))
	})
}

// Concurrent increments must accumulate exactly: no interleaving of N
// writers may drop an update, and the request count must equal N.
func TestUsageRepository_ConcurrentIncrements(t *testing.T) {
	repo := NewUsageRepository(newTestDB(t))

	const workers = 25
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs <- repo.IncrementUsage("user-conc", int64(n+1), int64(2*(n+1)))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// Sum of 1..N and 2*(1..N).
	expectedInput := int64(workers * (workers + 1) / 2)

	usage, err := repo.GetMonthlyUsage("user-conc")
	require.NoError(t, err)
	assert.Equal(t, expectedInput, usage.InputTokens)
	assert.Equal(t, 2*expectedInput, usage.OutputTokens)
	assert.Equal(t, int64(workers), usage.RequestCount)
}
