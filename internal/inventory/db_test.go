package inventory_test

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ms-nft-ticketing/internal/inventory"
	"ms-nft-ticketing/internal/models"
)

func setupTestDB(t *testing.T) *inventory.DB {
	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	if err := bunDB.ResetModel(context.Background(), (*models.Event)(nil)); err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}

	t.Cleanup(func() { bunDB.Close() })
	return &inventory.DB{Bun: bunDB}
}

func seedEvent(t *testing.T, db *inventory.DB, id string, capacity, sold int, published bool) {
	event := models.Event{
		ID:           id,
		Title:        "Test Event",
		Date:         time.Now().Add(72 * time.Hour),
		TotalTickets: capacity,
		TicketsSold:  sold,
		CreatorID:    "creator1",
		IsPublished:  published,
		CreatedAt:    time.Now(),
	}
	_, err := db.Bun.NewInsert().Model(&event).Exec(context.Background())
	require.NoError(t, err)
}

func TestReserveOneStopsAtCapacity(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedEvent(t, db, "event1", 3, 0, true)

	successes := 0
	for i := 0; i < 10; i++ {
		rows, err := db.ReserveOne(ctx, "event1")
		require.NoError(t, err)
		if rows > 0 {
			successes++
		}
	}

	assert.Equal(t, 3, successes, "exactly capacity reservations should succeed")

	event, err := db.GetEvent(ctx, "event1")
	require.NoError(t, err)
	assert.Equal(t, 3, event.TicketsSold)
	assert.True(t, event.SoldOut())
}

func TestReserveOneConcurrentOversell(t *testing.T) {
	db := setupTestDB(t)
	ledger := inventory.NewLedger(db)
	ctx := context.Background()

	seedEvent(t, db, "event1", 3, 0, true)

	const attempts = 10
	var wg sync.WaitGroup
	var successes int64
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch err := ledger.ReserveOne(ctx, "event1"); {
			case err == nil:
				atomic.AddInt64(&successes, 1)
			default:
				assert.ErrorIs(t, err, inventory.ErrSoldOut)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 3, successes, "exactly capacity reservations should win the race")

	event, err := db.GetEvent(ctx, "event1")
	require.NoError(t, err)
	assert.Equal(t, 3, event.TicketsSold)
}

func TestReserveOneUnpublishedEvent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedEvent(t, db, "event2", 10, 0, false)

	rows, err := db.ReserveOne(ctx, "event2")
	require.NoError(t, err)
	assert.Zero(t, rows)
}

func TestReleaseOneNeverGoesNegative(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedEvent(t, db, "event3", 5, 1, true)

	rows, err := db.ReleaseOne(ctx, "event3")
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	// Counter is already at zero; a second release must touch nothing.
	rows, err = db.ReleaseOne(ctx, "event3")
	require.NoError(t, err)
	assert.Zero(t, rows)

	event, err := db.GetEvent(ctx, "event3")
	require.NoError(t, err)
	assert.Equal(t, 0, event.TicketsSold)
}

func TestLedgerClassifiesFailures(t *testing.T) {
	db := setupTestDB(t)
	ledger := inventory.NewLedger(db)
	ctx := context.Background()

	seedEvent(t, db, "soldout", 1, 1, true)
	seedEvent(t, db, "draft", 10, 0, false)

	err := ledger.ReserveOne(ctx, "soldout")
	assert.ErrorIs(t, err, inventory.ErrSoldOut)

	err = ledger.ReserveOne(ctx, "draft")
	assert.ErrorIs(t, err, inventory.ErrNotPublished)

	err = ledger.ReserveOne(ctx, "missing")
	assert.ErrorIs(t, err, inventory.ErrEventNotFound)
}

func TestLedgerReserveAndRelease(t *testing.T) {
	db := setupTestDB(t)
	ledger := inventory.NewLedger(db)
	ctx := context.Background()

	seedEvent(t, db, "event4", 2, 0, true)

	require.NoError(t, ledger.ReserveOne(ctx, "event4"))
	require.NoError(t, ledger.ReserveOne(ctx, "event4"))
	assert.ErrorIs(t, ledger.ReserveOne(ctx, "event4"), inventory.ErrSoldOut)

	require.NoError(t, ledger.Release(ctx, "event4"))
	require.NoError(t, ledger.ReserveOne(ctx, "event4"))
}
