package events_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ms-nft-ticketing/internal/events"
	"ms-nft-ticketing/internal/models"
)

func setupTestDB(t *testing.T) *events.DB {
	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	err = bunDB.ResetModel(context.Background(), (*models.Event)(nil))
	if err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}

	t.Cleanup(func() { bunDB.Close() })
	return &events.DB{Bun: bunDB}
}

func testEvent(id string) models.Event {
	return models.Event{
		ID:           id,
		Title:        "Summer Fest",
		Date:         time.Now().Add(48 * time.Hour),
		Location:     "Main Arena",
		BasePrice:    50,
		TotalTickets: 100,
		CreatorID:    "creator1",
		CreatedAt:    time.Now(),
	}
}

func TestPublishEventIsOneWay(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, d.CreateEvent(ctx, testEvent("event1")))

	rows, err := d.PublishEvent(ctx, "event1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	// Second publish is a no-op.
	rows, err = d.PublishEvent(ctx, "event1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	rows, err = d.PublishEvent(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
}

func TestUpdateEventNeverTouchesTicketsSold(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	event := testEvent("event1")
	event.TicketsSold = 40
	require.NoError(t, d.CreateEvent(ctx, event))

	updated := event
	updated.Title = "Summer Fest (Extended)"
	updated.TotalTickets = 200
	updated.TicketsSold = 0 // stale caller value must be ignored
	updated.UpdatedAt = time.Now()
	require.NoError(t, d.UpdateEvent(ctx, updated))

	got, err := d.GetEventByID(ctx, "event1")
	require.NoError(t, err)
	assert.Equal(t, "Summer Fest (Extended)", got.Title)
	assert.Equal(t, 200, got.TotalTickets)
	assert.Equal(t, 40, got.TicketsSold)
}

func TestListPublishedEvents(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	later := testEvent("event1")
	later.Date = time.Now().Add(72 * time.Hour)
	require.NoError(t, d.CreateEvent(ctx, later))
	require.NoError(t, d.CreateEvent(ctx, testEvent("event2")))
	require.NoError(t, d.CreateEvent(ctx, testEvent("event3")))

	_, err := d.PublishEvent(ctx, "event1")
	require.NoError(t, err)
	_, err = d.PublishEvent(ctx, "event2")
	require.NoError(t, err)

	published, err := d.ListPublishedEvents(ctx)
	require.NoError(t, err)
	require.Len(t, published, 2)
	// Soonest first.
	assert.Equal(t, "event2", published[0].ID)
	assert.Equal(t, "event1", published[1].ID)
}

func TestListEventsByCreator(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	mine := testEvent("event1")
	other := testEvent("event2")
	other.CreatorID = "creator2"
	require.NoError(t, d.CreateEvent(ctx, mine))
	require.NoError(t, d.CreateEvent(ctx, other))

	got, err := d.ListEventsByCreator(ctx, "creator1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "event1", got[0].ID)
}
