package events

import (
	"context"

	"github.com/uptrace/bun"

	"ms-nft-ticketing/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateEvent(ctx context.Context, event models.Event) error {
	_, err := d.Bun.NewInsert().Model(&event).Exec(ctx)
	return err
}

func (d *DB) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdateEvent writes organizer-editable columns only. tickets_sold is
// owned by the inventory ledger and never written here.
func (d *DB) UpdateEvent(ctx context.Context, event models.Event) error {
	_, err := d.Bun.NewUpdate().
		Model(&event).
		Column("title", "description", "date", "location", "image_url", "base_price", "total_tickets", "nfts_enabled", "updated_at").
		Where("id = ?", event.ID).
		Exec(ctx)
	return err
}

// PublishEvent flips is_published one way. Returns rows affected: 0
// means the event was missing or already published.
func (d *DB) PublishEvent(ctx context.Context, id string) (int64, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Event)(nil)).
		Set("is_published = ?", true).
		Where("id = ?", id).
		Where("is_published = ?", false).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (d *DB) ListPublishedEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Where("is_published = ?", true).
		Order("date").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (d *DB) ListEventsByCreator(ctx context.Context, creatorID string) ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Where("creator_id = ?", creatorID).
		Order("date").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}
