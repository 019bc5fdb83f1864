package inventory

import (
	"context"

	"github.com/uptrace/bun"

	"ms-nft-ticketing/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// ReserveOne claims one unit of the event's capacity with a single
// conditional UPDATE. The capacity check and the increment happen in one
// statement at the store level, so concurrent purchasers can never push
// tickets_sold past total_tickets. Returns the number of rows touched:
// 0 means the event is missing, unpublished or sold out.
func (d *DB) ReserveOne(ctx context.Context, eventID string) (int64, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Event)(nil)).
		Set("tickets_sold = tickets_sold + 1").
		Where("id = ?", eventID).
		Where("is_published = ?", true).
		Where("tickets_sold < total_tickets").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ReleaseOne is the compensating decrement for a reservation whose
// downstream ticket creation failed. Guarded so it can never drive the
// counter negative.
func (d *DB) ReleaseOne(ctx context.Context, eventID string) (int64, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Event)(nil)).
		Set("tickets_sold = tickets_sold - 1").
		Where("id = ?", eventID).
		Where("tickets_sold > 0").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (d *DB) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", eventID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &event, nil
}
