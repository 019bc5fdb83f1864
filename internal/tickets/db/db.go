package db

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"ms-nft-ticketing/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateTicket(ctx context.Context, ticket models.Ticket) error {
	_, err := d.Bun.NewInsert().Model(&ticket).Exec(ctx)
	return err
}

func (d *DB) GetTicketByID(ctx context.Context, id string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := d.Bun.NewSelect().
		Model(&ticket).
		Where("ticket_id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// TransitionStatus flips a ticket's status with a conditional update so
// two concurrent callers cannot both win the same transition. Returns
// the rows affected: 0 means the ticket was not in the expected state.
func (d *DB) TransitionStatus(ctx context.Context, ticketID, from, to string, checkedInAt *time.Time) (int64, error) {
	q := d.Bun.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("status = ?", to).
		Where("ticket_id = ?", ticketID).
		Where("status = ?", from)
	if checkedInAt != nil {
		q = q.Set("checked_in_at = ?", *checkedInAt)
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// TransferOwner reassigns ownership as part of the active -> transferred
// transition, again conditional on the current state.
func (d *DB) TransferOwner(ctx context.Context, ticketID, newOwnerID string) (int64, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("owner_id = ?", newOwnerID).
		Set("status = ?", models.TicketTransferred).
		Where("ticket_id = ?", ticketID).
		Where("status = ?", models.TicketActive).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetPaymentMeta attaches the payment reference once the intent exists.
// The guard keeps an already-recorded payment from being overwritten.
func (d *DB) SetPaymentMeta(ctx context.Context, ticketID, meta string) (int64, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("metadata = ?", meta).
		Where("ticket_id = ?", ticketID).
		Where("metadata IS NULL").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetMintAddress records the minted token on the ticket. The guard keeps
// an already-set address immutable.
func (d *DB) SetMintAddress(ctx context.Context, ticketID, mintAddress string) (int64, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("mint_address = ?", mintAddress).
		Where("ticket_id = ?", ticketID).
		Where("mint_address IS NULL").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (d *DB) GetTicketsByUser(ctx context.Context, userID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("owner_id = ?", userID).
		Order("purchase_date DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (d *DB) GetTicketsByEvent(ctx context.Context, eventID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("event_id = ?", eventID).
		Order("purchase_date").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
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
