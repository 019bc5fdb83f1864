package checkin

import (
	"context"

	"github.com/uptrace/bun"

	"ms-nft-ticketing/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateAttendance(ctx context.Context, record models.AttendanceRecord) error {
	_, err := d.Bun.NewInsert().Model(&record).Exec(ctx)
	return err
}

func (d *DB) GetAttendanceByID(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	err := d.Bun.NewSelect().
		Model(&record).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (d *DB) GetAttendanceByTicket(ctx context.Context, ticketID string) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	err := d.Bun.NewSelect().
		Model(&record).
		Where("ticket_id = ?", ticketID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (d *DB) ListAttendanceByAttendee(ctx context.Context, attendeeID string) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	err := d.Bun.NewSelect().
		Model(&records).
		Where("attendee_id = ?", attendeeID).
		Order("checked_in_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
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
