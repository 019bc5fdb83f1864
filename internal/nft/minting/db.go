package minting

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"ms-nft-ticketing/internal/models"
)

type DB struct {
	Bun *bun.DB
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

func (d *DB) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("id = ?", userID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetPending moves a record (back) into pending. Minted records are
// never touched; the status only ever moves forward.
func (d *DB) SetPending(ctx context.Context, attendanceID string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.AttendanceRecord)(nil)).
		Set("nft_status = ?", models.NFTStatusPending).
		Where("id = ?", attendanceID).
		Where("(nft_status IS NULL OR nft_status <> ?)", models.NFTStatusMinted).
		Exec(ctx)
	return err
}

// SetMinted persists the terminal success state. Conditional on not
// already being minted so a late writer cannot reassign the address.
func (d *DB) SetMinted(ctx context.Context, attendanceID, mintAddress, metadataURI, chain string, mintedAt time.Time) (int64, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.AttendanceRecord)(nil)).
		Set("nft_status = ?", models.NFTStatusMinted).
		Set("nft_mint_address = ?", mintAddress).
		Set("nft_metadata_uri = ?", metadataURI).
		Set("nft_chain = ?", chain).
		Set("nft_minted_at = ?", mintedAt).
		Where("id = ?", attendanceID).
		Where("(nft_status IS NULL OR nft_status <> ?)", models.NFTStatusMinted).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetFailed marks the durable, inspectable failure state without
// clearing any previously written nft_* fields.
func (d *DB) SetFailed(ctx context.Context, attendanceID string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.AttendanceRecord)(nil)).
		Set("nft_status = ?", models.NFTStatusFailed).
		Where("id = ?", attendanceID).
		Where("(nft_status IS NULL OR nft_status <> ?)", models.NFTStatusMinted).
		Exec(ctx)
	return err
}

func (d *DB) ListByStatus(ctx context.Context, status string) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	err := d.Bun.NewSelect().
		Model(&records).
		Where("nft_status = ?", status).
		Order("checked_in_at").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}
