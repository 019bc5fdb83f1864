package models

import (
	"time"

	"github.com/uptrace/bun"
)

// NFT status moves forward only: "" -> pending -> minted | failed.
// A failed record may re-enter pending on retry.
const (
	NFTStatusNone    = ""
	NFTStatusPending = "pending"
	NFTStatusMinted  = "minted"
	NFTStatusFailed  = "failed"
)

// AttendanceRecord is durable proof that an attendee checked in to an
// event. The minting pipeline is the only writer of the nft_* columns.
type AttendanceRecord struct {
	bun.BaseModel `bun:"table:attendance_records"`

	ID              string     `bun:"id,pk" json:"id"`
	TicketID        string     `bun:"ticket_id,notnull,unique" json:"ticket_id"`
	EventID         string     `bun:"event_id,notnull" json:"event_id"`
	AttendeeID      string     `bun:"attendee_id,notnull" json:"attendee_id"`
	CheckedInAt     time.Time  `bun:"checked_in_at,notnull" json:"checked_in_at"`
	CheckInLocation string     `bun:"check_in_location" json:"check_in_location"`
	NFTStatus       string     `bun:"nft_status,nullzero" json:"nft_status,omitempty"`
	NFTMintAddress  string     `bun:"nft_mint_address,nullzero" json:"nft_mint_address,omitempty"`
	NFTChain        string     `bun:"nft_chain,nullzero" json:"nft_chain,omitempty"`
	NFTMetadataURI  string     `bun:"nft_metadata_uri,nullzero" json:"nft_metadata_uri,omitempty"`
	NFTMintedAt     *time.Time `bun:"nft_minted_at,nullzero" json:"nft_minted_at,omitempty"`
}
