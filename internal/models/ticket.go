package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Ticket status state machine: active is the only state with outgoing
// transitions (used, transferred, cancelled are terminal).
const (
	TicketActive      = "active"
	TicketUsed        = "used"
	TicketCancelled   = "cancelled"
	TicketTransferred = "transferred"
)

type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	TicketID      string     `bun:"ticket_id,pk" json:"ticket_id"`
	EventID       string     `bun:"event_id,notnull" json:"event_id"`
	OwnerID       string     `bun:"owner_id,notnull" json:"owner_id"`
	TicketType    string     `bun:"ticket_type" json:"ticket_type"`
	PurchasePrice float64    `bun:"purchase_price" json:"purchase_price"`
	PurchaseDate  time.Time  `bun:"purchase_date,notnull" json:"purchase_date"`
	Status        string     `bun:"status,notnull" json:"status"`
	CheckedInAt   *time.Time `bun:"checked_in_at,nullzero" json:"checked_in_at,omitempty"`
	MintAddress   string     `bun:"mint_address,nullzero" json:"mint_address,omitempty"`
	QRCode        []byte     `bun:"qr_code" json:"-"`
	Metadata      string     `bun:"metadata,nullzero" json:"metadata,omitempty"`
}

// QRPayload is what gets AES-encrypted into the check-in QR code.
type QRPayload struct {
	TicketID string `json:"ticket_id"`
	EventID  string `json:"event_id"`
	OwnerID  string `json:"owner_id"`
}
