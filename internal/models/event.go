package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID           string    `bun:"id,pk" json:"id"`
	Title        string    `bun:"title,notnull" json:"title"`
	Description  string    `bun:"description" json:"description"`
	Date         time.Time `bun:"date,notnull" json:"date"`
	Location     string    `bun:"location" json:"location"`
	ImageURL     string    `bun:"image_url" json:"image_url"`
	BasePrice    float64   `bun:"base_price" json:"base_price"`
	TotalTickets int       `bun:"total_tickets,notnull" json:"total_tickets"`
	TicketsSold  int       `bun:"tickets_sold,notnull,default:0" json:"tickets_sold"`
	CreatorID    string    `bun:"creator_id,notnull" json:"creator_id"`
	NFTsEnabled  bool      `bun:"nfts_enabled" json:"nfts_enabled"`
	IsPublished  bool      `bun:"is_published" json:"is_published"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

// TicketsRemaining is derived, never stored.
func (e *Event) TicketsRemaining() int {
	return e.TotalTickets - e.TicketsSold
}

func (e *Event) SoldOut() bool {
	return e.TicketsSold >= e.TotalTickets
}
