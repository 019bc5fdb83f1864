package models

import (
	"time"
)

type User struct {
	ID            string    `bun:"id,pk" json:"id"`
	Email         string    `bun:"email,unique,notnull" json:"email"`
	FullName      string    `bun:"full_name,notnull" json:"full_name"`
	WalletAddress string    `bun:"wallet_address,nullzero" json:"wallet_address,omitempty"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"created_at"`
}
