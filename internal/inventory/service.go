package inventory

import (
	"context"
	"errors"
	"fmt"

	"ms-nft-ticketing/internal/models"
)

var (
	// ErrSoldOut is user-facing and non-retriable until the organizer
	// raises capacity.
	ErrSoldOut       = errors.New("event is sold out")
	ErrEventNotFound = errors.New("event not found")
	ErrNotPublished  = errors.New("event is not published")
)

type LedgerDBLayer interface {
	ReserveOne(ctx context.Context, eventID string) (int64, error)
	ReleaseOne(ctx context.Context, eventID string) (int64, error)
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
}

// Ledger tracks tickets sold against capacity per event. It is the only
// code path allowed to mutate tickets_sold.
type Ledger struct {
	DB LedgerDBLayer
}

func NewLedger(db LedgerDBLayer) *Ledger {
	return &Ledger{DB: db}
}

// ReserveOne durably increments tickets_sold before the caller may treat
// the purchase as underway. On failure it classifies the reason so the
// caller can surface SoldOut distinctly from a missing event.
func (l *Ledger) ReserveOne(ctx context.Context, eventID string) error {
	rows, err := l.DB.ReserveOne(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to reserve capacity for event %s: %w", eventID, err)
	}
	if rows > 0 {
		return nil
	}

	// The conditional update touched nothing; find out why.
	event, err := l.DB.GetEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	if !event.IsPublished {
		return fmt.Errorf("%w: %s", ErrNotPublished, eventID)
	}
	return fmt.Errorf("%w: %s", ErrSoldOut, eventID)
}

// Release returns a reserved slot after a downstream failure. Errors are
// returned but a failed release must not mask the original purchase
// error at the call site.
func (l *Ledger) Release(ctx context.Context, eventID string) error {
	rows, err := l.DB.ReleaseOne(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to release capacity for event %s: %w", eventID, err)
	}
	if rows == 0 {
		return fmt.Errorf("no reservation to release for event %s", eventID)
	}
	return nil
}
