package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ms-nft-ticketing/internal/logger"
	"ms-nft-ticketing/internal/models"
	"ms-nft-ticketing/internal/monitoring"
	"ms-nft-ticketing/internal/tickets/qr"
)

var (
	ErrTicketNotFound = errors.New("ticket not found")
	ErrNotOwner       = errors.New("ticket is not owned by the acting user")
	ErrAlreadyUsed    = errors.New("ticket has already been used")
	ErrNotActive      = errors.New("ticket is not active")
)

type TicketDBLayer interface {
	CreateTicket(ctx context.Context, ticket models.Ticket) error
	GetTicketByID(ctx context.Context, ticketID string) (*models.Ticket, error)
	TransitionStatus(ctx context.Context, ticketID, from, to string, checkedInAt *time.Time) (int64, error)
	TransferOwner(ctx context.Context, ticketID, newOwnerID string) (int64, error)
	SetPaymentMeta(ctx context.Context, ticketID, meta string) (int64, error)
	GetTicketsByUser(ctx context.Context, userID string) ([]models.Ticket, error)
	GetTicketsByEvent(ctx context.Context, eventID string) ([]models.Ticket, error)
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
}

type InventoryLedger interface {
	ReserveOne(ctx context.Context, eventID string) error
	Release(ctx context.Context, eventID string) error
}

type ChangeFeed interface {
	PublishTicketPurchased(ticket models.Ticket) error
}

type TicketService struct {
	DB     TicketDBLayer
	Ledger InventoryLedger
	Feed   ChangeFeed
	QR     *qr.QRGenerator
	Logger *logger.Logger
}

func NewTicketService(db TicketDBLayer, ledger InventoryLedger, feed ChangeFeed, qrGen *qr.QRGenerator, log *logger.Logger) *TicketService {
	return &TicketService{DB: db, Ledger: ledger, Feed: feed, QR: qrGen, Logger: log}
}

// Purchase reserves one unit of the event's capacity and creates the
// ticket. The reservation is durable before the ticket insert runs; if
// the insert fails the slot is released again so the visible remaining
// count never drifts below reality.
func (s *TicketService) Purchase(ctx context.Context, eventID, buyerID, ticketType, paymentMeta string) (*models.Ticket, error) {
	event, err := s.DB.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("event %s not found: %w", eventID, err)
	}

	if err := s.Ledger.ReserveOne(ctx, eventID); err != nil {
		monitoring.TrackPurchase(eventID, "sold_out")
		return nil, err
	}

	ticket := models.Ticket{
		TicketID:      uuid.NewString(),
		EventID:       eventID,
		OwnerID:       buyerID,
		TicketType:    ticketType,
		PurchasePrice: event.BasePrice,
		PurchaseDate:  time.Now(),
		Status:        models.TicketActive,
		Metadata:      paymentMeta,
	}

	if s.QR != nil {
		qrBytes, err := s.QR.GenerateEncryptedQR(models.QRPayload{
			TicketID: ticket.TicketID,
			EventID:  eventID,
			OwnerID:  buyerID,
		})
		if err != nil {
			s.Logger.Warn("PURCHASE", fmt.Sprintf("Failed to generate QR for ticket %s: %v", ticket.TicketID, err))
		} else {
			ticket.QRCode = qrBytes
		}
	}

	if err := s.DB.CreateTicket(ctx, ticket); err != nil {
		// Compensate the reservation so the slot goes back on sale.
		if relErr := s.Ledger.Release(ctx, eventID); relErr != nil {
			s.Logger.Error("PURCHASE", fmt.Sprintf("Failed to release reservation for event %s: %v", eventID, relErr))
		}
		monitoring.TrackPurchase(eventID, "failed")
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	monitoring.TrackPurchase(eventID, "success")
	s.Logger.LogPurchase("CREATE", ticket.TicketID, fmt.Sprintf("Ticket sold for event %s to %s", eventID, buyerID))

	if s.Feed != nil {
		if err := s.Feed.PublishTicketPurchased(ticket); err != nil {
			s.Logger.Warn("KAFKA", fmt.Sprintf("Failed to publish ticket.purchased for %s: %v", ticket.TicketID, err))
		}
	}

	return &ticket, nil
}

// AttachPaymentMeta records the payment reference on a ticket created
// moments earlier. First write wins; a ticket never changes payments.
func (s *TicketService) AttachPaymentMeta(ctx context.Context, ticketID, meta string) error {
	rows, err := s.DB.SetPaymentMeta(ctx, ticketID, meta)
	if err != nil {
		return fmt.Errorf("failed to attach payment to ticket %s: %w", ticketID, err)
	}
	if rows == 0 {
		return fmt.Errorf("ticket %s already has a payment recorded", ticketID)
	}
	return nil
}

// CheckIn transitions a ticket from active to used. Re-invoking on an
// already-used ticket reports ErrAlreadyUsed rather than silently
// succeeding, so attendance is never double counted.
func (s *TicketService) CheckIn(ctx context.Context, ticketID, actingOwnerID string) (*models.Ticket, error) {
	ticket, err := s.DB.GetTicketByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, ticketID)
	}
	if ticket.OwnerID != actingOwnerID {
		return nil, fmt.Errorf("%w: ticket %s", ErrNotOwner, ticketID)
	}

	switch ticket.Status {
	case models.TicketActive:
		// fall through to the transition
	case models.TicketUsed:
		return nil, fmt.Errorf("%w: %s", ErrAlreadyUsed, ticketID)
	default:
		return nil, fmt.Errorf("%w: %s is %s", ErrNotActive, ticketID, ticket.Status)
	}

	now := time.Now()
	rows, err := s.DB.TransitionStatus(ctx, ticketID, models.TicketActive, models.TicketUsed, &now)
	if err != nil {
		return nil, fmt.Errorf("failed to check in ticket %s: %w", ticketID, err)
	}
	if rows == 0 {
		// Lost the race to a concurrent check-in.
		return nil, fmt.Errorf("%w: %s", ErrAlreadyUsed, ticketID)
	}

	ticket.Status = models.TicketUsed
	ticket.CheckedInAt = &now
	s.Logger.LogCheckIn(ticketID, "Ticket marked used")
	return ticket, nil
}

// Transfer reassigns an active ticket to a new owner.
func (s *TicketService) Transfer(ctx context.Context, ticketID, actingOwnerID, newOwnerID string) (*models.Ticket, error) {
	ticket, err := s.DB.GetTicketByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, ticketID)
	}
	if ticket.OwnerID != actingOwnerID {
		return nil, fmt.Errorf("%w: ticket %s", ErrNotOwner, ticketID)
	}
	if ticket.Status != models.TicketActive {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotActive, ticketID, ticket.Status)
	}

	rows, err := s.DB.TransferOwner(ctx, ticketID, newOwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to transfer ticket %s: %w", ticketID, err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotActive, ticketID)
	}

	ticket.OwnerID = newOwnerID
	ticket.Status = models.TicketTransferred
	s.Logger.LogPurchase("TRANSFER", ticketID, fmt.Sprintf("Ticket transferred to %s", newOwnerID))
	return ticket, nil
}

// Cancel voids an active ticket. The inventory slot is put back on sale.
func (s *TicketService) Cancel(ctx context.Context, ticketID, actingOwnerID string) error {
	ticket, err := s.DB.GetTicketByID(ctx, ticketID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrTicketNotFound, ticketID)
	}
	if ticket.OwnerID != actingOwnerID {
		return fmt.Errorf("%w: ticket %s", ErrNotOwner, ticketID)
	}
	if ticket.Status != models.TicketActive {
		return fmt.Errorf("%w: %s is %s", ErrNotActive, ticketID, ticket.Status)
	}

	rows, err := s.DB.TransitionStatus(ctx, ticketID, models.TicketActive, models.TicketCancelled, nil)
	if err != nil {
		return fmt.Errorf("failed to cancel ticket %s: %w", ticketID, err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrNotActive, ticketID)
	}

	if err := s.Ledger.Release(ctx, ticket.EventID); err != nil {
		s.Logger.Warn("PURCHASE", fmt.Sprintf("Failed to release capacity after cancelling %s: %v", ticketID, err))
	}
	return nil
}

func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*models.Ticket, error) {
	ticket, err := s.DB.GetTicketByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, ticketID)
	}
	return ticket, nil
}

func (s *TicketService) GetTicketsByUser(ctx context.Context, userID string) ([]models.Ticket, error) {
	tickets, err := s.DB.GetTicketsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets for user %s: %w", userID, err)
	}
	return tickets, nil
}

func (s *TicketService) GetTicketsByEvent(ctx context.Context, eventID string) ([]models.Ticket, error) {
	tickets, err := s.DB.GetTicketsByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets for event %s: %w", eventID, err)
	}
	return tickets, nil
}
