package checkin

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"ms-nft-ticketing/internal/logger"
	"ms-nft-ticketing/internal/models"
	"ms-nft-ticketing/internal/monitoring"
)

type AttendanceDBLayer interface {
	CreateAttendance(ctx context.Context, record models.AttendanceRecord) error
	GetAttendanceByID(ctx context.Context, id string) (*models.AttendanceRecord, error)
	GetAttendanceByTicket(ctx context.Context, ticketID string) (*models.AttendanceRecord, error)
	ListAttendanceByAttendee(ctx context.Context, attendeeID string) ([]models.AttendanceRecord, error)
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
}

type TicketChecker interface {
	CheckIn(ctx context.Context, ticketID, actingOwnerID string) (*models.Ticket, error)
}

type ChangeFeed interface {
	PublishTicketCheckedIn(record models.AttendanceRecord) error
}

// MintTrigger is how the coordinator hands a fresh attendance record to
// the minting pipeline without blocking the check-in response.
type MintTrigger interface {
	TriggerMint(attendanceID string)
}

type AttendanceEmitter interface {
	EmitAttendance(record models.AttendanceRecord)
}

// Coordinator validates a check-in, applies the ticket transition and
// produces the durable AttendanceRecord.
type Coordinator struct {
	DB      AttendanceDBLayer
	Tickets TicketChecker
	Feed    ChangeFeed
	Minter  MintTrigger
	Emitter AttendanceEmitter
	Logger  *logger.Logger
}

func NewCoordinator(db AttendanceDBLayer, tickets TicketChecker, feed ChangeFeed, minter MintTrigger, emitter AttendanceEmitter, log *logger.Logger) *Coordinator {
	return &Coordinator{DB: db, Tickets: tickets, Feed: feed, Minter: minter, Emitter: emitter, Logger: log}
}

// CheckIn runs the ticket transition first, then inserts the attendance
// record. The two steps are not atomic; the ticket goes first so a crash
// between them leaves a re-derivable gap instead of an attendance record
// pointing at a still-active ticket.
func (c *Coordinator) CheckIn(ctx context.Context, ticketID, actingUserID, location string) (*models.AttendanceRecord, error) {
	ticket, err := c.Tickets.CheckIn(ctx, ticketID, actingUserID)
	if err != nil {
		monitoring.TrackCheckIn("unknown", "rejected")
		return nil, err
	}

	event, err := c.DB.GetEvent(ctx, ticket.EventID)
	if err != nil {
		return nil, fmt.Errorf("event %s not found: %w", ticket.EventID, err)
	}

	record := models.AttendanceRecord{
		ID:              uuid.NewString(),
		TicketID:        ticket.TicketID,
		EventID:         ticket.EventID,
		AttendeeID:      ticket.OwnerID,
		CheckedInAt:     *ticket.CheckedInAt,
		CheckInLocation: location,
	}
	if event.NFTsEnabled {
		record.NFTStatus = models.NFTStatusPending
	}

	if err := c.DB.CreateAttendance(ctx, record); err != nil {
		// The ticket is already used; this record can be re-derived from
		// the ticket row, but flag it loudly.
		c.Logger.Error("CHECKIN", fmt.Sprintf("Ticket %s is used but attendance insert failed: %v", ticketID, err))
		monitoring.TrackCheckIn(ticket.EventID, "failed")
		return nil, fmt.Errorf("failed to record attendance for ticket %s: %w", ticketID, err)
	}

	monitoring.TrackCheckIn(ticket.EventID, "success")
	c.Logger.LogCheckIn(ticketID, fmt.Sprintf("Attendance %s recorded for %s", record.ID, ticket.OwnerID))

	if c.Feed != nil {
		if err := c.Feed.PublishTicketCheckedIn(record); err != nil {
			c.Logger.Warn("KAFKA", fmt.Sprintf("Failed to publish ticket.checkedin for %s: %v", record.ID, err))
		}
	}
	if c.Emitter != nil {
		c.Emitter.EmitAttendance(record)
	}

	// Minting is triggered only after the attendance record is durable,
	// so a minting failure never loses attendance proof.
	if record.NFTStatus == models.NFTStatusPending && c.Minter != nil {
		c.Minter.TriggerMint(record.ID)
	}

	return &record, nil
}

func (c *Coordinator) GetAttendance(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	record, err := c.DB.GetAttendanceByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("attendance record %s not found: %w", id, err)
	}
	return record, nil
}

func (c *Coordinator) ListAttendanceByAttendee(ctx context.Context, attendeeID string) ([]models.AttendanceRecord, error) {
	records, err := c.DB.ListAttendanceByAttendee(ctx, attendeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attendance for %s: %w", attendeeID, err)
	}
	return records, nil
}
