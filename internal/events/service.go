package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ms-nft-ticketing/internal/logger"
	"ms-nft-ticketing/internal/models"
	"ms-nft-ticketing/internal/pricing"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrNotCreator       = errors.New("action requires the event creator")
	ErrAlreadyPublished = errors.New("event is already published")
)

type EventDBLayer interface {
	CreateEvent(ctx context.Context, event models.Event) error
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	UpdateEvent(ctx context.Context, event models.Event) error
	PublishEvent(ctx context.Context, id string) (int64, error)
	ListPublishedEvents(ctx context.Context) ([]models.Event, error)
	ListEventsByCreator(ctx context.Context, creatorID string) ([]models.Event, error)
}

type ImageStore interface {
	Upload(ctx context.Context, data []byte) (string, error)
}

type ChangeFeed interface {
	PublishEventUpdated(event models.Event) error
}

type EventService struct {
	DB     EventDBLayer
	Images ImageStore
	Feed   ChangeFeed
	Logger *logger.Logger
}

func NewEventService(db EventDBLayer, images ImageStore, feed ChangeFeed, log *logger.Logger) *EventService {
	return &EventService{DB: db, Images: images, Feed: feed, Logger: log}
}

type CreateEventRequest struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Date         time.Time `json:"date"`
	Location     string    `json:"location"`
	BasePrice    float64   `json:"base_price"`
	TotalTickets int       `json:"total_tickets"`
	NFTsEnabled  bool      `json:"nfts_enabled"`
}

func (s *EventService) CreateEvent(ctx context.Context, creatorID string, req CreateEventRequest) (*models.Event, error) {
	if req.Title == "" {
		return nil, errors.New("event title is required")
	}
	if req.TotalTickets <= 0 {
		return nil, errors.New("total tickets must be positive")
	}

	event := models.Event{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Description:  req.Description,
		Date:         req.Date,
		Location:     req.Location,
		BasePrice:    req.BasePrice,
		TotalTickets: req.TotalTickets,
		CreatorID:    creatorID,
		NFTsEnabled:  req.NFTsEnabled,
		CreatedAt:    time.Now(),
	}

	if err := s.DB.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.Logger.Info("EVENT", fmt.Sprintf("Event %s created by %s", event.ID, creatorID))
	return &event, nil
}

func (s *EventService) UpdateEvent(ctx context.Context, eventID, actingUserID string, req CreateEventRequest) (*models.Event, error) {
	event, err := s.DB.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	if event.CreatorID != actingUserID {
		return nil, fmt.Errorf("%w: event %s", ErrNotCreator, eventID)
	}

	// Capacity may grow but never shrink below what is already sold.
	if req.TotalTickets < event.TicketsSold {
		return nil, fmt.Errorf("total tickets %d below tickets already sold %d", req.TotalTickets, event.TicketsSold)
	}

	event.Title = req.Title
	event.Description = req.Description
	event.Date = req.Date
	event.Location = req.Location
	event.BasePrice = req.BasePrice
	event.TotalTickets = req.TotalTickets
	event.NFTsEnabled = req.NFTsEnabled
	event.UpdatedAt = time.Now()

	if err := s.DB.UpdateEvent(ctx, *event); err != nil {
		return nil, fmt.Errorf("failed to update event %s: %w", eventID, err)
	}

	if s.Feed != nil {
		if err := s.Feed.PublishEventUpdated(*event); err != nil {
			s.Logger.Warn("KAFKA", fmt.Sprintf("Failed to publish event.updated for %s: %v", eventID, err))
		}
	}
	return event, nil
}

// Publish flips the event live. One-way: there is no unpublish.
func (s *EventService) Publish(ctx context.Context, eventID, actingUserID string) error {
	event, err := s.DB.GetEventByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	if event.CreatorID != actingUserID {
		return fmt.Errorf("%w: event %s", ErrNotCreator, eventID)
	}

	rows, err := s.DB.PublishEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", eventID, err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrAlreadyPublished, eventID)
	}

	event.IsPublished = true
	if s.Feed != nil {
		if err := s.Feed.PublishEventUpdated(*event); err != nil {
			s.Logger.Warn("KAFKA", fmt.Sprintf("Failed to publish event.updated for %s: %v", eventID, err))
		}
	}
	s.Logger.Info("EVENT", fmt.Sprintf("Event %s published", eventID))
	return nil
}

// UploadCoverImage stores the image and records its URI on the event.
func (s *EventService) UploadCoverImage(ctx context.Context, eventID, actingUserID string, image []byte) (string, error) {
	event, err := s.DB.GetEventByID(ctx, eventID)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	if event.CreatorID != actingUserID {
		return "", fmt.Errorf("%w: event %s", ErrNotCreator, eventID)
	}

	uri, err := s.Images.Upload(ctx, image)
	if err != nil {
		return "", fmt.Errorf("failed to upload cover image: %w", err)
	}

	event.ImageURL = uri
	event.UpdatedAt = time.Now()
	if err := s.DB.UpdateEvent(ctx, *event); err != nil {
		return "", fmt.Errorf("failed to save cover image for %s: %w", eventID, err)
	}
	return uri, nil
}

func (s *EventService) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	event, err := s.DB.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	return event, nil
}

func (s *EventService) ListPublished(ctx context.Context) ([]models.Event, error) {
	return s.DB.ListPublishedEvents(ctx)
}

func (s *EventService) ListByCreator(ctx context.Context, creatorID string) ([]models.Event, error) {
	return s.DB.ListEventsByCreator(ctx, creatorID)
}

// SuggestPrice surfaces the pricing advisor for the organizer UI.
func (s *EventService) SuggestPrice(ctx context.Context, eventID string) (decimal.Decimal, error) {
	event, err := s.DB.GetEventByID(ctx, eventID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	return pricing.SuggestPrice(event, time.Now()), nil
}
