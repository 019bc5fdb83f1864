package event_api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-nft-ticketing/internal/auth"
	"ms-nft-ticketing/internal/events"
	"ms-nft-ticketing/internal/logger"
)

const maxImageBytes = 5 << 20

type Handler struct {
	EventService *events.EventService
	Logger       *logger.Logger
}

func NewHandler(service *events.EventService, log *logger.Logger) *Handler {
	return &Handler{EventService: service, Logger: log}
}

// RegisterPublicRoutes exposes the read-only event catalog. Full paths
// so the static routes coexist with the auth-wrapped /api group.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/api/events", h.ListEvents)
	r.Get("/api/events/{eventID}", h.GetEvent)
}

// RegisterRoutes registers the creator-facing routes. Callers are
// expected to wrap these in the auth middleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/events", func(r chi.Router) {
		r.Post("/", h.CreateEvent)
		r.Get("/mine", h.ListMyEvents)
		r.Put("/{eventID}", h.UpdateEvent)
		r.Post("/{eventID}/publish", h.PublishEvent)
		r.Post("/{eventID}/cover", h.UploadCover)
		r.Get("/{eventID}/suggested-price", h.SuggestedPrice)
	})
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req events.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	event, err := h.EventService.CreateEvent(r.Context(), userID, req)
	if err != nil {
		http.Error(w, "Failed to create event: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(event)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	event, err := h.EventService.GetEvent(r.Context(), eventID)
	if err != nil {
		http.Error(w, "Event not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(event)
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	list, err := h.EventService.ListPublished(r.Context())
	if err != nil {
		http.Error(w, "Failed to fetch events: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (h *Handler) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	list, err := h.EventService.ListByCreator(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to fetch events: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	userID := auth.UserID(r.Context())

	var req events.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	event, err := h.EventService.UpdateEvent(r.Context(), eventID, userID, req)
	if err != nil {
		writeEventError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(event)
}

func (h *Handler) PublishEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	userID := auth.UserID(r.Context())

	if err := h.EventService.Publish(r.Context(), eventID, userID); err != nil {
		writeEventError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Event published"))
}

func (h *Handler) UploadCover(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	userID := auth.UserID(r.Context())

	image, err := io.ReadAll(io.LimitReader(r.Body, maxImageBytes))
	if err != nil || len(image) == 0 {
		http.Error(w, "image body is required", http.StatusBadRequest)
		return
	}

	uri, err := h.EventService.UploadCoverImage(r.Context(), eventID, userID, image)
	if err != nil {
		writeEventError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"image_url": uri})
}

func (h *Handler) SuggestedPrice(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	price, err := h.EventService.SuggestPrice(r.Context(), eventID)
	if err != nil {
		writeEventError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"suggested_price": price.String()})
}

func writeEventError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, events.ErrEventNotFound):
		http.Error(w, "Event not found", http.StatusNotFound)
	case errors.Is(err, events.ErrNotCreator):
		http.Error(w, "Only the event creator can do that", http.StatusForbidden)
	case errors.Is(err, events.ErrAlreadyPublished):
		http.Error(w, "Event is already published", http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}
