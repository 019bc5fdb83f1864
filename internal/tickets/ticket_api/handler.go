package ticket_api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-nft-ticketing/internal/auth"
	"ms-nft-ticketing/internal/inventory"
	"ms-nft-ticketing/internal/logger"
	"ms-nft-ticketing/internal/payment"
	tickets "ms-nft-ticketing/internal/tickets/service"
)

type Handler struct {
	TicketService *tickets.TicketService
	Payments      *payment.StripeService
	Logger        *logger.Logger
}

type purchaseRequest struct {
	EventID       string `json:"event_id"`
	TicketType    string `json:"ticket_type"`
	PaymentMethod string `json:"payment_method"` // "card" or "wallet"
}

type transferRequest struct {
	NewOwnerID string `json:"new_owner_id"`
}

// PurchaseTicket reserves capacity and creates the ticket for the
// authenticated user.
func (h *Handler) PurchaseTicket(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.EventID == "" {
		http.Error(w, "event_id is required", http.StatusBadRequest)
		return
	}

	ticket, err := h.TicketService.Purchase(r.Context(), req.EventID, userID, req.TicketType, "")
	if err != nil {
		switch {
		case errors.Is(err, inventory.ErrSoldOut):
			http.Error(w, "Event is sold out", http.StatusConflict)
		case errors.Is(err, inventory.ErrEventNotFound), errors.Is(err, tickets.ErrTicketNotFound):
			http.Error(w, "Event not found", http.StatusNotFound)
		case errors.Is(err, inventory.ErrNotPublished):
			http.Error(w, "Event is not on sale", http.StatusConflict)
		default:
			http.Error(w, "Failed to purchase ticket: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	// Fiat purchases get a payment intent; its ID is recorded in the
	// ticket's payment metadata so the confirmation can be matched back.
	if req.PaymentMethod == "card" && h.Payments != nil {
		intent, err := h.Payments.CreatePaymentIntent(ticket.TicketID, ticket.PurchasePrice)
		if err != nil {
			h.Logger.Warn("PAYMENT", "Payment intent creation failed: "+err.Error())
		} else {
			if err := h.TicketService.AttachPaymentMeta(r.Context(), ticket.TicketID, intent.ID); err != nil {
				h.Logger.Warn("PAYMENT", "Failed to record payment on ticket "+ticket.TicketID+": "+err.Error())
			} else {
				ticket.Metadata = intent.ID
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"ticket":        ticket,
				"client_secret": intent.ClientSecret,
			})
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(ticket)
}

func (h *Handler) ViewTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")
	ticket, err := h.TicketService.GetTicket(r.Context(), ticketID)
	if err != nil {
		http.Error(w, "Ticket not found: "+err.Error(), http.StatusNotFound)
		return
	}

	if ticket.OwnerID != auth.UserID(r.Context()) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ticket)
}

// TicketQR serves the encrypted check-in QR as a PNG.
func (h *Handler) TicketQR(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")
	ticket, err := h.TicketService.GetTicket(r.Context(), ticketID)
	if err != nil {
		http.Error(w, "Ticket not found: "+err.Error(), http.StatusNotFound)
		return
	}

	if ticket.OwnerID != auth.UserID(r.Context()) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if len(ticket.QRCode) == 0 {
		http.Error(w, "ticket has no QR code", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(ticket.QRCode)
}

func (h *Handler) ListMyTickets(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	list, err := h.TicketService.GetTicketsByUser(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to fetch tickets: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (h *Handler) TransferTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")
	userID := auth.UserID(r.Context())

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.NewOwnerID == "" {
		http.Error(w, "new_owner_id is required", http.StatusBadRequest)
		return
	}

	ticket, err := h.TicketService.Transfer(r.Context(), ticketID, userID, req.NewOwnerID)
	if err != nil {
		writeTicketError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ticket)
}

func (h *Handler) CancelTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")
	userID := auth.UserID(r.Context())

	if err := h.TicketService.Cancel(r.Context(), ticketID, userID); err != nil {
		writeTicketError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeTicketError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tickets.ErrTicketNotFound):
		http.Error(w, "Ticket not found", http.StatusNotFound)
	case errors.Is(err, tickets.ErrNotOwner):
		http.Error(w, "Ticket is not owned by you", http.StatusForbidden)
	case errors.Is(err, tickets.ErrAlreadyUsed):
		http.Error(w, "Ticket has already been used", http.StatusConflict)
	case errors.Is(err, tickets.ErrNotActive):
		http.Error(w, "Ticket is not active", http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
