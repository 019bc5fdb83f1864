package checkin_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ms-nft-ticketing/internal/auth"
	"ms-nft-ticketing/internal/checkin"
	"ms-nft-ticketing/internal/logger"
	"ms-nft-ticketing/internal/sse"
	"ms-nft-ticketing/internal/tickets/qr"
	tickets "ms-nft-ticketing/internal/tickets/service"
)

type Handler struct {
	Coordinator *checkin.Coordinator
	QRGenerator *qr.QRGenerator
	Emitter     *sse.AttendanceEventEmitter
	Logger      *logger.Logger
}

type checkInRequest struct {
	TicketID    string `json:"ticket_id"`
	EncryptedQR string `json:"encrypted_qr"`
	Location    string `json:"location"`
}

// CheckIn accepts either a plain ticket ID or a scanned encrypted QR.
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	ticketID := req.TicketID
	if ticketID == "" && req.EncryptedQR != "" {
		payload, err := h.QRGenerator.DecryptQRData(req.EncryptedQR)
		if err != nil {
			http.Error(w, "Invalid QR code: "+err.Error(), http.StatusBadRequest)
			return
		}
		ticketID = payload.TicketID
	}
	if ticketID == "" {
		http.Error(w, "ticket_id or encrypted_qr is required", http.StatusBadRequest)
		return
	}

	record, err := h.Coordinator.CheckIn(r.Context(), ticketID, userID, req.Location)
	if err != nil {
		switch {
		case errors.Is(err, tickets.ErrTicketNotFound):
			http.Error(w, "Ticket not found", http.StatusNotFound)
		case errors.Is(err, tickets.ErrNotOwner):
			http.Error(w, "Ticket is not owned by you", http.StatusForbidden)
		case errors.Is(err, tickets.ErrAlreadyUsed):
			http.Error(w, "Ticket has already been checked in", http.StatusConflict)
		case errors.Is(err, tickets.ErrNotActive):
			http.Error(w, "Ticket is not active", http.StatusConflict)
		default:
			http.Error(w, "Check-in failed: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(record)
}

// ListMyAttendance returns the caller's attendance records. Proof of
// attendance is shown even when the NFT never minted.
func (h *Handler) ListMyAttendance(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	records, err := h.Coordinator.ListAttendanceByAttendee(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to fetch attendance: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// StreamMyAttendance pushes mint status updates over SSE.
func (h *Handler) StreamMyAttendance(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	updates := h.Emitter.SubscribeToAttendee(r.Context(), userID)
	flusher.Flush()

	for record := range updates {
		data, err := json.Marshal(record)
		if err != nil {
			h.Logger.Warn("SSE", "Failed to marshal attendance update: "+err.Error())
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
}
