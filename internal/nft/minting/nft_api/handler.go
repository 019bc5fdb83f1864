package nft_api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-nft-ticketing/internal/auth"
	"ms-nft-ticketing/internal/checkin"
	"ms-nft-ticketing/internal/logger"
	"ms-nft-ticketing/internal/marketplace"
	"ms-nft-ticketing/internal/nft/minting"
)

type Handler struct {
	MintService *minting.Service
	Coordinator *checkin.Coordinator
	Logger      *logger.Logger
}

type mintRequest struct {
	Chain string `json:"chain,omitempty"`
}

type mintResponse struct {
	MintAddress    string `json:"mint_address"`
	TxHash         string `json:"tx_hash,omitempty"`
	Chain          string `json:"chain"`
	MarketplaceURL string `json:"marketplace_url,omitempty"`
}

// MintForAttendance triggers a synchronous mint (or retry) for the
// caller's attendance record.
func (h *Handler) MintForAttendance(w http.ResponseWriter, r *http.Request) {
	attendanceID := chi.URLParam(r, "attendanceID")
	userID := auth.UserID(r.Context())

	record, err := h.Coordinator.GetAttendance(r.Context(), attendanceID)
	if err != nil {
		http.Error(w, "Attendance record not found", http.StatusNotFound)
		return
	}
	if record.AttendeeID != userID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var req mintRequest
	if r.Body != nil {
		// Chain is optional; an empty body means infer from the wallet.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Chain != "" && !minting.ValidChain(req.Chain) {
		http.Error(w, "unsupported chain: "+req.Chain, http.StatusBadRequest)
		return
	}

	result, err := h.MintService.MintForAttendance(r.Context(), attendanceID, req.Chain)
	if err != nil {
		var mintErr *minting.MintError
		switch {
		case errors.Is(err, minting.ErrAttendanceNotFound):
			http.Error(w, "Attendance record not found", http.StatusNotFound)
		case errors.Is(err, minting.ErrNotEligible):
			http.Error(w, "Event does not have NFT minting enabled", http.StatusConflict)
		case errors.Is(err, minting.ErrMintInProgress):
			http.Error(w, "A mint is already in progress", http.StatusConflict)
		case errors.As(err, &mintErr):
			http.Error(w, "Mint failed: "+mintErr.Error(), http.StatusBadGateway)
		default:
			http.Error(w, "Mint failed: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(mintResponse{
		MintAddress:    result.MintAddress,
		TxHash:         result.TxHash,
		Chain:          result.Chain,
		MarketplaceURL: marketplace.OpenSeaURL(result.MintAddress, result.Chain),
	})
}

// GetAttendance returns one attendance record with its marketplace link.
func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	attendanceID := chi.URLParam(r, "attendanceID")
	userID := auth.UserID(r.Context())

	record, err := h.Coordinator.GetAttendance(r.Context(), attendanceID)
	if err != nil {
		http.Error(w, "Attendance record not found", http.StatusNotFound)
		return
	}
	if record.AttendeeID != userID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	resp := map[string]interface{}{
		"attendance": record,
	}
	if record.NFTMintAddress != "" {
		chain := record.NFTChain
		if chain == "" {
			chain = minting.DetectChain(record.NFTMintAddress)
		}
		resp["marketplace_url"] = marketplace.OpenSeaURL(record.NFTMintAddress, chain)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// ReconcileOrphans sweeps failed records whose chain mint actually
// succeeded. Operator endpoint.
func (h *Handler) ReconcileOrphans(w http.ResponseWriter, r *http.Request) {
	recovered, err := h.MintService.ReconcileOrphans(r.Context())
	if err != nil {
		http.Error(w, "Reconcile failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"recovered": recovered})
}
