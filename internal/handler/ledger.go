package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/braseiro-pos/api/internal/database"
	"github.com/braseiro-pos/api/internal/middleware"
	"github.com/braseiro-pos/api/internal/service"
	"github.com/braseiro-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerHandler handles manual cash movement endpoints.
type LedgerHandler struct {
	sessions *service.RegisterService
	ledger   *service.LedgerService
	hub      *ws.Hub
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(sessions *service.RegisterService, ledger *service.LedgerService, hub *ws.Hub) *LedgerHandler {
	return &LedgerHandler{sessions: sessions, ledger: ledger, hub: hub}
}

// RegisterRoutes registers ledger endpoints on the given Chi router.
// Expected to be mounted at /stores/{sid}/register
func (h *LedgerHandler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions/{id}/entries", h.Add)
	r.Get("/sessions/{id}/entries", h.List)
	r.Patch("/entries/{id}", h.Update)
	r.Delete("/entries/{id}", h.Delete)
}

// --- Request / Response types ---

type addEntryRequest struct {
	Type          string `json:"type"`
	Amount        string `json:"amount"`
	Description   string `json:"description"`
	PaymentMethod string `json:"payment_method"`
}

type updateEntryRequest struct {
	Type          *string `json:"type"`
	Amount        *string `json:"amount"`
	Description   *string `json:"description"`
	PaymentMethod *string `json:"payment_method"`
}

type entryResponse struct {
	ID            uuid.UUID `json:"id"`
	SessionID     uuid.UUID `json:"session_id"`
	Type          string    `json:"type"`
	Amount        string    `json:"amount"`
	Description   string    `json:"description"`
	PaymentMethod string    `json:"payment_method"`
	CreatedAt     time.Time `json:"created_at"`
}

// --- Handlers ---

// Add handles POST /stores/{sid}/register/sessions/{id}/entries.
func (h *LedgerHandler) Add(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}

	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return
	}

	var req addEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Amount == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount is required"})
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid amount"})
		return
	}

	if !h.sessionBelongsToStore(w, r, sessionID, storeID) {
		return
	}

	entry, err := h.ledger.AddEntry(r.Context(), sessionID, req.Type, amount, req.Description, req.PaymentMethod)
	if err != nil {
		writeServiceError(w, err, "add ledger entry")
		return
	}

	resp := toEntryResponse(entry)
	h.hub.BroadcastToStore(storeID, ws.NewEvent("entry.created", resp))
	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /stores/{sid}/register/sessions/{id}/entries.
func (h *LedgerHandler) List(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}

	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return
	}

	if !h.sessionBelongsToStore(w, r, sessionID, storeID) {
		return
	}

	entries, err := h.ledger.ListEntries(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err, "list ledger entries")
		return
	}

	resp := make([]entryResponse, len(entries))
	for i, e := range entries {
		resp[i] = toEntryResponse(e)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Update handles PATCH /stores/{sid}/register/entries/{id}.
// The actor's role decides which fields the patch may change.
func (h *LedgerHandler) Update(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}

	entryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid entry ID"})
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	if !h.entryBelongsToStore(w, r, entryID, storeID) {
		return
	}

	var req updateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	patch := service.EntryPatch{
		Type:          req.Type,
		Description:   req.Description,
		PaymentMethod: req.PaymentMethod,
	}
	if req.Amount != nil {
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid amount"})
			return
		}
		patch.Amount = &amount
	}

	entry, err := h.ledger.UpdateEntry(r.Context(), entryID, patch, claims.Role)
	if err != nil {
		writeServiceError(w, err, "update ledger entry")
		return
	}

	writeJSON(w, http.StatusOK, toEntryResponse(entry))
}

// Delete handles DELETE /stores/{sid}/register/entries/{id}.
func (h *LedgerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}

	entryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid entry ID"})
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	if !h.entryBelongsToStore(w, r, entryID, storeID) {
		return
	}

	if err := h.ledger.DeleteEntry(r.Context(), entryID, claims.Role); err != nil {
		writeServiceError(w, err, "delete ledger entry")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

// sessionBelongsToStore resolves the session and rejects cross-store access.
// Writes the error response itself and reports whether to continue.
func (h *LedgerHandler) sessionBelongsToStore(w http.ResponseWriter, r *http.Request, sessionID, storeID uuid.UUID) bool {
	session, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err, "get register session")
		return false
	}
	if session.StoreID != storeID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "register session not found"})
		return false
	}
	return true
}

// entryBelongsToStore resolves the entry's parent session and rejects
// cross-store access with a 404, so entries of other stores are
// indistinguishable from missing ones.
func (h *LedgerHandler) entryBelongsToStore(w http.ResponseWriter, r *http.Request, entryID, storeID uuid.UUID) bool {
	entry, err := h.ledger.GetEntry(r.Context(), entryID)
	if err != nil {
		writeServiceError(w, err, "get ledger entry")
		return false
	}
	session, err := h.sessions.Get(r.Context(), entry.RegisterID)
	if err != nil {
		writeServiceError(w, err, "get register session")
		return false
	}
	if session.StoreID != storeID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "ledger entry not found"})
		return false
	}
	return true
}

func toEntryResponse(e database.LedgerEntry) entryResponse {
	return entryResponse{
		ID:            e.ID,
		SessionID:     e.RegisterID,
		Type:          e.Type,
		Amount:        numericToString(e.Amount),
		Description:   e.Description,
		PaymentMethod: e.PaymentMethod,
		CreatedAt:     e.CreatedAt,
	}
}
