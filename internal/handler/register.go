package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/braseiro-pos/api/internal/database"
	"github.com/braseiro-pos/api/internal/middleware"
	"github.com/braseiro-pos/api/internal/service"
	"github.com/braseiro-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// RegisterHandler handles register session endpoints.
type RegisterHandler struct {
	sessions *service.RegisterService
	calc     service.SessionSummarizer
	hub      *ws.Hub
}

// NewRegisterHandler creates a new RegisterHandler.
func NewRegisterHandler(sessions *service.RegisterService, calc service.SessionSummarizer, hub *ws.Hub) *RegisterHandler {
	return &RegisterHandler{sessions: sessions, calc: calc, hub: hub}
}

// RegisterRoutes registers session endpoints on the given Chi router.
// Expected to be mounted at /stores/{sid}/register
func (h *RegisterHandler) RegisterRoutes(r chi.Router) {
	r.Post("/open", h.Open)
	r.Get("/current", h.Current)
	r.Post("/sessions/{id}/close", h.Close)
	r.Get("/sessions/{id}/summary", h.Summary)
}

// --- Request / Response types ---

type openRegisterRequest struct {
	OpeningAmount string `json:"opening_amount"`
}

type closeRegisterRequest struct {
	ClosingAmount string `json:"closing_amount"`
	Notes         string `json:"notes"`
}

type sessionResponse struct {
	ID            uuid.UUID  `json:"id"`
	StoreID       uuid.UUID  `json:"store_id"`
	OperatorID    *uuid.UUID `json:"operator_id"`
	OpeningAmount string     `json:"opening_amount"`
	OpenedAt      time.Time  `json:"opened_at"`
	ClosingAmount *string    `json:"closing_amount"`
	ClosedAt      *time.Time `json:"closed_at"`
	Difference    *string    `json:"difference"`
	Notes         *string    `json:"notes"`
}

type channelTotalsResponse struct {
	Total     string `json:"total"`
	CashTotal string `json:"cash_total"`
	Count     int64  `json:"count"`
}

type summaryResponse struct {
	SessionID        uuid.UUID                        `json:"session_id"`
	WindowStart      time.Time                        `json:"window_start"`
	WindowEnd        time.Time                        `json:"window_end"`
	OpeningAmount    string                           `json:"opening_amount"`
	Channels         map[string]channelTotalsResponse `json:"channels"`
	SalesTotal       string                           `json:"sales_total"`
	SalesCount       int64                            `json:"sales_count"`
	OtherIncomeTotal string                           `json:"other_income_total"`
	CashIncomeTotal  string                           `json:"cash_income_total"`
	ExpenseTotal     string                           `json:"expense_total"`
	CashExpenseTotal string                           `json:"cash_expense_total"`
	ExpectedBalance  string                           `json:"expected_balance"`
	Difference       *string                          `json:"difference"`
	Degraded         bool                             `json:"degraded"`
	FailedChannels   []string                         `json:"failed_channels,omitempty"`
}

type closeRegisterResponse struct {
	Session sessionResponse `json:"session"`
	Summary summaryResponse `json:"summary"`
}

// --- Handlers ---

// Open handles POST /stores/{sid}/register/open.
func (h *RegisterHandler) Open(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req openRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.OpeningAmount == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "opening_amount is required"})
		return
	}
	openingAmount, err := decimal.NewFromString(req.OpeningAmount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid opening_amount"})
		return
	}

	session, err := h.sessions.Open(r.Context(), storeID, claims.UserID, openingAmount)
	if err != nil {
		writeServiceError(w, err, "open register")
		return
	}

	resp := toSessionResponse(session)
	h.hub.BroadcastToStore(storeID, ws.NewEvent("register.opened", resp))
	writeJSON(w, http.StatusCreated, resp)
}

// Current handles GET /stores/{sid}/register/current.
// Responds 200 with the open session, or 204 when the drawer is closed.
func (h *RegisterHandler) Current(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}

	session, open, err := h.sessions.Current(r.Context(), storeID)
	if err != nil {
		writeServiceError(w, err, "get current register")
		return
	}
	if !open {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

// Close handles POST /stores/{sid}/register/sessions/{id}/close.
func (h *RegisterHandler) Close(w http.ResponseWriter, r *http.Request) {
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

	var req closeRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.ClosingAmount == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "closing_amount is required"})
		return
	}
	closingAmount, err := decimal.NewFromString(req.ClosingAmount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid closing_amount"})
		return
	}

	// Scope the session to the store in the URL before mutating it.
	session, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err, "get register session")
		return
	}
	if session.StoreID != storeID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "register session not found"})
		return
	}

	closed, summary, err := h.sessions.Close(r.Context(), sessionID, closingAmount, req.Notes)
	if err != nil {
		writeServiceError(w, err, "close register")
		return
	}

	resp := closeRegisterResponse{
		Session: toSessionResponse(closed),
		Summary: toSummaryResponse(summary),
	}
	h.hub.BroadcastToStore(storeID, ws.NewEvent("register.closed", resp.Session))
	writeJSON(w, http.StatusOK, resp)
}

// Summary handles GET /stores/{sid}/register/sessions/{id}/summary.
// Works for open and closed sessions; an open session's window runs to now.
func (h *RegisterHandler) Summary(w http.ResponseWriter, r *http.Request) {
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

	session, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err, "get register session")
		return
	}
	if session.StoreID != storeID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "register session not found"})
		return
	}

	summary, err := h.calc.Summarize(r.Context(), session)
	if err != nil {
		writeServiceError(w, err, "summarize register session")
		return
	}

	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

// --- Helpers ---

func toSessionResponse(s database.RegisterSession) sessionResponse {
	resp := sessionResponse{
		ID:            s.ID,
		StoreID:       s.StoreID,
		OpeningAmount: numericToString(s.OpeningAmount),
		OpenedAt:      s.OpenedAt,
	}
	if s.OperatorID.Valid {
		id := uuid.UUID(s.OperatorID.Bytes)
		resp.OperatorID = &id
	}
	if s.ClosedAt.Valid {
		t := s.ClosedAt.Time
		resp.ClosedAt = &t
		amount := numericToString(s.ClosingAmount)
		resp.ClosingAmount = &amount
		diff := numericToString(s.Difference)
		resp.Difference = &diff
	}
	if s.Notes.Valid {
		notes := s.Notes.String
		resp.Notes = &notes
	}
	return resp
}

func toSummaryResponse(s service.Summary) summaryResponse {
	resp := summaryResponse{
		SessionID:        s.SessionID,
		WindowStart:      s.WindowStart,
		WindowEnd:        s.WindowEnd,
		OpeningAmount:    s.OpeningAmount.StringFixed(2),
		Channels:         make(map[string]channelTotalsResponse, len(s.Channels)),
		SalesTotal:       s.SalesTotal.StringFixed(2),
		SalesCount:       s.SalesCount,
		OtherIncomeTotal: s.OtherIncomeTotal.StringFixed(2),
		CashIncomeTotal:  s.CashIncomeTotal.StringFixed(2),
		ExpenseTotal:     s.ExpenseTotal.StringFixed(2),
		CashExpenseTotal: s.CashExpenseTotal.StringFixed(2),
		ExpectedBalance:  s.ExpectedBalance.StringFixed(2),
		Degraded:         s.Degraded,
		FailedChannels:   s.FailedChannels,
	}
	for name, totals := range s.Channels {
		resp.Channels[name] = channelTotalsResponse{
			Total:     totals.Total.StringFixed(2),
			CashTotal: totals.CashTotal.StringFixed(2),
			Count:     totals.Count,
		}
	}
	if s.Difference != nil {
		diff := s.Difference.StringFixed(2)
		resp.Difference = &diff
	}
	return resp
}

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}

// writeServiceError maps register core errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrEmptyDescription),
		errors.Is(err, service.ErrInvalidEntryType),
		errors.Is(err, service.ErrInvalidPaymentMethod):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrPermissionDenied):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrEntryNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrRegisterAlreadyOpen),
		errors.Is(err, service.ErrRegisterNotOpen),
		errors.Is(err, service.ErrSessionNotOpen):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
