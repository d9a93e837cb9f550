package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/braseiro-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ReportsHandler handles register report endpoints.
type ReportsHandler struct {
	rollup *service.RollupService
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(rollup *service.RollupService) *ReportsHandler {
	return &ReportsHandler{rollup: rollup}
}

// RegisterRoutes registers store-scoped report endpoints.
// Expected to be mounted inside a store-scoped subrouter: /stores/{sid}/reports
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/register-rollup", h.RegisterRollup)
}

// --- Response types ---

type rollupResponse struct {
	StoreID     uuid.UUID  `json:"store_id"`
	PeriodStart time.Time  `json:"period_start"`
	PeriodEnd   time.Time  `json:"period_end"`
	OperatorID  *uuid.UUID `json:"operator_id,omitempty"`

	SessionCount int64 `json:"session_count"`

	OpeningTotal    string `json:"opening_total"`
	ClosingTotal    string `json:"closing_total"`
	ExpectedTotal   string `json:"expected_total"`
	DifferenceTotal string `json:"difference_total"`

	SalesTotal   string                           `json:"sales_total"`
	SalesCount   int64                            `json:"sales_count"`
	Channels     map[string]channelTotalsResponse `json:"channels"`
	IncomeTotal  string                           `json:"income_total"`
	ExpenseTotal string                           `json:"expense_total"`

	Degraded bool `json:"degraded"`
}

// --- Handlers ---

// RegisterRollup handles GET /stores/{sid}/reports/register-rollup.
// Query params: start_date, end_date (YYYY-MM-DD), optional operator_id.
func (h *ReportsHandler) RegisterRollup(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}

	start, end, err := parseDateRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	var operatorID *uuid.UUID
	if s := r.URL.Query().Get("operator_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid operator_id"})
			return
		}
		operatorID = &id
	}

	rollup, err := h.rollup.Report(r.Context(), storeID, start, end, operatorID)
	if err != nil {
		writeServiceError(w, err, "register rollup report")
		return
	}

	resp := rollupResponse{
		StoreID:         rollup.StoreID,
		PeriodStart:     rollup.PeriodStart,
		PeriodEnd:       rollup.PeriodEnd,
		OperatorID:      rollup.OperatorID,
		SessionCount:    rollup.SessionCount,
		OpeningTotal:    rollup.OpeningTotal.StringFixed(2),
		ClosingTotal:    rollup.ClosingTotal.StringFixed(2),
		ExpectedTotal:   rollup.ExpectedTotal.StringFixed(2),
		DifferenceTotal: rollup.DifferenceTotal.StringFixed(2),
		SalesTotal:      rollup.SalesTotal.StringFixed(2),
		SalesCount:      rollup.SalesCount,
		Channels:        make(map[string]channelTotalsResponse, len(rollup.Channels)),
		IncomeTotal:     rollup.IncomeTotal.StringFixed(2),
		ExpenseTotal:    rollup.ExpenseTotal.StringFixed(2),
		Degraded:        rollup.Degraded,
	}
	for name, totals := range rollup.Channels {
		resp.Channels[name] = channelTotalsResponse{
			Total:     totals.Total.StringFixed(2),
			CashTotal: totals.CashTotal.StringFixed(2),
			Count:     totals.Count,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

// parseDateRange reads start_date/end_date query params (YYYY-MM-DD) in the
// store's local timezone. end_date is inclusive on the wire and made
// exclusive here by advancing one day. Defaults to the last 30 days.
func parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	const layout = "2006-01-02"

	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		loc = time.FixedZone("BRT", -3*3600)
	}

	now := time.Now().In(loc)

	startDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -30)
	endDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)

	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date format: %w", err)
		}
		startDate = t
	}

	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date format: %w", err)
		}
		endDate = t.AddDate(0, 0, 1)
	}

	if startDate.After(endDate) || startDate.Equal(endDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date must be before end_date")
	}

	return startDate, endDate, nil
}
