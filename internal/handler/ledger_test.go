package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/braseiro-pos/api/internal/auth"
	"github.com/braseiro-pos/api/internal/database"
	"github.com/google/uuid"
)

func cashierClaims(storeID uuid.UUID) *auth.Claims {
	return &auth.Claims{UserID: uuid.New(), StoreID: storeID, Role: "CASHIER"}
}

func managerClaims(storeID uuid.UUID) *auth.Claims {
	return &auth.Claims{UserID: uuid.New(), StoreID: storeID, Role: "MANAGER"}
}

func seedEntry(store *mockStore, sessionID uuid.UUID, entryType, amount, method string) database.LedgerEntry {
	e := database.LedgerEntry{
		ID:            uuid.New(),
		RegisterID:    sessionID,
		Type:          entryType,
		Amount:        makeNumeric(amount),
		Description:   "seeded entry",
		PaymentMethod: method,
		CreatedAt:     time.Now().UTC(),
	}
	store.entries[e.ID] = e
	return e
}

// --- Add entry tests ---

func TestAddEntry(t *testing.T) {
	store := newMockStore()
	storeID := uuid.New()
	session := seedOpenSession(store, storeID, "100.00")
	router := setupRegisterRouter(store, nil)

	rr := doAuthRequest(t, router, http.MethodPost,
		"/stores/"+storeID.String()+"/register/sessions/"+session.ID.String()+"/entries",
		map[string]string{"type": "EXPENSE", "amount": "12.50", "description": "gas refill", "payment_method": "CASH"},
		cashierClaims(storeID))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["type"] != "EXPENSE" {
		t.Errorf("expected type EXPENSE, got %v", resp["type"])
	}
	if resp["amount"] != "12.50" {
		t.Errorf("expected amount 12.50, got %v", resp["amount"])
	}
	if resp["session_id"] != session.ID.String() {
		t.Errorf("expected session_id %s, got %v", session.ID, resp["session_id"])
	}
}

func TestAddEntry_ClosedSession(t *testing.T) {
	store := newMockStore()
	storeID := uuid.New()
	session := seedOpenSession(store, storeID, "100.00")
	router := setupRegisterRouter(store, nil)
	claims := adminClaims(storeID)

	rr := doAuthRequest(t, router, http.MethodPost,
		"/stores/"+storeID.String()+"/register/sessions/"+session.ID.String()+"/close",
		map[string]string{"closing_amount": "100.00"}, claims)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 closing, got %d", rr.Code)
	}

	rr = doAuthRequest(t, router, http.MethodPost,
		"/stores/"+storeID.String()+"/register/sessions/"+session.ID.String()+"/entries",
		map[string]string{"type": "INCOME", "amount": "10.00", "description": "late", "payment_method": "CASH"},
		claims)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 adding to closed session, got %d", rr.Code)
	}
}

func TestAddEntry_Validation(t *testing.T) {
	store := newMockStore()
	storeID := uuid.New()
	session := seedOpenSession(store, storeID, "100.00")
	router := setupRegisterRouter(store, nil)
	claims := cashierClaims(storeID)
	path := "/stores/" + storeID.String() + "/register/sessions/" + session.ID.String() + "/entries"

	cases := []struct {
		name string
		body map[string]string
	}{
		{"bad type", map[string]string{"type": "TRANSFER", "amount": "10.00", "description": "x", "payment_method": "CASH"}},
		{"zero amount", map[string]string{"type": "INCOME", "amount": "0", "description": "x", "payment_method": "CASH"}},
		{"sub-cent amount", map[string]string{"type": "INCOME", "amount": "0.001", "description": "x", "payment_method": "CASH"}},
		{"missing amount", map[string]string{"type": "INCOME", "description": "x", "payment_method": "CASH"}},
		{"blank description", map[string]string{"type": "INCOME", "amount": "10.00", "description": "  ", "payment_method": "CASH"}},
		{"bad payment method", map[string]string{"type": "INCOME", "amount": "10.00", "description": "x", "payment_method": "BARTER"}},
	}
	for _, tc := range cases {
		rr := doAuthRequest(t, router, http.MethodPost, path, tc.body, claims)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.name, rr.Code)
		}
	}
}

func TestAddEntry_WrongStore(t *testing.T) {
	store := newMockStore()
	storeID := uuid.New()
	otherStore := uuid.New()
	session := seedOpenSession(store, storeID, "100.00")
	router := setupRegisterRouter(store, nil)

	rr := doAuthRequest(t, router, http.MethodPost,
		"/stores/"+otherStore.String()+"/register/sessions/"+session.ID.String()+"/entries",
		map[string]string{"type": "INCOME", "amount": "10.00", "description": "x", "payment_method": "CASH"},
		adminClaims(otherStore))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for cross-store entry, got %d", rr.Code)
	}
}

// --- List entries tests ---

func TestListEntries(t *testing.T) {
	store := newMockStore()
	storeID := uuid.New()
	session := seedOpenSession(store, storeID, "100.00")
	router := setupRegisterRouter(store, nil)
	claims := cashierClaims(storeID)
	path := "/stores/" + storeID.String() + "/register/sessions/" + session.ID.String() + "/entries"

	for _, desc := range []string{"first", "second"} {
		rr := doAuthRequest(t, router, http.MethodPost, path,
			map[string]string{"type": "INCOME", "amount": "10.00", "description": desc, "payment_method": "CASH"},
			claims)
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rr.Code)
		}
	}

	rr := doAuthRequest(t, router, http.MethodGet, path, nil, claims)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var entries []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&entries); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
}

// --- Update entry tests ---

func TestUpdateEntry_CashierPaymentMethod(t *testing.T) {
	store := newMockStore()
	storeID := uuid.New()
	session := seedOpenSession(store, storeID, "100.00")
	router := setupRegisterRouter(store, nil)
	claims := cashierClaims(storeID)

	rr := doAuthRequest(t, router, http.MethodPost,
		"/stores/"+storeID.String()+"/register/sessions/"+session.ID.String()+"/entries",
		map[string]string{"type": "INCOME", "amount": "30.00", "description": "refund", "payment_method": "CASH"},
		claims)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	entryID := decodeResponse(t, rr)["id"].(string)

	rr = doAuthRequest(t, router, http.MethodPatch,
		"/stores/"+storeID.String()+"/register/entries/"+entryID,
		map[string]string{"payment_method": "PIX"}, claims)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["payment_method"] != "PIX" {
		t.Errorf("expected payment_method PIX, got %v", resp["payment_method"])
	}
}

// A cashier patching amount gets the field silently ignored; only roles
// holding manage_cash_entries may rewrite it.
func TestUpdateEntry_CashierAmountIgnored(t *testing.T) {
	store := newMockStore()
	storeID := uuid.New()
	session := seedOpenSession(store, storeID, "100.00")
	router := setupRegisterRouter(store, nil)
	claims := cashierClaims(storeID)

	rr := doAuthRequest(t, router, http.MethodPost,
		"/stores/"+storeID.String()+"/register/sessions/"+session.ID.String()+"/entries",
		map[string]string{"type": "EXPENSE", "amount": "30.00", "description": "gas", "payment_method": "CASH"},
		claims)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	entryID := decodeResponse(t, rr)["id"].(string)

	rr = doAuthRequest(t, router, http.MethodPatch,
		"/stores/"+storeID.String()+"/register/entries/"+entryID,
		map[string]string{"amount": "999.00", "payment_method": "PIX"}, claims)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	resp := decodeResponse(t, rr)
	if resp["amount"] != "30.00" {
		t.Errorf("expected amount untouched at 30.00, got %v", resp["amount"])
	}
	if resp["payment_method"] != "PIX" {
		t.Errorf("expected payment_method PIX, got %v", resp["payment_method"])
	}
}

func TestUpdateEntry_AdminAmount(t *testing.T) {
	store := newMockStore()
	storeID := uuid.New()
	session := seedOpenSession(store, storeID, "100.00")
	router := setupRegisterRouter(store, nil)
	claims := adminClaims(storeID)

	rr := doAuthRequest(t, router, http.MethodPost,
		"/stores/"+storeID.String()+"/register/sessions/"+session.ID.String()+"/entries",
		map[string]string{"type": "EXPENSE", "amount": "30.00", "description": "gas", "payment_method": "CASH"},
		claims)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	entryID := decodeResponse(t, rr)["id"].(string)

	rr = doAuthRequest(t, router, http.MethodPatch,
		"/stores/"+storeID.String()+"/register/entries/"+entryID,
		map[string]string{"amount": "45.50", "description": "gas refill, corrected"}, claims)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	resp := decodeResponse(t, rr)
	if resp["amount"] != "45.50" {
		t.Errorf("expected amount 45.50, got %v", resp["amount"])
	}
	if resp["description"] != "gas refill, corrected" {
		t.Errorf("expected updated description, got %v", resp["description"])
	}
}

// An entry reached through another store's URL must look like a missing
// entry, even to a caller whose claims match that URL.
func TestUpdateEntry_WrongStore(t *testing.T) {
	store := newMockStore()
	storeA := uuid.New()
	storeB := uuid.New()
	sessionB := seedOpenSession(store, storeB, "100.00")
	entry := seedEntry(store, sessionB.ID, "INCOME", "30.00", "CASH")
	router := setupRegisterRouter(store, nil)

	rr := doAuthRequest(t, router, http.MethodPatch,
		"/stores/"+storeA.String()+"/register/entries/"+entry.ID.String(),
		map[string]string{"payment_method": "PIX"}, cashierClaims(storeA))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for cross-store update, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := store.entries[entry.ID].PaymentMethod; got != "CASH" {
		t.Errorf("expected entry untouched, payment_method changed to %q", got)
	}
}

func TestUpdateEntry_NotFound(t *testing.T) {
	store := newMockStore()
	storeID := uuid.New()
	router := setupRegisterRouter(store, nil)

	rr := doAuthRequest(t, router, http.MethodPatch,
		"/stores/"+storeID.String()+"/register/entries/"+uuid.New().String(),
		map[string]string{"payment_method": "PIX"}, adminClaims(storeID))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

// --- Delete entry tests ---

func TestDeleteEntry_CashierForbidden(t *testing.T) {
	store := newMockStore()
	storeID := uuid.New()
	session := seedOpenSession(store, storeID, "100.00")
	router := setupRegisterRouter(store, nil)

	rr := doAuthRequest(t, router, http.MethodPost,
		"/stores/"+storeID.String()+"/register/sessions/"+session.ID.String()+"/entries",
		map[string]string{"type": "INCOME", "amount": "10.00", "description": "x", "payment_method": "CASH"},
		cashierClaims(storeID))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	entryID := decodeResponse(t, rr)["id"].(string)

	rr = doAuthRequest(t, router, http.MethodDelete,
		"/stores/"+storeID.String()+"/register/entries/"+entryID, nil, cashierClaims(storeID))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for cashier delete, got %d", rr.Code)
	}
}

func TestDeleteEntry_WrongStore(t *testing.T) {
	store := newMockStore()
	storeA := uuid.New()
	storeB := uuid.New()
	sessionB := seedOpenSession(store, storeB, "100.00")
	entry := seedEntry(store, sessionB.ID, "EXPENSE", "15.00", "CASH")
	router := setupRegisterRouter(store, nil)

	rr := doAuthRequest(t, router, http.MethodDelete,
		"/stores/"+storeA.String()+"/register/entries/"+entry.ID.String(), nil, managerClaims(storeA))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for cross-store delete, got %d", rr.Code)
	}
	if _, ok := store.entries[entry.ID]; !ok {
		t.Error("expected entry to survive cross-store delete")
	}
}

func TestDeleteEntry_Manager(t *testing.T) {
	store := newMockStore()
	storeID := uuid.New()
	session := seedOpenSession(store, storeID, "100.00")
	router := setupRegisterRouter(store, nil)

	rr := doAuthRequest(t, router, http.MethodPost,
		"/stores/"+storeID.String()+"/register/sessions/"+session.ID.String()+"/entries",
		map[string]string{"type": "INCOME", "amount": "10.00", "description": "x", "payment_method": "CASH"},
		managerClaims(storeID))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	entryID := decodeResponse(t, rr)["id"].(string)

	rr = doAuthRequest(t, router, http.MethodDelete,
		"/stores/"+storeID.String()+"/register/entries/"+entryID, nil, managerClaims(storeID))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}

	rr = doAuthRequest(t, router, http.MethodDelete,
		"/stores/"+storeID.String()+"/register/entries/"+entryID, nil, managerClaims(storeID))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for repeat delete, got %d", rr.Code)
	}
}
