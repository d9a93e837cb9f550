package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/braseiro-pos/api/internal/auth"
	"github.com/braseiro-pos/api/internal/middleware"
	"github.com/google/uuid"
)

const testSecret = "test-secret"

func TestAuthMiddleware_ValidToken(t *testing.T) {
	userID := uuid.New()
	storeID := uuid.New()
	token, _ := auth.GenerateToken(testSecret, userID, storeID, "CASHIER")

	handler := middleware.Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			t.Fatal("expected claims in context")
		}
		if claims.UserID != userID {
			t.Errorf("user ID: got %v, want %v", claims.UserID, userID)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	handler := middleware.Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	handler := middleware.Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestRequireStore_MatchingStore(t *testing.T) {
	storeID := uuid.New()
	token, _ := auth.GenerateToken(testSecret, uuid.New(), storeID, "CASHIER")

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := middleware.Authenticate(testSecret)(middleware.RequireStore(inner))

	req := httptest.NewRequest("GET", "/stores/"+storeID.String()+"/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.SetPathValue("sid", storeID.String())
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestRequireStore_MismatchedStore(t *testing.T) {
	storeID := uuid.New()
	otherStoreID := uuid.New()
	token, _ := auth.GenerateToken(testSecret, uuid.New(), storeID, "CASHIER")

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})

	handler := middleware.Authenticate(testSecret)(middleware.RequireStore(inner))

	req := httptest.NewRequest("GET", "/stores/"+otherStoreID.String()+"/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.SetPathValue("sid", otherStoreID.String())
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestRequireStore_AdminBypassesCheck(t *testing.T) {
	storeID := uuid.New()
	otherStoreID := uuid.New()
	token, _ := auth.GenerateToken(testSecret, uuid.New(), storeID, "ADMIN")

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := middleware.Authenticate(testSecret)(middleware.RequireStore(inner))

	req := httptest.NewRequest("GET", "/stores/"+otherStoreID.String()+"/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.SetPathValue("sid", otherStoreID.String())
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d (ADMIN should bypass store check)", rr.Code, http.StatusOK)
	}
}

func TestRequireRole(t *testing.T) {
	token, _ := auth.GenerateToken(testSecret, uuid.New(), uuid.New(), "CASHIER")

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// CASHIER trying to reach an ADMIN/MANAGER endpoint
	handler := middleware.Authenticate(testSecret)(middleware.RequireRole("ADMIN", "MANAGER")(inner))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusForbidden)
	}
}
