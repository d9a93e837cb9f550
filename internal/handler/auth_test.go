package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/braseiro-pos/api/internal/auth"
	"github.com/braseiro-pos/api/internal/database"
	"github.com/braseiro-pos/api/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

type mockAuthStore struct {
	users map[uuid.UUID]database.User
}

func (m *mockAuthStore) GetUserByEmail(_ context.Context, email string) (database.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return database.User{}, pgx.ErrNoRows
}

func (m *mockAuthStore) GetUserByID(_ context.Context, id uuid.UUID) (database.User, error) {
	u, ok := m.users[id]
	if !ok {
		return database.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func setupAuthRouter(t *testing.T) (*chi.Mux, database.User) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := database.User{
		ID:             uuid.New(),
		StoreID:        uuid.New(),
		Email:          "caixa@braseiropos.com.br",
		HashedPassword: string(hashed),
		FullName:       "Cashier One",
		Role:           "CASHIER",
	}
	store := &mockAuthStore{users: map[uuid.UUID]database.User{user.ID: user}}

	r := chi.NewRouter()
	handler.NewAuthHandler(store, testJWTSecret).RegisterRoutes(r)
	return r, user
}

// doRequest sends an unauthenticated JSON request.
func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestLogin(t *testing.T) {
	router, user := setupAuthRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/auth/login",
		map[string]string{"email": user.Email, "password": "correct-horse"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["access_token"] == "" || resp["access_token"] == nil {
		t.Error("expected access_token in response")
	}
	if resp["refresh_token"] == "" || resp["refresh_token"] == nil {
		t.Error("expected refresh_token in response")
	}

	userResp := resp["user"].(map[string]interface{})
	if userResp["email"] != user.Email {
		t.Errorf("expected email %s, got %v", user.Email, userResp["email"])
	}
	if userResp["store_id"] != user.StoreID.String() {
		t.Errorf("expected store_id %s, got %v", user.StoreID, userResp["store_id"])
	}

	// The access token must validate and carry the user's claims.
	claims, err := auth.ValidateToken(testJWTSecret, resp["access_token"].(string))
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}
	if claims.UserID != user.ID || claims.StoreID != user.StoreID || claims.Role != "CASHIER" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	router, user := setupAuthRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/auth/login",
		map[string]string{"email": user.Email, "password": "wrong"})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	router, _ := setupAuthRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/auth/login",
		map[string]string{"email": "nobody@braseiropos.com.br", "password": "correct-horse"})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	router, user := setupAuthRouter(t)

	cases := []map[string]string{
		{"email": user.Email},
		{"password": "correct-horse"},
		{},
	}
	for _, body := range cases {
		rr := doRequest(t, router, http.MethodPost, "/auth/login", body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("body %v: expected 400, got %d", body, rr.Code)
		}
	}
}

func TestRefresh(t *testing.T) {
	router, user := setupAuthRouter(t)

	refreshToken, err := auth.GenerateRefreshToken(testJWTSecret, user.ID)
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	rr := doRequest(t, router, http.MethodPost, "/auth/refresh",
		map[string]string{"refresh_token": refreshToken})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["access_token"] == "" || resp["access_token"] == nil {
		t.Error("expected a fresh access_token")
	}
}

func TestRefresh_InvalidToken(t *testing.T) {
	router, _ := setupAuthRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/auth/refresh",
		map[string]string{"refresh_token": "not.a.jwt"})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestRefresh_UnknownUser(t *testing.T) {
	router, _ := setupAuthRouter(t)

	refreshToken, err := auth.GenerateRefreshToken(testJWTSecret, uuid.New())
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	rr := doRequest(t, router, http.MethodPost, "/auth/refresh",
		map[string]string{"refresh_token": refreshToken})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}
