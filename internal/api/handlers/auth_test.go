package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domainauth "github.com/matiasleandrokruk/groundedgrowth/internal/domain/auth"
	pkgauth "github.com/matiasleandrokruk/groundedgrowth/pkg/auth"
)

const testSecret = "test-secret-key-32-chars-min!!!"

func newAuthHandler(t *testing.T) (*AuthHandler, *pkgauth.TokenManager) {
	t.Helper()
	tokens, err := pkgauth.NewTokenManager(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	return NewAuthHandler(domainauth.NewService(mustOpenDB(t), tokens, nil)), tokens
}

func register(t *testing.T, h *AuthHandler, email string) AuthResponse {
	t.Helper()
	rr := httptest.NewRecorder()
	h.Register(rr, newRequest(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Email: email, Password: "SecurePass123", Name: "Alice",
	}, nil))
	if rr.Code != http.StatusCreated {
		t.Fatalf("Register status = %d; body: %s", rr.Code, rr.Body.String())
	}
	return decodeBody[AuthResponse](t, rr)
}

func TestAuthHandler_Register_Success(t *testing.T) {
	t.Parallel()

	h, tokens := newAuthHandler(t)
	resp := register(t, h, "alice@example.com")

	if resp.User.ID == "" || resp.User.Email != "alice@example.com" || resp.User.Name != "Alice" {
		t.Errorf("unexpected user %+v", resp.User)
	}
	claims, err := tokens.Parse(resp.Token)
	if err != nil || claims.UserID != resp.User.ID {
		t.Errorf("token invalid: claims=%+v err=%v", claims, err)
	}
}

func TestAuthHandler_Register_Errors(t *testing.T) {
	t.Parallel()

	h, _ := newAuthHandler(t)
	register(t, h, "dup@example.com")

	tests := []struct {
		name     string
		body     any
		wantCode int
		wantMsg  string
	}{
		{"duplicate", RegisterRequest{Email: "dup@example.com", Password: "SecurePass123", Name: "Dup"}, http.StatusConflict, "El email ya está registrado"},
		{"missing fields", RegisterRequest{Email: "x@example.com"}, http.StatusBadRequest, "Email, contraseña y nombre son requeridos"},
		{"bad email", RegisterRequest{Email: "nope", Password: "SecurePass123", Name: "Ann"}, http.StatusBadRequest, "Email inválido"},
		{"bad json", "not an object", http.StatusBadRequest, "invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.Register(rr, newRequest(t, http.MethodPost, "/api/auth/register", "", tt.body, nil))
			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d; want %d. body: %s", rr.Code, tt.wantCode, rr.Body.String())
			}
			if got := decodeBody[errorBody](t, rr); got.Error != tt.wantMsg {
				t.Errorf("error = %q; want %q", got.Error, tt.wantMsg)
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	t.Parallel()

	h, _ := newAuthHandler(t)
	reg := register(t, h, "bob@example.com")

	rr := httptest.NewRecorder()
	h.Login(rr, newRequest(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "bob@example.com", Password: "SecurePass123"}, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("Login status = %d; body: %s", rr.Code, rr.Body.String())
	}
	if resp := decodeBody[AuthResponse](t, rr); resp.User.ID != reg.User.ID || resp.Token == "" {
		t.Errorf("unexpected login response %+v", resp)
	}

	rr = httptest.NewRecorder()
	h.Login(rr, newRequest(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "bob@example.com", Password: "WrongPass123"}, nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d; want 401", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Login(rr, newRequest(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "bob@example.com"}, nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing password status = %d; want 400", rr.Code)
	}
}

func TestAuthHandler_ProfileAndVerify(t *testing.T) {
	t.Parallel()

	h, _ := newAuthHandler(t)
	reg := register(t, h, "carol@example.com")

	rr := httptest.NewRecorder()
	h.Profile(rr, newRequest(t, http.MethodGet, "/api/auth/profile", reg.User.ID, nil, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("Profile status = %d", rr.Code)
	}
	if u := decodeBody[domainauth.User](t, rr); u.Email != "carol@example.com" {
		t.Errorf("Profile user = %+v", u)
	}

	rr = httptest.NewRecorder()
	h.Verify(rr, newRequest(t, http.MethodPost, "/api/auth/verify", reg.User.ID, nil, nil))
	if v := decodeBody[VerifyResponse](t, rr); !v.Valid || v.User == nil || v.User.ID != reg.User.ID {
		t.Errorf("Verify = %+v", v)
	}

	rr = httptest.NewRecorder()
	h.Verify(rr, newRequest(t, http.MethodGet, "/api/auth/verify", "deleted-user", nil, nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("unknown user status = %d; want 401", rr.Code)
	}
}
