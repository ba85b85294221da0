package handlers

import (
	"context"
	"errors"
	"net/http"

	domainauth "github.com/matiasleandrokruk/groundedgrowth/internal/domain/auth"
)

// AuthService is the subset of domainauth.Service the handlers use.
type AuthService interface {
	Register(ctx context.Context, input domainauth.RegisterInput) (*domainauth.Result, error)
	Login(ctx context.Context, input domainauth.LoginInput) (*domainauth.Result, error)
	GetUser(ctx context.Context, id string) (*domainauth.User, error)
}

// AuthHandler serves registration, login and the session endpoints.
type AuthHandler struct {
	authService AuthService
}

func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string          `json:"token"`
	User  domainauth.User `json:"user"`
}

// VerifyResponse is returned by the verify endpoint.
type VerifyResponse struct {
	Valid bool             `json:"valid"`
	User  *domainauth.User `json:"user"`
}

// Register handles POST /api/auth/register.
//
// Response codes:
//   - 201 Created: registration successful
//   - 400 Bad Request: invalid JSON or invalid fields
//   - 409 Conflict: email already registered
//   - 500 Internal Server Error: unexpected failure
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.authService.Register(r.Context(), domainauth.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if errors.Is(err, domainauth.ErrEmailAlreadyExists) {
		writeError(w, http.StatusConflict, "El email ya está registrado")
		return
	}
	if err != nil {
		writeDomainError(w, err, nil, "", "Error al registrar usuario")
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{Token: result.Token, User: result.User})
}

// Login handles POST /api/auth/login.
//
// Response codes:
//   - 200 OK: login successful
//   - 400 Bad Request: invalid JSON or missing fields
//   - 401 Unauthorized: invalid credentials (same message whether or not the email exists)
//   - 500 Internal Server Error: unexpected failure
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.authService.Login(r.Context(), domainauth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if errors.Is(err, domainauth.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "Credenciales inválidas")
		return
	}
	if err != nil {
		writeDomainError(w, err, nil, "", "Error al iniciar sesión")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Token: result.Token, User: result.User})
}

// Profile handles GET /api/auth/profile.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Verify handles GET and POST /api/auth/verify. Reaching it means the
// token already passed the auth middleware.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, VerifyResponse{Valid: true, User: user})
}

// currentUser loads the authenticated user; a deleted account reads as an
// invalid token.
func (h *AuthHandler) currentUser(w http.ResponseWriter, r *http.Request) (*domainauth.User, bool) {
	userID, ok := requireUser(w, r)
	if !ok {
		return nil, false
	}
	user, err := h.authService.GetUser(r.Context(), userID)
	if errors.Is(err, domainauth.ErrUserNotFound) {
		writeError(w, http.StatusUnauthorized, "Token inválido")
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error interno del servidor")
		return nil, false
	}
	return user, true
}
