package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/kislikjeka/walletclient/internal/platform/user"
	"github.com/kislikjeka/walletclient/pkg/logger"
)

// AuthServiceInterface defines the account operations needed by AuthHandler
type AuthServiceInterface interface {
	Register(ctx context.Context, email, password string) (*user.User, error)
	Login(ctx context.Context, email, password string) (*user.User, error)
}

// JWTServiceInterface defines the interface for JWT operations
type JWTServiceInterface interface {
	GenerateToken(userID uuid.UUID, email string) (string, error)
}

// AuthHandler handles registration and login
type AuthHandler struct {
	userService AuthServiceInterface
	jwtService  JWTServiceInterface
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService AuthServiceInterface, jwtService JWTServiceInterface, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
		logger:      log.Component("auth_handler"),
	}
}

// Register handles account creation (POST /users)
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := h.credentials(w, r)
	if !ok {
		return
	}

	registered, err := h.userService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, toUserResponse(registered), http.StatusCreated)
}

// Login handles authentication (POST /auth/login)
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := h.credentials(w, r)
	if !ok {
		return
	}

	authenticated, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	token, err := h.jwtService.GenerateToken(authenticated.ID, authenticated.Email)
	if err != nil {
		h.logger.WithContext(r.Context()).Error("failed to generate token", "error", err)
		respondError(w, "failed to generate token", http.StatusInternalServerError)
		return
	}

	respondJSON(w, LoginResponse{
		AccessToken: token,
		User:        toUserResponse(authenticated),
	}, http.StatusOK)
}

func (h *AuthHandler) credentials(w http.ResponseWriter, r *http.Request) (CredentialsRequest, bool) {
	var req CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return req, false
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		respondError(w, "email is required", http.StatusBadRequest)
		return req, false
	}
	if req.Password == "" {
		respondError(w, "password is required", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (h *AuthHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	appErr := describe(err)
	if appErr.HTTPStatus() >= http.StatusInternalServerError {
		h.logger.WithContext(r.Context()).Error("auth request failed", "error", err)
	}
	respondAppError(w, appErr)
}
