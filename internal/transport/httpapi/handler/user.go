package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kislikjeka/walletclient/internal/platform/user"
	"github.com/kislikjeka/walletclient/internal/transport/httpapi/middleware"
	"github.com/kislikjeka/walletclient/pkg/logger"
)

// UserServiceInterface defines the account operations needed by UserHandler
type UserServiceInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	List(ctx context.Context) ([]*user.User, error)
	LoadBalance(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*user.User, error)
}

// UserHandler serves the caller's profile, the user directory and top-ups
type UserHandler struct {
	userService UserServiceInterface
	logger      *logger.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService UserServiceInterface, log *logger.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      log.Component("user_handler"),
	}
}

// Profile handles GET /users/profile
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	u, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, toUserResponse(u), http.StatusOK)
}

// List handles GET /users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	users, err := h.userService.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := make([]*UserResponse, len(users))
	for i, u := range users {
		resp[i] = toPublicUser(u, userID)
	}
	respondJSON(w, resp, http.StatusOK)
}

// LoadBalance handles POST /users/load-balance
func (h *UserHandler) LoadBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req LoadBalanceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	u, err := h.userService.LoadBalance(r.Context(), userID, req.Amount)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, toUserResponse(u), http.StatusOK)
}

func (h *UserHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	appErr := describe(err)
	if appErr.HTTPStatus() >= http.StatusInternalServerError {
		h.logger.WithContext(r.Context()).Error("user request failed", "error", err)
	}
	respondAppError(w, appErr)
}
