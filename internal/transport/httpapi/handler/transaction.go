package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kislikjeka/walletclient/internal/platform/transfer"
	"github.com/kislikjeka/walletclient/internal/transport/httpapi/middleware"
	"github.com/kislikjeka/walletclient/pkg/logger"
)

// TransferServiceInterface defines the transfer operations needed by TransactionHandler
type TransferServiceInterface interface {
	Transfer(ctx context.Context, senderID uuid.UUID, receiverEmail string, amount decimal.Decimal) (*transfer.Record, error)
	List(ctx context.Context, userID uuid.UUID) ([]*transfer.Record, error)
}

// TransactionHandler handles transfers between users
type TransactionHandler struct {
	transferService TransferServiceInterface
	logger          *logger.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transferService TransferServiceInterface, log *logger.Logger) *TransactionHandler {
	return &TransactionHandler{
		transferService: transferService,
		logger:          log.Component("transaction_handler"),
	}
}

// CreateTransaction handles POST /transactions. A transfer the sender
// cannot cover is recorded as failed and returned with 201 like any other.
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req TransferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.ReceiverEmail = strings.TrimSpace(req.ReceiverEmail)
	if req.ReceiverEmail == "" {
		respondError(w, "receiverEmail is required", http.StatusBadRequest)
		return
	}

	rec, err := h.transferService.Transfer(r.Context(), userID, req.ReceiverEmail, req.Amount)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, toTransactionResponse(rec, userID), http.StatusCreated)
}

// GetTransactions handles GET /transactions
func (h *TransactionHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	records, err := h.transferService.List(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := make([]TransactionResponse, len(records))
	for i, rec := range records {
		resp[i] = toTransactionResponse(rec, userID)
	}
	respondJSON(w, resp, http.StatusOK)
}

func (h *TransactionHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	appErr := describe(err)
	if appErr.HTTPStatus() >= http.StatusInternalServerError {
		h.logger.WithContext(r.Context()).Error("transaction request failed", "error", err)
	}
	respondAppError(w, appErr)
}
