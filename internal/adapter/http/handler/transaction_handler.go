package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/brook/internal/adapter/http/dto"
	"github.com/iho/brook/internal/domain"
	"github.com/iho/brook/internal/usecase"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	AddTransaction(ctx context.Context, input usecase.AddTransactionInput) (*domain.Transaction, error)
	ProcessTransactions(ctx context.Context, input usecase.ProcessTransactionsInput) (*usecase.ProcessTransactionsResult, error)
}

// TransactionHandler handles pending transaction requests.
type TransactionHandler struct {
	transactionUC TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionUC TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionUC: transactionUC}
}

// Add queues a transaction on an account.
func (h *TransactionHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req dto.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction", err.Error())
		return
	}

	tx, err := h.transactionUC.AddTransaction(r.Context(), usecase.AddTransactionInput{
		AccountID:   chi.URLParam(r, "id"),
		Transaction: input,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to add transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(*tx))
}

// Process applies pending transactions, optionally only those due by as_of.
func (h *TransactionHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req dto.ProcessTransactionsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if asOf := r.URL.Query().Get("as_of"); asOf != "" {
		req.AsOf = asOf
	}

	input, err := req.ToUseCaseInput(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of", err.Error())
		return
	}

	result, err := h.transactionUC.ProcessTransactions(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to process transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ProcessTransactionsResponse{
		Applied: result.Applied,
		Account: dto.AccountFromDomain(result.Account),
	})
}
