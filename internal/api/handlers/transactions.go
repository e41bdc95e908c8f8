package handlers

import (
	"errors"
	"net/http"

	"github.com/lotfolio/lotfolio/internal/api/request"
	"github.com/lotfolio/lotfolio/internal/api/response"
	"github.com/lotfolio/lotfolio/internal/apperrors"
	"github.com/lotfolio/lotfolio/internal/ingest"
	"github.com/lotfolio/lotfolio/internal/service"
	"github.com/lotfolio/lotfolio/internal/validation"
)

// TransactionHandler handles HTTP requests for ledger endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the ledgerService.
type TransactionHandler struct {
	ledgerService *service.LedgerService
}

// NewTransactionHandler creates a new TransactionHandler with the provided service dependency.
func NewTransactionHandler(ledgerService *service.LedgerService) *TransactionHandler {
	return &TransactionHandler{
		ledgerService: ledgerService,
	}
}

// AllTransactions handles GET requests to retrieve the stored ledger
// in date order.
//
// Endpoint: GET /api/transaction
// Response: 200 OK with array of Transaction
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) AllTransactions(w http.ResponseWriter, _ *http.Request) {
	transactions, err := h.ledgerService.ListTransactions()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTransactions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

// CreateTransaction handles POST requests to append one transaction to
// the ledger. Validates the request body and enforces BUY lot id
// uniqueness.
//
// Endpoint: POST /api/transaction
// Request Body: CreateTransactionRequest
// Response: 201 Created with Transaction
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 409 Conflict if a BUY reuses an existing lot id
// Error: 500 Internal Server Error if creation fails
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateTransaction(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	transaction, err := h.ledgerService.AppendTransaction(r.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateLot) {
			response.RespondError(w, http.StatusConflict, apperrors.ErrDuplicateLot.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToCreateTransaction.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, transaction)
}

// ImportCSV handles POST requests importing transactions from an
// uploaded CSV. Rows that cannot be converted are skipped and reported
// in the response; the rest of the batch is stored.
//
// Endpoint: POST /api/transaction/import
// Response: 200 OK with {"imported": n, "skipped": [...]}
// Error: 400 Bad Request if the file part is missing or headers are invalid
// Error: 500 Internal Server Error if storage fails
func (h *TransactionHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid upload", err.Error())
		return
	}

	file, _, err := r.FormFile("csv_file")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "no file part", "expected multipart field 'csv_file'")
		return
	}
	defer file.Close()

	result, err := h.ledgerService.ImportCSV(r.Context(), file)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrFailedToImportTransactions.Error(), err.Error())
		return
	}

	skipped := result.Skipped
	if skipped == nil {
		skipped = []ingest.RowIssue{}
	}
	response.RespondJSON(w, http.StatusOK, map[string]any{
		"imported": len(result.Transactions),
		"skipped":  skipped,
	})
}

// FixDates handles POST requests normalizing legacy day-first date
// strings in the stored ledger to ISO YYYY-MM-DD.
//
// Endpoint: POST /api/transaction/fix-dates
// Response: 200 OK with {"fixed": n}
// Error: 500 Internal Server Error if the repair fails
func (h *TransactionHandler) FixDates(w http.ResponseWriter, r *http.Request) {
	fixed, err := h.ledgerService.RepairDates(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRepairDates.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]int{"fixed": fixed})
}
