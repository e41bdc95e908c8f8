package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/lotfolio/lotfolio/internal/api/response"
	"github.com/lotfolio/lotfolio/internal/apperrors"
	"github.com/lotfolio/lotfolio/internal/model"
	"github.com/lotfolio/lotfolio/internal/service"
)

// PortfolioHandler handles HTTP requests for portfolio analysis
// endpoints. It serves as the HTTP layer adapter, parsing requests and
// delegating business logic to the portfolioService.
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler with the provided service dependency.
func NewPortfolioHandler(portfolioService *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// AnalyzeUpload handles POST requests analyzing an uploaded transaction
// log without touching the stored ledger. The upload is a multipart
// form with a "portfolio_file" part containing a JSON array of
// transactions.
//
// Endpoint: POST /api/portfolio/analyze
// Response: 200 OK with AnalysisResponse
// Error: 400 Bad Request if the file part is missing, not .json, or malformed
func (h *PortfolioHandler) AnalyzeUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid upload", err.Error())
		return
	}

	file, header, err := r.FormFile("portfolio_file")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "no file part", "expected multipart field 'portfolio_file'")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".json") {
		response.RespondError(w, http.StatusBadRequest, "unsupported file type", "expected a .json transaction list")
		return
	}

	var transactions []model.Transaction
	if err := json.NewDecoder(file).Decode(&transactions); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid transaction list", err.Error())
		return
	}

	result := h.portfolioService.AnalyzeTransactions(transactions)
	response.RespondJSON(w, http.StatusOK, result.Response(len(transactions)))
}

// LedgerAnalysis handles GET requests for the analysis of the stored
// ledger. Results are cached server-side until the ledger changes.
//
// Endpoint: GET /api/portfolio/analysis
// Response: 200 OK with AnalysisResponse
// Error: 500 Internal Server Error if retrieval fails
func (h *PortfolioHandler) LedgerAnalysis(w http.ResponseWriter, _ *http.Request) {
	result, transactionCount, err := h.portfolioService.AnalyzeLedger()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToAnalyzePortfolio.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result.Response(transactionCount))
}

// LatestSnapshot handles GET requests for the most recent captured
// analysis snapshot.
//
// Endpoint: GET /api/portfolio/snapshot
// Response: 200 OK with Snapshot
// Error: 404 Not Found if no snapshot has been captured yet
// Error: 500 Internal Server Error if retrieval fails
func (h *PortfolioHandler) LatestSnapshot(w http.ResponseWriter, _ *http.Request) {
	snapshot, err := h.portfolioService.LatestSnapshot()
	if err != nil {
		if errors.Is(err, apperrors.ErrSnapshotNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrSnapshotNotFound.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveSnapshot.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, snapshot)
}

// CloseYear handles POST requests performing the year-end roll
// forward: every open lot becomes a synthetic BUY dated today and the
// stored ledger is replaced with those BUYs.
//
// Endpoint: POST /api/portfolio/close-year
// Response: 200 OK with the new ledger (array of Transaction)
// Error: 500 Internal Server Error if the roll forward fails
func (h *PortfolioHandler) CloseYear(w http.ResponseWriter, r *http.Request) {
	next, err := h.portfolioService.CloseYear(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToCloseYear.Error(), err.Error())
		return
	}

	if next == nil {
		next = []model.Transaction{}
	}
	response.RespondJSON(w, http.StatusOK, next)
}
