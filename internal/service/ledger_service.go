package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/lotfolio/lotfolio/internal/api/request"
	"github.com/lotfolio/lotfolio/internal/apperrors"
	"github.com/lotfolio/lotfolio/internal/ingest"
	"github.com/lotfolio/lotfolio/internal/model"
	"github.com/lotfolio/lotfolio/internal/repository"
)

// LedgerService handles transaction ledger business logic: appending
// entries, bulk CSV import and date repair. Every mutation drops the
// cached analysis so the next read recomputes it.
type LedgerService struct {
	transactionRepo *repository.TransactionRepository
	analysisCache   *cache.Cache
}

// NewLedgerService creates a new LedgerService with the provided repository and cache dependencies.
func NewLedgerService(
	transactionRepo *repository.TransactionRepository,
	analysisCache *cache.Cache,
) *LedgerService {
	return &LedgerService{
		transactionRepo: transactionRepo,
		analysisCache:   analysisCache,
	}
}

// ListTransactions retrieves the stored ledger in date order.
func (s *LedgerService) ListTransactions() ([]model.Transaction, error) {
	return s.transactionRepo.ListTransactions()
}

// AppendTransaction validates lot uniqueness and appends one entry to
// the ledger. A BUY reusing an existing lot id fails with
// apperrors.ErrDuplicateLot.
func (s *LedgerService) AppendTransaction(ctx context.Context, req request.CreateTransactionRequest) (*model.Transaction, error) {
	txType := strings.ToUpper(strings.TrimSpace(req.Type))

	if txType == model.TypeBuy && req.LotID != "" {
		existing, err := s.transactionRepo.ExistingLotIDs()
		if err != nil {
			return nil, fmt.Errorf("failed to check lot ids: %w", err)
		}
		if existing[req.LotID] {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicateLot, req.LotID)
		}
	}

	transaction := &model.Transaction{
		ID:           uuid.New().String(),
		Symbol:       strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Date:         req.Date,
		Type:         txType,
		Volume:       req.Volume,
		PricePerUnit: req.PricePerUnit,
		Commission:   req.Commission,
		LotID:        strings.TrimSpace(req.LotID),
		TotalAmount:  req.TotalAmount,
		TaxRate:      req.TaxRate,
		Remark:       req.Remark,
	}

	if err := s.transactionRepo.InsertTransaction(ctx, transaction); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	s.analysisCache.Delete(analysisCacheKey)
	return transaction, nil
}

// ImportCSV converts an uploaded CSV through the ingest layer and
// appends the converted rows to the ledger. Skipped rows are reported,
// never fatal.
func (s *LedgerService) ImportCSV(ctx context.Context, r io.Reader) (ingest.ImportResult, error) {
	existing, err := s.transactionRepo.ExistingLotIDs()
	if err != nil {
		return ingest.ImportResult{}, fmt.Errorf("failed to check lot ids: %w", err)
	}

	result, err := ingest.ReadCSV(r, existing)
	if err != nil {
		return ingest.ImportResult{}, err
	}

	for i := range result.Transactions {
		result.Transactions[i].ID = uuid.New().String()
	}

	if err := s.transactionRepo.InsertTransactions(ctx, result.Transactions); err != nil {
		return ingest.ImportResult{}, fmt.Errorf("failed to store imported transactions: %w", err)
	}

	s.analysisCache.Delete(analysisCacheKey)
	return result, nil
}

// RepairDates rewrites day-first date strings in the stored ledger to
// ISO form and returns how many entries changed.
func (s *LedgerService) RepairDates(ctx context.Context) (int, error) {
	transactions, err := s.transactionRepo.ListTransactions()
	if err != nil {
		return 0, err
	}

	fixed := ingest.FixDates(transactions)
	if fixed == 0 {
		return 0, nil
	}

	if err := s.transactionRepo.ReplaceAll(ctx, transactions); err != nil {
		return 0, fmt.Errorf("failed to store repaired dates: %w", err)
	}

	s.analysisCache.Delete(analysisCacheKey)
	return fixed, nil
}
