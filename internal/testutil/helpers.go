package testutil

import (
	"database/sql"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/lotfolio/lotfolio/internal/repository"
	"github.com/lotfolio/lotfolio/internal/service"
)

// NewTestCache creates an analysis cache for tests.
func NewTestCache(t *testing.T) *cache.Cache {
	t.Helper()

	return cache.New(time.Minute, 5*time.Minute)
}

func NewTestLedgerService(t *testing.T, db *sql.DB) *service.LedgerService {
	t.Helper()

	transactionRepo := repository.NewTransactionRepository(db)

	return service.NewLedgerService(
		transactionRepo,
		NewTestCache(t),
	)
}

func NewTestSnapshotService(t *testing.T, db *sql.DB) *service.SnapshotService {
	t.Helper()

	transactionRepo := repository.NewTransactionRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	return service.NewSnapshotService(
		transactionRepo,
		snapshotRepo,
	)
}

func NewTestPortfolioService(t *testing.T, db *sql.DB) *service.PortfolioService {
	t.Helper()

	transactionRepo := repository.NewTransactionRepository(db)
	snapshotService := NewTestSnapshotService(t, db)

	return service.NewPortfolioService(
		transactionRepo,
		snapshotService,
		NewTestCache(t),
	)
}

// NewTestLedgerAndPortfolioServices wires both services around one shared
// cache, mirroring production. Mutations through the ledger service must
// invalidate analyses cached by the portfolio service.
func NewTestLedgerAndPortfolioServices(t *testing.T, db *sql.DB) (*service.LedgerService, *service.PortfolioService) {
	t.Helper()

	transactionRepo := repository.NewTransactionRepository(db)
	snapshotService := NewTestSnapshotService(t, db)
	analysisCache := NewTestCache(t)

	ledgerService := service.NewLedgerService(transactionRepo, analysisCache)
	portfolioService := service.NewPortfolioService(transactionRepo, snapshotService, analysisCache)

	return ledgerService, portfolioService
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeSymbol generates a stock ticker symbol for testing.
//
// Example usage:
//
//	symbol := testutil.MakeSymbol("PTT")
//	// Returns: "PTT1A2B"
func MakeSymbol(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(4)
}

// MakeLotID generates a unique lot identifier for testing.
//
// Example usage:
//
//	lotID := testutil.MakeLotID("L")
//	// Returns: "L-4F7K2Q"
func MakeLotID(base string) string {
	if base == "" {
		base = "LOT"
	}
	return base + "-" + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
