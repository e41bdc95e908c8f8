package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrSnapshotNotFound indicates that no analysis snapshot has been captured yet.
	ErrSnapshotNotFound = errors.New("analysis snapshot not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrDuplicateLot indicates that a BUY reuses a lot id already
	// claimed by another BUY in the ledger. Lot ids are globally unique
	// among purchases.
	ErrDuplicateLot = errors.New("lot id already exists")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
var (
	// Ledger operation errors
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToCreateTransaction    = errors.New("failed to create transaction")
	ErrFailedToImportTransactions   = errors.New("failed to import transactions")
	ErrFailedToRepairDates          = errors.New("failed to repair transaction dates")

	// Portfolio operation errors
	ErrFailedToAnalyzePortfolio = errors.New("failed to analyze portfolio")
	ErrFailedToCloseYear        = errors.New("failed to close year")

	// Snapshot operation errors
	ErrFailedToRetrieveSnapshot = errors.New("failed to retrieve analysis snapshot")
)
