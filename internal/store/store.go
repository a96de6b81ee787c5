package store

import (
	"context"
	"time"

	"github.com/feral-file/ff-13f-indexer/internal/domain"
)

// HoldingFilter selects holdings for FindHoldings. Zero values are ignored.
type HoldingFilter struct {
	ReportDate  *time.Time // exact match
	CompanyCIK  string     // exact match
	FiledBefore *time.Time // filing_date < FiledBefore
	Limit       int
	Offset      int
}

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// UpsertHolding inserts the record or overwrites every field of the record with the same natural key
	UpsertHolding(ctx context.Context, record domain.HoldingRecord) (domain.UpsertOutcome, error)
	// FindHoldings returns the holdings matching filter ordered by company and issuer, and the total match count
	FindHoldings(ctx context.Context, filter HoldingFilter) ([]domain.HoldingRecord, int64, error)
	// DeleteHoldingsFiledBefore deletes every holding whose filing date is before cutoff
	DeleteHoldingsFiledBefore(ctx context.Context, cutoff time.Time) (int64, error)
	// DeleteReport deletes every holding of one filer's report
	DeleteReport(ctx context.Context, companyCIK string, reportDate, filingDate time.Time) (int64, error)
	// Ping checks that the database is reachable
	Ping(ctx context.Context) error
}
