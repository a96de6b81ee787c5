package ingest

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-13f-indexer/internal/domain"
	"github.com/feral-file/ff-13f-indexer/internal/logger"
	"github.com/feral-file/ff-13f-indexer/internal/store"
)

// ErrInvalidReport is returned when a report is not fully identified
var ErrInvalidReport = errors.New("company CIK, report date and filing date are required")

// ReportDeleter removes one filer's report from the store
type ReportDeleter interface {
	DeleteReport(ctx context.Context, companyCIK string, reportDate, filingDate time.Time) (int64, error)
}

type reportDeleter struct {
	store store.Store
}

// NewReportDeleter creates a new report deleter
func NewReportDeleter(st store.Store) ReportDeleter {
	return &reportDeleter{store: st}
}

func (d *reportDeleter) DeleteReport(ctx context.Context, companyCIK string, reportDate, filingDate time.Time) (int64, error) {
	if companyCIK == "" || reportDate.IsZero() || filingDate.IsZero() {
		return 0, ErrInvalidReport
	}

	deleted, err := d.store.DeleteReport(ctx, companyCIK, reportDate, filingDate)
	if err != nil {
		return 0, err
	}

	logger.InfoCtx(ctx, "Deleted report",
		zap.String("company_cik", companyCIK),
		zap.String("report_date", reportDate.Format(domain.DATE_LAYOUT)),
		zap.String("filing_date", filingDate.Format(domain.DATE_LAYOUT)),
		zap.Int64("deleted", deleted),
	)

	return deleted, nil
}
