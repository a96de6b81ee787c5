package ingest_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-13f-indexer/internal/domain"
	"github.com/feral-file/ff-13f-indexer/internal/ingest"
	"github.com/feral-file/ff-13f-indexer/internal/mocks"
)

func TestReportDeleter_DeleteReport(t *testing.T) {
	st := newMemStore()
	ctx := context.Background()

	kept := holdingRecord("APPLE INC", 100)
	kept.FilingDate = time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	for _, r := range []domain.HoldingRecord{holdingRecord("APPLE INC", 100), holdingRecord("MICROSOFT CORP", 50), kept} {
		_, err := st.UpsertHolding(ctx, r)
		require.NoError(t, err)
	}

	d := ingest.NewReportDeleter(st)
	r := holdingRecord("", 0)

	deleted, err := d.DeleteReport(ctx, r.CompanyCIK, r.ReportDate, r.FilingDate)
	require.NoError(t, err)
	// the amended filing shares a natural key with the first one and replaced it
	assert.Equal(t, int64(1), deleted)
	assert.Equal(t, 1, st.count())
}

func TestReportDeleter_DeleteReport_Invalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := ingest.NewReportDeleter(mocks.NewMockStore(ctrl))
	date := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		cik        string
		reportDate time.Time
		filingDate time.Time
	}{
		{"missing cik", "", date, date},
		{"missing report date", "0001234567", time.Time{}, date},
		{"missing filing date", "0001234567", date, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.DeleteReport(context.Background(), tt.cik, tt.reportDate, tt.filingDate)
			assert.ErrorIs(t, err, ingest.ErrInvalidReport)
		})
	}
}

func TestReportDeleter_DeleteReport_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStore(ctrl)
	d := ingest.NewReportDeleter(st)
	date := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)

	st.EXPECT().DeleteReport(gomock.Any(), "0001234567", date, date).
		Return(int64(0), errors.New("persistence unavailable: connection refused"))

	_, err := d.DeleteReport(context.Background(), "0001234567", date, date)
	assert.Error(t, err)
}
