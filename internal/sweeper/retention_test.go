package sweeper_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-13f-indexer/internal/domain"
	"github.com/feral-file/ff-13f-indexer/internal/logger"
	"github.com/feral-file/ff-13f-indexer/internal/mocks"
	"github.com/feral-file/ff-13f-indexer/internal/sweeper"
)

// testPrunerMocks contains all the mocks needed for testing the pruner
type testPrunerMocks struct {
	ctrl   *gomock.Controller
	store  *mocks.MockStore
	clock  *mocks.MockClock
	pruner sweeper.RetentionPruner
}

func setupTestPruner(t *testing.T, days int) *testPrunerMocks {
	err := logger.Initialize(logger.Config{
		Debug: true,
	})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	ctrl := gomock.NewController(t)

	tm := &testPrunerMocks{
		ctrl:  ctrl,
		store: mocks.NewMockStore(ctrl),
		clock: mocks.NewMockClock(ctrl),
	}

	tm.pruner = sweeper.NewRetentionPruner(sweeper.RetentionConfig{
		RetentionDays:   days,
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
	}, tm.store, tm.clock)

	return tm
}

func TestRetentionPruner_Cutoff(t *testing.T) {
	tests := []struct {
		name string
		days int
		now  time.Time
		want time.Time
	}{
		{
			name: "default window",
			days: 0,
			now:  time.Date(2026, 10, 13, 18, 30, 0, 0, time.UTC),
			want: time.Date(2026, 10, 6, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "month boundary",
			days: 14,
			now:  time.Date(2026, 3, 5, 0, 0, 1, 0, time.UTC),
			want: time.Date(2026, 2, 19, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "non-UTC clock",
			days: 1,
			now:  time.Date(2026, 10, 13, 22, 0, 0, 0, time.FixedZone("EDT", -4*3600)),
			want: time.Date(2026, 10, 13, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestPruner(t, tt.days)
			tm.clock.EXPECT().Now().Return(tt.now)
			assert.Equal(t, tt.want, tm.pruner.Cutoff())
		})
	}
}

func TestRetentionPruner_Prune(t *testing.T) {
	tm := setupTestPruner(t, 7)
	cutoff := time.Date(2026, 10, 6, 0, 0, 0, 0, time.UTC)

	tm.clock.EXPECT().Now().Return(time.Now()).AnyTimes()
	tm.clock.EXPECT().Since(gomock.Any()).Return(time.Millisecond).AnyTimes()
	tm.store.EXPECT().DeleteHoldingsFiledBefore(gomock.Any(), cutoff).Return(int64(42), nil)

	deleted, err := tm.pruner.Prune(context.Background(), cutoff.Add(5*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(42), deleted)
}

func TestRetentionPruner_Prune_RetriesTransientFailure(t *testing.T) {
	tm := setupTestPruner(t, 7)
	cutoff := time.Date(2026, 10, 6, 0, 0, 0, 0, time.UTC)

	tm.clock.EXPECT().Now().Return(time.Now()).AnyTimes()
	tm.clock.EXPECT().Since(gomock.Any()).Return(time.Millisecond).AnyTimes()
	gomock.InOrder(
		tm.store.EXPECT().DeleteHoldingsFiledBefore(gomock.Any(), cutoff).
			Return(int64(0), fmt.Errorf("%w: connection reset", domain.ErrPersistenceUnavailable)),
		tm.store.EXPECT().DeleteHoldingsFiledBefore(gomock.Any(), cutoff).Return(int64(3), nil),
	)

	deleted, err := tm.pruner.Prune(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
}

func TestRetentionPruner_Prune_GivesUp(t *testing.T) {
	tm := setupTestPruner(t, 7)
	cutoff := time.Date(2026, 10, 6, 0, 0, 0, 0, time.UTC)

	tm.clock.EXPECT().Now().Return(time.Now()).AnyTimes()
	tm.store.EXPECT().DeleteHoldingsFiledBefore(gomock.Any(), cutoff).
		Return(int64(0), fmt.Errorf("%w: database is closed", domain.ErrPersistenceUnavailable)).
		Times(3)

	deleted, err := tm.pruner.Prune(context.Background(), cutoff)
	assert.Equal(t, int64(0), deleted)
	assert.True(t, errors.Is(err, domain.ErrPersistenceUnavailable))
}
