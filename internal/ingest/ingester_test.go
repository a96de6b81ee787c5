package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-13f-indexer/internal/adapter"
	"github.com/feral-file/ff-13f-indexer/internal/domain"
	"github.com/feral-file/ff-13f-indexer/internal/feed"
	"github.com/feral-file/ff-13f-indexer/internal/filing"
	"github.com/feral-file/ff-13f-indexer/internal/holdings"
	"github.com/feral-file/ff-13f-indexer/internal/ingest"
	"github.com/feral-file/ff-13f-indexer/internal/logger"
	"github.com/feral-file/ff-13f-indexer/internal/mocks"
	"github.com/feral-file/ff-13f-indexer/internal/staging"
	"github.com/feral-file/ff-13f-indexer/internal/sweeper"
)

var passTime = time.Date(2026, 10, 13, 21, 0, 0, 0, time.UTC)

// testIngesterMocks contains the collaborators of an ingester under test
type testIngesterMocks struct {
	ctrl       *gomock.Controller
	httpClient *mocks.MockHTTPClient
	clock      *mocks.MockClock
	publisher  *mocks.MockPublisher
	store      *memStore
	stagingDir string
	deps       ingest.Deps
}

func setupTestIngester(t *testing.T) *testIngesterMocks {
	err := logger.Initialize(logger.Config{
		Debug: true,
	})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	ctrl := gomock.NewController(t)

	tm := &testIngesterMocks{
		ctrl:       ctrl,
		httpClient: mocks.NewMockHTTPClient(ctrl),
		clock:      mocks.NewMockClock(ctrl),
		publisher:  mocks.NewMockPublisher(ctrl),
		store:      newMemStore(),
		stagingDir: t.TempDir(),
	}

	tm.clock.EXPECT().Now().Return(passTime).AnyTimes()
	tm.clock.EXPECT().Since(gomock.Any()).Return(time.Second).AnyTimes()

	fs := adapter.NewFileSystem()
	tm.deps = ingest.Deps{
		Pager:     feed.NewPager(feed.Config{PageSize: 100}, tm.httpClient, tm.clock),
		Fetcher:   filing.NewFetcher(tm.httpClient, filing.NewEdgarIndexExtractor()),
		Parser:    holdings.NewParser(),
		Stager:    staging.NewWriter(fs),
		Upserter:  ingest.NewUpserter(tm.store, 4),
		Pruner:    sweeper.NewRetentionPruner(sweeper.RetentionConfig{RetentionDays: 7, InitialInterval: time.Millisecond}, tm.store, tm.clock),
		Publisher: tm.publisher,
		Clock:     tm.clock,
	}

	return tm
}

func (tm *testIngesterMocks) ingester(timeout time.Duration) ingest.Ingester {
	return ingest.NewIngester(ingest.Config{
		PoolSize:    8,
		PassTimeout: timeout,
		StagingDir:  tm.stagingDir,
	}, tm.deps)
}

func TestIngester_Run_EndToEnd(t *testing.T) {
	tm := setupTestIngester(t)
	site := &edgar{filings: 137, pageSize: 100, failing: map[int]bool{5: true, 50: true, 120: true}}
	tm.httpClient.EXPECT().GetBytes(gomock.Any(), gomock.Any()).DoAndReturn(site.serve).AnyTimes()

	// outside the window: filed well before the cutoff
	stale := domain.HoldingRecord{
		Holding:     domain.Holding{IssuerName: "OLD CORP", CUSIP: "000000001", ShareOrParAmount: 1, ShareOrParType: domain.ShareTypeShares},
		CompanyCIK:  "0000000001",
		ReportDate:  time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		FilingDate:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		CompanyName: "OLD FILER",
	}
	_, err := tm.store.UpsertHolding(context.Background(), stale)
	require.NoError(t, err)

	expectedHoldings := 0
	for i := 0; i < site.filings; i++ {
		if !site.failing[i] {
			expectedHoldings += site.holdingsOf(i)
		}
	}

	var published *domain.RunSummary
	tm.publisher.EXPECT().PublishRunCompleted(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, s *domain.RunSummary) error {
			published = s
			return nil
		}).Times(2)

	summary, err := tm.ingester(0).Run(context.Background(), ingest.RunOptions{FreshStaging: true})
	require.NoError(t, err)

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 137, summary.FilingsDiscovered)
	assert.Equal(t, 134, summary.FilingsIngested)
	assert.Equal(t, 3, summary.TotalSkipped())
	assert.Equal(t, 3, summary.FilingsSkipped[domain.SkipReasonFetchFailed])
	assert.Equal(t, expectedHoldings, summary.RecordsParsed)
	assert.Equal(t, expectedHoldings, summary.RecordsInserted)
	assert.Equal(t, 0, summary.RecordsOverwritten)
	assert.Equal(t, int64(1), summary.RecordsPruned)
	assert.False(t, summary.DeadlineExceeded)
	assert.Equal(t, summary, published)
	assert.Equal(t, expectedHoldings, tm.store.count())

	// staged every committed record under the day's artifact
	artifact, err := staging.NewReader(adapter.NewFileSystem()).Read(context.Background(), filepath.Join(tm.stagingDir, "20261013.csv"))
	require.NoError(t, err)
	assert.Len(t, artifact.Records, expectedHoldings)

	// second pass over the same feed only overwrites
	summary, err = tm.ingester(0).Run(context.Background(), ingest.RunOptions{FreshStaging: true})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.RecordsInserted)
	assert.Equal(t, expectedHoldings, summary.RecordsOverwritten)
	assert.Equal(t, int64(0), summary.RecordsPruned)
	assert.Equal(t, expectedHoldings, tm.store.count())
	assert.False(t, tm.store.overlap)
}

func TestIngester_Run_FeedUnavailable(t *testing.T) {
	tm := setupTestIngester(t)
	pruner := mocks.NewMockRetentionPruner(tm.ctrl)
	tm.deps.Pruner = pruner

	tm.httpClient.EXPECT().GetBytes(gomock.Any(), gomock.Any()).Return(nil, errors.New("no such host"))

	summary, err := tm.ingester(0).Run(context.Background(), ingest.RunOptions{})
	assert.ErrorIs(t, err, domain.ErrFeedUnavailable)
	require.NotNil(t, summary)
	assert.Equal(t, 0, summary.FilingsDiscovered)
	assert.Equal(t, 0, tm.store.count())
}

func TestIngester_Run_PersistenceUnavailableSkipsPruning(t *testing.T) {
	tm := setupTestIngester(t)
	pruner := mocks.NewMockRetentionPruner(tm.ctrl)
	tm.deps.Pruner = pruner

	site := &edgar{filings: 4, pageSize: 100}
	tm.httpClient.EXPECT().GetBytes(gomock.Any(), gomock.Any()).DoAndReturn(site.serve).AnyTimes()
	tm.store.failOn = func(domain.HoldingRecord) error {
		return fmt.Errorf("%w: connection refused", domain.ErrPersistenceUnavailable)
	}

	summary, err := tm.ingester(0).Run(context.Background(), ingest.RunOptions{})
	assert.ErrorIs(t, err, domain.ErrPersistenceUnavailable)
	assert.Equal(t, 4, summary.FilingsIngested)
	assert.Equal(t, int64(0), summary.RecordsPruned)
}

func TestIngester_Run_SkipReasons(t *testing.T) {
	tm := setupTestIngester(t)
	site := &edgar{filings: 4, pageSize: 100}

	tm.httpClient.EXPECT().GetBytes(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, rawURL string) ([]byte, error) {
			switch rawURL {
			case site.landingURL(1):
				return []byte(`<html><body><span class="companyName">NO TABLE LLC (Filer) <a href="#">0000000009</a></span>
<div class="formGrouping"><div class="info">2026-10-13</div></div><div class="formGrouping"><div class="info">2026-09-30</div></div></body></html>`), nil
			case "https://www.sec.gov/Archives/edgar/data/1002/infotable.xml":
				return []byte(`<html><body>Tool Unavailable</body></html>`), nil
			}
			return site.serve(ctx, rawURL)
		}).AnyTimes()
	tm.publisher.EXPECT().PublishRunCompleted(gomock.Any(), gomock.Any()).Return(errors.New("nats: no responders"))

	summary, err := tm.ingester(0).Run(context.Background(), ingest.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.FilingsIngested)
	assert.Equal(t, 1, summary.FilingsSkipped[domain.SkipReasonDocumentNotFound])
	assert.Equal(t, 1, summary.FilingsSkipped[domain.SkipReasonParseFailed])
}

func TestIngester_Run_SoftDeadline(t *testing.T) {
	tm := setupTestIngester(t)
	site := &edgar{filings: 3, pageSize: 100}

	tm.httpClient.EXPECT().GetBytes(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, rawURL string) ([]byte, error) {
			if rawURL == site.landingURL(1) || rawURL == site.landingURL(2) {
				<-ctx.Done()
				return nil, fmt.Errorf("request failed after retries: %w", ctx.Err())
			}
			return site.serve(ctx, rawURL)
		}).AnyTimes()
	tm.publisher.EXPECT().PublishRunCompleted(gomock.Any(), gomock.Any()).Return(nil)

	summary, err := tm.ingester(200*time.Millisecond).Run(context.Background(), ingest.RunOptions{})
	require.NoError(t, err)
	assert.True(t, summary.DeadlineExceeded)
	assert.Equal(t, 1, summary.FilingsIngested)
	assert.Equal(t, 2, summary.FilingsSkipped[domain.SkipReasonDeadline])
	assert.Equal(t, site.holdingsOf(0), summary.RecordsInserted)
}

func TestIngester_Run_Cancelled(t *testing.T) {
	tm := setupTestIngester(t)
	pruner := mocks.NewMockRetentionPruner(tm.ctrl)
	tm.deps.Pruner = pruner
	site := &edgar{filings: 3, pageSize: 100}

	ctx, cancel := context.WithCancel(context.Background())
	tm.httpClient.EXPECT().GetBytes(gomock.Any(), gomock.Any()).
		DoAndReturn(func(reqCtx context.Context, rawURL string) ([]byte, error) {
			if rawURL == site.landingURL(0) {
				cancel()
				<-reqCtx.Done()
				return nil, reqCtx.Err()
			}
			return site.serve(reqCtx, rawURL)
		}).AnyTimes()

	_, err := tm.ingester(0).Run(ctx, ingest.RunOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, tm.store.count())
}

func TestIngester_Run_AppendsStagingAcrossRuns(t *testing.T) {
	tm := setupTestIngester(t)
	site := &edgar{filings: 2, pageSize: 100}
	tm.httpClient.EXPECT().GetBytes(gomock.Any(), gomock.Any()).DoAndReturn(site.serve).AnyTimes()
	tm.publisher.EXPECT().PublishRunCompleted(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	_, err := tm.ingester(0).Run(context.Background(), ingest.RunOptions{})
	require.NoError(t, err)
	_, err = tm.ingester(0).Run(context.Background(), ingest.RunOptions{})
	require.NoError(t, err)

	artifact := filepath.Join(tm.stagingDir, "20261013.csv")
	_, err = os.Stat(artifact)
	require.NoError(t, err)

	got, err := staging.NewReader(adapter.NewFileSystem()).Read(context.Background(), artifact)
	require.NoError(t, err)
	assert.Len(t, got.Records, 2*(site.holdingsOf(0)+site.holdingsOf(1)))
}
