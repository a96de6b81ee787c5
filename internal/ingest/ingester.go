package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-13f-indexer/internal/adapter"
	"github.com/feral-file/ff-13f-indexer/internal/domain"
	"github.com/feral-file/ff-13f-indexer/internal/feed"
	"github.com/feral-file/ff-13f-indexer/internal/filing"
	"github.com/feral-file/ff-13f-indexer/internal/holdings"
	"github.com/feral-file/ff-13f-indexer/internal/logger"
	"github.com/feral-file/ff-13f-indexer/internal/messaging"
	"github.com/feral-file/ff-13f-indexer/internal/staging"
	"github.com/feral-file/ff-13f-indexer/internal/sweeper"
)

const (
	DEFAULT_POOL_SIZE    = 10
	DEFAULT_PASS_TIMEOUT = 30 * time.Minute
)

// Config holds configuration for the ingestion pass
type Config struct {
	PoolSize    int           // concurrent filing fetches
	PassTimeout time.Duration // soft deadline of the fetch stage; 0 disables it
	StagingDir  string
}

// RunOptions tunes a single pass
type RunOptions struct {
	// FreshStaging truncates the day's staging artifact instead of appending to it
	FreshStaging bool
}

// Ingester runs ingestion passes
//
//go:generate mockgen -source=ingester.go -destination=../mocks/ingester.go -package=mocks -mock_names=Ingester=MockIngester
type Ingester interface {
	// Run discovers the feed, fetches and parses every filing, stages and commits the records,
	// then prunes the retention window. The summary is returned even when the pass fails.
	Run(ctx context.Context, opts RunOptions) (*domain.RunSummary, error)
}

// Deps bundles the collaborators of an ingester
type Deps struct {
	Pager     feed.Pager
	Fetcher   filing.Fetcher
	Parser    holdings.Parser
	Stager    staging.Writer
	Upserter  Upserter
	Pruner    sweeper.RetentionPruner
	Publisher messaging.Publisher
	Clock     adapter.Clock
}

type ingester struct {
	config Config
	Deps
}

// NewIngester creates a new ingester
func NewIngester(config Config, deps Deps) Ingester {
	if config.PoolSize <= 0 {
		config.PoolSize = DEFAULT_POOL_SIZE
	}
	if deps.Publisher == nil {
		deps.Publisher = messaging.NoopPublisher{}
	}

	return &ingester{
		config: config,
		Deps:   deps,
	}
}

// filingResult is the outcome of fetching and parsing one filing
type filingResult struct {
	ref       domain.FilingReference
	records   []domain.HoldingRecord
	malformed int
	err       error
}

func (i *ingester) Run(ctx context.Context, opts RunOptions) (*domain.RunSummary, error) {
	startTime := i.Clock.Now()
	runID := ulid.MustNew(ulid.Timestamp(startTime), ulid.DefaultEntropy()).String()
	summary := domain.NewRunSummary(runID, startTime)

	ctx = logger.WithFields(ctx, zap.String("run_id", runID))
	logger.InfoCtx(ctx, "Starting ingestion pass", zap.Int("pool_size", i.config.PoolSize))

	// Only discovery and fetching are bounded by the soft deadline; whatever was
	// parsed in time is still committed and pruned under ctx.
	fetchCtx := ctx
	if i.config.PassTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, i.config.PassTimeout)
		defer cancel()
	}

	refs, err := i.Pager.DiscoverFilings(fetchCtx)
	if err != nil {
		return i.finish(ctx, summary, fmt.Errorf("failed to discover filings: %w", err))
	}
	summary.FilingsDiscovered = len(refs)

	results, err := i.processFilings(ctx, fetchCtx, refs)
	if err != nil {
		return i.finish(ctx, summary, err)
	}
	summary.DeadlineExceeded = errors.Is(fetchCtx.Err(), context.DeadlineExceeded)

	var records []domain.HoldingRecord
	for _, r := range results {
		summary.RecordsMalformed += r.malformed
		if r.err != nil {
			reason := domain.SkipReason(r.err)
			summary.FilingsSkipped[reason]++
			logger.WarnCtx(ctx, "Skipping filing",
				zap.String("link", r.ref.Link),
				zap.String("reason", reason),
				zap.Error(r.err),
			)
			continue
		}
		summary.FilingsIngested++
		summary.RecordsParsed += len(r.records)
		records = append(records, r.records...)
	}

	i.stage(ctx, records, opts, startTime)

	stats, err := i.Upserter.UpsertBatch(ctx, records)
	summary.RecordsInserted = stats.Inserted
	summary.RecordsOverwritten = stats.Overwritten
	if err != nil {
		return i.finish(ctx, summary, fmt.Errorf("failed to commit holdings: %w", err))
	}

	pruned, err := i.Pruner.Prune(ctx, i.Pruner.Cutoff())
	if err != nil {
		return i.finish(ctx, summary, fmt.Errorf("failed to prune holdings: %w", err))
	}
	summary.RecordsPruned = pruned

	summary, _ = i.finish(ctx, summary, nil)

	if err := i.Publisher.PublishRunCompleted(ctx, summary); err != nil {
		logger.WarnCtx(ctx, "Failed to publish run summary", zap.Error(err))
	}

	return summary, nil
}

// processFilings fetches and parses refs on a bounded pool and returns the results in feed order.
// Cancelling ctx abandons the pass; expiry of fetchCtx only marks the remaining filings as skipped.
func (i *ingester) processFilings(ctx, fetchCtx context.Context, refs []domain.FilingReference) ([]filingResult, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	pool := pond.NewResultPool[filingResult](
		i.config.PoolSize,
		pond.WithQueueSize(len(refs)),
		pond.WithContext(ctx),
	)
	defer pool.StopAndWait()

	group := pool.NewGroup()
	for _, ref := range refs {
		group.Submit(func() filingResult {
			return i.processFiling(fetchCtx, ref)
		})
	}

	results, err := group.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("ingestion pass cancelled: %w", ctxErr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to process filings: %w", err)
	}

	return results, nil
}

func (i *ingester) processFiling(ctx context.Context, ref domain.FilingReference) filingResult {
	result := filingResult{ref: ref}
	if err := ctx.Err(); err != nil {
		result.err = fmt.Errorf("%w: %v", domain.ErrPassDeadline, err)
		return result
	}

	ctx = logger.WithFields(ctx, zap.String("link", ref.Link))

	records, malformed, err := i.fetchAndParse(ctx, ref)
	if err != nil && ctx.Err() != nil {
		err = fmt.Errorf("%w: %v", domain.ErrPassDeadline, err)
	}

	result.records = records
	result.malformed = malformed
	result.err = err
	return result
}

func (i *ingester) fetchAndParse(ctx context.Context, ref domain.FilingReference) ([]domain.HoldingRecord, int, error) {
	fc, err := i.Fetcher.Fetch(ctx, ref)
	if err != nil {
		return nil, 0, err
	}

	data, err := i.Fetcher.FetchHoldingsDocument(ctx, fc)
	if err != nil {
		return nil, 0, err
	}

	parsed, err := i.Parser.Parse(data)
	if err != nil {
		return nil, 0, err
	}

	for _, m := range parsed.Malformed {
		logger.WarnCtx(ctx, "Skipping malformed holding entry",
			zap.String("document", fc.HoldingsDocumentURL),
			zap.Int("index", m.Index),
			zap.Error(m.Err),
		)
	}

	records := make([]domain.HoldingRecord, len(parsed.Holdings))
	for j, h := range parsed.Holdings {
		records[j] = domain.NewHoldingRecord(h, fc)
	}

	logger.DebugCtx(ctx, "Parsed filing",
		zap.String("company_cik", fc.CompanyCIK),
		zap.Int("holdings", len(records)),
		zap.Int("malformed", len(parsed.Malformed)),
	)

	return records, len(parsed.Malformed), nil
}

// stage writes the checkpoint artifact. A staging failure is logged and does not stop the commit.
func (i *ingester) stage(ctx context.Context, records []domain.HoldingRecord, opts RunOptions, passStart time.Time) {
	if i.config.StagingDir == "" || i.Stager == nil {
		return
	}

	artifact := staging.ArtifactPath(i.config.StagingDir, passStart)
	if opts.FreshStaging {
		if err := i.Stager.Reset(ctx, artifact); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("artifact", artifact))
			return
		}
	}

	if err := i.Stager.AppendBatch(ctx, records, artifact); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("artifact", artifact))
	}
}

func (i *ingester) finish(ctx context.Context, summary *domain.RunSummary, err error) (*domain.RunSummary, error) {
	summary.FinishedAt = i.Clock.Now()

	fields := []zap.Field{
		zap.Int("filings_discovered", summary.FilingsDiscovered),
		zap.Int("filings_ingested", summary.FilingsIngested),
		zap.Int("filings_skipped", summary.TotalSkipped()),
		zap.Any("skipped_by_reason", summary.FilingsSkipped),
		zap.Int("records_parsed", summary.RecordsParsed),
		zap.Int("records_malformed", summary.RecordsMalformed),
		zap.Int("records_inserted", summary.RecordsInserted),
		zap.Int("records_overwritten", summary.RecordsOverwritten),
		zap.Int64("records_pruned", summary.RecordsPruned),
		zap.Bool("deadline_exceeded", summary.DeadlineExceeded),
		zap.Duration("duration", summary.FinishedAt.Sub(summary.StartedAt)),
	}

	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("ingestion pass failed: %w", err), fields...)
		return summary, err
	}

	logger.InfoCtx(ctx, "Ingestion pass completed", fields...)
	return summary, nil
}
