package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/feral-file/ff-13f-indexer/internal/adapter"
	"github.com/feral-file/ff-13f-indexer/internal/domain"
	"github.com/feral-file/ff-13f-indexer/internal/logger"
	"github.com/feral-file/ff-13f-indexer/internal/store"
)

const (
	// DEFAULT_RETENTION_DAYS is the length of the rolling window kept in the store
	DEFAULT_RETENTION_DAYS = 7
	// DEFAULT_PRUNE_RETRIES bounds the retries of a failed delete
	DEFAULT_PRUNE_RETRIES = 3
)

// RetentionConfig holds configuration for the retention pruner
type RetentionConfig struct {
	RetentionDays   int
	MaxRetries      uint64        // retries of a failed delete
	InitialInterval time.Duration // first retry delay
}

// RetentionPruner deletes holdings that fell out of the retention window
//
//go:generate mockgen -source=retention.go -destination=../mocks/retention.go -package=mocks -mock_names=RetentionPruner=MockRetentionPruner
type RetentionPruner interface {
	// Cutoff returns the first filing date still inside the window
	Cutoff() time.Time
	// Prune deletes every holding whose filing date is before cutoff
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

type retentionPruner struct {
	config RetentionConfig
	store  store.Store
	clock  adapter.Clock
}

// NewRetentionPruner creates a new retention pruner
func NewRetentionPruner(config RetentionConfig, st store.Store, clock adapter.Clock) RetentionPruner {
	if config.RetentionDays <= 0 {
		config.RetentionDays = DEFAULT_RETENTION_DAYS
	}
	if config.InitialInterval == 0 {
		config.InitialInterval = time.Second
	}

	return &retentionPruner{
		config: config,
		store:  st,
		clock:  clock,
	}
}

func (p *retentionPruner) Cutoff() time.Time {
	return domain.TruncateToDate(p.clock.Now()).AddDate(0, 0, -p.config.RetentionDays)
}

func (p *retentionPruner) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoff = domain.TruncateToDate(cutoff)
	startTime := p.clock.Now()

	var deleted int64
	operation := func() error {
		n, err := p.store.DeleteHoldingsFiledBefore(ctx, cutoff)
		if err != nil {
			return err
		}
		deleted = n
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.config.InitialInterval
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.5

	var attemptCount int
	notifyOnError := func(err error, duration time.Duration) {
		attemptCount++
		logger.WarnCtx(ctx, "Retention prune failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attemptCount),
			zap.Duration("next_retry_in", duration),
		)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, p.config.MaxRetries), ctx)
	if err := backoff.RetryNotify(operation, policy, notifyOnError); err != nil {
		return 0, fmt.Errorf("failed to prune holdings after %d attempts: %w", attemptCount+1, err)
	}

	logger.InfoCtx(ctx, "Retention prune completed",
		zap.String("cutoff", cutoff.Format(domain.DATE_LAYOUT)),
		zap.Int64("deleted", deleted),
		zap.Duration("duration", p.clock.Since(startTime)),
	)

	return deleted, nil
}
