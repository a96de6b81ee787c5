package ingest

import (
	"context"
	"fmt"
	"hash/fnv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/feral-file/ff-13f-indexer/internal/domain"
	"github.com/feral-file/ff-13f-indexer/internal/logger"
	"github.com/feral-file/ff-13f-indexer/internal/store"
)

const DEFAULT_UPSERT_LANES = 8

// UpsertStats counts the outcomes of a batch upsert
type UpsertStats struct {
	Inserted    int
	Overwritten int
}

// Upserter writes holding records keyed by their natural key
//
//go:generate mockgen -source=upserter.go -destination=../mocks/upserter.go -package=mocks -mock_names=Upserter=MockUpserter
type Upserter interface {
	// Upsert writes one record
	Upsert(ctx context.Context, record domain.HoldingRecord) (domain.UpsertOutcome, error)
	// UpsertBatch writes records in parallel lanes. Records sharing a natural key always land
	// in the same lane and are written in batch order. The first failure stops every lane.
	UpsertBatch(ctx context.Context, records []domain.HoldingRecord) (UpsertStats, error)
}

type upserter struct {
	store store.Store
	lanes int
}

// NewUpserter creates a new record upserter
func NewUpserter(st store.Store, lanes int) Upserter {
	if lanes <= 0 {
		lanes = DEFAULT_UPSERT_LANES
	}
	return &upserter{store: st, lanes: lanes}
}

func (u *upserter) Upsert(ctx context.Context, record domain.HoldingRecord) (domain.UpsertOutcome, error) {
	return u.store.UpsertHolding(ctx, record)
}

func (u *upserter) UpsertBatch(ctx context.Context, records []domain.HoldingRecord) (UpsertStats, error) {
	if len(records) == 0 {
		return UpsertStats{}, nil
	}

	lanes := make([][]domain.HoldingRecord, u.lanes)
	for _, r := range records {
		i := laneOf(r.Key(), u.lanes)
		lanes[i] = append(lanes[i], r)
	}

	stats := make([]UpsertStats, u.lanes)
	g, gctx := errgroup.WithContext(ctx)
	for i := range lanes {
		if len(lanes[i]) == 0 {
			continue
		}
		g.Go(func() error {
			for _, r := range lanes[i] {
				if err := gctx.Err(); err != nil {
					return err
				}

				outcome, err := u.store.UpsertHolding(gctx, r)
				if err != nil {
					return err
				}

				switch outcome {
				case domain.UpsertInserted:
					stats[i].Inserted++
				case domain.UpsertOverwritten:
					stats[i].Overwritten++
				default:
					return fmt.Errorf("unexpected upsert outcome %q", outcome)
				}
			}
			return nil
		})
	}

	err := g.Wait()

	var total UpsertStats
	for _, s := range stats {
		total.Inserted += s.Inserted
		total.Overwritten += s.Overwritten
	}

	if err != nil {
		logger.WarnCtx(ctx, "Batch upsert stopped",
			zap.Int("records", len(records)),
			zap.Int("committed", total.Inserted+total.Overwritten),
			zap.Error(err),
		)
		return total, err
	}

	return total, nil
}

func laneOf(key domain.NaturalKey, lanes int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key.String()))
	return int(h.Sum32() % uint32(lanes)) //nolint:gosec,G115
}
