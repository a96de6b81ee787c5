package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/feral-file/ff-13f-indexer/internal/logger"
	"github.com/feral-file/ff-13f-indexer/internal/staging"
)

// ReplaySummary reports a replay of staging artifacts into the store
type ReplaySummary struct {
	Artifacts        int `json:"artifacts"`
	ArtifactsSkipped int `json:"artifacts_skipped"`
	Records          int `json:"records"`
	Malformed        int `json:"malformed"`
	Inserted         int `json:"inserted"`
	Overwritten      int `json:"overwritten"`
}

// Replayer commits staged records without touching the network feed
type Replayer interface {
	// Replay upserts every record of every artifact in dir, oldest artifact first.
	// Unreadable artifacts are skipped; a store failure stops the replay.
	Replay(ctx context.Context, dir string) (ReplaySummary, error)
}

type replayer struct {
	reader   staging.Reader
	upserter Upserter
}

// NewReplayer creates a new staging replayer
func NewReplayer(reader staging.Reader, upserter Upserter) Replayer {
	return &replayer{reader: reader, upserter: upserter}
}

func (r *replayer) Replay(ctx context.Context, dir string) (ReplaySummary, error) {
	var summary ReplaySummary

	paths, err := r.reader.List(dir)
	if err != nil {
		return summary, err
	}

	for _, path := range paths {
		artifact, err := r.reader.Read(ctx, path)
		if err != nil {
			summary.ArtifactsSkipped++
			logger.WarnCtx(ctx, "Skipping unreadable staging artifact", zap.String("artifact", path), zap.Error(err))
			continue
		}

		summary.Artifacts++
		summary.Records += len(artifact.Records)
		summary.Malformed += artifact.Malformed

		// later artifacts overwrite earlier ones for the same natural key
		stats, err := r.upserter.UpsertBatch(ctx, artifact.Records)
		summary.Inserted += stats.Inserted
		summary.Overwritten += stats.Overwritten
		if err != nil {
			return summary, fmt.Errorf("failed to replay %s: %w", path, err)
		}

		logger.InfoCtx(ctx, "Replayed staging artifact",
			zap.String("artifact", path),
			zap.Int("records", len(artifact.Records)),
			zap.Int("inserted", stats.Inserted),
			zap.Int("overwritten", stats.Overwritten),
		)
	}

	return summary, nil
}
