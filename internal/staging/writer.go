package staging

import (
	"context"
	"encoding/csv"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/feral-file/ff-13f-indexer/internal/adapter"
	"github.com/feral-file/ff-13f-indexer/internal/domain"
	"github.com/feral-file/ff-13f-indexer/internal/logger"
)

// Writer appends parsed records to a staging artifact before they are committed
//
//go:generate mockgen -source=writer.go -destination=../mocks/staging_writer.go -package=mocks -mock_names=Writer=MockStagingWriter
type Writer interface {
	// AppendBatch appends records to artifact, writing the header row only when the artifact is new
	AppendBatch(ctx context.Context, records []domain.HoldingRecord, artifact string) error
	// Reset removes artifact so the next batch starts a fresh file
	Reset(ctx context.Context, artifact string) error
}

type writer struct {
	fs adapter.FileSystem
}

// NewWriter creates a new staging writer
func NewWriter(fs adapter.FileSystem) Writer {
	return &writer{fs: fs}
}

func (w *writer) AppendBatch(ctx context.Context, records []domain.HoldingRecord, artifact string) error {
	if len(records) == 0 {
		return nil
	}

	if err := w.fs.MkdirAll(filepath.Dir(artifact)); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}

	exists, err := w.fs.Exists(artifact)
	if err != nil {
		return fmt.Errorf("failed to stat staging artifact: %w", err)
	}

	f, err := w.fs.OpenAppend(artifact)
	if err != nil {
		return fmt.Errorf("failed to open staging artifact: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.WarnCtx(ctx, "Failed to close staging artifact", zap.String("artifact", artifact), zap.Error(err))
		}
	}()

	cw := csv.NewWriter(f)
	cw.Comma = DELIMITER

	if !exists {
		if err := cw.Write(Columns); err != nil {
			return fmt.Errorf("failed to write staging header: %w", err)
		}
	}

	for _, r := range records {
		if err := cw.Write(toRow(r)); err != nil {
			return fmt.Errorf("failed to write staging row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush staging artifact: %w", err)
	}

	logger.DebugCtx(ctx, "Staged records", zap.String("artifact", artifact), zap.Int("records", len(records)))

	return nil
}

func (w *writer) Reset(ctx context.Context, artifact string) error {
	exists, err := w.fs.Exists(artifact)
	if err != nil {
		return fmt.Errorf("failed to stat staging artifact: %w", err)
	}
	if !exists {
		return nil
	}

	if err := w.fs.Remove(artifact); err != nil {
		return fmt.Errorf("failed to remove staging artifact: %w", err)
	}

	logger.InfoCtx(ctx, "Reset staging artifact", zap.String("artifact", artifact))
	return nil
}
