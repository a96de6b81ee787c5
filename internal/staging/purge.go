package staging

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/feral-file/ff-13f-indexer/internal/adapter"
	"github.com/feral-file/ff-13f-indexer/internal/logger"
)

// Purger removes staging artifacts
type Purger interface {
	// Purge removes every artifact of dir and returns how many were removed.
	// A file that cannot be removed is logged and does not stop the purge.
	Purge(ctx context.Context, dir string) (int, error)
}

type purger struct {
	fs adapter.FileSystem
}

// NewPurger creates a new staging purger
func NewPurger(fs adapter.FileSystem) Purger {
	return &purger{fs: fs}
}

func (p *purger) Purge(ctx context.Context, dir string) (int, error) {
	paths, err := p.fs.Glob(filepath.Join(dir, "*"+ARTIFACT_EXT))
	if err != nil {
		return 0, fmt.Errorf("failed to list staging artifacts: %w", err)
	}

	removed := 0
	for _, path := range paths {
		if err := p.fs.Remove(path); err != nil {
			logger.WarnCtx(ctx, "Failed to remove staging artifact", zap.String("artifact", path), zap.Error(err))
			continue
		}
		removed++
	}

	logger.InfoCtx(ctx, "Purged staging artifacts", zap.String("dir", dir), zap.Int("removed", removed))
	return removed, nil
}
