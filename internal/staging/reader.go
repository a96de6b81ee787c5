package staging

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/feral-file/ff-13f-indexer/internal/adapter"
	"github.com/feral-file/ff-13f-indexer/internal/domain"
	"github.com/feral-file/ff-13f-indexer/internal/logger"
)

// ErrInvalidHeader is returned when an artifact does not start with the staging header
var ErrInvalidHeader = errors.New("invalid staging header")

// Artifact is the content of one staging artifact
type Artifact struct {
	Path      string
	Records   []domain.HoldingRecord
	Malformed int // rows that could not be rebuilt
}

// Reader reads staging artifacts back for replay
//
//go:generate mockgen -source=reader.go -destination=../mocks/staging_reader.go -package=mocks -mock_names=Reader=MockStagingReader
type Reader interface {
	// List returns the artifacts of dir in chronological order
	List(dir string) ([]string, error)
	// Read rebuilds the records of one artifact
	Read(ctx context.Context, path string) (Artifact, error)
}

type reader struct {
	fs adapter.FileSystem
}

// NewReader creates a new staging reader
func NewReader(fs adapter.FileSystem) Reader {
	return &reader{fs: fs}
}

func (r *reader) List(dir string) ([]string, error) {
	paths, err := r.fs.Glob(filepath.Join(dir, "*"+ARTIFACT_EXT))
	if err != nil {
		return nil, fmt.Errorf("failed to list staging artifacts: %w", err)
	}
	return paths, nil
}

func (r *reader) Read(ctx context.Context, path string) (Artifact, error) {
	f, err := r.fs.Open(path)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to open staging artifact: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	cr := csv.NewReader(f)
	cr.Comma = DELIMITER
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Artifact{Path: path}, nil
		}
		return Artifact{}, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[col] = i
	}
	for _, col := range Columns {
		if _, ok := index[col]; !ok {
			return Artifact{}, fmt.Errorf("%w: missing column %q", ErrInvalidHeader, col)
		}
	}

	artifact := Artifact{Path: path}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// parse errors leave the reader usable for the next line
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				artifact.Malformed++
				logger.WarnCtx(ctx, "Skipping unreadable staging row", zap.String("artifact", path), zap.Int("line", line), zap.Error(err))
				continue
			}
			return Artifact{}, fmt.Errorf("failed to read staging artifact: %w", err)
		}

		if len(row) != len(header) {
			artifact.Malformed++
			logger.WarnCtx(ctx, "Skipping staging row with wrong column count",
				zap.String("artifact", path), zap.Int("line", line), zap.Int("columns", len(row)))
			continue
		}

		record, err := fromRow(index, row)
		if err != nil {
			artifact.Malformed++
			logger.WarnCtx(ctx, "Skipping malformed staging row", zap.String("artifact", path), zap.Int("line", line), zap.Error(err))
			continue
		}
		artifact.Records = append(artifact.Records, record)
	}

	return artifact, nil
}
