package filing

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/feral-file/ff-13f-indexer/internal/adapter"
	"github.com/feral-file/ff-13f-indexer/internal/domain"
	"github.com/feral-file/ff-13f-indexer/internal/logger"
)

// Fetcher retrieves filing landing pages and the holdings documents they point to
//
//go:generate mockgen -source=fetcher.go -destination=../mocks/fetcher.go -package=mocks -mock_names=Fetcher=MockFetcher
type Fetcher interface {
	// Fetch retrieves the landing page of ref and extracts its filing context
	Fetch(ctx context.Context, ref domain.FilingReference) (domain.FilingContext, error)
	// FetchHoldingsDocument retrieves the raw holdings table document
	FetchHoldingsDocument(ctx context.Context, fc domain.FilingContext) ([]byte, error)
}

type fetcher struct {
	httpClient adapter.HTTPClient
	extractor  Extractor
}

// NewFetcher creates a new filing fetcher
func NewFetcher(httpClient adapter.HTTPClient, extractor Extractor) Fetcher {
	return &fetcher{
		httpClient: httpClient,
		extractor:  extractor,
	}
}

func (f *fetcher) Fetch(ctx context.Context, ref domain.FilingReference) (domain.FilingContext, error) {
	if ref.Link == "" {
		return domain.FilingContext{}, fmt.Errorf("%w: entry has no link", domain.ErrFetchFailed)
	}

	page, err := f.httpClient.GetBytes(ctx, ref.Link)
	if err != nil {
		return domain.FilingContext{}, fmt.Errorf("%w: landing page: %v", domain.ErrFetchFailed, err)
	}

	fc, err := f.extractor.Extract(ref.Link, page)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			logger.DebugCtx(ctx, "Landing page has no holdings table link", zap.String("link", ref.Link))
		}
		return domain.FilingContext{}, err
	}

	return fc, nil
}

func (f *fetcher) FetchHoldingsDocument(ctx context.Context, fc domain.FilingContext) ([]byte, error) {
	data, err := f.httpClient.GetBytes(ctx, fc.HoldingsDocumentURL)
	if err != nil {
		return nil, fmt.Errorf("%w: holdings document: %v", domain.ErrFetchFailed, err)
	}
	return data, nil
}
