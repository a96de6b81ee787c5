package feed

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/feral-file/ff-13f-indexer/internal/adapter"
	"github.com/feral-file/ff-13f-indexer/internal/domain"
	"github.com/feral-file/ff-13f-indexer/internal/logger"
)

const (
	// DEFAULT_FEED_URL is the EDGAR current-filings listing
	DEFAULT_FEED_URL = "https://www.sec.gov/cgi-bin/browse-edgar?action=getcurrent&owner=include"
	// DEFAULT_FORM_TYPE is the filing type filter of the feed
	DEFAULT_FORM_TYPE = "13F-HR"
	// DEFAULT_PAGE_SIZE is the number of entries requested per page
	DEFAULT_PAGE_SIZE = 100
)

// Config holds the feed pager configuration
type Config struct {
	URL      string
	FormType string
	PageSize int
}

// Pager paginates the filing-index feed
//
//go:generate mockgen -source=pager.go -destination=../mocks/pager.go -package=mocks -mock_names=Pager=MockPager
type Pager interface {
	// DiscoverFilings requests every page of the feed and returns all entries in feed order.
	// Any page failure discards the partial result and returns ErrFeedUnavailable.
	DiscoverFilings(ctx context.Context) ([]domain.FilingReference, error)
}

type pager struct {
	cfg        Config
	httpClient adapter.HTTPClient
	clock      adapter.Clock
}

// NewPager creates a new feed pager
func NewPager(cfg Config, httpClient adapter.HTTPClient, clock adapter.Clock) Pager {
	if cfg.URL == "" {
		cfg.URL = DEFAULT_FEED_URL
	}
	if cfg.FormType == "" {
		cfg.FormType = DEFAULT_FORM_TYPE
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DEFAULT_PAGE_SIZE
	}

	return &pager{
		cfg:        cfg,
		httpClient: httpClient,
		clock:      clock,
	}
}

func (p *pager) DiscoverFilings(ctx context.Context) ([]domain.FilingReference, error) {
	var refs []domain.FilingReference

	for offset := 0; ; offset += p.cfg.PageSize {
		pageURL, err := p.pageURL(offset)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrFeedUnavailable, err)
		}

		entries, err := p.fetchPage(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("%w: page at offset %d: %v", domain.ErrFeedUnavailable, offset, err)
		}

		logger.DebugCtx(ctx, "Fetched feed page",
			zap.Int("offset", offset),
			zap.Int("entries", len(entries)),
		)

		refs = append(refs, entries...)

		if len(entries) < p.cfg.PageSize {
			break
		}
	}

	return refs, nil
}

func (p *pager) fetchPage(ctx context.Context, pageURL string) ([]domain.FilingReference, error) {
	body, err := p.httpClient.GetBytes(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	now := p.clock.Now()
	entries := make([]domain.FilingReference, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		link := item.Link
		if link == "" && len(item.Links) > 0 {
			link = item.Links[0]
		}
		if link == "" {
			// Still an entry of the page; it will be skipped downstream
			logger.WarnCtx(ctx, "Feed entry has no link", zap.String("title", item.Title))
		}

		entries = append(entries, domain.FilingReference{
			Link:         link,
			Title:        item.Title,
			DiscoveredAt: now,
		})
	}

	return entries, nil
}

func (p *pager) pageURL(offset int) (string, error) {
	u, err := url.Parse(p.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("invalid feed url: %w", err)
	}

	q := u.Query()
	q.Set("type", p.cfg.FormType)
	q.Set("start", strconv.Itoa(offset))
	q.Set("count", strconv.Itoa(p.cfg.PageSize))
	q.Set("output", "atom")
	u.RawQuery = q.Encode()

	return u.String(), nil
}
