package messaging

import (
	"context"

	"github.com/feral-file/ff-13f-indexer/internal/domain"
)

// SubjectIngestCompleted is the subject a finished pass is announced on
const SubjectIngestCompleted = "ingest.completed"

// Publisher defines the interface for announcing pass results to the message broker
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishRunCompleted publishes the summary of a finished ingestion pass
	PublishRunCompleted(ctx context.Context, summary *domain.RunSummary) error
	// Close closes the connection
	Close()
}

// NoopPublisher is used when no broker is configured
type NoopPublisher struct{}

func (NoopPublisher) PublishRunCompleted(context.Context, *domain.RunSummary) error { return nil }

func (NoopPublisher) Close() {}
