package domain

import "errors"

var (
	// ErrFeedUnavailable is returned when any page of the filing feed cannot be fetched or parsed.
	// It is fatal to the pass.
	ErrFeedUnavailable = errors.New("feed unavailable")

	// ErrDocumentNotFound is returned when a landing page has no holdings table link
	ErrDocumentNotFound = errors.New("holdings document not found")

	// ErrFetchFailed is returned when a filing page or holdings document cannot be retrieved
	ErrFetchFailed = errors.New("fetch failed")

	// ErrParseFailed is returned when a landing page or holdings document cannot be parsed
	ErrParseFailed = errors.New("parse failed")

	// ErrPersistenceUnavailable is returned when the store rejects or cannot serve a write.
	// It is fatal to the pass and prevents pruning.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")

	// ErrMalformedRecord is returned for a single holding entry that cannot be normalized
	ErrMalformedRecord = errors.New("malformed record")

	// ErrPassDeadline is returned for a filing that was not processed before the pass deadline
	ErrPassDeadline = errors.New("pass deadline exceeded")
)

// Skip reasons reported in the run summary
const (
	SkipReasonDocumentNotFound = "document_not_found"
	SkipReasonFetchFailed      = "fetch_failed"
	SkipReasonParseFailed      = "parse_failed"
	SkipReasonDeadline         = "deadline_exceeded"
	SkipReasonOther            = "other"
)

// SkipReason maps a per-filing error to its summary bucket
func SkipReason(err error) string {
	switch {
	case errors.Is(err, ErrDocumentNotFound):
		return SkipReasonDocumentNotFound
	case errors.Is(err, ErrFetchFailed):
		return SkipReasonFetchFailed
	case errors.Is(err, ErrParseFailed):
		return SkipReasonParseFailed
	case errors.Is(err, ErrPassDeadline):
		return SkipReasonDeadline
	default:
		return SkipReasonOther
	}
}
