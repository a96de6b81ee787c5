package domain

import "time"

// RunSummary is the user-visible report of one ingestion pass
type RunSummary struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	FilingsDiscovered int            `json:"filings_discovered"`
	FilingsIngested   int            `json:"filings_ingested"`
	FilingsSkipped    map[string]int `json:"filings_skipped"` // by SkipReason

	RecordsParsed      int   `json:"records_parsed"`
	RecordsMalformed   int   `json:"records_malformed"`
	RecordsInserted    int   `json:"records_inserted"`
	RecordsOverwritten int   `json:"records_overwritten"`
	RecordsPruned      int64 `json:"records_pruned"`

	DeadlineExceeded bool `json:"deadline_exceeded"`
}

// NewRunSummary creates an empty summary for the given run
func NewRunSummary(runID string, startedAt time.Time) *RunSummary {
	return &RunSummary{
		RunID:          runID,
		StartedAt:      startedAt,
		FilingsSkipped: make(map[string]int),
	}
}

// TotalSkipped returns the number of filings skipped for any reason
func (s *RunSummary) TotalSkipped() int {
	total := 0
	for _, n := range s.FilingsSkipped {
		total += n
	}
	return total
}
