package model

import "time"

// Summary describes the outcome of one crawl run.
// It is produced after the scheduler drains and feeds the summary reports.
type Summary struct {
	// RunID uniquely identifies this process run in logs and reports.
	RunID string `json:"run_id"`

	// Endpoint is the autocomplete URL that was crawled.
	Endpoint string `json:"endpoint"`

	// StartedAt and FinishedAt bracket the scheduler run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Requests is the number of remote calls made by this run only.
	Requests int64 `json:"requests"`

	// UniqueNames is the size of the result set, including restored names.
	UniqueNames int `json:"unique_names"`

	// PrefixesVisited is the size of the visited set, including restored prefixes.
	PrefixesVisited int `json:"prefixes_visited"`

	// RestoredPrefixes and RestoredNames count what the checkpoint held at start.
	RestoredPrefixes int `json:"restored_prefixes"`
	RestoredNames    int `json:"restored_names"`

	// Interrupted is true when the run was cancelled before the pool drained.
	Interrupted bool `json:"interrupted"`
}

// Elapsed returns the wall-clock duration of the run.
func (s *Summary) Elapsed() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// NewNames returns how many names were discovered by this run.
func (s *Summary) NewNames() int {
	n := s.UniqueNames - s.RestoredNames
	if n < 0 {
		return 0
	}
	return n
}
