package model

import "time"

// ProgressSummary is the derived aggregate of a learner's pass/fail state.
// It is a cache: the attempt ledger is the source of truth and the summary
// must always be re-derivable from it by full replay.
type ProgressSummary struct {
	UserID          int       `json:"user_id"`
	VideosPassed    []int     `json:"videos_passed"`
	VideosFailed    []int     `json:"videos_failed"`
	TotalRetries    int       `json:"total_retries"`
	OverallProgress float64   `json:"overall_progress"`
	LastUpdated     time.Time `json:"last_updated"`
}

// ProgressSnapshot is the pure result of replaying the ledger, before it is
// persisted as a ProgressSummary.
type ProgressSnapshot struct {
	VideosPassed    []int
	VideosFailed    []int
	TotalRetries    int
	OverallProgress float64
}
