package service

import (
	"sort"

	"github.com/kursio/kursio-backend/internal/model"
)

// Replay derives a progress snapshot from the attempt ledger alone. It is the
// single canonical reconciliation algorithm: a pure function of (active
// videos, finalized attempts), idempotent by construction, and self-healing,
// since attempts deleted or added out of band simply change the input.
//
// Per active video: any passing attempt puts it in VideosPassed; otherwise
// two exhausted attempts put it in VideosFailed; otherwise it is still
// pending and belongs to neither set. Each attempt beyond the first counts
// as a retry. Attempts on inactive or deleted videos are ignored.
func Replay(activeVideos []model.Video, attempts []model.QuizAttempt) model.ProgressSnapshot {
	active := make(map[int]bool, len(activeVideos))
	for _, v := range activeVideos {
		active[v.ID] = true
	}

	counts := make(map[int]int)
	passed := make(map[int]bool)
	for _, a := range attempts {
		if !a.Status.IsTerminal() || !active[a.VideoID] {
			continue
		}
		counts[a.VideoID]++
		if a.IsPassed != nil && *a.IsPassed {
			passed[a.VideoID] = true
		}
	}

	snap := model.ProgressSnapshot{
		VideosPassed: []int{},
		VideosFailed: []int{},
	}
	for videoID, n := range counts {
		if n > 1 {
			snap.TotalRetries += n - 1
		}
		switch {
		case passed[videoID]:
			snap.VideosPassed = append(snap.VideosPassed, videoID)
		case n >= model.MaxAttemptsPerVideo:
			snap.VideosFailed = append(snap.VideosFailed, videoID)
		}
	}
	sort.Ints(snap.VideosPassed)
	sort.Ints(snap.VideosFailed)

	if len(activeVideos) > 0 {
		snap.OverallProgress = float64(len(snap.VideosPassed)) / float64(len(activeVideos)) * 100.0
	}
	return snap
}
