package config

import "fmt"

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// AttemptTimerKey returns the cache key for an attempt's remaining seconds.
// PostgreSQL stays the source of truth; this key absorbs the write traffic
// of client timer ticks between persists.
func (r *CacheKeyStruct) AttemptTimerKey(attemptID int) string {
	return fmt.Sprintf("attempt:%d:time_remaining", attemptID)
}

var CacheKey = NewCacheKeyStruct()
