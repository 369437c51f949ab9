package cache

import "fmt"

// LatestKey is the cache key for a metric's most recent reading.
func LatestKey(metric string) string {
	return fmt.Sprintf("%s_latest", metric)
}

// HistoryKey is the cache key for a metric's historical series.
func HistoryKey(metric string, days int) string {
	return fmt.Sprintf("%s_history_%d", metric, days)
}
