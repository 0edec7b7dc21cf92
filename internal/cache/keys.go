package cache

import "fmt"

// DashboardStatsKey caches the per-status counts shown on the dashboard.
func DashboardStatsKey() string {
	return "dashboard:stats"
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}
