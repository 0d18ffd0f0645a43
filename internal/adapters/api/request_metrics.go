package api

import "time"

// RequestMetrics observes traffic to the game API
type RequestMetrics interface {
	RecordRequest(method, endpoint string, statusCode int, duration time.Duration)
	RecordRetry(method, endpoint, reason string)
	RecordRateLimitWait(method, endpoint string, wait time.Duration)
}

type noOpRequestMetrics struct{}

func (noOpRequestMetrics) RecordRequest(string, string, int, time.Duration)  {}
func (noOpRequestMetrics) RecordRetry(string, string, string)                {}
func (noOpRequestMetrics) RecordRateLimitWait(string, string, time.Duration) {}
