// Package metrics provides in-memory aggregation of retrieval pipeline
// metrics: per-channel latency and success rates, end-to-end retrieval
// latency, and reranker fallback counts.
package metrics

import (
	"context"
	"time"
)

// Recorder defines the metrics recording interface consumed by the
// retrieval engine.
type Recorder interface {
	// RecordChannel records a single channel search.
	RecordChannel(ctx context.Context, channel string, latency time.Duration, success bool)

	// RecordRetrieval records a full retrieval request.
	RecordRetrieval(ctx context.Context, scheme string, latency time.Duration, success bool)

	// RecordRerankFallback records a rerank failure that degraded to fused order.
	RecordRerankFallback(ctx context.Context)

	// GetStats retrieves aggregated statistics for the current window.
	GetStats(ctx context.Context) (*RetrievalMetrics, error)
}

// RetrievalMetrics represents aggregated retrieval metrics.
type RetrievalMetrics struct {
	RequestCount     int64                   `json:"request_count"`
	SuccessCount     int64                   `json:"success_count"`
	LatencyP50       time.Duration           `json:"latency_p50"`
	LatencyP95       time.Duration           `json:"latency_p95"`
	RerankFallbacks  int64                   `json:"rerank_fallbacks"`
	ChannelStats     map[string]*ChannelStat `json:"channel_stats"`
}

// ChannelStat represents statistics for a single retrieval channel.
type ChannelStat struct {
	Count       int64         `json:"count"`
	SuccessRate float32       `json:"success_rate"`
	AvgLatency  time.Duration `json:"avg_latency"`
}
