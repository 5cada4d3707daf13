package metrics

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Aggregator aggregates retrieval metrics in memory, bucketed by hour.
type Aggregator struct {
	mu sync.RWMutex

	// Retrieval metrics: key = "hourBucket|scheme"
	retrievalMetrics map[string]*retrievalBucket

	// Channel metrics: key = "hourBucket|channel"
	channelMetrics map[string]*channelBucket

	rerankFallbacks int64
}

type retrievalBucket struct {
	hourBucket   time.Time
	scheme       string
	requestCount int64
	successCount int64
	latencies    []int64 // in milliseconds
}

type channelBucket struct {
	hourBucket   time.Time
	channel      string
	callCount    int64
	successCount int64
	latencySum   int64 // in milliseconds
}

// NewAggregator creates a new metrics aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		retrievalMetrics: make(map[string]*retrievalBucket),
		channelMetrics:   make(map[string]*channelBucket),
	}
}

var _ Recorder = (*Aggregator)(nil)

// RecordRetrieval records a full retrieval request.
func (a *Aggregator) RecordRetrieval(_ context.Context, scheme string, latency time.Duration, success bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	hourBucket := truncateToHour(time.Now())
	key := makeKey(hourBucket, scheme)

	bucket, exists := a.retrievalMetrics[key]
	if !exists {
		bucket = &retrievalBucket{
			hourBucket: hourBucket,
			scheme:     scheme,
			latencies:  make([]int64, 0, 100),
		}
		a.retrievalMetrics[key] = bucket
	}

	bucket.requestCount++
	if success {
		bucket.successCount++
	}
	bucket.latencies = append(bucket.latencies, latency.Milliseconds())
}

// RecordChannel records a single channel search.
func (a *Aggregator) RecordChannel(_ context.Context, channel string, latency time.Duration, success bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	hourBucket := truncateToHour(time.Now())
	key := makeKey(hourBucket, channel)

	bucket, exists := a.channelMetrics[key]
	if !exists {
		bucket = &channelBucket{
			hourBucket: hourBucket,
			channel:    channel,
		}
		a.channelMetrics[key] = bucket
	}

	bucket.callCount++
	if success {
		bucket.successCount++
	}
	bucket.latencySum += latency.Milliseconds()
}

// RecordRerankFallback records a rerank failure that degraded to fused order.
func (a *Aggregator) RecordRerankFallback(_ context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rerankFallbacks++
}

// GetStats returns aggregated stats from memory across all buckets.
func (a *Aggregator) GetStats(_ context.Context) (*RetrievalMetrics, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := &RetrievalMetrics{
		RerankFallbacks: a.rerankFallbacks,
		ChannelStats:    make(map[string]*ChannelStat),
	}

	allLatencies := make([]int64, 0)
	for _, bucket := range a.retrievalMetrics {
		stats.RequestCount += bucket.requestCount
		stats.SuccessCount += bucket.successCount
		allLatencies = append(allLatencies, bucket.latencies...)
	}

	for _, bucket := range a.channelMetrics {
		if _, exists := stats.ChannelStats[bucket.channel]; !exists {
			stats.ChannelStats[bucket.channel] = &ChannelStat{}
		}
		channelStat := stats.ChannelStats[bucket.channel]
		channelStat.Count += bucket.callCount
		if bucket.callCount > 0 {
			channelStat.SuccessRate = float32(bucket.successCount) / float32(bucket.callCount)
			avgMs := bucket.latencySum / bucket.callCount
			channelStat.AvgLatency = time.Duration(avgMs) * time.Millisecond
		}
	}

	stats.LatencyP50 = time.Duration(percentile(allLatencies, 50)) * time.Millisecond
	stats.LatencyP95 = time.Duration(percentile(allLatencies, 95)) * time.Millisecond

	return stats, nil
}

// Snapshot is the serializable form of the aggregator's state.
type Snapshot struct {
	RetrievalBuckets []RetrievalBucketSnapshot `json:"retrieval_buckets"`
	ChannelBuckets   []ChannelBucketSnapshot   `json:"channel_buckets"`
	RerankFallbacks  int64                     `json:"rerank_fallbacks"`
}

// RetrievalBucketSnapshot is one hourly retrieval bucket.
type RetrievalBucketSnapshot struct {
	HourBucket   time.Time `json:"hour_bucket"`
	Scheme       string    `json:"scheme"`
	RequestCount int64     `json:"request_count"`
	SuccessCount int64     `json:"success_count"`
	Latencies    []int64   `json:"latencies_ms"`
}

// ChannelBucketSnapshot is one hourly channel bucket.
type ChannelBucketSnapshot struct {
	HourBucket   time.Time `json:"hour_bucket"`
	Channel      string    `json:"channel"`
	CallCount    int64     `json:"call_count"`
	SuccessCount int64     `json:"success_count"`
	LatencySumMs int64     `json:"latency_sum_ms"`
}

// Snapshot exports all buckets for persistence.
func (a *Aggregator) Snapshot() *Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	snapshot := &Snapshot{RerankFallbacks: a.rerankFallbacks}
	for _, bucket := range a.retrievalMetrics {
		latencies := make([]int64, len(bucket.latencies))
		copy(latencies, bucket.latencies)
		snapshot.RetrievalBuckets = append(snapshot.RetrievalBuckets, RetrievalBucketSnapshot{
			HourBucket:   bucket.hourBucket,
			Scheme:       bucket.scheme,
			RequestCount: bucket.requestCount,
			SuccessCount: bucket.successCount,
			Latencies:    latencies,
		})
	}
	for _, bucket := range a.channelMetrics {
		snapshot.ChannelBuckets = append(snapshot.ChannelBuckets, ChannelBucketSnapshot{
			HourBucket:   bucket.hourBucket,
			Channel:      bucket.channel,
			CallCount:    bucket.callCount,
			SuccessCount: bucket.successCount,
			LatencySumMs: bucket.latencySum,
		})
	}
	return snapshot
}

// Restore merges persisted buckets back into the aggregator.
func (a *Aggregator) Restore(snapshot *Snapshot) {
	if snapshot == nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.rerankFallbacks += snapshot.RerankFallbacks
	for _, saved := range snapshot.RetrievalBuckets {
		key := makeKey(saved.HourBucket, saved.Scheme)
		bucket, exists := a.retrievalMetrics[key]
		if !exists {
			bucket = &retrievalBucket{hourBucket: saved.HourBucket, scheme: saved.Scheme}
			a.retrievalMetrics[key] = bucket
		}
		bucket.requestCount += saved.RequestCount
		bucket.successCount += saved.SuccessCount
		bucket.latencies = append(bucket.latencies, saved.Latencies...)
	}
	for _, saved := range snapshot.ChannelBuckets {
		key := makeKey(saved.HourBucket, saved.Channel)
		bucket, exists := a.channelMetrics[key]
		if !exists {
			bucket = &channelBucket{hourBucket: saved.HourBucket, channel: saved.Channel}
			a.channelMetrics[key] = bucket
		}
		bucket.callCount += saved.CallCount
		bucket.successCount += saved.SuccessCount
		bucket.latencySum += saved.LatencySumMs
	}
}

func truncateToHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

func makeKey(hourBucket time.Time, name string) string {
	return hourBucket.Format(time.RFC3339) + "|" + name
}

func percentile(latencies []int64, p int) int64 {
	if len(latencies) == 0 {
		return 0
	}

	sorted := make([]int64, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := (len(sorted) - 1) * p / 100
	return sorted[idx]
}
