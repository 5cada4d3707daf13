package metrics

import (
	"context"
	"sync"
	"time"
)

// MockRecorder is a Recorder that captures calls for test assertions.
type MockRecorder struct {
	mu sync.Mutex

	ChannelCalls    []ChannelCall
	RetrievalCalls  []RetrievalCall
	RerankFallbacks int64
}

// ChannelCall captures a RecordChannel invocation.
type ChannelCall struct {
	Channel string
	Latency time.Duration
	Success bool
}

// RetrievalCall captures a RecordRetrieval invocation.
type RetrievalCall struct {
	Scheme  string
	Latency time.Duration
	Success bool
}

var _ Recorder = (*MockRecorder)(nil)

func (m *MockRecorder) RecordChannel(_ context.Context, channel string, latency time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChannelCalls = append(m.ChannelCalls, ChannelCall{Channel: channel, Latency: latency, Success: success})
}

func (m *MockRecorder) RecordRetrieval(_ context.Context, scheme string, latency time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RetrievalCalls = append(m.RetrievalCalls, RetrievalCall{Scheme: scheme, Latency: latency, Success: success})
}

func (m *MockRecorder) RecordRerankFallback(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RerankFallbacks++
}

func (m *MockRecorder) GetStats(_ context.Context) (*RetrievalMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &RetrievalMetrics{
		RequestCount:    int64(len(m.RetrievalCalls)),
		RerankFallbacks: m.RerankFallbacks,
		ChannelStats:    make(map[string]*ChannelStat),
	}, nil
}
