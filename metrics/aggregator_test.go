package metrics

import (
	"context"
	"testing"
	"time"
)

func TestAggregator_RecordRetrieval(t *testing.T) {
	a := NewAggregator()
	ctx := context.Background()

	a.RecordRetrieval(ctx, "default", 100*time.Millisecond, true)
	a.RecordRetrieval(ctx, "default", 200*time.Millisecond, true)
	a.RecordRetrieval(ctx, "enhanced", 300*time.Millisecond, false)

	stats, err := a.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if stats.RequestCount != 3 {
		t.Errorf("RequestCount = %d, want 3", stats.RequestCount)
	}
	if stats.SuccessCount != 2 {
		t.Errorf("SuccessCount = %d, want 2", stats.SuccessCount)
	}
	if stats.LatencyP50 != 200*time.Millisecond {
		t.Errorf("LatencyP50 = %v, want 200ms", stats.LatencyP50)
	}
}

func TestAggregator_RecordChannel(t *testing.T) {
	a := NewAggregator()
	ctx := context.Background()

	a.RecordChannel(ctx, "vector", 50*time.Millisecond, true)
	a.RecordChannel(ctx, "vector", 150*time.Millisecond, true)
	a.RecordChannel(ctx, "lexical", 10*time.Millisecond, false)

	stats, err := a.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}

	vector := stats.ChannelStats["vector"]
	if vector == nil {
		t.Fatal("missing vector channel stats")
	}
	if vector.Count != 2 {
		t.Errorf("vector.Count = %d, want 2", vector.Count)
	}
	if vector.SuccessRate != 1.0 {
		t.Errorf("vector.SuccessRate = %f, want 1.0", vector.SuccessRate)
	}
	if vector.AvgLatency != 100*time.Millisecond {
		t.Errorf("vector.AvgLatency = %v, want 100ms", vector.AvgLatency)
	}

	lexical := stats.ChannelStats["lexical"]
	if lexical == nil {
		t.Fatal("missing lexical channel stats")
	}
	if lexical.SuccessRate != 0 {
		t.Errorf("lexical.SuccessRate = %f, want 0", lexical.SuccessRate)
	}
}

func TestAggregator_RerankFallback(t *testing.T) {
	a := NewAggregator()
	ctx := context.Background()

	a.RecordRerankFallback(ctx)
	a.RecordRerankFallback(ctx)

	stats, err := a.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if stats.RerankFallbacks != 2 {
		t.Errorf("RerankFallbacks = %d, want 2", stats.RerankFallbacks)
	}
}

func TestPercentile(t *testing.T) {
	if got := percentile(nil, 50); got != 0 {
		t.Errorf("percentile(nil, 50) = %d, want 0", got)
	}

	latencies := []int64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	if got := percentile(latencies, 50); got != 50 {
		t.Errorf("percentile(50) = %d, want 50", got)
	}
	if got := percentile(latencies, 95); got != 90 {
		t.Errorf("percentile(95) = %d, want 90", got)
	}
}
