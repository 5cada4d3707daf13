package metrics

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
)

// DefaultRetention is how long persisted metric buckets are kept.
const DefaultRetention = 30 * 24 * time.Hour

// Persister saves aggregated metrics to a JSON file so they survive
// across process runs.
type Persister struct {
	path       string
	aggregator *Aggregator
	retention  time.Duration
}

// NewPersister creates a persister for the given file path. A retention
// of zero means the default.
func NewPersister(path string, aggregator *Aggregator, retention time.Duration) *Persister {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Persister{
		path:       path,
		aggregator: aggregator,
		retention:  retention,
	}
}

// Load merges previously persisted buckets into the aggregator. A missing
// file is a clean first run, not an error.
func (p *Persister) Load() error {
	bytes, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "read metrics file")
	}

	var snapshot Snapshot
	if err := json.Unmarshal(bytes, &snapshot); err != nil {
		return errors.Wrapf(err, "decode metrics file: %s", p.path)
	}
	p.aggregator.Restore(&snapshot)
	return nil
}

// Flush writes the aggregator's state, dropping buckets older than the
// retention period.
func (p *Persister) Flush() error {
	snapshot := p.aggregator.Snapshot()

	cutoff := time.Now().Add(-p.retention)
	kept := &Snapshot{RerankFallbacks: snapshot.RerankFallbacks}
	for _, bucket := range snapshot.RetrievalBuckets {
		if bucket.HourBucket.After(cutoff) {
			kept.RetrievalBuckets = append(kept.RetrievalBuckets, bucket)
		}
	}
	for _, bucket := range snapshot.ChannelBuckets {
		if bucket.HourBucket.After(cutoff) {
			kept.ChannelBuckets = append(kept.ChannelBuckets, bucket)
		}
	}

	bytes, err := json.MarshalIndent(kept, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode metrics")
	}
	if err := os.WriteFile(p.path, bytes, 0o600); err != nil {
		return errors.Wrap(err, "write metrics file")
	}
	return nil
}
