package eval

import (
	"fmt"
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/spencerj41/droidmark-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ResultStore is an append-only, mutex-protected collection of episode
// results. Episodes may be evaluated concurrently, so results appear in
// order of completion rather than submission order; that ordering is stable
// once appended.
type ResultStore struct {
	mu      sync.Mutex
	results []schemas.EpisodeResult
}

// NewResultStore returns an empty store.
func NewResultStore() *ResultStore {
	return &ResultStore{}
}

// Append adds one result. Results are immutable once stored.
func (s *ResultStore) Append(r schemas.EpisodeResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
}

// Results returns a snapshot of all stored results in append order.
func (s *ResultStore) Results() []schemas.EpisodeResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]schemas.EpisodeResult, len(s.results))
	copy(out, s.results)
	return out
}

// Len reports the number of stored results.
func (s *ResultStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// Record builds the durable result document: aggregate metrics, failure
// analysis, and the compact per-episode projections.
func (s *ResultStore) Record() schemas.ResultRecord {
	results := s.Results()
	agg := NewAggregator(results)

	records := make([]schemas.EpisodeResultRecord, len(results))
	for i, r := range results {
		records[i] = r.Record()
	}

	return schemas.ResultRecord{
		AggregateMetrics: agg.Aggregate(),
		FailureAnalysis:  agg.FailureAnalysis(),
		EpisodeResults:   records,
	}
}

// SaveFile serializes the result record as indented JSON at path.
func (s *ResultStore) SaveFile(path string) error {
	data, err := json.MarshalIndent(s.Record(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result record: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write result record: %w", err)
	}
	return nil
}
