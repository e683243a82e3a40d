// Package report analyzes persisted result records: failure timing,
// per-episode rankings, and a human-readable summary.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spencerj41/droidmark-cli/api/schemas"
)

// Failure timing boundaries, in step indices.
const (
	earlyFailureBound = 2
	lateFailureBound  = 5
)

// FailureTiming buckets failure points by where in the episode they occur.
type FailureTiming struct {
	Early int `json:"early_failures"` // step index < 2
	Mid   int `json:"mid_failures"`   // 2 <= step index < 5
	Late  int `json:"late_failures"`  // step index >= 5
}

// Analysis is the derived failure view over one result record.
type Analysis struct {
	TotalFailures   int           `json:"total_failures"`
	FailureRate     float64       `json:"failure_rate"`
	AvgFailureCount float64       `json:"avg_failure_count"`
	Timing          FailureTiming `json:"failure_patterns"`
}

// Analyzer inspects a persisted result record.
type Analyzer struct {
	record schemas.ResultRecord
}

// NewAnalyzer wraps a result record for analysis.
func NewAnalyzer(record schemas.ResultRecord) *Analyzer {
	return &Analyzer{record: record}
}

// LoadRecord reads a persisted result record from disk.
func LoadRecord(path string) (schemas.ResultRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return schemas.ResultRecord{}, fmt.Errorf("failed to read result record: %w", err)
	}
	var record schemas.ResultRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return schemas.ResultRecord{}, fmt.Errorf("failed to parse result record: %w", err)
	}
	return record, nil
}

// SuccessRate recomputes the episode success rate from the persisted
// per-episode projections. For a record produced by this program it equals
// the stored aggregate value.
func (a *Analyzer) SuccessRate() float64 {
	if len(a.record.EpisodeResults) == 0 {
		return 0
	}
	successful := 0
	for _, r := range a.record.EpisodeResults {
		if r.EpisodeSuccess {
			successful++
		}
	}
	return float64(successful) / float64(len(a.record.EpisodeResults))
}

// FailureAnalysis computes failure counts and timing buckets over the
// unsuccessful episodes.
func (a *Analyzer) FailureAnalysis() Analysis {
	var failures []schemas.EpisodeResultRecord
	for _, r := range a.record.EpisodeResults {
		if !r.EpisodeSuccess {
			failures = append(failures, r)
		}
	}

	analysis := Analysis{TotalFailures: len(failures)}
	if len(a.record.EpisodeResults) > 0 {
		analysis.FailureRate = float64(len(failures)) / float64(len(a.record.EpisodeResults))
	}
	if len(failures) == 0 {
		return analysis
	}

	totalPoints := 0
	for _, f := range failures {
		totalPoints += len(f.FailurePoints)
		for _, step := range f.FailurePoints {
			switch {
			case step < earlyFailureBound:
				analysis.Timing.Early++
			case step < lateFailureBound:
				analysis.Timing.Mid++
			default:
				analysis.Timing.Late++
			}
		}
	}
	analysis.AvgFailureCount = float64(totalPoints) / float64(len(failures))
	return analysis
}

// TopEpisodes returns the n best episodes by step accuracy, descending.
func (a *Analyzer) TopEpisodes(n int) []schemas.EpisodeResultRecord {
	return a.ranked(n, func(x, y schemas.EpisodeResultRecord) bool {
		return x.StepAccuracy > y.StepAccuracy
	})
}

// BottomEpisodes returns the n worst episodes by step accuracy, ascending.
func (a *Analyzer) BottomEpisodes(n int) []schemas.EpisodeResultRecord {
	return a.ranked(n, func(x, y schemas.EpisodeResultRecord) bool {
		return x.StepAccuracy < y.StepAccuracy
	})
}

func (a *Analyzer) ranked(n int, less func(x, y schemas.EpisodeResultRecord) bool) []schemas.EpisodeResultRecord {
	out := make([]schemas.EpisodeResultRecord, len(a.record.EpisodeResults))
	copy(out, a.record.EpisodeResults)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	if n < len(out) {
		out = out[:n]
	}
	return out
}

// WriteSummary renders the text summary of the record.
func (a *Analyzer) WriteSummary(w io.Writer) error {
	agg := a.record.AggregateMetrics
	failure := a.FailureAnalysis()

	var err error
	p := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	p("ANDROID WORLD LLM AGENT EVALUATION SUMMARY\n")
	p("==================================================\n\n")

	p("OVERALL PERFORMANCE:\n")
	p("Total Episodes: %d\n", agg.TotalEpisodes)
	p("Episode Success Rate: %.2f%%\n", agg.EpisodeSuccessRate*100)
	p("Average Step Accuracy: %.2f%%\n", agg.AverageStepAccuracy*100)
	p("Total Steps: %d\n", agg.TotalSteps)
	p("Correct Steps: %d\n\n", agg.TotalCorrectSteps)

	p("FAILURE ANALYSIS:\n")
	p("Total Failures: %d\n", failure.TotalFailures)
	p("Failure Rate: %.2f%%\n", failure.FailureRate*100)
	p("Average Failure Points per Failed Episode: %.1f\n", failure.AvgFailureCount)

	if failure.TotalFailures > 0 {
		p("\nFAILURE TIMING:\n")
		p("early_failures: %d\n", failure.Timing.Early)
		p("mid_failures: %d\n", failure.Timing.Mid)
		p("late_failures: %d\n", failure.Timing.Late)
	}

	if len(a.record.FailureAnalysis) > 0 {
		p("\nFAILURE TYPES:\n")
		for _, kind := range sortedKeys(a.record.FailureAnalysis) {
			p("%s: %d\n", kind, a.record.FailureAnalysis[kind])
		}
	}

	p("\nTOP PERFORMING EPISODES:\n")
	for i, ep := range a.TopEpisodes(5) {
		p("%d. %s: %.2f%% accuracy\n", i+1, ep.EpisodeID, ep.StepAccuracy*100)
	}

	p("\nLOWEST PERFORMING EPISODES:\n")
	for i, ep := range a.BottomEpisodes(5) {
		p("%d. %s: %.2f%% accuracy\n", i+1, ep.EpisodeID, ep.StepAccuracy*100)
	}

	return err
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
