package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spencerj41/droidmark-cli/api/schemas"
)

func episodeRecord(id string, accuracy float64, success bool, failures []int) schemas.EpisodeResultRecord {
	return schemas.EpisodeResultRecord{
		EpisodeID:      id,
		Goal:           "goal for " + id,
		StepAccuracy:   accuracy,
		EpisodeSuccess: success,
		TotalSteps:     6,
		CorrectSteps:   int(accuracy * 6),
		FailurePoints:  failures,
	}
}

func testRecord() schemas.ResultRecord {
	return schemas.ResultRecord{
		AggregateMetrics: schemas.AggregateMetrics{
			TotalEpisodes:       4,
			EpisodeSuccessRate:  0.25,
			AverageStepAccuracy: 0.5,
			TotalSteps:          24,
			TotalCorrectSteps:   12,
		},
		FailureAnalysis: map[string]int{
			"wrong_click": 3,
			"llm_error":   2,
		},
		EpisodeResults: []schemas.EpisodeResultRecord{
			episodeRecord("ep-good", 1.0, true, nil),
			episodeRecord("ep-early", 0.5, false, []int{0, 1}),
			episodeRecord("ep-mid", 0.3, false, []int{2, 4}),
			episodeRecord("ep-late", 0.2, false, []int{5, 7}),
		},
	}
}

func TestSuccessRateMatchesAggregate(t *testing.T) {
	record := testRecord()
	a := NewAnalyzer(record)
	assert.InDelta(t, record.AggregateMetrics.EpisodeSuccessRate, a.SuccessRate(), 1e-9)
}

func TestSuccessRateEmptyRecord(t *testing.T) {
	a := NewAnalyzer(schemas.ResultRecord{})
	assert.Zero(t, a.SuccessRate())
}

func TestFailureAnalysisTimingBuckets(t *testing.T) {
	a := NewAnalyzer(testRecord())
	analysis := a.FailureAnalysis()

	assert.Equal(t, 3, analysis.TotalFailures)
	assert.InDelta(t, 0.75, analysis.FailureRate, 1e-9)
	assert.InDelta(t, 2.0, analysis.AvgFailureCount, 1e-9)

	// Steps 0 and 1 are early; 2 and 4 are mid; 5 and 7 are late.
	assert.Equal(t, 2, analysis.Timing.Early)
	assert.Equal(t, 2, analysis.Timing.Mid)
	assert.Equal(t, 2, analysis.Timing.Late)
}

func TestFailureAnalysisAllSuccessful(t *testing.T) {
	record := schemas.ResultRecord{
		EpisodeResults: []schemas.EpisodeResultRecord{
			episodeRecord("a", 1.0, true, nil),
			episodeRecord("b", 1.0, true, nil),
		},
	}
	analysis := NewAnalyzer(record).FailureAnalysis()

	assert.Zero(t, analysis.TotalFailures)
	assert.Zero(t, analysis.FailureRate)
	assert.Zero(t, analysis.AvgFailureCount)
	assert.Equal(t, FailureTiming{}, analysis.Timing)
}

func TestEpisodeRankings(t *testing.T) {
	a := NewAnalyzer(testRecord())

	top := a.TopEpisodes(2)
	require.Len(t, top, 2)
	assert.Equal(t, "ep-good", top[0].EpisodeID)
	assert.Equal(t, "ep-early", top[1].EpisodeID)

	bottom := a.BottomEpisodes(2)
	require.Len(t, bottom, 2)
	assert.Equal(t, "ep-late", bottom[0].EpisodeID)
	assert.Equal(t, "ep-mid", bottom[1].EpisodeID)

	// Requests beyond the record size return everything.
	assert.Len(t, a.TopEpisodes(10), 4)
}

func TestLoadRecord(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "results.json")
		data := `{
			"aggregate_metrics": {"total_episodes": 1, "episode_success_rate": 1.0},
			"failure_analysis": {},
			"episode_results": [{"episode_id": "ep-1", "episode_success": true, "step_accuracy": 1.0}]
		}`
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

		record, err := LoadRecord(path)
		require.NoError(t, err)
		assert.Equal(t, 1, record.AggregateMetrics.TotalEpisodes)
		require.Len(t, record.EpisodeResults, 1)
		assert.True(t, record.EpisodeResults[0].EpisodeSuccess)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadRecord(filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o644))
		_, err := LoadRecord(path)
		assert.Error(t, err)
	})
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewAnalyzer(testRecord()).WriteSummary(&buf))
	out := buf.String()

	assert.Contains(t, out, "ANDROID WORLD LLM AGENT EVALUATION SUMMARY")
	assert.Contains(t, out, "Total Episodes: 4")
	assert.Contains(t, out, "Episode Success Rate: 25.00%")
	assert.Contains(t, out, "Average Step Accuracy: 50.00%")
	assert.Contains(t, out, "Failure Rate: 75.00%")
	assert.Contains(t, out, "early_failures: 2")
	assert.Contains(t, out, "llm_error: 2")
	assert.Contains(t, out, "wrong_click: 3")
	assert.Contains(t, out, "1. ep-good: 100.00% accuracy")
	assert.Contains(t, out, "1. ep-late: 20.00% accuracy")
}
