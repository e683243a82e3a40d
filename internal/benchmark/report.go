package benchmark

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// writeComparative persists the run summaries side by side for downstream
// tooling.
func writeComparative(outputDir string, summaries []RunSummary) error {
	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal comparative analysis: %w", err)
	}
	path := filepath.Join(outputDir, "comparative_analysis.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write comparative analysis: %w", err)
	}
	return nil
}

// WriteFinalReport renders the markdown summary of a comparative benchmark:
// a configuration table and the best performing combination by episode
// success rate.
func WriteFinalReport(path string, summaries []RunSummary) error {
	var b strings.Builder

	b.WriteString("# Android World LLM Agent Benchmark Results\n\n")
	fmt.Fprintf(&b, "Generated on: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	b.WriteString("## Configuration Summary\n\n")
	b.WriteString("| Model | Prompt Template | Success Rate | Step Accuracy | Duration |\n")
	b.WriteString("|-------|----------------|--------------|---------------|----------|\n")
	for _, s := range summaries {
		fmt.Fprintf(&b, "| %s | %s | %.2f%% | %.2f%% | %.1fs |\n",
			s.Model, s.PromptTemplate,
			s.Metrics.EpisodeSuccessRate*100,
			s.Metrics.AverageStepAccuracy*100,
			s.DurationSecs,
		)
	}

	if best, ok := bestRun(summaries); ok {
		b.WriteString("\n## Best Performing Configuration\n\n")
		fmt.Fprintf(&b, "**Model**: %s\n", best.Model)
		fmt.Fprintf(&b, "**Prompt Template**: %s\n", best.PromptTemplate)
		fmt.Fprintf(&b, "**Success Rate**: %.2f%%\n", best.Metrics.EpisodeSuccessRate*100)
		fmt.Fprintf(&b, "**Step Accuracy**: %.2f%%\n", best.Metrics.AverageStepAccuracy*100)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write final report: %w", err)
	}
	return nil
}

func bestRun(summaries []RunSummary) (RunSummary, bool) {
	if len(summaries) == 0 {
		return RunSummary{}, false
	}
	best := summaries[0]
	for _, s := range summaries[1:] {
		if s.Metrics.EpisodeSuccessRate > best.Metrics.EpisodeSuccessRate {
			best = s
		}
	}
	return best, true
}
