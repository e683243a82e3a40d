// Package dataset loads recorded Android World episodes from disk and
// serves them to the evaluation engine.
package dataset

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/spencerj41/droidmark-cli/api/schemas"
)

// ErrEpisodeNotFound is returned when a lookup by ID fails.
var ErrEpisodeNotFound = fmt.Errorf("episode not found")

// Environment holds the episodes loaded from one dataset directory. It is
// read-only after construction and safe for concurrent use, except for
// Sample which draws from a non-shared rand source.
type Environment struct {
	episodes []schemas.Episode
	byID     map[string]int
	rng      *rand.Rand
	logger   *zap.Logger
}

// episodeFile mirrors the on-disk episode layout. Absent fields decode to
// their zero values; the loader fills defensive defaults rather than
// rejecting the file.
type episodeFile struct {
	Goal         string                `json:"goal"`
	Observations []schemas.Observation `json:"observations"`
	Actions      []string              `json:"actions"`
}

// Option configures an Environment.
type Option func(*Environment)

// WithRand overrides the sampling source, used by tests for determinism.
func WithRand(rng *rand.Rand) Option {
	return func(e *Environment) { e.rng = rng }
}

// Load reads every *.json file in dir as one episode. The episode ID is the
// filename without its extension. Files that fail to parse are skipped with
// a warning; an unreadable directory is an error.
func Load(dir string, logger *zap.Logger, opts ...Option) (*Environment, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset directory %q: %w", dir, err)
	}

	env := &Environment{
		byID:   make(map[string]int),
		logger: logger.Named("dataset"),
	}
	for _, opt := range opts {
		opt(env)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			env.logger.Warn("Skipping unreadable episode file", zap.String("path", path), zap.Error(err))
			continue
		}

		var file episodeFile
		if err := json.Unmarshal(data, &file); err != nil {
			env.logger.Warn("Skipping malformed episode file", zap.String("path", path), zap.Error(err))
			continue
		}

		ep := schemas.Episode{
			EpisodeID:    strings.TrimSuffix(entry.Name(), ".json"),
			Goal:         file.Goal,
			Observations: file.Observations,
			Actions:      file.Actions,
		}
		if ep.Observations == nil {
			ep.Observations = []schemas.Observation{}
		}
		if ep.Actions == nil {
			ep.Actions = []string{}
		}

		env.byID[ep.EpisodeID] = len(env.episodes)
		env.episodes = append(env.episodes, ep)
	}

	env.logger.Info("Dataset loaded", zap.String("dir", dir), zap.Int("episodes", len(env.episodes)))
	return env, nil
}

// Episode returns the episode with the given ID.
func (e *Environment) Episode(id string) (schemas.Episode, error) {
	idx, ok := e.byID[id]
	if !ok {
		return schemas.Episode{}, fmt.Errorf("%w: %q", ErrEpisodeNotFound, id)
	}
	return e.episodes[idx], nil
}

// Len reports how many episodes are available.
func (e *Environment) Len() int {
	return len(e.episodes)
}

// Sample returns up to n distinct episodes chosen without replacement. When
// n meets or exceeds the available count, every episode is returned. Zero
// available episodes yield an empty slice, never an error.
func (e *Environment) Sample(n int) []schemas.Episode {
	if n > len(e.episodes) {
		n = len(e.episodes)
	}
	if n <= 0 {
		return []schemas.Episode{}
	}

	perm := e.perm(len(e.episodes))
	out := make([]schemas.Episode, 0, n)
	for _, idx := range perm[:n] {
		out = append(out, e.episodes[idx])
	}
	return out
}

func (e *Environment) perm(n int) []int {
	if e.rng != nil {
		return e.rng.Perm(n)
	}
	return rand.Perm(n)
}
