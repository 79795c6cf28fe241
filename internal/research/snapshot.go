// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/learnbuddy/internal/intent"
	"github.com/pdiddy/learnbuddy/pkg/types"
)

// Snapshot is the on-disk form of one aggregation. A saved snapshot can be
// re-formatted later without contacting any source.
type Snapshot struct {
	Query   string                `yaml:"query"`
	Intent  types.IntentFlags     `yaml:"intent"`
	Result  types.AggregateResult `yaml:"result"`
	Context string                `yaml:"context,omitempty"`
	Summary SnapshotSummary       `yaml:"summary"`
}

// SnapshotSummary stores statistics about the aggregation.
type SnapshotSummary struct {
	Sources  int                   `yaml:"sources"`
	Failures []types.SourceFailure `yaml:"failures,omitempty"`
	SavedAt  time.Time             `yaml:"saved_at"`
}

// WriteSnapshot saves res and its formatted context block to a YAML file.
func WriteSnapshot(path string, res types.AggregateResult) error {
	snap := Snapshot{
		Query:   res.Query,
		Intent:  intent.Classify(res.Query),
		Result:  res,
		Context: Format(res),
		Summary: SnapshotSummary{
			Sources:  res.SourceCount(),
			Failures: res.Failures,
			SavedAt:  time.Now().UTC(),
		},
	}

	data, err := yaml.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadSnapshot loads a previously saved snapshot. The recorded failures are
// restored onto the result.
func ReadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if snap.Result.Query == "" {
		snap.Result.Query = snap.Query
	}
	snap.Result.Failures = snap.Summary.Failures
	return &snap, nil
}
