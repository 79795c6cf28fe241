// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/learnbuddy/internal/cache"
	"github.com/pdiddy/learnbuddy/internal/intent"
	"github.com/pdiddy/learnbuddy/internal/research"
	"github.com/pdiddy/learnbuddy/pkg/types"
)

var researchCmd = &cobra.Command{
	Use:   "research [query]",
	Short: "Aggregate web sources for a query and print the context block",
	Long: `Research runs every source the query's intent calls for and prints the
formatted context block the assistant would receive. Use --json for the raw
aggregate, --save to keep a snapshot, and --load to re-format a snapshot
without touching the network.`,
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().Bool("json", false, "print the aggregate result as JSON")
	researchCmd.Flags().String("save", "", "write a YAML snapshot of the result to this file")
	researchCmd.Flags().String("load", "", "format a saved snapshot instead of querying sources")
	researchCmd.Flags().Bool("sequential", false, "run sources one at a time in priority order")
	researchCmd.Flags().Bool("gate", false, "skip research when the query does not look informational")

	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	if load, _ := cmd.Flags().GetString("load"); load != "" {
		snap, err := research.ReadSnapshot(load)
		if err != nil {
			return err
		}
		return printResult(os.Stdout, snap.Result, asJSON)
	}

	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("provide a query")
	}

	if gate, _ := cmd.Flags().GetBool("gate"); gate && !intent.Classify(query).NeedsLookup {
		fmt.Fprintln(os.Stderr, "query does not need a lookup; skipping research")
		return nil
	}

	rc := cfg.Research
	if seq, _ := cmd.Flags().GetBool("sequential"); seq {
		rc.Sequential = true
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	agg, closeFn, err := newAggregator(ctx, rc)
	if err != nil {
		return err
	}
	defer closeFn()

	res := agg.Aggregate(ctx, query)

	if save, _ := cmd.Flags().GetString("save"); save != "" {
		if err := research.WriteSnapshot(save, res); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Saved snapshot:", save)
	}
	return printResult(os.Stdout, res, asJSON)
}

// newAggregator wires the cache, sources, and aggregator for rc. The
// returned function releases the cache connection.
func newAggregator(ctx context.Context, rc types.ResearchConfig) (*research.Aggregator, func(), error) {
	c, err := cache.New(ctx, rc.Cache, log)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {}
	switch b := c.(type) {
	case *cache.Memory:
		closeFn = func() { logCacheStats(b.Stats()) }
	case *cache.Redis:
		closeFn = func() {
			logCacheStats(b.Stats(context.WithoutCancel(ctx)))
			b.Close()
		}
	}

	src := research.NewSources(httpClient(), rc, c, log)
	return research.NewAggregator(src, c, research.OptionsFromConfig(rc), log), closeFn, nil
}

func logCacheStats(s cache.Stats) {
	log.Debug("cache stats", "entries", s.Entries, "hits", s.Hits, "misses", s.Misses)
}

func printResult(w io.Writer, res types.AggregateResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	block := research.Format(res)
	if block == "" {
		fmt.Fprintf(w, "No information found for %q.\n", res.Query)
	} else {
		fmt.Fprint(w, block)
	}
	for _, f := range res.Failures {
		fmt.Fprintf(os.Stderr, "  %s failed (%s): %s\n", f.Source, f.Kind, f.Error)
	}
	return nil
}
