package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/domino14/hoju/aggregate"
	"github.com/domino14/hoju/config"
	"github.com/domino14/hoju/dataset"
	"github.com/domino14/hoju/dtree"
)

func (a *app) aggregator(datasetName string, keep func(*dataset.Round) bool) *aggregate.Aggregator {
	return aggregate.New(a.catalog, dataset.File(a.cfg.DataFile(datasetName)),
		aggregate.WithConfidence(a.cfg.GetFloat64(config.ConfigConfidenceLevel)),
		aggregate.WithWorkers(a.workers()),
		aggregate.WithRoundFilter(keep))
}

// trainingRounds excludes the holdout set, if one is configured.
func (a *app) trainingRounds() func(*dataset.Round) bool {
	pct := a.cfg.GetFloat64(config.ConfigHoldoutPercent)
	if pct <= 0 {
		return nil
	}
	return func(r *dataset.Round) bool { return !dtree.Holdout(r.ID, pct) }
}

func summaryOrEmpty(s *aggregate.Summary) string {
	if s == nil {
		return "-"
	}
	return s.String()
}

func writeSplits(w io.Writer, base *aggregate.Summary, splits []aggregate.Split) {
	fmt.Fprintf(w, "all: %s\n", summaryOrEmpty(base))
	for _, s := range splits {
		gap, ok := s.Gap()
		gapStr := "-"
		if ok {
			gapStr = fmt.Sprintf("%+.4f", gap)
		}
		fmt.Fprintf(w, "%-40s %-8s false %-36s true %s\n", s.Feature, gapStr,
			summaryOrEmpty(s.Negative), summaryOrEmpty(s.Positive))
	}
}

func singleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "single DATASET",
		Short: "summarize the danger of tiles with and without each feature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := a.aggregator(args[0], a.trainingRounds()).SingleFeatureReport(context.Background())
			if err != nil {
				return err
			}
			writeSplits(os.Stdout, rep.Base, rep.Splits)
			return nil
		},
	}
}

func interestingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "interesting DATASET",
		Short: "list the features that separate danger by more than the minimum gap, best first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := a.aggregator(args[0], a.trainingRounds()).SingleFeatureReport(context.Background())
			if err != nil {
				return err
			}
			writeSplits(os.Stdout, rep.Base, rep.Interesting(a.cfg.GetFloat64(config.ConfigMinGap)))
			return nil
		},
	}
}
