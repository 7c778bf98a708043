package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/domino14/hoju/config"
	"github.com/domino14/hoju/dataset"
	"github.com/domino14/hoju/dtree"
)

func trainCmd(a *app) *cobra.Command {
	var checkpoint, printTree bool
	cmd := &cobra.Command{
		Use:   "train DATASET MODEL",
		Short: "grow a danger tree from a dataset and save it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			modelPath := a.cfg.DataFile(args[1])
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			splits := 0
			observer := func(ev dtree.SplitEvent) {
				if ev.Feature == "" {
					return
				}
				splits++
				if printTree {
					fmt.Fprintln(os.Stderr, ev.Snapshot())
				}
				if checkpoint {
					if err := dtree.SaveFile(modelPath, ev.Snapshot(), a.catalog); err != nil {
						log.Err(err).Msg("checkpoint-failed")
					}
				}
			}
			agg := a.aggregator(args[0], a.trainingRounds())
			in := dtree.NewInducer(agg,
				dtree.WithMinGap(a.cfg.GetFloat64(config.ConfigMinGap)),
				dtree.WithObserver(observer))
			root, err := in.Induce(ctx)
			if err != nil {
				return err
			}
			if err := dtree.SaveFile(modelPath, root, a.catalog); err != nil {
				return err
			}
			log.Info().Str("model", modelPath).Int("splits", splits).Int("leaves", len(root.Leaves())).
				Int("depth", root.Depth()).Int("samples", root.NumSamples).Msg("train-done")
			return nil
		},
	}
	cmd.Flags().BoolVar(&checkpoint, "checkpoint", false, "save the partial tree to MODEL after every split")
	cmd.Flags().BoolVar(&printTree, "print-tree", false, "print the partial tree to stderr after every split")
	return cmd
}

func dumpCmd(a *app) *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "dump MODEL",
		Short: "print a trained tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := dtree.LoadFile(a.cfg.DataFile(args[0]), a.catalog)
			if err != nil {
				return err
			}
			if asYAML {
				return dtree.DumpYAML(os.Stdout, m.Root())
			}
			return dtree.Render(os.Stdout, m.Root())
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "dump as YAML instead of an indented outline")
	return cmd
}

func evaluateCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "evaluate DATASET MODEL",
		Short: "score a tree against a dataset (its holdout rounds if a holdout is configured)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := dtree.LoadFile(a.cfg.DataFile(args[1]), a.catalog)
			if err != nil {
				return err
			}
			var keep func(*dataset.Round) bool
			if pct := a.cfg.GetFloat64(config.ConfigHoldoutPercent); pct > 0 && !all {
				keep = func(r *dataset.Round) bool { return dtree.Holdout(r.ID, pct) }
			}
			ev, err := dtree.Evaluate(m, dataset.File(a.cfg.DataFile(args[0])), keep)
			if err != nil {
				return err
			}
			fmt.Printf("rounds %d, examples %d\n", ev.Rounds, ev.Examples)
			fmt.Printf("brier %.5f, log loss %.5f\n", ev.Brier, ev.LogLoss)
			fmt.Printf("%-12s%-10s%-11s%s\n", "bucket", "count", "predicted", "observed")
			for i, b := range ev.Buckets {
				if b.Count == 0 {
					continue
				}
				fmt.Printf("[%.1f, %.1f)  %-10d%-11.4f%.4f\n", float64(i)/10, float64(i+1)/10,
					b.Count, b.Predicted, b.Observed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "score every round, ignoring the holdout split")
	return cmd
}
