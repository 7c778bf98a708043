package main

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/domino14/hoju/audit"
	"github.com/domino14/hoju/config"
	"github.com/domino14/hoju/dataset"
	"github.com/domino14/hoju/extract"
)

var logSuffixes = []string{".json", ".jsonl", ".mjson", ".json.gz", ".jsonl.gz", ".mjson.gz"}

func isLogFile(name string) bool {
	for _, s := range logSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// collectLogs expands directories into the replay files below them. Files
// named explicitly are taken as they are. The result is sorted within each
// directory so runs are repeatable.
func collectLogs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !st.IsDir() {
			paths = append(paths, arg)
			continue
		}
		var found []string
		err = filepath.WalkDir(arg, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isLogFile(d.Name()) {
				found = append(found, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		paths = append(paths, found...)
	}
	return paths, nil
}

// listeners opens the audit sinks named in the config. The returned
// closers must run after extraction.
func (a *app) listeners() (extract.Listener, []io.Closer, error) {
	var multi audit.Multi
	var closers []io.Closer
	if p := a.cfg.GetString(config.ConfigAuditSQLite); p != "" {
		rec, err := audit.OpenSQLite(a.cfg.DataFile(p), a.catalog)
		if err != nil {
			return nil, nil, err
		}
		multi = append(multi, rec)
		closers = append(closers, rec)
	}
	if u := a.cfg.GetString(config.ConfigAuditNATSURL); u != "" {
		pub, err := audit.DialNATS(u, a.cfg.GetString(config.ConfigAuditNATSSubject), a.catalog)
		if err != nil {
			for _, c := range closers {
				c.Close()
			}
			return nil, nil, err
		}
		multi = append(multi, pub)
		closers = append(closers, pub)
	}
	if len(multi) == 0 {
		return nil, nil, nil
	}
	return multi, closers, nil
}

func extractCmd(a *app) *cobra.Command {
	var skipErrors bool
	var root string
	cmd := &cobra.Command{
		Use:   "extract DATASET LOG_OR_DIR...",
		Short: "replay mjai logs and write the discard decisions against riichi to a dataset",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := collectLogs(args[1:])
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return errors.New("no replay files found")
			}
			out := a.cfg.DataFile(args[0])
			log.Info().Int("files", len(paths)).Str("dataset", out).Msg("extract-start")

			opts := []extract.Option{
				extract.WithWorkers(a.workers()),
				extract.WithSkipErrors(skipErrors),
				extract.WithRoot(root),
			}
			l, closers, err := a.listeners()
			if err != nil {
				return err
			}
			defer func() {
				for _, c := range closers {
					if err := c.Close(); err != nil {
						log.Err(err).Msg("closing-audit-listener")
					}
				}
			}()
			if l != nil {
				opts = append(opts, extract.WithListener(l))
			}

			w, err := dataset.Create(out, a.catalog.Names(), a.cfg.GetInt(config.ConfigDatasetChunkSize))
			if err != nil {
				return err
			}
			stats, err := extract.New(a.catalog, opts...).Run(context.Background(), paths, w)
			if cerr := w.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			log.Info().Int("files", stats.Files).Int("skipped", stats.Skipped).
				Int("rounds", stats.Rounds).Int("decisions", stats.Decisions).
				Int("examples", stats.Examples).Msg("extract-done")
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipErrors, "skip-errors", false, "log and skip replays that fail instead of aborting")
	cmd.Flags().StringVar(&root, "root", "", "directory that round IDs are relative to (default: the common directory of the inputs)")
	return cmd
}
