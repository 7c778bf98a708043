// hoju builds danger datasets from mjai replays, trains decision trees on
// them and reports on both.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/domino14/hoju/config"
	"github.com/domino14/hoju/feature"
)

var (
	GitVersion string
)

func setupLogging(cfg *config.Config) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%s", i)
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}

	var logger zerolog.Logger
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger = zerolog.New(output).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		logger = zerolog.New(output).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	}
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	logger.Debug().Msg("Debug logging is on")
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg     *config.Config
	catalog *feature.Catalog
}

func rootCmd() *cobra.Command {
	a := &app{cfg: config.DefaultConfig(), catalog: feature.Default()}
	root := &cobra.Command{
		Use:           "hoju",
		Short:         "estimate how dangerous discards are against a riichi",
		Version:       GitVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Bind(cmd.Flags()); err != nil {
				return err
			}
			ex, err := os.Executable()
			if err == nil && !cmd.Flags().Changed(config.ConfigDataPath) {
				a.cfg.AdjustRelativePaths(filepath.Dir(ex))
			}
			setupLogging(a.cfg)
			log.Debug().Msgf("Loaded config: %v", a.cfg.SanitizedSettings())
			return nil
		},
	}
	config.AddFlags(root.PersistentFlags())
	root.AddCommand(
		extractCmd(a),
		singleCmd(a),
		interestingCmd(a),
		trainCmd(a),
		dumpCmd(a),
		evaluateCmd(a),
	)
	return root
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("")
	}
}
