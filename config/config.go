package config

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug             = "debug"
	ConfigDataPath          = "data-path"
	ConfigDatasetChunkSize  = "dataset-chunk-size"
	ConfigConfidenceLevel   = "confidence-level"
	ConfigMinGap            = "min-gap"
	ConfigWorkers           = "workers"
	ConfigMaxMemoryFraction = "max-memory-fraction"
	ConfigAuditSQLite       = "audit-sqlite"
	ConfigAuditNATSURL      = "audit-nats-url"
	ConfigAuditNATSSubject  = "audit-nats-subject"
	ConfigHoldoutPercent    = "holdout-percent"
)

// Config wraps a viper instance. Values come, in decreasing priority, from
// flags, HOJU_ environment variables, an optional hoju.yaml and defaults.
type Config struct {
	viper.Viper
}

func DefaultConfig() *Config {
	c := &Config{Viper: *viper.New()}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	c.SetDefault(ConfigDebug, false)
	c.SetDefault(ConfigDataPath, "./data")
	c.SetDefault(ConfigDatasetChunkSize, 100)
	c.SetDefault(ConfigConfidenceLevel, 95.0)
	c.SetDefault(ConfigMinGap, 0.001)
	c.SetDefault(ConfigWorkers, 0)
	c.SetDefault(ConfigMaxMemoryFraction, 0.5)
	c.SetDefault(ConfigAuditSQLite, "")
	c.SetDefault(ConfigAuditNATSURL, "")
	c.SetDefault(ConfigAuditNATSSubject, "hoju.decisions")
	c.SetDefault(ConfigHoldoutPercent, 0.0)
}

// Flags returns a flag set declaring every config key.
func Flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	AddFlags(fs)
	return fs
}

// AddFlags declares every config key on fs.
func AddFlags(fs *pflag.FlagSet) {
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigDataPath, "./data", "directory holding datasets and models")
	fs.Int(ConfigDatasetChunkSize, 100, "rounds per dataset chunk record")
	fs.Float64(ConfigConfidenceLevel, 95, "confidence level of probability intervals, in percent")
	fs.Float64(ConfigMinGap, 0.001, "minimum interval gap for a tree split")
	fs.Int(ConfigWorkers, 0, "worker goroutines; 0 sizes from CPUs and memory")
	fs.Float64(ConfigMaxMemoryFraction, 0.5, "fraction of system memory workers may assume")
	fs.String(ConfigAuditSQLite, "", "record extracted decisions into this sqlite file")
	fs.String(ConfigAuditNATSURL, "", "publish extracted decisions to this NATS server")
	fs.String(ConfigAuditNATSSubject, "hoju.decisions", "NATS subject for decisions")
	fs.Float64(ConfigHoldoutPercent, 0, "percent of rounds held out of training for evaluation")
}

// Load resets c, parses args and binds flags, environment and the
// optional config file.
func (c *Config) Load(args []string) error {
	c.Viper = *viper.New()
	fs := Flags("hoju")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return c.Bind(fs)
}

// Bind binds an already parsed flag set.
func (c *Config) Bind(fs *pflag.FlagSet) error {
	c.setDefaults()
	c.SetEnvPrefix("hoju")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()
	if err := c.BindPFlags(fs); err != nil {
		return err
	}
	c.SetConfigName("hoju")
	c.SetConfigType("yaml")
	c.AddConfigPath(".")
	if err := c.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	} else {
		log.Info().Str("file", c.ConfigFileUsed()).Msg("read-config")
	}
	return nil
}

// AdjustRelativePaths anchors a relative data path at basePath.
func (c *Config) AdjustRelativePaths(basePath string) {
	p := c.GetString(ConfigDataPath)
	if p != "" && !filepath.IsAbs(p) {
		c.Set(ConfigDataPath, filepath.Join(basePath, p))
	}
}

// DataFile resolves name against the data path unless it is already a
// path.
func (c *Config) DataFile(name string) string {
	if filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	return filepath.Join(c.GetString(ConfigDataPath), name)
}

// SanitizedSettings is AllSettings for logging.
func (c *Config) SanitizedSettings() map[string]any {
	s := c.AllSettings()
	if v, ok := s[ConfigAuditNATSURL].(string); ok && v != "" {
		s[ConfigAuditNATSURL] = "(set)"
	}
	return s
}
