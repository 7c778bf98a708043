package dtree

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/domino14/hoju/feature"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrFingerprintMismatch = errors.New("model was trained with a different feature catalog")

// envelope is the on-disk form of a model. The fingerprint is hex so that
// JSON tooling does not round it through a float.
type envelope struct {
	CatalogFingerprint string `json:"catalog_fingerprint"`
	FeatureCount       int    `json:"feature_count"`
	Root               *Node  `json:"root"`
}

func fingerprint(c *feature.Catalog) string {
	return strconv.FormatUint(c.Fingerprint(), 16)
}

// Save writes root as a model trained against c. Partial trees and single
// leaves are valid.
func Save(w io.Writer, root *Node, c *feature.Catalog) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	return enc.Encode(&envelope{
		CatalogFingerprint: fingerprint(c),
		FeatureCount:       c.Len(),
		Root:               root,
	})
}

// Load reads a model and binds it to c.
func Load(r io.Reader, c *feature.Catalog) (*Model, error) {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("decoding model: %w", err)
	}
	if env.CatalogFingerprint != fingerprint(c) || env.FeatureCount != c.Len() {
		return nil, fmt.Errorf("%w: model %s/%d, catalog %s/%d", ErrFingerprintMismatch,
			env.CatalogFingerprint, env.FeatureCount, fingerprint(c), c.Len())
	}
	if env.Root == nil {
		return nil, errors.New("model has no root")
	}
	return NewModel(env.Root, c)
}

func SaveFile(path string, root *Node, c *feature.Catalog) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Save(f, root, c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func LoadFile(path string, c *feature.Catalog) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := Load(f, c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// DumpYAML writes the bare tree as YAML for inspection.
func DumpYAML(w io.Writer, root *Node) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return err
	}
	return enc.Close()
}
