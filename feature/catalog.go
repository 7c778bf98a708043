package feature

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cespare/xxhash"

	"github.com/domino14/hoju/tile"
)

var ErrUnknownFeature = errors.New("unknown feature")

// Func evaluates a feature for one candidate tile. The tile is normalized
// (red flag cleared).
type Func func(s *Scene, t tile.Tile) bool

// Feature is a named predicate with a stable catalog index.
type Feature struct {
	Name string
	// Doc states the rule the feature encodes.
	Doc string
	// Numeric features depend on number arithmetic and are always false
	// for honor tiles.
	Numeric bool
	eval    Func
}

// Catalog is an immutable ordered table of features. Trained models refer
// to features by index, so the order must never change.
type Catalog struct {
	features    []Feature
	index       map[string]int
	names       []string
	fingerprint uint64
}

// Builder assembles a Catalog. Duplicate names panic; catalogs are static
// tables, so a duplicate is a programming error.
type Builder struct {
	features []Feature
	index    map[string]int
}

func NewBuilder() *Builder {
	return &Builder{index: make(map[string]int)}
}

// Add appends a feature that applies to every tile kind.
func (b *Builder) Add(name, doc string, fn Func) *Builder {
	return b.add(Feature{Name: name, Doc: doc, eval: fn})
}

// AddNumeric appends a feature that is false for honors.
func (b *Builder) AddNumeric(name, doc string, fn Func) *Builder {
	return b.add(Feature{Name: name, Doc: doc, Numeric: true, eval: func(s *Scene, t tile.Tile) bool {
		return t.IsNumber() && fn(s, t)
	}})
}

func (b *Builder) add(f Feature) *Builder {
	if _, ok := b.index[f.Name]; ok {
		panic("duplicate feature " + f.Name)
	}
	if len(b.features) == MaxFeatures {
		panic(fmt.Sprintf("catalog exceeds %d features", MaxFeatures))
	}
	b.index[f.Name] = len(b.features)
	b.features = append(b.features, f)
	return b
}

func (b *Builder) Build() *Catalog {
	c := &Catalog{
		features: make([]Feature, len(b.features)),
		index:    make(map[string]int, len(b.features)),
		names:    make([]string, len(b.features)),
	}
	copy(c.features, b.features)
	for i, f := range c.features {
		c.index[f.Name] = i
		c.names[i] = f.Name
	}
	c.fingerprint = xxhash.Sum64String(strings.Join(c.names, "\n"))
	return c
}

func (c *Catalog) Len() int {
	return len(c.features)
}

// Names returns the feature names in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Features returns a copy of the feature table.
func (c *Catalog) Features() []Feature {
	out := make([]Feature, len(c.features))
	copy(out, c.features)
	return out
}

// Fingerprint identifies the ordered name list.
func (c *Catalog) Fingerprint() uint64 {
	return c.fingerprint
}

// Index returns the position of the named feature.
func (c *Catalog) Index(name string) (int, error) {
	i, ok := c.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownFeature, name)
	}
	return i, nil
}

// Eval evaluates a single feature. Tiles are normalized first.
func (f *Feature) Eval(s *Scene, t tile.Tile) bool {
	return f.eval(s, t.RemoveRed())
}

// Evaluate computes every feature for one candidate.
func (c *Catalog) Evaluate(s *Scene, t tile.Tile) Vector {
	t = t.RemoveRed()
	var v Vector
	for i := range c.features {
		if c.features[i].eval(s, t) {
			v.set(i)
		}
	}
	return v
}

// Encode packs bools, given in catalog order, into a Vector.
func (c *Catalog) Encode(bools []bool) (Vector, error) {
	var v Vector
	if len(bools) != len(c.features) {
		return v, fmt.Errorf("got %d values for %d features", len(bools), len(c.features))
	}
	for i, b := range bools {
		if b {
			v.set(i)
		}
	}
	return v, nil
}

// Decode unpacks v into one bool per feature.
func (c *Catalog) Decode(v Vector) []bool {
	out := make([]bool, len(c.features))
	for i := range out {
		out[i] = v.Bit(i)
	}
	return out
}

// Feature returns the value of the named feature in v.
func (c *Catalog) Feature(v Vector, name string) (bool, error) {
	i, err := c.Index(name)
	if err != nil {
		return false, err
	}
	return v.Bit(i), nil
}

// Readable lists the names of the features set in v, in catalog order.
func (c *Catalog) Readable(v Vector) []string {
	names := make([]string, 0, v.OnesCount())
	for i, n := range c.names {
		if v.Bit(i) {
			names = append(names, n)
		}
	}
	return names
}

// Compile turns a criterion into a mask over this catalog.
func (c *Catalog) Compile(cr Criterion) (Mask, error) {
	m := Mask{Negative: allOnes()}
	for _, a := range cr.items {
		i, err := c.Index(a.Name)
		if err != nil {
			return Mask{}, err
		}
		if a.Value {
			m.Positive.set(i)
		} else {
			m.Negative.clear(i)
		}
	}
	return m, nil
}

// Compatible reports whether names is exactly this catalog's name list.
func (c *Catalog) Compatible(names []string) bool {
	if len(names) != len(c.names) {
		return false
	}
	for i := range names {
		if names[i] != c.names[i] {
			return false
		}
	}
	return true
}
