package dataset

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/golang/snappy"
)

// Reader is a sequential cursor over one dataset stream.
type Reader struct {
	dec    *gob.Decoder
	closer io.Closer
	meta   Metadata
	chunks int
}

// NewReader reads the metadata record from r.
func NewReader(r io.Reader) (*Reader, error) {
	dr := &Reader{dec: gob.NewDecoder(snappy.NewReader(r))}
	if err := dr.dec.Decode(&dr.meta); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reading metadata: %w", io.ErrUnexpectedEOF)
		}
		return nil, fmt.Errorf("reading metadata: %w", err)
	}
	return dr, nil
}

// Open opens a dataset file for one pass.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.closer = f
	return r, nil
}

func (r *Reader) Metadata() Metadata {
	return r.meta
}

// Next returns the next chunk. It returns io.EOF, unwrapped, at the end of
// the stream.
func (r *Reader) Next() (*Chunk, error) {
	var c Chunk
	if err := r.dec.Decode(&c); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("reading chunk %d: %w", r.chunks, err)
	}
	r.chunks++
	return &c, nil
}

func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Source opens independent read cursors over the same dataset, one per
// aggregation pass.
type Source interface {
	Open() (*Reader, error)
}

// File is a dataset on disk.
type File string

func (f File) Open() (*Reader, error) {
	return Open(string(f))
}

// Bytes is an encoded dataset held in memory.
type Bytes []byte

func (b Bytes) Open() (*Reader, error) {
	return NewReader(bytes.NewReader(b))
}

// Encode writes rounds into an in-memory dataset.
func Encode(names []string, chunkSize int, rounds []Round) (Bytes, error) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, names, chunkSize)
	if err != nil {
		return nil, err
	}
	for _, r := range rounds {
		if err := w.Write(r); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return Bytes(buf.Bytes()), nil
}

// Each calls fn for every round of src in stream order after checking the
// stored catalog against names.
func Each(src Source, names []string, fn func(*Round) error) error {
	r, err := src.Open()
	if err != nil {
		return err
	}
	defer r.Close()
	if err := r.Metadata().CheckCompatible(names); err != nil {
		return err
	}
	for {
		c, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		for i := range c.Rounds {
			if err := fn(&c.Rounds[i]); err != nil {
				return err
			}
		}
	}
}
