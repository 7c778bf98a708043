package dataset

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/golang/snappy"
	"github.com/rs/zerolog/log"
)

// Writer appends rounds to a dataset stream, emitting a chunk record each
// time chunkSize rounds are buffered.
type Writer struct {
	sw        *snappy.Writer
	enc       *gob.Encoder
	closer    io.Closer
	chunkSize int
	pending   []Round
	rounds    int
	chunks    int
}

// NewWriter writes the metadata record to w and returns a Writer. A
// chunkSize below one selects DefaultChunkSize. Close does not close w.
func NewWriter(w io.Writer, names []string, chunkSize int) (*Writer, error) {
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}
	sw := snappy.NewBufferedWriter(w)
	dw := &Writer{
		sw:        sw,
		enc:       gob.NewEncoder(sw),
		chunkSize: chunkSize,
	}
	meta := Metadata{FeatureNames: append([]string(nil), names...)}
	if err := dw.enc.Encode(&meta); err != nil {
		return nil, fmt.Errorf("writing metadata: %w", err)
	}
	return dw, nil
}

// Create truncates path and returns a Writer that closes the file on Close.
func Create(path string, names []string, chunkSize int) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(f, names, chunkSize)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

func (w *Writer) Write(r Round) error {
	w.pending = append(w.pending, r)
	w.rounds++
	if len(w.pending) >= w.chunkSize {
		return w.flush()
	}
	return nil
}

func (w *Writer) flush() error {
	if len(w.pending) == 0 {
		return nil
	}
	if err := w.enc.Encode(&Chunk{Rounds: w.pending}); err != nil {
		return fmt.Errorf("writing chunk %d: %w", w.chunks, err)
	}
	log.Debug().Int("chunk", w.chunks).Int("rounds", len(w.pending)).Msg("wrote-chunk")
	w.chunks++
	w.pending = nil
	return nil
}

// Rounds is the number of rounds written so far.
func (w *Writer) Rounds() int {
	return w.rounds
}

// Close flushes the final partial chunk.
func (w *Writer) Close() error {
	err := w.flush()
	if cerr := w.sw.Close(); err == nil {
		err = cerr
	}
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
