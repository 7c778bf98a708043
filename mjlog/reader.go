package mjlog

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/klauspost/compress/gzip"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Reader streams actions from a log.
type Reader struct {
	sc   *bufio.Scanner
	line int
}

func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Reader{sc: sc}
}

// Next returns the next action. It returns io.EOF after the last one.
func (r *Reader) Next() (Action, error) {
	for r.sc.Scan() {
		r.line++
		b := bytes.TrimSpace(r.sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var raw rawAction
		if err := json.Unmarshal(b, &raw); err != nil {
			return Action{}, fmt.Errorf("line %d: %w", r.line, err)
		}
		a, err := raw.toAction()
		if err != nil {
			return Action{}, fmt.Errorf("line %d: %w", r.line, err)
		}
		return a, nil
	}
	if err := r.sc.Err(); err != nil {
		return Action{}, err
	}
	return Action{}, io.EOF
}

// Line is the number of the line most recently read.
func (r *Reader) Line() int {
	return r.line
}

// File is a log opened from disk.
type File struct {
	*Reader
	closers []io.Closer
}

// Open opens a log file, decompressing it if the name ends with .gz.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	lf := &File{closers: []io.Closer{f}}
	var src io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		lf.closers = append([]io.Closer{gz}, lf.closers...)
		src = gz
	}
	lf.Reader = NewReader(src)
	return lf, nil
}

func (f *File) Close() error {
	var first error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ReadAll decodes every action of a log.
func ReadAll(r io.Reader) ([]Action, error) {
	lr := NewReader(r)
	var actions []Action
	for {
		a, err := lr.Next()
		if err == io.EOF {
			return actions, nil
		}
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
}
