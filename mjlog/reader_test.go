package mjlog

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/matryer/is"

	"github.com/domino14/hoju/tile"
)

const sample = `{"type":"start_game","names":["a","b","c","d"]}
{"type":"start_kyoku","bakaze":"E","kyoku":1,"honba":0,"oya":0,"dora_marker":"5pr","tehais":[["1m","2m"],["E"],["?"],[]]}

{"type":"dahai","actor":0,"pai":"1m","tsumogiri":true}
{"type":"pon","actor":1,"target":0,"pai":"1m","consumed":["1m","1m"]}
{"type":"ryukyoku"}
`

func TestReader(t *testing.T) {
	is := is.New(t)
	r := NewReader(strings.NewReader(strings.Replace(sample, `"?"`, `"S"`, 1)))

	a, err := r.Next()
	is.NoErr(err)
	is.Equal(a.Type, StartGame)
	is.Equal(a.Actor, NoActor)
	is.Equal(a.Names, []string{"a", "b", "c", "d"})

	a, err = r.Next()
	is.NoErr(err)
	is.Equal(a.Type, StartKyoku)
	is.Equal(a.Bakaze, tile.MustParse("E"))
	is.True(a.DoraMarker.Red)
	is.Equal(len(a.Tehais), 4)
	is.Equal(len(a.Tehais[3]), 0)

	a, err = r.Next()
	is.NoErr(err)
	is.Equal(a.Type, Dahai)
	is.Equal(a.Actor, 0)
	is.True(a.HasPai)
	is.True(a.Tsumogiri)

	a, err = r.Next()
	is.NoErr(err)
	is.Equal(a.Type, Pon)
	is.Equal(a.Target, 0)
	is.Equal(len(a.Consumed), 2)

	a, err = r.Next()
	is.NoErr(err)
	is.Equal(a.Type, Ryukyoku)

	_, err = r.Next()
	is.Equal(err, io.EOF)
}

func TestReaderRejectsHiddenTiles(t *testing.T) {
	is := is.New(t)
	_, err := ReadAll(strings.NewReader(sample))
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "line 2"))
}

func TestReaderBadJSON(t *testing.T) {
	is := is.New(t)
	_, err := ReadAll(strings.NewReader("{\"type\":\"dahai\"}\n{nope\n"))
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "line 2"))
}

func TestOpenGzip(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(`{"type":"end_game"}` + "\n"))
	is.NoErr(err)
	is.NoErr(gz.Close())

	path := filepath.Join(t.TempDir(), "game.mjson.gz")
	is.NoErr(os.WriteFile(path, buf.Bytes(), 0o644))

	f, err := Open(path)
	is.NoErr(err)
	defer f.Close()
	a, err := f.Next()
	is.NoErr(err)
	is.Equal(a.Type, EndGame)
	_, err = f.Next()
	is.Equal(err, io.EOF)
}
