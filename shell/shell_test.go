package shell

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/hoju/cache"
	"github.com/domino14/hoju/config"
	"github.com/domino14/hoju/dtree"
	"github.com/domino14/hoju/feature"
)

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		line   string
		expCmd *shellcmd
		expErr error
	}
	cases := []testdata{
		{"", nil, errNoData},
		{"load model.json",
			&shellcmd{"load", []string{"model.json"}, map[string]string{}},
			nil},
		{`scene -hand "1m 2m 3m" -bakaze E`,
			&shellcmd{"scene", nil, map[string]string{"hand": "1m 2m 3m", "bakaze": "E"}},
			nil},
		{"scene reset -dora 5p ",
			&shellcmd{"scene", []string{"reset"}, map[string]string{"dora": "5p"}},
			nil},
		{"scene -hand", nil, errWrongOptionSyntax},
	}
	for _, tc := range cases {
		cmd, err := extractFields(tc.line)
		is.Equal(cmd, tc.expCmd)
		is.Equal(err, tc.expErr)
	}
}

func testModel(t *testing.T) string {
	root := &dtree.Node{AverageProb: 0.09, ConfInterval: [2]float64{0.07, 0.11}, NumSamples: 1000,
		FeatureName: "suji",
		Negative:    &dtree.Node{AverageProb: 0.12, ConfInterval: [2]float64{0.1, 0.14}, NumSamples: 700},
		Positive:    &dtree.Node{AverageProb: 0.03, ConfInterval: [2]float64{0.01, 0.05}, NumSamples: 300},
	}
	path := filepath.Join(t.TempDir(), "model.json")
	if err := dtree.SaveFile(path, root, feature.Default()); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSession(t *testing.T) {
	is := is.New(t)
	cache.CreateGlobalObjectCache()
	var out bytes.Buffer
	sc := newController(config.DefaultConfig(), &out)

	_, err := sc.Execute("estimate")
	is.True(errors.Is(err, errNoModel))
	_, err = sc.Execute("features 7s")
	is.True(errors.Is(err, errNoScene))

	resp, err := sc.Execute("load " + testModel(t))
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "3 nodes, 2 leaves, depth 1, 1000 samples"))

	_, err = sc.Execute("estimate")
	is.True(errors.Is(err, errNoScene))

	resp, err = sc.Execute(`scene -hand "7s 8s E" -safe "1s 4s 7m" -prereach "1s 4s 7m" -bakaze E -jikaze S`)
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "3 candidates"))

	resp, err = sc.Execute("estimate")
	is.NoErr(err)
	lines := strings.Split(resp.message, "\n")
	is.Equal(len(lines), 4)
	is.True(strings.HasPrefix(lines[1], "8s"))
	is.True(strings.HasPrefix(lines[2], "E"))
	is.True(strings.HasPrefix(lines[3], "7s"))
	is.True(strings.Contains(lines[3], "0.0300"))

	resp, err = sc.Execute("features 7s")
	is.NoErr(err)
	is.True(strings.Contains("\n"+resp.message+"\n", "\nsuji\n"))

	resp, err = sc.Execute("tree")
	is.NoErr(err)
	is.True(strings.HasPrefix(resp.message, "all: 0.0900"))

	resp, err = sc.Execute("hist")
	is.NoErr(err)
	is.True(resp.message != "")

	// Omitted keys keep their values.
	resp, err = sc.Execute("scene dora=5p")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "hand:     7s 8s E"))
	is.True(strings.Contains(resp.message, "dora:     5p"))
	_, err = sc.Execute("scene 5p")
	is.True(err != nil)

	_, err = sc.Execute("scene -bakaze P")
	is.True(err != nil)
	_, err = sc.Execute("frobnicate")
	is.True(err != nil)
	_, err = sc.Execute("exit")
	is.Equal(err, io.EOF)

	resp, err = sc.Execute("scene reset")
	is.NoErr(err)
	_, err = sc.Execute("scene")
	is.True(errors.Is(err, errNoScene))
}

func TestHelp(t *testing.T) {
	is := is.New(t)
	sc := newController(config.DefaultConfig(), io.Discard)
	resp, err := sc.Execute("help")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "estimate"))
	resp, err = sc.Execute("help scene")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "-prereach"))
	_, err = sc.Execute("help nothing")
	is.True(err != nil)
}

func TestCompleter(t *testing.T) {
	is := is.New(t)
	c := &ShellCompleter{}
	got, n := c.Do([]rune("est"), 3)
	is.Equal(n, 3)
	is.Equal(got, [][]rune{[]rune("imate")})

	line := []rune("scene -bakaze ")
	got, _ = c.Do(line, len(line))
	is.Equal(len(got), 4)

	line = []rune("scene -ha")
	got, n = c.Do(line, len(line))
	is.Equal(n, 3)
	is.Equal(got, [][]rune{[]rune("nd")})
}
