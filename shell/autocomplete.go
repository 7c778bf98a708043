package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

// ShellCompleter implements readline.AutoCompleter.
type ShellCompleter struct {
	sc *ShellController
}

var commandNames = []string{
	"estimate", "exit", "features", "help", "hist", "load", "scene", "tree",
}

var sceneOptions = []string{
	"-bakaze", "-dora", "-hand", "-jikaze", "-prereach", "-safe", "-visible",
}

var windValues = []string{"E", "S", "W", "N"}

// Do completes command names, scene options and wind values.
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])
	fields, err := shellquote.Split(text)
	if err != nil {
		// unterminated quote; fall back to plain splitting
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string
	switch {
	case len(fields) == 0 || (len(fields) == 1 && !endsWithSpace):
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	case fields[0] == "scene":
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}
		last := fields[len(fields)-1]
		if !endsWithSpace && len(fields) > 1 {
			last = fields[len(fields)-2]
		}
		switch last {
		case "-bakaze", "-jikaze":
			completions = windValues
		default:
			completions = sceneOptions
		}
	case fields[0] == "help":
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}
		completions = commandNames
	}

	var out [][]rune
	for _, cand := range completions {
		if strings.HasPrefix(cand, prefix) {
			out = append(out, []rune(cand[len(prefix):]))
		}
	}
	return out, len([]rune(prefix))
}
