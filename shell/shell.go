// Package shell is an interactive console for poking at a trained danger
// tree: load a model, describe a discard decision and see how dangerous
// each candidate is.
package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/hoju/config"
	"github.com/domino14/hoju/dtree"
	"github.com/domino14/hoju/feature"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errNoModel           = errors.New("please load a model first with the `load` command")
	errNoScene           = errors.New("please set up a scene first with the `scene` command")
)

type shellcmd struct {
	cmd     string
	args    []string
	options map[string]string
}

// Response is the printable result of one command.
type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

type ShellController struct {
	l   *readline.Instance
	out io.Writer

	config  *config.Config
	catalog *feature.Catalog

	modelPath string
	model     *dtree.Model
	params    feature.SceneParams
	scene     *feature.Scene
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func NewShellController(cfg *config.Config) *ShellController {
	sc := newController(cfg, os.Stdout)
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mhoju>\033[0m ",
		HistoryFile:     "/tmp/hoju_readline.tmp",
		AutoComplete:    &ShellCompleter{sc: sc},
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc.l = l
	sc.out = l.Stdout()
	return sc
}

func newController(cfg *config.Config, out io.Writer) *ShellController {
	return &ShellController{
		out:     out,
		config:  cfg,
		catalog: feature.Default(),
	}
}

func (sc *ShellController) showMessage(msg string) {
	io.WriteString(sc.out, msg)
	io.WriteString(sc.out, "\n")
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// extractFields splits a line into a command, its positional arguments and
// its -name value options. Quoting follows shell rules, so tile lists can
// be passed as -hand "1m 2m 3m".
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := &shellcmd{cmd: fields[0], options: map[string]string{}}
	for i := 1; i < len(fields); i++ {
		if !strings.HasPrefix(fields[i], "-") {
			cmd.args = append(cmd.args, fields[i])
			continue
		}
		if i == len(fields)-1 {
			return nil, errWrongOptionSyntax
		}
		cmd.options[strings.TrimPrefix(fields[i], "-")] = fields[i+1]
		i++
	}
	return cmd, nil
}

// Execute runs one command line. exit is reported with io.EOF.
func (sc *ShellController) Execute(line string) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "exit", "quit":
		return nil, io.EOF
	case "help":
		return sc.help(cmd)
	case "load":
		return sc.load(cmd)
	case "scene":
		return sc.setScene(cmd)
	case "estimate":
		return sc.estimate(cmd)
	case "features":
		return sc.features(cmd)
	case "tree":
		return sc.tree(cmd)
	case "hist":
		return sc.hist(cmd)
	default:
		return nil, fmt.Errorf("command %q not found", cmd.cmd)
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			}
			continue
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		resp, err := sc.Execute(line)
		if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		if err != nil {
			sc.showError(err)
			continue
		}
		if resp != nil && resp.message != "" {
			sc.showMessage(resp.message)
		}
	}
	log.Debug().Msg("Exiting readline loop...")
}
