// Package shell is the interactive front end: it parses commands, feeds
// them to the statistics engine, and formats the results. It contains no
// statistics of its own.
package shell

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/TalZucker/ab-optix/config"
)

type ShellController struct {
	l   *readline.Instance
	cfg *config.Config
	out io.Writer
	p   *message.Printer
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func NewShellController(cfg *config.Config) *ShellController {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31maboptix>\033[0m ",
		HistoryFile:     "/tmp/aboptix_readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	return &ShellController{
		l:   l,
		cfg: cfg,
		out: os.Stdout,
		p:   message.NewPrinter(language.English),
	}
}

func (sc *ShellController) Loop() {
	defer sc.l.Close()
	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		if err := sc.execute(line); err != nil {
			showMessage("error: "+err.Error(), sc.out)
		}
	}
	log.Debug().Msg("shell-loop-exit")
}

func (sc *ShellController) execute(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd := fields[0]
	args, positional, err := parseArgs(fields[1:])
	if err != nil {
		return err
	}
	switch cmd {
	case "size":
		return sc.size(args)
	case "analyze":
		return sc.analyze(args)
	case "power":
		return sc.power(args)
	case "plan":
		if len(positional) != 1 {
			return fmt.Errorf("usage: plan <path/to/plan.yaml>")
		}
		return sc.plan(positional[0])
	case "set":
		if len(positional) != 2 {
			return fmt.Errorf("usage: set <key> <value>")
		}
		sc.set(positional[0], positional[1])
		return nil
	case "show":
		sc.show()
		return nil
	case "help":
		usage(sc.out)
		return nil
	}
	return fmt.Errorf("unknown command %q; try help", cmd)
}

// parseArgs splits tokens into key=value arguments and positional words.
func parseArgs(tokens []string) (map[string]string, []string, error) {
	args := map[string]string{}
	var positional []string
	for _, tok := range tokens {
		key, val, found := strings.Cut(tok, "=")
		if !found {
			positional = append(positional, tok)
			continue
		}
		if key == "" || val == "" {
			return nil, nil, fmt.Errorf("malformed argument %q", tok)
		}
		if _, seen := args[key]; seen {
			return nil, nil, fmt.Errorf("duplicate argument %q", key)
		}
		args[key] = val
	}
	return args, positional, nil
}

func argFloat(args map[string]string, key string, fallback float64) (float64, error) {
	raw, ok := args[key]
	if !ok {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("argument %s: %q is not a number", key, raw)
	}
	return v, nil
}

func argInt(args map[string]string, key string, fallback int) (int, error) {
	raw, ok := args[key]
	if !ok {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("argument %s: %q is not an integer", key, raw)
	}
	return v, nil
}

func argUint(args map[string]string, key string, fallback uint64) (uint64, error) {
	raw, ok := args[key]
	if !ok {
		return fallback, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("argument %s: %q is not an unsigned integer", key, raw)
	}
	return v, nil
}
