// Package console provides an optional interactive command source for
// driving a running *sim.Simulator by hand — advancing ticks, stopping
// it, and inspecting registered blocks — styled directly on
// server/console/console.go's reader/prompt/history split. It is ambient
// tooling, not part of the simulation core.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	prompt "github.com/c-bata/go-prompt"

	"github.com/adamantsim/flowsim/sim"
)

const (
	defaultPromptPrefix = "> "
	maxHistoryEntries   = 128
)

// Inspectable is anything a console user might want to print the current
// state of — the stable count/size surface every block primitive exposes
// (spec.md §6: sink.count, queue.size, gate.state, ...).
type Inspectable interface {
	fmt.Stringer
}

// Console reads command lines from an io.Reader (os.Stdin by default) and
// executes them against a bound *sim.Simulator.
type Console struct {
	sim     *sim.Simulator
	log     *slog.Logger
	reader  io.Reader
	history []string

	blocks map[string]Inspectable
}

// New returns a Console bound to simulator, logging to log (which
// defaults to slog.Default() if nil, matching console.New in the teacher
// repo).
func New(simulator *sim.Simulator, log *slog.Logger) *Console {
	if log == nil {
		log = slog.Default()
	}
	return &Console{sim: simulator, log: log, reader: os.Stdin, blocks: make(map[string]Inspectable)}
}

// WithReader sets a custom reader for console input, bypassing the
// interactive prompt — used to drive the console from a test or a script.
func (c *Console) WithReader(r io.Reader) *Console {
	if r != nil {
		c.reader = r
	}
	return c
}

// RegisterInspectable makes name available to the "inspect" command,
// printing b.String() when invoked.
func (c *Console) RegisterInspectable(name string, b Inspectable) {
	c.blocks[name] = b
}

// Run starts consuming commands. It blocks until ctx is cancelled or the
// reader reaches EOF.
func (c *Console) Run(ctx context.Context) {
	if c.reader != os.Stdin {
		c.runScanner(ctx)
		return
	}
	c.runInteractive(ctx)
}

func (c *Console) runScanner(ctx context.Context) {
	scanner := bufio.NewScanner(c.reader)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				c.log.Error("console input error", "err", err)
			}
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		c.execute(line)
	}
}

func (c *Console) runInteractive(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line := prompt.Input(defaultPromptPrefix, c.complete,
			prompt.OptionTitle("flowsim console"),
			prompt.OptionHistory(c.history),
			prompt.OptionPrefix(defaultPromptPrefix),
			prompt.OptionCompletionOnDown(),
			prompt.OptionMaxSuggestion(12),
		)

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		c.execute(line)
	}
}

func (c *Console) execute(line string) {
	c.history = append(c.history, line)
	if len(c.history) > maxHistoryEntries {
		c.history = c.history[len(c.history)-maxHistoryEntries:]
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	verb, args := strings.ToLower(fields[0]), fields[1:]

	switch verb {
	case "tick":
		c.sim.Step()
		c.log.Info("advanced one tick", "tick", c.sim.CurrentTick())
	case "run":
		c.cmdRun(args)
	case "stop":
		c.sim.Stop()
		c.log.Info("stop requested", "tick", c.sim.CurrentTick())
	case "inspect":
		c.cmdInspect(args)
	case "help":
		c.printHelp()
	default:
		c.log.Error("unrecognized command", "verb", verb)
	}
}

func (c *Console) cmdRun(args []string) {
	if len(args) != 1 {
		c.log.Error("usage: run <ticks>")
		return
	}
	n, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || n < 0 {
		c.log.Error("run: invalid tick count", "arg", args[0])
		return
	}
	for i := int64(0); i < n; i++ {
		c.sim.Step()
	}
	c.log.Info("ran ticks", "count", n, "tick", c.sim.CurrentTick())
}

func (c *Console) cmdInspect(args []string) {
	if len(args) != 1 {
		names := make([]string, 0, len(c.blocks))
		for name := range c.blocks {
			names = append(names, name)
		}
		sort.Strings(names)
		c.log.Info("usage: inspect <name>", "available", strings.Join(names, ", "))
		return
	}
	b, ok := c.blocks[args[0]]
	if !ok {
		c.log.Error("inspect: no such block", "name", args[0])
		return
	}
	c.log.Info("inspect", "name", args[0], "state", b.String())
}

func (c *Console) printHelp() {
	for _, line := range []string{
		"tick              advance the simulator by one tick",
		"run <n>           advance the simulator by n ticks",
		"stop              request the simulator stop after the current tick",
		"inspect [name]    print a registered block's inspection state",
	} {
		c.log.Info(line)
	}
}

var builtinVerbs = []string{"tick", "run", "stop", "inspect", "help"}

func (c *Console) complete(doc prompt.Document) []prompt.Suggest {
	word := doc.GetWordBeforeCursor()
	textBefore := doc.TextBeforeCursor()
	segments := strings.Fields(textBefore)

	if len(segments) <= 1 && !strings.HasSuffix(textBefore, " ") {
		suggestions := make([]prompt.Suggest, 0, len(builtinVerbs))
		for _, v := range builtinVerbs {
			suggestions = append(suggestions, prompt.Suggest{Text: v})
		}
		return prompt.FilterHasPrefix(suggestions, word, true)
	}

	if strings.ToLower(segments[0]) == "inspect" {
		names := make([]string, 0, len(c.blocks))
		for name := range c.blocks {
			names = append(names, name)
		}
		sort.Strings(names)
		suggestions := make([]prompt.Suggest, 0, len(names))
		for _, name := range names {
			suggestions = append(suggestions, prompt.Suggest{Text: name})
		}
		return prompt.FilterHasPrefix(suggestions, word, true)
	}
	return nil
}
