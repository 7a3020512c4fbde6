package commands

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/abiosoft/readline"
	shlex "github.com/anmitsu/go-shlex"

	"github.com/josephlewis42/wordexp/core/config"
	"github.com/josephlewis42/wordexp/core/env"
	"github.com/josephlewis42/wordexp/core/highlight"
	"github.com/josephlewis42/wordexp/core/logger"
	"github.com/josephlewis42/wordexp/core/shell"
)

const (
	// DirectivePrefix starts every line handled by the REPL itself rather than
	// the parser.
	DirectivePrefix = ":"

	// StatusUsage is returned for lines that can't be parsed.
	StatusUsage = 2
	// StatusNotFound is returned for unknown directives.
	StatusNotFound = 127
)

// Session is a REPL session: the settings used to parse and expand lines
// along with the bindings they're expanded against.
type Session struct {
	Config      *config.Configuration
	Parser      *shell.Parser
	Expander    *shell.Expander
	Highlighter *highlight.Highlighter
	Palette     highlight.Palette
	Log         *logger.SessionLogger

	// Vars holds the bindings lines are expanded against.
	Vars env.Bindings

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// IsTerminal is set if Stdout is a terminal.
	IsTerminal bool

	// Args holds the arguments of the running directive, Args[0] is its name.
	Args []string
	// line holds the raw text of the running directive.
	line string

	// OnLine, if set, is called with every non-blank line before it runs.
	OnLine func(line string)

	lastRet int
	history []string

	// Set to true to quit the REPL
	Quit bool
}

// NewSession creates a session configured by cfg that starts with the
// bindings vars and records its events to events.
func NewSession(cfg *config.Configuration, vars env.Bindings, events *logger.SessionLogger) *Session {
	s := &Session{
		Config:  cfg,
		Parser:  cfg.Parser(),
		Palette: highlight.DefaultPalette(),
		Log:     events,
		Vars:    vars,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}

	home := cfg.HomeResolver()
	if cfg.HomeDir == "" {
		// Follow the session's HOME so :set HOME=... changes what ~ means.
		home = &sessionHome{session: s}
	}
	s.Expander = shell.NewExpander(home)

	s.Highlighter = &highlight.Highlighter{
		IsDirective: IsDirective,
		IsCommand:   isCommand,
	}
	return s
}

type sessionHome struct {
	session *Session
}

func (h *sessionHome) UserHomeDir() (string, error) {
	home := &env.BindingsHome{Bindings: h.session.Vars}
	if dir, err := home.UserHomeDir(); err == nil {
		return dir, nil
	}
	return env.OSHome{}.UserHomeDir()
}

func isCommand(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// LastStatus returns the exit status of the last line run.
func (s *Session) LastStatus() int {
	return s.lastRet
}

// ShouldColor reports whether output should be colored.
func (s *Session) ShouldColor() bool {
	return s.Config.ShouldColor(s.IsTerminal)
}

// Highlight colors line if the session is colored.
func (s *Session) Highlight(line string) string {
	if !s.ShouldColor() {
		return line
	}
	return highlight.Render(s.Highlighter.Spans(line), s.Palette)
}

// RunLine runs a directive or parses and expands a command line, returning
// the exit status.
func (s *Session) RunLine(line string) int {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return s.lastRet
	}
	if s.OnLine != nil {
		s.OnLine(line)
	}

	if strings.HasPrefix(trimmed, DirectivePrefix) {
		s.lastRet = s.runDirective(trimmed)
	} else {
		s.lastRet = s.eval(line)
	}
	return s.lastRet
}

func (s *Session) runDirective(line string) int {
	args, err := shlex.Split(line, true)
	if err != nil || len(args) == 0 {
		// Directives may take partial lines, only the flags need to split
		// cleanly.
		args = strings.Fields(line)
	}

	name := args[0]
	directive, ok := AllDirectives[name]
	if !ok {
		fmt.Fprintf(s.Stderr, "wordexp: %s: unknown directive, try :help\n", name)
		s.record(&logger.DirectiveEvent{Name: name, Args: args[1:], Status: StatusNotFound})
		return StatusNotFound
	}

	s.Args = args
	s.line = line
	status := directive(s)
	s.record(&logger.DirectiveEvent{Name: name, Args: args[1:], Status: status})
	return status
}

// eval parses line, prints it back normalized, then prints its expansion.
func (s *Session) eval(line string) int {
	tree, err := s.Parser.Parse(line)
	s.record(logger.NewParseEvent(line, tree, err))
	if err != nil {
		return s.printError(err)
	}
	fmt.Fprintln(s.Stdout, s.Highlight(tree.String()))

	expanded, err := s.Expander.Tree(tree, s.Vars)
	s.record(logger.NewExpandEvent(line, expanded, err))
	if err != nil {
		return s.printError(err)
	}
	fmt.Fprintf(s.Stdout, "=> %s\n", expanded)
	return 0
}

// printError reports err and returns the matching exit status.
func (s *Session) printError(err error) int {
	prefix := "wordexp:"
	if s.ShouldColor() {
		prefix = ColorBoldRed.Sprint(prefix)
	}
	fmt.Fprintf(s.Stderr, "%s %s\n", prefix, err)
	return ExitStatus(err)
}

// ExitStatus maps an error from parsing or expanding a line to an exit
// status: StatusUsage for lines that can't be parsed, 1 for everything else.
func ExitStatus(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, shell.ErrSyntax),
		errors.Is(err, shell.ErrUnsupported),
		errors.Is(err, shell.ErrNestingLimit):
		return StatusUsage
	default:
		return 1
	}
}

func (s *Session) record(event logger.Event) {
	if s.Log == nil {
		return
	}
	if err := s.Log.Record(event); err != nil {
		log.Printf("couldn't record event: %v", err)
	}
}

// rest returns the raw text of the running directive after its first n
// arguments. Runs of tokens not separated by whitespace count as a single
// argument.
func (s *Session) rest(n int) string {
	tokens, err := shell.Lex(s.line, true)
	if err != nil {
		return ""
	}

	seen := 0
	afterSpace := true
	for _, tok := range tokens {
		if tok.Kind == shell.Space {
			afterSpace = true
			continue
		}
		if afterSpace {
			if seen == n {
				return s.line[tok.Pos:]
			}
			seen++
		}
		afterSpace = false
	}
	return ""
}

// RunInteractive reads lines from the session's input until it's closed or
// the session quits.
func (s *Session) RunInteractive() int {
	rl, err := s.newReadline()
	if err != nil {
		fmt.Fprintf(s.Stderr, "wordexp: %s\n", err)
		return 1
	}
	defer rl.Close()

	for !s.Quit {
		rl.SetPrompt(unescape(s.Config.Prompt))
		line, err := rl.Readline()

		switch {
		case err == io.EOF:
			return s.lastRet // Input closed, quit.

		case err == readline.ErrInterrupt:
			// Interrupt clears line.
			continue
		case err != nil:
			log.Printf("Error readline: %v", err)
			continue

		case len(strings.TrimSpace(line)) == 0:
			continue // empty line

		default:
			s.history = append(s.history, line)
			s.RunLine(line)
		}
	}
	return s.lastRet
}

func (s *Session) newReadline() (*readline.Instance, error) {
	var completions []readline.PrefixCompleterInterface
	for _, name := range ListDirectives() {
		completions = append(completions, readline.PcItem(name))
	}

	cfg := &readline.Config{
		Stdin:        readline.NewCancelableStdin(s.Stdin),
		Stdout:       s.Stdout,
		Stderr:       s.Stderr,
		AutoComplete: readline.NewPrefixCompleter(completions...),
		FuncIsTerminal: func() bool {
			return s.IsTerminal
		},
	}

	if err := cfg.Init(); err != nil {
		return nil, err
	}

	return readline.NewEx(cfg)
}
