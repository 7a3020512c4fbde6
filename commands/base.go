package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	getopt "github.com/pborman/getopt/v2"
)

// DirectiveFunc runs a REPL directive against a session and returns its exit
// status. The directive's arguments are in s.Args.
type DirectiveFunc func(s *Session) int

// AllDirectives holds all registered directives by name.
var AllDirectives = make(map[string]DirectiveFunc)

// directiveHelp holds the one line description of each directive.
var directiveHelp = make(map[string]string)

// addDirective registers a directive under :name.
func addDirective(name, short string, fn DirectiveFunc) {
	AllDirectives[":"+name] = fn
	directiveHelp[":"+name] = short
}

// ListDirectives returns the names of all directives, sorted.
func ListDirectives() []string {
	var out []string
	for name := range AllDirectives {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// IsDirective reports whether name is a registered directive.
func IsDirective(name string) bool {
	_, ok := AllDirectives[name]
	return ok
}

type SimpleCommand struct {
	// Use holds a one line usage string
	Use string
	// Short holds a sone line description of the command.
	Short string
	// ShowHelp sets whether help is displayed or not.
	// If this is non-nil when Run() is called, then the default help flag isn't
	// added.
	ShowHelp *bool

	flags *getopt.Set
}

// Flags gets the command's flag set.
func (s *SimpleCommand) Flags() *getopt.Set {
	if s.flags == nil {
		s.flags = getopt.New()
	}

	return s.flags
}

// PrintHelp writes help for the command to the given writer.
func (s *SimpleCommand) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, s.Use)
	fmt.Fprintln(w, s.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	s.Flags().PrintOptions(w)
}

// Run the command, if flag parsing was succcessful call the callback.
func (s *SimpleCommand) Run(session *Session, callback func() int) int {
	opts := s.Flags()

	// Add help flag if not overridden.
	if s.ShowHelp == nil {
		s.ShowHelp = opts.BoolLong("help", 'h', "show this help and exit")
	}

	if err := opts.Getopt(session.Args, nil); err != nil {
		fmt.Fprintf(session.Stderr, "error: %s\n\n", err)

		s.PrintHelp(session.Stdout)
		return 1
	}

	if *s.ShowHelp {
		s.PrintHelp(session.Stdout)
		return 0
	}

	return callback()
}

// Consumed returns the number of arguments, including the directive name,
// taken up by flags.
func (s *SimpleCommand) Consumed(session *Session) int {
	return len(session.Args) - s.Flags().NArgs()
}

const (
	colorAlways = "always"
	colorAuto   = "auto"
	colorNever  = "never"
)

var (
	ColorBoldGreen = color.New(color.FgGreen, color.Bold)
	ColorBoldRed   = color.New(color.FgRed, color.Bold)
)

func init() {
	// Whether to color is decided by ColorPrinter, not the terminal
	// detection of the color package.
	for _, c := range []*color.Color{ColorBoldGreen, ColorBoldRed} {
		c.EnableColor()
	}
}

type ColorPrinter struct {
	value   *string
	session *Session
}

// Init sets up the flag and session to determine the color output.
func (c *ColorPrinter) Init(flags *getopt.Set, session *Session) {
	c.session = session
	c.value = flags.EnumLong(
		"color",
		rune(0), // No short flag.
		[]string{colorAlways, colorAuto, colorNever},
		colorAuto,
		"colorize the output (always|auto|never)")
}

func (c *ColorPrinter) ShouldColor() bool {
	switch {
	case *c.value == colorNever:
		return false
	case *c.value == colorAlways:
		return true
	default:
		return c.session.ShouldColor()
	}
}

func (c *ColorPrinter) Sprintf(color *color.Color, format string, a ...interface{}) string {
	if c.ShouldColor() {
		return color.Sprintf(format, a...)
	}
	return fmt.Sprintf(format, a...)
}
