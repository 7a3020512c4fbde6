// Package highlight classifies the tokens of a partially typed command line
// for display.
package highlight

import (
	"strings"

	"github.com/fatih/color"

	"github.com/josephlewis42/wordexp/core/shell"
)

// Class is the display category of a piece of a command line.
type Class int

const (
	Whitespace Class = iota
	Command
	UnknownCommand
	Directive
	Argument
	Flag
	Assignment
	SingleQuoted
	DoubleQuoted
	Incomplete
	Pipe
	Separator
	Redirect
	Operator
)

var classNames = map[Class]string{
	Whitespace:     "whitespace",
	Command:        "command",
	UnknownCommand: "unknown-command",
	Directive:      "directive",
	Argument:       "argument",
	Flag:           "flag",
	Assignment:     "assignment",
	SingleQuoted:   "single-quoted",
	DoubleQuoted:   "double-quoted",
	Incomplete:     "incomplete",
	Pipe:           "pipe",
	Separator:      "separator",
	Redirect:       "redirect",
	Operator:       "operator",
}

func (c Class) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return "unknown"
}

// Span is a run of text sharing a class.
type Span struct {
	Class Class
	Text  string
}

// Highlighter splits lines into classified spans.
type Highlighter struct {
	// IsDirective reports whether a command name is handled by the REPL
	// itself. May be nil.
	IsDirective func(name string) bool
	// IsCommand reports whether a command name can be found. If nil every
	// name is assumed to exist.
	IsCommand func(name string) bool
}

// Spans lexes line in interactive mode and classifies every token. Words in
// command position are classified as commands, which works without a full
// parse so it also works on lines that don't parse yet.
func (h *Highlighter) Spans(line string) []Span {
	tokens, err := shell.Lex(line, true)
	if err != nil {
		return []Span{{Class: Incomplete, Text: line}}
	}

	var (
		out  []Span
		prev *shell.Token
	)
	for i := range tokens {
		tok := tokens[i]
		if tok.Kind == shell.Space {
			out = append(out, Span{Class: Whitespace, Text: tok.Text})
			continue
		}

		commandPosition := startsCommand(prev)
		switch tok.Kind {
		case shell.String:
			if name, value, ok := tok.Assignment(); ok && commandPosition {
				out = append(out,
					Span{Class: Argument, Text: name},
					Span{Class: Assignment, Text: "="},
				)
				if value != "" {
					out = append(out, Span{Class: Argument, Text: value})
				}
				break
			}
			out = append(out, Span{Class: h.wordClass(tok, commandPosition), Text: tok.Text})

		case shell.SingleQuoted, shell.DoubleQuoted:
			// The token holds unescaped text, the span keeps what was typed.
			out = append(out, Span{Class: h.wordClass(tok, commandPosition), Text: line[tok.Pos:tok.End]})

		case shell.Pipe:
			out = append(out, Span{Class: Pipe, Text: tok.Source()})

		case shell.Semicolon:
			out = append(out, Span{Class: Separator, Text: tok.Source()})

		case shell.RedirectOutput, shell.RedirectInput:
			class := Redirect
			if !tok.Closed {
				class = Incomplete
			}
			out = append(out, Span{Class: class, Text: line[tok.Pos:tok.End]})

		default:
			out = append(out, Span{Class: Operator, Text: tok.Source()})
		}
		prev = &tokens[i]
	}
	return out
}

func (h *Highlighter) wordClass(tok shell.Token, commandPosition bool) Class {
	if tok.Kind != shell.String && !tok.Closed {
		return Incomplete
	}

	if commandPosition {
		switch {
		case h.IsDirective != nil && h.IsDirective(tok.Text):
			return Directive
		case h.IsCommand != nil && !h.IsCommand(tok.Text):
			return UnknownCommand
		default:
			return Command
		}
	}

	switch tok.Kind {
	case shell.SingleQuoted:
		return SingleQuoted
	case shell.DoubleQuoted:
		return DoubleQuoted
	}
	if strings.HasPrefix(tok.Text, "-") {
		return Flag
	}
	return Argument
}

// startsCommand reports whether the word after prev is in command position:
// at the start of the line, after an operator or redirect, or after an
// assignment.
func startsCommand(prev *shell.Token) bool {
	if prev == nil {
		return true
	}
	switch prev.Kind {
	case shell.String:
		_, _, ok := prev.Assignment()
		return ok
	case shell.SingleQuoted, shell.DoubleQuoted:
		return false
	}
	return true
}

// Palette maps classes to colors. Classes without an entry are written
// uncolored.
type Palette map[Class]*color.Color

// DefaultPalette returns the colors used by the REPL.
func DefaultPalette() Palette {
	p := Palette{
		Command:        color.New(color.FgGreen, color.Bold),
		UnknownCommand: color.New(color.FgRed, color.Bold),
		Directive:      color.New(color.FgCyan, color.Bold),
		Flag:           color.New(color.FgBlue),
		Assignment:     color.New(color.FgMagenta),
		SingleQuoted:   color.New(color.FgYellow),
		DoubleQuoted:   color.New(color.FgYellow),
		Incomplete:     color.New(color.FgRed, color.Underline),
		Pipe:           color.New(color.FgMagenta, color.Bold),
		Separator:      color.New(color.FgMagenta, color.Bold),
		Redirect:       color.New(color.FgCyan),
		Operator:       color.New(color.FgRed),
	}
	for _, c := range p {
		// Whether to color at all is decided by the caller.
		c.EnableColor()
	}
	return p
}

// Render joins spans, coloring each one from the palette. A nil palette
// gives back the plain text.
func Render(spans []Span, palette Palette) string {
	var sb strings.Builder
	for _, span := range spans {
		if c, ok := palette[span.Class]; ok {
			sb.WriteString(c.Sprint(span.Text))
		} else {
			sb.WriteString(span.Text)
		}
	}
	return sb.String()
}
