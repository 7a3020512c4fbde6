package shell

import (
	"fmt"
	"strings"
)

// TokenKind is the type of a lexical token.
type TokenKind int

const (
	String TokenKind = iota
	SingleQuoted
	DoubleQuoted
	RedirectOutput
	RedirectInput
	Pipe
	Semicolon
	Space
	And
	Or
	Ampersand
	LParen
	RParen
)

func (k TokenKind) String() string {
	switch k {
	case String:
		return "String"
	case SingleQuoted:
		return "SingleQuoted"
	case DoubleQuoted:
		return "DoubleQuoted"
	case RedirectOutput:
		return "RedirectOutput"
	case RedirectInput:
		return "RedirectInput"
	case Pipe:
		return "Pipe"
	case Semicolon:
		return "Semicolon"
	case Space:
		return "Space"
	case And:
		return "And"
	case Or:
		return "Or"
	case Ampersand:
		return "Ampersand"
	case LParen:
		return "LParen"
	case RParen:
		return "RParen"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Token is a single lexical unit of a command line.
type Token struct {
	Kind TokenKind

	// Text holds the string contents for String and quoted tokens, the
	// whitespace run for Space tokens and the target for redirects.
	Text string

	// Closed is false for a quoted string missing its closing quote.
	Closed bool

	// From is the file descriptor of an output redirect, empty for the
	// default (stdout).
	From string
	// Whitespace holds any whitespace between a redirect operator and its
	// target.
	Whitespace string
	// Append is set for >> redirects.
	Append bool
	// Target is the kind of the redirect target: String, SingleQuoted or
	// DoubleQuoted.
	Target TokenKind

	// Pos and End are the byte offsets of the token in the input line.
	Pos int
	End int
}

// IsWord reports whether the token contributes text to a word.
func (t Token) IsWord() bool {
	switch t.Kind {
	case String, SingleQuoted, DoubleQuoted:
		return true
	}
	return false
}

// Assignment splits a NAME=VALUE token. Only unquoted String tokens with a
// valid variable name before the first '=' are assignments.
func (t Token) Assignment() (name, value string, ok bool) {
	if t.Kind != String {
		return "", "", false
	}
	eq := strings.IndexByte(t.Text, '=')
	if eq <= 0 || !isName(t.Text[:eq]) {
		return "", "", false
	}
	return t.Text[:eq], t.Text[eq+1:], true
}

// Source reconstructs the token roughly as it was typed.
func (t Token) Source() string {
	switch t.Kind {
	case String, Space:
		return t.Text
	case SingleQuoted:
		if t.Closed {
			return "'" + t.Text + "'"
		}
		return "'" + t.Text
	case DoubleQuoted:
		if t.Closed {
			return `"` + t.Text + `"`
		}
		return `"` + t.Text
	case RedirectOutput:
		op := ">"
		if t.Append {
			op = ">>"
		}
		return t.From + op + t.Whitespace + t.targetSource()
	case RedirectInput:
		return "<" + t.Whitespace + t.targetSource()
	case Pipe:
		return "|"
	case Semicolon:
		return ";"
	case And:
		return "&&"
	case Or:
		return "||"
	case Ampersand:
		return "&"
	case LParen:
		return "("
	case RParen:
		return ")"
	}
	return ""
}

func (t Token) targetSource() string {
	return Token{Kind: t.Target, Text: t.Text, Closed: t.Closed}.Source()
}

func (t Token) String() string {
	switch t.Kind {
	case SingleQuoted, DoubleQuoted:
		return fmt.Sprintf("%s(%q, closed=%t)", t.Kind, t.Text, t.Closed)
	case RedirectOutput:
		return fmt.Sprintf("%s(from=%q, to=%q, ws=%q, append=%t)", t.Kind, t.From, t.Text, t.Whitespace, t.Append)
	case String, RedirectInput, Space:
		return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
	}
	return t.Kind.String()
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}

func isName(s string) bool {
	if s == "" || !isNameStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isNameChar(s[i]) {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
