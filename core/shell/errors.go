package shell

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSyntax is matched by every *SyntaxError.
	ErrSyntax = errors.New("syntax error")
	// ErrUnsupported is matched by every *UnsupportedError.
	ErrUnsupported = errors.New("not yet supported")
	// ErrUnresolvedExpansion is matched by every *UnresolvedExpansionError.
	ErrUnresolvedExpansion = errors.New("unresolved expansion")
	// ErrNestingLimit is matched by every *NestingLimitError.
	ErrNestingLimit = errors.New("nesting limit exceeded")
)

// SyntaxError is returned when a line can't be turned into commands.
type SyntaxError struct {
	Msg string
	// Pos is the byte offset of the error in the line being parsed.
	Pos int
	// Tokens holds the offending token run, if known.
	Tokens []Token
}

func (e *SyntaxError) Error() string {
	if near := tokenSource(e.Tokens); near != "" {
		return fmt.Sprintf("syntax error near `%s': %s", near, e.Msg)
	}
	return fmt.Sprintf("syntax error: %s", e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// UnsupportedError is returned for shell features the parser recognizes but
// does not implement yet.
type UnsupportedError struct {
	Feature string
	Pos     int
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s is not yet supported", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

// UnresolvedExpansionError is returned when a word holds an expansion that
// needs a subprocess or the filesystem to resolve.
type UnresolvedExpansionError struct {
	Expansion Expansion
}

func (e *UnresolvedExpansionError) Error() string {
	switch exp := e.Expansion.(type) {
	case *CmdSubst:
		return fmt.Sprintf("command substitution $(%s) not yet implemented", exp.Tree)
	case *GlobExp:
		return fmt.Sprintf("glob expansion %q not yet implemented", exp.Pattern)
	}
	return fmt.Sprintf("expansion %v not yet implemented", e.Expansion)
}

func (e *UnresolvedExpansionError) Unwrap() error {
	return ErrUnresolvedExpansion
}

// NestingLimitError is returned when command substitutions nest deeper than
// the parser allows.
type NestingLimitError struct {
	Limit int
	Pos   int
}

func (e *NestingLimitError) Error() string {
	return fmt.Sprintf("command substitutions nested deeper than %d levels", e.Limit)
}

func (e *NestingLimitError) Unwrap() error {
	return ErrNestingLimit
}

// ErrorKind gives a short stable name for the class of err, suitable for
// logs and reports.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSyntax):
		return "syntax"
	case errors.Is(err, ErrUnsupported):
		return "unsupported"
	case errors.Is(err, ErrUnresolvedExpansion):
		return "unresolved_expansion"
	case errors.Is(err, ErrNestingLimit):
		return "nesting_limit"
	default:
		return "other"
	}
}

func tokenSource(tokens []Token) string {
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(tok.Source())
	}
	return strings.TrimSpace(sb.String())
}
