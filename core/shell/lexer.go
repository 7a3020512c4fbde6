package shell

import (
	"strings"
)

const (
	notFound = -1
	tooDeep  = -2

	// maxQuoteNesting bounds how deeply quotes and substitutions may alternate
	// inside a single token, e.g. "$(echo "$(echo "...")")".
	maxQuoteNesting = 1024
)

// Lex splits a line into tokens.
//
// In interactive mode lexing never fails: unterminated quotes produce tokens
// with Closed set to false so a partially typed line can still be
// highlighted. Otherwise unterminated quotes, unterminated command
// substitutions and redirects without a target are reported as a
// *SyntaxError.
func Lex(line string, interactive bool) ([]Token, error) {
	l := &lexer{input: line, interactive: interactive}
	for l.pos < len(l.input) {
		if err := l.next(); err != nil {
			return nil, err
		}
	}
	return l.tokens, nil
}

type lexer struct {
	input       string
	pos         int
	interactive bool
	tokens      []Token
}

func (l *lexer) peek(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *lexer) emit(tok Token, start int) {
	tok.Pos = start
	tok.End = l.pos
	l.tokens = append(l.tokens, tok)
}

func (l *lexer) emitOp(kind TokenKind, width int) {
	start := l.pos
	l.pos += width
	l.emit(Token{Kind: kind}, start)
}

func (l *lexer) next() error {
	start := l.pos
	switch c := l.input[l.pos]; {
	case isSpace(c):
		for l.pos < len(l.input) && isSpace(l.input[l.pos]) {
			l.pos++
		}
		l.emit(Token{Kind: Space, Text: l.input[start:l.pos]}, start)
	case c == '|':
		if l.peek(1) == '|' {
			l.emitOp(Or, 2)
		} else {
			l.emitOp(Pipe, 1)
		}
	case c == '&':
		if l.peek(1) == '&' {
			l.emitOp(And, 2)
		} else {
			l.emitOp(Ampersand, 1)
		}
	case c == ';':
		l.emitOp(Semicolon, 1)
	case c == '(':
		l.emitOp(LParen, 1)
	case c == ')':
		l.emitOp(RParen, 1)
	case c == '>':
		return l.lexRedirectOutput(start, "")
	case c == '<':
		return l.lexRedirectInput(start)
	case c == '\'':
		return l.lexSingleQuoted()
	case c == '"':
		return l.lexDoubleQuoted()
	default:
		return l.lexString()
	}
	return nil
}

// lexString reads an unquoted run of text. A run made only of digits that is
// directly followed by '>' is the source descriptor of a redirect instead.
func (l *lexer) lexString() error {
	start := l.pos
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case isSpace(c) || isOperator(c) || c == '\'' || c == '"':
			if c == '>' && isDigits(l.input[start:l.pos]) {
				return l.lexRedirectOutput(start, l.input[start:l.pos])
			}
			l.emit(Token{Kind: String, Text: l.input[start:l.pos]}, start)
			return nil
		case c == '\\' && l.pos+1 < len(l.input):
			l.pos += 2
		case c == '$' && l.peek(1) == '(':
			end := closingParen(l.input, l.pos+2, 0)
			switch end {
			case tooDeep:
				return &NestingLimitError{Limit: maxQuoteNesting, Pos: l.pos}
			case notFound:
				if !l.interactive {
					return &SyntaxError{
						Msg:    "unterminated command substitution",
						Pos:    l.pos,
						Tokens: []Token{{Kind: String, Text: l.input[start:], Pos: start, End: len(l.input)}},
					}
				}
				l.pos = len(l.input)
			default:
				l.pos = end + 1
			}
		default:
			l.pos++
		}
	}
	l.emit(Token{Kind: String, Text: l.input[start:l.pos]}, start)
	return nil
}

func (l *lexer) lexSingleQuoted() error {
	start := l.pos
	end := strings.IndexByte(l.input[start+1:], '\'')
	if end < 0 {
		if !l.interactive {
			return unterminatedQuote(SingleQuoted, l.input, start)
		}
		l.pos = len(l.input)
		l.emit(Token{Kind: SingleQuoted, Text: l.input[start+1:]}, start)
		return nil
	}
	l.pos = start + 1 + end + 1
	l.emit(Token{Kind: SingleQuoted, Text: l.input[start+1 : start+1+end], Closed: true}, start)
	return nil
}

func (l *lexer) lexDoubleQuoted() error {
	start := l.pos
	text, end, err := l.readDoubleQuoted(start + 1)
	if err != nil {
		return err
	}
	if end == notFound {
		if !l.interactive {
			return unterminatedQuote(DoubleQuoted, l.input, start)
		}
		l.pos = len(l.input)
		l.emit(Token{Kind: DoubleQuoted, Text: text}, start)
		return nil
	}
	l.pos = end + 1
	l.emit(Token{Kind: DoubleQuoted, Text: text, Closed: true}, start)
	return nil
}

// readDoubleQuoted returns the contents of a double quoted string starting
// at i along with the index of the closing quote. Escaped quotes are
// unescaped, other escapes and command substitutions are copied verbatim.
func (l *lexer) readDoubleQuoted(i int) (string, int, error) {
	var sb strings.Builder
	for i < len(l.input) {
		c := l.input[i]
		switch {
		case c == '"':
			return sb.String(), i, nil
		case c == '\\' && i+1 < len(l.input):
			if l.input[i+1] != '"' {
				sb.WriteByte(c)
			}
			sb.WriteByte(l.input[i+1])
			i += 2
		case c == '$' && i+1 < len(l.input) && l.input[i+1] == '(':
			end := closingParen(l.input, i+2, 0)
			switch end {
			case tooDeep:
				return "", 0, &NestingLimitError{Limit: maxQuoteNesting, Pos: i}
			case notFound:
				if !l.interactive {
					return "", 0, &SyntaxError{
						Msg:    "unterminated command substitution",
						Pos:    i,
						Tokens: []Token{{Kind: DoubleQuoted, Text: l.input[i:], Pos: i, End: len(l.input)}},
					}
				}
				sb.WriteString(l.input[i:])
				return sb.String(), notFound, nil
			}
			sb.WriteString(l.input[i : end+1])
			i = end + 1
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String(), notFound, nil
}

func (l *lexer) lexRedirectOutput(start int, from string) error {
	// l.pos is on the '>'
	l.pos++
	appendOut := false
	if l.peek(0) == '>' {
		appendOut = true
		l.pos++
	}
	tok := Token{Kind: RedirectOutput, From: from, Append: appendOut}
	if err := l.lexTarget(&tok, start); err != nil {
		return err
	}
	l.emit(tok, start)
	return nil
}

func (l *lexer) lexRedirectInput(start int) error {
	l.pos++
	tok := Token{Kind: RedirectInput}
	if err := l.lexTarget(&tok, start); err != nil {
		return err
	}
	l.emit(tok, start)
	return nil
}

// lexTarget reads the whitespace and target word following a redirect
// operator into tok.
func (l *lexer) lexTarget(tok *Token, start int) error {
	wsStart := l.pos
	for l.pos < len(l.input) && (l.input[l.pos] == ' ' || l.input[l.pos] == '\t') {
		l.pos++
	}
	tok.Whitespace = l.input[wsStart:l.pos]
	tok.Target = String
	tok.Closed = true

	c := l.peek(0)
	switch {
	case c == '&' && (isDigit(l.peek(1)) || l.peek(1) == '-'):
		targetStart := l.pos
		l.pos++
		for l.pos < len(l.input) && (isDigit(l.input[l.pos]) || l.input[l.pos] == '-') {
			l.pos++
		}
		tok.Text = l.input[targetStart:l.pos]
		return nil
	case c == 0 || isOperator(c):
		if l.interactive {
			return nil
		}
		return &SyntaxError{
			Msg:    "expected a redirect target",
			Pos:    l.pos,
			Tokens: []Token{{Kind: tok.Kind, From: tok.From, Append: tok.Append, Whitespace: tok.Whitespace, Pos: start, End: l.pos}},
		}
	case c == '\'':
		if err := l.lexSingleQuoted(); err != nil {
			return err
		}
	case c == '"':
		if err := l.lexDoubleQuoted(); err != nil {
			return err
		}
	default:
		if err := l.lexString(); err != nil {
			return err
		}
	}

	// The target was emitted as its own token, fold it back into the redirect.
	target := l.tokens[len(l.tokens)-1]
	l.tokens = l.tokens[:len(l.tokens)-1]
	if target.Kind == RedirectOutput {
		// "> 2>x" reads the digits as a new redirect; treat that as text.
		l.pos = target.Pos + len(target.From)
		target = Token{Kind: String, Text: target.From, Closed: true}
	}
	tok.Text = target.Text
	tok.Target = target.Kind
	tok.Closed = target.Kind == String || target.Closed
	return nil
}

// closingParen returns the index of the ')' closing a command substitution
// whose body starts at i. Quotes, escapes and nested parentheses inside the
// body are skipped over.
func closingParen(s string, i, level int) int {
	if level > maxQuoteNesting {
		return tooDeep
	}
	depth := 0
	for i < len(s) {
		switch s[i] {
		case '\\':
			i += 2
			continue
		case '\'':
			end := strings.IndexByte(s[i+1:], '\'')
			if end < 0 {
				return notFound
			}
			i += end + 2
			continue
		case '"':
			end := closingQuote(s, i+1, level+1)
			if end < 0 {
				return end
			}
			i = end + 1
			continue
		case '(':
			depth++
		case ')':
			if depth == 0 {
				return i
			}
			depth--
		}
		i++
	}
	return notFound
}

// closingQuote returns the index of the '"' closing a double quoted string
// whose contents start at i.
func closingQuote(s string, i, level int) int {
	if level > maxQuoteNesting {
		return tooDeep
	}
	for i < len(s) {
		switch {
		case s[i] == '\\':
			i += 2
		case s[i] == '"':
			return i
		case s[i] == '$' && i+1 < len(s) && s[i+1] == '(':
			end := closingParen(s, i+2, level+1)
			if end < 0 {
				return end
			}
			i = end + 1
		default:
			i++
		}
	}
	return notFound
}

func quoteName(kind TokenKind) string {
	if kind == SingleQuoted {
		return "single"
	}
	return "double"
}

func unterminatedQuote(kind TokenKind, input string, start int) error {
	return &SyntaxError{
		Msg:    "unterminated " + quoteName(kind) + " quote",
		Pos:    start,
		Tokens: []Token{{Kind: kind, Text: input[start+1:], Pos: start, End: len(input)}},
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isOperator(c byte) bool {
	switch c {
	case '|', '&', ';', '(', ')', '<', '>':
		return true
	}
	return false
}
