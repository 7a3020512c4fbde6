package shell

// Defined loosely by
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/V3_chap02.html
//
// The shell breaks the input into tokens: words and operators, then parses
// them into simple commands chained by pipes and separated by semicolons.
// Each word is scanned for the expansions it will need (parameters, tilde,
// pathname patterns and command substitutions); command substitutions are
// parsed immediately into their own syntax trees. Compound commands, lists
// joined by && and ||, and background execution are recognized and rejected.

// DefaultMaxDepth is the default limit on nested command substitutions.
const DefaultMaxDepth = 32

// Parser turns command lines into syntax trees.
type Parser struct {
	// MaxDepth bounds how deeply command substitutions may nest,
	// DefaultMaxDepth is used if it's zero.
	MaxDepth int
}

// NewParser creates a parser with the default settings.
func NewParser() *Parser {
	return &Parser{MaxDepth: DefaultMaxDepth}
}

// Parse parses a line with the default parser.
func Parse(line string) (*SyntaxTree, error) {
	return NewParser().Parse(line)
}

// ParseTokens parses an already lexed line with the default parser.
func ParseTokens(tokens []Token) (*SyntaxTree, error) {
	return NewParser().ParseTokens(tokens)
}

// Parse lexes and parses a line.
func (p *Parser) Parse(line string) (*SyntaxTree, error) {
	return p.parse(line, 0)
}

// ParseTokens parses the output of Lex.
func (p *Parser) ParseTokens(tokens []Token) (*SyntaxTree, error) {
	return p.parseTokens(tokens, 0)
}

func (p *Parser) maxDepth() int {
	if p.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return p.MaxDepth
}

func (p *Parser) parse(line string, depth int) (*SyntaxTree, error) {
	tokens, err := Lex(line, false)
	if err != nil {
		return nil, err
	}
	return p.parseTokens(tokens, depth)
}

func (p *Parser) parseTokens(tokens []Token, depth int) (*SyntaxTree, error) {
	groups, _ := splitTokens(tokens, Semicolon)
	tree := &SyntaxTree{Commands: make([]CommandType, 0, len(groups))}

	for _, group := range groups {
		if isBlank(group) {
			continue
		}

		stages, pipes := splitTokens(group, Pipe)
		var commands []*Command
		for i, stage := range stages {
			if isBlank(stage) {
				pipe := pipes[0]
				if i > 0 {
					pipe = pipes[i-1]
				}
				return nil, &SyntaxError{
					Msg:    "expected a command on both sides of '|'",
					Pos:    pipe.Pos,
					Tokens: group,
				}
			}

			cmd, err := p.parseCommand(stage, depth)
			if err != nil {
				return nil, err
			}
			commands = append(commands, cmd)
		}

		if len(commands) == 1 {
			tree.Commands = append(tree.Commands, &Single{Command: commands[0]})
		} else {
			tree.Commands = append(tree.Commands, &Pipeline{Commands: commands})
		}
	}

	return tree, nil
}

func (p *Parser) parseCommand(tokens []Token, depth int) (*Command, error) {
	cmd := &Command{}
	haveName := false

	addMeta := func(m Meta) {
		if haveName {
			cmd.Suffixes = append(cmd.Suffixes, m)
		} else {
			cmd.Prefixes = append(cmd.Prefixes, m)
		}
	}

	for i := 0; i < len(tokens); {
		tok := tokens[i]
		switch tok.Kind {
		case Space:
			i++

		case String, SingleQuoted, DoubleQuoted:
			end := i + 1
			for end < len(tokens) && tokens[end].IsWord() {
				end++
			}
			run := tokens[i:end]
			i = end

			meta, err := p.parseWordRun(run, !haveName, depth)
			if err != nil {
				return nil, err
			}
			if arg, ok := meta.(*Arg); ok && !haveName {
				if len(run) == 1 && run[0].Kind == String && (run[0].Text == "{" || run[0].Text == "}") {
					return nil, &UnsupportedError{Feature: "command grouping", Pos: run[0].Pos}
				}
				cmd.Name = arg.Word
				haveName = true
				continue
			}
			addMeta(meta)

		case RedirectOutput, RedirectInput:
			// Word tokens right after the target continue it, as in >out"put".
			end := i + 1
			for end < len(tokens) && tokens[end].IsWord() {
				end++
			}
			redirect, err := p.parseRedirect(tok, tokens[i+1:end], depth)
			if err != nil {
				return nil, err
			}
			addMeta(redirect)
			i = end

		case And:
			return nil, &UnsupportedError{Feature: "logical AND (&&)", Pos: tok.Pos}
		case Or:
			return nil, &UnsupportedError{Feature: "logical OR (||)", Pos: tok.Pos}
		case Ampersand:
			return nil, &UnsupportedError{Feature: "background execution (&)", Pos: tok.Pos}
		case LParen, RParen:
			return nil, &UnsupportedError{Feature: "subshells", Pos: tok.Pos}

		default:
			return nil, &SyntaxError{Msg: "unexpected " + tok.Kind.String(), Pos: tok.Pos, Tokens: tokens}
		}
	}

	if !haveName {
		pos := 0
		if len(tokens) > 0 {
			pos = tokens[0].Pos
		}
		return nil, &SyntaxError{Msg: "missing command name", Pos: pos, Tokens: tokens}
	}
	return cmd, nil
}

// parseWordRun turns adjacent word tokens into one word. In prefix position a
// leading NAME=VALUE token makes the run an assignment.
func (p *Parser) parseWordRun(run []Token, prefix bool, depth int) (Meta, error) {
	for _, tok := range run {
		if !tok.Closed && tok.Kind != String {
			return nil, &SyntaxError{Msg: "unterminated " + quoteName(tok.Kind) + " quote", Pos: tok.Pos, Tokens: []Token{tok}}
		}
	}

	var parts []wordPart
	name, value, isAssign := run[0].Assignment()
	if prefix && isAssign {
		parts = append(parts, wordPart{text: value, mode: scanAll})
	} else {
		isAssign = false
		parts = append(parts, partOf(run[0]))
	}
	for _, tok := range run[1:] {
		parts = append(parts, partOf(tok))
	}

	word, err := p.joinParts(parts, depth)
	if err != nil {
		return nil, err
	}
	if isAssign {
		return &Assign{Name: NewWord(name), Value: word}, nil
	}
	return &Arg{Word: word}, nil
}

// parseRedirect builds a redirect from its token and the word tokens adjacent
// to its target.
func (p *Parser) parseRedirect(tok Token, rest []Token, depth int) (Redirect, error) {
	if !hasTarget(tok) {
		return nil, &SyntaxError{Msg: "expected a redirect target", Pos: tok.Pos, Tokens: []Token{tok}}
	}
	if !tok.Closed {
		return nil, &SyntaxError{Msg: "unterminated quote in redirect target", Pos: tok.Pos, Tokens: []Token{tok}}
	}

	parts := []wordPart{partOf(Token{Kind: tok.Target, Text: tok.Text})}
	for _, t := range rest {
		if !t.Closed && t.Kind != String {
			return nil, &SyntaxError{Msg: "unterminated " + quoteName(t.Kind) + " quote", Pos: t.Pos, Tokens: []Token{t}}
		}
		parts = append(parts, partOf(t))
	}

	to, err := p.joinParts(parts, depth)
	if err != nil {
		return nil, err
	}

	if tok.Kind == RedirectInput {
		return &RedirIn{To: to}, nil
	}
	out := &RedirOut{To: to, Append: tok.Append}
	if tok.From != "" {
		from := NewWord(tok.From)
		out.From = &from
	}
	return out, nil
}

// hasTarget reports whether a redirect token has a target. Quoted targets
// count even when they're empty; an unquoted one can only be empty if it's
// missing.
func hasTarget(tok Token) bool {
	return tok.Target != String || tok.Text != ""
}

type wordPart struct {
	text string
	mode scanMode
}

func partOf(tok Token) wordPart {
	switch tok.Kind {
	case SingleQuoted:
		return wordPart{text: tok.Text, mode: scanNone}
	case DoubleQuoted:
		return wordPart{text: tok.Text, mode: scanParamsAndCommands}
	default:
		return wordPart{text: tok.Text, mode: scanAll}
	}
}

// joinParts scans each part with its own mode and concatenates them,
// shifting expansion ranges to their offset in the joined text.
func (p *Parser) joinParts(parts []wordPart, depth int) (Word, error) {
	var word Word
	for i, part := range parts {
		scanned, err := p.scanWord(part.text, part.mode, i == 0, depth)
		if err != nil {
			return Word{}, err
		}
		offset := len(word.Text)
		word.Text += scanned.Text
		for _, exp := range scanned.Expansions {
			word.Expansions = append(word.Expansions, shiftExpansion(exp, offset))
		}
	}
	return word, nil
}

func shiftExpansion(exp Expansion, offset int) Expansion {
	if offset == 0 {
		return exp
	}
	shift := func(r Range) Range {
		return Range{Start: r.Start + offset, End: r.End + offset}
	}
	switch e := exp.(type) {
	case *ParamExp:
		return &ParamExp{Range: shift(e.Range), Name: e.Name}
	case *CmdSubst:
		return &CmdSubst{Range: shift(e.Range), Tree: e.Tree}
	case *GlobExp:
		return &GlobExp{Range: shift(e.Range), Pattern: e.Pattern, Recursive: e.Recursive}
	case *TildeExp:
		return &TildeExp{Index: e.Index + offset}
	}
	return exp
}

// splitTokens splits tokens on every token of the given kind, returning the
// runs between them and the separators themselves.
func splitTokens(tokens []Token, kind TokenKind) (runs [][]Token, seps []Token) {
	start := 0
	for i, tok := range tokens {
		if tok.Kind == kind {
			runs = append(runs, tokens[start:i])
			seps = append(seps, tok)
			start = i + 1
		}
	}
	runs = append(runs, tokens[start:])
	return runs, seps
}

func isBlank(tokens []Token) bool {
	for _, tok := range tokens {
		if tok.Kind != Space {
			return false
		}
	}
	return true
}
