package shell

import (
	"strings"
)

type scanMode int

const (
	// scanNone leaves the text alone, used for single quotes and the names of
	// assignments.
	scanNone scanMode = iota
	// scanParamsAndCommands finds parameters and command substitutions, used
	// within double quotes.
	scanParamsAndCommands
	// scanAll also finds globs and tildes, used for unquoted text.
	scanAll
)

// scanWord records the expansions found in text. atWordStart is set if the
// text begins its word, a '~' may only stand for the home directory there.
//
// A backslash keeps the byte after it from starting an expansion. The
// backslash itself stays in the text.
func (p *Parser) scanWord(text string, mode scanMode, atWordStart bool, depth int) (Word, error) {
	word := Word{Text: text}
	if mode == scanNone {
		return word, nil
	}

	// tildeOK holds whether a '~' at i follows a tilde prefix.
	tildeOK := atWordStart
	for i := 0; i < len(text); {
		start := i
		c := text[i]
		switch {
		case c == '\\' && i+1 < len(text):
			i += 2
			tildeOK = false
			continue

		case c == '$' && i+1 < len(text) && text[i+1] == '(':
			end := closingParen(text, i+2, 0)
			switch {
			case end == tooDeep:
				return Word{}, &NestingLimitError{Limit: maxQuoteNesting, Pos: i}
			case end == notFound:
				return Word{}, &SyntaxError{
					Msg:    "unterminated command substitution",
					Pos:    i,
					Tokens: []Token{{Kind: String, Text: text[i:]}},
				}
			case depth+1 > p.maxDepth():
				return Word{}, &NestingLimitError{Limit: p.maxDepth(), Pos: i}
			}

			tree, err := p.parse(text[i+2:end], depth+1)
			if err != nil {
				return Word{}, err
			}
			word.Expansions = append(word.Expansions, &CmdSubst{
				Range: Range{Start: i, End: end},
				Tree:  tree,
			})
			i = end + 1

		case c == '$' && i+1 < len(text) && isNameStart(text[i+1]):
			end := i + 2
			for end < len(text) && isNameChar(text[end]) {
				end++
			}
			word.Expansions = append(word.Expansions, &ParamExp{
				Range: Range{Start: i, End: end - 1},
				Name:  text[i+1 : end],
			})
			i = end

		case c == '$' && i+1 < len(text) && text[i+1] == '{':
			closeBrace := strings.IndexByte(text[i+2:], '}')
			if closeBrace < 0 || !isName(text[i+2:i+2+closeBrace]) {
				// Not a plain ${name}, leave it as text.
				i++
				break
			}
			end := i + 2 + closeBrace
			word.Expansions = append(word.Expansions, &ParamExp{
				Range: Range{Start: i, End: end},
				Name:  text[i+2 : end],
			})
			i = end + 1

		case c == '*' && mode == scanAll:
			end := i + 1
			for end < len(text) && !isSpace(text[end]) && text[end] != '/' && text[end] != '\\' {
				end++
			}
			pattern := text[i:end]
			word.Expansions = append(word.Expansions, &GlobExp{
				Range:     Range{Start: i, End: end - 1},
				Pattern:   pattern,
				Recursive: strings.Contains(pattern, "**"),
			})
			i = end

		case c == '~' && mode == scanAll && tildeOK && isTildeSuffix(text, i+1):
			word.Expansions = append(word.Expansions, &TildeExp{Index: i})
			i++

		default:
			i++
		}

		if i > start {
			tildeOK = isTildePrefix(text[i-1])
		}
	}

	return word, nil
}

// isTildePrefix reports whether a '~' after prev may stand for the home
// directory: after a space or after '='.
func isTildePrefix(prev byte) bool {
	return prev == ' ' || prev == '='
}

// isTildeSuffix reports whether the text at i may follow a home directory
// '~': the end of the word, a space or a '/'.
func isTildeSuffix(text string, i int) bool {
	return i >= len(text) || text[i] == ' ' || text[i] == '/'
}
