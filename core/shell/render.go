package shell

import (
	"reflect"
	"strings"
)

// renderWord returns source text that parses back into w. Candidates are
// tried from the most to the least natural and checked by scanning them
// again.
func renderWord(w Word) string {
	for _, candidate := range []string{w.Text, doubleQuote(w.Text), segmentQuote(w)} {
		if rescans(candidate, w) {
			return candidate
		}
	}
	return doubleQuote(w.Text)
}

// renderName is like renderWord but the result must not read as an
// assignment or a grouping brace.
func renderName(w Word) string {
	for _, candidate := range []string{w.Text, doubleQuote(w.Text), segmentQuote(w)} {
		if !rescans(candidate, w) {
			continue
		}
		tokens, _ := Lex(candidate, false)
		if _, _, ok := tokens[0].Assignment(); ok {
			continue
		}
		if len(tokens) == 1 && tokens[0].Kind == String && (candidate == "{" || candidate == "}") {
			continue
		}
		return candidate
	}
	return doubleQuote(w.Text)
}

// renderTarget renders a redirect target. Descriptor duplications like &1
// are left bare.
func renderTarget(w Word) string {
	if len(w.Text) > 1 && w.Text[0] == '&' && (isDigits(w.Text[1:]) || w.Text[1:] == "-") {
		return w.Text
	}
	return renderWord(w)
}

// rescans reports whether candidate lexes into word tokens that join back
// into w.
func rescans(candidate string, w Word) bool {
	tokens, err := Lex(candidate, false)
	if err != nil || len(tokens) == 0 {
		return false
	}

	parts := make([]wordPart, 0, len(tokens))
	for _, tok := range tokens {
		if !tok.IsWord() || (tok.Kind != String && !tok.Closed) {
			return false
		}
		parts = append(parts, partOf(tok))
	}

	got, err := NewParser().joinParts(parts, 0)
	if err != nil {
		return false
	}
	return got.Text == w.Text && reflect.DeepEqual(normalized(got.Expansions), normalized(w.Expansions))
}

func normalized(expansions []Expansion) []Expansion {
	if len(expansions) == 0 {
		return nil
	}
	return expansions
}

// doubleQuote wraps text in double quotes, escaping embedded quotes. Command
// substitutions and other backslashes are copied as-is since the lexer keeps
// them verbatim inside double quotes.
func doubleQuote(text string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '$' && i+1 < len(text) && text[i+1] == '(':
			if end := closingParen(text, i+2, 0); end >= 0 {
				sb.WriteString(text[i : end+1])
				i = end
				continue
			}
			sb.WriteByte(c)
		case c == '"':
			sb.WriteString(`\"`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// singleQuote wraps text in single quotes, embedded single quotes are
// written as "'".
func singleQuote(text string) string {
	return "'" + strings.ReplaceAll(text, "'", `'"'"'`) + "'"
}

// segmentQuote quotes the literal text around w's expansions separately from
// the expansions themselves.
func segmentQuote(w Word) string {
	var sb strings.Builder
	literal := func(s string) {
		if s == "" {
			return
		}
		if plain(s) {
			sb.WriteString(s)
		} else {
			sb.WriteString(singleQuote(s))
		}
	}

	pos := 0
	for _, exp := range w.Expansions {
		var start, end int
		switch e := exp.(type) {
		case *TildeExp:
			start, end = e.Index, e.Index
		case *ParamExp:
			start, end = e.Range.Start, e.Range.End
		case *CmdSubst:
			start, end = e.Range.Start, e.Range.End
		case *GlobExp:
			start, end = e.Range.Start, e.Range.End
		}
		if start < pos || end >= len(w.Text) || end < start {
			return doubleQuote(w.Text)
		}

		literal(w.Text[pos:start])
		switch exp.(type) {
		case *ParamExp, *CmdSubst:
			sb.WriteString(`"` + w.Text[start:end+1] + `"`)
		default:
			sb.WriteString(w.Text[start : end+1])
		}
		pos = end + 1
	}
	literal(w.Text[pos:])
	if sb.Len() == 0 {
		return "''"
	}
	return sb.String()
}

// plain reports whether s can be written without quotes and without
// introducing expansions.
func plain(s string) bool {
	if strings.ContainsAny(s, "$*~") {
		return false
	}
	tokens, err := Lex(s, false)
	return err == nil && len(tokens) == 1 && tokens[0].Kind == String && tokens[0].Text == s
}
