package commands

import (
	"fmt"

	"github.com/josephlewis42/wordexp/core/shell"
)

// Tokens prints the tokens a line lexes into.
func Tokens(s *Session) int {
	cmd := &SimpleCommand{
		Use:   ":tokens [-s] LINE",
		Short: "Print the tokens LINE is split into.",
	}
	strict := cmd.Flags().BoolLong("strict", 's', "report unterminated quotes as errors rather than open tokens")

	return cmd.Run(s, func() int {
		line := s.rest(cmd.Consumed(s))
		return s.PrintTokens(line, s.Config.InteractiveLex && !*strict)
	})
}

// PrintTokens writes the tokens of line with their byte offsets.
func (s *Session) PrintTokens(line string, interactive bool) int {
	tokens, err := shell.Lex(line, interactive)
	if err != nil {
		return s.printError(err)
	}

	for _, tok := range tokens {
		fmt.Fprintf(s.Stdout, "%d..%d %s\n", tok.Pos, tok.End, tok)
	}
	return 0
}

var _ DirectiveFunc = Tokens

func init() {
	addDirective("tokens", "print the tokens of a line", Tokens)
}
