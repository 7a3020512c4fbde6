package commands

import (
	"fmt"

	"github.com/josephlewis42/wordexp/core/shell"
)

// Expand expands a line and prints the result along with the bindings each
// command's assignments produce. Each command's words see its own
// assignments.
func Expand(s *Session) int {
	cmd := &SimpleCommand{
		Use:   ":expand LINE",
		Short: "Expand LINE against the session bindings.",
	}

	return cmd.Run(s, func() int {
		line := s.rest(cmd.Consumed(s))
		return s.PrintExpansion(line)
	})
}

// PrintExpansion parses line and writes each of its commands expanded,
// followed by the values its assignments bind.
func (s *Session) PrintExpansion(line string) int {
	tree, err := s.Parser.Parse(line)
	if err != nil {
		return s.printError(err)
	}

	for _, ct := range tree.Commands {
		var commands []*shell.Command
		switch ct := ct.(type) {
		case *shell.Single:
			commands = []*shell.Command{ct.Command}
		case *shell.Pipeline:
			commands = ct.Commands
		}

		for _, c := range commands {
			if status := s.expandCommand(c); status != 0 {
				return status
			}
		}
	}
	return 0
}

func (s *Session) expandCommand(c *shell.Command) int {
	expanded, vars, err := s.Expander.Resolve(c, s.Vars)
	if err != nil {
		return s.printError(err)
	}
	fmt.Fprintln(s.Stdout, expanded)

	for _, m := range c.Prefixes {
		if assign, ok := m.(*shell.Assign); ok {
			fmt.Fprintf(s.Stdout, "  %s=%s\n", assign.Name.Text, vars.Get(assign.Name.Text))
		}
	}
	return 0
}

var _ DirectiveFunc = Expand

func init() {
	addDirective("expand", "expand each command of a line", Expand)
}
