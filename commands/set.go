package commands

import (
	"fmt"

	"github.com/josephlewis42/wordexp/core/shell"
)

// Set binds variables in the session. Values are taken literally.
func Set(s *Session) int {
	cmd := &SimpleCommand{
		Use:   ":set NAME=VALUE...",
		Short: "Bind variables for the rest of the session.",
	}

	return cmd.Run(s, func() int {
		args := cmd.Flags().Args()
		if len(args) == 0 {
			cmd.PrintHelp(s.Stderr)
			return 1
		}

		// Check everything first so a bad argument changes nothing.
		type binding struct{ name, value string }
		var bindings []binding
		for _, arg := range args {
			name, value, ok := shell.Token{Kind: shell.String, Text: arg}.Assignment()
			if !ok {
				fmt.Fprintf(s.Stderr, "%s: %q: not a valid NAME=VALUE\n", s.Args[0], arg)
				return 1
			}
			bindings = append(bindings, binding{name, value})
		}

		for _, b := range bindings {
			s.Vars = s.Vars.Set(b.name, b.value)
		}
		return 0
	})
}

// Unset removes variables from the session.
func Unset(s *Session) int {
	cmd := &SimpleCommand{
		Use:   ":unset NAME...",
		Short: "Remove session bindings.",
	}

	return cmd.Run(s, func() int {
		for _, name := range cmd.Flags().Args() {
			s.Vars = s.Vars.Unset(name)
		}
		return 0
	})
}

var (
	_ DirectiveFunc = Set
	_ DirectiveFunc = Unset
)

func init() {
	addDirective("set", "bind session variables", Set)
	addDirective("unset", "remove session variables", Unset)
}
