package commands

import (
	"fmt"
	"sort"
)

// Env prints the session bindings, or the values of the named ones.
func Env(s *Session) int {
	cmd := &SimpleCommand{
		Use:   ":env [NAME]...",
		Short: "Print the session bindings.",
	}

	return cmd.Run(s, func() int {
		names := cmd.Flags().Args()
		if len(names) == 0 {
			env := s.Vars.Environ()
			sort.Strings(env)
			for _, envDef := range env {
				fmt.Fprintln(s.Stdout, envDef)
			}
			return 0
		}

		status := 0
		for _, name := range names {
			value, ok := s.Vars.Lookup(name)
			if !ok {
				status = 1
				continue
			}
			fmt.Fprintf(s.Stdout, "%s=%s\n", name, value)
		}
		return status
	})
}

var _ DirectiveFunc = Env

func init() {
	addDirective("env", "print the session bindings", Env)
}
