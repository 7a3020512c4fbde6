package commands

import (
	"fmt"
)

// Help lists the directives.
func Help(s *Session) int {
	w := s.Stdout
	fmt.Fprintln(w, "Lines are parsed, printed back and expanded against the session bindings.")
	fmt.Fprintln(w, "Lines starting with ':' are directives:")
	fmt.Fprintln(w)

	for _, name := range ListDirectives() {
		padded := fmt.Sprintf("%-10s", name)
		if s.ShouldColor() {
			padded = ColorBoldGreen.Sprint(padded)
		}
		fmt.Fprintf(w, "  %s %s\n", padded, directiveHelp[name])
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run a directive with --help for its options.")

	return 0
}

// Exit quits the session.
func Exit(s *Session) int {
	s.Quit = true
	return s.lastRet
}

// History prints or clears the lines entered so far.
func History(s *Session) int {
	cmd := &SimpleCommand{
		Use:   ":history [-c]",
		Short: "Display or clear the history list.",
	}
	clear := cmd.Flags().Bool('c', "clear the history by deleting all entries")

	return cmd.Run(s, func() int {
		if *clear {
			s.history = nil
			return 0
		}

		for i, line := range s.history {
			fmt.Fprintf(s.Stdout, "% 5d  %s\n", i, line)
		}
		return 0
	})
}

func init() {
	addDirective("help", "list the directives", Help)
	addDirective("exit", "quit the session", Exit)
	addDirective("history", "display or clear the history list", History)
}
