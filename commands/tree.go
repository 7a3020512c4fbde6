package commands

import (
	"fmt"

	"github.com/josephlewis42/wordexp/core/highlight"
	"github.com/josephlewis42/wordexp/core/shell"
)

// Tree prints the syntax tree of a line.
func Tree(s *Session) int {
	cmd := &SimpleCommand{
		Use:   ":tree [-d] [--color=WHEN] LINE",
		Short: "Parse LINE and print it back, or its full syntax tree.",
	}
	dump := cmd.Flags().BoolLong("dump", 'd', "print every node of the tree")
	var printer ColorPrinter
	printer.Init(cmd.Flags(), s)

	return cmd.Run(s, func() int {
		line := s.rest(cmd.Consumed(s))
		return s.PrintTree(line, *dump, printer.ShouldColor())
	})
}

// PrintTree parses line and writes it back normalized, highlighted if colored
// is set, or every node of its syntax tree if dump is set.
func (s *Session) PrintTree(line string, dump, colored bool) int {
	tree, err := s.Parser.Parse(line)
	if err != nil {
		return s.printError(err)
	}

	if dump {
		if err := shell.Dump(s.Stdout, tree); err != nil {
			return s.printError(err)
		}
		return 0
	}

	rendered := tree.String()
	if colored {
		rendered = highlight.Render(s.Highlighter.Spans(rendered), s.Palette)
	}
	fmt.Fprintln(s.Stdout, rendered)
	return 0
}

var _ DirectiveFunc = Tree

func init() {
	addDirective("tree", "print the syntax tree of a line", Tree)
}
