package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var (
	strictLex bool
	dumpTree  bool
	bindings  []string
)

var tokensCmd = &cobra.Command{
	Use:   "tokens LINE...",
	Short: "Print the tokens of a command line.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		s, closer, err := sessionFor(cmd, nil)
		if err != nil {
			return err
		}
		defer closer.Close()

		return exitWith(s.PrintTokens(strings.Join(args, " "), s.Config.InteractiveLex && !strictLex))
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse LINE...",
	Short: "Parse a command line and print it back normalized.",
	Long: `Parse a command line and print it back normalized. Multiple arguments are
joined with spaces, quote the line to keep its own quoting intact.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		s, closer, err := sessionFor(cmd, nil)
		if err != nil {
			return err
		}
		defer closer.Close()

		return exitWith(s.PrintTree(strings.Join(args, " "), dumpTree, s.ShouldColor()))
	},
}

var expandCmd = &cobra.Command{
	Use:   "expand LINE...",
	Short: "Expand each command of a line against the environment.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		s, closer, err := sessionFor(cmd, bindings)
		if err != nil {
			return err
		}
		defer closer.Close()

		return exitWith(s.PrintExpansion(strings.Join(args, " ")))
	},
}

func init() {
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(expandCmd)

	tokensCmd.Flags().BoolVarP(&strictLex, "strict", "s", false, "Report unterminated quotes as errors.")
	parseCmd.Flags().BoolVarP(&dumpTree, "dump", "d", false, "Print every node of the syntax tree.")
	expandCmd.Flags().StringArrayVarP(&bindings, "env", "e", nil, "Bind NAME=VALUE before expanding, may be repeated.")
}
