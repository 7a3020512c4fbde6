package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/josephlewis42/wordexp/commands"
)

var directivesCmd = &cobra.Command{
	Use:   "directives",
	Short: "Show the directives understood by the REPL.",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range commands.ListDirectives() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(directivesCmd)
}
