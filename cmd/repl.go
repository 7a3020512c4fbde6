package cmd

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/josephlewis42/wordexp/core/ttylog"
)

var (
	replLine   string
	recordPath string
)

// replCmd runs the interactive parser playground
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Parse and expand lines interactively.",
	Long: `Reads command lines, prints each one back as it was parsed and then
expanded. Lines starting with ':' are directives, see :help.`,
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		s, closer, err := sessionFor(cmd, nil)
		if err != nil {
			return err
		}
		defer closer.Close()

		if replLine != "" {
			return exitWith(s.RunLine(replLine))
		}

		replLogger := log.New(cmd.ErrOrStderr(), "[repl] ", 0)
		if s.Config.EventLog != "" {
			replLogger.Printf("Logging to: %s\n", filepath.Join(cfgPath, s.Config.EventLog))
		}
		if recordPath != "" {
			fd, err := os.Create(recordPath)
			if err != nil {
				return err
			}
			defer fd.Close()

			recorder := ttylog.NewRecorder(s.Stdin, s.Stdout, s.Stderr, ttylog.NewAsciicastLogSink(fd, "wordexp repl"))
			s.Stdin, s.Stdout, s.Stderr = recorder.Stdin, recorder.Stdout, recorder.Stderr
			s.OnLine = recorder.Mark
			replLogger.Printf("Recording to: %s\n", recordPath)
		}
		replLogger.Println("Type :help for directives, :exit or Ctrl-D to quit.")
		replLogger.Println(strings.Repeat("=", 80))

		return exitWith(s.RunInteractive())
	},
}

func init() {
	rootCmd.AddCommand(replCmd)

	replCmd.Flags().StringVarP(&replLine, "command", "c", "", "Run a single line and exit.")
	replCmd.Flags().StringVar(&recordPath, "record", "", "Record the session to an asciicast file.")
}
