package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/josephlewis42/wordexp/core/ttylog"
)

var idleTimeLimit time.Duration

var transcriptCmd = &cobra.Command{
	Use:     "transcript",
	Aliases: []string{"transcripts"},
	Short:   "Replay REPL sessions recorded with repl --record.",
}

// playCommand represents the playLog command
var playCommand = &cobra.Command{
	Use:   "play FILE.cast",
	Short: "Replay a recorded REPL session in the terminal.",
	Long:  `Plays a recorded REPL session back to the current terminal.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		fd, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		sink := ttylog.NewClientOutput(cmd.OutOrStdout())
		sink = ttylog.NewRealTimePlayback(idleTimeLimit, sink)
		return ttylog.Replay(ttylog.NewAsciicastLogSource(fd), sink)
	},
}

// catCommand prints a recording without pauses
var catCommand = &cobra.Command{
	Use:   "cat FILE.cast",
	Short: "Print full output of a recorded REPL session.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		fd, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		sink := ttylog.NewClientOutput(cmd.OutOrStdout())
		return ttylog.Replay(ttylog.NewAsciicastLogSource(fd), sink)
	},
}

// linesCommand lists the lines run during a recording
var linesCommand = &cobra.Command{
	Use:   "lines FILE.cast",
	Short: "List the lines run during a recorded REPL session.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		fd, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		out := cmd.OutOrStdout()
		return ttylog.Replay(ttylog.NewAsciicastLogSource(fd), func(e *ttylog.TTYLogEntry) error {
			if e.Fd != ttylog.FD_MARKER {
				return nil
			}
			at := time.Duration(e.TimestampMicros) * time.Microsecond
			_, err := fmt.Fprintf(out, "%10s  %s\n", at.Round(time.Millisecond), e.Data)
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(transcriptCmd)
	transcriptCmd.AddCommand(playCommand)
	transcriptCmd.AddCommand(catCommand)
	transcriptCmd.AddCommand(linesCommand)

	// cat doesn't allow idle time
	playCommand.Flags().DurationVarP(&idleTimeLimit, "idle-time-limit", "i", 3*time.Second, "Maximum time output can be idle. (e.g. 3s, 2m, 100ms)")
}
