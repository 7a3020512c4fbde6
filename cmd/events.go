package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/josephlewis42/wordexp/core/logger"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Explore the event log.",
}

// printReport feeds every logged event to update and prints report as YAML.
func printReport(cmd *cobra.Command, update func(le *logger.LogEntry), report interface{}) error {
	cmd.SilenceUsage = true

	config, err := loadConfig()
	if err != nil {
		return err
	}

	fd, err := config.ReadEventLog()
	if err != nil {
		return err
	}
	defer fd.Close()

	if err := logger.ReadJSONLinesLog(fd, update); err != nil {
		return err
	}

	out, err := yaml.Marshal(report)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	return nil
}

var reportCommand = &cobra.Command{
	Use:   "report",
	Short: "Show a report of events.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var report logger.Report
		return printReport(cmd, report.Update, &report)
	},
}

var errorsCommand = &cobra.Command{
	Use:   "errors",
	Short: "Count the parse and expansion errors by kind.",
	RunE: func(cmd *cobra.Command, args []string) error {
		report := logger.NewErrorReport()
		return printReport(cmd, report.Update, report)
	},
}

var sessionsCommand = &cobra.Command{
	Use:   "sessions",
	Short: "Show the lines entered in each session.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var report logger.SessionReport
		return printReport(cmd, report.Update, &report)
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(reportCommand)
	eventsCmd.AddCommand(errorsCommand)
	eventsCmd.AddCommand(sessionsCommand)
}
