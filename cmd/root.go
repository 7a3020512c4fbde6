package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/josephlewis42/wordexp/commands"
	"github.com/josephlewis42/wordexp/core/config"
	"github.com/josephlewis42/wordexp/core/env"
	"github.com/josephlewis42/wordexp/core/logger"
)

var cfgPath string

func loadConfig() (*config.Configuration, error) {
	configuration, err := config.Load(cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		log.Println("Couldn't load config: did you run init?")
	}

	return configuration, err
}

// loadConfigOrDefault loads the configuration, falling back to the defaults
// if none was written yet. Nothing is logged until a configuration exists.
func loadConfigOrDefault() (*config.Configuration, error) {
	configuration, err := config.Load(cfgPath)
	if errors.Is(err, fs.ErrNotExist) {
		configuration.EventLog = ""
		return configuration, nil
	}
	return configuration, err
}

// statusError carries a non-zero exit status whose cause was already
// reported.
type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("exit status %d", e.status)
}

func exitWith(status int) error {
	if status == 0 {
		return nil
	}
	return &statusError{status: status}
}

// newSession creates a session for cmd that records to the event log when
// one is configured. The returned closer must be called once the session is
// done.
func newSession(cmd *cobra.Command, cfg *config.Configuration, extra []string) (*commands.Session, io.Closer, error) {
	vars := cfg.Snapshot(env.OSEnviron{})
	for _, binding := range env.FromEnviron(extra) {
		vars = vars.Set(binding.Name, binding.Value)
	}

	var closer io.Closer = io.NopCloser(nil)
	recorder := logger.NewDiscardLogger()
	logFd, err := cfg.OpenEventLog()
	switch {
	case errors.Is(err, config.ErrEventLogDisabled):
	case err != nil:
		return nil, nil, err
	default:
		recorder = logger.NewJsonLinesLogRecorder(logFd)
		closer = logFd
	}

	s := commands.NewSession(cfg, vars, recorder.NewSession())
	s.Stdin = cmd.InOrStdin()
	s.Stdout = cmd.OutOrStdout()
	s.Stderr = cmd.ErrOrStderr()
	s.IsTerminal = s.Stdout == os.Stdout && term.IsTerminal(int(os.Stdout.Fd()))
	return s, closer, nil
}

// sessionFor loads the configuration and creates a session for cmd with the
// extra NAME=VALUE bindings applied.
func sessionFor(cmd *cobra.Command, extra []string) (*commands.Session, io.Closer, error) {
	for _, binding := range extra {
		if !strings.Contains(binding, "=") {
			return nil, nil, fmt.Errorf("invalid binding %q, expected NAME=VALUE", binding)
		}
	}

	cfg, err := loadConfigOrDefault()
	if err != nil {
		return nil, nil, err
	}
	return newSession(cmd, cfg, extra)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wordexp",
	Short: "POSIX shell command line parser and word expander",
	Long: `Parses POSIX shell command lines into syntax trees and expands their
parameters and home directories without running anything.`,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()

	var status *statusError
	if errors.As(err, &status) {
		os.Exit(status.status)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config path")
}
