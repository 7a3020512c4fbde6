package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josephlewis42/wordexp/core/ttylog"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestParse(t *testing.T) {
	out, err := runRoot(t, "--config", t.TempDir(), "parse", `echo   "a b"`, "|", "wc")

	require.NoError(t, err)
	assert.Equal(t, "echo \"a b\" | wc\n", out)
}

func TestParse_syntaxError(t *testing.T) {
	out, err := runRoot(t, "--config", t.TempDir(), "parse", `echo "open`)

	assert.Equal(t, &statusError{status: 2}, err)
	assert.Equal(t, "wordexp: syntax error near `\"open': unterminated double quote\n", out)
}

func TestExpand_bindings(t *testing.T) {
	out, err := runRoot(t, "--config", t.TempDir(), "expand", "-e", "WORDEXP_TEST=hi", "echo $WORDEXP_TEST")

	require.NoError(t, err)
	assert.Equal(t, "echo hi\n", out)
}

func TestExpand_badBinding(t *testing.T) {
	_, err := runRoot(t, "--config", t.TempDir(), "expand", "-e", "nope", "echo")

	assert.EqualError(t, err, `invalid binding "nope", expected NAME=VALUE`)
	bindings = nil
}

func TestRepl_logsToEventLog(t *testing.T) {
	dir := t.TempDir()
	_, err := runRoot(t, "--config", dir, "init")
	require.NoError(t, err)

	_, err = runRoot(t, "--config", dir, "repl", "-c", "echo hi")
	require.NoError(t, err)
	replLine = ""

	contents, err := os.ReadFile(filepath.Join(dir, "events.log"))
	require.NoError(t, err)
	assert.Contains(t, string(contents), `"input":"echo hi"`)

	out, err := runRoot(t, "--config", dir, "events", "errors")
	require.NoError(t, err)
	assert.Contains(t, out, "log_entries: 2")
}

func TestTranscript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.cast")
	fd, err := os.Create(path)
	require.NoError(t, err)

	w := ttylog.NewAsciicastWriter(fd, "wordexp repl")
	for _, e := range []*ttylog.TTYLogEntry{
		{TimestampMicros: 1e6, Fd: ttylog.FD_STDIN, Data: []byte("echo hi\r")},
		{TimestampMicros: 1.25e6, Fd: ttylog.FD_MARKER, Data: []byte("echo hi")},
		{TimestampMicros: 1.5e6, Fd: ttylog.FD_STDOUT, Data: []byte("hi\n")},
	} {
		require.NoError(t, w.Write(e))
	}
	require.NoError(t, fd.Close())

	out, err := runRoot(t, "transcript", "lines", path)
	require.NoError(t, err)
	assert.Equal(t, "     250ms  echo hi\n", out)

	out, err = runRoot(t, "transcript", "cat", path)
	require.NoError(t, err)
	assert.Equal(t, "hi\n", out)
}

func TestExitWith(t *testing.T) {
	assert.NoError(t, exitWith(0))
	assert.EqualError(t, exitWith(127), "exit status 127")
}
