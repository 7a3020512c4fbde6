package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josephlewis42/wordexp/core/logger"
)

func TestRunLine(t *testing.T) {
	cases := goldenTestSuite{
		"tokens":    {[]string{`:tokens echo "hi $USER" >out`}},
		"tree":      {[]string{`:tree X=1 ls -l ~ | wc`}},
		"tree-dump": {[]string{`:tree -d echo $HOME`}},
		"expand":    {[]string{`:expand A=$DIR B=$A/sub echo $USER ~/x`}},
		"help":      {[]string{`:help`}},
		"errors": {[]string{
			`echo a && b`,
			`echo $(ls *.go)`,
			`:nope`,
			`echo "open`,
		}},
	}

	cases.Run(t)
}

func TestRunLine_status(t *testing.T) {
	cases := map[string]struct {
		line string
		want int
	}{
		"ok":          {"echo $HOME", 0},
		"blank":       {"   ", 0},
		"syntax":      {"echo 'open", StatusUsage},
		"unsupported": {"a || b", StatusUsage},
		"unresolved":  {"ls *.go", 1},
		"directive":   {":echo hi", 0},
		"unknown":     {":bogus", StatusNotFound},
		"open-tokens": {`:tokens echo "open`, 0},
		"strict":      {`:tokens -s echo "open`, StatusUsage},
		"expand-glob": {":expand ls | grep *.go", 1},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			s, _ := newTestSession(t)

			assert.Equal(t, tc.want, s.RunLine(tc.line))
			assert.Equal(t, tc.want, s.LastStatus())
		})
	}
}

func TestRunLine_nestingLimit(t *testing.T) {
	s, out := newTestSession(t)
	s.Parser.MaxDepth = 2

	status := s.RunLine("echo $(a $(b $(c)))")

	assert.Equal(t, StatusUsage, status)
	assert.Equal(t, "wordexp: command substitutions nested deeper than 2 levels\n", out.String())
}

func TestRunLine_prefixAssignments(t *testing.T) {
	s, out := newTestSession(t)

	status := s.RunLine("A=1 B=$A/x env $A $B $DIR")

	assert.Equal(t, 0, status)
	assert.Equal(t, "A=1 B=$A/x env $A $B $DIR\n=> A=1 B=1/x env 1 1/x /tmp\n", out.String())
	_, bound := s.Vars.Lookup("A")
	assert.False(t, bound, "assignments only apply to their command")
}

func TestRunLine_onLine(t *testing.T) {
	s, _ := newTestSession(t)
	var seen []string
	s.OnLine = func(line string) { seen = append(seen, line) }

	s.RunLine("echo hi")
	s.RunLine("   ")
	s.RunLine(":bogus")

	assert.Equal(t, []string{"echo hi", ":bogus"}, seen)
}

func TestRunLine_followsHome(t *testing.T) {
	s, out := newTestSession(t)
	s.Config.HomeDir = ""
	s = NewSession(s.Config, s.Vars, nil)
	s.Stdout = out

	s.RunLine(":set HOME=/srv")
	s.RunLine("cd ~")

	assert.Equal(t, "cd ~\n=> cd /srv\n", out.String())
}

func TestRunLine_logsEvents(t *testing.T) {
	s, _ := newTestSession(t)
	buf := &bytes.Buffer{}
	s.Log = logger.NewJsonLinesLogRecorder(buf).Session("test-session")

	s.RunLine("echo $USER")
	s.RunLine("echo 'open")
	s.RunLine(":env USER")

	var entries []*logger.LogEntry
	require.NoError(t, logger.ReadJSONLinesLog(buf, func(le *logger.LogEntry) {
		entries = append(entries, le)
	}))
	require.Len(t, entries, 4)

	for _, le := range entries {
		assert.Equal(t, "test-session", le.SessionID)
	}

	require.NotNil(t, entries[0].Parse)
	assert.Equal(t, "echo $USER", entries[0].Parse.Rendered)
	assert.Equal(t, []string{"echo"}, entries[0].Parse.Commands)

	require.NotNil(t, entries[1].Expand)
	assert.Equal(t, "echo user", entries[1].Expand.Expanded)

	require.NotNil(t, entries[2].Parse)
	assert.Equal(t, "syntax", entries[2].Parse.ErrorKind)

	require.NotNil(t, entries[3].Directive)
	assert.Equal(t, ":env", entries[3].Directive.Name)
	assert.Equal(t, []string{"USER"}, entries[3].Directive.Args)
	assert.Equal(t, 0, entries[3].Directive.Status)
}

func TestRunLine_highlight(t *testing.T) {
	s, out := newTestSession(t)
	s.IsTerminal = true

	s.RunLine(":tree :help -x")

	assert.Equal(t, "\x1b[36;1m:help\x1b[0m \x1b[34m-x\x1b[0m\n", out.String())
}

func TestSession_rest(t *testing.T) {
	cases := map[string]struct {
		line string
		n    int
		want string
	}{
		"first":      {`:tree echo hi`, 1, `echo hi`},
		"after-flag": {`:tree -d echo "a  b"`, 2, `echo "a  b"`},
		"joined":     {`:tree -d x>y|z w`, 2, `x>y|z w`},
		"partial":    {`:tokens echo "open`, 1, `echo "open`},
		"past-end":   {`:tree`, 1, ``},
		"leading":    {`  :tree   a`, 1, `a`},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			s := &Session{line: tc.line}
			assert.Equal(t, tc.want, s.rest(tc.n))
		})
	}
}

func TestRunInteractive(t *testing.T) {
	s, out := newTestSession(t)
	s.Stdin = strings.NewReader("echo $USER\n:history\n:exit\necho never\n")

	s.RunInteractive()

	assert.True(t, s.Quit)
	assert.Equal(t, []string{"echo $USER", ":history", ":exit"}, s.history)
	assert.Contains(t, out.String(), "=> echo user\n")
}

func TestHistory_clear(t *testing.T) {
	s, out := newTestSession(t)
	s.history = []string{"a", "b"}

	s.RunLine(":history")
	assert.Equal(t, "    0  a\n    1  b\n", out.String())

	out.Reset()
	s.RunLine(":history -c")
	s.RunLine(":history")
	assert.Empty(t, out.String())
}

func TestExitStatus(t *testing.T) {
	assert.Equal(t, 0, ExitStatus(nil))
	assert.Equal(t, 1, ExitStatus(assert.AnError))
}

func TestTree_colorFlag(t *testing.T) {
	s, out := newTestSession(t)

	assert.Equal(t, 0, s.RunLine(":tree --color=always :env"))
	assert.Equal(t, 0, s.RunLine(":tree --color=never :env"))

	assert.Equal(t, "\x1b[36;1m:env\x1b[0m\n:env\n", out.String())
}

func TestPrintError_colored(t *testing.T) {
	s, out := newTestSession(t)
	s.IsTerminal = true

	assert.Equal(t, StatusUsage, s.RunLine("a && b"))
	assert.Equal(t, "\x1b[31;1mwordexp:\x1b[0m logical AND (&&) is not yet supported\n", out.String())
}
