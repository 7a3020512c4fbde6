package shell

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func single(cmd *Command) *SyntaxTree {
	return &SyntaxTree{Commands: []CommandType{&Single{Command: cmd}}}
}

func cmdNamed(name string, suffixes ...Meta) *Command {
	return &Command{Name: NewWord(name), Suffixes: suffixes}
}

func arg(text string, expansions ...Expansion) *Arg {
	return &Arg{Word: NewWord(text, expansions...)}
}

func subst(start, end int, tree *SyntaxTree) *CmdSubst {
	return &CmdSubst{Range: Range{Start: start, End: end}, Tree: tree}
}

func param(start, end int, name string) *ParamExp {
	return &ParamExp{Range: Range{Start: start, End: end}, Name: name}
}

func glob(start, end int, pattern string, recursive bool) *GlobExp {
	return &GlobExp{Range: Range{Start: start, End: end}, Pattern: pattern, Recursive: recursive}
}

func fromWord(text string) *Word {
	w := NewWord(text)
	return &w
}

func TestParse(t *testing.T) {
	cases := map[string]struct {
		input    string
		expected *SyntaxTree
	}{
		"pipeline with redirect": {
			input: "2>&1 echo hello world | lolcat -n;",
			expected: &SyntaxTree{Commands: []CommandType{
				&Pipeline{Commands: []*Command{
					{
						Name:     NewWord("echo"),
						Prefixes: []Meta{&RedirOut{From: fromWord("2"), To: NewWord("&1")}},
						Suffixes: []Meta{arg("hello"), arg("world")},
					},
					cmdNamed("lolcat", arg("-n")),
				}},
			}},
		},
		"globs": {
			input: "echo **/*.rs",
			expected: single(cmdNamed("echo",
				arg("**/*.rs", glob(0, 1, "**", true), glob(3, 6, "*.rs", false)),
			)),
		},
		"parameters in double quotes": {
			input: `echo "yo $foo $A"`,
			expected: single(cmdNamed("echo",
				arg("yo $foo $A", param(3, 6, "foo"), param(8, 9, "A")),
			)),
		},
		"single quotes are literal": {
			input:    `echo '** $foo'`,
			expected: single(cmdNamed("echo", arg("** $foo"))),
		},
		"nested pipeline": {
			input: `echo "I \"am\": $(whoami | rev | grep -o -v foo)" | less`,
			expected: &SyntaxTree{Commands: []CommandType{
				&Pipeline{Commands: []*Command{
					cmdNamed("echo", arg(`I "am": $(whoami | rev | grep -o -v foo)`,
						subst(8, 39, &SyntaxTree{Commands: []CommandType{
							&Pipeline{Commands: []*Command{
								cmdNamed("whoami"),
								cmdNamed("rev"),
								cmdNamed("grep", arg("-o"), arg("-v"), arg("foo")),
							}},
						}}),
					)),
					cmdNamed("less"),
				}},
			}},
		},
		"complicated": {
			input: `CMD=exec=async 2>&1 grep ": $(whoami)" ~/.cache/ | xargs -I {} echo "$CMD: {}" >foo.log`,
			expected: &SyntaxTree{Commands: []CommandType{
				&Pipeline{Commands: []*Command{
					{
						Name: NewWord("grep"),
						Prefixes: []Meta{
							&Assign{Name: NewWord("CMD"), Value: NewWord("exec=async")},
							&RedirOut{From: fromWord("2"), To: NewWord("&1")},
						},
						Suffixes: []Meta{
							arg(": $(whoami)", subst(2, 10, single(cmdNamed("whoami")))),
							arg("~/.cache/", &TildeExp{Index: 0}),
						},
					},
					cmdNamed("xargs",
						arg("-I"),
						arg("{}"),
						arg("echo"),
						arg("$CMD: {}", param(0, 3, "CMD")),
						&RedirOut{To: NewWord("foo.log")},
					),
				}},
			}},
		},
		"command substitution in double quotes": {
			input: `echo "bat: $(cat /sys/class/power_supply/BAT0/capacity)"`,
			expected: single(cmdNamed("echo",
				arg("bat: $(cat /sys/class/power_supply/BAT0/capacity)",
					subst(5, 48, single(cmdNamed("cat", arg("/sys/class/power_supply/BAT0/capacity"))))),
			)),
		},
		"tilde": {
			input: "ls ~ ~/ ~/foo foo~ bar/~ ./~ ~% ~baz",
			expected: single(cmdNamed("ls",
				arg("~", &TildeExp{Index: 0}),
				arg("~/", &TildeExp{Index: 0}),
				arg("~/foo", &TildeExp{Index: 0}),
				arg("foo~"),
				arg("bar/~"),
				arg("./~"),
				arg("~%"),
				arg("~baz"),
			)),
		},
		"nested quotes in command substitution": {
			input: `echo "bat: $(cat "/sys/class/power_supply/BAT0/capacity")"`,
			expected: single(cmdNamed("echo",
				arg(`bat: $(cat "/sys/class/power_supply/BAT0/capacity")`,
					subst(5, 50, single(cmdNamed("cat", arg("/sys/class/power_supply/BAT0/capacity"))))),
			)),
		},
		"nested command substitutions": {
			input: `echo "foo: $(echo "$(whoami | lolcat)") yo"`,
			expected: single(cmdNamed("echo",
				arg(`foo: $(echo "$(whoami | lolcat)") yo`,
					subst(5, 32, single(cmdNamed("echo",
						arg("$(whoami | lolcat)", subst(0, 17, &SyntaxTree{Commands: []CommandType{
							&Pipeline{Commands: []*Command{cmdNamed("whoami"), cmdNamed("lolcat")}},
						}})),
					))),
				),
			)),
		},
		"unquoted command substitutions": {
			input: "echo $(cat $(echo $(cat foo | rev) )) bar",
			expected: single(cmdNamed("echo",
				arg("$(cat $(echo $(cat foo | rev) ))",
					subst(0, 31, single(cmdNamed("cat",
						arg("$(echo $(cat foo | rev) )",
							subst(0, 24, single(cmdNamed("echo",
								arg("$(cat foo | rev)", subst(0, 15, &SyntaxTree{Commands: []CommandType{
									&Pipeline{Commands: []*Command{cmdNamed("cat", arg("foo")), cmdNamed("rev")}},
								}})),
							)))),
					)))),
				arg("bar"),
			)),
		},
		"multiple nested command substitutions": {
			input: `echo "$(cat $(echo "$(cat foo)"))"`,
			expected: single(cmdNamed("echo",
				arg(`$(cat $(echo "$(cat foo)"))`,
					subst(0, 26, single(cmdNamed("cat",
						arg(`$(echo "$(cat foo)")`,
							subst(0, 19, single(cmdNamed("echo",
								arg("$(cat foo)", subst(0, 9, single(cmdNamed("cat", arg("foo"))))),
							)))),
					)))),
			)),
		},
		"semicolons": {
			input: "cd /tmp; ; ls -l;",
			expected: &SyntaxTree{Commands: []CommandType{
				&Single{Command: cmdNamed("cd", arg("/tmp"))},
				&Single{Command: cmdNamed("ls", arg("-l"))},
			}},
		},
		"assignment after the name is an argument": {
			input:    "env A=b",
			expected: single(cmdNamed("env", arg("A=b"))),
		},
		"invalid assignment name": {
			input:    "1A=b env",
			expected: single(&Command{Name: NewWord("1A=b"), Suffixes: []Meta{arg("env")}}),
		},
		"assignment with expansions": {
			input: "PATH=~/bin:$PATH which ls",
			expected: single(&Command{
				Name: NewWord("which"),
				Prefixes: []Meta{&Assign{
					Name:  NewWord("PATH"),
					Value: NewWord("~/bin:$PATH", &TildeExp{Index: 0}, param(6, 10, "PATH")),
				}},
				Suffixes: []Meta{arg("ls")},
			}),
		},
		"adjacent quotes join": {
			input: `echo foo"bar $x"'baz $y'`,
			expected: single(cmdNamed("echo",
				arg("foobar $xbaz $y", param(7, 8, "x")),
			)),
		},
		"braced parameter": {
			input:    "echo ${HOME}/x ${1}",
			expected: single(cmdNamed("echo", arg("${HOME}/x", param(0, 6, "HOME")), arg("${1}"))),
		},
		"dollar without name is literal": {
			input:    "echo $ $1 a$",
			expected: single(cmdNamed("echo", arg("$"), arg("$1"), arg("a$"))),
		},
		"redirects": {
			input: `sort < in.txt >> "out file" 2> err`,
			expected: single(cmdNamed("sort",
				&RedirIn{To: NewWord("in.txt")},
				&RedirOut{To: NewWord("out file"), Append: true},
				&RedirOut{From: fromWord("2"), To: NewWord("err")},
			)),
		},
		"quoted redirect target scans by quote": {
			input: `cat >'$x' >"$y"`,
			expected: single(cmdNamed("cat",
				&RedirOut{To: NewWord("$x")},
				&RedirOut{To: NewWord("$y", param(0, 1, "y"))},
			)),
		},
		"escapes stay verbatim": {
			input:    `echo a\ b c\|d`,
			expected: single(cmdNamed("echo", arg(`a\ b`), arg(`c\|d`))),
		},
		"escapes hide expansions": {
			input: `echo \$HOME \*.go \~ a\ ~ "\$x $y" "\\$z"`,
			expected: single(cmdNamed("echo",
				arg(`\$HOME`),
				arg(`\*.go`),
				arg(`\~`),
				arg(`a\ ~`),
				arg(`\$x $y`, param(4, 5, "y")),
				arg(`\\$z`, param(2, 3, "z")),
			)),
		},
		"glob stops at an escape": {
			input:    `echo *\*`,
			expected: single(cmdNamed("echo", arg(`*\*`, glob(0, 0, "*", false)))),
		},
		"redirect target joins adjacent words": {
			input: `echo hi >out"put" 2>'e'$x <~/in`,
			expected: single(cmdNamed("echo",
				arg("hi"),
				&RedirOut{To: NewWord("output")},
				&RedirOut{From: fromWord("2"), To: NewWord("e$x", param(1, 2, "x"))},
				&RedirIn{To: NewWord("~/in", &TildeExp{Index: 0})},
			)),
		},
		"empty quoted targets": {
			input: `cat >'' <""`,
			expected: single(cmdNamed("cat",
				&RedirOut{To: NewWord("")},
				&RedirIn{To: NewWord("")},
			)),
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			actual, err := Parse(tc.input)
			require.NoError(t, err)

			if diff := cmp.Diff(tc.expected, actual, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tc.input, diff)
			}
		})
	}
}

func TestParse_errors(t *testing.T) {
	cases := map[string]struct {
		input   string
		kind    error
		feature string
	}{
		"and":                    {input: "true && echo yes", kind: ErrUnsupported, feature: "logical AND (&&)"},
		"or":                     {input: "false || echo no", kind: ErrUnsupported, feature: "logical OR (||)"},
		"background":             {input: "sleep 10 &", kind: ErrUnsupported, feature: "background execution (&)"},
		"subshell":               {input: "(cd /tmp; ls)", kind: ErrUnsupported, feature: "subshells"},
		"grouping":               {input: "{ echo hi; }", kind: ErrUnsupported, feature: "command grouping"},
		"unsupported in subst":   {input: "echo $(a && b)", kind: ErrUnsupported, feature: "logical AND (&&)"},
		"empty pipeline stage":   {input: "echo | | cat", kind: ErrSyntax},
		"leading pipe":           {input: "| cat", kind: ErrSyntax},
		"trailing pipe":          {input: "echo |", kind: ErrSyntax},
		"only assignments":       {input: "A=b C=d", kind: ErrSyntax},
		"only redirect":          {input: "> out", kind: ErrSyntax},
		"unterminated single":    {input: "echo 'abc", kind: ErrSyntax},
		"unterminated double":    {input: `echo "abc`, kind: ErrSyntax},
		"unterminated subst":     {input: "echo $(whoami", kind: ErrSyntax},
		"missing target":         {input: "echo >", kind: ErrSyntax},
		"missing target before":  {input: "echo > | cat", kind: ErrSyntax},
		"syntax error in subst":  {input: `echo "$(| cat)"`, kind: ErrSyntax},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			tree, err := Parse(tc.input)
			require.Error(t, err)
			assert.Nil(t, tree)
			assert.True(t, errors.Is(err, tc.kind), "expected %v, got %v", tc.kind, err)

			if tc.feature != "" {
				var unsupported *UnsupportedError
				require.True(t, errors.As(err, &unsupported))
				assert.Equal(t, tc.feature, unsupported.Feature)
			}
		})
	}
}

func TestParser_MaxDepth(t *testing.T) {
	input := "echo $(echo $(echo $(echo hi)))"

	t.Run("within limit", func(t *testing.T) {
		_, err := (&Parser{MaxDepth: 3}).Parse(input)
		assert.NoError(t, err)
	})

	t.Run("over limit", func(t *testing.T) {
		_, err := (&Parser{MaxDepth: 2}).Parse(input)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNestingLimit))

		var limit *NestingLimitError
		require.True(t, errors.As(err, &limit))
		assert.Equal(t, 2, limit.Limit)
	})

	t.Run("zero uses default", func(t *testing.T) {
		assert.Equal(t, DefaultMaxDepth, (&Parser{}).maxDepth())
	})
}

func TestParseTokens_interactiveTokens(t *testing.T) {
	cases := map[string]string{
		"unterminated argument":      `echo "unterminated`,
		"missing target":             `echo >`,
		"unterminated target":        `cat <"in`,
		"unterminated adjacent word": `cat >out"put`,
	}

	for tn, input := range cases {
		t.Run(tn, func(t *testing.T) {
			tokens, err := Lex(input, true)
			require.NoError(t, err)

			_, err = ParseTokens(tokens)
			assert.True(t, errors.Is(err, ErrSyntax), "got %v", err)
		})
	}
}

func TestSyntaxTree_String(t *testing.T) {
	cases := map[string]struct {
		input    string
		expected string
	}{
		"pipeline":         {"2>&1 echo hello world | lolcat -n;", "2>&1 echo hello world | lolcat -n"},
		"groups":           {"a;b ;  c", "a; b; c"},
		"whitespace":       {"echo   hi\t there", "echo hi there"},
		"quotes kept":      {`echo "a b" 'c'`, `echo "a b" c`},
		"single quoted $":  {`echo '$HOME'`, `echo '$HOME'`},
		"mixed quoting":    {`echo '$x'"$y"`, `echo '$x'"$y"`},
		"empty argument":   {`echo ""`, `echo ""`},
		"redirects":        {"sort <in >>out 2>err 3>&-", "sort <in >>out 2>err 3>&-"},
		"assignment":       {"A= B='x y' env", `A= B="x y" env`},
		"quoted name":      {`"A=b" x`, `"A=b" x`},
		"brace arg":        {"echo {", "echo {"},
		"quoted brace":     {`"{" x`, `"{" x`},
		"escaped quote":    {`echo 'say "hi"'`, `echo "say \"hi\""`},
		"escapes":          {`echo \$HOME "\$x" "a\\b" a\ b`, `echo \$HOME \$x a\\b a\ b`},
		"joined target":    {`cat >out"put" >''`, `cat >output >""`},
		"quoted target":    {`cat >'$x'$y`, `cat >'$x'"$y"`},
		"complicated": {
			`CMD=exec=async 2>&1 grep ": $(whoami)" ~/.cache/ | xargs -I {} echo "$CMD: {}" >foo.log`,
			`CMD=exec=async 2>&1 grep ": $(whoami)" ~/.cache/ | xargs -I {} echo "$CMD: {}" >foo.log`,
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			tree, err := Parse(tc.input)
			require.NoError(t, err)

			assert.Equal(t, tc.expected, tree.String())
		})
	}
}
