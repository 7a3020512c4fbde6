package shell

import (
	"fmt"
	"strings"
)

// SyntaxTree is a parsed command line: one entry per ';' separated group.
type SyntaxTree struct {
	Commands []CommandType
}

func (t *SyntaxTree) String() string {
	if t == nil {
		return ""
	}
	out := make([]string, 0, len(t.Commands))
	for _, cmd := range t.Commands {
		out = append(out, cmd.String())
	}
	return strings.Join(out, "; ")
}

// CommandType is either a *Single command or a *Pipeline.
type CommandType interface {
	fmt.Stringer
	commandTypeNode()
}

// Single is a command that isn't part of a pipeline.
type Single struct {
	Command *Command
}

// Pipeline is two or more commands with their standard streams chained.
type Pipeline struct {
	Commands []*Command
}

func (*Single) commandTypeNode()   {}
func (*Pipeline) commandTypeNode() {}

func (s *Single) String() string {
	return s.Command.String()
}

func (p *Pipeline) String() string {
	out := make([]string, 0, len(p.Commands))
	for _, cmd := range p.Commands {
		out = append(out, cmd.String())
	}
	return strings.Join(out, " | ")
}

// Command is a simple command. Prefixes hold the metadata before the command
// name (assignments and redirects), Suffixes everything after it.
type Command struct {
	Name     Word
	Prefixes []Meta
	Suffixes []Meta
}

func (c *Command) String() string {
	var parts []string
	for _, m := range c.Prefixes {
		parts = append(parts, strings.TrimSpace(m.String()))
	}
	parts = append(parts, renderName(c.Name))
	for _, m := range c.Suffixes {
		parts = append(parts, strings.TrimSpace(m.String()))
	}
	return strings.Join(parts, " ")
}

// Args returns the text of the plain word arguments following the name.
func (c *Command) Args() []string {
	var out []string
	for _, m := range c.Suffixes {
		if arg, ok := m.(*Arg); ok {
			out = append(out, arg.Word.Text)
		}
	}
	return out
}

// Redirections finds the redirects applying to each standard stream. Later
// redirects override earlier ones; prefixes are considered before suffixes.
// Output redirects from descriptors other than 1 and 2 are ignored.
func (c *Command) Redirections() (stdin, stdout, stderr Redirect) {
	for _, metas := range [][]Meta{c.Prefixes, c.Suffixes} {
		for _, m := range metas {
			switch r := m.(type) {
			case *RedirIn:
				stdin = r
			case *RedirOut:
				switch {
				case r.From == nil || r.From.Text == "1":
					stdout = r
				case r.From.Text == "2":
					stderr = r
				}
			}
		}
	}
	return
}

// Meta is command metadata: an *Arg, an *Assign or a Redirect.
type Meta interface {
	fmt.Stringer
	metaNode()
}

// Redirect is an *RedirOut or *RedirIn.
type Redirect interface {
	Meta
	redirectNode()
}

// Arg is a plain word.
type Arg struct {
	Word Word
}

// Assign is a NAME=VALUE variable assignment.
type Assign struct {
	Name  Word
	Value Word
}

// RedirOut redirects an output descriptor, stdout when From is nil.
type RedirOut struct {
	From   *Word
	To     Word
	Append bool
}

// RedirIn redirects stdin.
type RedirIn struct {
	To Word
}

func (*Arg) metaNode()      {}
func (*Assign) metaNode()   {}
func (*RedirOut) metaNode() {}
func (*RedirIn) metaNode()  {}

func (*RedirOut) redirectNode() {}
func (*RedirIn) redirectNode()  {}

func (a *Arg) String() string {
	return renderWord(a.Word)
}

func (a *Assign) String() string {
	if a.Value.Text == "" {
		return a.Name.Text + "="
	}
	return a.Name.Text + "=" + renderWord(a.Value)
}

func (r *RedirOut) String() string {
	op := ">"
	if r.Append {
		op = ">>"
	}
	if r.From != nil {
		op = r.From.Text + op
	}
	return op + renderTarget(r.To)
}

func (r *RedirIn) String() string {
	return "<" + renderTarget(r.To)
}

// Word is a piece of command text and the expansions found in it.
type Word struct {
	Text       string
	Expansions []Expansion
}

// NewWord creates a word from its text and expansions.
func NewWord(text string, expansions ...Expansion) Word {
	return Word{Text: text, Expansions: expansions}
}

func (w Word) String() string {
	return w.Text
}

// Range is a span of bytes in a word's text, End is inclusive.
type Range struct {
	Start int
	End   int
}

// Len is the number of bytes covered by the range.
func (r Range) Len() int {
	return r.End - r.Start + 1
}

func (r Range) String() string {
	return fmt.Sprintf("%d..=%d", r.Start, r.End)
}

// Expansion is one of *ParamExp, *CmdSubst, *GlobExp or *TildeExp.
type Expansion interface {
	expansionNode()
}

// ParamExp is a variable reference such as $HOME.
type ParamExp struct {
	Range Range
	Name  string
}

// CmdSubst is a $(...) command substitution, parsed but not executed.
type CmdSubst struct {
	Range Range
	Tree  *SyntaxTree
}

// GlobExp is a filename pattern starting with '*'.
type GlobExp struct {
	Range     Range
	Pattern   string
	Recursive bool
}

// TildeExp is a '~' standing for the home directory.
type TildeExp struct {
	Index int
}

func (*ParamExp) expansionNode() {}
func (*CmdSubst) expansionNode() {}
func (*GlobExp) expansionNode()  {}
func (*TildeExp) expansionNode() {}
