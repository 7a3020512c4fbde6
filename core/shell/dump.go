package shell

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented description of node to w, for debugging. node may
// be a *SyntaxTree, CommandType, *Command, Meta, Word or Expansion.
func Dump(w io.Writer, node interface{}) error {
	d := &dumper{w: w}
	d.node(node)
	return d.err
}

type dumper struct {
	w     io.Writer
	level int
	err   error
}

func (d *dumper) printf(format string, args ...interface{}) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, strings.Repeat("  ", d.level)+format+"\n", args...)
}

func (d *dumper) nested(fn func()) {
	d.level++
	fn()
	d.level--
}

func (d *dumper) node(node interface{}) {
	switch n := node.(type) {
	case *SyntaxTree:
		d.printf("SyntaxTree")
		d.nested(func() {
			for _, ct := range n.Commands {
				d.node(ct)
			}
		})

	case *Single:
		d.printf("Single")
		d.nested(func() { d.node(n.Command) })

	case *Pipeline:
		d.printf("Pipeline")
		d.nested(func() {
			for _, cmd := range n.Commands {
				d.node(cmd)
			}
		})

	case *Command:
		d.printf("Command")
		d.nested(func() {
			d.word("Name", n.Name)
			for _, m := range n.Prefixes {
				d.meta("Prefix", m)
			}
			for _, m := range n.Suffixes {
				d.meta("Suffix", m)
			}
		})

	case Meta:
		d.meta("Meta", n)

	case Word:
		d.word("Word", n)

	case Expansion:
		d.expansion(n)

	default:
		d.printf("%T", node)
	}
}

func (d *dumper) meta(label string, m Meta) {
	switch m := m.(type) {
	case *Arg:
		d.word(label+" Arg", m.Word)
	case *Assign:
		d.printf("%s Assign", label)
		d.nested(func() {
			d.word("Name", m.Name)
			d.word("Value", m.Value)
		})
	case *RedirOut:
		from := "stdout"
		if m.From != nil {
			from = fmt.Sprintf("%q", m.From.Text)
		}
		d.printf("%s RedirOut from=%s append=%t", label, from, m.Append)
		d.nested(func() { d.word("To", m.To) })
	case *RedirIn:
		d.printf("%s RedirIn", label)
		d.nested(func() { d.word("To", m.To) })
	}
}

func (d *dumper) word(label string, w Word) {
	d.printf("%s %q", label, w.Text)
	d.nested(func() {
		for _, exp := range w.Expansions {
			d.expansion(exp)
		}
	})
}

func (d *dumper) expansion(exp Expansion) {
	switch e := exp.(type) {
	case *ParamExp:
		d.printf("Param %v %q", e.Range, e.Name)
	case *GlobExp:
		d.printf("Glob %v %q recursive=%t", e.Range, e.Pattern, e.Recursive)
	case *TildeExp:
		d.printf("Tilde %d", e.Index)
	case *CmdSubst:
		d.printf("CmdSubst %v", e.Range)
		d.nested(func() { d.node(e.Tree) })
	}
}
