package shell

import (
	"errors"
	"fmt"

	"github.com/josephlewis42/wordexp/core/env"
)

// ErrOutOfRange is returned when an expansion points outside of its word,
// which only happens for hand built words.
var ErrOutOfRange = errors.New("expansion out of range")

// Expander resolves the expansions of parsed words against a set of
// bindings.
//
// Parameters and tildes are substituted. Command substitutions and globs need
// a process or a filesystem and fail with an *UnresolvedExpansionError.
type Expander struct {
	// Home resolves '~', env.OSHome is used if it's nil.
	Home env.HomeDirResolver
}

// NewExpander creates an expander resolving '~' with home.
func NewExpander(home env.HomeDirResolver) *Expander {
	return &Expander{Home: home}
}

func (e *Expander) home() (string, error) {
	if e.Home == nil {
		return env.OSHome{}.UserHomeDir()
	}
	return e.Home.UserHomeDir()
}

// Word returns a copy of w with its expansions applied. Parameters that
// aren't bound are left in place, unexpanded.
//
// Expansions are applied from last to first so the ranges of the ones still
// waiting stay valid. The expansions that remain are shifted to match the
// new text.
func (e *Expander) Word(w Word, vars env.Bindings) (Word, error) {
	text := w.Text
	// Kept expansions in reverse order, right of everything processed so far.
	var kept []Expansion

	for i := len(w.Expansions) - 1; i >= 0; i-- {
		var (
			start, end  int
			replacement string
		)

		switch exp := w.Expansions[i].(type) {
		case *TildeExp:
			home, err := e.home()
			if err != nil {
				return Word{}, fmt.Errorf("couldn't expand ~: %w", err)
			}
			start, end, replacement = exp.Index, exp.Index, home

		case *ParamExp:
			val, ok := vars.Lookup(exp.Name)
			if !ok {
				kept = append(kept, exp)
				continue
			}
			start, end, replacement = exp.Range.Start, exp.Range.End, val

		case *CmdSubst, *GlobExp:
			return Word{}, &UnresolvedExpansionError{Expansion: exp}

		default:
			return Word{}, fmt.Errorf("unknown expansion %T", exp)
		}

		if start < 0 || end < start || end >= len(text) {
			return Word{}, fmt.Errorf("%w: %d..=%d in %q", ErrOutOfRange, start, end, text)
		}
		text = text[:start] + replacement + text[end+1:]

		delta := len(replacement) - (end - start + 1)
		for k, exp := range kept {
			kept[k] = shiftExpansion(exp, delta)
		}
	}

	out := Word{Text: text}
	for i := len(kept) - 1; i >= 0; i-- {
		out.Expansions = append(out.Expansions, kept[i])
	}
	return out, nil
}

// Meta returns a copy of m with its words expanded. Assignment names and
// redirect descriptors are never expanded.
func (e *Expander) Meta(m Meta, vars env.Bindings) (Meta, error) {
	switch m := m.(type) {
	case *Arg:
		word, err := e.Word(m.Word, vars)
		if err != nil {
			return nil, err
		}
		return &Arg{Word: word}, nil

	case *Assign:
		value, err := e.Word(m.Value, vars)
		if err != nil {
			return nil, err
		}
		return &Assign{Name: m.Name, Value: value}, nil

	case *RedirOut:
		to, err := e.Word(m.To, vars)
		if err != nil {
			return nil, err
		}
		return &RedirOut{From: m.From, To: to, Append: m.Append}, nil

	case *RedirIn:
		to, err := e.Word(m.To, vars)
		if err != nil {
			return nil, err
		}
		return &RedirIn{To: to}, nil
	}
	return nil, fmt.Errorf("unknown meta %T", m)
}

// Command returns a copy of cmd with every word expanded against vars as
// given. Use Resolve to have the command's own assignments apply.
func (e *Expander) Command(cmd *Command, vars env.Bindings) (*Command, error) {
	name, err := e.Word(cmd.Name, vars)
	if err != nil {
		return nil, err
	}
	out := &Command{Name: name}

	for _, m := range cmd.Prefixes {
		expanded, err := e.Meta(m, vars)
		if err != nil {
			return nil, err
		}
		out.Prefixes = append(out.Prefixes, expanded)
	}
	for _, m := range cmd.Suffixes {
		expanded, err := e.Meta(m, vars)
		if err != nil {
			return nil, err
		}
		out.Suffixes = append(out.Suffixes, expanded)
	}
	return out, nil
}

// Resolve expands cmd the way it would run: its prefix assignments are bound
// on top of snapshot as Vars does, then every other word is expanded against
// the result. It returns the expanded command along with its bindings.
func (e *Expander) Resolve(cmd *Command, snapshot env.Bindings) (*Command, env.Bindings, error) {
	vars, assigns, err := e.bind(snapshot, cmd)
	if err != nil {
		return nil, nil, err
	}

	name, err := e.Word(cmd.Name, vars)
	if err != nil {
		return nil, nil, err
	}
	out := &Command{Name: name}

	for i, m := range cmd.Prefixes {
		if assign, ok := assigns[i]; ok {
			out.Prefixes = append(out.Prefixes, assign)
			continue
		}
		expanded, err := e.Meta(m, vars)
		if err != nil {
			return nil, nil, err
		}
		out.Prefixes = append(out.Prefixes, expanded)
	}
	for _, m := range cmd.Suffixes {
		expanded, err := e.Meta(m, vars)
		if err != nil {
			return nil, nil, err
		}
		out.Suffixes = append(out.Suffixes, expanded)
	}
	return out, vars, nil
}

// Tree returns a copy of t with every command resolved against snapshot.
func (e *Expander) Tree(t *SyntaxTree, snapshot env.Bindings) (*SyntaxTree, error) {
	out := &SyntaxTree{Commands: make([]CommandType, 0, len(t.Commands))}
	for _, ct := range t.Commands {
		switch ct := ct.(type) {
		case *Single:
			cmd, _, err := e.Resolve(ct.Command, snapshot)
			if err != nil {
				return nil, err
			}
			out.Commands = append(out.Commands, &Single{Command: cmd})

		case *Pipeline:
			pipeline := &Pipeline{}
			for _, c := range ct.Commands {
				cmd, _, err := e.Resolve(c, snapshot)
				if err != nil {
					return nil, err
				}
				pipeline.Commands = append(pipeline.Commands, cmd)
			}
			out.Commands = append(out.Commands, pipeline)
		}
	}
	return out, nil
}

// Vars builds the bindings cmd runs with: the snapshot followed by the
// command's prefix assignments in order. Each assignment value is expanded
// against the bindings built so far and replaces any earlier binding of the
// same name.
func (e *Expander) Vars(snapshot env.Bindings, cmd *Command) (env.Bindings, error) {
	vars, _, err := e.bind(snapshot, cmd)
	return vars, err
}

// bind returns the bindings built by Vars along with each expanded
// assignment, keyed by its index in cmd.Prefixes.
func (e *Expander) bind(snapshot env.Bindings, cmd *Command) (env.Bindings, map[int]*Assign, error) {
	vars := snapshot.Clone()
	assigns := make(map[int]*Assign)
	for i, m := range cmd.Prefixes {
		assign, ok := m.(*Assign)
		if !ok {
			continue
		}
		value, err := e.Word(assign.Value, vars)
		if err != nil {
			return nil, nil, fmt.Errorf("couldn't expand %s: %w", assign.Name.Text, err)
		}
		vars = vars.Set(assign.Name.Text, value.Text)
		assigns[i] = &Assign{Name: assign.Name, Value: value}
	}
	return vars, assigns, nil
}
