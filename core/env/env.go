// Package env holds the variable bindings commands are expanded against and
// the providers that seed them.
package env

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Binding is a single NAME=VALUE pair.
type Binding struct {
	Name  string
	Value string
}

func (b Binding) String() string {
	return fmt.Sprintf("%s=%s", b.Name, b.Value)
}

// Bindings is an ordered set of variable bindings. Names may repeat, the last
// entry with a name is the one that counts.
type Bindings []Binding

// EnvironFetcher provides a snapshot of an environment.
type EnvironFetcher interface {
	// Environ returns a copy of strings representing the environment, in the
	// form "key=value".
	Environ() []string
}

// HomeDirResolver provides the current user's home directory.
type HomeDirResolver interface {
	UserHomeDir() (string, error)
}

// FromEnviron parses a list of "key=value" strings. Entries without an '='
// get an empty value.
func FromEnviron(environ []string) Bindings {
	out := make(Bindings, 0, len(environ))
	for _, e := range environ {
		split := strings.SplitN(e, "=", 2)
		key, value := split[0], ""
		if len(split) > 1 {
			value = split[1]
		}
		out = append(out, Binding{Name: key, Value: value})
	}
	return out
}

// Snapshot captures the environment of src.
func Snapshot(src EnvironFetcher) Bindings {
	return FromEnviron(src.Environ())
}

// Lookup retrieves the value bound to name. If several bindings share the name
// the last one wins.
func (b Bindings) Lookup(name string) (string, bool) {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i].Name == name {
			return b[i].Value, true
		}
	}
	return "", false
}

// Get is like Lookup but returns the empty string for unset names.
func (b Bindings) Get(name string) string {
	val, _ := b.Lookup(name)
	return val
}

// Set returns a copy of b with every binding of name removed and the new
// binding appended.
func (b Bindings) Set(name, value string) Bindings {
	return append(b.Unset(name), Binding{Name: name, Value: value})
}

// Unset returns a copy of b without any binding of name.
func (b Bindings) Unset(name string) Bindings {
	out := make(Bindings, 0, len(b)+1)
	for _, binding := range b {
		if binding.Name != name {
			out = append(out, binding)
		}
	}
	return out
}

// Clone returns a copy of b.
func (b Bindings) Clone() Bindings {
	out := make(Bindings, len(b))
	copy(out, b)
	return out
}

// Environ implements EnvironFetcher.
func (b Bindings) Environ() []string {
	out := make([]string, 0, len(b))
	for _, binding := range b {
		out = append(out, binding.String())
	}
	return out
}

// Names returns the distinct bound names in order of their last binding.
func (b Bindings) Names() []string {
	var out []string
	for i, binding := range b {
		if last, _ := b.lastIndex(binding.Name); last == i {
			out = append(out, binding.Name)
		}
	}
	return out
}

func (b Bindings) lastIndex(name string) (int, bool) {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i].Name == name {
			return i, true
		}
	}
	return -1, false
}

// OSEnviron reads the process environment.
type OSEnviron struct{}

var _ EnvironFetcher = OSEnviron{}

// Environ implements EnvironFetcher.
func (OSEnviron) Environ() []string {
	return os.Environ()
}

// OSHome resolves the home directory of the user running the process.
type OSHome struct{}

var _ HomeDirResolver = OSHome{}

// UserHomeDir implements HomeDirResolver.
func (OSHome) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

// ErrNoHome is returned by StaticHome when no directory is set.
var ErrNoHome = errors.New("home directory is not set")

// StaticHome always resolves to the same directory.
type StaticHome string

var _ HomeDirResolver = StaticHome("")

// UserHomeDir implements HomeDirResolver.
func (s StaticHome) UserHomeDir() (string, error) {
	if s == "" {
		return "", ErrNoHome
	}
	return string(s), nil
}

// BindingsHome resolves the home directory from the HOME binding.
type BindingsHome struct {
	Bindings Bindings
}

var _ HomeDirResolver = (*BindingsHome)(nil)

// UserHomeDir implements HomeDirResolver.
func (h *BindingsHome) UserHomeDir() (string, error) {
	if home, ok := h.Bindings.Lookup("HOME"); ok && home != "" {
		return home, nil
	}
	return "", ErrNoHome
}
