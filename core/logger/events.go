package logger

import (
	"errors"

	"github.com/josephlewis42/wordexp/core/shell"
)

// LogEntry is a single logged event. Exactly one of the event fields is set.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id,omitempty"`

	Parse     *ParseEvent     `json:"parse,omitempty"`
	Expand    *ExpandEvent    `json:"expand,omitempty"`
	Directive *DirectiveEvent `json:"directive,omitempty"`
}

// Event is one of *ParseEvent, *ExpandEvent or *DirectiveEvent.
type Event interface {
	attach(le *LogEntry)
}

// ParseEvent records a line being parsed.
type ParseEvent struct {
	Input    string   `json:"input"`
	Rendered string   `json:"rendered,omitempty"`
	Commands []string `json:"commands,omitempty"`

	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`
	// Feature is set for lines using unsupported syntax.
	Feature string `json:"feature,omitempty"`
}

// ExpandEvent records a parsed line being expanded.
type ExpandEvent struct {
	Input    string `json:"input"`
	Expanded string `json:"expanded,omitempty"`

	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`
}

// DirectiveEvent records a REPL directive being run.
type DirectiveEvent struct {
	Name   string   `json:"name"`
	Args   []string `json:"args,omitempty"`
	Status int      `json:"status"`
}

func (e *ParseEvent) attach(le *LogEntry)     { le.Parse = e }
func (e *ExpandEvent) attach(le *LogEntry)    { le.Expand = e }
func (e *DirectiveEvent) attach(le *LogEntry) { le.Directive = e }

// NewParseEvent describes the result of parsing input.
func NewParseEvent(input string, tree *shell.SyntaxTree, err error) *ParseEvent {
	event := &ParseEvent{Input: input}
	if err != nil {
		event.ErrorKind = shell.ErrorKind(err)
		event.Error = err.Error()

		var unsupported *shell.UnsupportedError
		if errors.As(err, &unsupported) {
			event.Feature = unsupported.Feature
		}
		return event
	}

	event.Rendered = tree.String()
	for _, ct := range tree.Commands {
		switch ct := ct.(type) {
		case *shell.Single:
			event.Commands = append(event.Commands, ct.Command.Name.Text)
		case *shell.Pipeline:
			for _, cmd := range ct.Commands {
				event.Commands = append(event.Commands, cmd.Name.Text)
			}
		}
	}
	return event
}

// NewExpandEvent describes the result of expanding a parsed line.
func NewExpandEvent(input string, expanded *shell.SyntaxTree, err error) *ExpandEvent {
	event := &ExpandEvent{Input: input}
	if err != nil {
		event.ErrorKind = shell.ErrorKind(err)
		event.Error = err.Error()
		return event
	}
	event.Expanded = expanded.String()
	return event
}
