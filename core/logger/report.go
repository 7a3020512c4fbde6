package logger

import (
	"encoding/json"
	"io"
	"sort"
)

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}

		handler(&logEntry)
	}
	return nil
}

func NewErrorReport() *ErrorReport {
	return &ErrorReport{
		ParseErrors:  NewPathCounter("kind", "error"),
		ExpandErrors: NewPathCounter("kind", "error"),
	}
}

// ErrorReport pulls out the lines that couldn't be handled, these point at
// missing features.
type ErrorReport struct {
	LogEntries int `json:"log_entries"`

	ParseErrors  *PathCounter `json:"parse_errors"`
	ExpandErrors *PathCounter `json:"expand_errors"`
}

func (r *ErrorReport) Update(le *LogEntry) {
	r.LogEntries++

	switch {
	case le.Parse != nil && le.Parse.ErrorKind != "":
		r.ParseErrors.Increment(le.Parse.ErrorKind, le.Parse.Error)
	case le.Expand != nil && le.Expand.ErrorKind != "":
		r.ExpandErrors.Increment(le.Expand.ErrorKind, le.Expand.Error)
	}
}

// SessionReport groups the parsed lines by session.
type SessionReport struct {
	// Map of sessionID -> session
	sessions map[string]*Session
}

type Session struct {
	LogEntries int      `json:"log_entries"`
	Inputs     []string `json:"inputs"`
	Directives []string `json:"directives,omitempty"`
}

func (s *Session) Update(le *LogEntry) {
	s.LogEntries++

	switch {
	case le.Parse != nil:
		s.Inputs = append(s.Inputs, le.Parse.Input)
	case le.Directive != nil:
		s.Directives = append(s.Directives, le.Directive.Name)
	}
}

func (r *SessionReport) init() {
	if r.sessions == nil {
		r.sessions = make(map[string]*Session)
	}
}

// MarshalJSON implemnts custom JSON marshaler.
func (r *SessionReport) MarshalJSON() ([]byte, error) {
	r.init()

	return json.Marshal(r.sessions)
}

func (r *SessionReport) Update(le *LogEntry) {
	r.init()

	if le.SessionID == "" {
		return
	}
	session, ok := r.sessions[le.SessionID]
	if !ok {
		session = &Session{}
		r.sessions[le.SessionID] = session
	}

	session.Update(le)
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	InvalidEntries StrCounter `json:"unknown_log_entries,omitempty"`

	Parse     ParseReport     `json:"parse_report"`
	Expand    ExpandReport    `json:"expand_report"`
	Directive DirectiveReport `json:"directive_report"`
}

func (r *Report) Update(le *LogEntry) {
	r.LogEntries++

	switch {
	case le.Parse != nil:
		r.Parse.update(le.Parse)
	case le.Expand != nil:
		r.Expand.update(le.Expand)
	case le.Directive != nil:
		r.Directive.update(le.Directive)
	default:
		r.InvalidEntries.Increment("empty")
	}
}

type ParseReport struct {
	// Results counts successes ("ok") and each kind of error.
	Results StrCounter `json:"results"`
	// Features counts the unsupported features lines used.
	Features StrCounter `json:"unsupported_features"`
	// CommandNames counts the names of parsed commands.
	CommandNames StrCounter `json:"command_names"`
}

func (r *ParseReport) update(e *ParseEvent) {
	r.Results.Increment(resultOf(e.ErrorKind))
	if e.Feature != "" {
		r.Features.Increment(e.Feature)
	}
	for _, name := range e.Commands {
		r.CommandNames.Increment(name)
	}
}

type ExpandReport struct {
	Results StrCounter `json:"results"`
}

func (r *ExpandReport) update(e *ExpandEvent) {
	r.Results.Increment(resultOf(e.ErrorKind))
}

type DirectiveReport struct {
	Names    StrCounter `json:"names"`
	Failures StrCounter `json:"failures"`
}

func (r *DirectiveReport) update(e *DirectiveEvent) {
	r.Names.Increment(e.Name)
	if e.Status != 0 {
		r.Failures.Increment(e.Name)
	}
}

func resultOf(errorKind string) string {
	if errorKind == "" {
		return "ok"
	}
	return errorKind
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Get returns the count for the key.
func (s *StrCounter) Get(key string) int {
	return s.internal[key]
}

// MarshalJSON implemnts custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.internal)
}

func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts the number of distinct tuples seen.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given key.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// MarshalJSON implemnts custom JSON marshaler.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type Count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		Path   string            `json:"-"`
	}

	out := []Count{}
	for k, v := range ctr.internal {
		count := Count{
			Count:  v,
			Path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			count.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, count)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Path < out[j].Path
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	json.Unmarshal([]byte(key), &out)
	return
}
