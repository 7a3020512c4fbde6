package ttylog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// AsciicastFileExt holds the suggested file extension for asciicast files.
const AsciicastFileExt = "cast"

// Asciicast event codes.
const (
	asciicastOutput = "o"
	asciicastInput  = "i"
	asciicastMarker = "m"
)

// AsciicastHeader is the first line of an asciicast v2 file.
type AsciicastHeader struct {
	Version   int               `json:"version"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Timestamp int64             `json:"timestamp,omitempty"`
	Title     string            `json:"title,omitempty"`
	Env       map[string]string `json:"env,omitempty"`
}

// AsciicastWriter encodes session entries as asciicast v2. The header is
// written along with the first entry, whose timestamp is the start of the
// recording.
//
// See: https://github.com/asciinema/asciinema/blob/develop/doc/asciicast-v2.md
type AsciicastWriter struct {
	w      io.Writer
	header AsciicastHeader

	started     bool
	startMicros int64
}

// NewAsciicastWriter creates a writer for a terminal of the default size.
func NewAsciicastWriter(w io.Writer, title string) *AsciicastWriter {
	return &AsciicastWriter{
		w: w,
		header: AsciicastHeader{
			Version: 2,
			Width:   80,
			Height:  24,
			Title:   title,
			Env:     map[string]string{"TERM": "xterm-256color"},
		},
	}
}

// Write encodes a single entry. Stderr is folded into stdout and markers
// carry their label.
func (a *AsciicastWriter) Write(entry *TTYLogEntry) error {
	if !a.started {
		a.started = true
		a.startMicros = entry.TimestampMicros
		a.header.Timestamp = entry.TimestampMicros / int64(time.Second/time.Microsecond)
		if err := writeJSONLine(a.w, a.header); err != nil {
			return err
		}
	}

	code := asciicastOutput
	switch entry.Fd {
	case FD_STDIN:
		code = asciicastInput
	case FD_MARKER:
		code = asciicastMarker
	}

	return writeJSONLine(a.w, &asciicastEvent{
		TimeSeconds: microsecondsToSeconds(entry.TimestampMicros - a.startMicros),
		Code:        code,
		Data:        string(entry.Data),
	})
}

// NewAsciicastLogSink creates a LogSink writing asciicast v2 to w.
func NewAsciicastLogSink(w io.Writer, title string) LogSink {
	return NewAsciicastWriter(w, title).Write
}

// AsciicastLogSource reads entries back from an asciicast v2 file.
type AsciicastLogSource struct {
	r      *bufio.Reader
	header *AsciicastHeader
}

var _ LogSource = (*AsciicastLogSource)(nil)

// NewAsciicastLogSource reads log events from an Asciicast formatted file.
func NewAsciicastLogSource(r io.Reader) *AsciicastLogSource {
	return &AsciicastLogSource{r: bufio.NewReader(r)}
}

// Header returns the recording's header, reading it if needed.
func (src *AsciicastLogSource) Header() (*AsciicastHeader, error) {
	if src.header != nil {
		return src.header, nil
	}

	line, err := src.r.ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return nil, err
	}
	header := &AsciicastHeader{}
	if err := json.Unmarshal(line, header); err != nil {
		return nil, fmt.Errorf("malformed asciicast header: %w", err)
	}
	if header.Version != 2 {
		return nil, fmt.Errorf("unsupported asciicast version %d", header.Version)
	}
	src.header = header
	return header, nil
}

// Next gets the next log entry, it returns io.EOF if there are no more.
// Unknown event codes are skipped.
func (src *AsciicastLogSource) Next() (*TTYLogEntry, error) {
	if _, err := src.Header(); err != nil {
		return nil, err
	}

	for {
		line, err := src.r.ReadBytes('\n')
		if err != nil {
			return nil, err
		}
		if len(line) == 1 {
			continue
		}

		var event asciicastEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, err
		}

		var fd FD
		switch event.Code {
		case asciicastOutput:
			fd = FD_STDOUT
		case asciicastInput:
			fd = FD_STDIN
		case asciicastMarker:
			fd = FD_MARKER
		default:
			continue
		}

		return &TTYLogEntry{
			TimestampMicros: secondsToMicroseconds(event.TimeSeconds),
			Fd:              fd,
			Data:            []byte(event.Data),
		}, nil
	}
}

// asciicastEvent is a [time, code, data] event line.
type asciicastEvent struct {
	TimeSeconds float64
	Code        string
	Data        string
}

func (e *asciicastEvent) UnmarshalJSON(data []byte) error {
	var v []interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if count := len(v); count != 3 {
		return fmt.Errorf("malformed line, expected 3 entries got %d", count)
	}

	var timeOk, codeOk, dataOk bool
	e.TimeSeconds, timeOk = v[0].(float64)
	e.Code, codeOk = v[1].(string)
	e.Data, dataOk = v[2].(string)
	if !timeOk || !codeOk || !dataOk {
		return fmt.Errorf("malformed data in line: %q", v)
	}
	return nil
}

func (e *asciicastEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{e.TimeSeconds, e.Code, e.Data})
}

func writeJSONLine(w io.Writer, v interface{}) error {
	line, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", line)
	return err
}

func microsecondsToSeconds(microseconds int64) (seconds float64) {
	return (float64(microseconds) * float64(time.Microsecond)) / float64(time.Second)
}

func secondsToMicroseconds(seconds float64) (microseconds int64) {
	return int64(float64(seconds)*float64(time.Second)) / int64(time.Microsecond)
}
