package ttylog

import (
	"io"
	"log"
	sync "sync"
	"time"
)

// FD is the stream an entry was read from or written to.
type FD int

const (
	FD_STDIN FD = iota
	FD_STDOUT
	FD_STDERR
	// FD_MARKER entries label a point in the session, Data holds the label.
	FD_MARKER
)

// TTYLogEntry is a chunk of data that passed through a session's streams.
type TTYLogEntry struct {
	TimestampMicros int64
	Fd              FD
	Data            []byte
}

// LogSink receives log events.
type LogSink func(t *TTYLogEntry) error

// LogSource adapts log readers.
type LogSource interface {
	// Next fetches the next available log entry. It reutrns io.EOF if the source
	// has no more log entries.
	Next() (*TTYLogEntry, error)
}

// NewRealTimePlayback plays back the results in real-time.
// If maxSleep > 0, it's used as the maximum duration to pause.
func NewRealTimePlayback(maxSleep time.Duration, next LogSink) LogSink {
	var once sync.Once
	var prevTimeMicros int64

	return func(logEntry *TTYLogEntry) error {
		once.Do(func() {
			prevTimeMicros = logEntry.TimestampMicros
		})

		delta := logEntry.TimestampMicros - prevTimeMicros
		prevTimeMicros = logEntry.TimestampMicros

		if maxSleep > 0 {
			sleepDuration := time.Duration(delta) * time.Microsecond
			if sleepDuration > maxSleep {
				sleepDuration = maxSleep
			}
			time.Sleep(sleepDuration)
		}

		return next(logEntry)
	}
}

// NewClientOutput writes stdout and stderr to the given writer
func NewClientOutput(w io.Writer) LogSink {
	return func(logEntry *TTYLogEntry) error {
		if logEntry.Fd == FD_STDIN || logEntry.Fd == FD_MARKER {
			return nil
		}
		_, err := w.Write(logEntry.Data)
		return err
	}
}

// Replay reads a stream of events to a callback.
func Replay(recording LogSource, callback LogSink) (err error) {
	for {
		logEntry, err := recording.Next()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}

		if err := callback(logEntry); err != nil {
			return err
		}
	}
}

// Recorder copies everything passing through a session's streams to a
// LogSink.
type Recorder struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	mutex  sync.Mutex
	output LogSink
	// Now defaults to time.Now.
	Now func() time.Time
}

func (r *Recorder) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Recorder) emit(eventTime time.Time, fd FD, data []byte) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	err := r.output(&TTYLogEntry{
		TimestampMicros: eventTime.UnixNano() / int64(time.Microsecond),
		Fd:              fd,
		Data:            append([]byte(nil), data...),
	})
	if err != nil {
		log.Print(err)
	}
}

func (r *Recorder) recordIO(mockFd FD, data []byte, dest func([]byte) (int, error)) (int, error) {
	eventTime := r.now()
	amount, err := dest(data)
	if amount > 0 {
		r.emit(eventTime, mockFd, data[:amount])
	}
	return amount, err
}

// Mark records a marker labeled with label, e.g. the line a session is
// about to run.
func (r *Recorder) Mark(label string) {
	r.emit(r.now(), FD_MARKER, []byte(label))
}

type recorderReader struct {
	r       *Recorder
	wrapped io.Reader
}

var _ io.Reader = (*recorderReader)(nil)

func (rc *recorderReader) Read(p []byte) (int, error) {
	return rc.r.recordIO(FD_STDIN, p, rc.wrapped.Read)
}

type recorderWriter struct {
	r       *Recorder
	mockFd  FD
	wrapped io.Writer
}

var _ io.Writer = (*recorderWriter)(nil)

func (rc *recorderWriter) Write(p []byte) (int, error) {
	return rc.r.recordIO(rc.mockFd, p, rc.wrapped.Write)
}

// NewRecorder wraps the streams of a session, forwarding everything read or
// written to output.
func NewRecorder(stdin io.Reader, stdout, stderr io.Writer, output LogSink) *Recorder {
	recorder := &Recorder{
		output: output,
	}

	recorder.Stdin = &recorderReader{r: recorder, wrapped: stdin}
	recorder.Stdout = &recorderWriter{r: recorder, mockFd: FD_STDOUT, wrapped: stdout}
	recorder.Stderr = &recorderWriter{r: recorder, mockFd: FD_STDERR, wrapped: stderr}

	return recorder
}
