// Package reactorlogiface adapts a github.com/joeycumines/logiface logger
// into a reactor.Logger, for applications that already standardize their
// structured logging on logiface rather than the reactor package's own
// minimal Logger interface.
//
// It supplies a minimal Event implementation writing plain text lines, so
// that this package has no dependency beyond logiface itself. Applications
// that want different output can construct their own
// *logiface.Logger[*Event] (for example with another Writer) and pass it
// to New instead of NewDefault; New does not accept loggers built on other
// logiface Event types.
package reactorlogiface

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/joeycumines/logiface"

	"github.com/go-reactor/reactor"
)

// Event is a minimal logiface.Event implementation that accumulates
// fields into a single text line.
type Event struct {
	logiface.UnimplementedEvent
	level Level
	msg   string
	err   error
	kv    []string
}

// Level is an alias kept local to avoid every call site spelling out
// logiface.Level.
type Level = logiface.Level

func (e *Event) Level() Level { return e.level }

func (e *Event) AddField(key string, val any) {
	e.kv = append(e.kv, fmt.Sprintf("%s=%v", key, val))
}

func (e *Event) AddMessage(msg string) bool {
	e.msg = msg
	return true
}

func (e *Event) AddError(err error) bool {
	e.err = err
	return true
}

func (e *Event) AddString(key string, val string) bool {
	e.kv = append(e.kv, fmt.Sprintf("%s=%s", key, val))
	return true
}

func (e *Event) reset() {
	e.level = logiface.LevelDisabled
	e.msg = ""
	e.err = nil
	e.kv = e.kv[:0]
}

// textWriter implements logiface.Writer[*Event] by formatting each event
// as one line and writing it to an io.Writer.
type textWriter struct {
	mu  sync.Mutex
	out io.Writer
}

func (w *textWriter) Write(event *Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, "[%s] %s", event.level, event.msg)
	if len(event.kv) > 0 {
		fmt.Fprintf(w.out, " %s", strings.Join(event.kv, " "))
	}
	if event.err != nil {
		fmt.Fprintf(w.out, " err=%v", event.err)
	}
	fmt.Fprintln(w.out)
	return nil
}

var eventPool = sync.Pool{New: func() any { return &Event{} }}

func newEventFactory() logiface.EventFactory[*Event] {
	return logiface.NewEventFactoryFunc(func(level Level) *Event {
		ev := eventPool.Get().(*Event)
		ev.reset()
		ev.level = level
		return ev
	})
}

func newEventReleaser() logiface.EventReleaser[*Event] {
	return logiface.NewEventReleaserFunc(func(event *Event) {
		eventPool.Put(event)
	})
}

// NewDefault builds a reactor.Logger backed by this package's own
// plain-text logiface.Event implementation, writing to os.Stderr.
func NewDefault(level Level) reactor.Logger {
	logger := logiface.New[*Event](
		logiface.WithEventFactory[*Event](newEventFactory()),
		logiface.WithEventReleaser[*Event](newEventReleaser()),
		logiface.WithWriter[*Event](&textWriter{out: os.Stderr}),
		logiface.WithLevel[*Event](level),
	)
	return New(logger)
}

// logAdapter wraps a logiface.Logger so it satisfies reactor.Logger.
type logAdapter struct {
	logger *logiface.Logger[*Event]
}

// New wraps an existing logiface logger using this package's Event type
// as a reactor.Logger.
func New(logger *logiface.Logger[*Event]) reactor.Logger {
	return &logAdapter{logger: logger}
}

func (a *logAdapter) IsEnabled(level reactor.LogLevel) bool {
	return a.logger.Level() >= toLogifaceLevel(level)
}

func (a *logAdapter) Log(entry reactor.LogEntry) {
	b := a.builderFor(entry.Level)
	if b == nil {
		return
	}
	b = b.Str("category", entry.Category)
	if entry.SourceFD != 0 {
		b = b.Int("fd", entry.SourceFD)
	}
	for k, v := range entry.Fields {
		b = b.Any(k, v)
	}
	if entry.Err != nil {
		b = b.Err(entry.Err)
	}
	b.Log(entry.Message)
}

func (a *logAdapter) builderFor(level reactor.LogLevel) *logiface.Builder[*Event] {
	switch level {
	case reactor.LevelDebug:
		return a.logger.Debug()
	case reactor.LevelInfo:
		return a.logger.Info()
	case reactor.LevelWarn:
		return a.logger.Warning()
	case reactor.LevelError:
		return a.logger.Err()
	default:
		return a.logger.Info()
	}
}

func toLogifaceLevel(level reactor.LogLevel) Level {
	switch level {
	case reactor.LevelDebug:
		return logiface.LevelDebug
	case reactor.LevelInfo:
		return logiface.LevelInformational
	case reactor.LevelWarn:
		return logiface.LevelWarning
	case reactor.LevelError:
		return logiface.LevelError
	default:
		return logiface.LevelInformational
	}
}
