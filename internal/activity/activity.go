// Package activity records "activity" and "error" events about service
// operations. Recorders never fail the operation they describe.
package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Kind distinguishes the two event streams.
type Kind string

const (
	KindActivity Kind = "activity"
	KindError    Kind = "error"
)

// Fields carries additional string data about an event.
type Fields map[string]string

// Event is the payload delivered to sinks.
type Event struct {
	Kind         Kind      `json:"kind"`
	Service      string    `json:"service"`
	Message      string    `json:"message"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	StackTrace   string    `json:"stackTrace,omitempty"`
	Data         Fields    `json:"additionalData,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Recorder is the sink services write to.
type Recorder interface {
	Activity(ctx context.Context, msg string, fields Fields)
	Error(ctx context.Context, msg string, err error, fields Fields)
}

// NewEvent builds an event stamped with now. A non-nil err fills the error
// message and its "%+v" rendering, which carries a stack for pkg/errors values.
func NewEvent(kind Kind, service, msg string, err error, fields Fields, now time.Time) Event {
	e := Event{Kind: kind, Service: service, Message: msg, Data: fields, Timestamp: now.UTC()}
	if err != nil {
		e.ErrorMessage = err.Error()
		if trace := fmt.Sprintf("%+v", err); trace != e.ErrorMessage {
			e.StackTrace = trace
		}
	}
	return e
}

// LogRecorder writes events to a zerolog logger.
type LogRecorder struct {
	log zerolog.Logger
}

// NewLogRecorder returns a Recorder that writes events to log.
func NewLogRecorder(log zerolog.Logger) *LogRecorder {
	return &LogRecorder{log: log.With().Str("component", "activity").Logger()}
}

func (r *LogRecorder) Activity(_ context.Context, msg string, fields Fields) {
	ev := r.log.Info()
	for k, v := range fields {
		ev = ev.Str(k, v)
	}
	ev.Msg(msg)
}

func (r *LogRecorder) Error(_ context.Context, msg string, err error, fields Fields) {
	ev := r.log.Error().Stack().Err(err)
	for k, v := range fields {
		ev = ev.Str(k, v)
	}
	ev.Msg(msg)
}

type nop struct{}

func (nop) Activity(context.Context, string, Fields) {}

func (nop) Error(context.Context, string, error, Fields) {}

// Nop discards every event.
func Nop() Recorder { return nop{} }

type tee []Recorder

// Tee fans every event out to each recorder in order.
func Tee(recorders ...Recorder) Recorder { return tee(recorders) }

func (t tee) Activity(ctx context.Context, msg string, fields Fields) {
	for _, r := range t {
		r.Activity(ctx, msg, fields)
	}
}

func (t tee) Error(ctx context.Context, msg string, err error, fields Fields) {
	for _, r := range t {
		r.Error(ctx, msg, err, fields)
	}
}
