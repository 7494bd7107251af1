package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/zhmu-100/RationService/internal/activity"
)

type settings struct {
	rec   activity.Recorder
	newID func() string
	now   func() time.Time
}

// Option customises a service.
type Option func(*settings)

// WithRecorder sets the activity sink. The default discards events.
func WithRecorder(rec activity.Recorder) Option {
	return func(s *settings) {
		if rec != nil {
			s.rec = rec
		}
	}
}

// WithIDGenerator replaces uuid.NewString for new record ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *settings) { s.newID = fn }
}

// WithClock replaces time.Now for meal dates.
func WithClock(fn func() time.Time) Option {
	return func(s *settings) { s.now = fn }
}

func newSettings(opts []Option) settings {
	s := settings{rec: activity.Nop(), newID: uuid.NewString, now: time.Now}
	for _, o := range opts {
		o(&s)
	}
	return s
}
