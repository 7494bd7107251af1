package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	channel string
	event   Event
}

type fakePublisher struct {
	mu   sync.Mutex
	got  []sent
	fail error
}

func (p *fakePublisher) Publish(_ context.Context, channel string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	var e Event
	if err := json.Unmarshal(payload, &e); err != nil {
		return err
	}
	p.got = append(p.got, sent{channel: channel, event: e})
	return nil
}

func (p *fakePublisher) snapshot() []sent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]sent(nil), p.got...)
}

type memRecorder struct {
	activities []string
	errors     []string
}

func (m *memRecorder) Activity(_ context.Context, msg string, _ Fields) {
	m.activities = append(m.activities, msg)
}

func (m *memRecorder) Error(_ context.Context, msg string, _ error, _ Fields) {
	m.errors = append(m.errors, msg)
}

func TestNewEvent(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.FixedZone("X", 3600))
	e := NewEvent(KindError, "ration", "create failed", pkgerrors.New("boom"), Fields{"id": "f1"}, now)
	assert.Equal(t, "boom", e.ErrorMessage)
	assert.Contains(t, e.StackTrace, "activity_test.go")
	assert.Equal(t, time.UTC, e.Timestamp.Location())

	plain := NewEvent(KindError, "ration", "x", errors.New("flat"), nil, now)
	assert.Empty(t, plain.StackTrace)
}

func TestRedisRecorder_RoutesByKind(t *testing.T) {
	pub := &fakePublisher{}
	bus := NewBus(16)
	r := NewRedisRecorder("ration", Channels{}, bus, pub, zerolog.Nop())

	r.Activity(context.Background(), "food created", Fields{"id": "f1"})
	r.Error(context.Background(), "food failed", errors.New("boom"), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { r.Run(ctx); close(done) }()

	require.Eventually(t, func() bool { return len(pub.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	got := pub.snapshot()
	assert.Equal(t, "logger:activity", got[0].channel)
	assert.Equal(t, "food created", got[0].event.Message)
	assert.Equal(t, Fields{"id": "f1"}, got[0].event.Data)
	assert.Equal(t, "ration", got[0].event.Service)
	assert.Equal(t, "logger:error", got[1].channel)
	assert.Equal(t, "boom", got[1].event.ErrorMessage)
}

func TestRedisRecorder_FlushesOnShutdown(t *testing.T) {
	pub := &fakePublisher{}
	bus := NewBus(4)
	r := NewRedisRecorder("ration", Channels{Activity: "a", Error: "e"}, bus, pub, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Activity(context.Background(), "late", nil)
	r.Run(ctx)

	got := pub.snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].channel)
}

func TestRedisRecorder_PublishFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	pub := &fakePublisher{fail: errors.New("READONLY")}
	bus := NewBus(4)
	r := NewRedisRecorder("ration", DefaultChannels, bus, pub, zerolog.New(&buf))

	r.Activity(context.Background(), "x", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Run(ctx)

	assert.True(t, strings.Contains(buf.String(), "READONLY"))
}

func TestBus_DropsWhenFull(t *testing.T) {
	b := NewBus(1)
	assert.True(t, b.Publish(Event{Kind: KindActivity}))
	assert.False(t, b.Publish(Event{Kind: KindActivity}))
	assert.Equal(t, int64(1), b.Dropped())
	<-b.Subscribe()
	assert.True(t, b.Publish(Event{Kind: KindError}))
}

func TestLogRecorder(t *testing.T) {
	var buf bytes.Buffer
	r := NewLogRecorder(zerolog.New(&buf))
	r.Activity(context.Background(), "meal listed", Fields{"userId": "u1"})
	r.Error(context.Background(), "meal failed", errors.New("boom"), Fields{"id": "m1"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"userId":"u1"`)
	assert.Contains(t, lines[0], `"level":"info"`)
	assert.Contains(t, lines[1], `"error":"boom"`)
	assert.Contains(t, lines[1], `"level":"error"`)
}

func TestTeeAndNop(t *testing.T) {
	a, b := &memRecorder{}, &memRecorder{}
	rec := Tee(a, Nop(), b)
	rec.Activity(context.Background(), "one", nil)
	rec.Error(context.Background(), "two", errors.New("x"), nil)

	for _, m := range []*memRecorder{a, b} {
		assert.Equal(t, []string{"one"}, m.activities)
		assert.Equal(t, []string{"two"}, m.errors)
	}
}

func TestWaitFor(t *testing.T) {
	attempts := 0
	err := waitFor(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("not yet")
		}
		return nil
	}, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)

	err = waitFor(context.Background(), func(context.Context) error { return errors.New("down") }, 150*time.Millisecond)
	assert.Error(t, err)
}
