package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// Channels names the pub/sub channels the two event kinds go to.
type Channels struct {
	Activity string
	Error    string
}

// DefaultChannels are the channels the logger service subscribes to.
var DefaultChannels = Channels{Activity: "logger:activity", Error: "logger:error"}

// Publisher sends one payload to a channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

type redisPublisher struct{ c *redis.Client }

// NewRedisPublisher publishes through PUBLISH on c.
func NewRedisPublisher(c *redis.Client) Publisher { return redisPublisher{c: c} }

func (p redisPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return p.c.Publish(ctx, channel, payload).Err()
}

// RedisRecorder queues events on a Bus; Run drains the bus into a Publisher.
// Recording never blocks: a full buffer drops the event.
type RedisRecorder struct {
	service  string
	channels Channels
	bus      *Bus
	pub      Publisher
	log      zerolog.Logger
	now      func() time.Time
}

// NewRedisRecorder returns a Recorder that queues events on bus for pub.
func NewRedisRecorder(service string, channels Channels, bus *Bus, pub Publisher, log zerolog.Logger) *RedisRecorder {
	if channels.Activity == "" {
		channels.Activity = DefaultChannels.Activity
	}
	if channels.Error == "" {
		channels.Error = DefaultChannels.Error
	}
	return &RedisRecorder{
		service:  service,
		channels: channels,
		bus:      bus,
		pub:      pub,
		log:      log.With().Str("component", "activity.redis").Logger(),
		now:      time.Now,
	}
}

func (r *RedisRecorder) Activity(_ context.Context, msg string, fields Fields) {
	r.bus.Publish(NewEvent(KindActivity, r.service, msg, nil, fields, r.now()))
}

func (r *RedisRecorder) Error(_ context.Context, msg string, err error, fields Fields) {
	r.bus.Publish(NewEvent(KindError, r.service, msg, err, fields, r.now()))
}

// Run publishes queued events until ctx is done. Events still queued at that
// point are flushed with a short deadline.
func (r *RedisRecorder) Run(ctx context.Context) {
	for {
		select {
		case e := <-r.bus.Subscribe():
			r.deliver(ctx, e)
		case <-ctx.Done():
			r.flush()
			return
		}
	}
}

func (r *RedisRecorder) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		select {
		case e := <-r.bus.Subscribe():
			r.deliver(ctx, e)
		default:
			return
		}
	}
}

func (r *RedisRecorder) deliver(ctx context.Context, e Event) {
	channel := r.channels.Activity
	if e.Kind == KindError {
		channel = r.channels.Error
	}
	payload, err := json.Marshal(e)
	if err != nil {
		r.log.Error().Err(err).Msg("encode activity event")
		return
	}
	if err := r.pub.Publish(ctx, channel, payload); err != nil {
		r.log.Warn().Err(err).Str("channel", channel).Str("event", e.Message).Msg("publish activity event failed")
	}
}

// RedisOptions locates the redis server.
type RedisOptions struct {
	Host     string
	Port     int
	Password string
}

// DialRedis connects and pings with exponential backoff until maxWait elapses.
func DialRedis(ctx context.Context, opts RedisOptions, maxWait time.Duration) (*redis.Client, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Password: opts.Password,
	})
	if err := waitFor(ctx, func(ctx context.Context) error { return c.Ping(ctx).Err() }, maxWait); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis %s:%d unreachable: %w", opts.Host, opts.Port, err)
	}
	return c, nil
}

func waitFor(ctx context.Context, ping func(context.Context) error, maxWait time.Duration) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 100 * time.Millisecond
	exp.MaxInterval = time.Second
	exp.MaxElapsedTime = maxWait
	return backoff.Retry(func() error { return ping(ctx) }, backoff.WithContext(exp, ctx))
}
