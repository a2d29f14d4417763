package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrStreamUnavailable is an exported constant or variable used by the portal engine.
	ErrStreamUnavailable = errors.New("event stream unavailable")
)

// Publisher appends portal events to the authoritative stream. Appends are
// at-least-once: the caller's state mutation has already happened and is
// never rolled back on a publish failure.
type Publisher struct {
	redis  redis.UniversalClient
	stream string
	maxLen int64
}

func NewPublisher(redisClient redis.UniversalClient, stream string, maxLen int64) *Publisher {
	if stream == "" {
		stream = "portal:events"
	}
	return &Publisher{
		redis:  redisClient,
		stream: stream,
		maxLen: maxLen,
	}
}

// Stream returns the stream key events are appended to.
func (p *Publisher) Stream() string {
	return p.stream
}

// Publish appends the event. The stream is capped approximately (MAXLEN ~)
// so trimming never blocks the append path.
func (p *Publisher) Publish(ctx context.Context, event Event) error {
	values, err := event.streamValues()
	if err != nil {
		return err
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: values,
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if err := p.redis.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStreamUnavailable, err)
	}

	return nil
}
