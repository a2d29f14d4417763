package events

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Delivery pairs a decoded event with the stream entry id needed to ack it.
type Delivery struct {
	StreamID string
	Event    Event
}

// Consumer drains the portal event stream on behalf of one downstream
// system through a Redis consumer group. The group gives redelivery on
// crash; the caller pairs Fetch with the engine's dedup guard to get
// effective at-most-once processing.
type Consumer struct {
	redis  redis.UniversalClient
	stream string
	group  string
	name   string
}

func NewConsumer(redisClient redis.UniversalClient, stream, group, name string) *Consumer {
	if stream == "" {
		stream = "portal:events"
	}
	return &Consumer{
		redis:  redisClient,
		stream: stream,
		group:  group,
		name:   name,
	}
}

// EnsureGroup creates the consumer group at the start of the stream,
// creating the stream itself when absent. Safe to call on every startup.
func (c *Consumer) EnsureGroup(ctx context.Context) error {
	err := c.redis.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("%w: %v", ErrStreamUnavailable, err)
	}
	return nil
}

// Fetch reads up to count pending events, blocking up to block when the
// stream is empty. A non-positive block reads without blocking. Entries that
// fail to decode are acked and skipped: a malformed entry would otherwise
// wedge the group forever.
func (c *Consumer) Fetch(ctx context.Context, count int64, block time.Duration) ([]Delivery, error) {
	if block <= 0 {
		// go-redis only omits the BLOCK argument for negative durations.
		block = -1
	}

	streams, err := c.redis.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.name,
		Streams:  []string{c.stream, ">"},
		Count:    count,
		Block:    block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStreamUnavailable, err)
	}

	var deliveries []Delivery
	for _, stream := range streams {
		for _, message := range stream.Messages {
			event, err := decodeStreamValues(message.Values)
			if err != nil {
				_ = c.Ack(ctx, message.ID)
				continue
			}
			deliveries = append(deliveries, Delivery{StreamID: message.ID, Event: event})
		}
	}

	return deliveries, nil
}

// Ack marks stream entries as processed for this group.
func (c *Consumer) Ack(ctx context.Context, streamIDs ...string) error {
	if len(streamIDs) == 0 {
		return nil
	}
	if err := c.redis.XAck(ctx, c.stream, c.group, streamIDs...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStreamUnavailable, err)
	}
	return nil
}

func decodeStreamValues(values map[string]interface{}) (Event, error) {
	stringField := func(name string) string {
		v, _ := values[name].(string)
		return v
	}
	intField := func(name string) int64 {
		raw, _ := values[name].(string)
		n, _ := strconv.ParseInt(raw, 10, 64)
		return n
	}

	eventType := Type(stringField("event_type"))
	payload, err := payloadForType(eventType, stringField("payload"))
	if err != nil {
		return Event{}, err
	}

	event := Event{
		ID:             stringField("event_id"),
		Type:           eventType,
		UserID:         stringField("user_id"),
		AuthVersion:    intField("auth_version"),
		ProfileVersion: intField("profile_version"),
		Operator: Operator{
			ID:   stringField("operator_id"),
			Name: stringField("operator_name"),
		},
		OccurredAt: time.UnixMilli(intField("ts")),
		Payload:    payload,
	}

	if event.ID == "" || event.UserID == "" {
		return Event{}, fmt.Errorf("%w: missing envelope fields", ErrInvalidEvent)
	}

	return event, nil
}
