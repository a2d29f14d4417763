package events

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStreamRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return mr, rdb
}

func TestNewDerivesTypeFromPayload(t *testing.T) {
	cases := []struct {
		payload Payload
		want    Type
	}{
		{PasswordChangedPayload{}, TypePasswordChanged},
		{ProfileUpdatedPayload{ChangedFields: []string{"name"}}, TypeProfileUpdated},
		{StatusChangedPayload{Disabled: true, Reason: "fraud"}, TypeUserDisabled},
		{StatusChangedPayload{Disabled: false}, TypeUserEnabled},
	}
	for _, tt := range cases {
		event, err := New("u1", 2, 3, Operator{ID: "admin-1", Name: "admin"}, tt.payload)
		if err != nil {
			t.Fatalf("New failed for %T: %v", tt.payload, err)
		}
		if event.Type != tt.want {
			t.Fatalf("payload %T mapped to %q, want %q", tt.payload, event.Type, tt.want)
		}
		if event.ID == "" || event.OccurredAt.IsZero() {
			t.Fatalf("event missing minted fields: %+v", event)
		}
	}
}

func TestNewRejectsInvalidInput(t *testing.T) {
	if _, err := New("", 1, 1, Operator{}, PasswordChangedPayload{}); !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent for empty user id, got %v", err)
	}
	if _, err := New("u1", 1, 1, Operator{}, nil); !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent for nil payload, got %v", err)
	}
}

func TestStreamValuesRoundTrip(t *testing.T) {
	event, err := New("u1", 4, 2, Operator{ID: "admin-1", Name: "admin"}, ProfileUpdatedPayload{
		ChangedFields: []string{"name", "email"},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	values, err := event.streamValues()
	if err != nil {
		t.Fatalf("streamValues failed: %v", err)
	}

	// Redis hands every stream field back as a string.
	stringified := map[string]interface{}{
		"event_id":        values["event_id"],
		"event_type":      values["event_type"],
		"user_id":         values["user_id"],
		"auth_version":    "4",
		"profile_version": "2",
		"operator_id":     values["operator_id"],
		"operator_name":   values["operator_name"],
		"ts":              "1700000000000",
		"payload":         values["payload"],
	}

	decoded, err := decodeStreamValues(stringified)
	if err != nil {
		t.Fatalf("decodeStreamValues failed: %v", err)
	}
	if decoded.ID != event.ID || decoded.Type != TypeProfileUpdated || decoded.UserID != "u1" {
		t.Fatalf("envelope mismatch: %+v", decoded)
	}
	if decoded.AuthVersion != 4 || decoded.ProfileVersion != 2 {
		t.Fatalf("version mismatch: %+v", decoded)
	}
	payload, ok := decoded.Payload.(ProfileUpdatedPayload)
	if !ok {
		t.Fatalf("unexpected payload type %T", decoded.Payload)
	}
	if len(payload.ChangedFields) != 2 || payload.ChangedFields[0] != "name" {
		t.Fatalf("payload mismatch: %+v", payload)
	}
}

func TestDecodeStreamValuesRejectsMalformed(t *testing.T) {
	cases := []map[string]interface{}{
		{},
		{"event_type": "UNKNOWN_KIND", "payload": "{}"},
		{"event_type": string(TypeProfileUpdated), "payload": "not-json"},
		{"event_type": string(TypePasswordChanged), "payload": "{}", "user_id": "u1"},
	}
	for i, values := range cases {
		if _, err := decodeStreamValues(values); !errors.Is(err, ErrInvalidEvent) {
			t.Fatalf("case %d: expected ErrInvalidEvent, got %v", i, err)
		}
	}
}

func TestPublisherCapsStreamLength(t *testing.T) {
	_, rdb := newTestStreamRedis(t)
	ctx := context.Background()

	pub := NewPublisher(rdb, "portal:events", 10)
	for i := 0; i < 50; i++ {
		event, err := New("u1", 1, 1, Operator{}, PasswordChangedPayload{})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if err := pub.Publish(ctx, event); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
	}

	length, err := rdb.XLen(ctx, "portal:events").Result()
	if err != nil {
		t.Fatalf("XLen failed: %v", err)
	}
	// Approximate trimming may overshoot, but not unboundedly.
	if length > 40 {
		t.Fatalf("stream not trimmed, length %d", length)
	}
}

func TestConsumerSkipsMalformedEntries(t *testing.T) {
	_, rdb := newTestStreamRedis(t)
	ctx := context.Background()

	consumer := NewConsumer(rdb, "portal:events", "crm-workers", "worker-1")
	if err := consumer.EnsureGroup(ctx); err != nil {
		t.Fatalf("EnsureGroup failed: %v", err)
	}
	// EnsureGroup is idempotent across restarts.
	if err := consumer.EnsureGroup(ctx); err != nil {
		t.Fatalf("second EnsureGroup failed: %v", err)
	}

	if err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: "portal:events",
		Values: map[string]interface{}{"junk": "entry"},
	}).Err(); err != nil {
		t.Fatalf("XAdd failed: %v", err)
	}

	pub := NewPublisher(rdb, "portal:events", 0)
	event, err := New("u1", 1, 1, Operator{}, PasswordChangedPayload{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := pub.Publish(ctx, event); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	deliveries, err := consumer.Fetch(ctx, 10, 0)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(deliveries) != 1 {
		t.Fatalf("expected 1 decodable delivery, got %d", len(deliveries))
	}
	if deliveries[0].Event.ID != event.ID {
		t.Fatalf("delivered wrong event: %+v", deliveries[0].Event)
	}

	if err := consumer.Ack(ctx, deliveries[0].StreamID); err != nil {
		t.Fatalf("Ack failed: %v", err)
	}

	// Nothing new remains after ack.
	deliveries, err = consumer.Fetch(ctx, 10, 0)
	if err != nil {
		t.Fatalf("second Fetch failed: %v", err)
	}
	if len(deliveries) != 0 {
		t.Fatalf("expected no further deliveries, got %d", len(deliveries))
	}
}
