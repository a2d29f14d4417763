package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type enumerates the closed set of portal event kinds. Unknown types are
// rejected at construction and at decode.
type Type string

const (
	// TypePasswordChanged is an exported constant or variable used by the portal engine.
	TypePasswordChanged Type = "USER_PASSWORD_CHANGED"
	// TypeProfileUpdated is an exported constant or variable used by the portal engine.
	TypeProfileUpdated Type = "USER_PROFILE_UPDATED"
	// TypeUserDisabled is an exported constant or variable used by the portal engine.
	TypeUserDisabled Type = "USER_DISABLED"
	// TypeUserEnabled is an exported constant or variable used by the portal engine.
	TypeUserEnabled Type = "USER_ENABLED"
)

var (
	// ErrInvalidEvent is an exported constant or variable used by the portal engine.
	ErrInvalidEvent = errors.New("invalid portal event")
)

// Operator identifies who triggered the event.
type Operator struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Payload is the closed tagged-variant interface implemented by the
// per-kind payload types. Payloads are validated at event construction and
// never mutated afterwards.
type Payload interface {
	eventType() Type
}

// PasswordChangedPayload carries no extra fields: the version bump in the
// envelope is the whole message.
type PasswordChangedPayload struct{}

func (PasswordChangedPayload) eventType() Type { return TypePasswordChanged }

// ProfileUpdatedPayload names the profile fields that changed.
type ProfileUpdatedPayload struct {
	ChangedFields []string `json:"changed_fields"`
}

func (ProfileUpdatedPayload) eventType() Type { return TypeProfileUpdated }

// StatusChangedPayload records why an account was disabled or re-enabled.
type StatusChangedPayload struct {
	Disabled bool   `json:"disabled"`
	Reason   string `json:"reason,omitempty"`
}

func (p StatusChangedPayload) eventType() Type {
	if p.Disabled {
		return TypeUserDisabled
	}
	return TypeUserEnabled
}

// Event is the immutable record appended to the portal stream. Construct
// through [New]; events are never mutated after creation.
type Event struct {
	ID             string
	Type           Type
	UserID         string
	AuthVersion    int64
	ProfileVersion int64
	Operator       Operator
	OccurredAt     time.Time
	Payload        Payload
}

// New validates and assembles an event, minting its UUID and timestamp. The
// payload kind determines the event type; a mismatched or missing payload is
// a construction error, not a publish-time surprise.
func New(userID string, authVersion, profileVersion int64, op Operator, payload Payload) (Event, error) {
	if userID == "" {
		return Event{}, fmt.Errorf("%w: empty user id", ErrInvalidEvent)
	}
	if payload == nil {
		return Event{}, fmt.Errorf("%w: nil payload", ErrInvalidEvent)
	}

	return Event{
		ID:             uuid.NewString(),
		Type:           payload.eventType(),
		UserID:         userID,
		AuthVersion:    authVersion,
		ProfileVersion: profileVersion,
		Operator:       op,
		OccurredAt:     time.Now(),
		Payload:        payload,
	}, nil
}

// streamValues flattens the event into Redis stream fields. The payload is a
// JSON blob under a single field; the envelope fields stay flat so consumers
// in other languages can filter without decoding the payload.
func (e Event) streamValues() (map[string]interface{}, error) {
	payloadJSON, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	return map[string]interface{}{
		"event_id":        e.ID,
		"event_type":      string(e.Type),
		"user_id":         e.UserID,
		"auth_version":    e.AuthVersion,
		"profile_version": e.ProfileVersion,
		"operator_id":     e.Operator.ID,
		"operator_name":   e.Operator.Name,
		"ts":              e.OccurredAt.UnixMilli(),
		"payload":         string(payloadJSON),
	}, nil
}

func payloadForType(t Type, raw string) (Payload, error) {
	switch t {
	case TypePasswordChanged:
		return PasswordChangedPayload{}, nil
	case TypeProfileUpdated:
		var p ProfileUpdatedPayload
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
		}
		return p, nil
	case TypeUserDisabled, TypeUserEnabled:
		var p StatusChangedPayload
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
		}
		p.Disabled = t == TypeUserDisabled
		return p, nil
	default:
		return nil, fmt.Errorf("%w: unknown event type %q", ErrInvalidEvent, t)
	}
}
