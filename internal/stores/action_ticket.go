package stores

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	actionRecordVersionV1 = 1

	// ScopePassword / ScopeProfile tags inside the encoded record guard
	// against a misrouted key ever redeeming across namespaces.
	ScopePassword uint8 = 1
	ScopeProfile  uint8 = 2

	tombstoneSegment = "used:"
)

var (
	ErrActionNotFound         = errors.New("action ticket not found")
	ErrActionExpired          = errors.New("action ticket expired")
	ErrActionReplayed         = errors.New("action ticket already consumed")
	ErrActionExists           = errors.New("action ticket id collision")
	ErrActionRedisUnavailable = errors.New("action ticket redis unavailable")
)

// ActionTicketRecord is the stored payload of a one-time action ticket.
type ActionTicketRecord struct {
	UserID    string
	Scope     uint8
	IssuedAt  int64
	ExpiresAt int64
}

// ActionTicketStore persists one-time action tickets. Password and profile
// tickets live under separate key prefixes; consuming is a single WATCH
// transaction that deletes the record and writes a short-lived tombstone.
type ActionTicketStore struct {
	redis          redis.UniversalClient
	passwordPrefix string
	profilePrefix  string
}

func NewActionTicketStore(redisClient redis.UniversalClient, passwordPrefix, profilePrefix string) *ActionTicketStore {
	if passwordPrefix == "" {
		passwordPrefix = "portal:action:ticket:pwd:"
	}
	if profilePrefix == "" {
		profilePrefix = "portal:action:ticket:profile:"
	}
	return &ActionTicketStore{
		redis:          redisClient,
		passwordPrefix: passwordPrefix,
		profilePrefix:  profilePrefix,
	}
}

func (s *ActionTicketStore) prefix(scope uint8) (string, error) {
	switch scope {
	case ScopePassword:
		return s.passwordPrefix, nil
	case ScopeProfile:
		return s.profilePrefix, nil
	default:
		return "", fmt.Errorf("unknown action ticket scope %d", scope)
	}
}

func (s *ActionTicketStore) key(scope uint8, ticketID string) (string, error) {
	prefix, err := s.prefix(scope)
	if err != nil {
		return "", err
	}
	return prefix + ticketID, nil
}

func (s *ActionTicketStore) tombstoneKey(scope uint8, ticketID string) (string, error) {
	prefix, err := s.prefix(scope)
	if err != nil {
		return "", err
	}
	return prefix + tombstoneSegment + ticketID, nil
}

// Create stores a fresh ticket with the given TTL. The write is conditional
// on key absence so a colliding id can never silently overwrite a live ticket.
func (s *ActionTicketStore) Create(
	ctx context.Context,
	ticketID string,
	record *ActionTicketRecord,
	ttl time.Duration,
) error {
	key, err := s.key(record.Scope, ticketID)
	if err != nil {
		return err
	}

	encoded, err := encodeActionTicketRecord(record)
	if err != nil {
		return err
	}

	ok, err := s.redis.SetNX(ctx, key, encoded, ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrActionRedisUnavailable, err)
	}
	if !ok {
		return ErrActionExists
	}

	return nil
}

// Consume atomically reads and deletes the ticket, leaving a tombstone so an
// immediate replay is reported as a replay instead of "never existed". True
// expiry is indistinguishable from never-issued once the TTL has fired; the
// ErrActionExpired path only triggers while the record is still readable.
func (s *ActionTicketStore) Consume(
	ctx context.Context,
	ticketID string,
	scope uint8,
	tombstoneTTL time.Duration,
) (*ActionTicketRecord, error) {
	const maxRetries = 4

	key, err := s.key(scope, ticketID)
	if err != nil {
		return nil, err
	}
	tombstone, err := s.tombstoneKey(scope, ticketID)
	if err != nil {
		return nil, err
	}

	for i := 0; i < maxRetries; i++ {
		var matched *ActionTicketRecord

		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					seen, terr := tx.Exists(ctx, tombstone).Result()
					if terr != nil {
						return terr
					}
					if seen > 0 {
						return ErrActionReplayed
					}
					return ErrActionNotFound
				}
				return err
			}

			record, err := decodeActionTicketRecord(data)
			if err != nil {
				return err
			}
			if record.Scope != scope {
				return ErrActionNotFound
			}

			if time.Now().Unix() > record.ExpiresAt {
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				if err != nil {
					return err
				}
				return ErrActionExpired
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				pipe.Set(ctx, tombstone, "1", tombstoneTTL)
				return nil
			})
			if err != nil {
				return err
			}

			matched = record
			return nil
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			switch {
			case errors.Is(err, ErrActionNotFound),
				errors.Is(err, ErrActionExpired),
				errors.Is(err, ErrActionReplayed):
				return nil, err
			default:
				return nil, fmt.Errorf("%w: %v", ErrActionRedisUnavailable, err)
			}
		}

		return matched, nil
	}

	return nil, ErrActionNotFound
}

func encodeActionTicketRecord(record *ActionTicketRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(actionRecordVersionV1)
	buf.WriteByte(record.Scope)

	if err := binary.Write(&buf, binary.BigEndian, record.IssuedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}

	if len(record.UserID) > 65535 {
		return nil, errors.New("action ticket user id too long")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(record.UserID))); err != nil {
		return nil, err
	}
	buf.WriteString(record.UserID)

	return buf.Bytes(), nil
}

func decodeActionTicketRecord(data []byte) (*ActionTicketRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != actionRecordVersionV1 {
		return nil, errors.New("invalid action ticket record version")
	}

	scope, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}

	record := &ActionTicketRecord{Scope: scope}

	if err := binary.Read(reader, binary.BigEndian, &record.IssuedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, err
	}

	var userIDLen uint16
	if err := binary.Read(reader, binary.BigEndian, &userIDLen); err != nil {
		return nil, err
	}

	userID := make([]byte, userIDLen)
	if _, err := io.ReadFull(reader, userID); err != nil {
		return nil, err
	}
	record.UserID = string(userID)

	return record, nil
}
