package stores

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ssoRecordVersionV1 = 1

	// SSO ticket states. A consumed ticket is tombstoned in place rather
	// than deleted so a replay is distinguishable from a garbage id.
	SsoStateIssued   uint8 = 0
	SsoStateConsumed uint8 = 1
)

var (
	ErrSsoNotFound         = errors.New("sso ticket not found")
	ErrSsoConsumed         = errors.New("sso ticket already consumed")
	ErrSsoSystemMismatch   = errors.New("sso ticket system code mismatch")
	ErrSsoRedirectMismatch = errors.New("sso ticket redirect hash mismatch")
	ErrSsoExists           = errors.New("sso ticket id collision")
	ErrSsoRedisUnavailable = errors.New("sso ticket redis unavailable")
)

// SsoTicketRecord is the stored payload of a single-use SSO handoff ticket.
// RedirectHash binds the ticket to the canonicalized redirect target supplied
// at issuance.
type SsoTicketRecord struct {
	UserID       string
	SystemCode   string
	RedirectHash string
	State        uint8
	CreatedAt    int64
}

// SsoTicketStore persists SSO tickets under a single authoritative key
// prefix. Exchange is one WATCH transaction: load, verify binding, rewrite
// as consumed.
type SsoTicketStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewSsoTicketStore(redisClient redis.UniversalClient, prefix string) *SsoTicketStore {
	if prefix == "" {
		prefix = "sso:ticket:"
	}
	return &SsoTicketStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *SsoTicketStore) key(ticketID string) string {
	return s.prefix + ticketID
}

// Create stores a fresh ticket in the ISSUED state with the given TTL.
func (s *SsoTicketStore) Create(
	ctx context.Context,
	ticketID string,
	record *SsoTicketRecord,
	ttl time.Duration,
) error {
	encoded, err := encodeSsoTicketRecord(record)
	if err != nil {
		return err
	}

	ok, err := s.redis.SetNX(ctx, s.key(ticketID), encoded, ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSsoRedisUnavailable, err)
	}
	if !ok {
		return ErrSsoExists
	}

	return nil
}

// Exchange verifies the requesting system and redirect binding, then rewrites
// the ticket as consumed with a tombstone TTL. Binding mismatches leave the
// ticket untouched: they are terminal for the caller but must not burn a
// ticket another (legitimate) system is about to exchange.
func (s *SsoTicketStore) Exchange(
	ctx context.Context,
	ticketID, systemCode, redirectHash string,
	tombstoneTTL time.Duration,
) (*SsoTicketRecord, error) {
	const maxRetries = 4
	key := s.key(ticketID)

	for i := 0; i < maxRetries; i++ {
		var matched *SsoTicketRecord

		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			record, err := decodeSsoTicketRecord(data)
			if err != nil {
				return err
			}

			if record.State != SsoStateIssued {
				return ErrSsoConsumed
			}
			if record.SystemCode != systemCode {
				return ErrSsoSystemMismatch
			}
			if subtle.ConstantTimeCompare([]byte(record.RedirectHash), []byte(redirectHash)) != 1 {
				return ErrSsoRedirectMismatch
			}

			consumed := *record
			consumed.State = SsoStateConsumed
			updated, err := encodeSsoTicketRecord(&consumed)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, tombstoneTTL)
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
			case errors.Is(err, redis.Nil):
				return nil, ErrSsoNotFound
			case errors.Is(err, ErrSsoConsumed),
				errors.Is(err, ErrSsoSystemMismatch),
				errors.Is(err, ErrSsoRedirectMismatch):
				return nil, err
			default:
				return nil, fmt.Errorf("%w: %v", ErrSsoRedisUnavailable, err)
			}
		}

		return matched, nil
	}

	return nil, ErrSsoNotFound
}

func encodeSsoTicketRecord(record *SsoTicketRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(ssoRecordVersionV1)
	buf.WriteByte(record.State)

	if err := binary.Write(&buf, binary.BigEndian, record.CreatedAt); err != nil {
		return nil, err
	}

	for _, field := range []string{record.UserID, record.SystemCode, record.RedirectHash} {
		if len(field) > 65535 {
			return nil, errors.New("sso ticket field too long")
		}
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
			return nil, err
		}
		buf.WriteString(field)
	}

	return buf.Bytes(), nil
}

func decodeSsoTicketRecord(data []byte) (*SsoTicketRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != ssoRecordVersionV1 {
		return nil, errors.New("invalid sso ticket record version")
	}

	record := &SsoTicketRecord{}

	state, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	record.State = state

	if err := binary.Read(reader, binary.BigEndian, &record.CreatedAt); err != nil {
		return nil, err
	}

	fields := make([]string, 3)
	for i := range fields {
		var fieldLen uint16
		if err := binary.Read(reader, binary.BigEndian, &fieldLen); err != nil {
			return nil, err
		}
		field := make([]byte, fieldLen)
		if _, err := io.ReadFull(reader, field); err != nil {
			return nil, err
		}
		fields[i] = string(field)
	}
	record.UserID, record.SystemCode, record.RedirectHash = fields[0], fields[1], fields[2]

	return record, nil
}
