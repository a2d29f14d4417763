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

const authSnapshotVersionV1 = 1

var (
	ErrAuthSnapshotNotFound         = errors.New("authorization snapshot not found")
	ErrAuthSnapshotRedisUnavailable = errors.New("authorization snapshot redis unavailable")
)

// AuthSnapshotRecord is the cached authorization view kept beside the portal
// token path. Downstream validators read it instead of the user database;
// the engine invalidates it on every token-version bump and consumed event.
type AuthSnapshotRecord struct {
	UserID         string
	Status         uint8
	Systems        []string
	AuthVersion    int64
	ProfileVersion int64
}

// AuthCacheStore persists authorization snapshots under the user:auth:
// namespace with a fixed TTL.
type AuthCacheStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewAuthCacheStore(redisClient redis.UniversalClient, prefix string) *AuthCacheStore {
	if prefix == "" {
		prefix = "user:auth:"
	}
	return &AuthCacheStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *AuthCacheStore) key(userID string) string {
	return s.prefix + userID
}

// Save describes the save operation and its observable behavior.
func (s *AuthCacheStore) Save(ctx context.Context, record *AuthSnapshotRecord, ttl time.Duration) error {
	encoded, err := encodeAuthSnapshotRecord(record)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(record.UserID), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrAuthSnapshotRedisUnavailable, err)
	}

	return nil
}

// Get describes the get operation and its observable behavior.
func (s *AuthCacheStore) Get(ctx context.Context, userID string) (*AuthSnapshotRecord, error) {
	data, err := s.redis.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrAuthSnapshotNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrAuthSnapshotRedisUnavailable, err)
	}

	return decodeAuthSnapshotRecord(data)
}

// Invalidate describes the invalidate operation and its observable behavior.
func (s *AuthCacheStore) Invalidate(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrAuthSnapshotRedisUnavailable, err)
	}
	return nil
}

func encodeAuthSnapshotRecord(record *AuthSnapshotRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(authSnapshotVersionV1)
	buf.WriteByte(record.Status)

	if err := binary.Write(&buf, binary.BigEndian, record.AuthVersion); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.ProfileVersion); err != nil {
		return nil, err
	}

	if len(record.UserID) > 65535 {
		return nil, errors.New("authorization snapshot user id too long")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(record.UserID))); err != nil {
		return nil, err
	}
	buf.WriteString(record.UserID)

	if len(record.Systems) > 255 {
		return nil, errors.New("authorization snapshot has too many systems")
	}
	buf.WriteByte(byte(len(record.Systems)))
	for _, system := range record.Systems {
		if len(system) > 255 {
			return nil, errors.New("authorization snapshot system code too long")
		}
		buf.WriteByte(byte(len(system)))
		buf.WriteString(system)
	}

	return buf.Bytes(), nil
}

func decodeAuthSnapshotRecord(data []byte) (*AuthSnapshotRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != authSnapshotVersionV1 {
		return nil, errors.New("invalid authorization snapshot version")
	}

	record := &AuthSnapshotRecord{}

	status, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	record.Status = status

	if err := binary.Read(reader, binary.BigEndian, &record.AuthVersion); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.ProfileVersion); err != nil {
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

	systemCount, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if systemCount > 0 {
		record.Systems = make([]string, 0, systemCount)
		for i := 0; i < int(systemCount); i++ {
			systemLen, err := reader.ReadByte()
			if err != nil {
				return nil, err
			}
			system := make([]byte, systemLen)
			if _, err := io.ReadFull(reader, system); err != nil {
				return nil, err
			}
			record.Systems = append(record.Systems, string(system))
		}
	}

	return record, nil
}
