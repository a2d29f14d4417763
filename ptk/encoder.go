package ptk

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const tokenFormatVersionCurrent = 1

func Encode(t *Token) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(tokenFormatVersionCurrent)

	if len(t.UserID) > 255 {
		return nil, errors.New("userID too long")
	}
	buf.WriteByte(byte(len(t.UserID)))
	buf.WriteString(t.UserID)

	if len(t.Systems) > 255 {
		return nil, errors.New("too many scope systems")
	}
	buf.WriteByte(byte(len(t.Systems)))
	for _, system := range t.Systems {
		if len(system) > 255 {
			return nil, errors.New("system code too long")
		}
		buf.WriteByte(byte(len(system)))
		buf.WriteString(system)
	}

	if err := binary.Write(&buf, binary.BigEndian, t.TokenVersion); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, t.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, t.ExpiresAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func Decode(data []byte) (*Token, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != tokenFormatVersionCurrent {
		return nil, errors.New("invalid token record version")
	}

	t := &Token{}

	userLen, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	userID := make([]byte, userLen)
	if _, err := io.ReadFull(reader, userID); err != nil {
		return nil, err
	}
	t.UserID = string(userID)

	systemCount, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if systemCount > 0 {
		t.Systems = make([]string, 0, systemCount)
		for i := 0; i < int(systemCount); i++ {
			systemLen, err := reader.ReadByte()
			if err != nil {
				return nil, err
			}
			system := make([]byte, systemLen)
			if _, err := io.ReadFull(reader, system); err != nil {
				return nil, err
			}
			t.Systems = append(t.Systems, string(system))
		}
	}

	if err := binary.Read(reader, binary.BigEndian, &t.TokenVersion); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &t.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &t.ExpiresAt); err != nil {
		return nil, err
	}

	return t, nil
}
