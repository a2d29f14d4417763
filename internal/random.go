package internal

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
)

// TicketID is the unguessable identifier minted for action and SSO tickets.
type TicketID [16]byte

const ptkTokenRawSize = 32

func NewTicketID() (TicketID, error) {
	var tid TicketID
	_, err := rand.Read(tid[:])
	return tid, err
}

func (t TicketID) Bytes() []byte {
	return t[:]
}

func (t TicketID) String() string {
	// base64url, no padding, compact
	return base64.RawURLEncoding.EncodeToString(t[:])
}

func ParseTicketID(ticketID string) (TicketID, error) {
	var tid TicketID

	raw, err := base64.RawURLEncoding.DecodeString(ticketID)
	if err != nil {
		return tid, err
	}
	if len(raw) != len(tid) {
		return tid, errors.New("invalid ticket id size")
	}

	copy(tid[:], raw)
	return tid, nil
}

// NewPortalToken mints the opaque PTK bearer value. 32 random bytes keep the
// token outside any practical guessing budget.
func NewPortalToken() (string, error) {
	var raw [ptkTokenRawSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}
