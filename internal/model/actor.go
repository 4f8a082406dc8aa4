package model

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ActorID identifies a wallet. It is the account's 32-byte ed25519 public key.
type ActorID [32]byte

// ErrInvalidActorID is returned when a wallet string cannot be parsed.
var ErrInvalidActorID = errors.New("invalid actor id")

// ParseActorID parses a 64-character hex wallet, with or without the 0x prefix.
func ParseActorID(s string) (ActorID, error) {
	var id ActorID
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if len(s) != hex.EncodedLen(len(id)) {
		return ActorID{}, fmt.Errorf("%w: want %d hex chars, got %d", ErrInvalidActorID, hex.EncodedLen(len(id)), len(s))
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return ActorID{}, fmt.Errorf("%w: %v", ErrInvalidActorID, err)
	}
	return id, nil
}

// String renders the id as 0x-prefixed lowercase hex.
func (a ActorID) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// IsZero reports whether a is the all-zero id.
func (a ActorID) IsZero() bool {
	return a == ActorID{}
}

func (a ActorID) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *ActorID) UnmarshalText(text []byte) error {
	id, err := ParseActorID(string(text))
	if err != nil {
		return err
	}
	*a = id
	return nil
}
