package entity

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// IdentitySize is the width of a participant token in bytes.
const IdentitySize = 32

var ErrInvalidIdentity = errors.New("invalid identity")

// Identity is an opaque participant token. Only equality is meaningful.
// The zero value marks an unset player.
type Identity [IdentitySize]byte

func ParseIdentity(s string) (Identity, error) {
	var id Identity

	if hex.DecodedLen(len(s)) != IdentitySize {
		return id, fmt.Errorf("%w: expected %d hex chars, got %d", ErrInvalidIdentity, hex.EncodedLen(IdentitySize), len(s))
	}

	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return id, fmt.Errorf("%w: %w", ErrInvalidIdentity, err)
	}

	return id, nil
}

func (that Identity) String() string {
	return hex.EncodeToString(that[:])
}

func (that Identity) IsZero() bool {
	return that == Identity{}
}
