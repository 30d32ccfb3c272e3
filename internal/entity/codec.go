package entity

import (
	"encoding/binary"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-program/internal/apperror"
)

// RecordSize is the length of an encoded Match:
// two u64 liveness timestamps, phase tag, two identities, nine cell tags.
const RecordSize = 8 + 8 + 1 + IdentitySize + IdentitySize + BoardSize

const (
	offsetPhase   = 16
	offsetPlayerX = offsetPhase + 1
	offsetPlayerO = offsetPlayerX + IdentitySize
	offsetBoard   = offsetPlayerO + IdentitySize
)

func (that *Match) MarshalBinary() ([]byte, error) {
	buf := make([]byte, RecordSize)

	binary.LittleEndian.PutUint64(buf[0:8], that.LastActive[SideX])
	binary.LittleEndian.PutUint64(buf[8:16], that.LastActive[SideO])
	buf[offsetPhase] = byte(that.Phase)
	copy(buf[offsetPlayerX:offsetPlayerO], that.PlayerX[:])
	copy(buf[offsetPlayerO:offsetBoard], that.PlayerO[:])

	for i, cell := range that.Board {
		buf[offsetBoard+i] = byte(cell)
	}

	return buf, nil
}

// UnmarshalBinary decodes a record and rejects it unless it satisfies the
// match invariants. On error the receiver is left untouched.
func (that *Match) UnmarshalBinary(data []byte) error {
	if len(data) != RecordSize {
		return fmt.Errorf("%w: expected %d bytes, got %d", apperror.ErrCorruptRecord, RecordSize, len(data))
	}

	var match Match

	match.LastActive[SideX] = binary.LittleEndian.Uint64(data[0:8])
	match.LastActive[SideO] = binary.LittleEndian.Uint64(data[8:16])
	match.Phase = Phase(data[offsetPhase])
	copy(match.PlayerX[:], data[offsetPlayerX:offsetPlayerO])
	copy(match.PlayerO[:], data[offsetPlayerO:offsetBoard])

	for i := range match.Board {
		match.Board[i] = Cell(data[offsetBoard+i])
	}

	if err := match.Validate(); err != nil {
		return err
	}

	*that = match

	return nil
}
