package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-program/internal/apperror"
)

func (that Phase) Valid() bool {
	return that <= Draw
}

func (that Phase) IsTerminal() bool {
	return that == XWon || that == OWon || that == Draw
}

func (that Phase) String() string {
	switch that {
	case Waiting:
		return "waiting"
	case XTurn:
		return "x_turn"
	case OTurn:
		return "o_turn"
	case XWon:
		return "x_won"
	case OWon:
		return "o_won"
	case Draw:
		return "draw"
	default:
		return fmt.Sprintf("phase(%d)", uint8(that))
	}
}

func (that Cell) Valid() bool {
	return that <= MarkO
}

func (that Cell) String() string {
	switch that {
	case MarkX:
		return "X"
	case MarkO:
		return "O"
	default:
		return ""
	}
}

// HasLine reports whether any row, column or diagonal holds three marks.
func (that *Board) HasLine(mark Cell) bool {
	for _, combo := range WinCombos {
		if that[combo[0]] == mark && that[combo[1]] == mark && that[combo[2]] == mark {
			return true
		}
	}

	return false
}

func (that *Board) IsFull() bool {
	for _, cell := range that {
		if cell == Empty {
			return false
		}
	}

	return true
}

func (that *Board) Count(mark Cell) int {
	count := 0
	for _, cell := range that {
		if cell == mark {
			count++
		}
	}

	return count
}

// Turn returns the identity expected to move next.
func (that *Match) Turn() (Identity, bool) {
	switch that.Phase {
	case XTurn:
		return that.PlayerX, true
	case OTurn:
		return that.PlayerO, true
	default:
		return Identity{}, false
	}
}

func (that *Match) Winner() (Identity, bool) {
	switch that.Phase {
	case XWon:
		return that.PlayerX, true
	case OWon:
		return that.PlayerO, true
	default:
		return Identity{}, false
	}
}

// Validate checks the invariants a stored record must satisfy before any
// transition is applied to it.
func (that *Match) Validate() error {
	if !that.Phase.Valid() {
		return fmt.Errorf("%w: unknown phase %d", apperror.ErrCorruptRecord, that.Phase)
	}

	for i, cell := range that.Board {
		if !cell.Valid() {
			return fmt.Errorf("%w: unknown cell tag %d at %d", apperror.ErrCorruptRecord, cell, i)
		}
	}

	diff := that.Board.Count(MarkX) - that.Board.Count(MarkO)
	if diff != 0 && diff != 1 {
		return fmt.Errorf("%w: mark count difference %d", apperror.ErrCorruptRecord, diff)
	}

	if that.Phase == Waiting && that.Board.Count(Empty) != BoardSize {
		return fmt.Errorf("%w: marks placed before the game started", apperror.ErrCorruptRecord)
	}

	return nil
}
