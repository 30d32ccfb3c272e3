package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-program/internal/apperror"
)

// Phase is the lifecycle stage of a match. XWon, OWon and Draw are final.
type Phase uint8

const (
	Waiting Phase = iota
	XTurn
	OTurn
	XWon
	OWon
	Draw
)

// Cell is the content of one board square.
type Cell uint8

const (
	Empty Cell = iota
	MarkX
	MarkO
)

// Side indexes the per-player liveness timestamps.
type Side int

const (
	SideX Side = iota
	SideO
)

// BoardSize is the number of cells on the 3x3 board.
const BoardSize = 9

// Board is indexed row*3 + col, top-left first.
type Board [BoardSize]Cell

// WinCombos lists the cell indexes of every row, column and diagonal.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Match is the complete state of one game. It is a plain value: callers own
// it exclusively while a transition runs.
type Match struct {
	LastActive [2]uint64
	Phase      Phase
	PlayerX    Identity
	PlayerO    Identity
	Board      Board
}

// NewMatch returns a waiting match with initiator playing X.
func NewMatch(initiator Identity) Match {
	return Match{
		Phase:   Waiting,
		PlayerX: initiator,
	}
}

// Join seats the second player and starts the game.
func (that *Match) Join(joiner Identity, timestamp uint64) error {
	if that.Phase != Waiting {
		return apperror.ErrGameInProgress
	}

	if timestamp <= that.LastActive[SideO] {
		return apperror.ErrInvalidTimestamp
	}

	that.PlayerO = joiner
	that.Phase = XTurn
	that.LastActive[SideO] = timestamp

	return nil
}

// Move places the mover's mark at (col, row).
func (that *Match) Move(mover Identity, col, row int) error {
	cell, err := that.cellIndex(col, row)
	if err != nil {
		return err
	}

	var (
		mark     Cell
		wonPhase Phase
	)

	switch that.Phase {
	case XTurn:
		if mover != that.PlayerX {
			return apperror.ErrPlayerNotFound
		}
		mark, wonPhase = MarkX, XWon
		that.Phase = OTurn
	case OTurn:
		if mover != that.PlayerO {
			return apperror.ErrPlayerNotFound
		}
		mark, wonPhase = MarkO, OWon
		that.Phase = XTurn
	default:
		return apperror.ErrNotYourTurn
	}

	that.Board[cell] = mark

	switch {
	case that.Board.HasLine(mark):
		that.Phase = wonPhase
	case that.Board.IsFull():
		that.Phase = Draw
	}

	return nil
}

func (that *Match) cellIndex(col, row int) (int, error) {
	if col < 0 || row < 0 || col >= BoardSize || row >= BoardSize {
		return 0, fmt.Errorf("%w: coordinates (%d, %d) out of range", apperror.ErrInvalidMove, col, row)
	}

	cell := row*3 + col
	if cell >= BoardSize {
		return 0, fmt.Errorf("%w: cell %d out of range", apperror.ErrInvalidMove, cell)
	}

	if that.Board[cell] != Empty {
		return 0, fmt.Errorf("%w: cell %d is occupied", apperror.ErrInvalidMove, cell)
	}

	return cell, nil
}

// KeepAlive records a liveness proof for player. It is ignored once the
// game is over.
func (that *Match) KeepAlive(player Identity, timestamp uint64) error {
	if that.Phase.IsTerminal() {
		return nil
	}

	var side Side

	switch player {
	case that.PlayerX:
		side = SideX
	case that.PlayerO:
		side = SideO
	default:
		return apperror.ErrPlayerNotFound
	}

	if timestamp <= that.LastActive[side] {
		return apperror.ErrInvalidTimestamp
	}

	that.LastActive[side] = timestamp

	return nil
}
