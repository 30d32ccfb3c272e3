package apperror

import "errors"

// rejections of a single match transition.
var (
	ErrInvalidMove      = errors.New("invalid move")
	ErrGameInProgress   = errors.New("game is already in progress")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)

var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchAlreadyExists = errors.New("match already exists")
	ErrCorruptRecord      = errors.New("corrupt match record")
	ErrConcurrentUpdate   = errors.New("match was updated concurrently")
	ErrInvalidSignature   = errors.New("invalid signature")
)
