package game

import "errors"

// Validation outcomes returned to the caller for user-facing display.
// Every one of these leaves the game state untouched.
var (
	ErrInsufficientFunds = errors.New("not enough clicks")
	ErrUnknownUpgrade    = errors.New("unknown upgrade")
	ErrUnknownMode       = errors.New("unknown mode")
	ErrModeLocked        = errors.New("mode not unlocked")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidCode       = errors.New("invalid code")
	ErrEmptyInput        = errors.New("empty input")
)
