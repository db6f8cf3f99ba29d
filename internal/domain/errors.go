package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when a question set is empty or malformed.
	ErrInvalidInput = errors.New("invalid question set")
	// ErrInvalidOption indicates a selected option is not offered by the question.
	ErrInvalidOption = fmt.Errorf("%w: option not offered", ErrInvalidInput)
	// ErrAlreadyAnswered is returned when a question already holds a terminal record.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrAlreadyTerminal is returned when the session has completed.
	ErrAlreadyTerminal = errors.New("quiz session already completed")
	// ErrSourceUnavailable indicates the question source could not be reached.
	ErrSourceUnavailable = errors.New("question source unavailable")
	// ErrEmptyResult indicates the question source returned no usable questions.
	ErrEmptyResult = errors.New("question source returned no questions")
	// ErrSessionNotFound is returned when a quiz session does not exist.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionNotReady is returned while a session has no loaded question set.
	ErrSessionNotReady = errors.New("quiz session not ready")
)

// IsBenign reports whether err is a rejected transition that callers should ignore.
func IsBenign(err error) bool {
	return errors.Is(err, ErrAlreadyAnswered) || errors.Is(err, ErrAlreadyTerminal)
}
