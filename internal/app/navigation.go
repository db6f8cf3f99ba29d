package app

import (
	"errors"

	"quiz-runner/internal/domain"
)

// SelectAnswer records option for the current question and freezes its countdown.
func SelectAnswer(state *State, timer *Timer, option string) error {
	idx := state.Current()
	if state.Completed() {
		return domain.ErrAlreadyTerminal
	}
	if state.Record(idx).Terminal() || state.Remaining(idx) == 0 {
		return domain.ErrAlreadyAnswered
	}
	if err := state.RecordAnswer(idx, option); err != nil {
		return err
	}
	timer.Sync(state)
	return nil
}

// Skip marks the current question skipped, when still open, and moves on.
func Skip(state *State, timer *Timer) error {
	if err := state.RecordSkip(state.Current()); err != nil && !errors.Is(err, domain.ErrAlreadyAnswered) {
		return err
	}
	return move(state, timer, domain.Next)
}

// Next moves forward without touching the current record.
func Next(state *State, timer *Timer) error {
	return move(state, timer, domain.Next)
}

// Previous moves back one question; at the first question it does nothing.
func Previous(state *State, timer *Timer) error {
	return move(state, timer, domain.Previous)
}

func move(state *State, timer *Timer, dir domain.Direction) error {
	if err := state.Advance(dir); err != nil {
		return err
	}
	timer.Sync(state)
	return nil
}
