package app

import "quiz-runner/internal/domain"

// Timer tracks the single running countdown of a State. A countdown runs only
// for the current question while its record is unanswered; the remaining
// seconds of every other question stay frozen inside the State.
type Timer struct {
	active  int
	running bool
}

// NewTimer returns a Timer synced to state.
func NewTimer(state *State) *Timer {
	t := &Timer{active: -1}
	t.Sync(state)
	return t
}

// Running reports whether a countdown is active.
func (t *Timer) Running() bool { return t.running }

// Active returns the index of the running countdown, or -1.
func (t *Timer) Active() int {
	if !t.running {
		return -1
	}
	return t.active
}

// Sync points the countdown at the current question. It reports whether the
// active countdown changed, which tells the scheduler to re-arm.
func (t *Timer) Sync(state *State) bool {
	prev := t.Active()
	idx := state.Current()
	if state.Completed() || state.Record(idx).Terminal() {
		t.running = false
		t.active = -1
	} else {
		t.running = true
		t.active = idx
	}
	return prev != t.Active()
}

// Stop halts the countdown, freezing its remaining seconds.
func (t *Timer) Stop() {
	t.running = false
	t.active = -1
}

// Tick advances the running countdown by one second. When it reaches zero
// while the question is still unanswered, the question times out and the
// quiz moves on as if Next had been pressed. Ticks with no running countdown
// are dropped.
func (t *Timer) Tick(state *State) (expired bool, err error) {
	if state.Completed() {
		t.Stop()
		return false, domain.ErrAlreadyTerminal
	}
	if !t.running {
		return false, nil
	}
	idx := t.active
	if idx != state.Current() || state.Record(idx).Terminal() {
		t.Sync(state)
		return false, nil
	}

	if state.decrement(idx) > 0 {
		return false, nil
	}
	return true, t.expire(state, idx)
}

func (t *Timer) expire(state *State, idx int) error {
	t.Stop()
	if err := state.RecordTimeout(idx); err != nil {
		return err
	}
	if err := state.Advance(domain.Next); err != nil {
		return err
	}
	t.Sync(state)
	return nil
}
