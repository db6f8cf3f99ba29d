package app

import (
	"errors"
	"math/rand"
	"testing"

	"quiz-runner/internal/domain"
)

func abcQuestions() []domain.Question {
	opts := []string{"A", "B", "C", "D"}
	return []domain.Question{
		{Prompt: "Q1", Options: opts, CorrectOption: "A"},
		{Prompt: "Q2", Options: opts, CorrectOption: "B"},
		{Prompt: "Q3", Options: opts, CorrectOption: "C"},
	}
}

func newTestState(t *testing.T, seconds int) (*State, *Timer) {
	t.Helper()
	state, err := NewState(abcQuestions(), seconds)
	if err != nil {
		t.Fatalf("new state: %v", err)
	}
	return state, NewTimer(state)
}

func tick(t *testing.T, state *State, timer *Timer, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := timer.Tick(state); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
}

func TestNewStateRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		questions []domain.Question
		seconds   int
	}{
		{"empty set", nil, 30},
		{"zero countdown", abcQuestions(), 0},
		{"one option", []domain.Question{{Prompt: "Q", Options: []string{"A"}, CorrectOption: "A"}}, 30},
		{"duplicate options", []domain.Question{{Prompt: "Q", Options: []string{"A", "A"}, CorrectOption: "A"}}, 30},
		{"correct not offered", []domain.Question{{Prompt: "Q", Options: []string{"A", "B"}, CorrectOption: "C"}}, 30},
		{"blank prompt", []domain.Question{{Prompt: " ", Options: []string{"A", "B"}, CorrectOption: "A"}}, 30},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewState(tc.questions, tc.seconds); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
		})
	}
}

func TestNewStateInitialValues(t *testing.T) {
	state, timer := newTestState(t, 30)

	if state.Current() != 0 || state.Score() != 0 || state.Completed() {
		t.Fatalf("unexpected initial state %+v", state.Snapshot())
	}
	for i := 0; i < state.Len(); i++ {
		if state.Record(i) != domain.Unanswered() {
			t.Fatalf("question %d should start unanswered", i)
		}
		if state.Remaining(i) != 30 {
			t.Fatalf("question %d should start with 30s, got %d", i, state.Remaining(i))
		}
	}
	if timer.Active() != 0 {
		t.Fatalf("expected countdown on question 0, got %d", timer.Active())
	}
}

func TestScenarioAnswerTimeoutWrongAnswer(t *testing.T) {
	state, timer := newTestState(t, 3)

	if err := SelectAnswer(state, timer, "A"); err != nil {
		t.Fatalf("answer Q1: %v", err)
	}
	if err := Next(state, timer); err != nil {
		t.Fatalf("next: %v", err)
	}

	// Q2 runs out without a selection.
	tick(t, state, timer, 3)
	if state.Current() != 2 {
		t.Fatalf("expected auto-advance to Q3, at %d", state.Current())
	}

	if err := SelectAnswer(state, timer, "D"); err != nil {
		t.Fatalf("answer Q3: %v", err)
	}
	if err := Next(state, timer); err != nil {
		t.Fatalf("finish: %v", err)
	}

	want := []domain.AnswerRecord{domain.Selected("A"), domain.TimedOut(), domain.Selected("D")}
	for i, rec := range want {
		if state.Record(i) != rec {
			t.Fatalf("record %d: expected %+v, got %+v", i, rec, state.Record(i))
		}
	}
	if state.Score() != 1 {
		t.Fatalf("expected score 1, got %d", state.Score())
	}
	if !state.Completed() {
		t.Fatalf("expected completed")
	}
}

func TestCountdownExpiresAfterConfiguredTicks(t *testing.T) {
	state, timer := newTestState(t, 5)

	tick(t, state, timer, 4)
	if state.Record(0) != domain.Unanswered() || state.Current() != 0 {
		t.Fatalf("expired early: record=%+v current=%d", state.Record(0), state.Current())
	}
	if state.Remaining(0) != 1 {
		t.Fatalf("expected 1s left, got %d", state.Remaining(0))
	}

	expired, err := timer.Tick(state)
	if err != nil || !expired {
		t.Fatalf("expected expiry on fifth tick, expired=%v err=%v", expired, err)
	}
	if state.Record(0) != domain.TimedOut() {
		t.Fatalf("expected timed out, got %+v", state.Record(0))
	}
	if state.Current() != 1 {
		t.Fatalf("expected auto-advance to 1, got %d", state.Current())
	}
	if state.Remaining(0) != 0 {
		t.Fatalf("expected frozen 0, got %d", state.Remaining(0))
	}
	if timer.Active() != 1 {
		t.Fatalf("expected countdown on question 1, got %d", timer.Active())
	}
}

func TestRevisitingAnsweredQuestionIsIdempotent(t *testing.T) {
	state, timer := newTestState(t, 30)

	tick(t, state, timer, 4)
	if err := SelectAnswer(state, timer, "A"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := Next(state, timer); err != nil {
			t.Fatalf("next: %v", err)
		}
		if err := Previous(state, timer); err != nil {
			t.Fatalf("previous: %v", err)
		}
		tick(t, state, timer, 2)

		if state.Record(0) != domain.Selected("A") || state.Score() != 1 {
			t.Fatalf("revisit changed state: record=%+v score=%d", state.Record(0), state.Score())
		}
		if state.Remaining(0) != 26 {
			t.Fatalf("expected frozen 26s, got %d", state.Remaining(0))
		}
		if timer.Running() {
			t.Fatalf("no countdown should run on an answered question")
		}
	}
}

func TestAnswerAfterExpiryRejected(t *testing.T) {
	state, timer := newTestState(t, 2)

	tick(t, state, timer, 2)
	if err := Previous(state, timer); err != nil {
		t.Fatalf("previous: %v", err)
	}
	if err := SelectAnswer(state, timer, "A"); !errors.Is(err, domain.ErrAlreadyAnswered) {
		t.Fatalf("expected already answered, got %v", err)
	}
	if state.Record(0) != domain.TimedOut() || state.Score() != 0 {
		t.Fatalf("timed out record changed: %+v score=%d", state.Record(0), state.Score())
	}
	if state.Snapshot().RemainingSeconds != 0 {
		t.Fatalf("timed out question should show 0s")
	}
}

func TestTimeoutAfterAnswerRejected(t *testing.T) {
	state, timer := newTestState(t, 1)

	if err := SelectAnswer(state, timer, "A"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if err := state.RecordTimeout(0); !errors.Is(err, domain.ErrAlreadyAnswered) {
		t.Fatalf("expected already answered, got %v", err)
	}
	expired, err := timer.Tick(state)
	if err != nil || expired {
		t.Fatalf("tick on answered question must be dropped, expired=%v err=%v", expired, err)
	}
	if state.Record(0) != domain.Selected("A") || state.Current() != 0 || state.Remaining(0) != 1 {
		t.Fatalf("answered question changed: %+v", state.Snapshot())
	}
}

func TestAnswerTwiceRejected(t *testing.T) {
	state, timer := newTestState(t, 30)

	if err := SelectAnswer(state, timer, "B"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if err := SelectAnswer(state, timer, "A"); !errors.Is(err, domain.ErrAlreadyAnswered) {
		t.Fatalf("expected already answered, got %v", err)
	}
	if state.Record(0) != domain.Selected("B") || state.Score() != 0 {
		t.Fatalf("second answer leaked: %+v score=%d", state.Record(0), state.Score())
	}
}

func TestUnknownOptionRejected(t *testing.T) {
	state, timer := newTestState(t, 30)

	err := SelectAnswer(state, timer, "Z")
	if !errors.Is(err, domain.ErrInvalidOption) || !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid option, got %v", err)
	}
	if state.Record(0) != domain.Unanswered() || !timer.Running() {
		t.Fatalf("rejected option must leave question open")
	}
}

func TestNextFromLastCompletes(t *testing.T) {
	state, timer := newTestState(t, 30)

	for i := 0; i < 3; i++ {
		if err := Next(state, timer); err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
	}
	if !state.Completed() || state.Current() != 2 {
		t.Fatalf("expected completed at last index, got completed=%v current=%d", state.Completed(), state.Current())
	}

	checks := map[string]error{
		"next":     Next(state, timer),
		"previous": Previous(state, timer),
		"skip":     Skip(state, timer),
		"answer":   SelectAnswer(state, timer, "C"),
		"timeout":  state.RecordTimeout(2),
	}
	for name, err := range checks {
		if !errors.Is(err, domain.ErrAlreadyTerminal) {
			t.Fatalf("%s after completion: expected already terminal, got %v", name, err)
		}
	}
	if _, err := timer.Tick(state); !errors.Is(err, domain.ErrAlreadyTerminal) {
		t.Fatalf("tick after completion: expected already terminal, got %v", err)
	}
	if state.Current() != 2 {
		t.Fatalf("index moved after completion: %d", state.Current())
	}
	if state.Record(0) != domain.Unanswered() {
		t.Fatalf("records changed after completion")
	}
}

func TestPreviousAtFirstQuestionIsNoop(t *testing.T) {
	state, timer := newTestState(t, 30)

	if err := Previous(state, timer); err != nil {
		t.Fatalf("previous: %v", err)
	}
	if state.Current() != 0 || timer.Active() != 0 {
		t.Fatalf("expected to stay on question 0")
	}
}

func TestSkip(t *testing.T) {
	state, timer := newTestState(t, 30)

	tick(t, state, timer, 3)
	if err := Skip(state, timer); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if state.Record(0) != domain.Skipped() || state.Current() != 1 {
		t.Fatalf("expected Q1 skipped and advanced, got %+v at %d", state.Record(0), state.Current())
	}
	if state.Remaining(0) != 27 {
		t.Fatalf("expected skipped countdown frozen at 27, got %d", state.Remaining(0))
	}

	// Skipping an answered question keeps the answer and still moves on.
	if err := SelectAnswer(state, timer, "B"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if err := Skip(state, timer); err != nil {
		t.Fatalf("skip answered: %v", err)
	}
	if state.Record(1) != domain.Selected("B") || state.Current() != 2 || state.Score() != 1 {
		t.Fatalf("unexpected state after skipping answered question: %+v", state.Snapshot())
	}
}

func TestLeavingOpenQuestionFreezesCountdown(t *testing.T) {
	state, timer := newTestState(t, 10)

	tick(t, state, timer, 4)
	if err := Next(state, timer); err != nil {
		t.Fatalf("next: %v", err)
	}
	tick(t, state, timer, 2)
	if state.Remaining(0) != 6 {
		t.Fatalf("left question should stay frozen at 6, got %d", state.Remaining(0))
	}
	if state.Remaining(1) != 8 {
		t.Fatalf("new question should tick, got %d", state.Remaining(1))
	}

	if err := Previous(state, timer); err != nil {
		t.Fatalf("previous: %v", err)
	}
	if timer.Active() != 0 {
		t.Fatalf("expected countdown to resume on question 0")
	}
	tick(t, state, timer, 6)
	if state.Record(0) != domain.TimedOut() || state.Current() != 1 {
		t.Fatalf("resumed countdown should expire from the frozen value: %+v at %d", state.Record(0), state.Current())
	}
}

func TestSnapshotDoesNotExposeInternals(t *testing.T) {
	state, timer := newTestState(t, 30)

	snap := state.Snapshot()
	snap.CurrentQuestion.Options[0] = "mutated"
	if state.Snapshot().CurrentQuestion.Options[0] != "A" {
		t.Fatalf("snapshot aliases question options")
	}
	if snap.Results != nil {
		t.Fatalf("results must be empty before completion")
	}

	_ = SelectAnswer(state, timer, "A")
	for i := 0; i < 3; i++ {
		_ = Next(state, timer)
	}
	results := state.Snapshot().Results
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[0].Correct || results[1].Correct || results[1].CorrectOption != "B" {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestScoreMatchesRecordsUnderRandomEvents(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	options := []string{"A", "B", "C", "D"}

	for run := 0; run < 50; run++ {
		state, timer := newTestState(t, 1+rnd.Intn(4))
		for step := 0; step < 60 && !state.Completed(); step++ {
			switch rnd.Intn(5) {
			case 0:
				_ = SelectAnswer(state, timer, options[rnd.Intn(len(options))])
			case 1:
				_ = Skip(state, timer)
			case 2:
				_ = Next(state, timer)
			case 3:
				_ = Previous(state, timer)
			default:
				_, _ = timer.Tick(state)
			}

			correct := 0
			for i, q := range abcQuestions() {
				if state.Record(i) == domain.Selected(q.CorrectOption) {
					correct++
				}
			}
			if correct != state.Score() {
				t.Fatalf("run %d step %d: score %d, correct records %d", run, step, state.Score(), correct)
			}
		}
	}
}

func TestTerminalRecordsNeverChange(t *testing.T) {
	rnd := rand.New(rand.NewSource(11))
	options := []string{"A", "B", "C", "D"}

	for run := 0; run < 50; run++ {
		state, timer := newTestState(t, 1+rnd.Intn(3))
		seen := make(map[int]domain.AnswerRecord)
		for step := 0; step < 60; step++ {
			switch rnd.Intn(4) {
			case 0:
				_ = SelectAnswer(state, timer, options[rnd.Intn(len(options))])
			case 1:
				_ = Next(state, timer)
			case 2:
				_ = Previous(state, timer)
			default:
				_, _ = timer.Tick(state)
			}
			for i := 0; i < state.Len(); i++ {
				rec := state.Record(i)
				if prev, ok := seen[i]; ok && prev != rec {
					t.Fatalf("run %d: record %d changed from %+v to %+v", run, i, prev, rec)
				}
				if rec.Terminal() {
					seen[i] = rec
				}
			}
		}
	}
}
