package app

import (
	"fmt"

	"quiz-runner/internal/domain"
)

// DefaultPerQuestionSeconds is the countdown used when none is configured.
const DefaultPerQuestionSeconds = 30

// State holds the answers, position, countdowns and score of one quiz attempt.
// It is not safe for concurrent use; Session serializes access.
type State struct {
	questions   []domain.Question
	answers     []domain.AnswerRecord
	remaining   []int
	perQuestion int
	current     int
	score       int
	completed   bool
}

// NewState builds a fresh attempt over questions with every countdown at perQuestionSeconds.
func NewState(questions []domain.Question, perQuestionSeconds int) (*State, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", domain.ErrInvalidInput)
	}
	if perQuestionSeconds < 1 {
		return nil, fmt.Errorf("%w: countdown must be at least one second", domain.ErrInvalidInput)
	}
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return nil, err
		}
	}

	s := &State{
		questions:   make([]domain.Question, len(questions)),
		answers:     make([]domain.AnswerRecord, len(questions)),
		remaining:   make([]int, len(questions)),
		perQuestion: perQuestionSeconds,
	}
	for i, q := range questions {
		s.questions[i] = domain.Question{
			Prompt:        q.Prompt,
			Options:       append([]string(nil), q.Options...),
			CorrectOption: q.CorrectOption,
		}
		s.answers[i] = domain.Unanswered()
		s.remaining[i] = perQuestionSeconds
	}
	return s, nil
}

// Len returns the number of questions.
func (s *State) Len() int { return len(s.questions) }

// Current returns the current question index.
func (s *State) Current() int { return s.current }

// Score returns the number of correctly answered questions.
func (s *State) Score() int { return s.score }

// Completed reports whether the attempt has finished.
func (s *State) Completed() bool { return s.completed }

// Record returns the answer record at index.
func (s *State) Record(index int) domain.AnswerRecord { return s.answers[index] }

// Remaining returns the countdown value at index.
func (s *State) Remaining(index int) int { return s.remaining[index] }

// RecordAnswer stores the selected option for index and scores it.
func (s *State) RecordAnswer(index int, option string) error {
	if err := s.mutable(index); err != nil {
		return err
	}
	q := s.questions[index]
	if !q.HasOption(option) {
		return domain.ErrInvalidOption
	}
	s.answers[index] = domain.Selected(option)
	if option == q.CorrectOption {
		s.score++
	}
	s.verify()
	return nil
}

// RecordSkip marks index as skipped.
func (s *State) RecordSkip(index int) error {
	if err := s.mutable(index); err != nil {
		return err
	}
	s.answers[index] = domain.Skipped()
	s.verify()
	return nil
}

// RecordTimeout marks index as timed out and zeroes its countdown.
func (s *State) RecordTimeout(index int) error {
	if err := s.mutable(index); err != nil {
		return err
	}
	s.answers[index] = domain.TimedOut()
	s.remaining[index] = 0
	s.verify()
	return nil
}

// Advance moves the current index one step. Moving past the last question
// completes the attempt and leaves the index on the last question.
func (s *State) Advance(dir domain.Direction) error {
	if s.completed {
		return domain.ErrAlreadyTerminal
	}
	switch dir {
	case domain.Next:
		if s.current == len(s.questions)-1 {
			s.completed = true
			return nil
		}
		s.current++
	case domain.Previous:
		if s.current > 0 {
			s.current--
		}
	default:
		return fmt.Errorf("unknown direction %d", dir)
	}
	return nil
}

// decrement lowers the countdown at index by one and returns the new value.
func (s *State) decrement(index int) int {
	if s.remaining[index] > 0 {
		s.remaining[index]--
	}
	return s.remaining[index]
}

// Snapshot returns a copy of the attempt for rendering. Session fields
// (id, difficulty, high score) are filled in by the caller.
func (s *State) Snapshot() domain.Snapshot {
	q := s.questions[s.current]
	snap := domain.Snapshot{
		CurrentIndex:   s.current,
		TotalQuestions: len(s.questions),
		CurrentQuestion: domain.QuestionView{
			Prompt:  q.Prompt,
			Options: append([]string(nil), q.Options...),
		},
		CurrentRecord:      s.answers[s.current],
		RemainingSeconds:   s.remaining[s.current],
		PerQuestionSeconds: s.perQuestion,
		Score:              s.score,
		Completed:          s.completed,
	}
	if s.completed {
		snap.Results = make([]domain.ResultEntry, len(s.questions))
		for i, q := range s.questions {
			snap.Results[i] = domain.ResultEntry{
				Prompt:        q.Prompt,
				Record:        s.answers[i],
				CorrectOption: q.CorrectOption,
				Correct:       s.answers[i] == domain.Selected(q.CorrectOption),
			}
		}
	}
	return snap
}

func (s *State) mutable(index int) error {
	if index < 0 || index >= len(s.questions) {
		return fmt.Errorf("question index %d out of range", index)
	}
	if s.completed {
		return domain.ErrAlreadyTerminal
	}
	if s.answers[index].Terminal() {
		return domain.ErrAlreadyAnswered
	}
	return nil
}

// verify panics when the running score drifts from the recorded answers.
func (s *State) verify() {
	correct := 0
	for i, q := range s.questions {
		if s.answers[i] == domain.Selected(q.CorrectOption) {
			correct++
		}
	}
	if correct != s.score {
		panic(fmt.Sprintf("quiz state: score %d does not match %d correct answers", s.score, correct))
	}
}
