package domain

import (
	"fmt"
	"math/rand"
	"strings"
)

// Question is a normalized multiple-choice question.
type Question struct {
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectOption string   `json:"correctOption"`
}

// Validate checks the question shape: a prompt, at least two unique options,
// and a correct option that is one of them.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Prompt) == "" {
		return fmt.Errorf("%w: empty prompt", ErrInvalidInput)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: %q has fewer than two options", ErrInvalidInput, q.Prompt)
	}
	seen := make(map[string]struct{}, len(q.Options))
	for _, opt := range q.Options {
		if _, dup := seen[opt]; dup {
			return fmt.Errorf("%w: %q repeats option %q", ErrInvalidInput, q.Prompt, opt)
		}
		seen[opt] = struct{}{}
	}
	if _, ok := seen[q.CorrectOption]; !ok {
		return fmt.Errorf("%w: %q correct option not among options", ErrInvalidInput, q.Prompt)
	}
	return nil
}

// HasOption reports whether option is offered by the question.
func (q Question) HasOption(option string) bool {
	for _, opt := range q.Options {
		if opt == option {
			return true
		}
	}
	return false
}

// RecordKind enumerates the states of a per-question answer record.
type RecordKind string

const (
	RecordUnanswered RecordKind = "unanswered"
	RecordSelected   RecordKind = "selected"
	RecordSkipped    RecordKind = "skipped"
	RecordTimedOut   RecordKind = "timed_out"
)

// AnswerRecord is the outcome recorded for one question.
type AnswerRecord struct {
	Kind   RecordKind `json:"kind"`
	Option string     `json:"option,omitempty"` // set only for RecordSelected
}

// Unanswered is the initial record of every question.
func Unanswered() AnswerRecord { return AnswerRecord{Kind: RecordUnanswered} }

// Selected records a picked option.
func Selected(option string) AnswerRecord { return AnswerRecord{Kind: RecordSelected, Option: option} }

// Skipped records a deliberate skip.
func Skipped() AnswerRecord { return AnswerRecord{Kind: RecordSkipped} }

// TimedOut records an expired countdown.
func TimedOut() AnswerRecord { return AnswerRecord{Kind: RecordTimedOut} }

// Terminal reports whether the record can no longer change.
func (r AnswerRecord) Terminal() bool {
	return r.Kind != "" && r.Kind != RecordUnanswered
}

// Direction is a navigation step.
type Direction int

const (
	Next Direction = iota + 1
	Previous
)

func (d Direction) String() string {
	switch d {
	case Next:
		return "next"
	case Previous:
		return "previous"
	default:
		return "unknown"
	}
}

// QuestionView is a question as shown to the player, without its answer.
type QuestionView struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// ResultEntry summarizes one question once the quiz is completed.
type ResultEntry struct {
	Prompt        string       `json:"prompt"`
	Record        AnswerRecord `json:"record"`
	CorrectOption string       `json:"correctOption"`
	Correct       bool         `json:"correct"`
}

// Snapshot is a read-only view of a session for rendering.
type Snapshot struct {
	SessionID          string        `json:"sessionId"`
	Difficulty         string        `json:"difficulty"`
	CurrentIndex       int           `json:"currentIndex"`
	TotalQuestions     int           `json:"totalQuestions"`
	CurrentQuestion    QuestionView  `json:"currentQuestion"`
	CurrentRecord      AnswerRecord  `json:"currentRecord"`
	RemainingSeconds   int           `json:"remainingSeconds"`
	PerQuestionSeconds int           `json:"perQuestionSeconds"`
	Score              int           `json:"score"`
	HighScore          int           `json:"highScore"`
	Completed          bool          `json:"completed"`
	Results            []ResultEntry `json:"results,omitempty"` // only when Completed
}

// HighScore is the best completed score for a difficulty.
type HighScore struct {
	Difficulty string `json:"difficulty"`
	BestScore  int    `json:"bestScore"`
}

// Shuffled returns a copy of the question with its options reordered by rnd.
func (q Question) Shuffled(rnd *rand.Rand) Question {
	opts := append([]string(nil), q.Options...)
	rnd.Shuffle(len(opts), func(i, j int) {
		opts[i], opts[j] = opts[j], opts[i]
	})
	q.Options = opts
	return q
}
