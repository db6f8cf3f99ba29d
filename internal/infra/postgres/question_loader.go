package postgres

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-runner/internal/domain"
)

// QuestionLoader picks random questions of a difficulty from Postgres.
type QuestionLoader struct {
	pool *pgxpool.Pool

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

// WithShuffle reorders each question's options with rnd on every load.
func (l *QuestionLoader) WithShuffle(rnd *rand.Rand) *QuestionLoader {
	l.rnd = rnd
	return l
}

func (l *QuestionLoader) LoadQuestions(ctx context.Context, difficulty string, count int) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT prompt, options, correct_option
		FROM questions
		WHERE difficulty = $1
		ORDER BY random()
		LIMIT $2`, difficulty, count)
	if err != nil {
		return nil, fmt.Errorf("%w: query questions: %v", domain.ErrSourceUnavailable, err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.Prompt, &q.Options, &q.CorrectOption); err != nil {
			return nil, fmt.Errorf("%w: scan question: %v", domain.ErrSourceUnavailable, err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read questions: %v", domain.ErrSourceUnavailable, err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: difficulty %q", domain.ErrEmptyResult, difficulty)
	}
	return l.shuffle(questions), nil
}

func (l *QuestionLoader) shuffle(questions []domain.Question) []domain.Question {
	if l.rnd == nil {
		return questions
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range questions {
		questions[i] = questions[i].Shuffled(l.rnd)
	}
	return questions
}
