package memory

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"quiz-runner/internal/app"
	"quiz-runner/internal/domain"
)

func TestQuestionRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		QuestionLoader: NewStaticQuestionLoader(map[string][]domain.Question{
			"easy": sampleSet(),
		}),
	}
	repo := NewQuestionRepository(loader, time.Minute)

	if _, err := repo.LoadQuestions(context.Background(), "easy", 2); err != nil {
		t.Fatalf("load: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	questions, err := repo.LoadQuestions(context.Background(), "easy", 2)
	if err != nil {
		t.Fatalf("load 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}

	// Callers get their own copies.
	questions[0].Options[0] = "mutated"
	again, _ := repo.LoadQuestions(context.Background(), "easy", 2)
	if again[0].Options[0] == "mutated" {
		t.Fatalf("cache entry was mutated through a returned slice")
	}
}

func TestQuestionRepositoryZeroTTLReloads(t *testing.T) {
	loader := &countingLoader{
		QuestionLoader: NewStaticQuestionLoader(map[string][]domain.Question{
			"easy": sampleSet(),
		}),
	}
	repo := NewQuestionRepository(loader, 0)

	for i := 0; i < 3; i++ {
		if _, err := repo.LoadQuestions(context.Background(), "easy", 2); err != nil {
			t.Fatalf("load: %v", err)
		}
	}
	if loader.calls != 3 {
		t.Fatalf("expected a fresh load each time, got %d", loader.calls)
	}
}

func TestStaticQuestionLoader(t *testing.T) {
	loader := NewStaticQuestionLoader(map[string][]domain.Question{
		"easy": sampleSet(),
	})

	questions, err := loader.LoadQuestions(context.Background(), "easy", 1)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("expected count to truncate to 1, got %d", len(questions))
	}

	_, err = loader.LoadQuestions(context.Background(), "hard", 10)
	if !errors.Is(err, domain.ErrEmptyResult) {
		t.Fatalf("expected empty result, got %v", err)
	}
}

func TestStaticQuestionLoaderShuffleIsSeeded(t *testing.T) {
	load := func() []string {
		loader := NewStaticQuestionLoader(map[string][]domain.Question{
			"easy": sampleSet(),
		}).WithShuffle(rand.New(rand.NewSource(42)))
		questions, err := loader.LoadQuestions(context.Background(), "easy", 0)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		return questions[0].Options
	}

	first, second := load(), load()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed gave different orders: %v vs %v", first, second)
		}
	}
	if len(first) != 4 {
		t.Fatalf("expected all options kept, got %v", first)
	}
}

type countingLoader struct {
	app.QuestionLoader
	calls int
}

func (l *countingLoader) LoadQuestions(ctx context.Context, difficulty string, count int) ([]domain.Question, error) {
	l.calls++
	return l.QuestionLoader.LoadQuestions(ctx, difficulty, count)
}

func sampleSet() []domain.Question {
	return []domain.Question{
		{
			Prompt:        "What is 2 + 2?",
			Options:       []string{"3", "4", "5", "22"},
			CorrectOption: "4",
		},
		{
			Prompt:        "Capital of France?",
			Options:       []string{"Berlin", "Paris"},
			CorrectOption: "Paris",
		},
	}
}
