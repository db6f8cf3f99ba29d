package app

import (
	"context"
	"fmt"
	"sync"
)

// ScoreStore persists one best score per difficulty. Set never lowers a
// stored score, so stores shared between processes keep the maximum.
type ScoreStore interface {
	Get(ctx context.Context, difficulty string) (int, bool, error)
	Set(ctx context.Context, difficulty string, score int) error
}

// HighScores tracks the best completed score for each difficulty.
type HighScores struct {
	store ScoreStore
	mu    sync.Mutex
}

func NewHighScores(store ScoreStore) *HighScores {
	return &HighScores{store: store}
}

// Read returns the stored best score, or 0 when none exists.
func (h *HighScores) Read(ctx context.Context, difficulty string) (int, error) {
	best, ok, err := h.store.Get(ctx, difficulty)
	if err != nil {
		return 0, fmt.Errorf("read high score: %w", err)
	}
	if !ok {
		return 0, nil
	}
	return best, nil
}

// ReportCompletion stores score when it beats the current best and returns
// the resulting best score.
func (h *HighScores) ReportCompletion(ctx context.Context, difficulty string, score int) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	best, ok, err := h.store.Get(ctx, difficulty)
	if err != nil {
		return 0, fmt.Errorf("read high score: %w", err)
	}
	if ok && score <= best {
		return best, nil
	}
	if err := h.store.Set(ctx, difficulty, score); err != nil {
		return best, fmt.Errorf("write high score: %w", err)
	}
	// Another process may have stored a higher score meanwhile.
	if stored, ok, err := h.store.Get(ctx, difficulty); err == nil && ok && stored > score {
		return stored, nil
	}
	return score, nil
}
