package memory

import (
	"context"
	"sync"
)

// ScoreStore keeps best scores in process memory; they are lost on restart.
type ScoreStore struct {
	mu     sync.RWMutex
	scores map[string]int
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{scores: make(map[string]int)}
}

func (s *ScoreStore) Get(_ context.Context, difficulty string) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	score, ok := s.scores[difficulty]
	return score, ok, nil
}

// Set stores score unless a higher one is already recorded.
func (s *ScoreStore) Set(_ context.Context, difficulty string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.scores[difficulty]; ok && cur >= score {
		return nil
	}
	s.scores[difficulty] = score
	return nil
}
