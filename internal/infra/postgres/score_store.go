package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ScoreStore persists best scores in the high_scores table.
type ScoreStore struct {
	pool *pgxpool.Pool
}

func NewScoreStore(pool *pgxpool.Pool) *ScoreStore {
	return &ScoreStore{pool: pool}
}

func (s *ScoreStore) Get(ctx context.Context, difficulty string) (int, bool, error) {
	var best int
	err := s.pool.QueryRow(ctx, `SELECT best_score FROM high_scores WHERE difficulty=$1`, difficulty).Scan(&best)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("load high score: %w", err)
	}
	return best, true, nil
}

// Set stores score unless a higher one is already recorded.
func (s *ScoreStore) Set(ctx context.Context, difficulty string, score int) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO high_scores (difficulty, best_score, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (difficulty) DO UPDATE
		SET best_score = GREATEST(high_scores.best_score, EXCLUDED.best_score),
		    updated_at = CASE WHEN EXCLUDED.best_score > high_scores.best_score
		                      THEN EXCLUDED.updated_at ELSE high_scores.updated_at END`, difficulty, score)
	if err != nil {
		return fmt.Errorf("save high score: %w", err)
	}
	return nil
}
