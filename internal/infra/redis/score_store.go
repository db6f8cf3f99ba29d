package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ScoreStore keeps one best score per difficulty:
//
//	SET quiz:highscore:{difficulty} {score}
//
// Writes go through a compare-and-set script so concurrent instances never
// lower a stored score.
type ScoreStore struct {
	client *redis.Client
}

func NewScoreStore(client *redis.Client) *ScoreStore {
	return &ScoreStore{client: client}
}

func (s *ScoreStore) Get(ctx context.Context, difficulty string) (int, bool, error) {
	score, err := s.client.Get(ctx, s.key(difficulty)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get high score: %w", err)
	}
	return score, true, nil
}

var raiseScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
local score = tonumber(ARGV[1])
if cur == false or score > tonumber(cur) then
	redis.call('SET', KEYS[1], ARGV[1])
	return score
end
return tonumber(cur)
`)

// Set stores score unless a higher one is already recorded.
func (s *ScoreStore) Set(ctx context.Context, difficulty string, score int) error {
	if err := raiseScript.Run(ctx, s.client, []string{s.key(difficulty)}, score).Err(); err != nil {
		return fmt.Errorf("set high score: %w", err)
	}
	return nil
}

func (s *ScoreStore) key(difficulty string) string {
	return "quiz:highscore:" + difficulty
}
