package memory

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-runner/internal/app"
	"quiz-runner/internal/domain"
)

// QuestionRepository wraps a loader with a TTL cache keyed by difficulty and
// count. Concurrent loads for the same key share one upstream call. A zero
// TTL disables caching but keeps the shared call.
type QuestionRepository struct {
	loader app.QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedSet
}

type cachedSet struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionRepository(loader app.QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedSet),
	}
}

func (r *QuestionRepository) LoadQuestions(ctx context.Context, difficulty string, count int) ([]domain.Question, error) {
	key := difficulty + ":" + strconv.Itoa(count)
	if questions, ok := r.cached(key); ok {
		return questions, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		if questions, ok := r.cached(key); ok {
			return questions, nil
		}

		questions, err := r.loader.LoadQuestions(ctx, difficulty, count)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[key] = cachedSet{
			questions: questions,
			expiresAt: r.clock().Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return copySet(result.([]domain.Question)), nil
}

func (r *QuestionRepository) cached(key string) ([]domain.Question, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[key]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return nil, false
	}
	return copySet(entry.questions), true
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticQuestionLoader serves question sets from an in-memory map keyed by
// difficulty (useful for tests/demos).
type StaticQuestionLoader struct {
	sets map[string][]domain.Question

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewStaticQuestionLoader(sets map[string][]domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{sets: sets}
}

// WithShuffle reorders each question's options with rnd on every load.
func (l *StaticQuestionLoader) WithShuffle(rnd *rand.Rand) *StaticQuestionLoader {
	l.rnd = rnd
	return l
}

func (l *StaticQuestionLoader) LoadQuestions(_ context.Context, difficulty string, count int) ([]domain.Question, error) {
	set, ok := l.sets[difficulty]
	if !ok || len(set) == 0 {
		return nil, fmt.Errorf("%w: difficulty %q", domain.ErrEmptyResult, difficulty)
	}
	if count > 0 && count < len(set) {
		set = set[:count]
	}

	out := copySet(set)
	if l.rnd != nil {
		l.mu.Lock()
		for i := range out {
			out[i] = out[i].Shuffled(l.rnd)
		}
		l.mu.Unlock()
	}
	return out, nil
}

func copySet(set []domain.Question) []domain.Question {
	out := make([]domain.Question, len(set))
	for i, q := range set {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}
