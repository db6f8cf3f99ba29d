package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quiz-runner/internal/domain"
)

// QuestionLoader produces an ordered question set for a difficulty.
// Failures wrap domain.ErrSourceUnavailable or domain.ErrEmptyResult.
type QuestionLoader interface {
	LoadQuestions(ctx context.Context, difficulty string, count int) ([]domain.Question, error)
}

// Scheduler calls fn every interval until cancel is invoked.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (cancel func(), err error)
}

// SessionRepository abstracts where live sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(id string) (*Session, bool)
	Delete(id string)
	All() []*Session
}

// Settings configures every session created by a QuizService.
type Settings struct {
	PerQuestionSeconds int
	QuestionCount      int
	DefaultDifficulty  string
	TickInterval       time.Duration
	// SessionTTL is how long a session may go without events or
	// subscribers before ReapIdle ends it.
	SessionTTL time.Duration
}

func (s Settings) withDefaults() Settings {
	if s.PerQuestionSeconds < 1 {
		s.PerQuestionSeconds = DefaultPerQuestionSeconds
	}
	if s.QuestionCount < 1 {
		s.QuestionCount = 10
	}
	if s.DefaultDifficulty == "" {
		s.DefaultDifficulty = "medium"
	}
	if s.TickInterval <= 0 {
		s.TickInterval = time.Second
	}
	if s.SessionTTL <= 0 {
		s.SessionTTL = 30 * time.Minute
	}
	return s
}

// QuizService contains the quiz use cases.
type QuizService struct {
	sessions   SessionRepository
	loader     QuestionLoader
	highScores *HighScores
	scheduler  Scheduler
	settings   Settings
	logger     *zap.Logger
	newID      func() string
}

func NewQuizService(
	sessions SessionRepository,
	loader QuestionLoader,
	highScores *HighScores,
	scheduler Scheduler,
	settings Settings,
	logger *zap.Logger,
) *QuizService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizService{
		sessions:   sessions,
		loader:     loader,
		highScores: highScores,
		scheduler:  scheduler,
		settings:   settings.withDefaults(),
		logger:     logger,
		newID:      uuid.NewString,
	}
}

// Start loads a question set and opens a new session for it. Nothing is
// created when loading fails.
func (s *QuizService) Start(ctx context.Context, difficulty string) (domain.Snapshot, error) {
	difficulty = s.difficulty(difficulty)
	round, err := s.prepare(ctx, difficulty)
	if err != nil {
		s.logger.Warn("quiz load failed", zap.String("difficulty", difficulty), zap.Error(err))
		return domain.Snapshot{}, err
	}

	session := newSession(s.newID(), s, difficulty)
	session.mu.Lock()
	session.installLocked(round)
	snap := session.snapshotLocked()
	session.mu.Unlock()

	s.sessions.Put(session)
	s.logger.Info("quiz session started",
		zap.String("session_id", session.id),
		zap.String("difficulty", difficulty),
		zap.Int("questions", snap.TotalQuestions),
	)
	return snap, nil
}

// Snapshot returns the current view of a session.
func (s *QuizService) Snapshot(_ context.Context, id string) (domain.Snapshot, error) {
	session, err := s.session(id)
	if err != nil {
		return domain.Snapshot{}, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	session.touchLocked()
	if session.state == nil {
		return domain.Snapshot{}, session.notReadyLocked()
	}
	return session.snapshotLocked(), nil
}

// Answer selects option for the current question.
func (s *QuizService) Answer(ctx context.Context, id, option string) (domain.Snapshot, error) {
	return s.apply(ctx, id, "answer", func(state *State, timer *Timer) error {
		return SelectAnswer(state, timer, option)
	})
}

// Skip marks the current question skipped and moves on.
func (s *QuizService) Skip(ctx context.Context, id string) (domain.Snapshot, error) {
	return s.apply(ctx, id, "skip", Skip)
}

// Next moves to the following question, finishing the quiz after the last one.
func (s *QuizService) Next(ctx context.Context, id string) (domain.Snapshot, error) {
	return s.apply(ctx, id, "next", Next)
}

// Previous moves back one question.
func (s *QuizService) Previous(ctx context.Context, id string) (domain.Snapshot, error) {
	return s.apply(ctx, id, "previous", Previous)
}

// Restart discards the current attempt and starts over with a freshly loaded
// question set. An empty difficulty keeps the session's difficulty. When the
// load fails the session stays not ready until a later Restart succeeds.
func (s *QuizService) Restart(ctx context.Context, id, difficulty string) (domain.Snapshot, error) {
	session, err := s.session(id)
	if err != nil {
		return domain.Snapshot{}, err
	}

	session.mu.Lock()
	session.touchLocked()
	session.cancelTickLocked()
	if strings.TrimSpace(difficulty) != "" {
		session.difficulty = s.difficulty(difficulty)
	}
	difficulty = session.difficulty
	session.state = nil
	session.timer = nil
	session.loadErr = nil
	session.generation++
	gen := session.generation
	session.mu.Unlock()

	round, err := s.prepare(ctx, difficulty)

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.closed {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	if gen != session.generation {
		// A newer restart took over while loading.
		if session.state != nil {
			return session.snapshotLocked(), nil
		}
		return domain.Snapshot{}, session.notReadyLocked()
	}
	if err != nil {
		session.loadErr = err
		s.logger.Warn("quiz reload failed",
			zap.String("session_id", id),
			zap.String("difficulty", difficulty),
			zap.Error(err),
		)
		return domain.Snapshot{}, session.notReadyLocked()
	}
	session.installLocked(round)
	snap := session.snapshotLocked()
	session.broadcastLocked(snap)
	s.logger.Info("quiz session restarted", zap.String("session_id", id), zap.String("difficulty", difficulty))
	return snap, nil
}

// Subscribe returns a channel that receives a snapshot after every event and
// tick. The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, id string) (<-chan domain.Snapshot, func(), error) {
	session, err := s.session(id)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// End stops a session's countdown and forgets it.
func (s *QuizService) End(_ context.Context, id string) {
	session, ok := s.sessions.Get(id)
	if !ok {
		return
	}
	session.close()
	s.sessions.Delete(id)
	s.logger.Debug("quiz session ended", zap.String("session_id", id))
}

// ReapIdle ends every session that has had no events and no subscribers
// for the configured session TTL as of now. It returns how many were ended.
func (s *QuizService) ReapIdle(ctx context.Context, now time.Time) int {
	reaped := 0
	for _, session := range s.sessions.All() {
		if !session.idleAt(now, s.settings.SessionTTL) {
			continue
		}
		s.End(ctx, session.ID())
		reaped++
	}
	if reaped > 0 {
		s.logger.Info("idle quiz sessions reaped", zap.Int("count", reaped))
	}
	return reaped
}

// HighScore returns the best completed score for difficulty.
func (s *QuizService) HighScore(ctx context.Context, difficulty string) (domain.HighScore, error) {
	difficulty = s.difficulty(difficulty)
	best, err := s.highScores.Read(ctx, difficulty)
	if err != nil {
		return domain.HighScore{}, err
	}
	return domain.HighScore{Difficulty: difficulty, BestScore: best}, nil
}

func (s *QuizService) apply(ctx context.Context, id, event string, transition func(*State, *Timer) error) (domain.Snapshot, error) {
	session, err := s.session(id)
	if err != nil {
		return domain.Snapshot{}, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	session.touchLocked()
	if session.state == nil {
		return domain.Snapshot{}, session.notReadyLocked()
	}

	err = transition(session.state, session.timer)
	if err != nil && !domain.IsBenign(err) {
		return session.snapshotLocked(), err
	}
	if err != nil {
		s.logger.Debug("quiz event ignored",
			zap.String("session_id", id),
			zap.String("event", event),
			zap.Error(err),
		)
		return session.snapshotLocked(), nil
	}
	session.afterTransitionLocked(ctx)
	return session.snapshotLocked(), nil
}

// round is a loaded question set plus the high score read alongside it.
type round struct {
	state     *State
	highScore int
}

func (s *QuizService) prepare(ctx context.Context, difficulty string) (round, error) {
	questions, err := s.loader.LoadQuestions(ctx, difficulty, s.settings.QuestionCount)
	if err != nil {
		return round{}, err
	}
	if len(questions) == 0 {
		return round{}, domain.ErrEmptyResult
	}
	state, err := NewState(questions, s.settings.PerQuestionSeconds)
	if err != nil {
		return round{}, err
	}
	best, err := s.highScores.Read(ctx, difficulty)
	if err != nil {
		return round{}, err
	}
	return round{state: state, highScore: best}, nil
}

func (s *QuizService) session(id string) (*Session, error) {
	session, ok := s.sessions.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *QuizService) difficulty(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return s.settings.DefaultDifficulty
	}
	return raw
}

// reportCompletion records the final score under its own deadline.
func (s *QuizService) reportCompletion(ctx context.Context, difficulty string, score int) (int, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	best, err := s.highScores.ReportCompletion(ctx, difficulty, score)
	if err != nil {
		return best, fmt.Errorf("report completion: %w", err)
	}
	return best, nil
}
