package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"quiz-runner/internal/domain"
)

// Session is one player's live quiz. Its mutex serializes every event,
// including ticks, so transitions never interleave.
type Session struct {
	id         string
	difficulty string
	service    *QuizService

	mu          sync.Mutex
	lastActive  time.Time
	state       *State
	timer       *Timer
	highScore   int
	reported    bool
	loadErr     error
	generation  uint64
	tickGen     uint64
	armedFor    int
	cancelTick  func()
	closed      bool
	subscribers map[chan domain.Snapshot]struct{}
}

func newSession(id string, service *QuizService, difficulty string) *Session {
	return &Session{
		id:          id,
		difficulty:  difficulty,
		service:     service,
		lastActive:  time.Now(),
		armedFor:    -1,
		subscribers: make(map[chan domain.Snapshot]struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Difficulty returns the difficulty of the current attempt.
func (s *Session) Difficulty() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.difficulty
}

func (s *Session) touchLocked() {
	s.lastActive = time.Now()
}

// idleAt reports whether the session has been untouched for ttl at now with
// nobody subscribed.
func (s *Session) idleAt(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers) == 0 && now.Sub(s.lastActive) >= ttl
}

func (s *Session) installLocked(r round) {
	s.state = r.state
	s.timer = NewTimer(r.state)
	s.highScore = r.highScore
	s.reported = false
	s.loadErr = nil
	s.armTickLocked()
}

func (s *Session) notReadyLocked() error {
	if s.loadErr != nil {
		return fmt.Errorf("%w: %w", domain.ErrSessionNotReady, s.loadErr)
	}
	return domain.ErrSessionNotReady
}

func (s *Session) snapshotLocked() domain.Snapshot {
	snap := s.state.Snapshot()
	snap.SessionID = s.id
	snap.Difficulty = s.difficulty
	snap.HighScore = s.highScore
	return snap
}

// afterTransitionLocked re-arms the ticker for the new active countdown,
// records completion once and notifies subscribers.
func (s *Session) afterTransitionLocked(ctx context.Context) {
	if s.timer.Active() != s.armedFor {
		s.armTickLocked()
	}
	if s.state.Completed() && !s.reported {
		s.reported = true
		s.cancelTickLocked()
		best, err := s.service.reportCompletion(ctx, s.difficulty, s.state.Score())
		if err != nil {
			s.service.logger.Error("failed to record high score",
				zap.String("session_id", s.id),
				zap.String("difficulty", s.difficulty),
				zap.Error(err),
			)
		}
		if best > s.highScore {
			s.highScore = best
		}
		s.service.logger.Info("quiz session completed",
			zap.String("session_id", s.id),
			zap.String("difficulty", s.difficulty),
			zap.Int("score", s.state.Score()),
			zap.Int("total", s.state.Len()),
			zap.Int("high_score", s.highScore),
		)
	}
	s.broadcastLocked(s.snapshotLocked())
}

func (s *Session) armTickLocked() {
	s.cancelTickLocked()
	active := s.timer.Active()
	if active < 0 || s.closed {
		return
	}
	s.tickGen++
	gen := s.tickGen
	cancel, err := s.service.scheduler.Every(s.service.settings.TickInterval, func() {
		s.onTick(gen)
	})
	if err != nil {
		s.service.logger.Error("failed to schedule countdown",
			zap.String("session_id", s.id),
			zap.Int("question", active),
			zap.Error(err),
		)
		return
	}
	s.cancelTick = cancel
	s.armedFor = active
}

func (s *Session) cancelTickLocked() {
	s.tickGen++
	s.armedFor = -1
	if s.cancelTick != nil {
		s.cancelTick()
		s.cancelTick = nil
	}
}

func (s *Session) onTick(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.tickGen || s.state == nil || s.closed {
		return
	}

	idx := s.timer.Active()
	expired, err := s.timer.Tick(s.state)
	if err != nil {
		// Ticks after completion are stale.
		s.cancelTickLocked()
		return
	}
	if expired {
		s.service.logger.Debug("question timed out",
			zap.String("session_id", s.id),
			zap.Int("question", idx),
		)
	}
	s.afterTransitionLocked(context.Background())
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cancelTickLocked()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Session) subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 8)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	s.touchLocked()
	if s.state != nil {
		ch <- s.snapshotLocked()
	}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
			s.touchLocked()
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked(snap domain.Snapshot) {
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the oldest update so a slow reader never blocks the session.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}
