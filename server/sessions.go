package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spektr-org/launchboard/engine"
	"github.com/spektr-org/launchboard/metrics"
)

var (
	ErrSessionNotFound  = eris.New("session not found")
	ErrTooManySessions  = eris.New("session limit reached")
	errSessionsDisabled = eris.New("session store is closed")
)

// SessionConfig bounds the session store.
type SessionConfig struct {
	TTL         time.Duration // idle time before a session expires; 0 keeps sessions forever
	MaxSessions int           // 0 means unlimited
	SignalRate  float64       // signal updates per second per session
	SignalBurst int
}

// Session is one dashboard viewer: its own graph plus a signal rate limiter.
type Session struct {
	ID      string
	Created time.Time
	Graph   *engine.Graph

	limiter  *rate.Limiter
	lastSeen time.Time // guarded by Sessions.mu
}

// Allow reports whether one more signal update fits the session's rate.
func (s *Session) Allow() bool { return s.limiter.Allow() }

// Sessions is the in-memory session store. All sessions share one dataset.
type Sessions struct {
	table     engine.Table
	cfg       SessionConfig
	rec       *metrics.Recorder
	graphOpts []engine.Option
	logger    *zap.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// NewSessions creates an empty store. graphOpts are applied to every
// session graph, after the store's own observer and logger.
func NewSessions(table engine.Table, cfg SessionConfig, rec *metrics.Recorder, graphOpts ...engine.Option) *Sessions {
	if cfg.SignalRate <= 0 {
		cfg.SignalRate = float64(rate.Inf)
	}
	if cfg.SignalBurst <= 0 {
		cfg.SignalBurst = 1
	}
	return &Sessions{
		table:     table,
		cfg:       cfg,
		rec:       rec,
		graphOpts: graphOpts,
		logger:    zap.L(),
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
}

// Create opens a session with site = ALL and the full payload range, both
// outputs already computed.
func (s *Sessions) Create() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errSessionsDisabled
	}
	if s.cfg.MaxSessions > 0 && len(s.sessions) >= s.cfg.MaxSessions {
		s.sweepLocked(s.now())
		if len(s.sessions) >= s.cfg.MaxSessions {
			return nil, ErrTooManySessions
		}
	}

	id := uuid.NewString()
	logger := s.logger.With(zap.String("session", id))
	opts := []engine.Option{engine.WithLogger(logger)}
	if s.rec != nil {
		opts = append(opts, engine.WithObserver(s.rec))
	}
	opts = append(opts, s.graphOpts...)

	now := s.now()
	sess := &Session{
		ID:       id,
		Created:  now,
		Graph:    engine.NewGraph(s.table, opts...),
		limiter:  rate.NewLimiter(rate.Limit(s.cfg.SignalRate), s.cfg.SignalBurst),
		lastSeen: now,
	}
	s.sessions[id] = sess
	if s.rec != nil {
		s.rec.SessionOpened()
	}
	logger.Debug("session created")
	return sess, nil
}

// Get returns a live session and marks it as seen.
func (s *Sessions) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, eris.Wrapf(ErrSessionNotFound, "session %s", id)
	}
	sess.lastSeen = s.now()
	return sess, nil
}

// Delete closes a session. It reports whether the session existed.
func (s *Sessions) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	s.removeLocked(id)
	return true
}

// Len returns the number of open sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep closes every session idle for longer than the TTL and returns how
// many were closed.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.now())
}

func (s *Sessions) sweepLocked(now time.Time) int {
	if s.cfg.TTL <= 0 {
		return 0
	}
	n := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.cfg.TTL {
			s.removeLocked(id)
			n++
		}
	}
	return n
}

func (s *Sessions) removeLocked(id string) {
	delete(s.sessions, id)
	if s.rec != nil {
		s.rec.SessionClosed()
	}
}

// Run sweeps expired sessions until ctx is done, then closes the store.
func (s *Sessions) Run(ctx context.Context) error {
	interval := s.cfg.TTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	if interval > time.Minute {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.closed = true
			for id := range s.sessions {
				s.removeLocked(id)
			}
			s.mu.Unlock()
			return nil
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Info("expired sessions closed", zap.Int("count", n))
			}
		}
	}
}
