package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/pushdown/internal/logging"
	"github.com/aretw0/pushdown/pkg/domain"
	"github.com/aretw0/pushdown/pkg/ports"
	"github.com/google/uuid"
)

// ErrSessionExists is returned by Start when the ID is already taken.
var ErrSessionExists = errors.New("session already exists")

// Resolver returns the automaton a session runs on, by name.
type Resolver func(ctx context.Context, name string) (ports.Stepper, error)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates stepwise runs, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store   ports.SessionStore
	resolve Resolver

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker    ports.DistributedLocker // Optional distributed locker
	lockTTL   time.Duration
	stepLimit int
	logger    *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks (default 30s).
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithStepLimit rejects a session once it has taken limit transitions
// without finishing. Zero means unbounded.
func WithStepLimit(limit int) Option {
	return func(m *Manager) {
		m.stepLimit = limit
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a new session Manager over store. resolve maps the
// automaton name recorded in a session to the automaton itself.
func NewManager(store ports.SessionStore, resolve Resolver, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		resolve: resolve,
		locks:   make(map[string]*lockEntry),
		lockTTL: 30 * time.Second,
		logger:  logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Start creates a session positioned at the initial configuration of input.
// An empty sessionID gets a random one.
func (m *Manager) Start(ctx context.Context, sessionID, automaton, input string) (*domain.Session, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	stepper, err := m.resolve(ctx, automaton)
	if err != nil {
		return nil, err
	}

	var session *domain.Session
	err = m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		_, err := m.store.Load(ctx, sessionID)
		if err == nil {
			return fmt.Errorf("%w: %s", ErrSessionExists, sessionID)
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to check session existence: %w", err)
		}

		session = domain.NewSession(sessionID, automaton, input, stepper.InitialConfiguration(input))
		if err := m.store.Save(ctx, session); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.logger.Debug("session started", "session_id", sessionID, "automaton", automaton)
	return session, nil
}

// Step advances the session by one unit of work and persists the result.
//
// A rejection is a normal outcome: the session is stored as rejected with
// the reason and no error is returned. Stepping a finished session returns
// domain.ErrSessionFinished.
func (m *Manager) Step(ctx context.Context, sessionID string) (*domain.Session, domain.Outcome, error) {
	var (
		session *domain.Session
		out     domain.Outcome
	)
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		session, err = m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		if session.Status.Terminal() {
			return fmt.Errorf("%w: %s is %s", domain.ErrSessionFinished, sessionID, session.Status)
		}

		stepper, err := m.resolve(ctx, session.Automaton)
		if err != nil {
			return err
		}

		var stepErr error
		if m.stepLimit > 0 && session.Steps >= m.stepLimit {
			out = domain.Outcome{Configuration: session.Configuration, Status: domain.StatusRejected}
			stepErr = fmt.Errorf("%w: %d steps", domain.ErrStepLimitExceeded, m.stepLimit)
		} else {
			out, stepErr = stepper.Advance(session.Configuration)
		}

		if out.Moved {
			session.Steps++
			session.Configuration = out.Configuration
		}
		session.Status = out.Status
		if stepErr != nil {
			session.Status = domain.StatusRejected
			session.Reason = stepErr.Error()
		}
		session.UpdatedAt = time.Now().UTC()

		if err := m.store.Save(ctx, session); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		if stepErr != nil && !errors.Is(stepErr, domain.ErrRejected) {
			return stepErr
		}
		return nil
	})
	if err != nil {
		return session, out, err
	}
	return session, out, nil
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	var session *domain.Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		session, err = m.store.Load(ctx, sessionID)
		return err
	})
	return session, err
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
