package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/concierge/internal/logging"
	"github.com/aretw0/concierge/pkg/domain"
	"github.com/aretw0/concierge/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed replica can hold a thread.
const DefaultLockTTL = 2 * time.Minute

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access so that the turns of one thread run strictly one after
// another, while different threads proceed in parallel.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks. A turn includes model and API latency,
// so the TTL must exceed the slowest expected turn.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(threadID) after unlocking.
func (m *Manager) acquire(threadID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[threadID]
	if !exists {
		entry = &lockEntry{}
		m.locks[threadID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(threadID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[threadID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, threadID)
	}
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, threadID string) (*domain.Session, error) {
	var sess *domain.Session
	err := m.WithLock(ctx, threadID, func(ctx context.Context) error {
		var err error
		sess, err = m.store.Load(ctx, threadID)
		return err
	})
	return sess, err
}

// LoadOrStart tries to load a session. If not found, it creates one with start and persists
// it immediately to reserve the thread ID.
func (m *Manager) LoadOrStart(ctx context.Context, threadID string, start func() *domain.Session) (*domain.Session, error) {
	var sess *domain.Session
	err := m.WithLock(ctx, threadID, func(ctx context.Context) error {
		var err error
		sess, err = m.loadOrStart(ctx, threadID, start)
		return err
	})
	return sess, err
}

func (m *Manager) loadOrStart(ctx context.Context, threadID string, start func() *domain.Session) (*domain.Session, error) {
	sess, err := m.store.Load(ctx, threadID)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, fmt.Errorf("failed to check session existence: %w", err)
	}

	sess = start()
	if err := m.store.Save(ctx, threadID, sess); err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	m.logger.Debug("session created", "thread_id", threadID)
	return sess, nil
}

// Update runs one read-modify-write cycle on a thread while holding its lock. fn receives
// the stored session (created with start when missing) and returns the session to persist.
// A nil session from fn leaves the store untouched; fn's error is returned after saving.
func (m *Manager) Update(ctx context.Context, threadID string, start func() *domain.Session, fn func(context.Context, *domain.Session) (*domain.Session, error)) error {
	return m.WithLock(ctx, threadID, func(ctx context.Context) error {
		sess, err := m.loadOrStart(ctx, threadID, start)
		if err != nil {
			return err
		}

		next, fnErr := fn(ctx, sess)
		if next != nil {
			// The turn outcome must be recorded even if the caller went away.
			saveCtx := context.WithoutCancel(ctx)
			if err := m.store.Save(saveCtx, threadID, next); err != nil {
				return errors.Join(fnErr, fmt.Errorf("failed to save session: %w", err))
			}
		}
		return fnErr
	})
}

// Save persists the session state.
func (m *Manager) Save(ctx context.Context, threadID string, sess *domain.Session) error {
	return m.WithLock(ctx, threadID, func(ctx context.Context) error {
		return m.store.Save(ctx, threadID, sess)
	})
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, threadID string) error {
	return m.WithLock(ctx, threadID, func(ctx context.Context) error {
		return m.store.Delete(ctx, threadID)
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

// WithLock executes a function while holding the lock for the thread.
func (m *Manager) WithLock(ctx context.Context, threadID string, fn func(context.Context) error) error {
	entry := m.acquire(threadID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(threadID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, threadID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"thread_id", threadID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
