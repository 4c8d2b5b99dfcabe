package server

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/stripview/pkg/canvas"
	"github.com/matzehuels/stripview/pkg/errors"
	"github.com/matzehuels/stripview/pkg/gesture"
)

// Session is one remote canvas: a viewport sample, a transform store, and
// the gesture controller driving it. All access goes through mu so samples
// from concurrent requests are applied one at a time, in arrival order.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
	viewport canvas.Viewport
	cfg      canvas.Configuration
	store    *canvas.Store
	ctrl     *gesture.Controller
	wheel    *gesture.WheelTracker
	pointers *gesture.PointerPinchTracker

	// pinch holds the input-source configuration captured at pinch start
	// for clients that send absolute scales.
	pinch *gesture.PinchConfig
}

func newSession(vp canvas.Viewport, cfg canvas.Configuration, logger *log.Logger) *Session {
	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		lastSeen:  now,
		viewport:  vp,
		cfg:       cfg,
		store:     canvas.NewStore(canvas.Initialize(vp, cfg)),
	}
	surface := &gesture.TransformSurface{
		Source: canvas.ViewportFunc(func() canvas.Viewport { return s.viewport }),
		Store:  s.store,
		Config: cfg,
	}
	s.ctrl = gesture.NewController(s.store, surface, cfg,
		gesture.WithLogger(logger.With("session", s.ID)))
	s.wheel = gesture.NewWheelTracker(s.ctrl)
	s.pointers = gesture.NewPointerPinchTracker(s.ctrl)
	return s
}

// lock acquires the session and marks it as used.
func (s *Session) lock() {
	s.mu.Lock()
	s.lastSeen = time.Now()
}

func (s *Session) unlock() { s.mu.Unlock() }

// idleSince returns the last time the session was used.
func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Registry holds sessions in memory. Nothing is persisted; a restart drops
// every session.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	max      int
}

// NewRegistry creates a registry holding at most max sessions. When full,
// creating a session evicts the least recently used one.
func NewRegistry(max int) *Registry {
	return &Registry{sessions: make(map[string]*Session), max: max}
}

// Add stores s, evicting the least recently used session if the registry
// is full. It returns the evicted session ID, if any.
func (r *Registry) Add(s *Session) (evicted string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.max > 0 && len(r.sessions) >= r.max {
		var oldest time.Time
		for id, other := range r.sessions {
			if seen := other.idleSince(); evicted == "" || seen.Before(oldest) {
				evicted, oldest = id, seen
			}
		}
		delete(r.sessions, evicted)
	}
	r.sessions[s.ID] = s
	return evicted
}

// Get returns the session with id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	return s, nil
}

// Delete removes the session with id.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	delete(r.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Cleanup removes sessions unused for longer than maxIdle and returns how
// many were removed.
func (r *Registry) Cleanup(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}
