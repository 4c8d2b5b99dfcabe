package canvas

import "fmt"

// Transform is the scale and translation applied to the content container.
// Values are replaced, never mutated in place.
type Transform struct {
	Scale    float64 `json:"scale"`
	Position Point   `json:"position"`
}

// String formats the transform the way the viewers display it.
func (t Transform) String() string {
	return fmt.Sprintf("scale=%.2f position=(%.2f, %.2f)", t.Scale, t.Position.X, t.Position.Y)
}

// Initialize computes the fit-to-viewport transform used at mount.
func Initialize(vp Viewport, cfg Configuration) Transform {
	scale := InitialScale(vp, cfg)
	return Transform{Scale: scale, Position: InitialPosition(scale, cfg)}
}

// Store holds the current transform and notifies subscribers when it is
// replaced. A Store is confined to one event goroutine and is not safe for
// concurrent use.
type Store struct {
	current     Transform
	subscribers map[int]func(Transform)
	nextID      int
}

// NewStore creates a store holding initial.
func NewStore(initial Transform) *Store {
	return &Store{current: initial, subscribers: make(map[int]func(Transform))}
}

// Current returns the current transform.
func (s *Store) Current() Transform {
	return s.current
}

// Replace overwrites the transform unconditionally and notifies subscribers.
func (s *Store) Replace(next Transform) {
	s.current = next
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.subscribers[id]; ok {
			fn(next)
		}
	}
}

// Subscribe registers fn to be called after every Replace, in registration
// order. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Transform)) (unsubscribe func()) {
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	return func() { delete(s.subscribers, id) }
}
