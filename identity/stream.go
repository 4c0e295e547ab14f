package identity

import (
	"sync"

	"onboarding-service/models"
)

// Stream is a push-based auth-state feed. Subscribers receive the current
// identity immediately on registration and every change afterwards; a nil
// identity means signed out.
type Stream struct {
	mu          sync.Mutex
	nextID      int
	subscribers map[int]func(*models.Identity)
	current     *models.Identity
}

func NewStream() *Stream {
	return &Stream{subscribers: make(map[int]func(*models.Identity))}
}

// OnAuthStateChange registers a callback and returns its unsubscribe func.
// The callback fires synchronously with the current state before returning.
func (s *Stream) OnAuthStateChange(callback func(*models.Identity)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = callback
	current := s.current
	s.mu.Unlock()

	callback(current)

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Publish pushes a new auth state to every subscriber.
func (s *Stream) Publish(identity *models.Identity) {
	s.mu.Lock()
	s.current = identity
	callbacks := make([]func(*models.Identity), 0, len(s.subscribers))
	for _, callback := range s.subscribers {
		callbacks = append(callbacks, callback)
	}
	s.mu.Unlock()

	for _, callback := range callbacks {
		callback(identity)
	}
}

// Current returns the last published auth state.
func (s *Stream) Current() *models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
