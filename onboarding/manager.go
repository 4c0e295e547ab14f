package onboarding

import (
	"context"
	"log"
	"sync"
	"time"

	"onboarding-service/identity"
	"onboarding-service/models"
	"onboarding-service/store"

	"github.com/google/uuid"
)

// Session is one user's live wizard: a contact and a job-boards controller
// sharing the profile store.
type Session struct {
	ID        string
	Identity  models.Identity
	Contact   *ContactController
	JobBoards *JobBoardsController

	loadOnce sync.Once
	loadErr  error
}

// Load prefills both controllers from the stored record, once per session.
func (s *Session) Load(ctx context.Context) error {
	s.loadOnce.Do(func() {
		if err := s.Contact.Load(ctx); err != nil {
			s.loadErr = err
			return
		}
		s.loadErr = s.JobBoards.Load(ctx)
	})
	return s.loadErr
}

// Manager owns the per-user sessions. Handlers fetch sessions lazily; the
// identity stream tears them down on sign-out so pending autosaves are
// cancelled.
type Manager struct {
	mu            sync.Mutex
	profiles      store.ProfileStore
	autosaveDelay time.Duration
	sessions      map[string]*Session
	lastIdentity  *models.Identity
}

func NewManager(profiles store.ProfileStore, autosaveDelay time.Duration) *Manager {
	return &Manager{
		profiles:      profiles,
		autosaveDelay: autosaveDelay,
		sessions:      make(map[string]*Session),
	}
}

// Session returns the live session for an identity, creating it on first use.
func (m *Manager) Session(ident models.Identity) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.sessions[ident.UID]; ok {
		return session
	}

	session := &Session{
		ID:        uuid.NewString(),
		Identity:  ident,
		Contact:   NewContactController(m.profiles, ident, m.autosaveDelay),
		JobBoards: NewJobBoardsController(m.profiles, ident),
	}
	m.sessions[ident.UID] = session
	return session
}

// Drop tears down a user's session, cancelling any pending autosave. A write
// already in flight is not chased.
func (m *Manager) Drop(uid string) {
	m.mu.Lock()
	session, ok := m.sessions[uid]
	delete(m.sessions, uid)
	m.mu.Unlock()
	if ok {
		session.Contact.Close()
		log.Printf("onboarding session closed: uid=%s session=%s", uid, session.ID)
	}
}

// Watch subscribes the manager to auth-state changes: sign-out events drop
// the previously signed-in user's session. Returns the unsubscribe func.
func (m *Manager) Watch(stream *identity.Stream) func() {
	return stream.OnAuthStateChange(func(ident *models.Identity) {
		m.mu.Lock()
		previous := m.lastIdentity
		m.lastIdentity = ident
		m.mu.Unlock()

		if ident == nil && previous != nil {
			m.Drop(previous.UID)
		}
	})
}
