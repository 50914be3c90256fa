package bot

import (
	"sync"
	"time"
)

// State is the position of a user in the review flow.
type State int

const (
	// StateIdle means the user has no review in progress.
	StateIdle State = iota
	// StateBrowsing means the user was shown a headline list.
	StateBrowsing
	// StateViewing means the user is looking at one article.
	StateViewing
)

func (s State) String() string {
	switch s {
	case StateBrowsing:
		return "browsing"
	case StateViewing:
		return "viewing"
	default:
		return "idle"
	}
}

// Session is one user's in-memory review state. It is a value type so
// the store hands out copies; mutations only land via Put.
type Session struct {
	UserID    int64
	State     State
	Category  string
	ArticleID int64
	LastSeen  time.Time
}

// Browse transitions into the browsing state for a category.
func (s Session) Browse(category string) Session {
	s.State = StateBrowsing
	s.Category = category
	s.ArticleID = 0
	return s
}

// View transitions into the viewing state for an article. The category
// is kept so like/dislike can advance within the same listing.
func (s Session) View(articleID int64) Session {
	s.State = StateViewing
	s.ArticleID = articleID
	return s
}

// Idle resets the session to the idle state.
func (s Session) Idle() Session {
	s.State = StateIdle
	s.Category = ""
	s.ArticleID = 0
	return s
}

const defaultSessionTTL = 30 * time.Minute

// SessionStore keeps per-user sessions in memory. Sessions idle longer
// than the TTL are dropped lazily on access, so an expired user starts
// over from Idle.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[int64]Session
	now      func() time.Time
}

// NewSessionStore creates a store with the given idle TTL.
// A non-positive TTL uses the default of 30 minutes.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{
		ttl:      ttl,
		sessions: make(map[int64]Session),
		now:      time.Now,
	}
}

// Get returns the user's session, or a fresh idle session when none
// exists or the stored one expired.
func (st *SessionStore) Get(userID int64) Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	session, ok := st.sessions[userID]
	if !ok || now.Sub(session.LastSeen) > st.ttl {
		delete(st.sessions, userID)
		return Session{UserID: userID, State: StateIdle, LastSeen: now}
	}
	return session
}

// Put stores the session, stamping its activity time, and prunes any
// other expired sessions while it holds the lock.
func (st *SessionStore) Put(session Session) {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	session.LastSeen = now
	st.sessions[session.UserID] = session

	for id, s := range st.sessions {
		if now.Sub(s.LastSeen) > st.ttl {
			delete(st.sessions, id)
		}
	}
}

// Reset removes the user's session.
func (st *SessionStore) Reset(userID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, userID)
}

// Len reports the number of live sessions. Intended for tests and
// status reporting.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
