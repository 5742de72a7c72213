package session

import (
	"net/http"
	"sync"

	"docqa/internal/vector"

	"github.com/google/uuid"
)

// Session is the explicit per-session record: the current document's index
// plus the bounded chat history. The embedded mutex serializes the handlers
// touching one session; the design assumes one in-flight request per session
// but does not depend on it.
type Session struct {
	sync.Mutex

	ID           string
	Filename     string
	ChunkCount   int
	Index        *vector.Store
	Conversation Conversation
}

// Store owns every live session, keyed by an opaque cookie value. Sessions
// hold an unserializable in-memory index, so records live in-process rather
// than in the cookie itself.
type Store struct {
	mu          sync.Mutex
	cookieName  string
	maxMessages int
	sessions    map[string]*Session
}

func NewStore(cookieName string, maxMessages int) *Store {
	return &Store{
		cookieName:  cookieName,
		maxMessages: maxMessages,
		sessions:    make(map[string]*Session),
	}
}

// Get returns the request's session, creating one (and setting its cookie)
// when the request carries no valid session.
func (st *Store) Get(w http.ResponseWriter, r *http.Request) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	if c, err := r.Cookie(st.cookieName); err == nil {
		if sess, ok := st.sessions[c.Value]; ok {
			return sess
		}
	}

	sess := &Session{
		ID:           uuid.NewString(),
		Conversation: Conversation{Max: st.maxMessages},
	}
	st.sessions[sess.ID] = sess
	http.SetCookie(w, &http.Cookie{
		Name:     st.cookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

// Drop forgets a session entirely; the next request with its cookie starts
// fresh.
func (st *Store) Drop(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}
