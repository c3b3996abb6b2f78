package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// User is the identity attached to an authenticated session.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Flash message types
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot notification: set by one request, displayed on
// the next render, then discarded.
type Flash struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Session holds per-client server-side state: the authenticated user
// (absent until login/signup) and at most one pending flash message.
type Session struct {
	User      User
	Flash     Flash
	CreatedAt time.Time
}

// IsAuthenticated reports whether a user identity is attached.
// INVARIANT: Session fields are not mutated
func (s Session) IsAuthenticated() bool {
	return s.User != (User{})
}

// SessionStore is an in-memory session store keyed by opaque token.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]Session),
	}
}

// Create stores a new empty session and returns the token. Sessions are
// created before authentication so that flash messages reach anonymous
// visitors (failed logins, auth-required redirects).
// POST: Session is stored, token is returned
func (ss *SessionStore) Create() (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.sessions[token] = Session{CreatedAt: time.Now()}
	return token, nil
}

// Get retrieves a session by token.
// PRE: token is non-empty
// POST: Returns session if valid and not expired
func (ss *SessionStore) Get(token string) (Session, bool) {
	ss.mu.RLock()
	session, ok := ss.sessions[token]
	ss.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	// Sessions expire after 24 hours
	if time.Since(session.CreatedAt) > 24*time.Hour {
		ss.Delete(token)
		return Session{}, false
	}
	return session, true
}

// Delete removes a session by token.
// POST: Session with given token is removed
func (ss *SessionStore) Delete(token string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, token)
}

// SetUser attaches an identity to the session.
// POST: Returns false if the token is unknown
func (ss *SessionStore) SetUser(token string, user User) bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	session, ok := ss.sessions[token]
	if !ok {
		return false
	}
	session.User = user
	ss.sessions[token] = session
	return true
}

// SetFlash attaches a flash message to the session, replacing any
// pending one.
// POST: Returns false if the token is unknown
func (ss *SessionStore) SetFlash(token string, flash Flash) bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	session, ok := ss.sessions[token]
	if !ok {
		return false
	}
	session.Flash = flash
	ss.sessions[token] = session
	return true
}

// TakeFlash returns the pending flash and clears it (read-once).
// POST: A second call for the same token reports no flash
func (ss *SessionStore) TakeFlash(token string) (Flash, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	session, ok := ss.sessions[token]
	if !ok || session.Flash == (Flash{}) {
		return Flash{}, false
	}
	flash := session.Flash
	session.Flash = Flash{}
	ss.sessions[token] = session
	return flash, true
}

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "ticketdesk_session"

// Auth returns middleware that extracts the session from the cookie and
// sets it in the request context. It does NOT block unauthenticated
// requests — handlers decide what requires auth.
func Auth(sessions *SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err == nil && cookie.Value != "" {
				if session, ok := sessions.Get(cookie.Value); ok {
					ctx := context.WithValue(r.Context(), sessionContextKey, session)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(Session)
	return session, ok
}

// SessionToken returns the session token from the request cookie.
func SessionToken(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// SecureCookies controls the Secure flag on session cookies. Set true
// in production.
var SecureCookies = false

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   86400, // 24 hours
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

// ContextWithSession returns a context with the given session set.
// Intended for use in tests.
func ContextWithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
