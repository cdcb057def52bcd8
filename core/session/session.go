// Package session holds the authenticated identity of a dashboard client.
// A Session is set on login, cleared on logout and read everywhere else.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/eduflexsms/eduflex/core/account"
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrExpired      = errors.New("session token has expired")
	ErrNoSession    = errors.New("not logged in")

	// mockable
	nowFunc = time.Now
)

// Identity is what the client knows about the logged-in account.
type Identity struct {
	AccountID string
	Username  string
	Name      string
	Roles     []string
	IsAdmin   bool
	IsTeacher bool
	ExpiresAt time.Time
}

// Session is safe for concurrent use. The zero value is a logged-out session.
type Session struct {
	mu       sync.RWMutex
	token    string
	identity Identity
	active   bool
}

func New() *Session {
	return new(Session)
}

// Begin reads the claims of token and stores both. The signature is not checked here;
// the backend verifies it on every request.
func (s *Session) Begin(token string) (Identity, error) {
	claims := new(account.Claims)
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return Identity{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Identity{}, ErrInvalidToken
	}
	if claims.Expired(nowFunc()) {
		return Identity{}, ErrExpired
	}

	id := Identity{
		AccountID: claims.Subject,
		Username:  claims.Username,
		Name:      claims.Name,
		Roles:     append([]string(nil), claims.Roles...),
		IsAdmin:   claims.IsAdmin,
		IsTeacher: claims.IsTeacher,
	}
	if claims.ExpiresAt != 0 {
		id.ExpiresAt = time.Unix(claims.ExpiresAt, 0)
	}

	s.mu.Lock()
	s.token = token
	s.identity = id
	s.active = true
	s.mu.Unlock()
	return id, nil
}

// End logs out.
func (s *Session) End() {
	s.mu.Lock()
	s.token = ""
	s.identity = Identity{}
	s.active = false
	s.mu.Unlock()
}

// Active reports whether a token is held and has not expired.
func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeLocked()
}

func (s *Session) activeLocked() bool {
	if !s.active {
		return false
	}
	return s.identity.ExpiresAt.IsZero() || nowFunc().Before(s.identity.ExpiresAt)
}

func (s *Session) Identity() (Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.active {
		return Identity{}, ErrNoSession
	}
	if !s.activeLocked() {
		return s.identity, ErrExpired
	}
	return s.identity, nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authorization returns the value of the Authorization header, or "" when logged out.
func (s *Session) Authorization() string {
	if tok := s.Token(); tok != "" {
		return "Bearer " + tok
	}
	return ""
}
