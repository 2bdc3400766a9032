// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	domainauth "github.com/estatehub/estate-api/internal/domain/auth"
	"github.com/estatehub/estate-api/internal/domain/model"
	apperrors "github.com/estatehub/estate-api/internal/errors"
	"github.com/estatehub/estate-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.TokenCodec         = (*StubTokenCodec)(nil)
	_ ports.SessionStore       = (*MemorySessionStore)(nil)
	_ ports.UserLookup         = (*StaticUserLookup)(nil)
	_ ports.CredentialVerifier = (*StaticCredentialVerifier)(nil)
)

// StubTokenCodec issues readable "kind:subject" tokens. It performs no signing and
// is only suitable for exercising request flows in unit tests.
type StubTokenCodec struct {
	IssueFunc  func(subject string, kind domainauth.TokenKind, ttl time.Duration) (string, error)
	VerifyFunc func(token string, kind domainauth.TokenKind) (string, error)
}

func (c *StubTokenCodec) Issue(subject string, kind domainauth.TokenKind, ttl time.Duration) (string, error) {
	if c.IssueFunc != nil {
		return c.IssueFunc(subject, kind, ttl)
	}
	return kind.String() + ":" + subject, nil
}

func (c *StubTokenCodec) Verify(token string, kind domainauth.TokenKind) (string, error) {
	if c.VerifyFunc != nil {
		return c.VerifyFunc(token, kind)
	}
	prefix, subject, ok := strings.Cut(token, ":")
	if !ok || subject == "" {
		return "", domainauth.ErrTokenMalformed
	}
	if prefix != kind.String() {
		return "", domainauth.ErrTokenInvalidSignature
	}
	return subject, nil
}

// MemorySessionStore is an in-memory session store for unit tests.
// TTLs are recorded but not enforced; tests expire sessions with Expire.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
	ttls     map[string]time.Duration

	// Err, when set, is returned from every call wrapped as StoreUnavailable.
	Err error
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
		ttls:     make(map[string]time.Duration),
	}
}

func (m *MemorySessionStore) Put(_ context.Context, subject string, snapshot domainauth.Session, ttl time.Duration) error {
	if m.Err != nil {
		return apperrors.StoreUnavailable(m.Err)
	}
	if subject == "" {
		return errors.New("session subject cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[subject] = snapshot
	m.ttls[subject] = ttl
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, subject string) (domainauth.Session, error) {
	if m.Err != nil {
		return domainauth.Session{}, apperrors.StoreUnavailable(m.Err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[subject]
	if !ok {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, subject string) error {
	if m.Err != nil {
		return apperrors.StoreUnavailable(m.Err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, subject)
	delete(m.ttls, subject)
	return nil
}

// Has reports whether a session exists for subject.
func (m *MemorySessionStore) Has(subject string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[subject]
	return ok
}

// TTL returns the ttl last written for subject.
func (m *MemorySessionStore) TTL(subject string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ttls[subject]
}

// Expire drops the session as if its TTL elapsed.
func (m *MemorySessionStore) Expire(subject string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, subject)
	delete(m.ttls, subject)
}

// StaticUserLookup serves users from a map keyed by id.
type StaticUserLookup struct {
	mu    sync.RWMutex
	Users map[string]*model.User
	Err   error
}

// NewStaticUserLookup seeds the lookup with users.
func NewStaticUserLookup(users ...*model.User) *StaticUserLookup {
	l := &StaticUserLookup{Users: make(map[string]*model.User, len(users))}
	for _, u := range users {
		l.Users[u.ID] = u
	}
	return l
}

func (l *StaticUserLookup) GetByID(_ context.Context, id string) (*model.User, error) {
	if l.Err != nil {
		return nil, l.Err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	u, ok := l.Users[id]
	if !ok {
		return nil, ports.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// Remove deletes a user so later lookups miss.
func (l *StaticUserLookup) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.Users, id)
}

// StaticCredentialVerifier accepts a fixed plaintext password per email.
type StaticCredentialVerifier struct {
	Passwords map[string]string
	Users     *StaticUserLookup
}

func (v *StaticCredentialVerifier) VerifyCredentials(ctx context.Context, email, password string) (*model.User, error) {
	want, ok := v.Passwords[strings.ToLower(strings.TrimSpace(email))]
	if !ok || want != password {
		return nil, apperrors.InvalidCredentials()
	}
	if v.Users == nil {
		return nil, errors.New("no user lookup configured")
	}
	v.Users.mu.RLock()
	var found *model.User
	for _, u := range v.Users.Users {
		if strings.EqualFold(u.Email, email) {
			found = u
			break
		}
	}
	v.Users.mu.RUnlock()
	if found == nil {
		return nil, apperrors.InvalidCredentials()
	}
	return v.Users.GetByID(ctx, found.ID)
}
