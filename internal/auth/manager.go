package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"iuran/internal/core"
)

// ErrAuthFailure is the single credential error. It deliberately does not say
// which field was wrong.
var ErrAuthFailure = errors.New("invalid username or password")

// Principal is the identity returned by a successful credential check.
type Principal struct {
	Username    string
	DisplayName string
}

// IdentityProvider is the external credential collaborator.
type IdentityProvider interface {
	Authenticate(ctx context.Context, username, secret string) (Principal, error)
	EndSession(ctx context.Context) error
}

// RecordStore persists the session records as a single opaque blob.
// Absence or a parse failure upstream is treated as "no sessions".
type RecordStore interface {
	Load() (blob []byte, ok bool, err error)
	Save(blob []byte) error
	Clear() error
}

// Manager owns all live sessions, keyed by opaque token, and mirrors them to
// the record store so they survive a process restart.
type Manager struct {
	mu       sync.Mutex
	idp      IdentityProvider
	records  RecordStore
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]Session
}

// persistedRecord is the on-disk shape of one session. Expiry travels as
// epoch milliseconds; zero means no expiry.
type persistedRecord struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Expiry   int64  `json:"expiry,omitempty"`
}

// NewManager restores persisted sessions. Expired records are dropped and the
// cleaned state is written back; a malformed blob is discarded silently and
// the manager starts empty.
func NewManager(idp IdentityProvider, records RecordStore, ttl time.Duration) *Manager {
	m := &Manager{
		idp:      idp,
		records:  records,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]Session),
	}
	m.restore()
	return m
}

func (m *Manager) restore() {
	if m.records == nil {
		return
	}
	blob, ok, err := m.records.Load()
	if err != nil || !ok {
		return
	}
	var raw map[string]persistedRecord
	if err := json.Unmarshal(blob, &raw); err != nil {
		slog.Warn("Discarding malformed persisted sessions", "error", err)
		_ = m.records.Clear()
		return
	}

	now := m.now()
	dropped := 0
	for token, rec := range raw {
		s := Session{
			Username: rec.Username,
			Name:     rec.Name,
			Role:     core.Role(rec.Role),
		}
		if rec.Expiry > 0 {
			s.Expiry = time.UnixMilli(rec.Expiry)
		}
		if s.Expired(now) || (s.Role != core.RoleAdmin && s.Role != core.RoleGuest) {
			dropped++
			continue
		}
		m.sessions[token] = s
	}
	if dropped > 0 {
		m.persistLocked()
		slog.Info("Dropped stale persisted sessions", "dropped", dropped, "restored", len(m.sessions))
	}
}

// persistLocked writes the current session map back to the record store.
// Callers hold m.mu (or run before the manager is shared).
func (m *Manager) persistLocked() {
	if m.records == nil {
		return
	}
	if len(m.sessions) == 0 {
		_ = m.records.Clear()
		return
	}
	raw := make(map[string]persistedRecord, len(m.sessions))
	for token, s := range m.sessions {
		rec := persistedRecord{
			Username: s.Username,
			Name:     s.Name,
			Role:     string(s.Role),
		}
		if !s.Expiry.IsZero() {
			rec.Expiry = s.Expiry.UnixMilli()
		}
		raw[token] = rec
	}
	blob, err := json.Marshal(raw)
	if err != nil {
		slog.Error("Failed to encode session records", "error", err)
		return
	}
	if err := m.records.Save(blob); err != nil {
		slog.Error("Failed to persist session records", "error", err)
	}
}

// Login validates credentials against the identity provider. On success the
// new admin session replaces nothing and carries a fixed forward expiry.
func (m *Manager) Login(ctx context.Context, username, password string) (string, Session, error) {
	principal, err := m.idp.Authenticate(ctx, username, password)
	if err != nil {
		slog.InfoContext(ctx, "Login failed", "username", username)
		return "", Session{}, ErrAuthFailure
	}

	s := Session{
		Username: principal.Username,
		Name:     principal.DisplayName,
		Role:     core.RoleAdmin,
		Expiry:   m.now().Add(m.ttl),
	}
	token, err := m.add(s)
	if err != nil {
		return "", Session{}, err
	}
	slog.InfoContext(ctx, "Login succeeded", "username", s.Username, "role", s.Role)
	return token, s, nil
}

// LoginAsGuest creates a guest session unconditionally.
func (m *Manager) LoginAsGuest(ctx context.Context) (string, Session, error) {
	s := Session{
		Username: "guest",
		Name:     "Guest User",
		Role:     core.RoleGuest,
		Expiry:   m.now().Add(m.ttl),
	}
	token, err := m.add(s)
	if err != nil {
		return "", Session{}, err
	}
	slog.InfoContext(ctx, "Guest login", "role", s.Role)
	return token, s, nil
}

// Logout destroys the session and notifies the identity provider. Unknown
// tokens are a no-op.
func (m *Manager) Logout(ctx context.Context, token string) error {
	m.mu.Lock()
	_, existed := m.sessions[token]
	delete(m.sessions, token)
	m.persistLocked()
	m.mu.Unlock()

	if existed && m.idp != nil {
		if err := m.idp.EndSession(ctx); err != nil {
			slog.WarnContext(ctx, "Identity provider end-session failed", "error", err)
		}
	}
	return nil
}

// Lookup resolves a token to its session. An expired session is destroyed on
// sight and reported as absent.
func (m *Manager) Lookup(token string) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return Session{}, false
	}
	if s.Expired(m.now()) {
		delete(m.sessions, token)
		m.persistLocked()
		return Session{}, false
	}
	return s, true
}

func (m *Manager) add(s Session) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	m.mu.Lock()
	m.sessions[token] = s
	m.persistLocked()
	m.mu.Unlock()
	return token, nil
}

func generateToken() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
