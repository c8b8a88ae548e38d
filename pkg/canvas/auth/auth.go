// Package auth provides the identity collaborator for the canvas: a
// registered-users map, login/logout, and per-user API credentials.
//
// Passwords are stored in clear text, carried over from the demo this
// implements. Do not reuse this package where real credentials are at
// stake.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/randalmurphal/chatcanvas/pkg/canvas/store"
)

// Reserved store keys. User canvases are persisted under
// "canvasNodes_<email>" by the canvas itself; these keys hold identity
// state alongside them.
const (
	usersKey         = "registeredUsers"
	credentialPrefix = "apiKey_"
)

// Sentinel errors for identity operations.
var (
	// ErrUserExists indicates a sign-up for an already registered email.
	ErrUserExists = errors.New("user already exists")

	// ErrInvalidCredentials indicates a failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrNotLoggedIn indicates an operation that requires a session.
	ErrNotLoggedIn = errors.New("not logged in")
)

// Manager owns registered users and the active session.
// Safe for concurrent use.
type Manager struct {
	mu      sync.Mutex
	store   store.Store
	current string
}

// NewManager creates a Manager backed by the given store.
func NewManager(st store.Store) *Manager {
	return &Manager{store: st}
}

// SignUp registers a new user and logs them in.
func (m *Manager) SignUp(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrInvalidCredentials
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	users, err := m.loadUsers()
	if err != nil {
		return err
	}
	if _, exists := users[email]; exists {
		return ErrUserExists
	}

	users[email] = password
	if err := m.saveUsers(users); err != nil {
		return err
	}

	m.current = email
	return nil
}

// LogIn validates credentials and opens a session.
func (m *Manager) LogIn(email, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	users, err := m.loadUsers()
	if err != nil {
		return err
	}
	if stored, ok := users[email]; !ok || stored != password {
		return ErrInvalidCredentials
	}

	m.current = email
	return nil
}

// LogOut closes the session. Registered users are untouched.
func (m *Manager) LogOut() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = ""
}

// CurrentUser returns the logged-in user's email, or "" when no
// session is open. The value is the opaque key that namespaces canvas
// persistence and credential lookup.
func (m *Manager) CurrentUser() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// SetAPIKey stores the completion credential for the current user.
func (m *Manager) SetAPIKey(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == "" {
		return ErrNotLoggedIn
	}
	if err := m.store.Save(credentialPrefix+m.current, []byte(key)); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// APIKey returns the completion credential for the given user, or ""
// when none is configured. The signature matches the credential
// resolver the canvas expects.
func (m *Manager) APIKey(user string) string {
	data, err := m.store.Load(credentialPrefix + user)
	if err != nil {
		return ""
	}
	return string(data)
}

// Remove deletes a user's registration and credential. The canvas
// snapshot under the user's key is the canvas's to clear.
func (m *Manager) Remove(email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	users, err := m.loadUsers()
	if err != nil {
		return err
	}
	delete(users, email)
	if err := m.saveUsers(users); err != nil {
		return err
	}
	if err := m.store.Delete(credentialPrefix + email); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	if m.current == email {
		m.current = ""
	}
	return nil
}

// loadUsers reads the registered-users map. A missing or malformed
// snapshot yields an empty map, never an error surfaced to login.
func (m *Manager) loadUsers() (map[string]string, error) {
	data, err := m.store.Load(usersKey)
	if errors.Is(err, store.ErrNotFound) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	users := make(map[string]string)
	if err := json.Unmarshal(data, &users); err != nil {
		return make(map[string]string), nil
	}
	return users, nil
}

func (m *Manager) saveUsers(users map[string]string) error {
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	if err := m.store.Save(usersKey, data); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}
