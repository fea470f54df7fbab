// Package auth provides a PBKDF2-backed credential store and bearer-token
// middleware for the operational HTTP endpoints.
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

var (
	// ErrInvalidCredentials is returned when username or password is incorrect
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserExists is returned when trying to create a user that already exists
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when user is not found
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidToken is returned when a session token is unknown or expired
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrPermissionDenied is returned when user lacks required permission
	ErrPermissionDenied = errors.New("permission denied")
)

const (
	// PBKDF2 parameters
	saltLength     = 16
	iterationCount = 4096
	keyLength      = 32

	tokenLength  = 32
	sessionTTL   = 24 * time.Hour
	bearerPrefix = "Bearer "
)

// Role represents a user role with associated permissions
type Role string

const (
	// RoleAdmin may view stats and manage the pool lifecycle
	RoleAdmin Role = "admin"
	// RoleViewer may only view stats
	RoleViewer Role = "viewer"
)

// Permission represents an operation permission
type Permission string

const (
	PermissionViewStats  Permission = "viewStats"
	PermissionManagePool Permission = "managePool"
	PermissionManageUsers Permission = "manageUsers"
)

// rolePermissions maps roles to their permissions
var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionViewStats,
		PermissionManagePool,
		PermissionManageUsers,
	},
	RoleViewer: {
		PermissionViewStats,
	},
}

// User represents a registered user
type User struct {
	Username string
	Role     Role
	salt     []byte
	hash     []byte
}

// HasPermission returns true if the user's role grants the permission
func (u *User) HasPermission(p Permission) bool {
	for _, perm := range rolePermissions[u.Role] {
		if perm == p {
			return true
		}
	}
	return false
}

// session is an issued bearer token
type session struct {
	username  string
	expiresAt time.Time
}

// Store holds users and active sessions
type Store struct {
	mu       sync.RWMutex
	users    map[string]*User
	sessions map[string]*session
}

// NewStore creates an empty credential store
func NewStore() *Store {
	return &Store{
		users:    make(map[string]*User),
		sessions: make(map[string]*session),
	}
}

// CreateUser registers a new user with a PBKDF2-SHA256 hashed password
func (s *Store) CreateUser(username, password string, role Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[username]; exists {
		return ErrUserExists
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	s.users[username] = &User{
		Username: username,
		Role:     role,
		salt:     salt,
		hash:     pbkdf2.Key([]byte(password), salt, iterationCount, keyLength, sha256.New),
	}
	return nil
}

// DeleteUser removes a user and revokes their sessions
func (s *Store) DeleteUser(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[username]; !exists {
		return ErrUserNotFound
	}
	delete(s.users, username)

	for token, sess := range s.sessions {
		if sess.username == username {
			delete(s.sessions, token)
		}
	}
	return nil
}

// Authenticate verifies credentials and issues a session token
func (s *Store) Authenticate(username, password string) (string, error) {
	s.mu.RLock()
	user, exists := s.users[username]
	s.mu.RUnlock()

	if !exists {
		return "", ErrInvalidCredentials
	}

	candidate := pbkdf2.Key([]byte(password), user.salt, iterationCount, keyLength, sha256.New)
	if !hmac.Equal(candidate, user.hash) {
		return "", ErrInvalidCredentials
	}

	raw := make([]byte, tokenLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	s.mu.Lock()
	s.sessions[token] = &session{
		username:  username,
		expiresAt: time.Now().Add(sessionTTL),
	}
	s.mu.Unlock()

	return token, nil
}

// ValidateToken resolves a session token to its user
func (s *Store) ValidateToken(token string) (*User, error) {
	s.mu.RLock()
	sess, exists := s.sessions[token]
	s.mu.RUnlock()

	if !exists {
		return nil, ErrInvalidToken
	}

	if time.Now().After(sess.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrInvalidToken
	}

	s.mu.RLock()
	user, exists := s.users[sess.username]
	s.mu.RUnlock()

	if !exists {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// RevokeToken invalidates a session token
func (s *Store) RevokeToken(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Middleware returns an HTTP middleware that requires a valid bearer token
// carrying the given permission
func (s *Store) Middleware(required Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			user, err := s.ValidateToken(strings.TrimPrefix(header, bearerPrefix))
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}
			if !user.HasPermission(required) {
				http.Error(w, "permission denied", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
