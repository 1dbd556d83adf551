// Package session holds the single current identity for the portal
// process. All reads go through Snapshot or Subscribe; the only writers
// are SetIdentity and Clear, which keeps the one-identity invariant
// enforceable in one place.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"medical-gallery-portal/internal/gallery"
)

// Claims wraps the persisted identity in a signed token so a tampered or
// truncated session file restores as logged-out instead of as garbage.
type Claims struct {
	Identity gallery.Identity `json:"identity"`
	jwt.RegisteredClaims
}

// Snapshot is a read-only view of the store for route decisions.
type Snapshot struct {
	Restoring bool
	Identity  *gallery.Identity
}

// Store is the process-wide session holder.
type Store struct {
	mu        sync.RWMutex
	current   *gallery.Identity
	restoring bool

	subs    map[int]func(*gallery.Identity)
	nextSub int

	filePath string
	secret   []byte
	ttl      time.Duration
}

// NewStore creates a session store persisting to filePath. The store
// starts in the restoring state; call Initialize before routing.
func NewStore(filePath, secret string, ttl time.Duration) *Store {
	return &Store{
		restoring: true,
		subs:      make(map[int]func(*gallery.Identity)),
		filePath:  filePath,
		secret:    []byte(secret),
		ttl:       ttl,
	}
}

// Initialize attempts to restore a previously persisted identity. Every
// failure mode (missing file, bad signature, expired token, garbage)
// resolves to logged-out; Initialize never returns an error to the caller.
func (s *Store) Initialize() {
	restored := s.readPersisted()

	s.mu.Lock()
	s.current = restored
	s.restoring = false
	s.mu.Unlock()
}

func (s *Store) readPersisted() *gallery.Identity {
	raw, err := os.ReadFile(s.filePath)
	if err != nil {
		return nil
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(string(raw), claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil
	}
	if !claims.Identity.UserType.Valid() || claims.Identity.UserID == "" {
		return nil
	}

	identity := claims.Identity
	return &identity
}

// SetIdentity replaces the current identity unconditionally, persists it
// and notifies every subscriber synchronously.
func (s *Store) SetIdentity(identity gallery.Identity) error {
	if err := s.persist(identity); err != nil {
		return err
	}

	s.mu.Lock()
	copied := identity
	s.current = &copied
	subs := s.subscriberList()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(&copied)
	}
	return nil
}

// Clear removes the current identity and its persisted copy. Calling it
// when already logged out is a no-op and triggers no notification.
func (s *Store) Clear() {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		// Best effort: an orphaned file with no in-memory identity still
		// gets removed so the next restore stays logged-out.
		os.Remove(s.filePath)
		return
	}
	s.current = nil
	subs := s.subscriberList()
	s.mu.Unlock()

	os.Remove(s.filePath)
	for _, fn := range subs {
		fn(nil)
	}
}

// Subscribe registers a listener invoked on every SetIdentity and Clear.
// The returned function de-registers it.
func (s *Store) Subscribe(fn func(*gallery.Identity)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Snapshot returns the current session state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{Restoring: s.restoring}
	if s.current != nil {
		copied := *s.current
		snap.Identity = &copied
	}
	return snap
}

// Current returns the logged-in identity, or nil.
func (s *Store) Current() *gallery.Identity {
	return s.Snapshot().Identity
}

// Restoring reports whether the initial load is still in progress.
func (s *Store) Restoring() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.restoring
}

func (s *Store) persist(identity gallery.Identity) error {
	now := time.Now()
	claims := &Claims{
		Identity: identity,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   identity.UserID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("failed to sign session token: %w", err)
	}

	if dir := filepath.Dir(s.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create session directory: %w", err)
		}
	}
	if err := os.WriteFile(s.filePath, []byte(signed), 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// subscriberList snapshots subscribers in registration order so a listener
// unsubscribing mid-notification cannot corrupt the iteration. Callers
// must hold s.mu.
func (s *Store) subscriberList() []func(*gallery.Identity) {
	subs := make([]func(*gallery.Identity), 0, len(s.subs))
	for id := 0; id < s.nextSub; id++ {
		if fn, ok := s.subs[id]; ok {
			subs = append(subs, fn)
		}
	}
	return subs
}
