// Package session holds the signed-in user's token and profile. It is loaded
// once from the store at start and passed down to whatever needs it.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abelbrown/stockroom/internal/store"
)

// Role controls which screens and columns a user sees.
type Role int

const (
	RoleUnknown Role = iota
	RoleAdmin
	RoleManager
	RoleStaff
	RoleQA
)

var roleNames = map[Role]string{
	RoleAdmin:   "admin",
	RoleManager: "manager",
	RoleStaff:   "staff",
	RoleQA:      "qa",
}

// ErrUnknownRole is returned when a role string is not recognised.
var ErrUnknownRole = errors.New("unknown role")

// ErrNotSignedIn is returned by Load when no token is stored.
var ErrNotSignedIn = errors.New("not signed in")

// ParseRole maps a role name to a Role. Case and surrounding space are ignored.
func ParseRole(s string) (Role, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for r, n := range roleNames {
		if n == name {
			return r, nil
		}
	}
	return RoleUnknown, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

func (r Role) String() string {
	if n, ok := roleNames[r]; ok {
		return n
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if _, ok := roleNames[r]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRole, int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Profile is the cached user record.
type Profile struct {
	ID         int    `json:"user_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	Department string `json:"department,omitempty"`
}

// KV is the persistence the session needs. *store.Store satisfies it.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(keys ...string) error
}

var _ KV = (*store.Store)(nil)

// Session is the current user. The zero value is signed out.
type Session struct {
	token   string
	profile Profile
}

// New builds a session directly. Used by login and tests.
func New(token string, p Profile) Session {
	return Session{token: token, profile: p}
}

// Token returns the bearer token.
func (s Session) Token() string { return s.token }

func (s Session) Profile() Profile { return s.profile }

func (s Session) Role() Role { return s.profile.Role }

// Authenticated reports whether a token is present.
func (s Session) Authenticated() bool { return s.token != "" }

// Load reads the token and profile from kv. A missing token returns
// ErrNotSignedIn; a corrupt profile is an error rather than a guest session.
func Load(kv KV) (Session, error) {
	token, ok, err := kv.Get(store.KeyToken)
	if err != nil {
		return Session{}, fmt.Errorf("load token: %w", err)
	}
	if !ok || token == "" {
		return Session{}, ErrNotSignedIn
	}

	raw, ok, err := kv.Get(store.KeyUser)
	if err != nil {
		return Session{}, fmt.Errorf("load user: %w", err)
	}
	if !ok {
		return Session{}, fmt.Errorf("load user: %w", ErrNotSignedIn)
	}
	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Session{}, fmt.Errorf("decode user: %w", err)
	}
	return Session{token: token, profile: p}, nil
}

// Save persists the session.
func Save(kv KV, s Session) error {
	if s.token == "" {
		return errors.New("save session: empty token")
	}
	raw, err := json.Marshal(s.profile)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := kv.Set(store.KeyToken, s.token); err != nil {
		return err
	}
	return kv.Set(store.KeyUser, string(raw))
}

// Clear removes the stored session.
func Clear(kv KV) error {
	return kv.Delete(store.KeyToken, store.KeyUser)
}
