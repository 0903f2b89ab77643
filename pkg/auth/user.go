// Package auth handles user accounts and session tokens: bcrypt password
// storage in kv, and signed JWT access/refresh token pairs.
package auth

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/morganstate-cs/morganai/pkg/encoding"
	"github.com/morganstate-cs/morganai/pkg/kv"
)

var (
	// ErrUserExists is returned when registering a taken username.
	ErrUserExists = errors.New("auth: username already exists")

	// ErrInvalidCredentials is returned for a wrong username or password.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
)

// Roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is one account.
type User struct {
	ID           string    `msgpack:"id"`
	Username     string    `msgpack:"username"`
	Email        string    `msgpack:"email"`
	PasswordHash []byte    `msgpack:"password_hash"`
	Role         string    `msgpack:"role"`
	CreatedAt    time.Time `msgpack:"created_at"`
}

// Users stores accounts keyed by username.
type Users struct {
	store kv.Store
}

// NewUsers creates a user store over the given kv backend.
func NewUsers(store kv.Store) *Users {
	return &Users{store: store}
}

func userKey(username string) string {
	return kv.Join("user", strings.ToLower(username))
}

// normalizePassword pre-hashes the password so bcrypt's 72-byte input
// limit never truncates long passphrases.
func normalizePassword(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(encoding.HexData(sum[:]).String())
}

// HashPassword derives the stored hash for a password.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword(normalizePassword(password), bcrypt.DefaultCost)
}

// Register creates a new account with the user role.
func (u *Users) Register(ctx context.Context, username, email, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("auth: username and password are required")
	}
	if _, err := u.store.Get(ctx, userKey(username)); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, kv.ErrNotFound) {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         RoleUser,
		CreatedAt:    time.Now().UTC(),
	}
	if err := u.put(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *Users) put(ctx context.Context, user *User) error {
	data, err := msgpack.Marshal(user)
	if err != nil {
		return fmt.Errorf("auth: encode user: %w", err)
	}
	return u.store.Put(ctx, userKey(user.Username), data)
}

// Get loads one account. Returns kv.ErrNotFound for unknown usernames.
func (u *Users) Get(ctx context.Context, username string) (*User, error) {
	data, err := u.store.Get(ctx, userKey(username))
	if err != nil {
		return nil, err
	}
	var user User
	if err := msgpack.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("auth: decode user %s: %w", username, err)
	}
	return &user, nil
}

// Authenticate checks a username/password pair. Unknown usernames and
// wrong passwords both come back as ErrInvalidCredentials.
func (u *Users) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := u.Get(ctx, username)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, normalizePassword(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// SetRole changes an account's role.
func (u *Users) SetRole(ctx context.Context, username, role string) error {
	user, err := u.Get(ctx, username)
	if err != nil {
		return err
	}
	user.Role = role
	return u.put(ctx, user)
}

// Delete removes an account.
func (u *Users) Delete(ctx context.Context, username string) error {
	return u.store.Delete(ctx, userKey(username))
}
