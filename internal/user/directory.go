package user

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Directory is the file-backed registry of user accounts. The whole
// directory is read on every lookup and rewritten on every mutation; the
// account set is small and single-writer, so no locking is done.
type Directory struct {
	filePath string
}

// NewDirectory creates a Directory rooted at basePath and ensures the
// directory exists.
func NewDirectory(basePath string) (*Directory, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", basePath, err)
	}
	return &Directory{filePath: filepath.Join(basePath, "users.json")}, nil
}

// Register validates the credentials, enforces case-insensitive username
// uniqueness, and appends the new account to the directory. The returned
// error is a *ValidationError for malformed input and ErrDuplicateUsername
// for a collision.
func (d *Directory) Register(username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	users, err := d.load()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if sameUsername(u.Username, username) {
			return nil, ErrDuplicateUsername
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
	}
	users = append(users, u)

	if err := d.save(users); err != nil {
		return nil, err
	}
	return &u, nil
}

// Authenticate looks up the username case-insensitively and verifies the
// password against the stored bcrypt digest. It returns nil on any
// mismatch without revealing which credential was wrong.
func (d *Directory) Authenticate(username, password string) (*User, error) {
	u, err := d.FindByUsername(username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, nil
	}
	return u, nil
}

// FindByID returns the user with the given identifier, or nil if absent.
func (d *Directory) FindByID(id string) (*User, error) {
	users, err := d.load()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, nil
}

// FindByUsername returns the user with the given username
// (case-insensitive), or nil if absent.
func (d *Directory) FindByUsername(username string) (*User, error) {
	users, err := d.load()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if sameUsername(users[i].Username, strings.TrimSpace(username)) {
			return &users[i], nil
		}
	}
	return nil, nil
}

// Count returns the number of registered accounts.
func (d *Directory) Count() (int, error) {
	users, err := d.load()
	if err != nil {
		return 0, err
	}
	return len(users), nil
}

func (d *Directory) load() ([]User, error) {
	data, err := os.ReadFile(d.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read user directory: %w", err)
	}

	var users []User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user directory: %w", err)
	}
	return users, nil
}

func (d *Directory) save(users []User) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user directory: %w", err)
	}
	if err := os.WriteFile(d.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write user directory: %w", err)
	}
	return nil
}
