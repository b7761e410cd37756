package user

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// User is a registered account. Only the bcrypt digest of the password is
// ever stored.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
}

const (
	minUsernameLen = 3
	maxUsernameLen = 30
	minPasswordLen = 6
)

// ErrDuplicateUsername is returned by Register when the case-folded
// username is already taken.
var ErrDuplicateUsername = errors.New("username is already taken")

// ValidationError reports malformed registration input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Lengths are counted in characters, not bytes, so multibyte usernames
// are not penalized.
func validateCredentials(username, password string) error {
	if l := utf8.RuneCountInString(username); l < minUsernameLen || l > maxUsernameLen {
		return &ValidationError{Reason: "username must be between 3 and 30 characters"}
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return &ValidationError{Reason: "password must be at least 6 characters"}
	}
	return nil
}

// sameUsername compares usernames case-insensitively.
func sameUsername(a, b string) bool {
	return strings.EqualFold(a, b)
}
