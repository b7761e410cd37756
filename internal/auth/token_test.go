package auth

import (
	"strings"
	"testing"
	"time"
)

func TestIssueAndResolve(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, err := m.Issue("user-123")
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	if token == "" || strings.Contains(token, "user-123 ") {
		t.Error("Expected an opaque signed token")
	}

	userID, err := m.Resolve(token)
	if err != nil {
		t.Fatalf("Failed to resolve token: %v", err)
	}
	if userID != "user-123" {
		t.Errorf("Expected user ID 'user-123', got '%s'", userID)
	}
}

func TestResolveRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", time.Hour).Issue("user-123")
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	if _, err := NewTokenManager("secret-b", time.Hour).Resolve(token); err == nil {
		t.Fatal("Expected an error for a token signed with another secret, got nil")
	}
}

func TestResolveRejectsExpiredToken(t *testing.T) {
	m := NewTokenManager("test-secret", -time.Minute)

	token, err := m.Issue("user-123")
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	if _, err := m.Resolve(token); err == nil {
		t.Fatal("Expected an error for an expired token, got nil")
	}
}

func TestResolveRejectsGarbage(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	if _, err := m.Resolve("not-a-token"); err == nil {
		t.Fatal("Expected an error for a malformed token, got nil")
	}
}
