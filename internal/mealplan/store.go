package mealplan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store keeps one weekly plan file per user under its base directory, in
// the same read-modify-write style as the favorites store.
type Store struct {
	basePath string
}

// NewStore creates a Store and ensures the base directory exists.
func NewStore(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create meal plan directory %s: %w", basePath, err)
	}
	return &Store{basePath: basePath}, nil
}

func (s *Store) path(userID string) string {
	return filepath.Join(s.basePath, userID+".json")
}

// Load returns the user's persisted plan, or an all-empty plan when none
// has been saved yet.
func (s *Store) Load(userID string) (*MealPlan, error) {
	data, err := os.ReadFile(s.path(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("failed to read meal plan for user %s: %w", userID, err)
	}

	var plan MealPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal meal plan for user %s: %w", userID, err)
	}
	return &plan, nil
}

// Save overwrites the user's persisted plan.
func (s *Store) Save(userID string, plan *MealPlan) error {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal meal plan for user %s: %w", userID, err)
	}
	if err := os.WriteFile(s.path(userID), data, 0644); err != nil {
		return fmt.Errorf("failed to write meal plan for user %s: %w", userID, err)
	}
	return nil
}

// Clear persists a brand-new all-empty plan for the user.
func (s *Store) Clear(userID string) error {
	return s.Save(userID, New())
}
