package favorites

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"recipe-finder/internal/recipe"
)

// Store keeps one favorites file per user under its base directory. Each
// mutation reloads the file, changes the list in memory and rewrites the
// whole file.
type Store struct {
	basePath string
}

// NewStore creates a Store and ensures the base directory exists.
func NewStore(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create favorites directory %s: %w", basePath, err)
	}
	return &Store{basePath: basePath}, nil
}

func (s *Store) path(userID string) string {
	return filepath.Join(s.basePath, userID+".json")
}

// Load returns the user's favorites in insertion order. A missing file is
// an empty list, not an error.
func (s *Store) Load(userID string) ([]recipe.Recipe, error) {
	data, err := os.ReadFile(s.path(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read favorites for user %s: %w", userID, err)
	}

	var favs []recipe.Recipe
	if err := json.Unmarshal(data, &favs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal favorites for user %s: %w", userID, err)
	}
	return favs, nil
}

// Add appends the recipe to the user's favorites unless a recipe with the
// same ID is already saved. It reports whether the list changed.
func (s *Store) Add(userID string, rec recipe.Recipe) (bool, error) {
	favs, err := s.Load(userID)
	if err != nil {
		return false, err
	}
	for _, saved := range favs {
		if saved.ID == rec.ID {
			return false, nil
		}
	}

	favs = append(favs, rec)
	if err := s.save(userID, favs); err != nil {
		return false, err
	}
	return true, nil
}

// Remove drops any favorite with the given recipe ID and rewrites the
// file. Removing an absent ID is a no-op.
func (s *Store) Remove(userID, recipeID string) error {
	favs, err := s.Load(userID)
	if err != nil {
		return err
	}

	kept := favs[:0]
	for _, saved := range favs {
		if saved.ID != recipeID {
			kept = append(kept, saved)
		}
	}
	return s.save(userID, kept)
}

func (s *Store) save(userID string, favs []recipe.Recipe) error {
	if favs == nil {
		favs = []recipe.Recipe{}
	}
	data, err := json.MarshalIndent(favs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal favorites for user %s: %w", userID, err)
	}
	if err := os.WriteFile(s.path(userID), data, 0644); err != nil {
		return fmt.Errorf("failed to write favorites for user %s: %w", userID, err)
	}
	return nil
}
