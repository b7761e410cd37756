package recipe

import (
	"fmt"
	"strings"
)

// Recipe is a single recipe, built from an external catalog record or
// clipped from a web page. The JSON form is also the persisted record
// shape used by the favorites and meal plan stores.
type Recipe struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Area         string   `json:"area"`
	Instructions string   `json:"instructions"`
	ThumbnailURL string   `json:"thumbnail_url"`
	Ingredients  []string `json:"ingredients"`
	YoutubeURL   string   `json:"youtube_url,omitempty"`
}

// The catalog exposes at most 20 numbered ingredient/measure field pairs.
const maxIngredientSlots = 20

// FromAPI builds a Recipe from a raw catalog meal record. The numbered
// strIngredient/strMeasure pairs are scanned in order; slots with a blank
// ingredient name are skipped.
func FromAPI(meal map[string]any) Recipe {
	var ingredients []string
	for i := 1; i <= maxIngredientSlots; i++ {
		name := strings.TrimSpace(field(meal, fmt.Sprintf("strIngredient%d", i)))
		if name == "" {
			continue
		}
		measure := strings.TrimSpace(field(meal, fmt.Sprintf("strMeasure%d", i)))
		ingredients = append(ingredients, strings.TrimSpace(measure+" "+name))
	}

	return Recipe{
		ID:           field(meal, "idMeal"),
		Name:         field(meal, "strMeal"),
		Category:     field(meal, "strCategory"),
		Area:         field(meal, "strArea"),
		Instructions: field(meal, "strInstructions"),
		ThumbnailURL: field(meal, "strMealThumb"),
		Ingredients:  ingredients,
		YoutubeURL:   field(meal, "strYoutube"),
	}
}

// FromPartial builds a reduced Recipe from an ingredient or category
// filter result, which carries only the ID, name and thumbnail. Category,
// area, instructions and ingredients stay empty until the caller does a
// full lookup.
func FromPartial(meal map[string]any) Recipe {
	return Recipe{
		ID:           field(meal, "idMeal"),
		Name:         field(meal, "strMeal"),
		ThumbnailURL: field(meal, "strMealThumb"),
	}
}

// InstructionSteps splits the free-text instructions into non-blank lines.
func (r Recipe) InstructionSteps() []string {
	var steps []string
	for _, line := range strings.Split(r.Instructions, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			steps = append(steps, s)
		}
	}
	return steps
}

// field reads a string value from a raw catalog record. The catalog
// returns JSON null for absent fields, so non-string values map to "".
func field(meal map[string]any, key string) string {
	if v, ok := meal[key].(string); ok {
		return v
	}
	return ""
}
