package clipper

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"recipe-finder/internal/recipe"
)

// Clipper imports recipes from arbitrary web pages by reading the
// schema.org/Recipe JSON-LD block most recipe sites embed.
type Clipper struct {
	httpClient *http.Client
}

// New creates a Clipper. A nil httpClient gets a default with a timeout.
func New(httpClient *http.Client) *Clipper {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Clipper{httpClient: httpClient}
}

// ClipURL fetches the page and builds a Recipe from its JSON-LD metadata.
// The recipe ID is derived from the URL, so clipping the same page twice
// yields the same identifier.
func (c *Clipper) ClipURL(ctx context.Context, pageURL string) (*recipe.Recipe, error) {
	doc, err := c.fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}

	node := findRecipeNode(doc)
	if node == nil {
		return nil, fmt.Errorf("no schema.org recipe metadata found at %s", pageURL)
	}

	rec := &recipe.Recipe{
		ID:           recipeID(pageURL),
		Name:         ldString(node["name"]),
		Category:     firstLDString(node["recipeCategory"]),
		Area:         firstLDString(node["recipeCuisine"]),
		Instructions: instructionsText(node["recipeInstructions"]),
		ThumbnailURL: imageURL(node["image"]),
		Ingredients:  ldStrings(node["recipeIngredient"]),
	}
	if rec.Name == "" {
		return nil, fmt.Errorf("recipe metadata at %s has no name", pageURL)
	}
	return rec, nil
}

func (c *Clipper) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

// recipeID derives a stable identifier from the source URL.
func recipeID(pageURL string) string {
	sum := sha256.Sum256([]byte(pageURL))
	return fmt.Sprintf("web-%x", sum[:6])
}

// findRecipeNode scans every ld+json script on the page for an object
// whose @type is (or includes) "Recipe", descending into arrays and
// @graph containers.
func findRecipeNode(doc *goquery.Document) map[string]any {
	var found map[string]any
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true // skip malformed blocks
		}
		if node := recipeNodeIn(data); node != nil {
			found = node
			return false
		}
		return true
	})
	return found
}

func recipeNodeIn(data any) map[string]any {
	switch v := data.(type) {
	case map[string]any:
		if hasRecipeType(v["@type"]) {
			return v
		}
		if graph, ok := v["@graph"]; ok {
			return recipeNodeIn(graph)
		}
	case []any:
		for _, item := range v {
			if node := recipeNodeIn(item); node != nil {
				return node
			}
		}
	}
	return nil
}

func hasRecipeType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "Recipe"
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "Recipe" {
				return true
			}
		}
	}
	return false
}

func ldString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// firstLDString handles fields that may be a string or a list of strings.
func firstLDString(v any) string {
	if s := ldString(v); s != "" {
		return s
	}
	if list, ok := v.([]any); ok && len(list) > 0 {
		return ldString(list[0])
	}
	return ""
}

func ldStrings(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range list {
		if s := ldString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// imageURL handles the image field's common shapes: a plain URL, a list of
// URLs, or an ImageObject with a url key.
func imageURL(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		if len(t) > 0 {
			return imageURL(t[0])
		}
	case map[string]any:
		return ldString(t["url"])
	}
	return ""
}

// instructionsText flattens recipeInstructions into newline-separated
// steps. The field may be plain text, a list of strings, or a list of
// HowToStep/HowToSection objects.
func instructionsText(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		var steps []string
		for _, item := range t {
			switch step := item.(type) {
			case string:
				if s := strings.TrimSpace(step); s != "" {
					steps = append(steps, s)
				}
			case map[string]any:
				if s := ldString(step["text"]); s != "" {
					steps = append(steps, s)
				} else if nested := instructionsText(step["itemListElement"]); nested != "" {
					steps = append(steps, nested)
				}
			}
		}
		return strings.Join(steps, "\n")
	}
	return ""
}
