package clipper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

func serveHTML(t *testing.T, html string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(html))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestClipURL(t *testing.T) {
	ts := serveHTML(t, `<html><head>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@type": "Recipe",
  "name": "Lemon Pasta",
  "image": ["https://example.test/lemon.jpg"],
  "recipeCategory": "Pasta",
  "recipeCuisine": ["Italian"],
  "recipeIngredient": ["200g spaghetti", "1 lemon", ""],
  "recipeInstructions": [
    {"@type": "HowToStep", "text": "Boil the pasta."},
    {"@type": "HowToStep", "text": "Zest the lemon."}
  ]
}
</script>
</head><body><h1>Lemon Pasta</h1></body></html>`)

	c := New(nil)
	rec, err := c.ClipURL(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("ClipURL failed: %v", err)
	}

	if !strings.HasPrefix(rec.ID, "web-") {
		t.Errorf("Expected a web-derived ID, got '%s'", rec.ID)
	}
	if rec.Name != "Lemon Pasta" {
		t.Errorf("Expected name 'Lemon Pasta', got '%s'", rec.Name)
	}
	if rec.Category != "Pasta" || rec.Area != "Italian" {
		t.Errorf("Unexpected category/area: '%s'/'%s'", rec.Category, rec.Area)
	}
	if rec.ThumbnailURL != "https://example.test/lemon.jpg" {
		t.Errorf("Unexpected thumbnail: '%s'", rec.ThumbnailURL)
	}
	if want := []string{"200g spaghetti", "1 lemon"}; !reflect.DeepEqual(rec.Ingredients, want) {
		t.Errorf("Expected ingredients %v, got %v", want, rec.Ingredients)
	}
	if want := "Boil the pasta.\nZest the lemon."; rec.Instructions != want {
		t.Errorf("Expected instructions %q, got %q", want, rec.Instructions)
	}
}

func TestClipURLIsStablePerURL(t *testing.T) {
	ts := serveHTML(t, `<script type="application/ld+json">{"@type":"Recipe","name":"Toast"}</script>`)

	c := New(nil)
	first, err := c.ClipURL(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("First clip failed: %v", err)
	}
	second, err := c.ClipURL(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Second clip failed: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("Expected the same ID for the same URL, got '%s' and '%s'", first.ID, second.ID)
	}
}

func TestClipURLGraphContainer(t *testing.T) {
	ts := serveHTML(t, `<script type="application/ld+json">
{"@context":"https://schema.org","@graph":[
  {"@type":"WebPage","name":"Some page"},
  {"@type":["Recipe","Thing"],"name":"Graph Soup","recipeInstructions":"Simmer everything."}
]}
</script>`)

	c := New(nil)
	rec, err := c.ClipURL(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("ClipURL failed: %v", err)
	}
	if rec.Name != "Graph Soup" {
		t.Errorf("Expected name 'Graph Soup', got '%s'", rec.Name)
	}
	if rec.Instructions != "Simmer everything." {
		t.Errorf("Unexpected instructions: %q", rec.Instructions)
	}
}

func TestClipURLNoRecipeMetadata(t *testing.T) {
	ts := serveHTML(t, `<html><body><h1>Just a blog post</h1></body></html>`)

	c := New(nil)
	if _, err := c.ClipURL(context.Background(), ts.URL); err == nil {
		t.Fatal("Expected an error for a page without recipe metadata, got nil")
	}
}

func TestClipURLBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(ts.Close)

	c := New(nil)
	if _, err := c.ClipURL(context.Background(), ts.URL); err == nil {
		t.Fatal("Expected an error for a 404 page, got nil")
	}
}
