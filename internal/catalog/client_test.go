package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"recipe-finder/internal/database"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient(ts.URL, nil, nil, zap.NewNop()), ts
}

func TestLookupByID(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lookup.php" || r.URL.Query().Get("i") != "52772" {
			t.Errorf("Unexpected request: %s", r.URL.String())
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"meals":[{
			"idMeal":"52772",
			"strMeal":"Teriyaki Chicken Casserole",
			"strCategory":"Chicken",
			"strArea":"Japanese",
			"strInstructions":"Preheat oven.",
			"strMealThumb":"https://example.test/thumb.jpg",
			"strIngredient1":"soy sauce","strMeasure1":"3/4 cup",
			"strIngredient2":null,"strMeasure2":null
		}]}`))
	}))

	rec, err := c.LookupByID(context.Background(), "52772")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if rec == nil {
		t.Fatal("Expected a recipe, got nil")
	}
	if rec.Name != "Teriyaki Chicken Casserole" || rec.Category != "Chicken" {
		t.Errorf("Unexpected recipe: %+v", rec)
	}
	if !reflect.DeepEqual(rec.Ingredients, []string{"3/4 cup soy sauce"}) {
		t.Errorf("Unexpected ingredients: %v", rec.Ingredients)
	}
}

func TestLookupByIDNotFound(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meals":null}`))
	}))

	rec, err := c.LookupByID(context.Background(), "0")
	if err != nil {
		t.Fatalf("Expected no error for an empty result, got %v", err)
	}
	if rec != nil {
		t.Errorf("Expected nil recipe, got %+v", rec)
	}
}

func TestSearch(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search.php" || r.URL.Query().Get("s") != "chicken pie" {
			t.Errorf("Unexpected request: %s", r.URL.String())
		}
		w.Write([]byte(`{"meals":[{"idMeal":"1","strMeal":"A"},{"idMeal":"2","strMeal":"B"}]}`))
	}))

	recipes, err := c.Search(context.Background(), "chicken pie")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(recipes) != 2 || recipes[0].ID != "1" || recipes[1].ID != "2" {
		t.Errorf("Unexpected results: %+v", recipes)
	}
}

func TestFilterByIngredientReturnsPartialRecords(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("i") != "salmon" {
			t.Errorf("Unexpected query: %s", r.URL.String())
		}
		w.Write([]byte(`{"meals":[{"idMeal":"52959","strMeal":"Baked salmon","strMealThumb":"t.jpg","strCategory":"Seafood"}]}`))
	}))

	recipes, err := c.FilterByIngredient(context.Background(), "salmon")
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if len(recipes) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(recipes))
	}
	if recipes[0].Category != "" || recipes[0].Instructions != "" || len(recipes[0].Ingredients) != 0 {
		t.Errorf("Expected reduced-fidelity record, got %+v", recipes[0])
	}
}

func TestFilterByCategorySetsCategory(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("c") != "Dessert" {
			t.Errorf("Unexpected query: %s", r.URL.String())
		}
		w.Write([]byte(`{"meals":[{"idMeal":"1","strMeal":"Cake","strMealThumb":"c.jpg"}]}`))
	}))

	recipes, err := c.FilterByCategory(context.Background(), "Dessert")
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if len(recipes) != 1 || recipes[0].Category != "Dessert" {
		t.Errorf("Expected category 'Dessert' on results, got %+v", recipes)
	}
}

func TestCategories(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"categories":[{"strCategory":"Beef","strCategoryThumb":"b.jpg","strCategoryDescription":"Beef dishes"}]}`))
	}))

	categories, err := c.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}
	want := []Category{{Name: "Beef", Thumbnail: "b.jpg", Description: "Beef dishes"}}
	if !reflect.DeepEqual(categories, want) {
		t.Errorf("Expected %+v, got %+v", want, categories)
	}
}

func TestRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"meals":null}`))
	}))

	if _, err := c.Search(context.Background(), "stew"); err != nil {
		t.Fatalf("Expected retry to recover, got %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("Expected 2 attempts, got %d", calls.Load())
	}
}

func TestLookupUsesCache(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"meals":[{"idMeal":"52772","strMeal":"Teriyaki Chicken Casserole"}]}`))
	}))
	defer ts.Close()

	db, err := database.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Failed to open cache database: %v", err)
	}
	defer db.Close()

	c := NewClient(ts.URL, NewCache(db, time.Hour), nil, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		rec, err := c.LookupByID(ctx, "52772")
		if err != nil {
			t.Fatalf("Lookup %d failed: %v", i+1, err)
		}
		if rec == nil || rec.Name != "Teriyaki Chicken Casserole" {
			t.Fatalf("Lookup %d returned unexpected recipe: %+v", i+1, rec)
		}
	}

	if calls.Load() != 1 {
		t.Errorf("Expected second lookup to be served from cache, got %d upstream calls", calls.Load())
	}
}
