package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"

	"recipe-finder/internal/metrics"
	"recipe-finder/internal/recipe"
)

const defaultTimeout = 10 * time.Second

// One retry pass after the initial attempt on transient failures.
const maxRetries = 2

// Category is one entry of the catalog's category listing.
type Category struct {
	Name        string `json:"name"`
	Thumbnail   string `json:"thumbnail"`
	Description string `json:"description"`
}

// Client queries the external recipe catalog. An empty result set from the
// catalog is returned as an empty slice or nil recipe, never an error;
// callers are expected to treat residual transport errors as "no results"
// as well.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *Cache
	metrics    *metrics.Store
	logger     *zap.Logger
}

// NewClient creates a catalog client. cache and metricsStore are optional.
func NewClient(baseURL string, cache *Cache, metricsStore *metrics.Store, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		cache:      cache,
		metrics:    metricsStore,
		logger:     logger,
	}
}

// mealsResponse is the wire shape shared by lookup, search and filter
// endpoints: {"meals": [...]} with a JSON null for empty result sets.
type mealsResponse struct {
	Meals []map[string]any `json:"meals"`
}

// LookupByID fetches the full recipe record for a catalog ID. Fresh cache
// hits skip the catalog entirely; misses back-fill the cache. A nil recipe
// with a nil error means the catalog has no such ID.
func (c *Client) LookupByID(ctx context.Context, id string) (*recipe.Recipe, error) {
	start := time.Now()

	if c.cache != nil {
		cached, err := c.cache.Get(ctx, id)
		if err != nil {
			c.logger.Warn("catalog cache read failed", zap.String("id", id), zap.Error(err))
		} else if cached != nil {
			c.record(ctx, "lookup", true, nil, start)
			return cached, nil
		}
	}

	var resp mealsResponse
	if err := c.getJSON(ctx, c.endpoint("lookup.php", "i", id), &resp); err != nil {
		c.record(ctx, "lookup", false, err, start)
		return nil, err
	}
	if len(resp.Meals) == 0 {
		c.record(ctx, "lookup", false, nil, start)
		return nil, nil
	}

	rec := recipe.FromAPI(resp.Meals[0])
	if c.cache != nil {
		if err := c.cache.Put(ctx, rec); err != nil {
			c.logger.Warn("catalog cache write failed", zap.String("id", id), zap.Error(err))
		}
	}
	c.record(ctx, "lookup", false, nil, start)
	return &rec, nil
}

// Search returns full recipe records matching a free-text query.
func (c *Client) Search(ctx context.Context, query string) ([]recipe.Recipe, error) {
	start := time.Now()

	var resp mealsResponse
	err := c.getJSON(ctx, c.endpoint("search.php", "s", query), &resp)
	c.record(ctx, "search", false, err, start)
	if err != nil {
		return nil, err
	}

	recipes := make([]recipe.Recipe, 0, len(resp.Meals))
	for _, meal := range resp.Meals {
		recipes = append(recipes, recipe.FromAPI(meal))
	}
	return recipes, nil
}

// FilterByIngredient returns partial records for recipes containing the
// ingredient. The catalog's filter endpoint only carries ID, name and
// thumbnail, and no follow-up lookup is done.
func (c *Client) FilterByIngredient(ctx context.Context, ingredient string) ([]recipe.Recipe, error) {
	start := time.Now()

	var resp mealsResponse
	err := c.getJSON(ctx, c.endpoint("filter.php", "i", ingredient), &resp)
	c.record(ctx, "filter_ingredient", false, err, start)
	if err != nil {
		return nil, err
	}

	recipes := make([]recipe.Recipe, 0, len(resp.Meals))
	for _, meal := range resp.Meals {
		recipes = append(recipes, recipe.FromPartial(meal))
	}
	return recipes, nil
}

// FilterByCategory returns partial records for recipes in the category.
// The requested category name is copied onto each result since the filter
// payload itself doesn't carry it.
func (c *Client) FilterByCategory(ctx context.Context, category string) ([]recipe.Recipe, error) {
	start := time.Now()

	var resp mealsResponse
	err := c.getJSON(ctx, c.endpoint("filter.php", "c", category), &resp)
	c.record(ctx, "filter_category", false, err, start)
	if err != nil {
		return nil, err
	}

	recipes := make([]recipe.Recipe, 0, len(resp.Meals))
	for _, meal := range resp.Meals {
		rec := recipe.FromPartial(meal)
		rec.Category = category
		recipes = append(recipes, rec)
	}
	return recipes, nil
}

// Categories lists the catalog's recipe categories.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	start := time.Now()

	var resp struct {
		Categories []map[string]any `json:"categories"`
	}
	err := c.getJSON(ctx, c.baseURL+"/categories.php", &resp)
	c.record(ctx, "categories", false, err, start)
	if err != nil {
		return nil, err
	}

	categories := make([]Category, 0, len(resp.Categories))
	for _, raw := range resp.Categories {
		categories = append(categories, Category{
			Name:        stringField(raw, "strCategory"),
			Thumbnail:   stringField(raw, "strCategoryThumb"),
			Description: stringField(raw, "strCategoryDescription"),
		})
	}
	return categories, nil
}

func (c *Client) endpoint(path, key, value string) string {
	return fmt.Sprintf("%s/%s?%s=%s", c.baseURL, path, key, url.QueryEscape(value))
}

// getJSON performs a GET with bounded exponential backoff. Server errors
// and transport failures are retried; client errors and malformed payloads
// are permanent.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create catalog request: %w", err))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to execute catalog request: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read catalog response: %w", err)
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("catalog request failed with status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("catalog request failed with status %d", resp.StatusCode))
		}
		if err := json.Unmarshal(body, out); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode catalog response: %w", err))
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	return backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, maxRetries), ctx))
}

func (c *Client) record(ctx context.Context, operation string, cacheHit bool, callErr error, start time.Time) {
	if c.metrics == nil {
		return
	}
	status := "ok"
	if callErr != nil {
		status = "error"
	}
	m := metrics.CallMetric{
		Operation: operation,
		CacheHit:  cacheHit,
		Status:    status,
		LatencyMS: time.Since(start).Milliseconds(),
	}
	if err := c.metrics.Record(ctx, m); err != nil {
		c.logger.Warn("failed to record catalog metric", zap.String("operation", operation), zap.Error(err))
	}
}

func stringField(raw map[string]any, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}
