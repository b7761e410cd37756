package web

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"recipe-finder/internal/catalog"
	"recipe-finder/internal/mealplan"
	"recipe-finder/internal/metrics"
	"recipe-finder/internal/recipe"
	"recipe-finder/internal/user"
)

// userResponse is the public shape of a user; the password digest never
// leaves the directory.
type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	u, err := s.users.Register(req.Username, req.Password)
	if err != nil {
		var vErr *user.ValidationError
		switch {
		case errors.As(err, &vErr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": vErr.Reason})
		case errors.Is(err, user.ErrDuplicateUsername):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "username is already taken"})
		default:
			return s.internalError(c, "failed to register user", err)
		}
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return s.internalError(c, "failed to issue session token", err)
	}
	s.setSessionCookie(c, token)

	s.logger.Info("user registered", zap.String("user_id", u.ID))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": toUserResponse(u)})
}

func (s *Server) login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	u, err := s.users.Authenticate(req.Username, req.Password)
	if err != nil {
		return s.internalError(c, "failed to authenticate user", err)
	}
	if u == nil {
		// Deliberately vague: never reveal which credential was wrong.
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "incorrect username or password"})
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return s.internalError(c, "failed to issue session token", err)
	}
	s.setSessionCookie(c, token)

	return c.JSON(fiber.Map{"user": toUserResponse(u)})
}

func (s *Server) logout(c *fiber.Ctx) error {
	s.clearSessionCookie(c)
	return c.JSON(fiber.Map{"logged_out": true})
}

func (s *Server) me(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"user": toUserResponse(currentUser(c))})
}

// search runs a free-text catalog search. A failing catalog is treated the
// same as an empty result set.
func (s *Server) search(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing search term"})
	}

	recipes, err := s.catalog.Search(c.Context(), query)
	if err != nil {
		s.logger.Warn("catalog search failed", zap.String("query", query), zap.Error(err))
		recipes = nil
	}
	return c.JSON(fiber.Map{"query": query, "recipes": emptyIfNil(recipes)})
}

func (s *Server) searchByIngredient(c *fiber.Ctx) error {
	ingredient := strings.TrimSpace(c.Query("i"))
	if ingredient == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing ingredient"})
	}

	recipes, err := s.catalog.FilterByIngredient(c.Context(), ingredient)
	if err != nil {
		s.logger.Warn("catalog ingredient filter failed", zap.String("ingredient", ingredient), zap.Error(err))
		recipes = nil
	}
	return c.JSON(fiber.Map{"query": ingredient, "recipes": emptyIfNil(recipes)})
}

func (s *Server) categories(c *fiber.Ctx) error {
	categories, err := s.catalog.Categories(c.Context())
	if err != nil {
		s.logger.Warn("catalog categories failed", zap.Error(err))
		categories = nil
	}
	if categories == nil {
		categories = []catalog.Category{}
	}
	return c.JSON(fiber.Map{"categories": categories})
}

func (s *Server) categoryMeals(c *fiber.Ctx) error {
	name := c.Params("name")

	recipes, err := s.catalog.FilterByCategory(c.Context(), name)
	if err != nil {
		s.logger.Warn("catalog category filter failed", zap.String("category", name), zap.Error(err))
		recipes = nil
	}
	return c.JSON(fiber.Map{"query": name, "recipes": emptyIfNil(recipes)})
}

func (s *Server) recipeDetail(c *fiber.Ctx) error {
	id := c.Params("id")

	rec, err := s.catalog.LookupByID(c.Context(), id)
	if err != nil {
		s.logger.Warn("catalog lookup failed", zap.String("id", id), zap.Error(err))
	}
	if rec == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "recipe not found"})
	}

	favs, err := s.favs.Load(currentUser(c).ID)
	if err != nil {
		return s.internalError(c, "failed to load favorites", err)
	}
	isFavorite := false
	for _, fav := range favs {
		if fav.ID == id {
			isFavorite = true
			break
		}
	}

	return c.JSON(fiber.Map{"recipe": rec, "is_favorite": isFavorite})
}

func (s *Server) favoritesList(c *fiber.Ctx) error {
	favs, err := s.favs.Load(currentUser(c).ID)
	if err != nil {
		return s.internalError(c, "failed to load favorites", err)
	}
	return c.JSON(fiber.Map{"favorites": emptyIfNil(favs)})
}

func (s *Server) favoritesAdd(c *fiber.Ctx) error {
	var req struct {
		MealID string `json:"meal_id"`
	}
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.MealID) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing meal_id"})
	}

	rec, err := s.catalog.LookupByID(c.Context(), req.MealID)
	if err != nil {
		s.logger.Warn("catalog lookup failed", zap.String("id", req.MealID), zap.Error(err))
	}
	if rec == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "recipe not found"})
	}

	added, err := s.favs.Add(currentUser(c).ID, *rec)
	if err != nil {
		return s.internalError(c, "failed to save favorite", err)
	}
	return c.JSON(fiber.Map{"added": added, "recipe": rec})
}

func (s *Server) favoritesRemove(c *fiber.Ctx) error {
	if err := s.favs.Remove(currentUser(c).ID, c.Params("id")); err != nil {
		return s.internalError(c, "failed to remove favorite", err)
	}
	return c.JSON(fiber.Map{"removed": true})
}

// clipRecipe imports a recipe from an arbitrary web page and saves it to
// the user's favorites.
func (s *Server) clipRecipe(c *fiber.Ctx) error {
	var req struct {
		URL string `json:"url"`
	}
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing url"})
	}

	rec, err := s.clipper.ClipURL(c.Context(), req.URL)
	if err != nil {
		s.logger.Warn("clip failed", zap.String("url", req.URL), zap.Error(err))
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "could not extract a recipe from that page",
		})
	}

	added, err := s.favs.Add(currentUser(c).ID, *rec)
	if err != nil {
		return s.internalError(c, "failed to save clipped recipe", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"added": added, "recipe": rec})
}

// usage reports per-operation catalog call totals for the last N days.
func (s *Server) usage(c *fiber.Ctx) error {
	days := c.QueryInt("days", 30)
	if days <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "days must be positive"})
	}

	totals, err := s.metrics.GetUsage(c.Context(), days)
	if err != nil {
		return s.internalError(c, "failed to load catalog usage", err)
	}
	if totals == nil {
		totals = []metrics.OperationUsage{}
	}
	return c.JSON(fiber.Map{"days": days, "usage": totals})
}

func (s *Server) mealPlanGet(c *fiber.Ctx) error {
	plan, err := s.plans.Load(currentUser(c).ID)
	if err != nil {
		return s.internalError(c, "failed to load meal plan", err)
	}
	return c.JSON(fiber.Map{"plan": plan})
}

func (s *Server) mealPlanAssign(c *fiber.Ctx) error {
	var req struct {
		Day    string `json:"day"`
		MealID string `json:"meal_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.Day == "" || req.MealID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "day and meal_id are required"})
	}
	// Reject bad day names before spending a catalog call.
	if !mealplan.IsDay(req.Day) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("%q is not a valid day", req.Day),
		})
	}

	rec, err := s.catalog.LookupByID(c.Context(), req.MealID)
	if err != nil {
		s.logger.Warn("catalog lookup failed", zap.String("id", req.MealID), zap.Error(err))
	}
	if rec == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "recipe not found"})
	}

	userID := currentUser(c).ID
	plan, err := s.plans.Load(userID)
	if err != nil {
		return s.internalError(c, "failed to load meal plan", err)
	}
	if !plan.Assign(req.Day, *rec) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("%q is not a valid day", req.Day),
		})
	}
	if err := s.plans.Save(userID, plan); err != nil {
		return s.internalError(c, "failed to save meal plan", err)
	}
	return c.JSON(fiber.Map{"plan": plan})
}

func (s *Server) mealPlanRemove(c *fiber.Ctx) error {
	day := c.Params("day")
	userID := currentUser(c).ID

	plan, err := s.plans.Load(userID)
	if err != nil {
		return s.internalError(c, "failed to load meal plan", err)
	}
	if !plan.Remove(day) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("%q is not a valid day", day),
		})
	}
	if err := s.plans.Save(userID, plan); err != nil {
		return s.internalError(c, "failed to save meal plan", err)
	}
	return c.JSON(fiber.Map{"plan": plan})
}

func (s *Server) mealPlanClear(c *fiber.Ctx) error {
	if err := s.plans.Clear(currentUser(c).ID); err != nil {
		return s.internalError(c, "failed to clear meal plan", err)
	}
	return c.JSON(fiber.Map{"cleared": true})
}

func (s *Server) shoppingList(c *fiber.Ctx) error {
	plan, err := s.plans.Load(currentUser(c).ID)
	if err != nil {
		return s.internalError(c, "failed to load meal plan", err)
	}
	items := plan.ShoppingList()
	if items == nil {
		items = []string{}
	}
	return c.JSON(fiber.Map{"items": items})
}

// emptyIfNil keeps JSON list fields as [] instead of null.
func emptyIfNil(recipes []recipe.Recipe) []recipe.Recipe {
	if recipes == nil {
		return []recipe.Recipe{}
	}
	return recipes
}
