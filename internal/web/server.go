// Package web provides the HTTP API for the recipe finder, built on Fiber.
package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"recipe-finder/internal/auth"
	"recipe-finder/internal/catalog"
	"recipe-finder/internal/clipper"
	"recipe-finder/internal/favorites"
	"recipe-finder/internal/mealplan"
	"recipe-finder/internal/metrics"
	"recipe-finder/internal/user"
)

const sessionCookie = "session_token"

// Server holds the API's dependencies and the configured Fiber app.
type Server struct {
	app     *fiber.App
	logger  *zap.Logger
	users   *user.Directory
	favs    *favorites.Store
	plans   *mealplan.Store
	catalog *catalog.Client
	clipper *clipper.Clipper
	metrics *metrics.Store
	tokens  *auth.TokenManager
}

// New creates and configures the Fiber app with all API routes.
func New(
	log *zap.Logger,
	users *user.Directory,
	favs *favorites.Store,
	plans *mealplan.Store,
	catalogClient *catalog.Client,
	recipeClipper *clipper.Clipper,
	metricsStore *metrics.Store,
	tokens *auth.TokenManager,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:     "recipe-finder API",
		ReadTimeout: 30 * time.Second,
	})

	app.Use(fiberrecover.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: true,
	}))
	app.Use(logger.New())

	s := &Server{
		app:     app,
		logger:  log,
		users:   users,
		favs:    favs,
		plans:   plans,
		catalog: catalogClient,
		clipper: recipeClipper,
		metrics: metricsStore,
		tokens:  tokens,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	api := s.app.Group("/api")

	// Auth
	api.Post("/register", s.register)
	api.Post("/login", s.login)
	api.Post("/logout", s.logout)
	api.Get("/me", s.requireAuth, s.me)

	// Catalog
	api.Get("/search", s.requireAuth, s.search)
	api.Get("/search/ingredient", s.requireAuth, s.searchByIngredient)
	api.Get("/categories", s.requireAuth, s.categories)
	api.Get("/categories/:name/meals", s.requireAuth, s.categoryMeals)
	api.Get("/recipes/:id", s.requireAuth, s.recipeDetail)

	// Favorites
	api.Get("/favorites", s.requireAuth, s.favoritesList)
	api.Post("/favorites", s.requireAuth, s.favoritesAdd)
	api.Delete("/favorites/:id", s.requireAuth, s.favoritesRemove)
	api.Post("/clip", s.requireAuth, s.clipRecipe)

	// Catalog call totals
	api.Get("/usage", s.requireAuth, s.usage)

	// Meal plan
	api.Get("/mealplan", s.requireAuth, s.mealPlanGet)
	api.Post("/mealplan/assign", s.requireAuth, s.mealPlanAssign)
	api.Post("/mealplan/remove/:day", s.requireAuth, s.mealPlanRemove)
	api.Post("/mealplan/clear", s.requireAuth, s.mealPlanClear)
	api.Get("/mealplan/shopping-list", s.requireAuth, s.shoppingList)
}

// App exposes the underlying Fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts serving on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// requireAuth resolves the session cookie into a user and blocks the
// request otherwise. Handlers behind it read the principal via
// currentUser.
func (s *Server) requireAuth(c *fiber.Ctx) error {
	token := c.Cookies(sessionCookie)
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	userID, err := s.tokens.Resolve(token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid or expired session",
		})
	}

	u, err := s.users.FindByID(userID)
	if err != nil {
		return s.internalError(c, "failed to load user", err)
	}
	if u == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid or expired session",
		})
	}

	c.Locals("user", u)
	return c.Next()
}

func currentUser(c *fiber.Ctx) *user.User {
	u, _ := c.Locals("user").(*user.User)
	return u
}

func (s *Server) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Expires:  time.Now().Add(s.tokens.TTL()),
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

func (s *Server) internalError(c *fiber.Ctx, msg string, err error) error {
	s.logger.Error(msg, zap.Error(err), zap.String("path", c.Path()))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
	})
}
