package router

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-scraper/internal/auth"
	"github.com/octobees/contact-scraper/internal/config"
	"github.com/octobees/contact-scraper/internal/entity"
	"github.com/octobees/contact-scraper/internal/handler"
	middlewarepkg "github.com/octobees/contact-scraper/internal/middleware"
)

// Pinger reports whether a dependency such as the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth   *handler.AuthHandler
	Users  *handler.UserAdminHandler
	Scrape *handler.ScrapeHandler
}

// Register wires all HTTP routes for the API. db may be nil.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, db Pinger, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		if db != nil {
			if err := db.Ping(c.Request().Context()); err != nil {
				return handler.Error(c, http.StatusServiceUnavailable, "database unreachable")
			}
		}
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	e.POST("/auth/register", handlers.Auth.Register)
	e.POST("/auth/login", handlers.Auth.Login)

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	admin := secured.Group("/admin", middlewarepkg.RequireRole(entity.RoleAdmin))
	admin.GET("/users", handlers.Users.List)
	admin.POST("/users", handlers.Users.Create)
	admin.PATCH("/users/:id", handlers.Users.Update)
	admin.DELETE("/users/:id", handlers.Users.Delete)

	secured.POST(middlewarepkg.ScrapePath, handlers.Scrape.Scrape, middlewarepkg.ScrapeRateLimiter(cfg.RateLimitScrape))
	secured.GET("/scrapes", handlers.Scrape.List)
	secured.GET("/scrapes/:id", handlers.Scrape.Get)
	secured.GET("/scrapes/:id/export", handlers.Scrape.Export)
	secured.GET("/scrapes/:id/summary", handlers.Scrape.Summary)
	secured.DELETE("/scrapes/:id", handlers.Scrape.Delete)
}
